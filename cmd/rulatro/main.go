// Rulatro is a deterministic roguelike poker rules engine with line, terminal
// and MCP front-ends.
// Usage: rulatro [play|repl|mcp|check|replay|version] [flags]
package main

func main() {
	Execute()
}
