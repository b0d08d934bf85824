// Package parser converts command lines into Intents. Verbs are matched
// through an alias table; arguments are slot numbers, #uids or words.
package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Intent is a parsed command line. Verb is an engine action name or a
// front-end verb (help, state, quit). Nothing is resolved against the run.
type Intent struct {
	Verb  string
	Nums  []int
	UIDs  []uint32
	Words []string
}

// Empty reports whether the line had no command.
func (in Intent) Empty() bool { return in.Verb == "" }

var lex = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "UID", Pattern: `#[0-9]+`},
	{Name: "Code", Pattern: `[0-9]+[a-zA-Z]+`},
	{Name: "Range", Pattern: `[0-9]+-[0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_']*`},
	{Name: "Punct", Pattern: `[,]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

type line struct {
	Verb string `parser:"@Ident"`
	Args []*arg `parser:"( @@ ','? )*"`
}

type arg struct {
	UID   *string `parser:"  @UID"`
	Range *string `parser:"| @Range"`
	Num   *int    `parser:"| @Int"`
	Word  *string `parser:"| @(Ident | Code)"`
}

var grammar = participle.MustBuild[line](
	participle.Lexer(lex),
	participle.Elide("Whitespace"),
)

var verbAliases = map[string]string{
	"p":       "play",
	"d":       "discard",
	"start":   "start_blind",
	"s":       "start_blind",
	"shop":    "enter_shop",
	"leave":   "leave_shop",
	"exit":    "leave_shop",
	"next":    "next_blind",
	"n":       "next_blind",
	"r":       "reroll",
	"pick":    "pick_pack",
	"take":    "pick_pack",
	"choose":  "pick_pack",
	"use":     "use_consumable",
	"u":       "use_consumable",
	"new":     "reset",
	"restart": "reset",

	// front-end verbs
	"h":      "help",
	"st":     "state",
	"status": "state",
	"q":      "quit",
	"legal":  "actions",
}

// Parse converts a raw command line into an Intent. Empty input yields an
// empty Intent and no error.
func Parse(input string) (Intent, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return Intent{}, nil
	}
	l, err := grammar.ParseString("", input)
	if err != nil {
		return Intent{}, fmt.Errorf("cannot parse %q: %w", input, err)
	}

	in := Intent{Verb: l.Verb}
	if alias, ok := verbAliases[in.Verb]; ok {
		in.Verb = alias
	}
	for _, a := range l.Args {
		switch {
		case a.UID != nil:
			var uid uint32
			fmt.Sscanf(*a.UID, "#%d", &uid)
			in.UIDs = append(in.UIDs, uid)
		case a.Range != nil:
			var lo, hi int
			fmt.Sscanf(*a.Range, "%d-%d", &lo, &hi)
			for i := lo; i <= hi; i++ {
				in.Nums = append(in.Nums, i)
			}
		case a.Num != nil:
			in.Nums = append(in.Nums, *a.Num)
		case a.Word != nil:
			in.Words = append(in.Words, *a.Word)
		}
	}
	return expandMultiWordVerbs(in), nil
}

// expandMultiWordVerbs folds a leading word into the verb: "buy card 1",
// "sell joker #4", "skip pack", "enter shop".
func expandMultiWordVerbs(in Intent) Intent {
	next := ""
	if len(in.Words) > 0 {
		next = in.Words[0]
	}
	fold := func(verb string) Intent {
		in.Verb = verb
		in.Words = in.Words[1:]
		return in
	}

	switch in.Verb {
	case "buy":
		switch next {
		case "card", "joker":
			return fold("buy_card")
		case "pack", "booster":
			return fold("buy_pack")
		case "voucher":
			return fold("buy_voucher")
		}
		in.Verb = "buy_card"
	case "sell":
		switch next {
		case "joker":
			return fold("sell_joker")
		case "consumable", "tarot", "planet", "spectral":
			return fold("sell_consumable")
		}
		in.Verb = "sell_joker"
	case "skip":
		switch next {
		case "pack":
			return fold("skip_pack")
		case "blind":
			return fold("skip_blind")
		}
		in.Verb = "skip_blind"
	case "enter":
		if next == "shop" {
			return fold("enter_shop")
		}
	case "leave_shop", "next_blind", "start_blind":
		if next == "shop" || next == "blind" {
			return fold(in.Verb)
		}
	}
	return in
}
