// Package content embeds the base game content: jokers, bosses, tags,
// consumables and vouchers.
package content

import (
	"embed"

	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/loader"
)

// FS holds the base content files.
//
//go:embed *.yaml
var FS embed.FS

// Table loads the base content, layered under any extra directories.
func Table(extraDirs ...string) (*rules.Table, []string, error) {
	if len(extraDirs) == 0 {
		return loader.Load(FS)
	}
	return loader.LoadWith(FS, extraDirs...)
}
