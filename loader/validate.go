package loader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/OranPie/rulatro/engine/effects"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

var validRarities = []types.Rarity{
	types.RarityCommon, types.RarityUncommon, types.RarityRare, types.RarityLegendary,
}

var validConsumableKinds = []types.ConsumableKind{
	types.ConsumableTarot, types.ConsumablePlanet, types.ConsumableSpectral,
}

// Triggers a boss or tag never receives; blocks on them are dead.
var sourceOnlyTriggers = []types.Trigger{
	types.TriggerUse, types.TriggerSell, types.TriggerOtherJokers,
}

// validate checks compiled content for consistency. Problems that make a
// definition unusable are errors; suspicious but harmless content only
// warns.
func validate(tbl *rules.Table, ve *ValidationError) {
	for _, id := range tbl.IDs(rules.SourceJoker) {
		def, _ := tbl.Joker(id)
		where := fmt.Sprintf("joker %q", id)
		if !slices.Contains(validRarities, def.Rarity) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown rarity %q", where, def.Rarity))
		}
		if len(def.Blocks) == 0 && len(def.Rules) == 0 {
			ve.Warnings = append(ve.Warnings, where+": has no effects and no rules")
		}
		validateBlocks(where, def.Blocks, nil, ve)
	}

	for _, id := range tbl.IDs(rules.SourceBoss) {
		def, _ := tbl.Boss(id)
		where := fmt.Sprintf("boss %q", id)
		if def.MinAnte < 1 {
			ve.Warnings = append(ve.Warnings, where+": min_ante below 1 is treated as 1")
		}
		if def.TargetMult < 0 {
			ve.Errors = append(ve.Errors, where+": target_mult must not be negative")
		}
		validateBlocks(where, def.Blocks, sourceOnlyTriggers, ve)
	}

	for _, id := range tbl.IDs(rules.SourceTag) {
		def, _ := tbl.Tag(id)
		where := fmt.Sprintf("tag %q", id)
		if len(def.Blocks) == 0 {
			ve.Warnings = append(ve.Warnings, where+": has no effects and is never consumed")
		}
		validateBlocks(where, def.Blocks, sourceOnlyTriggers, ve)
	}

	for _, id := range tbl.IDs(rules.SourceConsumable) {
		def, _ := tbl.Consumable(id)
		where := fmt.Sprintf("consumable %q", id)
		if !slices.Contains(validConsumableKinds, def.Kind) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown kind %q", where, def.Kind))
		}
		if def.Hand != "" && !slices.Contains(types.HandKinds, def.Hand) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown hand %q", where, def.Hand))
		}
		if def.MinSelect < 0 || def.MaxSelect < def.MinSelect {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: selection %d..%d is empty", where, def.MinSelect, def.MaxSelect))
		}
		if !slices.ContainsFunc(def.Blocks, func(b types.EffectBlock) bool { return b.Trigger == types.TriggerUse }) {
			ve.Warnings = append(ve.Warnings, where+": no use effect")
		}
		validateBlocks(where, def.Blocks, nil, ve)
	}

	for _, id := range tbl.IDs(rules.SourceVoucher) {
		def, _ := tbl.Voucher(id)
		where := fmt.Sprintf("voucher %q", id)
		if def.Requires != "" {
			if _, ok := tbl.Voucher(def.Requires); !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf("%s: requires unknown voucher %q", where, def.Requires))
			}
		}
		validateBlocks(where, def.Blocks, nil, ve)
	}

	for _, phase := range []rules.ModPhase{rules.ModPre, rules.ModPost} {
		for _, m := range tbl.Mods(phase) {
			validateBlocks(fmt.Sprintf("mod %q", m.ID), m.Blocks, nil, ve)
		}
	}
}

func validateBlocks(where string, blocks []types.EffectBlock, dead []types.Trigger, ve *ValidationError) {
	for i, b := range blocks {
		at := fmt.Sprintf("%s effect %d", where, i)
		switch {
		case b.Trigger == "":
			ve.Errors = append(ve.Errors, at+": missing trigger")
		case !slices.Contains(types.Triggers, b.Trigger):
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown trigger %q", at, b.Trigger))
		case slices.Contains(dead, b.Trigger):
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("%s: trigger %q never fires here", at, b.Trigger))
		}
		if len(b.Actions) == 0 {
			ve.Warnings = append(ve.Warnings, at+": no actions")
		}
		for _, a := range b.Actions {
			if !effects.Known(a.Op) {
				ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown action %q", at, a.Op))
			}
		}
	}
}
