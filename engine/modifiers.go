package engine

import (
	"github.com/OranPie/rulatro/engine/effects"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

// Card enhancements, seals and editions are ordinary effect blocks run by
// the same executor as content rules.

func num(n float64) *types.Expr { return &types.Expr{Kind: types.ExprNumber, Number: n} }

func roll(sides float64) *types.Expr {
	return &types.Expr{Kind: types.ExprCall, Text: "roll", Args: []*types.Expr{num(sides)}}
}

func do(op types.ActionOp, target string, v float64) types.Action {
	return types.Action{Op: op, Target: target, Value: num(v)}
}

func on(trigger types.Trigger, actions ...types.Action) types.EffectBlock {
	return types.EffectBlock{Trigger: trigger, Actions: actions}
}

func when(trigger types.Trigger, cond *types.Expr, actions ...types.Action) types.EffectBlock {
	return types.EffectBlock{Trigger: trigger, Conditions: []*types.Expr{cond}, Actions: actions}
}

var enhancementBlocks = map[types.Enhancement][]types.EffectBlock{
	types.EnhancementBonus: {on(types.TriggerScored, do("add_chips", "", 30))},
	types.EnhancementMult:  {on(types.TriggerScored, do("add_mult", "", 4))},
	types.EnhancementGlass: {
		on(types.TriggerScored, do("mul_mult", "", 2)),
		when(types.TriggerScored, roll(4), do("destroy_card", "", 1)),
	},
	types.EnhancementStone: {on(types.TriggerScored, do("add_chips", "", 50))},
	types.EnhancementLucky: {
		when(types.TriggerScored, roll(5), do("add_mult", "", 20)),
		when(types.TriggerScored, roll(15), do("add_money", "", 20)),
	},
	types.EnhancementSteel: {on(types.TriggerHeld, do("mul_mult", "", 1.5))},
	types.EnhancementGold:  {on(types.TriggerRoundEnd, do("add_money", "", 3))},
}

var sealBlocks = map[types.Seal][]types.EffectBlock{
	types.SealRed: {
		on(types.TriggerScored, do("retrigger_scored", "", 1)),
		on(types.TriggerHeld, do("retrigger_held", "", 1)),
	},
	types.SealGold:   {on(types.TriggerScored, do("add_money", "", 3))},
	types.SealBlue:   {on(types.TriggerRoundEnd, do("add_planet", "last_hand", 1))},
	types.SealPurple: {on(types.TriggerDiscard, do("add_tarot", "", 1))},
}

var cardEditionBlocks = map[types.Edition][]types.EffectBlock{
	types.EditionFoil:        {on(types.TriggerScored, do("add_chips", "", 50))},
	types.EditionHolographic: {on(types.TriggerScored, do("add_mult", "", 10))},
	types.EditionPolychrome:  {on(types.TriggerScored, do("mul_mult", "", 1.5))},
}

// jokerEditionBlocks splits joker editions around the joker's own
// independent blocks: foil and holographic before, polychrome after.
func jokerEditionBlocks(ed types.Edition) (before, after []types.EffectBlock) {
	switch ed {
	case types.EditionFoil:
		return []types.EffectBlock{on(types.TriggerIndependent, do("add_chips", "", 50))}, nil
	case types.EditionHolographic:
		return []types.EffectBlock{on(types.TriggerIndependent, do("add_mult", "", 10))}, nil
	case types.EditionPolychrome:
		return nil, []types.EffectBlock{on(types.TriggerIndependent, do("mul_mult", "", 1.5))}
	}
	return nil, nil
}

// modifiers runs a card's enhancement, seal and edition blocks, in that
// order, for ctx.Trigger.
func (e *Engine) modifiers(ctx *effects.Context, out *effects.Outcome) {
	c := ctx.Card
	run := func(id string, blocks []types.EffectBlock) {
		if len(blocks) == 0 {
			return
		}
		cc := *ctx
		cc.Source = effects.Source{Kind: rules.SourceCard, ID: id, UID: c.ID}
		e.exec.RunBlocks(blocks, &cc, out)
	}
	run(string(c.Enhancement), enhancementBlocks[c.Enhancement])
	run(string(c.Seal)+"_seal", sealBlocks[c.Seal])
	run(string(c.Edition), cardEditionBlocks[c.Edition])
}
