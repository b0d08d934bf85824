package effects

import (
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

var (
	enhancements = []types.Enhancement{
		types.EnhancementBonus, types.EnhancementMult, types.EnhancementGlass, types.EnhancementStone,
		types.EnhancementLucky, types.EnhancementSteel, types.EnhancementGold, types.EnhancementWild,
	}
	editions = []types.Edition{
		types.EditionFoil, types.EditionHolographic, types.EditionPolychrome, types.EditionNegative,
	}
	seals = []types.Seal{types.SealRed, types.SealGold, types.SealBlue, types.SealPurple}
)

func isEnhancement(s string) bool {
	for _, e := range enhancements {
		if string(e) == s {
			return true
		}
	}
	return false
}

func isEdition(s string) bool {
	for _, e := range editions {
		if string(e) == s {
			return true
		}
	}
	return false
}

func isSeal(s string) bool {
	for _, e := range seals {
		if string(e) == s {
			return true
		}
	}
	return false
}

// CardChips is the chip value a card contributes when scored: rank chips
// plus its permanent bonus. Stone cards carry no rank chips.
func (x *Executor) CardChips(c types.Card) int64 {
	if c.Enhancement == types.EnhancementStone {
		return c.BonusChips
	}
	return x.Config.RankChips[c.Rank] + c.BonusChips
}

// Roll reports a 1-in-sides success. The probability_mult rule widens the
// winning range. Non-positive sides never succeed and draw nothing.
func (x *Executor) Roll(sides int) bool {
	if sides <= 0 {
		return false
	}
	win := 1
	if m := state.Rule(x.State, x.Table, "probability_mult"); m > 1 {
		win = int(m)
	}
	return x.RNG.Roll(sides) <= win
}

// vars returns the variable store of the context source. Jokers keep
// their variables on the instance.
func (x *Executor) vars(ctx *Context) map[string]float64 {
	if ctx.Source.Kind == rules.SourceJoker {
		if i := state.JokerIndex(x.State, ctx.Source.UID); i >= 0 {
			j := &x.State.Jokers[i]
			if j.Vars == nil {
				j.Vars = map[string]float64{}
			}
			return j.Vars
		}
	}
	return state.Vars(x.State, ctx.Source.VarKey())
}

// targetCards returns the cards a card action applies to: the bound card,
// else the selected hand cards.
func (x *Executor) targetCards(ctx *Context) []*types.Card {
	if ctx.Card != nil {
		return []*types.Card{ctx.Card}
	}
	var out []*types.Card
	for _, i := range ctx.Selected {
		if i >= 0 && i < len(x.State.Hand) {
			out = append(out, &x.State.Hand[i])
		}
	}
	return out
}
