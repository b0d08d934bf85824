package effects

import (
	"math"
	"strings"

	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

func init() {
	Register("add_card_bonus", addCardBonus)
	Register("set_enhancement", setEnhancement)
	Register("clear_enhancement", clearEnhancement)
	Register("set_edition", setEdition)
	Register("set_seal", setSeal)
	Register("destroy_card", destroyCard)
	Register("copy_played_card", copyCard)
	Alias("copy_card", "copy_played_card")
	Register("add_stone_card", addStoneCard)
	Register("add_random_hand_card", addRandomHandCard)
}

func cardsOrFail(x *Executor, a types.Action, ctx *Context) ([]*types.Card, error) {
	cards := x.targetCards(ctx)
	if len(cards) == 0 {
		return nil, actionErr(a, ctx, "no card bound or selected")
	}
	return cards, nil
}

func addCardBonus(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	cards, err := cardsOrFail(x, a, ctx)
	if err != nil {
		return err
	}
	for _, c := range cards {
		c.BonusChips += int64(math.Floor(v))
	}
	return nil
}

func setEnhancement(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	name := strings.ToLower(strings.TrimSpace(a.Target))
	var enh types.Enhancement
	switch {
	case name == "" || name == "none" || name == "clear":
		enh = types.EnhancementNone
	case name == "random":
		enh = enhancements[x.RNG.Intn(len(enhancements))]
	case isEnhancement(name):
		enh = types.Enhancement(name)
	default:
		return actionErr(a, ctx, "unknown enhancement %q", a.Target)
	}
	cards, err := cardsOrFail(x, a, ctx)
	if err != nil {
		return err
	}
	for _, c := range cards {
		c.Enhancement = enh
	}
	return nil
}

func clearEnhancement(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	cards, err := cardsOrFail(x, a, ctx)
	if err != nil {
		return err
	}
	for _, c := range cards {
		c.Enhancement = types.EnhancementNone
	}
	return nil
}

func setEdition(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	name := strings.ToLower(strings.TrimSpace(a.Target))
	var ed types.Edition
	switch {
	case name == "" || name == "none":
		ed = types.EditionNone
	case name == "random":
		// Negative is never rolled onto a playing card.
		ed = editions[x.RNG.Intn(len(editions)-1)]
	case isEdition(name):
		ed = types.Edition(name)
	default:
		return actionErr(a, ctx, "unknown edition %q", a.Target)
	}
	cards, err := cardsOrFail(x, a, ctx)
	if err != nil {
		return err
	}
	for _, c := range cards {
		c.Edition = ed
	}
	return nil
}

func setSeal(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	name := strings.ToLower(strings.TrimSpace(a.Target))
	var seal types.Seal
	switch {
	case name == "" || name == "none":
		seal = types.SealNone
	case name == "random":
		seal = seals[x.RNG.Intn(len(seals))]
	case isSeal(name):
		seal = types.Seal(name)
	default:
		return actionErr(a, ctx, "unknown seal %q", a.Target)
	}
	cards, err := cardsOrFail(x, a, ctx)
	if err != nil {
		return err
	}
	for _, c := range cards {
		c.Seal = seal
	}
	return nil
}

// destroyCard marks the target cards; the engine removes them once the
// current step finishes.
func destroyCard(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	cards, err := cardsOrFail(x, a, ctx)
	if err != nil {
		return err
	}
	for _, c := range cards {
		x.Doom(c.ID)
	}
	return nil
}

// copyCard copies the target cards into the hand, or into the deck when
// the target is "deck". Hand copies join the hand when the engine settles,
// so bound hand cards stay valid for the rest of the block.
func copyCard(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	cards, err := cardsOrFail(x, a, ctx)
	if err != nil {
		return err
	}
	toDeck := strings.EqualFold(a.Target, "deck")
	n, err := repeatCount(a, v, ctx)
	if err != nil {
		return err
	}
	n = max(n, 1)
	var copies []types.Card
	for range n {
		for _, c := range cards {
			cp := *c
			cp.ID = state.NextUID(x.State)
			copies = append(copies, cp)
		}
	}
	for _, cp := range copies {
		if toDeck {
			x.State.Deck = append(x.State.Deck, cp)
			x.created = append(x.created, CreatedCard{Card: cp, Zone: ZoneDeck})
		} else {
			x.created = append(x.created, CreatedCard{Card: cp, Zone: ZoneHeld})
		}
	}
	return nil
}

func addStoneCard(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	n, err := repeatCount(a, v, ctx)
	if err != nil {
		return err
	}
	for range n {
		c := x.RandomCard()
		c.Enhancement = types.EnhancementStone
		x.State.Deck = append(x.State.Deck, c)
		x.created = append(x.created, CreatedCard{Card: c, Zone: ZoneDeck})
	}
	if n > 0 {
		state.Shuffle(x.State.Deck, x.RNG)
	}
	return nil
}

// addRandomHandCard adds random cards to the hand once the engine
// settles. The target optionally names an enhancement; otherwise each
// card gets a random seal.
func addRandomHandCard(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	name := strings.ToLower(strings.TrimSpace(a.Target))
	if name != "" && !isEnhancement(name) {
		return actionErr(a, ctx, "unknown enhancement %q", a.Target)
	}
	n, err := repeatCount(a, v, ctx)
	if err != nil {
		return err
	}
	for range n {
		c := x.RandomCard()
		if name != "" {
			c.Enhancement = types.Enhancement(name)
		} else {
			c.Seal = seals[x.RNG.Intn(len(seals))]
		}
		x.created = append(x.created, CreatedCard{Card: c, Zone: ZoneHeld})
	}
	return nil
}
