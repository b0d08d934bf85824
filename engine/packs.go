package engine

import (
	"slices"

	"github.com/OranPie/rulatro/engine/effects"
	"github.com/OranPie/rulatro/engine/hand"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

var packContents = map[types.PackKind]types.OfferKind{
	types.PackArcana:    types.OfferTarot,
	types.PackCelestial: types.OfferPlanet,
	types.PackSpectral:  types.OfferSpectral,
	types.PackBuffoon:   types.OfferJoker,
	types.PackStandard:  types.OfferCard,
}

// openPack generates the pack's options and makes it the open sub-state.
func (e *Engine) openPack(offer types.PackOffer) {
	kind := packContents[offer.Kind]
	opts := make([]types.PackOption, 0, offer.Options)
	for range offer.Options {
		switch kind {
		case types.OfferJoker:
			rarity := e.exec.PickRarity()
			id, ok := e.exec.PickJoker(rarity)
			if !ok {
				continue
			}
			opts = append(opts, types.PackOption{Kind: kind, ItemID: id, Rarity: rarity, Edition: e.exec.PickEdition()})
		case types.OfferCard:
			c := e.exec.RandomCard()
			if ed := e.exec.PickEdition(); ed != types.EditionNegative {
				c.Edition = ed
			}
			opts = append(opts, types.PackOption{Kind: kind, Card: &c})
		default:
			id, ok := e.exec.PickConsumable(consumableOffer[kind])
			if !ok {
				continue
			}
			opts = append(opts, types.PackOption{Kind: kind, ItemID: id})
		}
	}
	e.State.Pack = &types.OpenPack{Offer: offer, Options: opts}
	e.emit(types.Event{Type: types.EventPackOpened, Data: map[string]any{
		"kind":    string(offer.Kind),
		"size":    string(offer.Size),
		"options": len(opts),
		"picks":   offer.Picks,
	}})
	e.dispatch(&effects.Context{Trigger: types.TriggerPackOpened})
}

// picksRequired is the exact number of options pick_pack takes.
func picksRequired(p *types.OpenPack) int {
	return min(p.Offer.Picks, len(p.Options))
}

// PickPack takes options from the open pack. Tarots, planets and
// spectrals that need no hand selection are used at once; the rest go
// to the consumable slots. Jokers join the row and cards join the deck.
func (e *Engine) PickPack(indices []int) (Result, error) {
	if err := e.gate(ActPickPack); err != nil {
		return Result{}, err
	}
	s := e.State
	need := picksRequired(s.Pack)
	sel, err := state.Selection(len(s.Pack.Options), indices, need, need)
	if err != nil {
		return Result{}, e.illegal(ActPickPack, ErrInvalidSelection, "%v", err)
	}
	var jokers, kept int
	for _, i := range sel {
		o := s.Pack.Options[i]
		switch {
		case o.Kind == types.OfferJoker && o.Edition != types.EditionNegative:
			jokers++
		case o.Kind != types.OfferJoker && o.Kind != types.OfferCard && e.needsSelection(o.ItemID):
			kept++
		}
	}
	if jokers > 0 && len(s.Jokers)+jokers > state.JokerSlots(s, e.Config, e.Table) {
		return Result{}, e.illegal(ActPickPack, ErrSlotsFull, "joker row is full")
	}
	if kept > 0 && len(s.Consumables)+kept > state.ConsumableSlots(s, e.Config, e.Table) {
		return Result{}, e.illegal(ActPickPack, ErrSlotsFull, "consumable slots are full")
	}

	e.begin()
	pack := s.Pack
	s.Pack = nil
	picked := make([]string, 0, len(sel))
	for _, i := range sel {
		o := pack.Options[i]
		switch o.Kind {
		case types.OfferJoker:
			e.addJoker(e.exec.NewJoker(o.ItemID, o.Edition, e.exec.BasePrice(o.ItemID)))
			picked = append(picked, o.ItemID)
		case types.OfferCard:
			c := *o.Card
			s.Deck = append(s.Deck, c)
			e.emit(types.Event{Type: types.EventCardAdded, Data: map[string]any{"card": c.ID, "zone": string(effects.ZoneDeck)}})
			e.dispatch(&effects.Context{Trigger: types.TriggerCardAdded, Card: &c, Zone: effects.ZoneDeck})
			picked = append(picked, hand.RankName(c.Rank)+" of "+string(c.Suit))
		default:
			c := e.exec.NewConsumable(o.ItemID, o.Edition, e.exec.ConsumablePrice(o.ItemID, o.Edition))
			if e.needsSelection(o.ItemID) {
				e.exec.GiveConsumable(c)
			} else {
				e.applyConsumable(c, nil)
			}
			picked = append(picked, o.ItemID)
		}
	}
	e.emit(types.Event{Type: types.EventPackChosen, Data: map[string]any{"picked": picked}})
	return e.finish(Command{Action: ActPickPack, Indices: slices.Clone(indices)})
}

// SkipPack closes the open pack without taking anything.
func (e *Engine) SkipPack() (Result, error) {
	if err := e.gate(ActSkipPack); err != nil {
		return Result{}, err
	}
	e.begin()
	offer := e.State.Pack.Offer
	e.State.Pack = nil
	e.emit(types.Event{Type: types.EventPackSkipped, Data: map[string]any{"kind": string(offer.Kind)}})
	e.dispatch(&effects.Context{Trigger: types.TriggerPackSkipped})
	return e.finish(Command{Action: ActSkipPack})
}

func (e *Engine) needsSelection(id string) bool {
	def, ok := e.Table.Consumable(id)
	return ok && def.MinSelect > 0
}
