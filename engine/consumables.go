package engine

import (
	"slices"

	"go.uber.org/zap"

	"github.com/OranPie/rulatro/engine/effects"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

// UseConsumable uses a held consumable on the hand cards at indices.
func (e *Engine) UseConsumable(uid uint32, indices []int) (Result, error) {
	if err := e.gate(ActUseConsumable); err != nil {
		return Result{}, err
	}
	s := e.State
	i := state.ConsumableIndex(s, uid)
	if i < 0 {
		return Result{}, e.illegal(ActUseConsumable, ErrUnknownConsumable, "uid %d", uid)
	}
	c := s.Consumables[i]
	def, ok := e.Table.Consumable(c.ID)
	if !ok {
		return Result{}, e.illegal(ActUseConsumable, ErrUnknownConsumable, "no definition for %q", c.ID)
	}
	sel, err := state.Selection(len(s.Hand), indices, def.MinSelect, def.MaxSelect)
	if err != nil {
		return Result{}, e.illegal(ActUseConsumable, ErrInvalidSelection, "%v", err)
	}

	e.begin()
	s.Consumables = slices.Delete(s.Consumables, i, i+1)
	e.applyConsumable(c, sel)
	return e.finish(Command{Action: ActUseConsumable, UID: uid, Indices: slices.Clone(indices)})
}

// applyConsumable runs the consumable's own use blocks, then every
// source's use blocks.
func (e *Engine) applyConsumable(c types.Consumable, sel []int) {
	s := e.State
	ctx := &effects.Context{
		Trigger:    types.TriggerUse,
		Consumable: &c,
		Selected:   sel,
		Zone:       effects.ZoneSelected,
	}
	e.disp.DispatchSource(effects.Source{Kind: rules.SourceConsumable, ID: c.ID, UID: c.UID}, ctx, &effects.Outcome{})
	e.dispatch(ctx)
	if c.Kind == types.ConsumablePlanet && !slices.Contains(s.PlanetsUsed, c.ID) {
		s.PlanetsUsed = append(s.PlanetsUsed, c.ID)
	}
	e.emit(types.Event{Type: types.EventConsumableUsed, Data: map[string]any{
		"uid":  c.UID,
		"id":   c.ID,
		"kind": string(c.Kind),
	}})
	e.log.Debug("consumable used", zap.String("consumable", c.ID), zap.Ints("cards", sel))
}

// SellJoker sells a joker for half its buy price plus its sell bonus,
// at least 1. The sold joker's sell blocks run first, then any_sell on
// the rest of the row.
func (e *Engine) SellJoker(uid uint32) (Result, error) {
	if err := e.gate(ActSellJoker); err != nil {
		return Result{}, err
	}
	s := e.State
	i := state.JokerIndex(s, uid)
	if i < 0 {
		return Result{}, e.illegal(ActSellJoker, ErrUnknownJoker, "uid %d", uid)
	}
	e.begin()
	j := s.Jokers[i]
	value := max(1, j.BuyPrice/2+int64(j.Vars["sell_bonus"]))
	s.Money += value
	ctx := &effects.Context{Trigger: types.TriggerSell, SoldValue: value}
	e.disp.DispatchSource(effects.Source{Kind: rules.SourceJoker, ID: j.ID, UID: j.UID}, ctx, &effects.Outcome{})

	// sell blocks may have moved the row
	if i = state.JokerIndex(s, uid); i >= 0 {
		s.Jokers = slices.Delete(s.Jokers, i, i+1)
	}
	e.emit(types.Event{Type: types.EventJokerSold, Data: map[string]any{"uid": j.UID, "id": j.ID, "value": value}})
	e.dispatch(&effects.Context{Trigger: types.TriggerAnySell, Other: &j, SoldValue: value})
	return e.finish(Command{Action: ActSellJoker, UID: uid})
}

// SellConsumable sells a held consumable for half its price plus the
// consumable_sell_bonus rule, at least 1.
func (e *Engine) SellConsumable(uid uint32) (Result, error) {
	if err := e.gate(ActSellConsumable); err != nil {
		return Result{}, err
	}
	s := e.State
	i := state.ConsumableIndex(s, uid)
	if i < 0 {
		return Result{}, e.illegal(ActSellConsumable, ErrUnknownConsumable, "uid %d", uid)
	}
	e.begin()
	c := s.Consumables[i]
	value := max(1, c.Price/2+int64(state.Rule(s, e.Table, "consumable_sell_bonus")))
	s.Money += value
	s.Consumables = slices.Delete(s.Consumables, i, i+1)
	e.emit(types.Event{Type: types.EventConsumableSold, Data: map[string]any{"uid": c.UID, "id": c.ID, "value": value}})
	return e.finish(Command{Action: ActSellConsumable, UID: uid})
}
