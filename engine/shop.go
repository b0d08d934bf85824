package engine

import (
	"math"

	"go.uber.org/zap"

	"github.com/OranPie/rulatro/engine/effects"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

var (
	offerKinds = []types.OfferKind{types.OfferJoker, types.OfferTarot, types.OfferPlanet, types.OfferSpectral}
	packKinds  = []types.PackKind{
		types.PackArcana, types.PackCelestial, types.PackSpectral,
		types.PackBuffoon, types.PackStandard,
	}
	packSizes = []types.PackSize{types.PackNormal, types.PackJumbo, types.PackMega}
)

var consumableOffer = map[types.OfferKind]types.ConsumableKind{
	types.OfferTarot:    types.ConsumableTarot,
	types.OfferPlanet:   types.ConsumablePlanet,
	types.OfferSpectral: types.ConsumableSpectral,
}

// EnterShop opens the shop after a cleared blind.
func (e *Engine) EnterShop() (Result, error) {
	if err := e.gate(ActEnterShop); err != nil {
		return Result{}, err
	}
	e.begin()
	s := e.State
	s.Phase = types.PhaseShop
	s.Shop = &types.Shop{RerollCost: e.rerollBase()}
	s.Shop.Cards = e.cardOffers()
	s.Shop.Packs = e.packOffers()
	s.Shop.Vouchers = e.voucherOffers()
	e.emit(types.Event{Type: types.EventShopEntered, Data: map[string]any{
		"cards":    len(s.Shop.Cards),
		"packs":    len(s.Shop.Packs),
		"vouchers": len(s.Shop.Vouchers),
	}})
	e.dispatch(&effects.Context{Trigger: types.TriggerShopEnter})
	return e.finish(Command{Action: ActEnterShop})
}

// LeaveShop closes the shop and moves to the next blind.
func (e *Engine) LeaveShop() (Result, error) {
	if err := e.gate(ActLeaveShop); err != nil {
		return Result{}, err
	}
	e.begin()
	e.dispatch(&effects.Context{Trigger: types.TriggerShopExit})
	e.State.Shop = nil
	e.emit(types.Event{Type: types.EventShopLeft, Data: map[string]any{"money": e.State.Money}})
	e.advance()
	return e.finish(Command{Action: ActLeaveShop})
}

// Reroll replaces the card offers. Free rerolls are spent first; a paid
// reroll raises the cost by the configured step.
func (e *Engine) Reroll() (Result, error) {
	if err := e.gate(ActReroll); err != nil {
		return Result{}, err
	}
	s := e.State
	free := s.FreeRerolls > 0
	cost := s.Shop.RerollCost
	if !free && !state.CanAfford(s, e.Config, e.Table, cost) {
		return Result{}, e.illegal(ActReroll, ErrNotEnoughMoney, "reroll costs %d, have %d", cost, s.Money)
	}
	e.begin()
	paid := int64(0)
	if free {
		s.FreeRerolls--
	} else {
		s.Money -= cost
		paid = cost
		s.Shop.RerollCost += e.Config.Shop.RerollStep
	}
	s.Shop.Cards = e.cardOffers()
	e.emit(types.Event{Type: types.EventShopRerolled, Data: map[string]any{"cost": paid, "next_cost": s.Shop.RerollCost}})
	e.dispatch(&effects.Context{Trigger: types.TriggerShopReroll})
	return e.finish(Command{Action: ActReroll})
}

// BuyCard buys the card offer at index. Jokers join the row and receive
// acquire; consumables go to a free slot.
func (e *Engine) BuyCard(index int) (Result, error) {
	if err := e.gate(ActBuyCard); err != nil {
		return Result{}, err
	}
	s := e.State
	if index < 0 || index >= len(s.Shop.Cards) {
		return Result{}, e.illegal(ActBuyCard, ErrInvalidOffer, "card offer %d", index)
	}
	offer := s.Shop.Cards[index]
	if !state.CanAfford(s, e.Config, e.Table, offer.Price) {
		return Result{}, e.illegal(ActBuyCard, ErrNotEnoughMoney, "costs %d, have %d", offer.Price, s.Money)
	}
	if offer.Kind == types.OfferJoker {
		if !state.HasJokerRoom(s, e.Config, e.Table, offer.Edition) {
			return Result{}, e.illegal(ActBuyCard, ErrSlotsFull, "joker row is full")
		}
	} else if !state.HasConsumableRoom(s, e.Config, e.Table, offer.Edition) {
		return Result{}, e.illegal(ActBuyCard, ErrSlotsFull, "consumable slots are full")
	}

	e.begin()
	s.Money -= offer.Price
	s.Shop.Cards = append(s.Shop.Cards[:index:index], s.Shop.Cards[index+1:]...)
	e.emit(types.Event{Type: types.EventShopBought, Data: map[string]any{
		"kind":  string(offer.Kind),
		"id":    offer.ItemID,
		"price": offer.Price,
	}})
	if offer.Kind == types.OfferJoker {
		e.addJoker(e.exec.NewJoker(offer.ItemID, offer.Edition, offer.Price))
	} else {
		e.exec.GiveConsumable(e.exec.NewConsumable(offer.ItemID, offer.Edition, offer.Price))
	}
	return e.finish(Command{Action: ActBuyCard, Index: index})
}

// addJoker puts a joker on the row directly and runs its acquire blocks.
func (e *Engine) addJoker(j types.JokerInstance) {
	e.State.Jokers = append(e.State.Jokers, j)
	e.emit(types.Event{Type: types.EventJokerAdded, Data: map[string]any{"uid": j.UID, "id": j.ID}})
	e.disp.DispatchSource(
		effects.Source{Kind: rules.SourceJoker, ID: j.ID, UID: j.UID},
		&effects.Context{Trigger: types.TriggerAcquire},
		&effects.Outcome{})
}

// BuyPack buys the pack offer at index and opens it.
func (e *Engine) BuyPack(index int) (Result, error) {
	if err := e.gate(ActBuyPack); err != nil {
		return Result{}, err
	}
	s := e.State
	if index < 0 || index >= len(s.Shop.Packs) {
		return Result{}, e.illegal(ActBuyPack, ErrInvalidOffer, "pack offer %d", index)
	}
	offer := s.Shop.Packs[index]
	if !state.CanAfford(s, e.Config, e.Table, offer.Price) {
		return Result{}, e.illegal(ActBuyPack, ErrNotEnoughMoney, "costs %d, have %d", offer.Price, s.Money)
	}
	e.begin()
	s.Money -= offer.Price
	s.Shop.Packs = append(s.Shop.Packs[:index:index], s.Shop.Packs[index+1:]...)
	e.emit(types.Event{Type: types.EventShopBought, Data: map[string]any{
		"kind":  "pack",
		"id":    string(offer.Kind) + ":" + string(offer.Size),
		"price": offer.Price,
	}})
	e.openPack(offer)
	return e.finish(Command{Action: ActBuyPack, Index: index})
}

// BuyVoucher buys the voucher offer at index and applies its acquire
// blocks once.
func (e *Engine) BuyVoucher(index int) (Result, error) {
	if err := e.gate(ActBuyVoucher); err != nil {
		return Result{}, err
	}
	s := e.State
	if index < 0 || index >= len(s.Shop.Vouchers) {
		return Result{}, e.illegal(ActBuyVoucher, ErrInvalidOffer, "voucher offer %d", index)
	}
	offer := s.Shop.Vouchers[index]
	if !state.CanAfford(s, e.Config, e.Table, offer.Price) {
		return Result{}, e.illegal(ActBuyVoucher, ErrNotEnoughMoney, "costs %d, have %d", offer.Price, s.Money)
	}
	e.begin()
	s.Money -= offer.Price
	s.Shop.Vouchers = append(s.Shop.Vouchers[:index:index], s.Shop.Vouchers[index+1:]...)
	s.Vouchers = append(s.Vouchers, offer.ID)
	e.emit(types.Event{Type: types.EventShopBought, Data: map[string]any{
		"kind":  "voucher",
		"id":    offer.ID,
		"price": offer.Price,
	}})
	e.disp.DispatchSource(
		effects.Source{Kind: rules.SourceVoucher, ID: offer.ID},
		&effects.Context{Trigger: types.TriggerAcquire},
		&effects.Outcome{})
	e.log.Info("voucher bought", zap.String("voucher", offer.ID))
	return e.finish(Command{Action: ActBuyVoucher, Index: index})
}

// cardOffers fills the card slots. A kind with nothing in the table
// leaves its slot empty.
func (e *Engine) cardOffers() []types.CardOffer {
	sh := e.Config.Shop
	n := sh.CardSlots + int(state.Rule(e.State, e.Table, "shop_card_slots"))
	weights := make([]int, len(offerKinds))
	for i, k := range offerKinds {
		weights[i] = sh.KindWeights[k]
	}
	var out []types.CardOffer
	for range max(n, 0) {
		i := e.RNG.WeightedSelect(weights)
		if i < 0 {
			break
		}
		kind := offerKinds[i]
		if kind == types.OfferJoker {
			rarity := e.exec.PickRarity()
			id, ok := e.exec.PickJoker(rarity)
			if !ok {
				continue
			}
			ed := e.exec.PickEdition()
			out = append(out, types.CardOffer{
				Kind:    kind,
				ItemID:  id,
				Rarity:  rarity,
				Edition: ed,
				Price:   e.discount(e.exec.JokerPrice(id, ed)),
			})
			continue
		}
		id, ok := e.exec.PickConsumable(consumableOffer[kind])
		if !ok {
			continue
		}
		out = append(out, types.CardOffer{Kind: kind, ItemID: id, Price: e.discount(e.exec.ConsumablePrice(id, types.EditionNone))})
	}
	return out
}

func (e *Engine) packOffers() []types.PackOffer {
	sh := e.Config.Shop
	kw := make([]int, len(packKinds))
	for i, k := range packKinds {
		kw[i] = sh.PackKinds[k]
	}
	sw := make([]int, len(packSizes))
	for i, sz := range packSizes {
		sw[i] = sh.PackSizes[sz]
	}
	var out []types.PackOffer
	for range max(sh.PackSlots, 0) {
		ki, si := e.RNG.WeightedSelect(kw), e.RNG.WeightedSelect(sw)
		if ki < 0 || si < 0 {
			break
		}
		size := packSizes[si]
		rule := sh.Packs[size]
		out = append(out, types.PackOffer{
			Kind:    packKinds[ki],
			Size:    size,
			Options: rule.Options,
			Picks:   rule.Picks,
			Price:   e.discount(rule.Price),
		})
	}
	return out
}

func (e *Engine) voucherOffers() []types.VoucherOffer {
	avail := e.exec.AvailableVouchers()
	var out []types.VoucherOffer
	for range e.Config.Shop.VoucherSlots {
		if len(avail) == 0 {
			break
		}
		i := e.RNG.Intn(len(avail))
		id := avail[i]
		avail = append(avail[:i:i], avail[i+1:]...)
		out = append(out, types.VoucherOffer{ID: id, Price: e.discount(e.exec.VoucherPrice(id))})
	}
	return out
}

// discount applies the shop_discount rule, a percentage off.
func (e *Engine) discount(price int64) int64 {
	pct := state.Rule(e.State, e.Table, "shop_discount")
	if pct <= 0 {
		return price
	}
	return max(int64(math.Floor(float64(price)*(100-min(pct, 100))/100)), 0)
}

// rerollBase is the opening reroll cost, less the reroll_discount rule.
func (e *Engine) rerollBase() int64 {
	d := int64(state.Rule(e.State, e.Table, "reroll_discount"))
	return max(e.Config.Shop.RerollBase-d, 0)
}
