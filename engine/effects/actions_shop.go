package effects

import (
	"math"
	"slices"
	"strings"

	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

var packKinds = []types.PackKind{
	types.PackArcana, types.PackCelestial, types.PackSpectral, types.PackBuffoon, types.PackStandard,
}

func init() {
	Register("add_tarot", addConsumable(types.ConsumableTarot))
	Register("add_planet", addConsumable(types.ConsumablePlanet))
	Register("add_spectral", addConsumable(types.ConsumableSpectral))
	Register("duplicate_random_consumable", duplicateRandomConsumable)

	Register("add_free_reroll", addFreeReroll)
	Register("set_shop_price", setShopPrice)
	Register("set_reroll_cost", setRerollCost)
	Register("add_shop_joker", addShopJoker)
	Register("add_pack", addPack)
	Register("add_voucher", addVoucher)

	Register("add_tag", addTag)
	Register("duplicate_next_tag", duplicateNextTag)
}

// resolveConsumable turns a target into a consumable id of kind. Planets
// also accept last_hand or a hand kind name.
func (x *Executor) resolveConsumable(kind types.ConsumableKind, target string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(target))
	if t == "" || t == "random" {
		return x.PickConsumable(kind)
	}
	if kind == types.ConsumablePlanet {
		if t == "last_hand" {
			if x.State.LastHand == "" {
				return "", false
			}
			return x.Table.PlanetFor(x.State.LastHand)
		}
		for _, k := range types.HandKinds {
			if string(k) == t {
				return x.Table.PlanetFor(k)
			}
		}
	}
	id, ok := x.Table.Lookup(rules.SourceConsumable, t)
	if !ok {
		return "", false
	}
	def, _ := x.Table.Consumable(id)
	return id, def.Kind == kind
}

func addConsumable(kind types.ConsumableKind) Handler {
	return func(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
		for range int(math.Floor(v)) {
			id, ok := x.resolveConsumable(kind, a.Target)
			if !ok {
				return actionErr(a, ctx, "no %s matches %q", kind, a.Target)
			}
			if !x.GiveConsumable(x.NewConsumable(id, types.EditionNone, x.ConsumablePrice(id, types.EditionNone))) {
				return actionErr(a, ctx, "no consumable slot free")
			}
		}
		return nil
	}
}

// duplicateRandomConsumable copies a held consumable as a negative, which
// takes no slot.
func duplicateRandomConsumable(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	s := x.State
	if len(s.Consumables) == 0 {
		return nil
	}
	src := s.Consumables[x.RNG.Intn(len(s.Consumables))]
	x.GiveConsumable(x.NewConsumable(src.ID, types.EditionNegative, src.Price))
	return nil
}

func addFreeReroll(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	x.State.FreeRerolls = max(x.State.FreeRerolls+int(math.Floor(v)), 0)
	return nil
}

func (x *Executor) shop(a types.Action, ctx *Context) (*types.Shop, error) {
	if x.State.Shop == nil {
		return nil, actionErr(a, ctx, "no shop is open")
	}
	return x.State.Shop, nil
}

// setShopPrice overrides offer prices. The target picks cards, jokers,
// packs, vouchers, or all.
func setShopPrice(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	sh, err := x.shop(a, ctx)
	if err != nil {
		return err
	}
	price := max(int64(math.Floor(v)), 0)
	t := strings.ToLower(strings.TrimSpace(a.Target))
	if t == "" {
		t = "all"
	}
	switch t {
	case "cards", "jokers", "packs", "vouchers", "all":
	default:
		return actionErr(a, ctx, "unknown price target %q", a.Target)
	}
	for i := range sh.Cards {
		if t == "all" || t == "cards" || (t == "jokers" && sh.Cards[i].Kind == types.OfferJoker) {
			sh.Cards[i].Price = price
		}
	}
	if t == "all" || t == "packs" {
		for i := range sh.Packs {
			sh.Packs[i].Price = price
		}
	}
	if t == "all" || t == "vouchers" {
		for i := range sh.Vouchers {
			sh.Vouchers[i].Price = price
		}
	}
	return nil
}

func setRerollCost(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	sh, err := x.shop(a, ctx)
	if err != nil {
		return err
	}
	sh.RerollCost = max(int64(math.Floor(v)), 0)
	return nil
}

// addShopJoker adds a joker offer. The value, when given, is its price.
func addShopJoker(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	sh, err := x.shop(a, ctx)
	if err != nil {
		return err
	}
	id, ok := x.resolveJoker(a.Target)
	if !ok {
		return actionErr(a, ctx, "no joker matches %q", a.Target)
	}
	def, _ := x.Table.Joker(id)
	ed := x.PickEdition()
	price := x.JokerPrice(id, ed)
	if a.Value != nil {
		price = max(int64(math.Floor(v)), 0)
	}
	sh.Cards = append(sh.Cards, types.CardOffer{
		Kind:    types.OfferJoker,
		ItemID:  id,
		Rarity:  def.Rarity,
		Edition: ed,
		Price:   price,
	})
	return nil
}

// addPack adds a pack offer. The target is "kind" or "kind:size"; the
// value, when given, is its price.
func addPack(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	sh, err := x.shop(a, ctx)
	if err != nil {
		return err
	}
	kindName, sizeName, _ := strings.Cut(strings.ToLower(strings.TrimSpace(a.Target)), ":")
	kind := types.PackKind(kindName)
	if !slices.Contains(packKinds, kind) {
		return actionErr(a, ctx, "unknown pack kind %q", kindName)
	}
	size := types.PackSize(sizeName)
	if size == "" {
		size = types.PackNormal
	}
	rule, ok := x.Config.Shop.Packs[size]
	if !ok {
		return actionErr(a, ctx, "unknown pack size %q", sizeName)
	}
	price := rule.Price
	if a.Value != nil {
		price = max(int64(math.Floor(v)), 0)
	}
	sh.Packs = append(sh.Packs, types.PackOffer{Kind: kind, Size: size, Options: rule.Options, Picks: rule.Picks, Price: price})
	return nil
}

// AvailableVouchers lists vouchers not yet owned whose prerequisite is
// owned, in table order.
func (x *Executor) AvailableVouchers() []string {
	owned := map[string]bool{}
	for _, id := range x.State.Vouchers {
		owned[id] = true
	}
	if x.State.Shop != nil {
		for _, o := range x.State.Shop.Vouchers {
			owned[o.ID] = true
		}
	}
	var out []string
	for _, id := range x.Table.IDs(rules.SourceVoucher) {
		def, _ := x.Table.Voucher(id)
		if owned[id] || (def.Requires != "" && !slices.Contains(x.State.Vouchers, def.Requires)) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// VoucherPrice is the definition price, else the configured price.
func (x *Executor) VoucherPrice(id string) int64 {
	if def, ok := x.Table.Voucher(id); ok && def.Price > 0 {
		return def.Price
	}
	return x.Config.Shop.VoucherPrice
}

func addVoucher(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	sh, err := x.shop(a, ctx)
	if err != nil {
		return err
	}
	var id string
	t := strings.ToLower(strings.TrimSpace(a.Target))
	if t == "" || t == "random" {
		avail := x.AvailableVouchers()
		if len(avail) == 0 {
			return nil
		}
		id = avail[x.RNG.Intn(len(avail))]
	} else {
		var ok bool
		if id, ok = x.Table.Lookup(rules.SourceVoucher, t); !ok {
			return actionErr(a, ctx, "no voucher matches %q", a.Target)
		}
	}
	price := x.VoucherPrice(id)
	if a.Value != nil {
		price = max(int64(math.Floor(v)), 0)
	}
	sh.Vouchers = append(sh.Vouchers, types.VoucherOffer{ID: id, Price: price})
	return nil
}

func addTag(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	n, err := repeatCount(a, v, ctx)
	if err != nil {
		return err
	}
	for range n {
		var id string
		var ok bool
		if t := strings.TrimSpace(a.Target); t == "" || strings.EqualFold(t, "random") {
			id, ok = x.PickTag()
		} else {
			id, ok = x.Table.Lookup(rules.SourceTag, t)
		}
		if !ok {
			return actionErr(a, ctx, "no tag matches %q", a.Target)
		}
		x.GiveTag(id)
	}
	return nil
}

func duplicateNextTag(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	x.State.DuplicateNextTag += max(int(math.Floor(v)), 0)
	return nil
}
