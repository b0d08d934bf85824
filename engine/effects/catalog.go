package effects

import (
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

var (
	rarityOrder  = []types.Rarity{types.RarityCommon, types.RarityUncommon, types.RarityRare, types.RarityLegendary}
	editionOrder = []types.Edition{
		types.EditionNone, types.EditionFoil, types.EditionHolographic,
		types.EditionPolychrome, types.EditionNegative,
	}
)

// PickRarity draws a joker rarity from the shop rarity weights.
func (x *Executor) PickRarity() types.Rarity {
	weights := make([]int, len(rarityOrder))
	for i, r := range rarityOrder {
		weights[i] = x.Config.Shop.RarityWeights[r]
	}
	i := x.RNG.WeightedSelect(weights)
	if i < 0 {
		return types.RarityCommon
	}
	return rarityOrder[i]
}

// PickEdition draws an edition from the shop edition weights.
func (x *Executor) PickEdition() types.Edition {
	weights := make([]int, len(editionOrder))
	for i, e := range editionOrder {
		weights[i] = x.Config.Shop.EditionWeights[e]
	}
	i := x.RNG.WeightedSelect(weights)
	if i < 0 {
		return types.EditionNone
	}
	return editionOrder[i]
}

// PickJoker draws a joker id of the given rarity. Jokers already held are
// skipped unless every candidate is held or the allow_duplicates rule is
// set. Returns false when the table has no joker of that rarity.
func (x *Executor) PickJoker(r types.Rarity) (string, bool) {
	ids := x.Table.JokersByRarity(r)
	if len(ids) == 0 {
		return "", false
	}
	if !state.Flag(x.State, x.Table, "allow_duplicates") {
		held := map[string]bool{}
		for _, j := range x.State.Jokers {
			held[j.ID] = true
		}
		var free []string
		for _, id := range ids {
			if !held[id] {
				free = append(free, id)
			}
		}
		if len(free) > 0 {
			ids = free
		}
	}
	return ids[x.RNG.Intn(len(ids))], true
}

// PickConsumable draws a consumable id of a kind.
func (x *Executor) PickConsumable(kind types.ConsumableKind) (string, bool) {
	ids := x.Table.ConsumablesByKind(kind)
	if len(ids) == 0 {
		return "", false
	}
	return ids[x.RNG.Intn(len(ids))], true
}

// JokerPrice is the shop price of a joker: the definition price when set,
// else a draw from the rarity range, plus the edition surcharge.
func (x *Executor) JokerPrice(id string, ed types.Edition) int64 {
	def, _ := x.Table.Joker(id)
	price := def.Price
	if price <= 0 {
		pr := x.Config.Shop.JokerPrices[def.Rarity]
		price = x.RNG.Range(pr.Min, pr.Max)
	}
	return price + x.Config.Shop.EditionPrices[ed]
}

// ConsumablePrice is the shop price of a consumable.
func (x *Executor) ConsumablePrice(id string, ed types.Edition) int64 {
	def, _ := x.Table.Consumable(id)
	price := def.Price
	if price <= 0 {
		price = x.Config.Shop.Prices[def.Kind]
	}
	return price + x.Config.Shop.EditionPrices[ed]
}

// NewJoker builds a joker instance with a fresh uid.
func (x *Executor) NewJoker(id string, ed types.Edition, price int64) types.JokerInstance {
	def, _ := x.Table.Joker(id)
	return types.JokerInstance{
		UID:      state.NextUID(x.State),
		ID:       id,
		Rarity:   def.Rarity,
		Edition:  ed,
		BuyPrice: price,
		Vars:     map[string]float64{},
	}
}

// NewConsumable builds a consumable instance with a fresh uid.
func (x *Executor) NewConsumable(id string, ed types.Edition, price int64) types.Consumable {
	def, _ := x.Table.Consumable(id)
	return types.Consumable{
		UID:     state.NextUID(x.State),
		ID:      id,
		Kind:    def.Kind,
		Edition: ed,
		Price:   price,
	}
}

// RandomCard draws a playing card with a random rank and suit and a
// fresh uid.
func (x *Executor) RandomCard() types.Card {
	r := types.Rank(x.RNG.Range(int64(types.RankTwo), int64(types.RankAce)))
	su := types.Suits[x.RNG.Intn(len(types.Suits))]
	return types.Card{ID: state.NextUID(x.State), Rank: r, Suit: su}
}

// GiveJoker queues a joker for the row. It fails when the row is full.
func (x *Executor) GiveJoker(j types.JokerInstance) bool {
	if j.Edition != types.EditionNegative && x.queuedJokers() >= state.JokerSlots(x.State, x.Config, x.Table) {
		return false
	}
	x.added = append(x.added, j)
	return true
}

// GiveConsumable adds a consumable if a slot is free.
func (x *Executor) GiveConsumable(c types.Consumable) bool {
	if !state.HasConsumableRoom(x.State, x.Config, x.Table, c.Edition) {
		return false
	}
	x.State.Consumables = append(x.State.Consumables, c)
	x.Emit(types.Event{Type: types.EventConsumableAdded, Data: map[string]any{
		"uid": c.UID, "id": c.ID, "kind": string(c.Kind),
	}})
	return true
}

// GiveTag adds a tag, twice when a duplicate is pending.
func (x *Executor) GiveTag(id string) {
	n := 1
	if x.State.DuplicateNextTag > 0 {
		n += x.State.DuplicateNextTag
		x.State.DuplicateNextTag = 0
	}
	for range n {
		t := types.TagInstance{UID: state.NextUID(x.State), ID: id}
		x.State.Tags = append(x.State.Tags, t)
		x.Emit(types.Event{Type: types.EventTagAdded, Data: map[string]any{"uid": t.UID, "id": id}})
	}
}

// PickTag draws a tag id from the table.
func (x *Executor) PickTag() (string, bool) {
	ids := x.Table.IDs(rules.SourceTag)
	if len(ids) == 0 {
		return "", false
	}
	return ids[x.RNG.Intn(len(ids))], true
}

// PickBoss draws a boss eligible for the ante, preferring bosses not yet
// seen. exclude is skipped when another choice exists.
func (x *Executor) PickBoss(ante int, exclude string) (string, bool) {
	seen := map[string]bool{}
	for _, id := range x.State.BossesSeen {
		seen[id] = true
	}
	var eligible, fresh []string
	for _, id := range x.Table.IDs(rules.SourceBoss) {
		def, _ := x.Table.Boss(id)
		if def.MinAnte > ante || id == exclude {
			continue
		}
		eligible = append(eligible, id)
		if !seen[id] {
			fresh = append(fresh, id)
		}
	}
	pool := fresh
	if len(pool) == 0 {
		pool = eligible
	}
	if len(pool) == 0 {
		return "", false
	}
	return pool[x.RNG.Intn(len(pool))], true
}
