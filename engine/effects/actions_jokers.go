package effects

import (
	"maps"
	"math"
	"strings"

	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

// maxCopyDepth bounds chains of jokers copying jokers.
const maxCopyDepth = 4

func init() {
	Register("add_joker", addJoker)
	Register("destroy_random_joker", destroyRandomJoker)
	Register("destroy_joker_right", destroyNeighbor(1))
	Register("destroy_joker_left", destroyNeighbor(-1))
	Register("destroy_self", destroySelf)
	Register("duplicate_random_joker", duplicateRandomJoker)
	Register("copy_joker_right", copyJoker(func(x *Executor, self int) int { return self + 1 }))
	Register("copy_joker_leftmost", copyJoker(func(x *Executor, self int) int { return 0 }))
}

// resolveJoker turns an add_joker target into a joker id: a rarity, random
// (rarity by shop weights), or a joker id or name.
func (x *Executor) resolveJoker(target string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(target))
	switch t {
	case "", "random":
		return x.PickJoker(x.PickRarity())
	}
	for _, r := range rarityOrder {
		if string(r) == t {
			return x.PickJoker(r)
		}
	}
	return x.Table.Lookup(rules.SourceJoker, t)
}

// BasePrice is the buy price recorded for a joker created outside the
// shop: the definition price, else the low end of its rarity range.
func (x *Executor) BasePrice(id string) int64 {
	def, _ := x.Table.Joker(id)
	if def.Price > 0 {
		return def.Price
	}
	return x.Config.Shop.JokerPrices[def.Rarity].Min
}

func addJoker(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	for range int(math.Floor(v)) {
		id, ok := x.resolveJoker(a.Target)
		if !ok {
			return actionErr(a, ctx, "no joker matches %q", a.Target)
		}
		if !x.GiveJoker(x.NewJoker(id, types.EditionNone, x.BasePrice(id))) {
			return actionErr(a, ctx, "no joker slot free")
		}
	}
	return nil
}

// liveJokers returns the slot indices of jokers not queued for removal.
func (x *Executor) liveJokers(skip uint32) []int {
	var out []int
	for i, j := range x.State.Jokers {
		if j.UID != skip && !x.removed[j.UID] {
			out = append(out, i)
		}
	}
	return out
}

func destroyRandomJoker(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	for range int(math.Floor(v)) {
		live := x.liveJokers(ctx.Source.UID)
		if len(live) == 0 {
			return nil
		}
		x.removed[x.State.Jokers[live[x.RNG.Intn(len(live))]].UID] = true
	}
	return nil
}

func destroyNeighbor(step int) Handler {
	return func(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
		self := x.selfIndex(ctx)
		if self < 0 {
			return actionErr(a, ctx, "source is not a held joker")
		}
		i := self + step
		if i < 0 || i >= len(x.State.Jokers) {
			return nil
		}
		x.removed[x.State.Jokers[i].UID] = true
		return nil
	}
}

func destroySelf(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	if x.selfIndex(ctx) < 0 {
		return actionErr(a, ctx, "source is not a held joker")
	}
	x.removed[ctx.Source.UID] = true
	return nil
}

// duplicateRandomJoker copies a random held joker. A negative edition is
// not carried over.
func duplicateRandomJoker(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	live := x.liveJokers(0)
	if len(live) == 0 {
		return nil
	}
	src := x.State.Jokers[live[x.RNG.Intn(len(live))]]
	cp := src
	cp.UID = state.NextUID(x.State)
	cp.Vars = maps.Clone(src.Vars)
	if cp.Edition == types.EditionNegative {
		cp.Edition = types.EditionNone
	}
	if !x.GiveJoker(cp) {
		return actionErr(a, ctx, "no joker slot free")
	}
	return nil
}

// copyJoker runs another joker's blocks for the current trigger as if
// they belonged to the copying joker's slot.
func copyJoker(pick func(x *Executor, self int) int) Handler {
	return func(x *Executor, a types.Action, _ float64, ctx *Context, out *Outcome) error {
		self := x.selfIndex(ctx)
		if self < 0 {
			return actionErr(a, ctx, "source is not a held joker")
		}
		if ctx.depth >= maxCopyDepth {
			return actionErr(a, ctx, "copy chain too deep")
		}
		i := pick(x, self)
		if i < 0 || i >= len(x.State.Jokers) || i == self {
			return nil
		}
		target := x.State.Jokers[i]
		if x.removed[target.UID] {
			return nil
		}
		child := *ctx
		child.Source = Source{Kind: rules.SourceJoker, ID: target.ID, UID: target.UID}
		child.depth++
		x.RunBlocks(x.Table.Blocks(rules.SourceJoker, target.ID, ctx.Trigger), &child, out)
		return nil
	}
}

func (x *Executor) selfIndex(ctx *Context) int {
	if ctx.Source.Kind != rules.SourceJoker {
		return -1
	}
	return state.JokerIndex(x.State, ctx.Source.UID)
}
