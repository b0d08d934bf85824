package effects

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/score"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

func init() {
	Register("add_chips", scoreOp((*score.Accumulator).AddChips))
	Register("add_mult", scoreOp((*score.Accumulator).AddMult))
	Register("mul_mult", scoreOp((*score.Accumulator).MulMult))
	Register("mul_chips", scoreOp((*score.Accumulator).MulChips))
	Alias("multiply_mult", "mul_mult")
	Alias("multiply_chips", "mul_chips")
	Alias("x_mult", "mul_mult")

	Register("add_money", addMoney)
	Register("set_money", setMoney)
	Register("add_sell_bonus", addSellBonus)

	Register("add_hand_size", counter(func(s *types.RunState) *int { return &s.HandSize }, false))
	Register("add_hands", counter(func(s *types.RunState) *int { return &s.HandsLeft }, false))
	Register("set_hands", counter(func(s *types.RunState) *int { return &s.HandsLeft }, true))
	Register("add_discards", counter(func(s *types.RunState) *int { return &s.DiscardsLeft }, false))
	Register("set_discards", counter(func(s *types.RunState) *int { return &s.DiscardsLeft }, true))

	Register("upgrade_hand", upgradeHand)
	Register("upgrade_random_hand", upgradeRandomHand)
	Register("multiply_target", multiplyTarget)
}

func scoreOp(f func(acc *score.Accumulator, source string, v float64)) Handler {
	return func(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
		if ctx.Score == nil {
			return actionErr(a, ctx, "no hand is being scored")
		}
		f(ctx.Score, ctx.Source.Label(), v)
		return nil
	}
}

func addMoney(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	s := x.State
	delta := floorInt(v)
	s.Money += delta
	if floor := state.MoneyFloor(s, x.Config, x.Table); delta < 0 && s.Money < floor {
		s.Money = floor
	}
	return nil
}

func setMoney(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	x.State.Money = max(int64(math.Floor(v)), state.MoneyFloor(x.State, x.Config, x.Table))
	return nil
}

// addSellBonus raises sell values. The target picks the source joker (the
// default), every joker, consumables, or both.
func addSellBonus(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	s := x.State
	target := strings.ToLower(a.Target)
	switch target {
	case "", "self":
		i := state.JokerIndex(s, ctx.Source.UID)
		if ctx.Source.Kind != rules.SourceJoker || i < 0 {
			return actionErr(a, ctx, "source is not a held joker")
		}
		bumpVar(&s.Jokers[i], "sell_bonus", v)
	case "jokers", "all":
		for i := range s.Jokers {
			bumpVar(&s.Jokers[i], "sell_bonus", v)
		}
		if target == "all" {
			s.Rules["consumable_sell_bonus"] += v
		}
	case "consumables":
		s.Rules["consumable_sell_bonus"] += v
	default:
		return actionErr(a, ctx, "unknown sell bonus target %q", a.Target)
	}
	return nil
}

func bumpVar(j *types.JokerInstance, key string, v float64) {
	if j.Vars == nil {
		j.Vars = map[string]float64{}
	}
	j.Vars[key] += v
}

// counter adjusts or sets an int field of the run state. Counters never go
// below zero.
func counter(field func(*types.RunState) *int, set bool) Handler {
	return func(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
		p := field(x.State)
		n := int(math.Floor(v))
		if !set {
			n += *p
		}
		*p = max(n, 0)
		return nil
	}
}

func upgradeHand(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	kind, ok := x.handTarget(a.Target, ctx)
	if !ok {
		return actionErr(a, ctx, "no hand kind for target %q", a.Target)
	}
	x.upgrade(kind, int(math.Floor(v)))
	return nil
}

func upgradeRandomHand(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	var kinds []types.HandKind
	for _, k := range types.HandKinds {
		if k != types.HandRoyalFlush {
			kinds = append(kinds, k)
		}
	}
	x.upgrade(kinds[x.RNG.Intn(len(kinds))], int(math.Floor(v)))
	return nil
}

func (x *Executor) upgrade(kind types.HandKind, n int) {
	state.UpgradeHand(x.State, kind, n)
	x.Emit(types.Event{Type: types.EventHandUpgraded, Data: map[string]any{
		"hand":  string(kind),
		"level": state.HandLevel(x.State, kind).Level,
	}})
	x.Log.Debug("hand upgraded", zap.String("hand", string(kind)), zap.Int("levels", n))
}

// handTarget resolves an upgrade target: by default a planet's hand, else
// the context hand. Also most_played, last_hand, or a hand kind name.
func (x *Executor) handTarget(target string, ctx *Context) (types.HandKind, bool) {
	switch t := strings.ToLower(strings.TrimSpace(target)); t {
	case "", "hand":
		if ctx.Consumable != nil {
			if def, ok := x.Table.Consumable(ctx.Consumable.ID); ok && def.Hand != "" {
				return def.Hand, true
			}
		}
		return ctx.Hand, ctx.Hand != ""
	case "most_played":
		return state.MostPlayed(x.State), true
	case "last_hand":
		return x.State.LastHand, x.State.LastHand != ""
	default:
		for _, k := range types.HandKinds {
			if string(k) == t {
				return k, true
			}
		}
		return "", false
	}
}

func multiplyTarget(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	x.State.Target = max(int64(math.Round(float64(x.State.Target)*v)), 0)
	return nil
}
