package effects

import (
	"math"

	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

func init() {
	Register("set_var", setVar)
	Register("add_var", addVar)
	Register("set_rule", setRule)
	Register("add_rule", addRule)
	Register("clear_rule", clearRule)

	Register("retrigger_scored", retrigger(func(o *Outcome) *int { return &o.ScoredRetriggers }))
	Register("retrigger_held", retrigger(func(o *Outcome) *int { return &o.HeldRetriggers }))
	Register("disable_boss", disableBoss)
	Register("reroll_boss", rerollBoss)
	Register("prevent_death", preventDeath)
}

func keyOrFail(a types.Action, ctx *Context) (string, error) {
	k := state.NormalizeKey(a.Target)
	if k == "" {
		return "", actionErr(a, ctx, "missing name")
	}
	return k, nil
}

func setVar(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	k, err := keyOrFail(a, ctx)
	if err != nil {
		return err
	}
	x.vars(ctx)[k] = v
	return nil
}

func addVar(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	k, err := keyOrFail(a, ctx)
	if err != nil {
		return err
	}
	x.vars(ctx)[k] += v
	return nil
}

func setRule(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	k, err := keyOrFail(a, ctx)
	if err != nil {
		return err
	}
	x.State.Rules[k] = v
	return nil
}

func addRule(x *Executor, a types.Action, v float64, ctx *Context, _ *Outcome) error {
	k, err := keyOrFail(a, ctx)
	if err != nil {
		return err
	}
	x.State.Rules[k] += v
	return nil
}

func clearRule(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	k, err := keyOrFail(a, ctx)
	if err != nil {
		return err
	}
	delete(x.State.Rules, k)
	return nil
}

// retrigger adds to a retrigger count. Counts produced while a chain is
// already re-executing are ignored.
func retrigger(field func(*Outcome) *int) Handler {
	return func(x *Executor, a types.Action, v float64, ctx *Context, out *Outcome) error {
		if ctx.Retrigger {
			return nil
		}
		*field(out) += max(int(math.Floor(v)), 0)
		return nil
	}
}

// disableBoss turns off the active boss. Outside a boss blind it disables
// the next boss instead.
func disableBoss(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	s := x.State
	active := s.Blind == types.BlindBoss && s.BossID != "" &&
		(s.Phase == types.PhaseSetup || s.Phase == types.PhaseDeal || s.Phase == types.PhasePlay)
	if !active {
		s.Rules["disable_next_boss"] = 1
		return nil
	}
	if s.BossDisabled {
		return nil
	}
	s.BossDisabled = true
	x.Emit(types.Event{Type: types.EventBossDisabled, Data: map[string]any{"boss": s.BossID}})
	return nil
}

// rerollBoss swaps the upcoming boss for another eligible one. A boss
// blind already in progress cannot be rerolled.
func rerollBoss(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	s := x.State
	if s.Blind == types.BlindBoss && (s.Phase == types.PhaseDeal || s.Phase == types.PhasePlay) {
		return actionErr(a, ctx, "boss blind in progress")
	}
	id, ok := x.PickBoss(s.Ante, s.BossID)
	if !ok {
		return actionErr(a, ctx, "no eligible boss")
	}
	s.BossID = id
	return nil
}

func preventDeath(x *Executor, a types.Action, _ float64, ctx *Context, _ *Outcome) error {
	x.State.PreventDeath = true
	return nil
}
