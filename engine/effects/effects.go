// Package effects implements the Action Executor: every primitive action
// is one registered handler, applied in declaration order against the
// run state with no batching.
package effects

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/OranPie/rulatro/config"
	"github.com/OranPie/rulatro/engine/eval"
	"github.com/OranPie/rulatro/engine/rng"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

// ActionError reports a primitive action that could not complete. It is
// contained at the action level; the block's remaining actions still run.
type ActionError struct {
	Op     types.ActionOp
	Source string
	Reason string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %s from %s: %s", e.Op, e.Source, e.Reason)
}

// Handler applies one action. v is the evaluated action value.
type Handler func(x *Executor, a types.Action, v float64, ctx *Context, out *Outcome) error

var (
	registry = map[types.ActionOp]Handler{}
	aliases  = map[types.ActionOp]types.ActionOp{}
)

// Register adds or replaces the handler for an action keyword.
func Register(op types.ActionOp, h Handler) {
	registry[normalizeOp(op)] = h
}

// Alias makes alias resolve to the handler of op.
func Alias(alias, op types.ActionOp) {
	aliases[normalizeOp(alias)] = normalizeOp(op)
}

// Known reports whether an action keyword has a handler.
func Known(op types.ActionOp) bool {
	_, ok := lookup(op)
	return ok
}

func lookup(op types.ActionOp) (Handler, bool) {
	op = normalizeOp(op)
	if target, ok := aliases[op]; ok {
		op = target
	}
	h, ok := registry[op]
	return h, ok
}

func normalizeOp(op types.ActionOp) types.ActionOp {
	return types.ActionOp(strings.ToLower(strings.TrimSpace(string(op))))
}

// Executor applies effect blocks against one run. It holds the queued
// joker removals and additions until the dispatcher flushes them.
type Executor struct {
	State  *types.RunState
	Table  *rules.Table
	Config *config.GameConfig
	RNG    *rng.RNG
	Log    *zap.Logger
	Emit   func(types.Event)

	removed map[uint32]bool
	added   []types.JokerInstance
	doomed  map[uint32]bool
	created []CreatedCard
}

// CreatedCard is a card an action added to the run, with the zone it
// landed in. Deck cards are already in the deck; held cards are appended
// to the hand by whoever takes them.
type CreatedCard struct {
	Card types.Card
	Zone Zone
}

// NewExecutor wires an executor to a run.
func NewExecutor(s *types.RunState, tbl *rules.Table, cfg *config.GameConfig, g *rng.RNG, log *zap.Logger, emit func(types.Event)) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	if emit == nil {
		emit = func(types.Event) {}
	}
	return &Executor{
		State:   s,
		Table:   tbl,
		Config:  cfg,
		RNG:     g,
		Log:     log,
		Emit:    emit,
		removed: map[uint32]bool{},
		doomed:  map[uint32]bool{},
	}
}

// RunBlock runs one block if it matches the trigger and its conditions
// hold. A condition that fails to evaluate counts as false. Returns
// whether the block fired.
func (x *Executor) RunBlock(b types.EffectBlock, ctx *Context, out *Outcome) bool {
	if !rules.Matches(b, ctx.Trigger) {
		return false
	}
	ok, err := rules.Holds(b, &Env{x: x, ctx: ctx})
	if err != nil {
		x.Log.Debug("condition skipped",
			zap.String("source", ctx.Source.Label()),
			zap.String("trigger", string(ctx.Trigger)),
			zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	for _, a := range b.Actions {
		if err := x.Apply(a, ctx, out); err != nil {
			x.fail(a, ctx, err)
		}
	}
	out.Fired++
	return true
}

// RunBlocks runs each block in order and reports whether any fired.
func (x *Executor) RunBlocks(blocks []types.EffectBlock, ctx *Context, out *Outcome) bool {
	fired := false
	for _, b := range blocks {
		if x.RunBlock(b, ctx, out) {
			fired = true
		}
	}
	return fired
}

// Apply evaluates the action value and runs its handler.
func (x *Executor) Apply(a types.Action, ctx *Context, out *Outcome) error {
	h, ok := lookup(a.Op)
	if !ok {
		return &ActionError{Op: a.Op, Source: ctx.Source.Label(), Reason: "unknown action"}
	}
	v := 1.0
	if a.Value != nil {
		n, err := eval.EvalNumber(a.Value, &Env{x: x, ctx: ctx})
		if err != nil {
			return &ActionError{Op: a.Op, Source: ctx.Source.Label(), Reason: err.Error()}
		}
		v = n
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ActionError{Op: a.Op, Source: ctx.Source.Label(), Reason: "value is not finite"}
	}
	return h(x, a, v, ctx, out)
}

func (x *Executor) fail(a types.Action, ctx *Context, err error) {
	x.Log.Warn("action failed",
		zap.String("op", string(a.Op)),
		zap.String("source", ctx.Source.Label()),
		zap.String("trigger", string(ctx.Trigger)),
		zap.Error(err))
	x.Emit(types.Event{Type: types.EventActionFailed, Data: map[string]any{
		"op":      string(a.Op),
		"source":  ctx.Source.Label(),
		"trigger": string(ctx.Trigger),
		"reason":  err.Error(),
	}})
}

func actionErr(a types.Action, ctx *Context, format string, args ...any) error {
	return &ActionError{Op: a.Op, Source: ctx.Source.Label(), Reason: fmt.Sprintf(format, args...)}
}

// maxRepeat caps how many times a single action may repeat its work.
const maxRepeat = 52

// repeatCount floors v into a loop count. Negative values count as zero and
// values over maxRepeat are rejected before anything is created.
func repeatCount(a types.Action, v float64, ctx *Context) (int, error) {
	n := floorInt(v)
	if n > maxRepeat {
		return 0, actionErr(a, ctx, "count %d over limit %d", n, maxRepeat)
	}
	return int(max(n, 0)), nil
}

// Removed reports whether a joker is queued for removal.
func (x *Executor) Removed(uid uint32) bool {
	return x.removed[uid]
}

// Pending reports whether queued joker changes are waiting for a flush.
func (x *Executor) Pending() bool {
	return len(x.removed) > 0 || len(x.added) > 0
}

// Flush applies queued joker removals, then additions that still fit.
// Returns the removed and the added instances in queue order.
func (x *Executor) Flush() (removed, added []types.JokerInstance) {
	if len(x.removed) > 0 {
		kept := x.State.Jokers[:0:0]
		for _, j := range x.State.Jokers {
			if x.removed[j.UID] {
				removed = append(removed, j)
				continue
			}
			kept = append(kept, j)
		}
		x.State.Jokers = kept
		x.removed = map[uint32]bool{}
	}
	queue := x.added
	x.added = nil
	for _, j := range queue {
		if !state.HasJokerRoom(x.State, x.Config, x.Table, j.Edition) {
			x.Log.Info("joker dropped, no slot", zap.String("joker", j.ID))
			continue
		}
		x.State.Jokers = append(x.State.Jokers, j)
		added = append(added, j)
	}
	return removed, added
}

// queuedJokers is the joker count once queued changes are applied.
func (x *Executor) queuedJokers() int {
	return len(x.State.Jokers) - len(x.removed) + len(x.added)
}

// Doom marks a card for destruction once the current action finishes.
func (x *Executor) Doom(cardID uint32) {
	x.doomed[cardID] = true
}

// Doomed reports whether a card is marked for destruction.
func (x *Executor) Doomed(cardID uint32) bool {
	return x.doomed[cardID]
}

// TakeDoomed returns and clears the set of cards marked for destruction.
func (x *Executor) TakeDoomed() map[uint32]bool {
	d := x.doomed
	x.doomed = map[uint32]bool{}
	return d
}

// TakeCreated returns and clears the cards actions added to the run.
func (x *Executor) TakeCreated() []CreatedCard {
	c := x.created
	x.created = nil
	return c
}
