// Package events implements the Trigger Dispatcher. A dispatch visits the
// sources of one trigger in a fixed order and runs their blocks through
// the executor. Blocks never start a nested dispatch; joker changes are
// queued and flushed when the outermost dispatch ends.
package events

import (
	"go.uber.org/zap"

	"github.com/OranPie/rulatro/engine/effects"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

// maxFlushRounds bounds acquire blocks that keep adding jokers.
const maxFlushRounds = 8

// EditionBlocks returns the blocks a joker edition contributes to the
// independent pass, before and after the joker's own blocks.
type EditionBlocks func(ed types.Edition) (before, after []types.EffectBlock)

// Dispatcher visits trigger sources in order: mod pre-phase, boss,
// jokers in slot order, tags, mod post-phase.
type Dispatcher struct {
	Exec     *effects.Executor
	Hooks    []Hook
	Editions EditionBlocks
	Log      *zap.Logger

	depth int
}

// New creates a dispatcher over an executor.
func New(x *effects.Executor, hooks []Hook, editions EditionBlocks, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{Exec: x, Hooks: hooks, Editions: editions, Log: log}
}

// Dispatch runs every source's blocks for ctx.Trigger.
func (d *Dispatcher) Dispatch(ctx *effects.Context, out *effects.Outcome) {
	d.run(ctx, out, d.core)
}

// DispatchIndependent runs the independent pass. Each joker resolves its
// edition and its own blocks, then every other joker's other_jokers
// blocks run with that joker bound as other.
func (d *Dispatcher) DispatchIndependent(ctx *effects.Context, out *effects.Outcome) {
	ctx.Trigger = types.TriggerIndependent
	d.run(ctx, out, d.independentCore)
}

// DispatchSource runs one source's blocks for ctx.Trigger, outside the
// regular order. Used for the sold joker, a used consumable, and acquire.
func (d *Dispatcher) DispatchSource(src effects.Source, ctx *effects.Context, out *effects.Outcome) {
	d.enter()
	defer d.leave()
	c := *ctx
	c.Source = src
	d.Exec.RunBlocks(d.Exec.Table.Blocks(src.Kind, src.ID, ctx.Trigger), &c, out)
}

func (d *Dispatcher) enter() { d.depth++ }

func (d *Dispatcher) leave() {
	d.depth--
	if d.depth == 0 {
		d.flush()
	}
}

func (d *Dispatcher) run(ctx *effects.Context, out *effects.Outcome, core func(*effects.Context, *effects.Outcome)) {
	d.enter()
	defer d.leave()
	d.Log.Debug("dispatch", zap.String("trigger", string(ctx.Trigger)))

	cancel, stop := d.mods(rules.ModPre, ctx, out)
	if stop {
		return
	}
	if !cancel {
		core(ctx, out)
	}
	d.mods(rules.ModPost, ctx, out)
}

func (d *Dispatcher) core(ctx *effects.Context, out *effects.Outcome) {
	d.boss(ctx, out)
	for _, j := range d.jokers() {
		d.joker(j, ctx, out)
	}
	d.tags(ctx, out)
}

func (d *Dispatcher) independentCore(ctx *effects.Context, out *effects.Outcome) {
	d.boss(ctx, out)
	row := d.jokers()
	for i, j := range row {
		if d.Exec.Removed(j.UID) {
			continue
		}
		var before, after []types.EffectBlock
		if d.Editions != nil {
			before, after = d.Editions(j.Edition)
		}
		ed := effects.Source{Kind: rules.SourceJoker, ID: j.ID + ":" + string(j.Edition), UID: j.UID}
		d.runAs(ed, before, ctx, out)
		d.joker(j, ctx, out)
		if !d.Exec.Removed(j.UID) {
			d.runAs(ed, after, ctx, out)
		}

		other := j
		for k, o := range row {
			if k == i || d.Exec.Removed(o.UID) {
				continue
			}
			blocks := d.Exec.Table.Blocks(rules.SourceJoker, o.ID, types.TriggerOtherJokers)
			if len(blocks) == 0 {
				continue
			}
			c := *ctx
			c.Trigger = types.TriggerOtherJokers
			c.Source = effects.Source{Kind: rules.SourceJoker, ID: o.ID, UID: o.UID}
			c.Other = &other
			d.Exec.RunBlocks(blocks, &c, out)
		}
	}
	d.tags(ctx, out)
}

func (d *Dispatcher) runAs(src effects.Source, blocks []types.EffectBlock, ctx *effects.Context, out *effects.Outcome) {
	if len(blocks) == 0 {
		return
	}
	c := *ctx
	c.Source = src
	d.Exec.RunBlocks(blocks, &c, out)
}

// boss runs the current boss's blocks while its blind is being played.
func (d *Dispatcher) boss(ctx *effects.Context, out *effects.Outcome) {
	s := d.Exec.State
	if s.Blind != types.BlindBoss || s.BossID == "" || s.BossDisabled {
		return
	}
	if s.Phase != types.PhaseDeal && s.Phase != types.PhasePlay {
		return
	}
	d.runAs(effects.Source{Kind: rules.SourceBoss, ID: s.BossID},
		d.Exec.Table.Blocks(rules.SourceBoss, s.BossID, ctx.Trigger), ctx, out)
}

// jokers snapshots the joker row at dispatch start.
func (d *Dispatcher) jokers() []types.JokerInstance {
	return append([]types.JokerInstance(nil), d.Exec.State.Jokers...)
}

func (d *Dispatcher) joker(j types.JokerInstance, ctx *effects.Context, out *effects.Outcome) {
	if d.Exec.Removed(j.UID) {
		return
	}
	d.runAs(effects.Source{Kind: rules.SourceJoker, ID: j.ID, UID: j.UID},
		d.Exec.Table.Blocks(rules.SourceJoker, j.ID, ctx.Trigger), ctx, out)
}

// tags runs active tags in acquisition order. A tag whose block fires is
// consumed.
func (d *Dispatcher) tags(ctx *effects.Context, out *effects.Outcome) {
	s := d.Exec.State
	for _, t := range append([]types.TagInstance(nil), s.Tags...) {
		blocks := d.Exec.Table.Blocks(rules.SourceTag, t.ID, ctx.Trigger)
		if len(blocks) == 0 {
			continue
		}
		c := *ctx
		c.Source = effects.Source{Kind: rules.SourceTag, ID: t.ID, UID: t.UID}
		if !d.Exec.RunBlocks(blocks, &c, out) {
			continue
		}
		for i := range s.Tags {
			if s.Tags[i].UID == t.UID {
				s.Tags = append(s.Tags[:i], s.Tags[i+1:]...)
				break
			}
		}
		d.Exec.Emit(types.Event{Type: types.EventTagConsumed, Data: map[string]any{"uid": t.UID, "id": t.ID}})
	}
}

// mods runs static mod blocks and script hooks for one phase. Only the
// pre phase may cancel the core sources.
func (d *Dispatcher) mods(phase rules.ModPhase, ctx *effects.Context, out *effects.Outcome) (cancel, stop bool) {
	for _, m := range d.Exec.Table.Mods(phase) {
		c := *ctx
		c.Source = effects.Source{Kind: rules.SourceMod, ID: m.ID}
		if d.Exec.RunBlocks(m.Blocks, &c, out) && m.CancelCore && phase == rules.ModPre {
			cancel = true
		}
	}
	for _, h := range d.Hooks {
		if !h.Handles(ctx.Trigger, phase) {
			continue
		}
		res, err := h.Run(d.hookContext(ctx, phase))
		if err != nil {
			d.Log.Warn("mod hook failed",
				zap.String("mod", h.Name()),
				zap.String("trigger", string(ctx.Trigger)),
				zap.Error(err))
			continue
		}
		c := *ctx
		c.Source = effects.Source{Kind: rules.SourceMod, ID: h.Name()}
		for _, b := range res.Blocks {
			if b.Trigger == "" {
				b.Trigger = ctx.Trigger
			}
			d.Exec.RunBlock(b, &c, out)
		}
		if res.CancelCore && phase == rules.ModPre {
			cancel = true
		}
		if res.Stop {
			return cancel, true
		}
	}
	return cancel, false
}

func (d *Dispatcher) hookContext(ctx *effects.Context, phase rules.ModPhase) HookContext {
	s := d.Exec.State
	hc := HookContext{
		Trigger:      ctx.Trigger,
		Phase:        phase,
		Hand:         ctx.Hand,
		Ante:         s.Ante,
		Blind:        s.Blind,
		Money:        s.Money,
		HandsLeft:    s.HandsLeft,
		DiscardsLeft: s.DiscardsLeft,
		Roll:         d.Exec.RNG.Roll,
	}
	if ctx.Card != nil {
		c := *ctx.Card
		hc.Card = &c
	}
	return hc
}

// flush applies queued joker changes. Added jokers receive their acquire
// blocks, which may queue further changes.
func (d *Dispatcher) flush() {
	x := d.Exec
	for round := 0; x.Pending(); round++ {
		if round == maxFlushRounds {
			d.Log.Warn("joker changes still pending after flush limit")
			return
		}
		removed, added := x.Flush()
		for _, j := range removed {
			x.Emit(types.Event{Type: types.EventJokerDestroyed, Data: map[string]any{"uid": j.UID, "id": j.ID}})
		}
		for _, j := range added {
			x.Emit(types.Event{Type: types.EventJokerAdded, Data: map[string]any{"uid": j.UID, "id": j.ID}})
		}
		for _, j := range added {
			c := &effects.Context{
				Trigger: types.TriggerAcquire,
				Source:  effects.Source{Kind: rules.SourceJoker, ID: j.ID, UID: j.UID},
			}
			x.RunBlocks(x.Table.Blocks(rules.SourceJoker, j.ID, types.TriggerAcquire), c, &effects.Outcome{})
		}
	}
}
