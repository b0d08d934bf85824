// Package engine runs a Rulatro game: the action API, the run state
// machine and the scoring pipeline. Every action validates first and
// mutates second, so a rejected action leaves the run untouched.
package engine

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/OranPie/rulatro/config"
	"github.com/OranPie/rulatro/engine/effects"
	"github.com/OranPie/rulatro/engine/events"
	"github.com/OranPie/rulatro/engine/hand"
	"github.com/OranPie/rulatro/engine/rng"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

// Engine holds the rule table and one run.
type Engine struct {
	Table  *rules.Table
	Config *config.GameConfig
	State  *types.RunState
	RNG    *rng.RNG

	log     *zap.Logger
	hooks   []events.Hook
	exec    *effects.Executor
	disp    *events.Dispatcher
	events  []types.Event
	history []Command
}

// Result is what a successful action returns: the run after the action
// and the events it produced, in order.
type Result struct {
	Snapshot *types.RunState `json:"snapshot"`
	Events   []types.Event   `json:"events"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithHooks attaches mod hooks to the dispatcher.
func WithHooks(h ...events.Hook) Option {
	return func(e *Engine) { e.hooks = append(e.hooks, h...) }
}

// WithConfig replaces the default game tables.
func WithConfig(cfg config.GameConfig) Option {
	return func(e *Engine) { e.Config = &cfg }
}

// New creates an engine and starts a run with seed. The table should be
// sealed; it is only read.
func New(tbl *rules.Table, seed int64, opts ...Option) *Engine {
	cfg := config.Default()
	e := &Engine{Table: tbl, Config: &cfg, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	e.Reset(seed)
	return e
}

// Restore resumes a run from a snapshot. The RNG continues from the
// snapshot's draw position. history, when given, is the action log that
// produced the snapshot.
func (e *Engine) Restore(snap *types.RunState, history ...Command) {
	e.State = state.Clone(snap)
	e.RNG = rng.Restore(snap.Seed, snap.RNGPosition)
	e.history = slices.Clone(history)
	e.wire()
}

func (e *Engine) wire() {
	e.exec = effects.NewExecutor(e.State, e.Table, e.Config, e.RNG, e.log, e.emit)
	e.disp = events.New(e.exec, e.hooks, jokerEditionBlocks, e.log)
}

// Reset starts a new run: a shuffled 52-card deck, starting money, ante 1
// small blind. Reset is legal in every phase.
func (e *Engine) Reset(seed int64) Result {
	e.State = state.NewRun(e.Config, seed)
	e.RNG = rng.New(seed)
	e.history = nil
	e.wire()
	e.begin()
	state.Shuffle(e.State.Deck, e.RNG)
	e.pickBoss()
	e.emit(types.Event{Type: types.EventRunReset, Data: map[string]any{"seed": seed}})
	e.log.Info("run reset", zap.Int64("seed", seed))
	res, _ := e.finish(Command{Action: ActReset, Seed: seed})
	return res
}

// Snapshot returns a deep copy of the run. Changing it does not affect
// the engine.
func (e *Engine) Snapshot() *types.RunState {
	snap := state.Clone(e.State)
	snap.RNGPosition = e.RNG.Position()
	return snap
}

// History returns the commands applied since the last reset, starting
// with the reset itself.
func (e *Engine) History() []Command {
	return slices.Clone(e.history)
}

// phaseRules lists the phases each action is legal in. Pack actions are
// gated on an open pack instead.
var phaseRules = map[ActionKind][]types.Phase{
	ActStartBlind:     {types.PhaseSetup},
	ActSkipBlind:      {types.PhaseSetup},
	ActDeal:           {types.PhaseDeal},
	ActPlay:           {types.PhasePlay},
	ActDiscard:        {types.PhasePlay},
	ActEnterShop:      {types.PhaseCleared},
	ActNextBlind:      {types.PhaseCleared},
	ActLeaveShop:      {types.PhaseShop},
	ActReroll:         {types.PhaseShop},
	ActBuyCard:        {types.PhaseShop},
	ActBuyPack:        {types.PhaseShop},
	ActBuyVoucher:     {types.PhaseShop},
	ActUseConsumable:  {types.PhaseSetup, types.PhasePlay, types.PhaseCleared, types.PhaseShop},
	ActSellJoker:      {types.PhaseSetup, types.PhasePlay, types.PhaseCleared, types.PhaseShop},
	ActSellConsumable: {types.PhaseSetup, types.PhasePlay, types.PhaseCleared, types.PhaseShop},
}

// gate checks that an action is legal in the current phase.
func (e *Engine) gate(act ActionKind) error {
	s := e.State
	switch {
	case act == ActReset:
		return nil
	case act == ActPickPack || act == ActSkipPack:
		if s.Pack == nil {
			return e.illegal(act, ErrWrongPhase, "no pack is open")
		}
		return nil
	case s.Pack != nil:
		return e.illegal(act, ErrPackOpen, "pick from or skip the open pack first")
	case !slices.Contains(phaseRules[act], s.Phase):
		return e.illegal(act, ErrWrongPhase, "")
	}
	return nil
}

// LegalActions lists the actions the current phase accepts, ignoring
// their arguments.
func (e *Engine) LegalActions() []ActionKind {
	var out []ActionKind
	for _, act := range Actions {
		if e.gate(act) == nil {
			out = append(out, act)
		}
	}
	return out
}

func (e *Engine) illegal(act ActionKind, reason error, format string, args ...any) error {
	err := reason
	if format != "" {
		err = fmt.Errorf("%w: %s", reason, fmt.Sprintf(format, args...))
	}
	e.log.Info("illegal action",
		zap.String("action", string(act)),
		zap.String("phase", string(e.State.Phase)),
		zap.Error(err))
	return &IllegalActionError{Action: act, Phase: e.State.Phase, Reason: err}
}

func (e *Engine) emit(ev types.Event) {
	e.events = append(e.events, ev)
}

// begin marks the point where validation is over and mutation starts.
func (e *Engine) begin() {
	e.events = nil
}

// finish settles card changes, checks invariants and records the command.
func (e *Engine) finish(c Command) (Result, error) {
	e.settle(nil)
	e.State.RNGPosition = e.RNG.Position()
	if err := state.CheckCards(e.State); err != nil {
		e.log.Error("invariant broken", zap.String("action", string(c.Action)), zap.Error(err))
		return Result{}, fmt.Errorf("%w: %v", ErrInvariant, err)
	}
	e.history = append(e.history, c)
	evs := e.events
	e.events = nil
	return Result{Snapshot: e.Snapshot(), Events: evs}, nil
}

// dispatch runs a trigger through every source.
func (e *Engine) dispatch(ctx *effects.Context) *effects.Outcome {
	out := &effects.Outcome{}
	e.disp.Dispatch(ctx, out)
	return out
}

// settle applies card destructions and additions queued by actions.
// Cards created for the hand are appended first. Destroyed cards are
// removed from played (when given) and from every zone, then
// card_destroyed fires for each. Added cards fire card_added.
func (e *Engine) settle(played *[]types.Card) {
	for round := 0; round < 8; round++ {
		doomed := e.exec.TakeDoomed()
		created := e.exec.TakeCreated()
		if len(doomed) == 0 && len(created) == 0 {
			return
		}
		e.addToHand(created)
		var gone []types.Card
		drop := func(cards []types.Card) []types.Card {
			kept := cards[:0]
			for _, c := range cards {
				if doomed[c.ID] {
					gone = append(gone, c)
					continue
				}
				kept = append(kept, c)
			}
			return kept
		}
		if played != nil {
			*played = drop(*played)
		}
		s := e.State
		s.Hand = drop(s.Hand)
		s.Deck = drop(s.Deck)
		s.Discard = drop(s.Discard)

		for _, c := range gone {
			e.emit(types.Event{Type: types.EventCardDestroyed, Data: map[string]any{"card": c.ID}})
			card := c
			e.dispatch(&effects.Context{Trigger: types.TriggerCardDestroyed, Card: &card, Zone: effects.ZoneNone})
		}
		for _, cc := range created {
			e.emit(types.Event{Type: types.EventCardAdded, Data: map[string]any{"card": cc.Card.ID, "zone": string(cc.Zone)}})
			card := cc.Card
			e.dispatch(&effects.Context{Trigger: types.TriggerCardAdded, Card: &card, Zone: cc.Zone})
		}
	}
	e.log.Warn("card changes still pending after settle limit")
	e.addToHand(e.exec.TakeCreated())
}

func (e *Engine) addToHand(created []effects.CreatedCard) {
	for _, cc := range created {
		if cc.Zone == effects.ZoneHeld {
			e.State.Hand = append(e.State.Hand, cc.Card)
		}
	}
}

func (e *Engine) handFlags() hand.Flags {
	return hand.Flags{
		FourFingers:  state.Flag(e.State, e.Table, "four_fingers"),
		Shortcut:     state.Flag(e.State, e.Table, "shortcut"),
		SmearedSuits: state.Flag(e.State, e.Table, "smeared_suits"),
		Splash:       state.Flag(e.State, e.Table, "splash"),
	}
}

func (e *Engine) recycle() bool {
	return !state.Flag(e.State, e.Table, "no_reshuffle")
}

func (e *Engine) maxSelect() int {
	return e.Config.MaxPlay + int(state.Rule(e.State, e.Table, "extra_play_size"))
}
