package engine

import (
	"math"

	"go.uber.org/zap"

	"github.com/OranPie/rulatro/engine/effects"
	"github.com/OranPie/rulatro/engine/hand"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

// StartBlind sets up the current blind: shuffles every card back into the
// deck, sets target and counters, then fires blind_start. Counter maxima
// are recorded after blind_start so boss rules that cut them stick.
func (e *Engine) StartBlind() (Result, error) {
	if err := e.gate(ActStartBlind); err != nil {
		return Result{}, err
	}
	e.begin()
	s := e.State
	rule := e.Config.Blinds[s.Blind]

	state.CollectCards(s, e.RNG)
	s.Phase = types.PhaseDeal
	s.BlindScore = 0
	s.BossDisabled = false

	targetMult := rule.TargetMult
	if s.Blind == types.BlindBoss {
		if def, ok := e.Table.Boss(s.BossID); ok && def.TargetMult > 0 {
			targetMult = def.TargetMult
		}
		s.BossesSeen = append(s.BossesSeen, s.BossID)
		if s.Rules["disable_next_boss"] != 0 {
			delete(s.Rules, "disable_next_boss")
			s.BossDisabled = true
			e.emit(types.Event{Type: types.EventBossDisabled, Data: map[string]any{"boss": s.BossID}})
		}
	}
	s.Target = int64(math.Round(float64(e.Config.AnteTarget(s.Ante)) * targetMult))
	s.HandsLeft = max(rule.Hands+int(state.Rule(s, e.Table, "extra_hands")), 1)
	s.DiscardsLeft = max(rule.Discards+int(state.Rule(s, e.Table, "extra_discards")), 0)

	data := map[string]any{"ante": s.Ante, "blind": string(s.Blind), "target": s.Target}
	if s.Blind == types.BlindBoss {
		data["boss"] = s.BossID
	}
	e.emit(types.Event{Type: types.EventBlindStarted, Data: data})
	e.dispatch(&effects.Context{Trigger: types.TriggerBlindStart})

	s.HandsMax = s.HandsLeft
	s.DiscardsMax = s.DiscardsLeft
	e.log.Info("blind started",
		zap.Int("ante", s.Ante),
		zap.String("blind", string(s.Blind)),
		zap.Int64("target", s.Target))
	return e.finish(Command{Action: ActStartBlind})
}

// SkipBlind passes on a small or big blind for a tag.
func (e *Engine) SkipBlind() (Result, error) {
	if err := e.gate(ActSkipBlind); err != nil {
		return Result{}, err
	}
	s := e.State
	if !e.Config.Blinds[s.Blind].Skippable {
		return Result{}, e.illegal(ActSkipBlind, ErrCannotSkip, "%s blind", s.Blind)
	}
	e.begin()
	s.BlindsSkipped++
	e.emit(types.Event{Type: types.EventBlindSkipped, Data: map[string]any{"ante": s.Ante, "blind": string(s.Blind)}})
	if id, ok := e.exec.PickTag(); ok {
		e.exec.GiveTag(id)
	}
	e.advance()
	return e.finish(Command{Action: ActSkipBlind})
}

// Deal draws up to hand size and opens play.
func (e *Engine) Deal() (Result, error) {
	if err := e.gate(ActDeal); err != nil {
		return Result{}, err
	}
	e.begin()
	n := state.DrawToHandSize(e.State, e.RNG, e.recycle())
	e.State.Phase = types.PhasePlay
	e.emit(types.Event{Type: types.EventHandDealt, Data: map[string]any{"drawn": n}})
	return e.finish(Command{Action: ActDeal})
}

// Play plays the hand cards at indices, in index order.
func (e *Engine) Play(indices []int) (Result, error) {
	if err := e.gate(ActPlay); err != nil {
		return Result{}, err
	}
	s := e.State
	if s.HandsLeft <= 0 {
		return Result{}, e.illegal(ActPlay, ErrNoHandsLeft, "")
	}
	sel, err := state.Selection(len(s.Hand), indices, 1, e.maxSelect())
	if err != nil {
		return Result{}, e.illegal(ActPlay, ErrInvalidSelection, "%v", err)
	}

	e.begin()
	played := state.TakeFromHand(s, sel)
	ids := make([]uint32, len(played))
	for i, c := range played {
		ids[i] = c.ID
	}
	e.emit(types.Event{Type: types.EventHandPlayed, Data: map[string]any{"cards": ids}})

	bd, err := e.scoreHand(played)
	if err != nil {
		return Result{}, err
	}
	s.BlindScore += bd.Total
	s.HandsLeft--
	s.HandsPlayed++
	s.LastScore = bd
	e.emit(types.Event{Type: types.EventHandScored, Data: map[string]any{
		"hand":        string(bd.Hand),
		"chips":       bd.Chips,
		"mult":        bd.Mult,
		"total":       bd.Total,
		"blind_score": s.BlindScore,
	}})

	e.settle(&played)
	s.Discard = append(s.Discard, played...)
	e.dispatch(&effects.Context{Trigger: types.TriggerHandEnd, Hand: bd.Hand, Played: played})

	switch {
	case s.BlindScore >= s.Target:
		e.clearBlind(true)
	case s.HandsLeft <= 0:
		e.failBlind()
	default:
		n := state.DrawToHandSize(s, e.RNG, e.recycle())
		e.emit(types.Event{Type: types.EventHandDealt, Data: map[string]any{"drawn": n}})
	}
	return e.finish(Command{Action: ActPlay, Indices: indices})
}

// Discard throws away the hand cards at indices and draws replacements.
func (e *Engine) Discard(indices []int) (Result, error) {
	if err := e.gate(ActDiscard); err != nil {
		return Result{}, err
	}
	s := e.State
	if s.DiscardsLeft <= 0 {
		return Result{}, e.illegal(ActDiscard, ErrNoDiscardsLeft, "")
	}
	sel, err := state.Selection(len(s.Hand), indices, 1, e.maxSelect())
	if err != nil {
		return Result{}, e.illegal(ActDiscard, ErrInvalidSelection, "%v", err)
	}

	e.begin()
	cards := state.TakeFromHand(s, sel)
	ids := make([]uint32, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	s.DiscardsLeft--
	e.emit(types.Event{Type: types.EventCardsDiscarded, Data: map[string]any{"cards": ids}})

	kind := hand.Evaluate(cards, e.handFlags()).Kind
	e.dispatch(&effects.Context{Trigger: types.TriggerDiscardBatch, Hand: kind, Discarded: cards})
	for i := range cards {
		ctx := &effects.Context{
			Trigger:   types.TriggerDiscard,
			Hand:      kind,
			Discarded: cards,
			Card:      &cards[i],
			Zone:      effects.ZoneDiscarded,
		}
		e.modifiers(ctx, &effects.Outcome{})
		e.dispatch(ctx)
	}
	e.settle(&cards)
	s.Discard = append(s.Discard, cards...)

	n := state.DrawToHandSize(s, e.RNG, e.recycle())
	e.emit(types.Event{Type: types.EventHandDealt, Data: map[string]any{"drawn": n}})
	return e.finish(Command{Action: ActDiscard, Indices: indices})
}

// clearBlind ends a won blind. Round-end card effects and round_end
// blocks run first; interest is computed on money before the reward.
func (e *Engine) clearBlind(reward bool) {
	s := e.State
	for i, n := 0, len(s.Hand); i < n && i < len(s.Hand); i++ {
		e.modifiers(&effects.Context{
			Trigger: types.TriggerRoundEnd,
			Hand:    s.LastHand,
			Card:    &s.Hand[i],
			Zone:    effects.ZoneHeld,
		}, &effects.Outcome{})
	}
	e.dispatch(&effects.Context{Trigger: types.TriggerRoundEnd, Hand: s.LastHand})

	var paid int64
	if reward {
		paid = e.Config.Blinds[s.Blind].Reward +
			e.Config.Economy.PerHandReward*int64(s.HandsLeft) +
			e.interest()
		s.Money += paid
	}
	s.UnusedDiscards += s.DiscardsLeft
	e.returnCards()
	s.BossDisabled = false
	s.Phase = types.PhaseCleared
	e.emit(types.Event{Type: types.EventBlindCleared, Data: map[string]any{
		"ante":   s.Ante,
		"blind":  string(s.Blind),
		"score":  s.BlindScore,
		"reward": paid,
	}})
	e.log.Info("blind cleared", zap.Int("ante", s.Ante), zap.String("blind", string(s.Blind)), zap.Int64("reward", paid))

	if s.Blind == types.BlindBoss && s.Ante >= e.Config.FinalAnte() {
		s.Phase = types.PhaseWon
		e.emit(types.Event{Type: types.EventRunWon, Data: map[string]any{"ante": s.Ante}})
	}
}

// interest pays per step of money held, capped.
func (e *Engine) interest() int64 {
	eco := e.Config.Economy
	if e.State.Money <= 0 || eco.InterestStep <= 0 || eco.InterestPer <= 0 {
		return 0
	}
	steps := min(e.State.Money/eco.InterestStep, eco.InterestCap/eco.InterestPer)
	return steps * eco.InterestPer
}

// failBlind runs blind_failed. A block that sets prevent_death turns the
// loss into a clear without reward.
func (e *Engine) failBlind() {
	s := e.State
	s.PreventDeath = false
	e.dispatch(&effects.Context{Trigger: types.TriggerBlindFailed, Hand: s.LastHand})
	if s.PreventDeath {
		s.PreventDeath = false
		e.emit(types.Event{Type: types.EventDeathPrevented, Data: map[string]any{"ante": s.Ante, "blind": string(s.Blind)}})
		e.clearBlind(false)
		return
	}
	s.Phase = types.PhaseFailed
	e.emit(types.Event{Type: types.EventBlindFailed, Data: map[string]any{
		"ante":   s.Ante,
		"blind":  string(s.Blind),
		"score":  s.BlindScore,
		"target": s.Target,
	}})
	e.log.Info("blind failed", zap.Int("ante", s.Ante), zap.String("blind", string(s.Blind)))
}

// returnCards puts hand and discard back in the deck, unshuffled.
func (e *Engine) returnCards() {
	s := e.State
	s.Deck = append(s.Deck, s.Hand...)
	s.Deck = append(s.Deck, s.Discard...)
	s.Hand = s.Hand[:0]
	s.Discard = s.Discard[:0]
}

// NextBlind moves on from a cleared blind without visiting the shop.
func (e *Engine) NextBlind() (Result, error) {
	if err := e.gate(ActNextBlind); err != nil {
		return Result{}, err
	}
	e.begin()
	e.advance()
	return e.finish(Command{Action: ActNextBlind})
}

// advance steps to the next blind in setup. After the boss the ante goes
// up and a new boss is drawn.
func (e *Engine) advance() {
	s := e.State
	switch s.Blind {
	case types.BlindSmall:
		s.Blind = types.BlindBig
	case types.BlindBig:
		s.Blind = types.BlindBoss
	default:
		s.Ante++
		s.Blind = types.BlindSmall
		e.pickBoss()
	}
	s.Phase = types.PhaseSetup
	s.BlindScore = 0
	s.Target = 0
	s.Shop = nil
}

// pickBoss draws the boss for the current ante.
func (e *Engine) pickBoss() {
	id, ok := e.exec.PickBoss(e.State.Ante, "")
	if !ok {
		e.State.BossID = ""
		return
	}
	e.State.BossID = id
}
