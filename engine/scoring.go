package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/OranPie/rulatro/engine/effects"
	"github.com/OranPie/rulatro/engine/hand"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/score"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

// scoreHand runs the scoring pipeline over the played cards. Cards are
// mutated in place; destroyed cards are only marked.
func (e *Engine) scoreHand(played []types.Card) (*types.ScoreBreakdown, error) {
	s := e.State
	flags := e.handFlags()

	// 1. Pre-scoring hooks. The hand kind is known to conditions but may
	// change if these blocks alter the played cards.
	pre := hand.Evaluate(played, flags)
	ctx := &effects.Context{Hand: pre.Kind, Played: played}
	ctx.Trigger = types.TriggerPlayed
	e.dispatch(ctx)
	ctx.Trigger = types.TriggerScoredPre
	e.dispatch(ctx)

	// 2. Hand kind and scoring subset.
	res := hand.Evaluate(played, flags)
	scoring := make([]types.Card, len(res.Scoring))
	for i, idx := range res.Scoring {
		scoring[i] = played[idx]
	}

	// 3. Base score from the hand level.
	chips, mult := state.HandScore(s, e.Config, res.Kind)
	acc := score.New(chips, mult)
	state.RecordPlay(s, res.Kind)
	s.LastHand = res.Kind
	ctx.Hand = res.Kind
	ctx.Scoring = scoring
	ctx.Score = acc

	// 4. Scored cards, left to right.
	for _, idx := range res.Scoring {
		e.chain(ctx, &played[idx], effects.ZoneScoring, types.TriggerScored)
	}

	// 5. Held cards, left to right.
	for i, n := 0, len(s.Hand); i < n && i < len(s.Hand); i++ {
		e.chain(ctx, &s.Hand[i], effects.ZoneHeld, types.TriggerHeld)
	}

	// 6. Independent joker pass.
	ind := *ctx
	ind.Card = nil
	ind.Zone = effects.ZoneNone
	e.disp.DispatchIndependent(&ind, &effects.Outcome{})

	// 7. Total.
	if err := acc.Check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}
	bd := &types.ScoreBreakdown{
		Hand:      res.Kind,
		BaseChips: chips,
		BaseMult:  mult,
		Chips:     acc.Chips(),
		Mult:      acc.Mult(),
		Total:     acc.Total(),
		Steps:     acc.Steps(),
	}
	for _, c := range played {
		bd.Played = append(bd.Played, c.ID)
	}
	for _, c := range scoring {
		bd.Scoring = append(bd.Scoring, c.ID)
	}
	e.log.Debug("hand scored",
		zap.String("hand", string(bd.Hand)),
		zap.Int64("chips", bd.Chips),
		zap.Float64("mult", bd.Mult),
		zap.Int64("total", bd.Total))
	return bd, nil
}

// chain runs one card's full chain (rank chips when scored, modifiers,
// then the trigger dispatch) and re-runs it once per retrigger produced
// by the first run. Retriggers skip the rank chips.
func (e *Engine) chain(base *effects.Context, c *types.Card, zone effects.Zone, trigger types.Trigger) {
	ctx := *base
	ctx.Trigger = trigger
	ctx.Card = c
	ctx.Zone = zone
	ctx.Retrigger = false

	out := &effects.Outcome{}
	e.cardChips(&ctx)
	e.modifiers(&ctx, out)
	e.disp.Dispatch(&ctx, out)

	n := out.ScoredRetriggers
	if trigger == types.TriggerHeld {
		n = out.HeldRetriggers
	}
	ctx.Retrigger = true
	for range n {
		again := &effects.Outcome{}
		e.modifiers(&ctx, again)
		e.disp.Dispatch(&ctx, again)
	}
}

// cardChips adds a scored card's chips. A stone card without bonus chips
// adds no step.
func (e *Engine) cardChips(ctx *effects.Context) {
	if ctx.Trigger != types.TriggerScored {
		return
	}
	c := ctx.Card
	base := e.exec.CardChips(*c)
	if c.Enhancement == types.EnhancementStone && base == 0 {
		return
	}
	src := effects.Source{Kind: rules.SourceCard, ID: hand.RankName(c.Rank), UID: c.ID}
	ctx.Score.AddChips(src.Label(), float64(base))
}
