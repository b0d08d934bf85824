package effects

import (
	"math"

	"github.com/OranPie/rulatro/engine/eval"
	"github.com/OranPie/rulatro/engine/hand"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/state"
	"github.com/OranPie/rulatro/types"
)

// Env binds expression identifiers and functions to the run state and the
// current trigger context.
type Env struct {
	x   *Executor
	ctx *Context
}

// NewEnv returns the evaluation environment for a context.
func (x *Executor) NewEnv(ctx *Context) *Env {
	return &Env{x: x, ctx: ctx}
}

// Ident resolves a bare or dotted identifier.
func (e *Env) Ident(name string) (eval.Value, error) {
	s := e.x.State
	ctx := e.ctx
	switch name {
	case "hand":
		if ctx.Hand == "" {
			return eval.None, eval.Unbound(name)
		}
		return eval.Str(string(ctx.Hand)), nil
	case "hand_id":
		if ctx.Hand == "" {
			return eval.None, eval.Unbound(name)
		}
		return eval.Int(int64(hand.Rank(ctx.Hand))), nil
	case "last_hand":
		return eval.Str(string(s.LastHand)), nil
	case "blind":
		return eval.Str(string(s.Blind)), nil
	case "ante":
		return eval.Int(int64(s.Ante)), nil
	case "money":
		return eval.Int(s.Money), nil
	case "target":
		return eval.Int(s.Target), nil
	case "blind_score":
		return eval.Int(s.BlindScore), nil
	case "hands_left":
		return eval.Int(int64(s.HandsLeft)), nil
	case "discards_left":
		return eval.Int(int64(s.DiscardsLeft)), nil
	case "hands_max":
		return eval.Int(int64(s.HandsMax)), nil
	case "discards_max":
		return eval.Int(int64(s.DiscardsMax)), nil
	case "hand_size":
		return eval.Int(int64(s.HandSize)), nil
	case "joker_count":
		return eval.Int(int64(len(s.Jokers))), nil
	case "joker_slots":
		return eval.Int(int64(state.JokerSlots(s, e.x.Config, e.x.Table))), nil
	case "empty_joker_slots":
		free := state.JokerSlots(s, e.x.Config, e.x.Table) - len(s.Jokers)
		return eval.Int(int64(max(free, 0))), nil
	case "consumable_count":
		return eval.Int(int64(len(s.Consumables))), nil
	case "consumable_slots":
		return eval.Int(int64(state.ConsumableSlots(s, e.x.Config, e.x.Table))), nil
	case "played_count":
		return eval.Int(int64(len(ctx.Played))), nil
	case "scoring_count":
		return eval.Int(int64(len(ctx.Scoring))), nil
	case "held_count":
		return eval.Int(int64(len(s.Hand))), nil
	case "discarded_count":
		return eval.Int(int64(len(ctx.Discarded))), nil
	case "deck_count":
		return eval.Int(int64(len(s.Deck))), nil
	case "hands_played":
		return eval.Int(int64(s.HandsPlayed)), nil
	case "hand_play_count", "hand_level":
		if ctx.Hand == "" {
			return eval.None, eval.Unbound(name)
		}
		lvl := state.HandLevel(s, ctx.Hand)
		if name == "hand_level" {
			return eval.Int(int64(lvl.Level)), nil
		}
		return eval.Int(int64(lvl.Played)), nil
	case "most_played_hand":
		return eval.Str(string(state.MostPlayed(s))), nil
	case "blinds_skipped":
		return eval.Int(int64(s.BlindsSkipped)), nil
	case "unused_discards":
		return eval.Int(int64(s.UnusedDiscards)), nil
	case "unique_planets_used":
		return eval.Int(int64(len(s.PlanetsUsed))), nil
	case "is_boss_blind":
		return eval.Bool(s.Blind == types.BlindBoss), nil
	case "boss_disabled":
		return eval.Bool(s.BossDisabled), nil
	case "is_scoring":
		return eval.Bool(ctx.Zone == ZoneScoring), nil
	case "is_held":
		return eval.Bool(ctx.Zone == ZoneHeld), nil
	case "is_played":
		return eval.Bool(ctx.Zone == ZoneScoring || ctx.Zone == ZonePlayed), nil
	case "sold_value":
		return eval.Int(ctx.SoldValue), nil
	case "consumable.kind", "consumable.id":
		if ctx.Consumable == nil {
			return eval.None, eval.Unbound(name)
		}
		if name == "consumable.kind" {
			return eval.Str(string(ctx.Consumable.Kind)), nil
		}
		return eval.Str(ctx.Consumable.ID), nil
	case "joker.index", "joker.edition":
		i := -1
		if ctx.Source.Kind == rules.SourceJoker {
			i = state.JokerIndex(s, ctx.Source.UID)
		}
		if i < 0 {
			return eval.None, eval.Unbound(name)
		}
		if name == "joker.index" {
			return eval.Int(int64(i)), nil
		}
		return eval.Str(string(s.Jokers[i].Edition)), nil
	case "other.id", "other.rarity":
		if ctx.Other == nil {
			return eval.None, eval.Unbound(name)
		}
		if name == "other.id" {
			return eval.Str(ctx.Other.ID), nil
		}
		return eval.Str(string(ctx.Other.Rarity)), nil
	}
	if len(name) > 5 && name[:5] == "card." {
		if ctx.Card == nil {
			return eval.None, eval.Unbound(name)
		}
		return e.cardField(name, *ctx.Card)
	}
	return eval.None, eval.Unbound(name)
}

func (e *Env) cardField(name string, c types.Card) (eval.Value, error) {
	stone := c.Enhancement == types.EnhancementStone
	switch name[5:] {
	case "rank":
		if stone {
			return eval.None, nil
		}
		return eval.Str(hand.RankName(c.Rank)), nil
	case "rank_id":
		if stone {
			return eval.Int(0), nil
		}
		return eval.Int(int64(c.Rank)), nil
	case "suit":
		if stone {
			return eval.None, nil
		}
		return eval.Str(string(c.Suit)), nil
	case "suit_id":
		for i, su := range types.Suits {
			if su == c.Suit && !stone {
				return eval.Int(int64(i)), nil
			}
		}
		return eval.Int(-1), nil
	case "enhancement":
		return eval.Str(string(c.Enhancement)), nil
	case "edition":
		return eval.Str(string(c.Edition)), nil
	case "seal":
		return eval.Str(string(c.Seal)), nil
	case "is_face":
		return eval.Bool(e.isFace(c)), nil
	case "is_odd":
		return eval.Bool(isOdd(c)), nil
	case "is_even":
		return eval.Bool(isEven(c)), nil
	case "is_stone":
		return eval.Bool(stone), nil
	case "is_wild":
		return eval.Bool(hand.IsWild(c)), nil
	case "has_enhancement":
		return eval.Bool(c.Enhancement != types.EnhancementNone), nil
	case "chips":
		return eval.Int(e.x.CardChips(c)), nil
	}
	return eval.None, eval.Unbound(name)
}

// Call resolves the context-bound functions.
func (e *Env) Call(name string, args []eval.Value) (eval.Value, error) {
	s := e.x.State
	switch name {
	case "contains":
		if len(args) != 2 {
			return eval.None, eval.Arity(name, 2, len(args))
		}
		if args[0].Kind == eval.KindNone {
			return eval.Bool(false), nil
		}
		return eval.Bool(hand.Contains(types.HandKind(args[0].Text()), types.HandKind(args[1].Text()))), nil
	case "count":
		if len(args) != 2 {
			return eval.None, eval.Arity(name, 2, len(args))
		}
		cards, err := e.scope(name, args[0].Text())
		if err != nil {
			return eval.None, err
		}
		n := 0
		for _, c := range cards {
			ok, err := e.matches(name, c, args[1].Text())
			if err != nil {
				return eval.None, err
			}
			if ok {
				n++
			}
		}
		return eval.Int(int64(n)), nil
	case "count_joker":
		if len(args) != 1 {
			return eval.None, eval.Arity(name, 1, len(args))
		}
		id, ok := e.x.Table.Lookup(rules.SourceJoker, args[0].Text())
		if !ok {
			return eval.Int(0), nil
		}
		n := 0
		for _, j := range s.Jokers {
			if j.ID == id {
				n++
			}
		}
		return eval.Int(int64(n)), nil
	case "count_rarity":
		if len(args) != 1 {
			return eval.None, eval.Arity(name, 1, len(args))
		}
		n := 0
		for _, j := range s.Jokers {
			if string(j.Rarity) == args[0].Text() {
				n++
			}
		}
		return eval.Int(int64(n)), nil
	case "suit_match":
		if len(args) != 1 {
			return eval.None, eval.Arity(name, 1, len(args))
		}
		if e.ctx.Card == nil {
			return eval.None, eval.Unbound("card")
		}
		smeared := state.Flag(s, e.x.Table, "smeared_suits")
		return eval.Bool(hand.SuitMatches(*e.ctx.Card, types.Suit(args[0].Text()), smeared)), nil
	case "hand_count":
		if len(args) != 1 {
			return eval.None, eval.Arity(name, 1, len(args))
		}
		return eval.Int(int64(state.HandLevel(s, types.HandKind(args[0].Text())).Played)), nil
	case "var":
		if len(args) != 1 {
			return eval.None, eval.Arity(name, 1, len(args))
		}
		return eval.Num(e.x.vars(e.ctx)[state.NormalizeKey(args[0].Text())]), nil
	case "rule":
		if len(args) != 1 {
			return eval.None, eval.Arity(name, 1, len(args))
		}
		return eval.Num(state.Rule(s, e.x.Table, state.NormalizeKey(args[0].Text()))), nil
	case "lowest_rank":
		if len(args) != 1 {
			return eval.None, eval.Arity(name, 1, len(args))
		}
		cards, err := e.scope(name, args[0].Text())
		if err != nil {
			return eval.None, err
		}
		low := 0
		for _, c := range cards {
			if c.Enhancement == types.EnhancementStone {
				continue
			}
			if low == 0 || int(c.Rank) < low {
				low = int(c.Rank)
			}
		}
		return eval.Int(int64(low)), nil
	case "roll":
		if len(args) != 1 {
			return eval.None, eval.Arity(name, 1, len(args))
		}
		sides, ok := args[0].Number()
		if !ok {
			return eval.None, eval.Mismatch(name, "sides must be a number")
		}
		return eval.Bool(e.x.Roll(int(floorInt(sides)))), nil
	case "rand":
		if len(args) != 2 {
			return eval.None, eval.Arity(name, 2, len(args))
		}
		lo, ok1 := args[0].Number()
		hi, ok2 := args[1].Number()
		if !ok1 || !ok2 {
			return eval.None, eval.Mismatch(name, "bounds must be numbers")
		}
		return eval.Int(e.x.RNG.Range(floorInt(lo), floorInt(hi))), nil
	}
	return eval.None, eval.UnknownFunc(name)
}

func (e *Env) scope(fn, name string) ([]types.Card, error) {
	switch name {
	case "played":
		return e.ctx.Played, nil
	case "scoring":
		return e.ctx.Scoring, nil
	case "held", "hand":
		return e.x.State.Hand, nil
	case "discarded":
		return e.ctx.Discarded, nil
	case "deck":
		return e.x.State.Deck, nil
	}
	return nil, eval.Mismatch(fn, "unknown scope "+name)
}

// matches tests a card against a count filter.
func (e *Env) matches(fn string, c types.Card, what string) (bool, error) {
	stone := c.Enhancement == types.EnhancementStone
	switch what {
	case "", "any", "all":
		return true, nil
	case "face":
		return e.isFace(c), nil
	case "odd":
		return isOdd(c), nil
	case "even":
		return isEven(c), nil
	case "stone":
		return stone, nil
	case "wild":
		return hand.IsWild(c), nil
	case "enhanced":
		return c.Enhancement != types.EnhancementNone, nil
	case "red":
		return !stone && (hand.IsRed(c.Suit) || hand.IsWild(c)), nil
	case "black":
		return !stone && (!hand.IsRed(c.Suit) || hand.IsWild(c)), nil
	}
	for _, su := range types.Suits {
		if string(su) == what {
			return hand.SuitMatches(c, su, state.Flag(e.x.State, e.x.Table, "smeared_suits")), nil
		}
	}
	if r, ok := hand.ParseRank(what); ok {
		return !stone && c.Rank == r, nil
	}
	switch {
	case isEnhancement(what):
		return string(c.Enhancement) == what, nil
	case isEdition(what):
		return string(c.Edition) == what, nil
	case isSeal(what):
		return string(c.Seal) == what, nil
	}
	return false, eval.Mismatch(fn, "unknown card filter "+what)
}

func (e *Env) isFace(c types.Card) bool {
	if c.Enhancement != types.EnhancementStone && state.Flag(e.x.State, e.x.Table, "all_face") {
		return true
	}
	return hand.IsFace(c)
}

func isOdd(c types.Card) bool {
	if c.Enhancement == types.EnhancementStone {
		return false
	}
	return c.Rank == types.RankAce || (c.Rank <= 9 && c.Rank%2 == 1)
}

func isEven(c types.Card) bool {
	if c.Enhancement == types.EnhancementStone {
		return false
	}
	return c.Rank <= types.RankTen && c.Rank%2 == 0
}

// floorInt floors f into the int64 range. Out of range values saturate and
// NaN becomes zero.
func floorInt(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(math.Floor(f))
}
