// Package state manages the mutable run state: construction, card
// movement between collections, rule-flag lookups with joker layering,
// and inventory capacity.
package state

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/OranPie/rulatro/config"
	"github.com/OranPie/rulatro/engine/rng"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

var (
	// ErrInvalidSelection is returned for empty, oversized, duplicate or
	// out-of-range index selections.
	ErrInvalidSelection = errors.New("invalid card selection")
	// ErrInvariant marks a broken card-ownership invariant.
	ErrInvariant = errors.New("run state invariant violated")
)

// NewRun creates a fresh run with an ordered 52-card deck. The caller
// shuffles the deck with the run RNG.
func NewRun(cfg *config.GameConfig, seed int64) *types.RunState {
	s := &types.RunState{
		Seed:        seed,
		Phase:       types.PhaseSetup,
		Ante:        1,
		Blind:       types.BlindSmall,
		Money:       cfg.Economy.StartMoney,
		HandSize:    cfg.HandSize,
		Deck:        []types.Card{},
		Hand:        []types.Card{},
		Discard:     []types.Card{},
		Jokers:      []types.JokerInstance{},
		Consumables: []types.Consumable{},
		Vouchers:    []string{},
		Tags:        []types.TagInstance{},
		HandLevels:  map[types.HandKind]types.HandLevel{},
		Rules:       map[string]float64{},
		SourceVars:  map[string]map[string]float64{},
	}
	for _, kind := range types.HandKinds {
		if kind == types.HandRoyalFlush {
			continue
		}
		s.HandLevels[kind] = types.HandLevel{Level: 1}
	}
	for _, suit := range types.Suits {
		for r := types.RankTwo; r <= types.RankAce; r++ {
			s.Deck = append(s.Deck, types.Card{ID: NextUID(s), Rank: r, Suit: suit})
		}
	}
	return s
}

// NextUID allocates a run-unique id for a card, joker, consumable or tag.
func NextUID(s *types.RunState) uint32 {
	s.NextUID++
	return s.NextUID
}

// Shuffle permutes cards in place with the run RNG.
func Shuffle(cards []types.Card, g *rng.RNG) {
	g.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
}

// Draw moves up to n cards from the top of the deck into the hand. When
// the deck runs out and recycle is set, the discard pile is shuffled back
// into the deck. Returns the number of cards drawn.
func Draw(s *types.RunState, n int, g *rng.RNG, recycle bool) int {
	drawn := 0
	for drawn < n {
		if len(s.Deck) == 0 {
			if !recycle || len(s.Discard) == 0 {
				break
			}
			s.Deck = append(s.Deck, s.Discard...)
			s.Discard = s.Discard[:0]
			Shuffle(s.Deck, g)
		}
		s.Hand = append(s.Hand, s.Deck[0])
		s.Deck = s.Deck[1:]
		drawn++
	}
	return drawn
}

// DrawToHandSize fills the hand up to the current hand size.
func DrawToHandSize(s *types.RunState, g *rng.RNG, recycle bool) int {
	need := s.HandSize - len(s.Hand)
	if need <= 0 {
		return 0
	}
	return Draw(s, need, g, recycle)
}

// CollectCards returns every card in hand and discard to the deck and
// shuffles it.
func CollectCards(s *types.RunState, g *rng.RNG) {
	s.Deck = append(s.Deck, s.Hand...)
	s.Deck = append(s.Deck, s.Discard...)
	s.Hand = s.Hand[:0]
	s.Discard = s.Discard[:0]
	Shuffle(s.Deck, g)
}

// Selection validates hand indices: at least min, at most max, distinct
// and in range of n. Returns them in ascending order.
func Selection(n int, indices []int, min, max int) ([]int, error) {
	if len(indices) < min {
		return nil, fmt.Errorf("%w: select at least %d", ErrInvalidSelection, min)
	}
	if len(indices) > max {
		return nil, fmt.Errorf("%w: select at most %d", ErrInvalidSelection, max)
	}
	seen := map[int]bool{}
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidSelection, i)
		}
		if seen[i] {
			return nil, fmt.Errorf("%w: index %d repeated", ErrInvalidSelection, i)
		}
		seen[i] = true
		out = append(out, i)
	}
	sort.Ints(out)
	return out, nil
}

// TakeFromHand removes the cards at the given validated indices and
// returns them in index order.
func TakeFromHand(s *types.RunState, indices []int) []types.Card {
	take := map[int]bool{}
	for _, i := range indices {
		take[i] = true
	}
	taken := make([]types.Card, 0, len(indices))
	kept := make([]types.Card, 0, len(s.Hand)-len(indices))
	for i, c := range s.Hand {
		if take[i] {
			taken = append(taken, c)
		} else {
			kept = append(kept, c)
		}
	}
	s.Hand = kept
	return taken
}

// Rule returns a rule flag value: the run's own rule variables plus the
// static rules of every held joker.
func Rule(s *types.RunState, tbl *rules.Table, name string) float64 {
	v := s.Rules[name]
	if tbl == nil {
		return v
	}
	for _, j := range s.Jokers {
		if def, ok := tbl.Joker(j.ID); ok {
			v += def.Rules[name]
		}
	}
	return v
}

// Flag reports whether a rule flag is set.
func Flag(s *types.RunState, tbl *rules.Table, name string) bool {
	return Rule(s, tbl, name) != 0
}

// JokerSlots returns joker capacity. Negative jokers add a slot each.
func JokerSlots(s *types.RunState, cfg *config.GameConfig, tbl *rules.Table) int {
	slots := cfg.JokerSlots + int(Rule(s, tbl, "joker_slots"))
	for _, j := range s.Jokers {
		if j.Edition == types.EditionNegative {
			slots++
		}
	}
	return slots
}

// ConsumableSlots returns consumable capacity. Negative consumables add
// a slot each.
func ConsumableSlots(s *types.RunState, cfg *config.GameConfig, tbl *rules.Table) int {
	slots := cfg.ConsumableSlots + int(Rule(s, tbl, "consumable_slots"))
	for _, c := range s.Consumables {
		if c.Edition == types.EditionNegative {
			slots++
		}
	}
	return slots
}

// HasJokerRoom reports whether a joker of the given edition fits.
func HasJokerRoom(s *types.RunState, cfg *config.GameConfig, tbl *rules.Table, ed types.Edition) bool {
	return ed == types.EditionNegative || len(s.Jokers) < JokerSlots(s, cfg, tbl)
}

// HasConsumableRoom reports whether a consumable of the given edition fits.
func HasConsumableRoom(s *types.RunState, cfg *config.GameConfig, tbl *rules.Table, ed types.Edition) bool {
	return ed == types.EditionNegative || len(s.Consumables) < ConsumableSlots(s, cfg, tbl)
}

// MoneyFloor is the lowest balance spending may reach.
func MoneyFloor(s *types.RunState, cfg *config.GameConfig, tbl *rules.Table) int64 {
	return cfg.Economy.MoneyFloor + int64(Rule(s, tbl, "money_floor"))
}

// CanAfford reports whether price can be paid without crossing the floor.
func CanAfford(s *types.RunState, cfg *config.GameConfig, tbl *rules.Table, price int64) bool {
	return s.Money-price >= MoneyFloor(s, cfg, tbl)
}

// JokerIndex returns the slot of a joker instance, or -1.
func JokerIndex(s *types.RunState, uid uint32) int {
	for i, j := range s.Jokers {
		if j.UID == uid {
			return i
		}
	}
	return -1
}

// ConsumableIndex returns the slot of a consumable instance, or -1.
func ConsumableIndex(s *types.RunState, uid uint32) int {
	for i, c := range s.Consumables {
		if c.UID == uid {
			return i
		}
	}
	return -1
}

// Vars returns the variable store for a non-joker source, creating it.
func Vars(s *types.RunState, key string) map[string]float64 {
	v, ok := s.SourceVars[key]
	if !ok {
		v = map[string]float64{}
		s.SourceVars[key] = v
	}
	return v
}

// NormalizeKey lowercases and trims a variable or rule name.
func NormalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// HandLevel returns the level entry of a hand kind. Royal flush shares
// the straight flush entry.
func HandLevel(s *types.RunState, kind types.HandKind) types.HandLevel {
	if kind == types.HandRoyalFlush {
		kind = types.HandStraightFlush
	}
	lvl, ok := s.HandLevels[kind]
	if !ok || lvl.Level < 1 {
		lvl.Level = 1
	}
	return lvl
}

// UpgradeHand raises a hand kind by n levels, never below level 1.
func UpgradeHand(s *types.RunState, kind types.HandKind, n int) {
	if kind == types.HandRoyalFlush {
		kind = types.HandStraightFlush
	}
	lvl := HandLevel(s, kind)
	lvl.Level += n
	if lvl.Level < 1 {
		lvl.Level = 1
	}
	s.HandLevels[kind] = lvl
}

// RecordPlay counts a played hand kind.
func RecordPlay(s *types.RunState, kind types.HandKind) {
	key := kind
	if key == types.HandRoyalFlush {
		key = types.HandStraightFlush
	}
	lvl := HandLevel(s, key)
	lvl.Played++
	s.HandLevels[key] = lvl
}

// HandScore returns the base chips and mult of a hand kind at its level.
func HandScore(s *types.RunState, cfg *config.GameConfig, kind types.HandKind) (int64, float64) {
	base := cfg.HandBaseFor(kind)
	extra := HandLevel(s, kind).Level - 1
	return base.Chips + int64(extra)*base.LevelChips, base.Mult + float64(extra)*base.LevelMult
}

// MostPlayed returns the hand kind played most often, strongest first on
// ties. Returns high card when nothing has been played.
func MostPlayed(s *types.RunState) types.HandKind {
	best := types.HandHighCard
	bestCount := 0
	for _, kind := range types.HandKinds {
		if n := s.HandLevels[kind].Played; n >= bestCount && n > 0 {
			best, bestCount = kind, n
		}
	}
	return best
}

// CheckCards verifies that every card id appears in exactly one of the
// deck, hand and discard pile.
func CheckCards(s *types.RunState) error {
	seen := map[uint32]string{}
	check := func(zone string, cards []types.Card) error {
		for _, c := range cards {
			if prev, ok := seen[c.ID]; ok {
				return fmt.Errorf("%w: card %d in both %s and %s", ErrInvariant, c.ID, prev, zone)
			}
			seen[c.ID] = zone
		}
		return nil
	}
	if err := check("deck", s.Deck); err != nil {
		return err
	}
	if err := check("hand", s.Hand); err != nil {
		return err
	}
	return check("discard", s.Discard)
}

// CardCount returns the number of cards the run owns.
func CardCount(s *types.RunState) int {
	return len(s.Deck) + len(s.Hand) + len(s.Discard)
}
