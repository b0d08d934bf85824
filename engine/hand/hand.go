// Package hand classifies a played set of cards into a hand kind and
// picks the subset of cards that score.
package hand

import (
	"sort"
	"strconv"
	"strings"

	"github.com/OranPie/rulatro/types"
)

// Flags are the rule flags that relax hand detection.
type Flags struct {
	FourFingers  bool // straights and flushes need four cards
	Shortcut     bool // straights may skip one rank between cards
	SmearedSuits bool // hearts match diamonds, spades match clubs
	Splash       bool // every played card scores
}

// Result is the classification of a played set. Scoring holds indices
// into the played slice in play order.
type Result struct {
	Kind    types.HandKind
	Scoring []int
}

// Rank returns the strength of a hand kind; larger is stronger.
func Rank(kind types.HandKind) int {
	for i, k := range types.HandKinds {
		if k == kind {
			return i
		}
	}
	return -1
}

var contains = map[types.HandKind][]types.HandKind{
	types.HandPair: {
		types.HandTwoPair, types.HandTrips, types.HandFullHouse, types.HandQuads,
		types.HandFiveKind, types.HandFlushHouse, types.HandFlushFive,
	},
	types.HandTwoPair:       {types.HandFullHouse, types.HandFlushHouse},
	types.HandTrips:         {types.HandFullHouse, types.HandQuads, types.HandFiveKind, types.HandFlushHouse, types.HandFlushFive},
	types.HandQuads:         {types.HandFiveKind, types.HandFlushFive},
	types.HandStraight:      {types.HandStraightFlush, types.HandRoyalFlush},
	types.HandFlush:         {types.HandStraightFlush, types.HandRoyalFlush, types.HandFlushHouse, types.HandFlushFive},
	types.HandStraightFlush: {types.HandRoyalFlush},
}

// Contains reports whether a hand of kind played includes kind part, the
// way a full house includes a pair. Every hand contains high card.
func Contains(played, part types.HandKind) bool {
	if played == part || part == types.HandHighCard {
		return true
	}
	for _, k := range contains[part] {
		if k == played {
			return true
		}
	}
	return false
}

// IsFace reports whether a card is a jack, queen or king. Stones have no
// rank.
func IsFace(c types.Card) bool {
	return c.Enhancement != types.EnhancementStone && c.Rank >= types.RankJack && c.Rank <= types.RankKing
}

// SuitMatches reports whether a card counts as suit s.
func SuitMatches(c types.Card, s types.Suit, smeared bool) bool {
	if c.Enhancement == types.EnhancementStone {
		return false
	}
	return suitMatches(c, s, smeared)
}

var rankNames = map[types.Rank]string{
	types.RankJack:  "jack",
	types.RankQueen: "queen",
	types.RankKing:  "king",
	types.RankAce:   "ace",
}

// RankName returns the canonical name of a rank: "2" through "10",
// then jack, queen, king, ace.
func RankName(r types.Rank) string {
	if n, ok := rankNames[r]; ok {
		return n
	}
	return strconv.Itoa(int(r))
}

// ParseRank accepts a rank name, its number, or a one-letter short form.
func ParseRank(s string) (types.Rank, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "j":
		return types.RankJack, true
	case "q":
		return types.RankQueen, true
	case "k":
		return types.RankKing, true
	case "a", "1":
		return types.RankAce, true
	case "t":
		return types.RankTen, true
	}
	for r, n := range rankNames {
		if n == s {
			return r, true
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(types.RankTwo) || n > int(types.RankAce) {
		return 0, false
	}
	return types.Rank(n), true
}

// IsRed reports whether a suit is hearts or diamonds.
func IsRed(s types.Suit) bool { return red(s) }

// Evaluate classifies cards. Stone cards never form a hand kind but
// always score. An empty set classifies as high card with no scorers.
func Evaluate(cards []types.Card, f Flags) Result {
	var natural []int
	var stones []int
	for i, c := range cards {
		if c.Enhancement == types.EnhancementStone {
			stones = append(stones, i)
			continue
		}
		natural = append(natural, i)
	}

	need := 5
	if f.FourFingers {
		need = 4
	}

	groups := rankGroups(cards, natural)
	flushIdx := flush(cards, natural, need, f.SmearedSuits)
	straightIdx, royal := straight(cards, natural, need, f.Shortcut)

	var kind types.HandKind
	var scoring []int

	sizes := groupSizes(groups)
	switch {
	case sizes[0] >= 5 && flushIdx != nil:
		kind, scoring = types.HandFlushFive, groups[0]
	case sizes[0] == 3 && sizes[1] >= 2 && flushIdx != nil:
		kind, scoring = types.HandFlushHouse, union(groups[0], groups[1])
	case sizes[0] >= 5:
		kind, scoring = types.HandFiveKind, groups[0]
	case straightIdx != nil && flushIdx != nil:
		kind, scoring = types.HandStraightFlush, union(straightIdx, flushIdx)
		if royal {
			kind = types.HandRoyalFlush
		}
	case sizes[0] == 4:
		kind, scoring = types.HandQuads, groups[0]
	case sizes[0] == 3 && sizes[1] >= 2:
		kind, scoring = types.HandFullHouse, union(groups[0], groups[1])
	case flushIdx != nil:
		kind, scoring = types.HandFlush, flushIdx
	case straightIdx != nil:
		kind, scoring = types.HandStraight, straightIdx
	case sizes[0] == 3:
		kind, scoring = types.HandTrips, groups[0]
	case sizes[0] == 2 && sizes[1] == 2:
		kind, scoring = types.HandTwoPair, union(groups[0], groups[1])
	case sizes[0] == 2:
		kind, scoring = types.HandPair, groups[0]
	default:
		kind = types.HandHighCard
		if len(natural) > 0 {
			scoring = []int{highest(cards, natural)}
		}
	}

	if f.Splash {
		all := make([]int, len(cards))
		for i := range cards {
			all[i] = i
		}
		return Result{Kind: kind, Scoring: all}
	}
	return Result{Kind: kind, Scoring: union(scoring, stones)}
}

// rankGroups returns the played indices grouped by rank, largest group
// first, ties broken by higher rank.
func rankGroups(cards []types.Card, idx []int) [][]int {
	byRank := map[types.Rank][]int{}
	for _, i := range idx {
		byRank[cards[i].Rank] = append(byRank[cards[i].Rank], i)
	}
	groups := make([][]int, 0, len(byRank))
	for _, g := range byRank {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(a, b int) bool {
		if len(groups[a]) != len(groups[b]) {
			return len(groups[a]) > len(groups[b])
		}
		return cards[groups[a][0]].Rank > cards[groups[b][0]].Rank
	})
	return groups
}

func groupSizes(groups [][]int) [2]int {
	var sizes [2]int
	for i := 0; i < len(groups) && i < 2; i++ {
		sizes[i] = len(groups[i])
	}
	return sizes
}

// IsWild reports whether c counts as every suit, through either its suit
// or its enhancement.
func IsWild(c types.Card) bool {
	return c.Suit == types.SuitWild || c.Enhancement == types.EnhancementWild
}

// suitMatches reports whether card c counts as suit s. Wild cards count
// as every suit.
func suitMatches(c types.Card, s types.Suit, smeared bool) bool {
	if IsWild(c) || c.Suit == s {
		return true
	}
	if !smeared {
		return false
	}
	return red(c.Suit) == red(s)
}

func red(s types.Suit) bool {
	return s == types.SuitHearts || s == types.SuitDiamonds
}

// flush returns the indices of the largest same-suit set if it reaches
// need cards, else nil.
func flush(cards []types.Card, idx []int, need int, smeared bool) []int {
	var best []int
	for _, s := range types.Suits {
		var members []int
		for _, i := range idx {
			if suitMatches(cards[i], s, smeared) {
				members = append(members, i)
			}
		}
		if len(members) > len(best) {
			best = members
		}
	}
	if len(best) < need {
		return nil
	}
	return best
}

// straight returns one card index per rank of the longest qualifying run
// and whether the run is ten through ace.
func straight(cards []types.Card, idx []int, need int, shortcut bool) ([]int, bool) {
	first := map[int]int{}
	for _, i := range idx {
		r := int(cards[i].Rank)
		if _, ok := first[r]; !ok {
			first[r] = i
		}
	}
	if ace, ok := first[int(types.RankAce)]; ok {
		first[1] = ace
	}
	ranks := make([]int, 0, len(first))
	for r := range first {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	gap := 1
	if shortcut {
		gap = 2
	}

	var best []int
	for start := 0; start < len(ranks); start++ {
		run := []int{ranks[start]}
		for j := start + 1; j < len(ranks); j++ {
			if ranks[j]-run[len(run)-1] > gap {
				break
			}
			run = append(run, ranks[j])
		}
		if len(run) > len(best) {
			best = run
		}
	}
	if len(best) < need {
		return nil, false
	}

	seen := map[int]bool{}
	var out []int
	royal := best[len(best)-1] == int(types.RankAce) && best[0] >= int(types.RankTen)
	for _, r := range best {
		i := first[r]
		if seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	return out, royal
}

func highest(cards []types.Card, idx []int) int {
	best := idx[0]
	for _, i := range idx[1:] {
		if cards[i].Rank > cards[best].Rank {
			best = i
		}
	}
	return best
}

// union merges index sets and returns them in play order.
func union(sets ...[]int) []int {
	seen := map[int]bool{}
	var out []int
	for _, s := range sets {
		for _, i := range s {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	sort.Ints(out)
	return out
}
