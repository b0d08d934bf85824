// Package resolve maps parsed intents onto engine commands, turning slot
// positions, card codes and names into hand indices and instance uids.
package resolve

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/OranPie/rulatro/engine"
	"github.com/OranPie/rulatro/engine/hand"
	"github.com/OranPie/rulatro/engine/parser"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

// ErrNotAction is returned for front-end verbs such as help or quit.
var ErrNotAction = errors.New("not an engine action")

// AmbiguityError indicates multiple instances matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("which %s? (%s)", e.Name, strings.Join(e.Candidates, ", "))
}

// NotFoundError indicates nothing matched a name or position.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s %q", e.Kind, e.Name)
}

// Resolve builds the command for an intent against the current run.
func Resolve(s *types.RunState, tbl *rules.Table, in parser.Intent) (engine.Command, error) {
	act := engine.ActionKind(in.Verb)
	if !isAction(act) {
		return engine.Command{}, fmt.Errorf("%w: %q", ErrNotAction, in.Verb)
	}
	// A bare skip with a pack open means the pack.
	if act == engine.ActSkipBlind && s.Pack != nil {
		act = engine.ActSkipPack
	}
	c := engine.Command{Action: act}

	switch act {
	case engine.ActReset:
		c.Seed = s.Seed
		if len(in.Nums) > 0 {
			c.Seed = int64(in.Nums[0])
		}
	case engine.ActPlay, engine.ActDiscard:
		idx, err := cardIndices(s.Hand, in.Nums, in.Words)
		if err != nil {
			return c, err
		}
		c.Indices = idx
	case engine.ActPickPack:
		c.Indices = in.Nums
	case engine.ActBuyCard, engine.ActBuyPack, engine.ActBuyVoucher:
		if len(in.Nums) == 0 {
			return c, fmt.Errorf("%s needs an offer number", act)
		}
		c.Index = in.Nums[0]
	case engine.ActSellJoker:
		uid, err := jokerUID(s, tbl, in)
		if err != nil {
			return c, err
		}
		c.UID = uid
	case engine.ActSellConsumable:
		uid, _, err := consumableUID(s, tbl, in)
		if err != nil {
			return c, err
		}
		c.UID = uid
	case engine.ActUseConsumable:
		uid, rest, err := consumableUID(s, tbl, in)
		if err != nil {
			return c, err
		}
		c.UID = uid
		idx, err := cardIndices(s.Hand, rest.Nums, rest.Words)
		if err != nil {
			return c, err
		}
		c.Indices = idx
	}
	return c, nil
}

func isAction(act engine.ActionKind) bool {
	return slices.Contains(engine.Actions, act)
}

// cardIndices merges numeric hand indices with card codes like "ah",
// "10s" or "kd". Each code takes the leftmost unused matching card.
func cardIndices(h []types.Card, nums []int, words []string) ([]int, error) {
	out := append([]int(nil), nums...)
	used := map[int]bool{}
	for _, i := range nums {
		used[i] = true
	}
	for _, w := range words {
		r, su, ok := parseCode(w)
		if !ok {
			return nil, &NotFoundError{Kind: "card", Name: w}
		}
		found := -1
		for i, c := range h {
			if !used[i] && c.Rank == r && c.Suit == su && c.Enhancement != types.EnhancementStone {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, &NotFoundError{Kind: "card in hand", Name: w}
		}
		used[found] = true
		out = append(out, found)
	}
	return out, nil
}

var suitCodes = map[byte]types.Suit{
	's': types.SuitSpades,
	'h': types.SuitHearts,
	'c': types.SuitClubs,
	'd': types.SuitDiamonds,
	'w': types.SuitWild,
}

// parseCode reads a rank followed by a suit letter.
func parseCode(w string) (types.Rank, types.Suit, bool) {
	if len(w) < 2 {
		return 0, "", false
	}
	su, ok := suitCodes[w[len(w)-1]]
	if !ok {
		return 0, "", false
	}
	r, ok := hand.ParseRank(w[:len(w)-1])
	return r, su, ok
}

// jokerUID picks a joker by #uid, slot position, or name.
func jokerUID(s *types.RunState, tbl *rules.Table, in parser.Intent) (uint32, error) {
	switch {
	case len(in.UIDs) > 0:
		return in.UIDs[0], nil
	case len(in.Nums) > 0:
		i := in.Nums[0]
		if i < 0 || i >= len(s.Jokers) {
			return 0, &NotFoundError{Kind: "joker slot", Name: fmt.Sprint(i)}
		}
		return s.Jokers[i].UID, nil
	case len(in.Words) > 0:
		name := strings.Join(in.Words, " ")
		var uids []uint32
		var ids []string
		for _, j := range s.Jokers {
			if matchesName(tbl.Name(rules.SourceJoker, j.ID), j.ID, name) {
				uids = append(uids, j.UID)
				ids = append(ids, j.ID)
			}
		}
		return pick(uids, ids, "joker", name)
	}
	return 0, errors.New("which joker?")
}

// consumableUID picks a consumable by #uid, slot position, or name and
// returns the arguments left for card selection.
func consumableUID(s *types.RunState, tbl *rules.Table, in parser.Intent) (uint32, parser.Intent, error) {
	rest := in
	switch {
	case len(in.UIDs) > 0:
		return in.UIDs[0], rest, nil
	case len(in.Words) > 0:
		name := in.Words[0]
		rest.Words = in.Words[1:]
		var uids []uint32
		var ids []string
		for _, c := range s.Consumables {
			if matchesName(tbl.Name(rules.SourceConsumable, c.ID), c.ID, name) {
				uids = append(uids, c.UID)
				ids = append(ids, c.ID)
			}
		}
		uid, err := pick(uids, ids, "consumable", name)
		if err == nil || !isCode(name) {
			return uid, rest, err
		}
	}
	if len(in.Nums) > 0 {
		i := in.Nums[0]
		rest.Nums = in.Nums[1:]
		rest.Words = in.Words
		if i < 0 || i >= len(s.Consumables) {
			return 0, rest, &NotFoundError{Kind: "consumable slot", Name: fmt.Sprint(i)}
		}
		return s.Consumables[i].UID, rest, nil
	}
	return 0, rest, errors.New("which consumable?")
}

func isCode(w string) bool {
	_, _, ok := parseCode(w)
	return ok
}

// pick returns the first match. Copies of one id are interchangeable;
// matches across different ids are ambiguous.
func pick(uids []uint32, ids []string, kind, name string) (uint32, error) {
	if len(uids) == 0 {
		return 0, &NotFoundError{Kind: kind, Name: name}
	}
	var distinct []string
	for _, id := range ids {
		if !slices.Contains(distinct, id) {
			distinct = append(distinct, id)
		}
	}
	if len(distinct) > 1 {
		return 0, &AmbiguityError{Name: name, Candidates: distinct}
	}
	return uids[0], nil
}

// matchesName checks a query against a display name and an id, case
// insensitively. A single word of the display name also matches.
func matchesName(display, id, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	d := strings.ToLower(display)
	if d == q || strings.ToLower(id) == q {
		return true
	}
	if strings.ReplaceAll(q, " ", "_") == strings.ToLower(id) {
		return true
	}
	for _, w := range strings.Fields(d) {
		if w == q {
			return true
		}
	}
	return false
}
