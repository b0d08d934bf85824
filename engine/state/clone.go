package state

import "github.com/OranPie/rulatro/types"

// Clone returns a deep copy of s. Mutating the copy never affects s.
func Clone(s *types.RunState) *types.RunState {
	c := *s
	c.BossesSeen = cloneSlice(s.BossesSeen)
	c.Deck = cloneSlice(s.Deck)
	c.Hand = cloneSlice(s.Hand)
	c.Discard = cloneSlice(s.Discard)
	c.Consumables = cloneSlice(s.Consumables)
	c.Vouchers = cloneSlice(s.Vouchers)
	c.Tags = cloneSlice(s.Tags)
	c.PlanetsUsed = cloneSlice(s.PlanetsUsed)

	c.Jokers = make([]types.JokerInstance, len(s.Jokers))
	for i, j := range s.Jokers {
		j.Vars = cloneMap(j.Vars)
		c.Jokers[i] = j
	}

	c.HandLevels = make(map[types.HandKind]types.HandLevel, len(s.HandLevels))
	for k, v := range s.HandLevels {
		c.HandLevels[k] = v
	}
	c.Rules = cloneMap(s.Rules)
	c.SourceVars = make(map[string]map[string]float64, len(s.SourceVars))
	for k, v := range s.SourceVars {
		c.SourceVars[k] = cloneMap(v)
	}

	if s.Shop != nil {
		shop := *s.Shop
		shop.Cards = cloneSlice(s.Shop.Cards)
		shop.Packs = cloneSlice(s.Shop.Packs)
		shop.Vouchers = cloneSlice(s.Shop.Vouchers)
		c.Shop = &shop
	}
	if s.Pack != nil {
		pack := *s.Pack
		pack.Options = make([]types.PackOption, len(s.Pack.Options))
		for i, o := range s.Pack.Options {
			if o.Card != nil {
				card := *o.Card
				o.Card = &card
			}
			pack.Options[i] = o
		}
		c.Pack = &pack
	}
	if s.LastScore != nil {
		ls := *s.LastScore
		ls.Played = cloneSlice(s.LastScore.Played)
		ls.Scoring = cloneSlice(s.LastScore.Scoring)
		ls.Steps = cloneSlice(s.LastScore.Steps)
		c.LastScore = &ls
	}
	return &c
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	if in == nil {
		return nil
	}
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
