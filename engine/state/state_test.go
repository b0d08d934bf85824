package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OranPie/rulatro/config"
	"github.com/OranPie/rulatro/engine/rng"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

func newRun(t *testing.T) (*types.RunState, *config.GameConfig) {
	t.Helper()
	cfg := config.Default()
	return NewRun(&cfg, 1), &cfg
}

func TestNewRun_StandardDeck(t *testing.T) {
	s, cfg := newRun(t)
	require.Len(t, s.Deck, 52)
	assert.Equal(t, types.PhaseSetup, s.Phase)
	assert.Equal(t, 1, s.Ante)
	assert.Equal(t, cfg.Economy.StartMoney, s.Money)
	assert.Equal(t, uint32(52), s.NextUID)
	require.NoError(t, CheckCards(s))

	perSuit := map[types.Suit]int{}
	for _, c := range s.Deck {
		perSuit[c.Suit]++
	}
	for _, suit := range types.Suits {
		assert.Equal(t, 13, perSuit[suit])
	}
	assert.Equal(t, 1, HandLevel(s, types.HandPair).Level)
}

func TestDraw_RecyclesDiscard(t *testing.T) {
	s, _ := newRun(t)
	g := rng.New(1)
	s.Discard = append(s.Discard, s.Deck[50:]...)
	s.Deck = s.Deck[:3]

	n := Draw(s, 5, g, true)
	assert.Equal(t, 5, n)
	assert.Len(t, s.Hand, 5)
	assert.Empty(t, s.Discard)
	require.NoError(t, CheckCards(s))
}

func TestDraw_NoRecycleStops(t *testing.T) {
	s, _ := newRun(t)
	g := rng.New(1)
	s.Discard = append(s.Discard, s.Deck[50:]...)
	s.Deck = s.Deck[:3]
	assert.Equal(t, 3, Draw(s, 5, g, false))
	assert.Len(t, s.Discard, 2)
}

func TestDrawToHandSize(t *testing.T) {
	s, _ := newRun(t)
	g := rng.New(1)
	assert.Equal(t, 8, DrawToHandSize(s, g, true))
	assert.Equal(t, 0, DrawToHandSize(s, g, true))
	assert.Len(t, s.Deck, 44)
}

func TestSelection(t *testing.T) {
	got, err := Selection(8, []int{4, 1, 2}, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, got)

	tests := []struct {
		name    string
		indices []int
	}{
		{"empty", nil},
		{"too many", []int{0, 1, 2, 3, 4, 5}},
		{"out of range", []int{8}},
		{"negative", []int{-1}},
		{"duplicate", []int{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Selection(8, tt.indices, 1, 5)
			assert.True(t, errors.Is(err, ErrInvalidSelection))
		})
	}
}

func TestTakeFromHand_KeepsOrder(t *testing.T) {
	s, _ := newRun(t)
	DrawToHandSize(s, rng.New(1), true)
	before := append([]types.Card(nil), s.Hand...)

	taken := TakeFromHand(s, []int{1, 3})
	require.Len(t, taken, 2)
	assert.Equal(t, before[1].ID, taken[0].ID)
	assert.Equal(t, before[3].ID, taken[1].ID)
	assert.Len(t, s.Hand, 6)
	assert.Equal(t, before[2].ID, s.Hand[1].ID)
}

func TestRule_LayersJokerRules(t *testing.T) {
	s, cfg := newRun(t)
	tbl := rules.NewTable()
	require.NoError(t, tbl.AddJoker(types.JokerDef{ID: "credit_card", Rules: map[string]float64{"money_floor": -20}}))
	require.NoError(t, tbl.AddJoker(types.JokerDef{ID: "four_fingers", Rules: map[string]float64{"four_fingers": 1}}))

	assert.False(t, Flag(s, tbl, "four_fingers"))
	s.Jokers = append(s.Jokers, types.JokerInstance{UID: 100, ID: "four_fingers"}, types.JokerInstance{UID: 101, ID: "credit_card"})
	assert.True(t, Flag(s, tbl, "four_fingers"))
	assert.Equal(t, int64(-20), MoneyFloor(s, cfg, tbl))

	s.Money = 0
	assert.True(t, CanAfford(s, cfg, tbl, 20))
	assert.False(t, CanAfford(s, cfg, tbl, 21))

	s.Rules["four_fingers"] = 1
	assert.Equal(t, 2.0, Rule(s, tbl, "four_fingers"))
}

func TestSlots_NegativeEditionAddsRoom(t *testing.T) {
	s, cfg := newRun(t)
	tbl := rules.NewTable()
	for i := 0; i < cfg.JokerSlots; i++ {
		s.Jokers = append(s.Jokers, types.JokerInstance{UID: uint32(200 + i), ID: "j"})
	}
	assert.False(t, HasJokerRoom(s, cfg, tbl, types.EditionNone))
	assert.True(t, HasJokerRoom(s, cfg, tbl, types.EditionNegative))

	s.Jokers[0].Edition = types.EditionNegative
	assert.True(t, HasJokerRoom(s, cfg, tbl, types.EditionNone))

	s.Rules["consumable_slots"] = 1
	assert.Equal(t, 3, ConsumableSlots(s, cfg, tbl))
}

func TestHandScore_Levels(t *testing.T) {
	s, cfg := newRun(t)
	chips, mult := HandScore(s, cfg, types.HandPair)
	assert.Equal(t, int64(10), chips)
	assert.Equal(t, 2.0, mult)

	UpgradeHand(s, types.HandPair, 2)
	chips, mult = HandScore(s, cfg, types.HandPair)
	assert.Equal(t, int64(40), chips)
	assert.Equal(t, 4.0, mult)

	UpgradeHand(s, types.HandRoyalFlush, 1)
	assert.Equal(t, 2, HandLevel(s, types.HandStraightFlush).Level)

	UpgradeHand(s, types.HandFlush, -5)
	assert.Equal(t, 1, HandLevel(s, types.HandFlush).Level)
}

func TestMostPlayed(t *testing.T) {
	s, _ := newRun(t)
	assert.Equal(t, types.HandHighCard, MostPlayed(s))
	RecordPlay(s, types.HandPair)
	RecordPlay(s, types.HandFlush)
	assert.Equal(t, types.HandFlush, MostPlayed(s), "ties go to the stronger hand")
	RecordPlay(s, types.HandPair)
	assert.Equal(t, types.HandPair, MostPlayed(s))
}

func TestCheckCards_Duplicate(t *testing.T) {
	s, _ := newRun(t)
	s.Hand = append(s.Hand, s.Deck[0])
	err := CheckCards(s)
	assert.True(t, errors.Is(err, ErrInvariant))
}

func TestClone_IsDeep(t *testing.T) {
	s, _ := newRun(t)
	s.Jokers = append(s.Jokers, types.JokerInstance{UID: 1, ID: "j", Vars: map[string]float64{"x": 1}})
	s.Shop = &types.Shop{Cards: []types.CardOffer{{ItemID: "a"}}}
	card := types.Card{ID: 999}
	s.Pack = &types.OpenPack{Options: []types.PackOption{{Kind: types.OfferCard, Card: &card}}}
	s.Rules["r"] = 1

	c := Clone(s)
	c.Deck[0].Rank = 99
	c.Jokers[0].Vars["x"] = 5
	c.Shop.Cards[0].ItemID = "b"
	c.Pack.Options[0].Card.ID = 1
	c.Rules["r"] = 2

	assert.NotEqual(t, types.Rank(99), s.Deck[0].Rank)
	assert.Equal(t, 1.0, s.Jokers[0].Vars["x"])
	assert.Equal(t, "a", s.Shop.Cards[0].ItemID)
	assert.Equal(t, uint32(999), s.Pack.Options[0].Card.ID)
	assert.Equal(t, 1.0, s.Rules["r"])
}
