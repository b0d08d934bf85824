package session

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OranPie/rulatro/content"
	"github.com/OranPie/rulatro/engine"
	"github.com/OranPie/rulatro/types"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	tbl, _, err := content.Table()
	require.NoError(t, err)
	return New(engine.New(tbl, 42), tbl, nil)
}

func hasPrefix(lines []string, prefix string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func TestStep_PlayFlow(t *testing.T) {
	s := newSession(t)

	out := s.Step("start")
	require.NoError(t, out.Err)
	assert.Contains(t, out.Lines, "blind_started ante=1 blind=small target=300")

	out = s.Step("deal")
	require.NoError(t, out.Err)
	assert.True(t, hasPrefix(out.Lines, "Hand: 0:"))

	out = s.Step("play 0")
	require.NoError(t, out.Err)
	assert.True(t, hasPrefix(out.Lines, "hand_scored"))
	assert.True(t, hasPrefix(out.Lines, "high_card: 5 chips x 1 mult"))
	assert.True(t, hasPrefix(out.Lines, "= "))
	assert.Equal(t, 3, s.Engine.State.HandsLeft)
}

func TestStep_FrontEndVerbs(t *testing.T) {
	s := newSession(t)

	assert.Equal(t, HelpLines(), s.Step("help").Lines)
	assert.True(t, strings.HasPrefix(s.Step("st").Lines[0], "Ante 1 small | setup"))
	assert.Contains(t, s.Step("actions").Lines[0], "start_blind")
	assert.True(t, s.Step("q").Quit)
	assert.Empty(t, s.Step("   ").Lines)
}

func TestStep_Errors(t *testing.T) {
	s := newSession(t)

	out := s.Step("play 0")
	require.Error(t, out.Err)
	assert.True(t, engine.IsIllegal(out.Err))
	assert.True(t, strings.HasPrefix(out.Lines[0], "Error: "))

	out = s.Step("frobnicate")
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "unknown command")

	out = s.Step("sell joker")
	require.Error(t, out.Err)
	assert.Equal(t, types.PhaseSetup, s.Engine.State.Phase)
}

func TestSaveLoad(t *testing.T) {
	s := newSession(t)
	for _, line := range []string{"start", "deal", "play 0", "discard 0"} {
		require.NoError(t, s.Step(line).Err, line)
	}
	path := filepath.Join(t.TempDir(), "saves", "run.json")
	require.NoError(t, s.Save(path))

	other := newSession(t)
	require.NoError(t, other.Load(path))
	assert.Equal(t, s.RunID, other.RunID)
	assert.Equal(t, s.Engine.Snapshot(), other.Engine.Snapshot())
	assert.Equal(t, s.Engine.History(), other.Engine.History())
}

func TestLoad_MissingFileKeepsRun(t *testing.T) {
	s := newSession(t)
	e := s.Engine
	require.Error(t, s.Load(filepath.Join(t.TempDir(), "nope.json")))
	assert.Same(t, e, s.Engine)
}

func TestCardCode(t *testing.T) {
	tests := []struct {
		card types.Card
		want string
	}{
		{types.Card{Rank: types.RankAce, Suit: types.SuitHearts}, "Ah"},
		{types.Card{Rank: types.RankTen, Suit: types.SuitDiamonds}, "10d"},
		{types.Card{Rank: 7, Suit: types.SuitClubs, BonusChips: 5}, "7c[+5]"},
		{types.Card{Rank: types.RankKing, Suit: types.SuitHearts, Enhancement: types.EnhancementGlass,
			Edition: types.EditionFoil, Seal: types.SealRed}, "Kh[glass,foil,red seal]"},
		{types.Card{Rank: 3, Suit: types.SuitSpades, Enhancement: types.EnhancementStone, Seal: types.SealGold}, "Stone[gold seal]"},
		{types.Card{Rank: 3, Suit: types.SuitSpades, FaceDown: true}, "??"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CardCode(tt.card))
	}
}

func TestEventLine(t *testing.T) {
	assert.Equal(t, "shop_left", EventLine(types.Event{Type: types.EventShopLeft}))
	assert.Equal(t, "joker_sold id=joker money=7 uid=4", EventLine(types.Event{
		Type: types.EventJokerSold,
		Data: map[string]any{"uid": 4, "money": 7, "id": "joker"},
	}))
}

func TestBreakdownLines(t *testing.T) {
	b := &types.ScoreBreakdown{
		Hand: types.HandPair, BaseChips: 10, BaseMult: 2,
		Chips: 32, Mult: 6, Total: 192,
		Steps: []types.ScoreStep{{Source: "joker:joker", Effect: "add_mult", ChipsAfter: 32, MultAfter: 6}},
	}
	lines := BreakdownLines(b)
	require.Len(t, lines, 3)
	assert.Equal(t, "pair: 10 chips x 2 mult", lines[0])
	assert.Contains(t, lines[1], "joker:joker")
	assert.Equal(t, "= 32 x 6 = 192", lines[2])
}
