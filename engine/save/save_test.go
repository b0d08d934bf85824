package save

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OranPie/rulatro/engine"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

func testTable(t *testing.T) *rules.Table {
	t.Helper()
	tbl := rules.NewTable()
	require.NoError(t, tbl.AddJoker(types.JokerDef{ID: "joker", Name: "Joker", Rarity: types.RarityCommon, Blocks: []types.EffectBlock{{
		Trigger: types.TriggerIndependent,
		Actions: []types.Action{{Op: "add_mult", Value: &types.Expr{Kind: types.ExprNumber, Number: 4}}},
	}}}))
	require.NoError(t, tbl.Seal())
	return tbl
}

func playSome(t *testing.T, e *engine.Engine) {
	t.Helper()
	for _, c := range []engine.Command{
		{Action: engine.ActStartBlind},
		{Action: engine.ActDeal},
		{Action: engine.ActDiscard, Indices: []int{0, 3}},
		{Action: engine.ActPlay, Indices: []int{1, 2, 5}},
	} {
		_, err := e.Do(c)
		require.NoError(t, err, c.String())
	}
}

func TestSaveReplayRoundTrip(t *testing.T) {
	tbl := testTable(t)
	e := engine.New(tbl, 99)
	playSome(t, e)

	data, err := Save(e, "")
	require.NoError(t, err)
	require.True(t, json.Valid(data))

	sd, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, Version, sd.Version)
	assert.NotEmpty(t, sd.RunID)
	assert.Equal(t, int64(99), sd.Seed)
	require.Len(t, sd.Actions, 5)
	assert.Equal(t, engine.ActReset, sd.Actions[0].Action)

	replayed, err := Replay(tbl, sd)
	require.NoError(t, err)
	assert.Equal(t, e.Snapshot(), replayed.Snapshot())
}

func TestReplayDetectsMismatch(t *testing.T) {
	tbl := testTable(t)
	e := engine.New(tbl, 7)
	playSome(t, e)
	data, err := Save(e, "run-1")
	require.NoError(t, err)

	sd, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, "run-1", sd.RunID)
	sd.Snapshot.Money += 100

	_, err = Replay(tbl, sd)
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestReplayReportsIllegalAction(t *testing.T) {
	sd := &SaveData{Version: Version, Seed: 1, Actions: []engine.Command{
		{Action: engine.ActReset, Seed: 1},
		{Action: engine.ActPlay, Indices: []int{0}},
	}}
	_, err := Replay(testTable(t), sd)
	require.Error(t, err)
	assert.True(t, engine.IsIllegal(err))
}

func TestResumeKeepsHistory(t *testing.T) {
	tbl := testTable(t)
	e := engine.New(tbl, 3)
	playSome(t, e)
	data, err := Save(e, "")
	require.NoError(t, err)
	sd, err := Load(data)
	require.NoError(t, err)

	resumed, err := Resume(tbl, sd)
	require.NoError(t, err)
	assert.Equal(t, e.History(), resumed.History())

	a, errA := e.Do(engine.Command{Action: engine.ActPlay, Indices: []int{0}})
	b, errB := resumed.Do(engine.Command{Action: engine.ActPlay, Indices: []int{0}})
	assert.Equal(t, errA, errB)
	assert.Equal(t, a.Events, b.Events)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	_, err := Load([]byte(`{"version":"0","seed":1}`))
	assert.Error(t, err)

	_, err = Load([]byte(`{`))
	assert.Error(t, err)
}
