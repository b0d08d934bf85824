package engine

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

func block(trigger types.Trigger, actions ...types.Action) types.EffectBlock {
	return types.EffectBlock{Trigger: trigger, Actions: actions}
}

// testTable builds a small hermetic table: a few jokers, one boss, one
// tag, one planet.
func testTable(t *testing.T) *rules.Table {
	t.Helper()
	tbl := rules.NewTable()
	jokers := []types.JokerDef{
		{ID: "joker", Name: "Joker", Rarity: types.RarityCommon, Blocks: []types.EffectBlock{
			block(types.TriggerIndependent, do("add_mult", "", 4)),
		}},
		{ID: "plus3", Name: "Plus Three", Rarity: types.RarityCommon, Blocks: []types.EffectBlock{
			block(types.TriggerIndependent, do("add_mult", "", 3)),
		}},
		{ID: "times2", Name: "Times Two", Rarity: types.RarityCommon, Blocks: []types.EffectBlock{
			block(types.TriggerIndependent, do("mul_mult", "", 2)),
		}},
		{ID: "drain", Name: "Drain", Rarity: types.RarityUncommon, Blocks: []types.EffectBlock{
			block(types.TriggerIndependent, do("add_mult", "", -100), do("add_chips", "", -1000)),
		}},
		{ID: "banker", Name: "Banker", Rarity: types.RarityUncommon, Blocks: []types.EffectBlock{
			block(types.TriggerAcquire, do("add_money", "", 10)),
		}},
		{ID: "per_card", Name: "Per Card", Rarity: types.RarityLegendary, Blocks: []types.EffectBlock{
			block(types.TriggerScored, do("add_mult", "", 1)),
		}},
		{ID: "copier", Name: "Copier", Rarity: types.RarityLegendary, Blocks: []types.EffectBlock{
			block(types.TriggerHeld, do("copy_played_card", "", 1), do("set_seal", "gold", 1)),
		}},
		{ID: "savior", Name: "Savior", Rarity: types.RarityRare, Blocks: []types.EffectBlock{
			block(types.TriggerBlindFailed, do("prevent_death", "", 1), do("destroy_self", "", 1)),
		}},
	}
	for _, j := range jokers {
		require.NoError(t, tbl.AddJoker(j))
	}
	require.NoError(t, tbl.AddBoss(types.BossDef{ID: "the_water", Name: "The Water", MinAnte: 1, Blocks: []types.EffectBlock{
		block(types.TriggerBlindStart, do("set_discards", "", 0)),
	}}))
	require.NoError(t, tbl.AddTag(types.TagDef{ID: "economy", Name: "Economy Tag"}))
	require.NoError(t, tbl.AddConsumable(types.ConsumableDef{
		ID: "pluto", Name: "Pluto", Kind: types.ConsumablePlanet, Hand: types.HandHighCard,
		Blocks: []types.EffectBlock{block(types.TriggerUse, do("upgrade_hand", "", 1))},
	}))
	require.NoError(t, tbl.Seal())
	return tbl
}

func newTestEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	return New(testTable(t), seed)
}

// toPlay starts the current blind and deals.
func toPlay(t *testing.T, e *Engine) {
	t.Helper()
	_, err := e.StartBlind()
	require.NoError(t, err)
	_, err = e.Deal()
	require.NoError(t, err)
	require.Equal(t, types.PhasePlay, e.State.Phase)
}

// setHand rewrites the leading hand cards, keeping their ids.
func setHand(e *Engine, cards ...types.Card) {
	for i, c := range cards {
		c.ID = e.State.Hand[i].ID
		e.State.Hand[i] = c
	}
}

func card(r types.Rank, s types.Suit) types.Card { return types.Card{Rank: r, Suit: s} }

func acesHand(first types.Card) []types.Card {
	return []types.Card{
		first,
		card(types.RankAce, types.SuitHearts),
		card(3, types.SuitClubs),
		card(5, types.SuitDiamonds),
		card(7, types.SuitClubs),
		card(9, types.SuitDiamonds),
		card(types.RankJack, types.SuitClubs),
		card(types.RankKing, types.SuitDiamonds),
	}
}

func (e *Engine) giveJoker(id string) types.JokerInstance {
	j := e.exec.NewJoker(id, types.EditionNone, 4)
	e.State.Jokers = append(e.State.Jokers, j)
	return j
}

func hasEvent(evs []types.Event, typ types.EventType) bool {
	return slices.ContainsFunc(evs, func(ev types.Event) bool { return ev.Type == typ })
}

func TestScenario_PairOfAces(t *testing.T) {
	e := newTestEngine(t, 1)
	toPlay(t, e)
	setHand(e, acesHand(card(types.RankAce, types.SuitSpades))...)
	aces := []uint32{e.State.Hand[0].ID, e.State.Hand[1].ID}
	played := make([]uint32, 5)
	for i := range played {
		played[i] = e.State.Hand[i].ID
	}

	// A A 3 5 7: the three kickers do not score.
	res, err := e.Play([]int{0, 1, 2, 3, 4})
	require.NoError(t, err)
	bd := res.Snapshot.LastScore
	require.NotNil(t, bd)
	assert.Equal(t, types.HandPair, bd.Hand)
	assert.Equal(t, aces, bd.Scoring)
	assert.Equal(t, played, bd.Played)
	assert.Equal(t, int64(32), bd.Chips)
	assert.Equal(t, 2.0, bd.Mult)
	assert.Equal(t, int64(64), bd.Total)
	assert.Equal(t, int64(64), res.Snapshot.BlindScore)
	assert.Equal(t, 3, res.Snapshot.HandsLeft)
	assert.Len(t, res.Snapshot.Hand, 8)
	assert.True(t, hasEvent(res.Events, types.EventHandScored))
}

func TestScenario_JokerAddsMultAtIndependentStep(t *testing.T) {
	e := newTestEngine(t, 1)
	e.giveJoker("joker")
	toPlay(t, e)
	setHand(e, acesHand(card(types.RankAce, types.SuitSpades))...)

	res, err := e.Play([]int{0, 1})
	require.NoError(t, err)
	bd := res.Snapshot.LastScore
	assert.Equal(t, 6.0, bd.Mult)
	assert.Equal(t, int64(192), bd.Total)

	last := bd.Steps[len(bd.Steps)-1]
	assert.Equal(t, "joker:joker", last.Source)
	assert.Equal(t, "+4 mult", last.Effect)
}

func TestScenario_GlassBreaks(t *testing.T) {
	var broke, intact int
	for seed := int64(1); seed <= 64; seed++ {
		e := newTestEngine(t, seed)
		toPlay(t, e)
		glass := card(types.RankAce, types.SuitSpades)
		glass.Enhancement = types.EnhancementGlass
		setHand(e, acesHand(glass)...)
		glassID := e.State.Hand[0].ID

		res, err := e.Play([]int{0, 1})
		require.NoError(t, err)
		assert.Equal(t, int64(128), res.Snapshot.LastScore.Total, "seed %d", seed)

		owned := func(s *types.RunState) bool {
			for _, zone := range [][]types.Card{s.Deck, s.Hand, s.Discard} {
				if slices.ContainsFunc(zone, func(c types.Card) bool { return c.ID == glassID }) {
					return true
				}
			}
			return false
		}
		if hasEvent(res.Events, types.EventCardDestroyed) {
			broke++
			assert.False(t, owned(res.Snapshot), "seed %d", seed)
			assert.Equal(t, 51, len(res.Snapshot.Deck)+len(res.Snapshot.Hand)+len(res.Snapshot.Discard))
		} else {
			intact++
			assert.True(t, owned(res.Snapshot), "seed %d", seed)
		}
	}
	assert.Positive(t, broke)
	assert.Positive(t, intact)
}

func TestScenario_DiscardWithNoneLeft(t *testing.T) {
	e := newTestEngine(t, 1)
	toPlay(t, e)
	e.State.DiscardsLeft = 0
	before := e.Snapshot()

	_, err := e.Discard([]int{0})
	require.Error(t, err)
	assert.True(t, IsIllegal(err))
	assert.ErrorIs(t, err, ErrNoDiscardsLeft)
	assert.Equal(t, before, e.Snapshot())
}

func TestScenario_BossSetsDiscardsToZero(t *testing.T) {
	e := newTestEngine(t, 1)
	require.Equal(t, "the_water", e.State.BossID)
	e.State.Blind = types.BlindBoss

	res, err := e.StartBlind()
	require.NoError(t, err)
	assert.Equal(t, 0, res.Snapshot.DiscardsLeft)
	assert.Equal(t, 0, res.Snapshot.DiscardsMax)
	assert.Equal(t, int64(600), res.Snapshot.Target)

	_, err = e.Deal()
	require.NoError(t, err)
	_, err = e.Discard([]int{0})
	assert.ErrorIs(t, err, ErrNoDiscardsLeft)
}

func TestBossDisabledByRule(t *testing.T) {
	e := newTestEngine(t, 1)
	e.State.Blind = types.BlindBoss
	e.State.Rules["disable_next_boss"] = 1

	res, err := e.StartBlind()
	require.NoError(t, err)
	assert.True(t, res.Snapshot.BossDisabled)
	assert.Equal(t, 3, res.Snapshot.DiscardsLeft)
	assert.True(t, hasEvent(res.Events, types.EventBossDisabled))
}

func TestRedSealRunsChainTwice(t *testing.T) {
	e := newTestEngine(t, 1)
	e.giveJoker("per_card")
	toPlay(t, e)
	red := card(types.RankAce, types.SuitSpades)
	red.Seal = types.SealRed
	setHand(e, acesHand(red)...)
	id := e.State.Hand[0].ID

	res, err := e.Play([]int{0, 1})
	require.NoError(t, err)
	bd := res.Snapshot.LastScore
	// Rank chips count once; the joker fires twice for the red seal.
	// 10 + 11 + 11 chips, 2 + 1 + 1 + 1 mult.
	assert.Equal(t, int64(32), bd.Chips)
	assert.Equal(t, 5.0, bd.Mult)
	assert.Equal(t, int64(160), bd.Total)

	rank, joker := 0, 0
	for _, st := range bd.Steps {
		if st.Source == fmt.Sprintf("card#%d:ace", id) {
			rank++
		}
		if st.Source == "joker:per_card" {
			joker++
		}
	}
	assert.Equal(t, 1, rank)
	assert.Equal(t, 3, joker)
}

func TestRedSeal_NoJokersAddsNothing(t *testing.T) {
	e := newTestEngine(t, 1)
	toPlay(t, e)
	red := card(types.RankAce, types.SuitSpades)
	red.Seal = types.SealRed
	setHand(e, acesHand(red)...)

	res, err := e.Play([]int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, int64(32), res.Snapshot.LastScore.Chips)
	assert.Equal(t, int64(64), res.Snapshot.LastScore.Total)
}

func TestHeldCopyKeepsLaterActions(t *testing.T) {
	e := newTestEngine(t, 1)
	e.giveJoker("copier")
	toPlay(t, e)
	setHand(e, acesHand(card(types.RankAce, types.SuitSpades))...)
	jack := e.State.Hand[6].ID

	res, err := e.Play([]int{0, 1})
	require.NoError(t, err)
	hand := res.Snapshot.Hand
	require.Len(t, hand, 12, "six held cards plus one copy each")

	for _, c := range hand[:6] {
		assert.Equal(t, types.SealGold, c.Seal, "card %d", c.ID)
	}
	assert.Equal(t, jack, hand[4].ID)
	for _, c := range hand[6:] {
		assert.Equal(t, types.SealNone, c.Seal, "copy %d is made before the seal is set", c.ID)
	}
	assert.Equal(t, types.RankJack, hand[10].Rank)
}

func TestJokerOrderMatters(t *testing.T) {
	tests := []struct {
		name   string
		jokers []string
		mult   float64
		total  int64
	}{
		{"add then multiply", []string{"plus3", "times2"}, 10, 320},
		{"multiply then add", []string{"times2", "plus3"}, 7, 224},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, 1)
			for _, id := range tt.jokers {
				e.giveJoker(id)
			}
			toPlay(t, e)
			setHand(e, acesHand(card(types.RankAce, types.SuitSpades))...)
			res, err := e.Play([]int{0, 1})
			require.NoError(t, err)
			assert.Equal(t, tt.mult, res.Snapshot.LastScore.Mult)
			assert.Equal(t, tt.total, res.Snapshot.LastScore.Total)
		})
	}
}

func TestScoreNeverNegative(t *testing.T) {
	e := newTestEngine(t, 1)
	e.giveJoker("drain")
	toPlay(t, e)

	res, err := e.Play([]int{0})
	require.NoError(t, err)
	bd := res.Snapshot.LastScore
	assert.Equal(t, 0.0, bd.Mult)
	assert.Equal(t, int64(0), bd.Chips)
	assert.Equal(t, int64(0), bd.Total)
	for _, st := range bd.Steps {
		assert.GreaterOrEqual(t, st.MultAfter, 0.0)
		assert.GreaterOrEqual(t, st.ChipsAfter, int64(0))
	}
}

func TestPhaseGating(t *testing.T) {
	phases := []types.Phase{
		types.PhaseSetup, types.PhaseDeal, types.PhasePlay, types.PhaseCleared,
		types.PhaseShop, types.PhaseFailed, types.PhaseWon,
	}
	for _, ph := range phases {
		for _, act := range Actions {
			if act == ActReset {
				continue
			}
			e := newTestEngine(t, 1)
			e.State.Phase = ph
			legal := slices.Contains(phaseRules[act], ph)

			err := e.gate(act)
			if legal {
				assert.NoError(t, err, "%s in %s", act, ph)
				continue
			}
			require.Error(t, err, "%s in %s", act, ph)
			assert.ErrorIs(t, err, ErrWrongPhase, "%s in %s", act, ph)

			before := e.Snapshot()
			_, err = e.Do(Command{Action: act})
			assert.True(t, IsIllegal(err), "%s in %s", act, ph)
			assert.Equal(t, before, e.Snapshot(), "%s in %s changed the run", act, ph)
		}
	}
}

func TestPhaseGating_OpenPackBlocksEverythingElse(t *testing.T) {
	e := newTestEngine(t, 1)
	e.State.Phase = types.PhaseShop
	e.State.Shop = &types.Shop{}
	e.State.Pack = &types.OpenPack{Offer: types.PackOffer{Kind: types.PackCelestial, Picks: 1}}

	for _, act := range Actions {
		err := e.gate(act)
		switch act {
		case ActReset, ActPickPack, ActSkipPack:
			assert.NoError(t, err, act)
		default:
			assert.ErrorIs(t, err, ErrPackOpen, act)
		}
	}
}

func TestTerminalPhasesOnlyReset(t *testing.T) {
	for _, ph := range []types.Phase{types.PhaseFailed, types.PhaseWon} {
		e := newTestEngine(t, 1)
		e.State.Phase = ph
		assert.Equal(t, []ActionKind{ActReset}, e.LegalActions())
	}
}

func TestDeterminism(t *testing.T) {
	run := func() ([]Result, *types.RunState) {
		e := newTestEngine(t, 42)
		e.giveJoker("joker")
		var out []Result
		do := func(c Command) {
			res, err := e.Do(c)
			require.NoError(t, err, c.String())
			out = append(out, res)
		}
		do(Command{Action: ActStartBlind})
		do(Command{Action: ActDeal})
		do(Command{Action: ActDiscard, Indices: []int{0, 1, 2}})
		for e.State.Phase == types.PhasePlay {
			do(Command{Action: ActPlay, Indices: []int{0, 2, 4}})
		}
		return out, e.Snapshot()
	}
	a, snapA := run()
	b, snapB := run()
	assert.Equal(t, a, b)
	assert.Equal(t, snapA, snapB)
}

func TestSnapshotIsACopy(t *testing.T) {
	e := newTestEngine(t, 1)
	snap := e.Snapshot()
	snap.Money = 999
	snap.Deck[0].Rank = types.RankAce
	snap.Rules["x"] = 1
	assert.Equal(t, int64(4), e.State.Money)
	assert.NotContains(t, e.State.Rules, "x")
}

// clearSmall plays one hand against a target of 1.
func clearSmall(t *testing.T, e *Engine) Result {
	t.Helper()
	toPlay(t, e)
	e.State.Target = 1
	res, err := e.Play([]int{0})
	require.NoError(t, err)
	require.Equal(t, types.PhaseCleared, res.Snapshot.Phase)
	return res
}

func TestBlindClearedReward(t *testing.T) {
	e := newTestEngine(t, 1)
	res := clearSmall(t, e)
	// 4 start + 3 reward + 3 unused hands, no interest below 5
	assert.Equal(t, int64(10), res.Snapshot.Money)
	assert.Equal(t, 3, res.Snapshot.UnusedDiscards)
	assert.Len(t, res.Snapshot.Deck, 52)
	assert.Empty(t, res.Snapshot.Hand)
	assert.True(t, hasEvent(res.Events, types.EventBlindCleared))
}

func TestInterest(t *testing.T) {
	e := newTestEngine(t, 1)
	e.State.Money = 100
	assert.Equal(t, int64(5), e.interest())
	e.State.Money = 12
	assert.Equal(t, int64(2), e.interest())
}

func TestBlindFailed(t *testing.T) {
	e := newTestEngine(t, 1)
	toPlay(t, e)
	e.State.HandsLeft = 1
	e.State.Target = 1 << 40

	res, err := e.Play([]int{0})
	require.NoError(t, err)
	assert.Equal(t, types.PhaseFailed, res.Snapshot.Phase)
	assert.True(t, hasEvent(res.Events, types.EventBlindFailed))
	assert.Equal(t, []ActionKind{ActReset}, e.LegalActions())
}

func TestPreventDeath(t *testing.T) {
	e := newTestEngine(t, 1)
	e.giveJoker("savior")
	toPlay(t, e)
	e.State.HandsLeft = 1
	e.State.Target = 1 << 40
	money := e.State.Money

	res, err := e.Play([]int{0})
	require.NoError(t, err)
	assert.Equal(t, types.PhaseCleared, res.Snapshot.Phase)
	assert.True(t, hasEvent(res.Events, types.EventDeathPrevented))
	assert.True(t, hasEvent(res.Events, types.EventJokerDestroyed))
	assert.Empty(t, res.Snapshot.Jokers)
	assert.Equal(t, money, res.Snapshot.Money)
}

func TestRunWonAfterFinalBoss(t *testing.T) {
	e := newTestEngine(t, 1)
	e.State.Ante = e.Config.FinalAnte()
	e.State.Blind = types.BlindBoss
	toPlay(t, e)
	e.State.Target = 1

	res, err := e.Play([]int{0})
	require.NoError(t, err)
	assert.Equal(t, types.PhaseWon, res.Snapshot.Phase)
	assert.True(t, hasEvent(res.Events, types.EventRunWon))
}

func TestSkipBlind(t *testing.T) {
	e := newTestEngine(t, 1)
	res, err := e.SkipBlind()
	require.NoError(t, err)
	assert.Equal(t, types.BlindBig, res.Snapshot.Blind)
	assert.Equal(t, 1, res.Snapshot.BlindsSkipped)
	require.Len(t, res.Snapshot.Tags, 1)
	assert.Equal(t, "economy", res.Snapshot.Tags[0].ID)

	_, err = e.SkipBlind()
	require.NoError(t, err)
	_, err = e.SkipBlind()
	assert.ErrorIs(t, err, ErrCannotSkip)
}

func TestAdvanceThroughAnte(t *testing.T) {
	e := newTestEngine(t, 1)
	for _, want := range []types.BlindKind{types.BlindBig, types.BlindBoss} {
		clearSmall(t, e)
		res, err := e.NextBlind()
		require.NoError(t, err)
		assert.Equal(t, want, res.Snapshot.Blind)
	}
	clearSmall(t, e)
	res, err := e.NextBlind()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Snapshot.Ante)
	assert.Equal(t, types.BlindSmall, res.Snapshot.Blind)
	assert.Equal(t, []string{"the_water"}, res.Snapshot.BossesSeen)
}

func TestShop_RerollAndBuy(t *testing.T) {
	e := newTestEngine(t, 1)
	clearSmall(t, e)

	res, err := e.EnterShop()
	require.NoError(t, err)
	require.NotNil(t, res.Snapshot.Shop)
	assert.Equal(t, types.PhaseShop, res.Snapshot.Phase)
	assert.LessOrEqual(t, len(res.Snapshot.Shop.Cards), 2)
	assert.Equal(t, int64(5), res.Snapshot.Shop.RerollCost)

	res, err = e.Reroll()
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Snapshot.Money)
	assert.Equal(t, int64(6), res.Snapshot.Shop.RerollCost)

	before := e.Snapshot()
	_, err = e.Reroll()
	assert.ErrorIs(t, err, ErrNotEnoughMoney)
	assert.Equal(t, before, e.Snapshot())

	e.State.FreeRerolls = 1
	res, err = e.Reroll()
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Snapshot.Money)
	assert.Equal(t, int64(6), res.Snapshot.Shop.RerollCost)

	e.State.Money = 50
	e.State.Shop.Cards = []types.CardOffer{{Kind: types.OfferJoker, ItemID: "banker", Price: 6}}
	res, err = e.BuyCard(0)
	require.NoError(t, err)
	require.Len(t, res.Snapshot.Jokers, 1)
	assert.Equal(t, "banker", res.Snapshot.Jokers[0].ID)
	assert.Equal(t, int64(54), res.Snapshot.Money, "price 6, acquire pays 10")
	assert.Empty(t, res.Snapshot.Shop.Cards)
	assert.True(t, hasEvent(res.Events, types.EventShopBought))

	_, err = e.BuyCard(0)
	assert.ErrorIs(t, err, ErrInvalidOffer)

	res, err = e.SellJoker(res.Snapshot.Jokers[0].UID)
	require.NoError(t, err)
	assert.Equal(t, int64(57), res.Snapshot.Money)
	assert.Empty(t, res.Snapshot.Jokers)
}

func TestShop_BuyCardSlotsFull(t *testing.T) {
	e := newTestEngine(t, 1)
	clearSmall(t, e)
	_, err := e.EnterShop()
	require.NoError(t, err)
	for range 5 {
		e.giveJoker("joker")
	}
	e.State.Money = 50
	e.State.Shop.Cards = []types.CardOffer{{Kind: types.OfferJoker, ItemID: "plus3", Price: 4}}

	_, err = e.BuyCard(0)
	assert.ErrorIs(t, err, ErrSlotsFull)

	e.State.Shop.Cards[0].Edition = types.EditionNegative
	_, err = e.BuyCard(0)
	assert.NoError(t, err)
}

func TestShop_Pack(t *testing.T) {
	e := newTestEngine(t, 1)
	clearSmall(t, e)
	_, err := e.EnterShop()
	require.NoError(t, err)
	e.State.Shop.Packs = []types.PackOffer{{Kind: types.PackCelestial, Size: types.PackNormal, Options: 3, Picks: 1, Price: 4}}

	res, err := e.BuyPack(0)
	require.NoError(t, err)
	require.NotNil(t, res.Snapshot.Pack)
	assert.Len(t, res.Snapshot.Pack.Options, 3)
	assert.Equal(t, int64(6), res.Snapshot.Money)

	_, err = e.LeaveShop()
	assert.ErrorIs(t, err, ErrPackOpen)
	_, err = e.PickPack([]int{0, 1})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	res, err = e.PickPack([]int{2})
	require.NoError(t, err)
	assert.Nil(t, res.Snapshot.Pack)
	assert.Equal(t, 2, res.Snapshot.HandLevels[types.HandHighCard].Level)
	assert.Equal(t, []string{"pluto"}, res.Snapshot.PlanetsUsed)
	assert.True(t, hasEvent(res.Events, types.EventPackChosen))

	res, err = e.LeaveShop()
	require.NoError(t, err)
	assert.Equal(t, types.PhaseSetup, res.Snapshot.Phase)
	assert.Equal(t, types.BlindBig, res.Snapshot.Blind)
	assert.Nil(t, res.Snapshot.Shop)
}

func TestShop_SkipPack(t *testing.T) {
	e := newTestEngine(t, 1)
	clearSmall(t, e)
	_, err := e.EnterShop()
	require.NoError(t, err)
	e.State.Shop.Packs = []types.PackOffer{{Kind: types.PackStandard, Size: types.PackNormal, Options: 3, Picks: 1, Price: 4}}
	_, err = e.BuyPack(0)
	require.NoError(t, err)

	res, err := e.SkipPack()
	require.NoError(t, err)
	assert.Nil(t, res.Snapshot.Pack)
	assert.Len(t, res.Snapshot.Deck, 52)
	assert.True(t, hasEvent(res.Events, types.EventPackSkipped))
}

func TestStandardPackAddsCardToDeck(t *testing.T) {
	e := newTestEngine(t, 1)
	clearSmall(t, e)
	_, err := e.EnterShop()
	require.NoError(t, err)
	e.State.Shop.Packs = []types.PackOffer{{Kind: types.PackStandard, Size: types.PackNormal, Options: 3, Picks: 1, Price: 4}}
	_, err = e.BuyPack(0)
	require.NoError(t, err)

	res, err := e.PickPack([]int{1})
	require.NoError(t, err)
	assert.Len(t, res.Snapshot.Deck, 53)
	assert.True(t, hasEvent(res.Events, types.EventCardAdded))
}

func TestUseAndSellConsumable(t *testing.T) {
	e := newTestEngine(t, 1)
	c := e.exec.NewConsumable("pluto", types.EditionNone, 3)
	e.State.Consumables = append(e.State.Consumables, c)

	res, err := e.UseConsumable(c.UID, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Snapshot.Consumables)
	assert.Equal(t, 2, res.Snapshot.HandLevels[types.HandHighCard].Level)
	assert.True(t, hasEvent(res.Events, types.EventConsumableUsed))

	_, err = e.UseConsumable(c.UID, nil)
	assert.ErrorIs(t, err, ErrUnknownConsumable)

	c = e.exec.NewConsumable("pluto", types.EditionNone, 3)
	e.State.Consumables = append(e.State.Consumables, c)
	res, err = e.SellConsumable(c.UID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Snapshot.Money)
}

func TestResetIsAlwaysLegal(t *testing.T) {
	e := newTestEngine(t, 1)
	e.State.Phase = types.PhaseFailed
	res := e.Reset(9)
	assert.Equal(t, types.PhaseSetup, res.Snapshot.Phase)
	assert.Equal(t, int64(9), res.Snapshot.Seed)
	assert.Len(t, res.Snapshot.Deck, 52)
	assert.Equal(t, []Command{{Action: ActReset, Seed: 9}}, e.History())
}

func TestRestoreContinuesIdentically(t *testing.T) {
	a := newTestEngine(t, 5)
	toPlay(t, a)
	snap := a.Snapshot()

	b := newTestEngine(t, 1)
	b.Restore(snap)

	ra, err := a.Discard([]int{0, 1})
	require.NoError(t, err)
	rb, err := b.Discard([]int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, ra, rb)
}

func TestIllegalActionError(t *testing.T) {
	e := newTestEngine(t, 1)
	_, err := e.Play([]int{0})
	var ia *IllegalActionError
	require.True(t, errors.As(err, &ia))
	assert.Equal(t, ActPlay, ia.Action)
	assert.Equal(t, types.PhaseSetup, ia.Phase)
}
