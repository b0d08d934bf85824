// Package config holds the numeric tables that drive a run: hand bases,
// blind rules, ante targets, economy and shop weights.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OranPie/rulatro/types"
)

// HandBase is the level-1 score of a hand kind plus its per-level increment.
type HandBase struct {
	Chips      int64   `yaml:"chips" json:"chips"`
	Mult       float64 `yaml:"mult" json:"mult"`
	LevelChips int64   `yaml:"level_chips" json:"level_chips"`
	LevelMult  float64 `yaml:"level_mult" json:"level_mult"`
}

// BlindRule configures one blind position.
type BlindRule struct {
	TargetMult float64 `yaml:"target_mult" json:"target_mult"`
	Hands      int     `yaml:"hands" json:"hands"`
	Discards   int     `yaml:"discards" json:"discards"`
	Reward     int64   `yaml:"reward" json:"reward"`
	Skippable  bool    `yaml:"skippable" json:"skippable"`
}

// Economy holds money rules.
type Economy struct {
	StartMoney    int64 `yaml:"start_money" json:"start_money"`
	PerHandReward int64 `yaml:"per_hand_reward" json:"per_hand_reward"`
	InterestStep  int64 `yaml:"interest_step" json:"interest_step"`
	InterestPer   int64 `yaml:"interest_per" json:"interest_per"`
	InterestCap   int64 `yaml:"interest_cap" json:"interest_cap"`
	MoneyFloor    int64 `yaml:"money_floor" json:"money_floor"`
}

// PriceRange is an inclusive price range.
type PriceRange struct {
	Min int64 `yaml:"min" json:"min"`
	Max int64 `yaml:"max" json:"max"`
}

// PackRule sizes a booster pack.
type PackRule struct {
	Options int   `yaml:"options" json:"options"`
	Picks   int   `yaml:"picks" json:"picks"`
	Price   int64 `yaml:"price" json:"price"`
}

// Shop holds offer generation weights and prices.
type Shop struct {
	CardSlots      int                            `yaml:"card_slots" json:"card_slots"`
	PackSlots      int                            `yaml:"pack_slots" json:"pack_slots"`
	VoucherSlots   int                            `yaml:"voucher_slots" json:"voucher_slots"`
	KindWeights    map[types.OfferKind]int        `yaml:"kind_weights" json:"kind_weights"`
	RarityWeights  map[types.Rarity]int           `yaml:"rarity_weights" json:"rarity_weights"`
	JokerPrices    map[types.Rarity]PriceRange    `yaml:"joker_prices" json:"joker_prices"`
	EditionWeights map[types.Edition]int          `yaml:"edition_weights" json:"edition_weights"`
	EditionPrices  map[types.Edition]int64        `yaml:"edition_prices" json:"edition_prices"`
	Prices         map[types.ConsumableKind]int64 `yaml:"prices" json:"prices"`
	VoucherPrice   int64                          `yaml:"voucher_price" json:"voucher_price"`
	RerollBase     int64                          `yaml:"reroll_base" json:"reroll_base"`
	RerollStep     int64                          `yaml:"reroll_step" json:"reroll_step"`
	Packs          map[types.PackSize]PackRule    `yaml:"packs" json:"packs"`
	PackKinds      map[types.PackKind]int         `yaml:"pack_kinds" json:"pack_kinds"`
	PackSizes      map[types.PackSize]int         `yaml:"pack_sizes" json:"pack_sizes"`
}

// GameConfig is the full set of numeric tables for a run.
type GameConfig struct {
	Hands           map[types.HandKind]HandBase   `yaml:"hands" json:"hands"`
	RankChips       map[types.Rank]int64          `yaml:"rank_chips" json:"rank_chips"`
	Blinds          map[types.BlindKind]BlindRule `yaml:"blinds" json:"blinds"`
	AnteTargets     []int64                       `yaml:"ante_targets" json:"ante_targets"`
	HandSize        int                           `yaml:"hand_size" json:"hand_size"`
	MaxPlay         int                           `yaml:"max_play" json:"max_play"`
	JokerSlots      int                           `yaml:"joker_slots" json:"joker_slots"`
	ConsumableSlots int                           `yaml:"consumable_slots" json:"consumable_slots"`
	Economy         Economy                       `yaml:"economy" json:"economy"`
	Shop            Shop                          `yaml:"shop" json:"shop"`
}

// Default returns the standard tables.
func Default() GameConfig {
	rankChips := map[types.Rank]int64{}
	for r := types.RankTwo; r <= types.RankTen; r++ {
		rankChips[r] = int64(r)
	}
	rankChips[types.RankJack] = 10
	rankChips[types.RankQueen] = 10
	rankChips[types.RankKing] = 10
	rankChips[types.RankAce] = 11

	return GameConfig{
		Hands: map[types.HandKind]HandBase{
			types.HandHighCard:      {Chips: 5, Mult: 1, LevelChips: 10, LevelMult: 1},
			types.HandPair:          {Chips: 10, Mult: 2, LevelChips: 15, LevelMult: 1},
			types.HandTwoPair:       {Chips: 20, Mult: 2, LevelChips: 20, LevelMult: 1},
			types.HandTrips:         {Chips: 30, Mult: 3, LevelChips: 20, LevelMult: 2},
			types.HandStraight:      {Chips: 30, Mult: 4, LevelChips: 30, LevelMult: 3},
			types.HandFlush:         {Chips: 35, Mult: 4, LevelChips: 15, LevelMult: 2},
			types.HandFullHouse:     {Chips: 40, Mult: 4, LevelChips: 25, LevelMult: 2},
			types.HandQuads:         {Chips: 60, Mult: 7, LevelChips: 30, LevelMult: 3},
			types.HandStraightFlush: {Chips: 100, Mult: 8, LevelChips: 40, LevelMult: 4},
			types.HandFiveKind:      {Chips: 120, Mult: 12, LevelChips: 35, LevelMult: 3},
			types.HandFlushHouse:    {Chips: 140, Mult: 14, LevelChips: 40, LevelMult: 4},
			types.HandFlushFive:     {Chips: 160, Mult: 16, LevelChips: 50, LevelMult: 3},
		},
		RankChips: rankChips,
		Blinds: map[types.BlindKind]BlindRule{
			types.BlindSmall: {TargetMult: 1.0, Hands: 4, Discards: 3, Reward: 3, Skippable: true},
			types.BlindBig:   {TargetMult: 1.5, Hands: 4, Discards: 3, Reward: 4, Skippable: true},
			types.BlindBoss:  {TargetMult: 2.0, Hands: 4, Discards: 3, Reward: 5},
		},
		AnteTargets:     []int64{300, 800, 2000, 5000, 11000, 20000, 35000, 50000},
		HandSize:        8,
		MaxPlay:         5,
		JokerSlots:      5,
		ConsumableSlots: 2,
		Economy: Economy{
			StartMoney:    4,
			PerHandReward: 1,
			InterestStep:  5,
			InterestPer:   1,
			InterestCap:   5,
			MoneyFloor:    0,
		},
		Shop: Shop{
			CardSlots:    2,
			PackSlots:    2,
			VoucherSlots: 1,
			KindWeights: map[types.OfferKind]int{
				types.OfferJoker:  20,
				types.OfferTarot:  4,
				types.OfferPlanet: 4,
			},
			RarityWeights: map[types.Rarity]int{
				types.RarityCommon:   70,
				types.RarityUncommon: 25,
				types.RarityRare:     5,
			},
			JokerPrices: map[types.Rarity]PriceRange{
				types.RarityCommon:    {Min: 4, Max: 6},
				types.RarityUncommon:  {Min: 6, Max: 8},
				types.RarityRare:      {Min: 8, Max: 10},
				types.RarityLegendary: {Min: 20, Max: 20},
			},
			EditionWeights: map[types.Edition]int{
				types.EditionNone:        92,
				types.EditionFoil:        4,
				types.EditionHolographic: 3,
				types.EditionPolychrome:  1,
			},
			EditionPrices: map[types.Edition]int64{
				types.EditionFoil:        2,
				types.EditionHolographic: 3,
				types.EditionPolychrome:  5,
				types.EditionNegative:    5,
			},
			Prices: map[types.ConsumableKind]int64{
				types.ConsumableTarot:    3,
				types.ConsumablePlanet:   3,
				types.ConsumableSpectral: 4,
			},
			VoucherPrice: 10,
			RerollBase:   5,
			RerollStep:   1,
			Packs: map[types.PackSize]PackRule{
				types.PackNormal: {Options: 3, Picks: 1, Price: 4},
				types.PackJumbo:  {Options: 5, Picks: 1, Price: 6},
				types.PackMega:   {Options: 5, Picks: 2, Price: 8},
			},
			PackKinds: map[types.PackKind]int{
				types.PackArcana:    4,
				types.PackCelestial: 4,
				types.PackStandard:  4,
				types.PackBuffoon:   2,
				types.PackSpectral:  1,
			},
			PackSizes: map[types.PackSize]int{
				types.PackNormal: 4,
				types.PackJumbo:  2,
				types.PackMega:   1,
			},
		},
	}
}

// Load reads a YAML file and overlays it onto Default. Keys absent from
// the file keep their default values.
func Load(path string) (GameConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports tables that would make a run impossible.
func (c *GameConfig) Validate() error {
	var errs []error
	if len(c.AnteTargets) == 0 {
		errs = append(errs, errors.New("ante_targets must not be empty"))
	}
	if c.HandSize < 1 {
		errs = append(errs, errors.New("hand_size must be at least 1"))
	}
	if c.MaxPlay < 1 {
		errs = append(errs, errors.New("max_play must be at least 1"))
	}
	for _, kind := range []types.BlindKind{types.BlindSmall, types.BlindBig, types.BlindBoss} {
		rule, ok := c.Blinds[kind]
		if !ok {
			errs = append(errs, fmt.Errorf("missing blind rule %q", kind))
			continue
		}
		if rule.Hands < 1 {
			errs = append(errs, fmt.Errorf("blind %q needs at least one hand", kind))
		}
	}
	for _, kind := range types.HandKinds {
		if kind == types.HandRoyalFlush {
			continue
		}
		if _, ok := c.Hands[kind]; !ok {
			errs = append(errs, fmt.Errorf("missing hand base %q", kind))
		}
	}
	if c.Economy.InterestStep <= 0 {
		errs = append(errs, errors.New("economy.interest_step must be positive"))
	}
	return errors.Join(errs...)
}

// HandBaseFor returns the base table entry for a hand kind. Royal flush
// shares the straight flush entry.
func (c *GameConfig) HandBaseFor(kind types.HandKind) HandBase {
	if kind == types.HandRoyalFlush {
		kind = types.HandStraightFlush
	}
	return c.Hands[kind]
}

// AnteTarget returns the base chip target for an ante. Antes past the end
// of the table double the last entry per extra ante.
func (c *GameConfig) AnteTarget(ante int) int64 {
	if ante < 1 {
		ante = 1
	}
	if ante <= len(c.AnteTargets) {
		return c.AnteTargets[ante-1]
	}
	target := c.AnteTargets[len(c.AnteTargets)-1]
	for i := len(c.AnteTargets); i < ante; i++ {
		target *= 2
	}
	return target
}

// FinalAnte is the ante whose boss ends the run.
func (c *GameConfig) FinalAnte() int {
	return len(c.AnteTargets)
}
