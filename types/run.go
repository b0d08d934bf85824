package types

// Phase of the run state machine.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseDeal    Phase = "deal"
	PhasePlay    Phase = "play"
	PhaseCleared Phase = "cleared"
	PhaseShop    Phase = "shop"
	PhaseFailed  Phase = "failed"
	PhaseWon     Phase = "won"
)

// BlindKind is the position of a blind within its ante.
type BlindKind string

const (
	BlindSmall BlindKind = "small"
	BlindBig   BlindKind = "big"
	BlindBoss  BlindKind = "boss"
)

// JokerInstance is a joker held by the run. UID is unique within the run;
// ID references the JokerDef.
type JokerInstance struct {
	UID      uint32             `json:"uid"`
	ID       string             `json:"id"`
	Rarity   Rarity             `json:"rarity"`
	Edition  Edition            `json:"edition,omitempty"`
	BuyPrice int64              `json:"buy_price"`
	Vars     map[string]float64 `json:"vars,omitempty"`
}

// Consumable is a tarot, planet or spectral card held by the run.
type Consumable struct {
	UID     uint32         `json:"uid"`
	ID      string         `json:"id"`
	Kind    ConsumableKind `json:"kind"`
	Edition Edition        `json:"edition,omitempty"`
	Price   int64          `json:"price"`
}

// TagInstance is an active tag waiting for its trigger.
type TagInstance struct {
	UID uint32 `json:"uid"`
	ID  string `json:"id"`
}

// HandLevel tracks the upgrade level and play count of one hand kind.
type HandLevel struct {
	Level  int `json:"level"`
	Played int `json:"played"`
}

// OfferKind classifies a shop card offer or pack option.
type OfferKind string

const (
	OfferJoker    OfferKind = "joker"
	OfferTarot    OfferKind = "tarot"
	OfferPlanet   OfferKind = "planet"
	OfferSpectral OfferKind = "spectral"
	OfferCard     OfferKind = "card"
)

// CardOffer is a single purchasable card in the shop.
type CardOffer struct {
	Kind    OfferKind `json:"kind"`
	ItemID  string    `json:"item_id"`
	Rarity  Rarity    `json:"rarity,omitempty"`
	Edition Edition   `json:"edition,omitempty"`
	Price   int64     `json:"price"`
}

// PackKind selects what a booster pack contains.
type PackKind string

const (
	PackArcana    PackKind = "arcana"
	PackCelestial PackKind = "celestial"
	PackSpectral  PackKind = "spectral"
	PackBuffoon   PackKind = "buffoon"
	PackStandard  PackKind = "standard"
)

// PackSize selects how many options a pack shows and how many are picked.
type PackSize string

const (
	PackNormal PackSize = "normal"
	PackJumbo  PackSize = "jumbo"
	PackMega   PackSize = "mega"
)

// PackOffer is a booster pack for sale.
type PackOffer struct {
	Kind    PackKind `json:"kind"`
	Size    PackSize `json:"size"`
	Options int      `json:"options"`
	Picks   int      `json:"picks"`
	Price   int64    `json:"price"`
}

// VoucherOffer is a voucher for sale.
type VoucherOffer struct {
	ID    string `json:"id"`
	Price int64  `json:"price"`
}

// Shop holds the current offers while the run is in the shop phase.
type Shop struct {
	Cards      []CardOffer    `json:"cards"`
	Packs      []PackOffer    `json:"packs"`
	Vouchers   []VoucherOffer `json:"vouchers"`
	RerollCost int64          `json:"reroll_cost"`
}

// PackOption is one choice inside an open pack. Card is set for
// playing-card options.
type PackOption struct {
	Kind    OfferKind `json:"kind"`
	ItemID  string    `json:"item_id,omitempty"`
	Rarity  Rarity    `json:"rarity,omitempty"`
	Edition Edition   `json:"edition,omitempty"`
	Card    *Card     `json:"card,omitempty"`
}

// OpenPack is the nested sub-state that blocks ordinary actions until the
// player picks or skips.
type OpenPack struct {
	Offer   PackOffer    `json:"offer"`
	Options []PackOption `json:"options"`
}

// ScoreStep records one change to the score accumulator.
type ScoreStep struct {
	Source      string  `json:"source"`
	Effect      string  `json:"effect"`
	ChipsBefore int64   `json:"chips_before"`
	ChipsAfter  int64   `json:"chips_after"`
	MultBefore  float64 `json:"mult_before"`
	MultAfter   float64 `json:"mult_after"`
}

// ScoreBreakdown is the observable result of one scoring pass.
type ScoreBreakdown struct {
	Hand      HandKind    `json:"hand"`
	Played    []uint32    `json:"played"`
	Scoring   []uint32    `json:"scoring"`
	BaseChips int64       `json:"base_chips"`
	BaseMult  float64     `json:"base_mult"`
	Chips     int64       `json:"chips"`
	Mult      float64     `json:"mult"`
	Total     int64       `json:"total"`
	Steps     []ScoreStep `json:"steps"`
}

// RunState is the complete mutable state of one run. The RNG itself is
// owned by the engine; Seed and RNGPosition are enough to restore it.
type RunState struct {
	Seed        int64  `json:"seed"`
	RNGPosition int64  `json:"rng_position"`
	NextUID     uint32 `json:"next_uid"`

	Phase        Phase     `json:"phase"`
	Ante         int       `json:"ante"`
	Blind        BlindKind `json:"blind"`
	BossID       string    `json:"boss_id,omitempty"`
	BossDisabled bool      `json:"boss_disabled,omitempty"`
	BossesSeen   []string  `json:"bosses_seen,omitempty"`
	Target       int64     `json:"target"`
	BlindScore   int64     `json:"blind_score"`

	Money        int64 `json:"money"`
	HandsLeft    int   `json:"hands_left"`
	HandsMax     int   `json:"hands_max"`
	DiscardsLeft int   `json:"discards_left"`
	DiscardsMax  int   `json:"discards_max"`
	HandSize     int   `json:"hand_size"`

	Deck    []Card `json:"deck"`
	Hand    []Card `json:"hand"`
	Discard []Card `json:"discard"`

	Jokers      []JokerInstance `json:"jokers"`
	Consumables []Consumable    `json:"consumables"`
	Vouchers    []string        `json:"vouchers"`
	Tags        []TagInstance   `json:"tags"`

	HandLevels map[HandKind]HandLevel        `json:"hand_levels"`
	Rules      map[string]float64            `json:"rules"`
	SourceVars map[string]map[string]float64 `json:"source_vars"`

	Shop *Shop     `json:"shop,omitempty"`
	Pack *OpenPack `json:"pack,omitempty"`

	LastHand         HandKind        `json:"last_hand,omitempty"`
	LastScore        *ScoreBreakdown `json:"last_score,omitempty"`
	HandsPlayed      int             `json:"hands_played"`
	BlindsSkipped    int             `json:"blinds_skipped"`
	UnusedDiscards   int             `json:"unused_discards"`
	PlanetsUsed      []string        `json:"planets_used,omitempty"`
	PreventDeath     bool            `json:"prevent_death,omitempty"`
	DuplicateNextTag int             `json:"duplicate_next_tag,omitempty"`
	FreeRerolls      int             `json:"free_rerolls,omitempty"`
}
