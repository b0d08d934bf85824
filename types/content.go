package types

// Trigger names the lifecycle point at which an effect block may fire.
type Trigger string

const (
	TriggerPlayed        Trigger = "played"
	TriggerScoredPre     Trigger = "scored_pre"
	TriggerScored        Trigger = "scored"
	TriggerHeld          Trigger = "held"
	TriggerIndependent   Trigger = "independent"
	TriggerOtherJokers   Trigger = "other_jokers"
	TriggerDiscard       Trigger = "discard"
	TriggerDiscardBatch  Trigger = "discard_batch"
	TriggerCardDestroyed Trigger = "card_destroyed"
	TriggerCardAdded     Trigger = "card_added"
	TriggerRoundEnd      Trigger = "round_end"
	TriggerHandEnd       Trigger = "hand_end"
	TriggerBlindStart    Trigger = "blind_start"
	TriggerBlindFailed   Trigger = "blind_failed"
	TriggerShopEnter     Trigger = "shop_enter"
	TriggerShopReroll    Trigger = "shop_reroll"
	TriggerShopExit      Trigger = "shop_exit"
	TriggerPackOpened    Trigger = "pack_opened"
	TriggerPackSkipped   Trigger = "pack_skipped"
	TriggerUse           Trigger = "use"
	TriggerSell          Trigger = "sell"
	TriggerAnySell       Trigger = "any_sell"
	TriggerAcquire       Trigger = "acquire"
)

// Triggers lists every activation type the engine dispatches.
var Triggers = []Trigger{
	TriggerPlayed, TriggerScoredPre, TriggerScored, TriggerHeld, TriggerIndependent,
	TriggerOtherJokers, TriggerDiscard, TriggerDiscardBatch, TriggerCardDestroyed,
	TriggerCardAdded, TriggerRoundEnd, TriggerHandEnd, TriggerBlindStart,
	TriggerBlindFailed, TriggerShopEnter, TriggerShopReroll, TriggerShopExit,
	TriggerPackOpened, TriggerPackSkipped, TriggerUse, TriggerSell, TriggerAnySell,
	TriggerAcquire,
}

// ExprKind tags the variant held by an Expr node.
type ExprKind string

const (
	ExprBool   ExprKind = "bool"
	ExprNumber ExprKind = "number"
	ExprString ExprKind = "string"
	ExprIdent  ExprKind = "ident"
	ExprUnary  ExprKind = "unary"
	ExprBinary ExprKind = "binary"
	ExprCall   ExprKind = "call"
)

// Expr is a pre-parsed condition or argument expression.
// Text holds the string literal, identifier, or function name.
// Unary nodes use Left only.
type Expr struct {
	Kind   ExprKind
	Bool   bool
	Number float64
	Text   string
	Op     string
	Left   *Expr
	Right  *Expr
	Args   []*Expr
}

// ActionOp names a primitive action. New ops are added through the
// executor's registration table.
type ActionOp string

// Action is one primitive step of an effect block. Target is an
// op-specific selector (a card zone, a joker id, a rule name). A nil
// Value means 1.
type Action struct {
	Op     ActionOp
	Target string
	Value  *Expr
}

// EffectBlock is the unit of content-defined behavior: when Trigger fires
// and every condition holds, the actions run in order.
type EffectBlock struct {
	Trigger    Trigger
	Conditions []*Expr
	Actions    []Action
}

// Rarity of a joker.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// ConsumableKind separates tarots, planets and spectrals.
type ConsumableKind string

const (
	ConsumableTarot    ConsumableKind = "tarot"
	ConsumablePlanet   ConsumableKind = "planet"
	ConsumableSpectral ConsumableKind = "spectral"
)

// JokerDef is the immutable definition of a joker. Rules are rule flags
// contributed for as long as an instance is held.
type JokerDef struct {
	ID     string
	Name   string
	Rarity Rarity
	Price  int64
	Rules  map[string]float64
	Blocks []EffectBlock
}

// BossDef defines a boss blind. A zero TargetMult uses the configured
// boss multiplier.
type BossDef struct {
	ID         string
	Name       string
	MinAnte    int
	TargetMult float64
	Blocks     []EffectBlock
}

// TagDef defines a tag granted for skipping blinds or by effects.
type TagDef struct {
	ID     string
	Name   string
	Blocks []EffectBlock
}

// ConsumableDef defines a tarot, planet or spectral card. Hand is the
// hand kind a planet levels up. MaxSelect bounds the hand cards the
// consumable may target.
type ConsumableDef struct {
	ID        string
	Name      string
	Kind      ConsumableKind
	Hand      HandKind
	Price     int64
	MinSelect int
	MaxSelect int
	Blocks    []EffectBlock
}

// VoucherDef defines a permanent shop upgrade. Its acquire blocks run
// once on purchase.
type VoucherDef struct {
	ID       string
	Name     string
	Price    int64
	Requires string
	Blocks   []EffectBlock
}
