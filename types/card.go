// Package types defines the shared data structures for the Rulatro engine.
// This package contains only type definitions and their canonical names.
// Logic lives in the engine packages.
package types

// Suit of a playing card.
type Suit string

const (
	SuitSpades   Suit = "spades"
	SuitHearts   Suit = "hearts"
	SuitClubs    Suit = "clubs"
	SuitDiamonds Suit = "diamonds"
	// SuitWild counts as every suit. It is never dealt in a standard deck.
	SuitWild Suit = "wild"
)

// Suits lists the four natural suits in canonical order. The index is the
// suit id.
var Suits = []Suit{SuitSpades, SuitHearts, SuitClubs, SuitDiamonds}

// Rank of a playing card, 2 through 14 (ace high).
type Rank int

const (
	RankTwo   Rank = 2
	RankTen   Rank = 10
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
	RankAce   Rank = 14
)

// Enhancement is a card-level modifier that changes how the card scores.
type Enhancement string

const (
	EnhancementNone  Enhancement = ""
	EnhancementBonus Enhancement = "bonus"
	EnhancementMult  Enhancement = "mult"
	EnhancementGlass Enhancement = "glass"
	EnhancementStone Enhancement = "stone"
	EnhancementLucky Enhancement = "lucky"
	EnhancementSteel Enhancement = "steel"
	EnhancementGold  Enhancement = "gold"
	EnhancementWild  Enhancement = "wild"
)

// Edition applies to cards and jokers.
type Edition string

const (
	EditionNone        Edition = ""
	EditionFoil        Edition = "foil"
	EditionHolographic Edition = "holographic"
	EditionPolychrome  Edition = "polychrome"
	EditionNegative    Edition = "negative"
)

// Seal is a card-level trigger attachment.
type Seal string

const (
	SealNone   Seal = ""
	SealRed    Seal = "red"
	SealGold   Seal = "gold"
	SealBlue   Seal = "blue"
	SealPurple Seal = "purple"
)

// Card is a single playing card. ID is unique within a run and is how
// the engine tracks ownership across collections.
type Card struct {
	ID          uint32      `json:"id"`
	Rank        Rank        `json:"rank"`
	Suit        Suit        `json:"suit"`
	Enhancement Enhancement `json:"enhancement,omitempty"`
	Edition     Edition     `json:"edition,omitempty"`
	Seal        Seal        `json:"seal,omitempty"`
	BonusChips  int64       `json:"bonus_chips,omitempty"`
	FaceDown    bool        `json:"face_down,omitempty"`
}

// HandKind is the poker classification of a played set of cards.
type HandKind string

const (
	HandHighCard      HandKind = "high_card"
	HandPair          HandKind = "pair"
	HandTwoPair       HandKind = "two_pair"
	HandTrips         HandKind = "trips"
	HandStraight      HandKind = "straight"
	HandFlush         HandKind = "flush"
	HandFullHouse     HandKind = "full_house"
	HandQuads         HandKind = "quads"
	HandStraightFlush HandKind = "straight_flush"
	HandRoyalFlush    HandKind = "royal_flush"
	HandFiveKind      HandKind = "five_kind"
	HandFlushHouse    HandKind = "flush_house"
	HandFlushFive     HandKind = "flush_five"
)

// HandKinds lists every hand kind from weakest to strongest. The index is
// the hand id exposed to expressions.
var HandKinds = []HandKind{
	HandHighCard, HandPair, HandTwoPair, HandTrips, HandStraight, HandFlush,
	HandFullHouse, HandQuads, HandStraightFlush, HandRoyalFlush, HandFiveKind,
	HandFlushHouse, HandFlushFive,
}
