package effects

import (
	"fmt"

	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/engine/score"
	"github.com/OranPie/rulatro/types"
)

// Source identifies where an effect block came from. UID is the joker,
// tag or card instance when there is one.
type Source struct {
	Kind rules.SourceKind
	ID   string
	UID  uint32
}

// Label is the source id recorded in the step log and in logs.
func (s Source) Label() string {
	if s.Kind == rules.SourceCard && s.UID != 0 {
		return fmt.Sprintf("card#%d:%s", s.UID, s.ID)
	}
	return string(s.Kind) + ":" + s.ID
}

// VarKey is the key of the source's variable store for non-joker sources.
func (s Source) VarKey() string {
	return string(s.Kind) + ":" + s.ID
}

// Zone says which collection a bound card is being resolved from.
type Zone string

const (
	ZoneNone      Zone = ""
	ZoneScoring   Zone = "scoring"
	ZoneHeld      Zone = "held"
	ZonePlayed    Zone = "played"
	ZoneDiscarded Zone = "discarded"
	ZoneSelected  Zone = "selected"
	ZoneDeck      Zone = "deck"
)

// Context is assembled fresh for each trigger invocation. Card points
// into the collection that owns the bound card so mutations stick.
type Context struct {
	Trigger types.Trigger
	Source  Source

	Hand      types.HandKind
	Played    []types.Card
	Scoring   []types.Card
	Discarded []types.Card

	Card *types.Card
	Zone Zone

	Consumable *types.Consumable
	Selected   []int

	Other     *types.JokerInstance
	SoldValue int64

	Score *score.Accumulator

	// Retrigger marks a re-execution of a card chain; retrigger amounts
	// produced while it is set are ignored.
	Retrigger bool

	depth int
}

// Outcome collects control results of the blocks run for one card or
// one dispatch.
type Outcome struct {
	ScoredRetriggers int
	HeldRetriggers   int
	Fired            int
}
