package engine

import (
	"errors"
	"fmt"

	"github.com/OranPie/rulatro/types"
)

// Reasons an action is rejected. IllegalActionError wraps one of these.
var (
	ErrWrongPhase        = errors.New("not allowed in this phase")
	ErrPackOpen          = errors.New("a booster pack is open")
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrNoHandsLeft       = errors.New("no hands left")
	ErrNoDiscardsLeft    = errors.New("no discards left")
	ErrNotEnoughMoney    = errors.New("not enough money")
	ErrInvalidOffer      = errors.New("no such offer")
	ErrSlotsFull         = errors.New("no free slot")
	ErrUnknownConsumable = errors.New("no such consumable")
	ErrUnknownJoker      = errors.New("no such joker")
	ErrCannotSkip        = errors.New("this blind cannot be skipped")
)

// ErrInvariant marks an engine bug: card ownership or the score
// accumulator broke an invariant. The run should be abandoned.
var ErrInvariant = errors.New("engine invariant violated")

// IllegalActionError is returned when an action is not legal in the
// current state. The run state is left untouched.
type IllegalActionError struct {
	Action ActionKind
	Phase  types.Phase
	Reason error
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("%s rejected in %s phase: %v", e.Action, e.Phase, e.Reason)
}

func (e *IllegalActionError) Unwrap() error { return e.Reason }

// IsIllegal reports whether err is an IllegalActionError.
func IsIllegal(err error) bool {
	var ia *IllegalActionError
	return errors.As(err, &ia)
}
