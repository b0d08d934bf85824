package events

import (
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

// Hook is a scripted mod attached to the dispatcher boundary.
type Hook interface {
	Name() string
	Handles(trigger types.Trigger, phase rules.ModPhase) bool
	Run(hc HookContext) (HookResult, error)
}

// HookContext is the read-only view a hook receives. Roll draws from the
// run RNG, returning a value in [1, sides].
type HookContext struct {
	Trigger      types.Trigger
	Phase        rules.ModPhase
	Hand         types.HandKind
	Ante         int
	Blind        types.BlindKind
	Money        int64
	HandsLeft    int
	DiscardsLeft int
	Card         *types.Card
	Roll         func(sides int) int
}

// HookResult carries the blocks a hook wants run. A block without a
// trigger runs for the current one. CancelCore, from a pre-phase hook,
// skips boss, jokers and tags; Stop ends the dispatch.
type HookResult struct {
	Blocks     []types.EffectBlock
	CancelCore bool
	Stop       bool
}
