// Package score implements the chips/mult accumulator for one scoring pass.
package score

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/OranPie/rulatro/types"
)

// ErrInvariant is returned by Check when the accumulator holds a value
// no sequence of actions should be able to produce.
var ErrInvariant = errors.New("score accumulator invariant violated")

// Accumulator tracks running chips and mult. Every mutation is recorded
// in the step log. Chips and mult are clamped at zero after each step.
type Accumulator struct {
	chips int64
	mult  float64
	steps []types.ScoreStep
}

// New seeds an accumulator with the hand's base score.
func New(chips int64, mult float64) *Accumulator {
	a := &Accumulator{}
	a.set("base", fmt.Sprintf("base %d x %s", chips, formatFloat(mult)), chips, mult)
	return a
}

// Chips returns the running chip total.
func (a *Accumulator) Chips() int64 { return a.chips }

// Mult returns the running mult.
func (a *Accumulator) Mult() float64 { return a.mult }

// Steps returns a copy of the step log.
func (a *Accumulator) Steps() []types.ScoreStep {
	out := make([]types.ScoreStep, len(a.steps))
	copy(out, a.steps)
	return out
}

// AddChips adds v chips, floored toward negative infinity.
func (a *Accumulator) AddChips(source string, v float64) {
	delta := int64(math.Floor(v))
	a.set(source, signed(float64(delta))+" chips", a.chips+delta, a.mult)
}

// MulChips multiplies chips by v and floors the result.
func (a *Accumulator) MulChips(source string, v float64) {
	a.set(source, "x"+formatFloat(v)+" chips", int64(math.Floor(float64(a.chips)*v)), a.mult)
}

// AddMult adds v to mult.
func (a *Accumulator) AddMult(source string, v float64) {
	a.set(source, signed(v)+" mult", a.chips, a.mult+v)
}

// MulMult multiplies mult by v.
func (a *Accumulator) MulMult(source string, v float64) {
	a.set(source, "x"+formatFloat(v)+" mult", a.chips, a.mult*v)
}

// Total returns floor(chips * mult).
func (a *Accumulator) Total() int64 {
	return int64(math.Floor(float64(a.chips) * a.mult))
}

// Check reports a broken invariant: negative or non-finite values.
func (a *Accumulator) Check() error {
	if a.chips < 0 || a.mult < 0 || math.IsNaN(a.mult) || math.IsInf(a.mult, 0) {
		return fmt.Errorf("%w: chips=%d mult=%v", ErrInvariant, a.chips, a.mult)
	}
	return nil
}

func (a *Accumulator) set(source, effect string, chips int64, mult float64) {
	if chips < 0 {
		chips = 0
	}
	if mult < 0 || math.IsNaN(mult) {
		mult = 0
	}
	a.steps = append(a.steps, types.ScoreStep{
		Source:      source,
		Effect:      effect,
		ChipsBefore: a.chips,
		ChipsAfter:  chips,
		MultBefore:  a.mult,
		MultAfter:   mult,
	})
	a.chips = chips
	a.mult = mult
}

func signed(v float64) string {
	if v >= 0 {
		return "+" + formatFloat(v)
	}
	return formatFloat(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
