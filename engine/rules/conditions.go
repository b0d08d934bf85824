package rules

import (
	"github.com/OranPie/rulatro/engine/eval"
	"github.com/OranPie/rulatro/types"
)

// Matches reports whether a block is declared for the trigger. A block
// that does not match is skipped without evaluating its conditions.
func Matches(b types.EffectBlock, trigger types.Trigger) bool {
	return b.Trigger == trigger
}

// Holds returns true if all conditions pass (AND logic), evaluated in
// order and stopping at the first false one. An empty condition list is
// vacuously true. An evaluation error is returned with a false result.
func Holds(b types.EffectBlock, env eval.Env) (bool, error) {
	for _, c := range b.Conditions {
		ok, err := eval.EvalBool(c, env)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
