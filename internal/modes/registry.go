package modes

import (
	"errors"
	"fmt"
	"time"

	"ledgerline/internal/core"
)

// ErrUnknownMode is returned by Get for names outside the fixed mode set.
var ErrUnknownMode = errors.New("unknown mode")

// Evaluator is the strategy interface implemented once per mode. Evaluate must
// not fail on missing data; every division is guarded with a default instead.
type Evaluator interface {
	Mode() core.ModeName
	// Evaluate judges txs as of ref. Windows and month boundaries are taken in
	// ref's location.
	Evaluate(txs []core.Transaction, ref time.Time) core.Result
}

var evaluators = map[core.ModeName]Evaluator{
	core.Lockdown:  LockdownEvaluator{},
	core.Vacay:     VacayEvaluator{},
	core.Survival:  SurvivalEvaluator{},
	core.Stability: StabilityEvaluator{},
	core.Saver:     SaverEvaluator{},
}

// Get returns the evaluator registered for name.
func Get(name core.ModeName) (Evaluator, error) {
	e, ok := evaluators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	return e, nil
}

// All returns the evaluators in core.ModeNames order.
func All() []Evaluator {
	out := make([]Evaluator, 0, len(core.ModeNames))
	for _, name := range core.ModeNames {
		out = append(out, evaluators[name])
	}
	return out
}

// EvaluateAll runs every evaluator over the same snapshot.
func EvaluateAll(txs []core.Transaction, ref time.Time) []core.Result {
	all := All()
	results := make([]core.Result, 0, len(all))
	for _, e := range all {
		results = append(results, e.Evaluate(txs, ref))
	}
	return results
}

// newResult fills in the static parts of a result from the mode definition.
func newResult(mode core.ModeName) core.Result {
	return core.Result{
		Mode:        mode,
		Name:        mode.DisplayName(),
		Description: descriptions[mode],
		Icon:        icons[mode],
	}
}

var descriptions = map[core.ModeName]string{
	core.Lockdown:  "Triggered when expenses exceed income. Time to evaluate spending and cut back on non-essentials.",
	core.Vacay:     "Triggered by sustained savings over 3+ months. You're building financial freedom!",
	core.Survival:  "Triggered by spending >50% of monthly income in the first 10 days. Budget carefully!",
	core.Stability: "Triggered by consistent income/expense ratio over 4+ months. Financial stability achieved!",
	core.Saver:     "Triggered when total savings exceed 3x monthly income. You're building financial security!",
}

var icons = map[core.ModeName]string{
	core.Lockdown:  "🔒",
	core.Vacay:     "🏝️",
	core.Survival:  "⚠️",
	core.Stability: "🏆",
	core.Saver:     "💰",
}
