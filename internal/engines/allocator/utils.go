package allocator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/paliers/budget-allocator/pkg/core"
)

const (
	reasonMandatoryExceedsBudget = "mandatory sum exceeds budget"
	reasonLowerBoundsExceed      = "lower bounds exceed budget"
	reasonUpperBoundsShort       = "upper bounds cannot reach budget"
)

// boundsFor returns the bound of every variable of vars, in variable id order.
func boundsFor(set *core.ConstraintSet, vars core.VariableMap) ([]core.Bound, error) {
	byVar := set.ByVariable()
	if len(byVar) != len(vars) {
		return nil, fmt.Errorf("constraint set has %d bounds for %d variables", len(byVar), len(vars))
	}
	out := make([]core.Bound, 0, len(vars))
	for _, id := range vars.IDs() {
		b, ok := byVar[id]
		if !ok {
			return nil, fmt.Errorf("no bound for variable %s (%s)", id, vars[id])
		}
		out = append(out, b)
	}
	return out, nil
}

// checkBudgetReach returns why no assignment within bounds can sum to budget,
// or "" when the totals alone do not rule it out.
func checkBudgetReach(bounds []core.Bound, budget int64) string {
	target := decimal.NewFromInt(budget)
	mandatory, lower, upper := decimal.Zero, decimal.Zero, decimal.Zero
	for _, b := range bounds {
		if b.Kind == core.ConstraintEquality {
			mandatory = mandatory.Add(b.Price)
		}
		lower = lower.Add(b.Lower.Ceil())
		upper = upper.Add(b.Upper.Floor())
	}
	switch {
	case mandatory.GreaterThan(target):
		return reasonMandatoryExceedsBudget
	case lower.GreaterThan(target):
		return reasonLowerBoundsExceed
	case upper.LessThan(target):
		return reasonUpperBoundsShort
	}
	return ""
}

// roundAmounts rounds every solved value to the nearest integer and assigns
// the rest of budget to core.OtherCategory.
func roundAmounts(bounds []core.Bound, values []float64, budget int64) (map[string]int64, error) {
	amounts := make(map[string]int64, len(bounds)+1)
	var allocated int64
	for i, b := range bounds {
		v := int64(math.Round(values[i]))
		amounts[b.Category] = v
		allocated += v
	}
	other := budget - allocated
	if other < 0 {
		return nil, &core.RoundingInconsistencyError{Budget: budget, Allocated: allocated}
	}
	amounts[core.OtherCategory] = other
	return amounts, nil
}
