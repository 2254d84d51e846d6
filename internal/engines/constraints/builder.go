// Package constraints turns the selected categories into the per-category
// bounds of the allocation problem.
package constraints

import (
	"errors"

	"github.com/paliers/budget-allocator/internal/utils/catclass"
	"github.com/paliers/budget-allocator/pkg/core"
)

var errNegativePrice = errors.New("price must not be negative")

// Build looks up the price of every selected category at tier and classifies
// it. Essential categories are bound to exactly their price; the others to
// [floor(price/divisor), price]. Each category lands in exactly one of the
// two collections of the returned set.
//
// A nil classifier selects catclass.DefaultClassConfig.
func Build(
	table *core.PriceTable,
	tier core.TierLabel,
	vars core.VariableMap,
	classifier catclass.Classifier,
) (*core.ConstraintSet, error) {
	if classifier == nil {
		classifier = catclass.DefaultClassConfig()
	}
	set := &core.ConstraintSet{}
	if len(vars) == 0 {
		return set, nil
	}

	col := table.TierIndex(tier)
	if col < 0 {
		return nil, &core.DataFormatError{Field: "tier", Location: "header", Value: string(tier)}
	}

	for _, id := range vars.IDs() {
		bound, err := buildBound(table, col, id, vars[id], classifier)
		if err != nil {
			return nil, err
		}
		if bound.Kind == core.ConstraintEquality {
			set.Equalities = append(set.Equalities, bound)
		} else {
			set.Inequalities = append(set.Inequalities, bound)
		}
	}
	return set, nil
}

func buildBound(
	table *core.PriceTable,
	col int,
	id, name string,
	classifier catclass.Classifier,
) (core.Bound, error) {
	row, ok := table.Category(name)
	if !ok {
		return core.Bound{}, &core.DataFormatError{Field: "category", Location: id, Value: name}
	}

	var cell string
	if col < len(row.Prices) {
		cell = row.Prices[col]
	}
	location := name + "@" + table.Tiers[col]
	price, err := core.ParseAmount(cell)
	if err != nil {
		return core.Bound{}, &core.DataFormatError{Field: "price", Location: location, Value: cell, Err: err}
	}
	if price.IsNegative() {
		return core.Bound{}, &core.DataFormatError{Field: "price", Location: location, Value: cell, Err: errNegativePrice}
	}

	bound := core.Bound{
		Variable: id,
		Category: core.NormalizeName(row.Name),
		Type:     core.NormalizeName(row.Type),
		Kind:     classifier.Classify(row.Type).Kind(),
		Price:    price,
		Lower:    price,
		Upper:    price,
	}
	if bound.Kind == core.ConstraintInequality {
		bound.Lower = price.Div(classifier.LowerBoundDivisor(row.Type)).Floor()
	}
	return bound, nil
}
