// Package tier resolves the price column (palier) that applies to a budget.
package tier

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/paliers/budget-allocator/pkg/core"
)

// Threshold is the parsed breakpoint of one tier.
type Threshold struct {
	Label core.TierLabel
	Value decimal.Decimal
}

// Thresholds parses the threshold row of table, aligned to its tiers.
// A missing or non-numeric cell, or a row whose length differs from the
// tier list, is reported as a *core.DataFormatError.
func Thresholds(table *core.PriceTable) ([]Threshold, error) {
	if table == nil || len(table.Tiers) == 0 {
		return nil, &core.DataFormatError{Field: "tier", Location: "header", Value: ""}
	}
	if len(table.Thresholds) != len(table.Tiers) {
		return nil, &core.DataFormatError{
			Field:    "threshold",
			Location: "threshold row",
			Value:    fmt.Sprintf("%d cells for %d tiers", len(table.Thresholds), len(table.Tiers)),
		}
	}

	out := make([]Threshold, len(table.Tiers))
	for i, label := range table.Tiers {
		value, err := core.ParseAmount(table.Thresholds[i])
		if err != nil {
			return nil, &core.DataFormatError{
				Field:    "threshold",
				Location: label,
				Value:    table.Thresholds[i],
				Err:      err,
			}
		}
		out[i] = Threshold{Label: core.TierLabel(label), Value: value}
	}
	return out, nil
}

// ResolveTier returns the first tier, scanning left to right, whose threshold
// is greater than or equal to value. A value above every threshold resolves
// to the last tier; a value below the smallest one resolves to the first.
func ResolveTier(table *core.PriceTable, value float64) (core.TierLabel, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", &core.DataFormatError{Field: "value", Location: "tier lookup", Value: fmt.Sprint(value)}
	}
	thresholds, err := Thresholds(table)
	if err != nil {
		return "", err
	}

	v := decimal.NewFromFloat(value)
	for _, t := range thresholds {
		if t.Value.GreaterThanOrEqual(v) {
			return t.Label, nil
		}
	}
	// Above the highest breakpoint.
	return thresholds[len(thresholds)-1].Label, nil
}
