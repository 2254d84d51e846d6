package catclass

import (
	"github.com/shopspring/decimal"

	"github.com/paliers/budget-allocator/pkg/core"
)

// Classify returns the class of categoryType.
func (c ClassConfig) Classify(categoryType string) CategoryClass {
	value := core.NormalizeName(categoryType)
	if class, ok := matchTypeValue(value, c); ok {
		return class
	}
	if c.DefaultClass == "" {
		return ClassDiscretionary
	}
	return c.DefaultClass
}

// LowerBoundDivisor returns the divisor applied to the price of a
// discretionary category of type categoryType.
func (c ClassConfig) LowerBoundDivisor(categoryType string) decimal.Decimal {
	if d, ok := c.Divisors[core.NormalizeName(categoryType)]; ok && d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return d
	}
	if c.DefaultDivisor.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return c.DefaultDivisor
	}
	return decimal.NewFromInt(4)
}

// matchTypeValue matches a normalized type against the config's type lists.
func matchTypeValue(value string, config ClassConfig) (CategoryClass, bool) {
	for _, v := range config.EssentialTypes {
		if value == core.NormalizeName(v) {
			return ClassEssential, true
		}
	}
	for _, v := range config.DiscretionaryTypes {
		if value == core.NormalizeName(v) {
			return ClassDiscretionary, true
		}
	}
	return "", false
}
