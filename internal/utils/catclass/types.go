// Package catclass classifies category types as essential or discretionary.
// Discovery derives the classification config from the category policies;
// detection matches a normalized category type against that config.
package catclass

import (
	"github.com/shopspring/decimal"

	"github.com/paliers/budget-allocator/pkg/core"
)

// CategoryClass is the constraint class of a category type.
type CategoryClass string

const (
	// ClassEssential categories are funded at exactly their tier price.
	ClassEssential CategoryClass = "essential"
	// ClassDiscretionary categories are funded within [floor(price/divisor), price].
	ClassDiscretionary CategoryClass = "discretionary"
)

// Kind returns the constraint kind the class maps to.
func (c CategoryClass) Kind() core.ConstraintKind {
	if c == ClassEssential {
		return core.ConstraintEquality
	}
	return core.ConstraintInequality
}

// Classifier assigns a class and a lower-bound divisor to a category type.
// ClassConfig is the built-in implementation.
type Classifier interface {
	Classify(categoryType string) CategoryClass
	LowerBoundDivisor(categoryType string) decimal.Decimal
}

// ClassConfig describes how category types map to classes.
// Type values are compared after core.NormalizeName.
type ClassConfig struct {
	// EssentialTypes are the types classified as ClassEssential.
	EssentialTypes []string
	// DiscretionaryTypes are the types classified as ClassDiscretionary even
	// when DefaultClass is ClassEssential.
	DiscretionaryTypes []string
	// DefaultClass applies to types listed nowhere.
	DefaultClass CategoryClass

	// Divisors holds per-type lower-bound divisors, keyed by normalized type.
	Divisors map[string]decimal.Decimal
	// DefaultDivisor applies to types without an entry in Divisors.
	DefaultDivisor decimal.Decimal
}

// DefaultClassConfig returns the built-in classification: grocery and
// personal-care types are essential, everything else is discretionary with a
// lower bound of a quarter of the price.
func DefaultClassConfig() ClassConfig {
	return ClassConfig{
		EssentialTypes: []string{"super marché", "produits beautés"},
		DefaultClass:   ClassDiscretionary,
		DefaultDivisor: decimal.NewFromInt(4),
	}
}
