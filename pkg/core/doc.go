// Package core provides the data model shared by the budget allocation engines.
//
// This package contains the request-scoped structures that flow through an
// allocation:
//
//   - PriceTable: categories ("postes") with one price per tier ("palier"),
//     plus the row of tier thresholds
//   - TierLabel: the price column selected for a request
//   - VariableMap: synthetic decision variable ids ("X1", "X2", ...) mapped to
//     selected category names
//   - ConstraintSet: equality and inequality bounds per selected category
//   - Allocation: the integer budget split, including the "Other" remainder
//
// It also defines the error taxonomy reported by the engines (DataFormatError,
// InfeasibleAllocationError, RoundingInconsistencyError) and the name
// normalization used to match free-text category names.
//
// Example usage:
//
//	table := &core.PriceTable{
//	    Tiers:      []string{"p1", "p2"},
//	    Thresholds: []string{"10", "20"},
//	    Categories: []core.CategoryRow{
//	        {Type: "super marché", Name: "riz", Prices: []string{"10", "20"}},
//	        {Type: "déco", Name: "fleurs", Prices: []string{"5", "15"}},
//	    },
//	}
//	row, ok := table.Category("  RIZ ")
//
// None of these types hold package-level state; every allocation request
// builds its own values and discards them once the result is returned.
package core
