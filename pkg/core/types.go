/*
Copyright 2026 The budget-allocator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package core

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// OtherCategory is the synthetic category absorbing the budget that is not
// assigned to any selected category.
const OtherCategory = "Other"

// TierLabel identifies a price column (palier) of a PriceTable.
type TierLabel string

// CategoryRow is one spending category of the price table.
type CategoryRow struct {
	// Type is the declared category type (e.g. "super marché", "déco").
	Type string `json:"type" yaml:"type"`

	// Name is the category name, unique within a table after normalization.
	Name string `json:"name" yaml:"name"`

	// Prices holds one raw price cell per tier, aligned to PriceTable.Tiers.
	Prices []string `json:"prices" yaml:"prices"`
}

// PriceTable is the cleaned reference table handed to the engines.
// Cells are kept as strings; engines parse the ones they need and report
// malformed values as DataFormatError.
type PriceTable struct {
	// Tiers are the price column headers, left to right.
	Tiers []string `json:"tiers" yaml:"tiers"`

	// Categories are the table rows, in source order.
	Categories []CategoryRow `json:"categories" yaml:"categories"`

	// Thresholds is the last row of the source table: the guest-count or
	// budget breakpoint of each tier, aligned to Tiers.
	Thresholds []string `json:"thresholds" yaml:"thresholds"`
}

// Category returns the row whose normalized name matches name.
func (t *PriceTable) Category(name string) (CategoryRow, bool) {
	if t == nil {
		return CategoryRow{}, false
	}
	key := NormalizeName(name)
	for _, row := range t.Categories {
		if NormalizeName(row.Name) == key {
			return row, true
		}
	}
	return CategoryRow{}, false
}

// TierIndex returns the column index of label, or -1 if the table has no such tier.
func (t *PriceTable) TierIndex(label TierLabel) int {
	if t == nil {
		return -1
	}
	for i, tier := range t.Tiers {
		if tier == string(label) {
			return i
		}
	}
	return -1
}

// VariableMap maps a synthetic decision variable id ("X1", "X2", ...) to the
// normalized name of a selected category.
type VariableMap map[string]string

// VariableID returns the synthetic id for the 1-based index i.
func VariableID(i int) string {
	return "X" + strconv.Itoa(i)
}

// IDs returns the variable ids in numeric order (X1, X2, ..., X10).
func (m VariableMap) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, ei := strconv.Atoi(strings.TrimPrefix(ids[i], "X"))
		nj, ej := strconv.Atoi(strings.TrimPrefix(ids[j], "X"))
		if ei != nil || ej != nil {
			return ids[i] < ids[j]
		}
		return ni < nj
	})
	return ids
}

// ConstraintKind tells whether a category is funded at exactly its tier price
// or anywhere within a band below it.
type ConstraintKind string

const (
	// ConstraintEquality funds a category at exactly its tier price.
	ConstraintEquality ConstraintKind = "equality"
	// ConstraintInequality funds a category within [Lower, Upper].
	ConstraintInequality ConstraintKind = "inequality"
)

// Bound is the constraint attached to one selected category.
type Bound struct {
	// Variable is the synthetic variable id of the category.
	Variable string

	// Category is the normalized category name.
	Category string

	// Type is the declared category type.
	Type string

	// Kind is the constraint class the category was assigned to.
	Kind ConstraintKind

	// Price is the category price at the resolved tier.
	Price decimal.Decimal

	// Lower and Upper delimit the amount the category may receive.
	// For equality bounds both equal Price.
	Lower decimal.Decimal
	Upper decimal.Decimal
}

// ConstraintSet holds the per-category bounds of one allocation request.
// A category appears in exactly one of the two collections.
type ConstraintSet struct {
	Equalities   []Bound
	Inequalities []Bound
}

// Len returns the number of constrained categories.
func (s *ConstraintSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Equalities) + len(s.Inequalities)
}

// ByVariable indexes every bound by its variable id.
func (s *ConstraintSet) ByVariable() map[string]Bound {
	out := make(map[string]Bound, s.Len())
	if s == nil {
		return out
	}
	for _, b := range s.Equalities {
		out[b.Variable] = b
	}
	for _, b := range s.Inequalities {
		out[b.Variable] = b
	}
	return out
}

// MandatoryTotal is the sum of the equality bounds.
func (s *ConstraintSet) MandatoryTotal() decimal.Decimal {
	total := decimal.Zero
	if s == nil {
		return total
	}
	for _, b := range s.Equalities {
		total = total.Add(b.Price)
	}
	return total
}

// SolveStatus reports how good an allocation is.
type SolveStatus string

const (
	// StatusOptimal means the solver proved optimality.
	StatusOptimal SolveStatus = "Optimal"
	// StatusFeasible means the time limit was reached and the best
	// feasible solution found so far was kept.
	StatusFeasible SolveStatus = "Feasible"
)

// Allocation is the integer budget split of one request.
type Allocation struct {
	// RequestID correlates the allocation with its log lines and trace.
	RequestID string `json:"requestID,omitempty"`

	// Budget is the amount that was split.
	Budget int64 `json:"budget"`

	// Tier is the price column used for the bounds.
	Tier TierLabel `json:"tier,omitempty"`

	// Amounts maps each selected category, plus OtherCategory, to its amount.
	// The values sum exactly to Budget.
	Amounts map[string]int64 `json:"amounts"`

	// Status is the solver outcome the amounts come from.
	Status SolveStatus `json:"status,omitempty"`
}

// Other returns the remainder assigned to OtherCategory.
func (a *Allocation) Other() int64 {
	if a == nil {
		return 0
	}
	return a.Amounts[OtherCategory]
}

// Total returns the sum of all amounts, Other included.
func (a *Allocation) Total() int64 {
	if a == nil {
		return 0
	}
	var total int64
	for _, v := range a.Amounts {
		total += v
	}
	return total
}

// Categories returns the allocated category names, Other excluded, sorted.
func (a *Allocation) Categories() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.Amounts))
	for name := range a.Amounts {
		if name == OtherCategory {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
