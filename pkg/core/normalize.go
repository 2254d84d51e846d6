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
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

var (
	errEmptyCell       = errors.New("empty cell")
	errAmbiguousAmount = errors.New("ambiguous amount: a comma followed by exactly three digits reads as a thousands separator")
)

// NormalizeName folds case and trims whitespace so that free-text category
// names and types can be matched against the table. Runs of inner whitespace
// collapse to a single space.
func NormalizeName(s string) string {
	// A Caser is stateful, so one is created per call.
	folded := cases.Fold().String(s)
	return strings.Join(strings.Fields(folded), " ")
}

// ParseAmount parses a price or threshold cell.
//
// A dot is the decimal separator. A single comma is accepted in its place
// when the cell has no dot, as spreadsheets exported with a French locale
// write "12,5". Thousands separators are not supported: a comma followed by
// exactly three digits ("1,000") is rejected rather than guessed, and so is a
// cell mixing commas and dots.
func ParseAmount(cell string) (decimal.Decimal, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Zero, errEmptyCell
	}
	if i := strings.IndexByte(s, ','); i >= 0 && !strings.Contains(s, ".") {
		frac := s[i+1:]
		if len(frac) == 3 && strings.Trim(frac, "0123456789") == "" {
			return decimal.Zero, errAmbiguousAmount
		}
		s = s[:i] + "." + frac
	}
	return decimal.NewFromString(s)
}
