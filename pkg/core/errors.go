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
	"fmt"
)

// ErrInvalidBudget is returned when the budget to split is not strictly positive.
var ErrInvalidBudget = errors.New("budget must be greater than zero")

// DataFormatError reports a required numeric field (tier threshold or category
// price) that is missing or not a number, or a reference to a tier the table
// does not have.
type DataFormatError struct {
	// Field names what was being read ("threshold", "price", "tier").
	Field string
	// Location identifies the cell, e.g. the tier label or category name.
	Location string
	// Value is the offending raw cell.
	Value string
	// Err is the underlying parse error, if any.
	Err error
}

func (e *DataFormatError) Error() string {
	msg := fmt.Sprintf("invalid %s at %s: %q", e.Field, e.Location, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// InfeasibleAllocationError reports a constraint set that admits no integer
// assignment summing to the budget.
type InfeasibleAllocationError struct {
	Budget int64
	// Reason is a human readable diagnosis, when one is known.
	Reason string
	Err    error
}

func (e *InfeasibleAllocationError) Error() string {
	msg := fmt.Sprintf("no feasible allocation of budget %d", e.Budget)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InfeasibleAllocationError) Unwrap() error {
	return e.Err
}

// RoundingInconsistencyError reports rounded category amounts exceeding the
// budget, which would leave a negative Other remainder.
type RoundingInconsistencyError struct {
	Budget    int64
	Allocated int64
}

func (e *RoundingInconsistencyError) Error() string {
	return fmt.Sprintf("rounded allocation %d exceeds budget %d (Other would be %d)",
		e.Allocated, e.Budget, e.Budget-e.Allocated)
}

// IsDataFormatError reports whether err wraps a DataFormatError.
func IsDataFormatError(err error) bool {
	var target *DataFormatError
	return errors.As(err, &target)
}

// IsInfeasible reports whether err wraps an InfeasibleAllocationError.
func IsInfeasible(err error) bool {
	var target *InfeasibleAllocationError
	return errors.As(err, &target)
}

// IsRoundingInconsistency reports whether err wraps a RoundingInconsistencyError.
func IsRoundingInconsistency(err error) bool {
	var target *RoundingInconsistencyError
	return errors.As(err, &target)
}
