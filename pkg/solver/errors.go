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

package solver

import "errors"

var (
	// ErrInvalidProblem is returned for malformed problems: NaN coefficients,
	// unbounded-below variables, crossed bounds or out-of-range terms.
	ErrInvalidProblem = errors.New("solver: invalid problem")

	// ErrInfeasible is returned when no assignment satisfies the constraints.
	ErrInfeasible = errors.New("solver: problem is infeasible")

	// ErrUnbounded is returned when the objective can improve without limit.
	ErrUnbounded = errors.New("solver: problem is unbounded")

	// ErrTimeLimit is returned when the time limit expired before any integer
	// solution was found.
	ErrTimeLimit = errors.New("solver: time limit reached without a feasible solution")

	// ErrNodeLimit is returned when the node limit was reached before any
	// integer solution was found.
	ErrNodeLimit = errors.New("solver: node limit reached without a feasible solution")

	// ErrRankDeficient is returned when the equality system left after
	// presolve is linearly dependent.
	ErrRankDeficient = errors.New("solver: constraint matrix is rank deficient")

	// ErrNumerical wraps simplex failures caused by ill-conditioning.
	ErrNumerical = errors.New("solver: numerical failure")
)
