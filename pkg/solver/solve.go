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

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/paliers/budget-allocator/internal/logging"
)

const (
	// DefaultTimeLimit bounds the wall-clock time of a single Solve call.
	DefaultTimeLimit = 20 * time.Second

	defaultTolerance            = 1e-10
	defaultFeasibilityTolerance = 1e-7
	defaultIntegralityTolerance = 1e-6
)

// Options tunes a Solve call. Zero values select the defaults.
type Options struct {
	// TimeLimit caps the branch-and-bound search. Negative disables the limit.
	TimeLimit time.Duration

	// MaxNodes caps the number of relaxations solved. Zero means no cap.
	MaxNodes int

	// Tolerance is passed to the simplex as its optimality tolerance.
	Tolerance float64

	// FeasibilityTolerance is the slack allowed on bounds and constraints.
	FeasibilityTolerance float64

	// IntegralityTolerance is how far from an integer a value may be and
	// still count as integral.
	IntegralityTolerance float64
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		TimeLimit:            DefaultTimeLimit,
		Tolerance:            defaultTolerance,
		FeasibilityTolerance: defaultFeasibilityTolerance,
		IntegralityTolerance: defaultIntegralityTolerance,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TimeLimit == 0 {
		o.TimeLimit = d.TimeLimit
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.FeasibilityTolerance <= 0 {
		o.FeasibilityTolerance = d.FeasibilityTolerance
	}
	if o.IntegralityTolerance <= 0 {
		o.IntegralityTolerance = d.IntegralityTolerance
	}
	return o
}

// Status describes the quality of a Solution.
type Status string

const (
	// StatusOptimal means the search completed and the solution is optimal.
	StatusOptimal Status = "Optimal"
	// StatusFeasible means a limit stopped the search; the solution is the
	// best integer solution found before it did.
	StatusFeasible Status = "Feasible"
)

// Solution is the result of Solve.
type Solution struct {
	Status    Status
	Objective float64
	// Values holds one value per variable, indexed like Problem.AddVariable.
	Values  []float64
	Nodes   int
	Elapsed time.Duration
}

// Value returns the value of variable idx.
func (s *Solution) Value(idx int) float64 {
	return s.Values[idx]
}

type node struct {
	lo, hi []float64
}

func (n node) branch(j int, lo, hi float64) node {
	child := node{
		lo: append([]float64(nil), n.lo...),
		hi: append([]float64(nil), n.hi...),
	}
	child.lo[j] = lo
	child.hi[j] = hi
	return child
}

// Solve solves p. It never mutates p, so the same Problem yields the same
// Solution on every call as long as no limit interrupts the search.
func Solve(ctx context.Context, p *Problem, opts Options) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	logger := logging.FromContext(ctx).WithValues("problem", p.Name)
	start := time.Now()

	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	m, err := presolve(p, opts)
	if err != nil {
		return nil, err
	}
	logger.V(logging.TRACE).Info("Presolved problem",
		"variables", len(m.objective),
		"rows", len(m.rows),
		"sense", p.Sense.String())

	var (
		best     []float64
		nodes    int
		limitErr error
	)
	bestZ := math.Inf(1)
	stack := []node{{lo: m.lo, hi: m.hi}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				limitErr = ErrTimeLimit
			} else {
				limitErr = fmt.Errorf("solver: %w", err)
			}
			break
		}
		if opts.MaxNodes > 0 && nodes >= opts.MaxNodes {
			limitErr = ErrNodeLimit
			break
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		x, err := m.relax(nd.lo, nd.hi, opts)
		if errors.Is(err, ErrInfeasible) {
			continue
		}
		if err != nil {
			return nil, err
		}

		z := m.value(x)
		if best != nil && z >= bestZ-opts.FeasibilityTolerance {
			continue
		}

		j := m.mostFractional(x, opts.IntegralityTolerance)
		if j < 0 {
			best = m.snap(x, opts.IntegralityTolerance)
			bestZ = m.value(best)
			logger.V(logging.TRACE).Info("New incumbent", "objective", m.sign*bestZ, "node", nodes)
			continue
		}

		floor, ceil := math.Floor(x[j]), math.Ceil(x[j])
		down := nd.branch(j, nd.lo[j], floor)
		up := nd.branch(j, ceil, nd.hi[j])
		// The side nearer to the relaxed value is explored first.
		if x[j]-floor < 0.5 {
			stack = append(stack, up, down)
		} else {
			stack = append(stack, down, up)
		}
	}

	elapsed := time.Since(start)
	if best == nil {
		if limitErr != nil {
			return nil, limitErr
		}
		return nil, ErrInfeasible
	}

	status := StatusOptimal
	if limitErr != nil {
		status = StatusFeasible
		logger.Info("Search interrupted, keeping best solution found",
			"reason", limitErr.Error(),
			"nodes", nodes,
			"elapsed", elapsed)
	}
	logger.V(logging.DEBUG).Info("Solved problem",
		"status", status,
		"objective", m.sign*bestZ,
		"nodes", nodes,
		"elapsed", elapsed)

	return &Solution{
		Status:    status,
		Objective: m.sign * bestZ,
		Values:    best,
		Nodes:     nodes,
		Elapsed:   elapsed,
	}, nil
}

// mostFractional returns the integer variable farthest from an integer value,
// or -1 when every integer variable is integral.
func (m *model) mostFractional(x []float64, tol float64) int {
	idx, worst := -1, tol
	for j, isInt := range m.integer {
		if !isInt {
			continue
		}
		frac := math.Abs(x[j] - math.Round(x[j]))
		if frac > worst {
			idx, worst = j, frac
		}
	}
	return idx
}

// snap rounds integer variables, removing simplex noise.
func (m *model) snap(x []float64, tol float64) []float64 {
	out := append([]float64(nil), x...)
	for j, isInt := range m.integer {
		if isInt && math.Abs(out[j]-math.Round(out[j])) <= tol {
			out[j] = math.Round(out[j])
		}
	}
	return out
}
