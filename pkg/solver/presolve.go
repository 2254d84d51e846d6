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
	"fmt"
	"math"
	"sort"
)

// model is the presolved form of a Problem: single-variable constraints are
// folded into bounds and the objective is always minimized.
type model struct {
	names     []string
	sign      float64
	objective []float64
	integer   []bool
	lo, hi    []float64
	rows      []Constraint
}

func presolve(p *Problem, opts Options) (*model, error) {
	n := len(p.variables)
	m := &model{
		names:     make([]string, n),
		sign:      1,
		objective: append([]float64(nil), p.objective...),
		integer:   make([]bool, n),
		lo:        make([]float64, n),
		hi:        make([]float64, n),
	}
	if p.Sense == Maximize {
		m.sign = -1
	}
	for j, v := range p.variables {
		m.names[j] = v.Name
		m.integer[j] = v.Integer
		m.lo[j] = v.Lower
		m.hi[j] = v.Upper
	}

	for _, c := range p.constraints {
		terms := mergeTerms(c.Terms)
		switch len(terms) {
		case 0:
			if !senseHolds(0, c.Sense, c.RHS, opts.FeasibilityTolerance) {
				return nil, fmt.Errorf("%w: constraint %q reduces to 0 %v %g",
					ErrInfeasible, c.Name, c.Sense, c.RHS)
			}
		case 1:
			m.tighten(terms[0], c.Sense, c.RHS)
		default:
			m.rows = append(m.rows, Constraint{Name: c.Name, Terms: terms, Sense: c.Sense, RHS: c.RHS})
		}
	}

	for j := range m.lo {
		if m.integer[j] {
			m.lo[j] = math.Ceil(m.lo[j] - opts.IntegralityTolerance)
			if !math.IsInf(m.hi[j], 1) {
				m.hi[j] = math.Floor(m.hi[j] + opts.IntegralityTolerance)
			}
		}
		if m.hi[j] < m.lo[j]-opts.FeasibilityTolerance {
			return nil, fmt.Errorf("%w: variable %q has empty range [%g, %g]",
				ErrInfeasible, m.names[j], m.lo[j], m.hi[j])
		}
	}
	return m, nil
}

// tighten folds the single-variable constraint coef*x sense rhs into x's bounds.
func (m *model) tighten(t Term, sense ConstraintSense, rhs float64) {
	j := t.Index
	val := rhs / t.Coef
	if t.Coef < 0 {
		switch sense {
		case LessEqual:
			sense = GreaterEqual
		case GreaterEqual:
			sense = LessEqual
		}
	}
	switch sense {
	case Equal:
		m.lo[j] = math.Max(m.lo[j], val)
		m.hi[j] = math.Min(m.hi[j], val)
	case LessEqual:
		m.hi[j] = math.Min(m.hi[j], val)
	case GreaterEqual:
		m.lo[j] = math.Max(m.lo[j], val)
	}
}

// mergeTerms sums duplicate indices, drops zero coefficients and orders the
// result by variable index.
func mergeTerms(terms []Term) []Term {
	byIndex := make(map[int]float64, len(terms))
	for _, t := range terms {
		byIndex[t.Index] += t.Coef
	}
	out := make([]Term, 0, len(byIndex))
	for idx, coef := range byIndex {
		if coef != 0 {
			out = append(out, Term{Index: idx, Coef: coef})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out
}

func senseHolds(lhs float64, sense ConstraintSense, rhs, tol float64) bool {
	switch sense {
	case LessEqual:
		return lhs <= rhs+tol
	case GreaterEqual:
		return lhs >= rhs-tol
	default:
		return math.Abs(lhs-rhs) <= tol
	}
}

// value returns the objective of x in minimization form.
func (m *model) value(x []float64) float64 {
	var z float64
	for j, c := range m.objective {
		z += m.sign * c * x[j]
	}
	return z
}
