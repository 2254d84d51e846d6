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
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// stdRow is one row of the standard-form relaxation before it is written to
// the dense matrix. coefs is indexed by free variable position.
type stdRow struct {
	coefs []float64
	slack float64
	rhs   float64
}

// relax solves the LP relaxation of m restricted to [lo, hi]. Variables are
// shifted to their lower bounds (x = lo + y, y >= 0); fixed variables are
// substituted out; inequality rows and finite upper bounds get slack columns.
func (m *model) relax(lo, hi []float64, opts Options) ([]float64, error) {
	n := len(m.objective)
	x := make([]float64, n)
	col := make([]int, n)
	var free []int
	for j := 0; j < n; j++ {
		if hi[j] < lo[j]-opts.FeasibilityTolerance {
			return nil, ErrInfeasible
		}
		x[j] = lo[j]
		if hi[j]-lo[j] <= opts.FeasibilityTolerance {
			col[j] = -1
			continue
		}
		col[j] = len(free)
		free = append(free, j)
	}

	var rows []stdRow
	for _, c := range m.rows {
		coefs := make([]float64, len(free))
		rhs := c.RHS
		nonzero := false
		for _, t := range c.Terms {
			rhs -= t.Coef * lo[t.Index]
			if k := col[t.Index]; k >= 0 {
				coefs[k] += t.Coef
				nonzero = true
			}
		}
		if !nonzero {
			if !senseHolds(0, c.Sense, rhs, opts.FeasibilityTolerance) {
				return nil, ErrInfeasible
			}
			continue
		}
		var slack float64
		switch c.Sense {
		case LessEqual:
			slack = 1
		case GreaterEqual:
			slack = -1
		}
		rows = append(rows, stdRow{coefs: coefs, slack: slack, rhs: rhs})
	}
	for k, j := range free {
		if math.IsInf(hi[j], 1) {
			continue
		}
		coefs := make([]float64, len(free))
		coefs[k] = 1
		rows = append(rows, stdRow{coefs: coefs, slack: 1, rhs: hi[j] - lo[j]})
	}

	// Free variables absent from every row would be zero columns for the
	// simplex: they sit at their lower bound unless they improve the
	// objective, in which case nothing stops them.
	used := make([]bool, len(free))
	for _, r := range rows {
		for k, v := range r.coefs {
			if v != 0 {
				used[k] = true
			}
		}
	}
	var active []int
	for k, j := range free {
		if used[k] {
			active = append(active, k)
			continue
		}
		if m.sign*m.objective[j] < 0 {
			return nil, ErrUnbounded
		}
	}
	if len(rows) == 0 {
		return x, nil
	}

	nSlack := 0
	for _, r := range rows {
		if r.slack != 0 {
			nSlack++
		}
	}
	rowsN, colsN := len(rows), len(active)+nSlack
	if rowsN > colsN {
		return nil, fmt.Errorf("%w: %d rows for %d columns", ErrRankDeficient, rowsN, colsN)
	}

	A := mat.NewDense(rowsN, colsN, nil)
	b := make([]float64, rowsN)
	c := make([]float64, colsN)
	slackCol := len(active)
	for i, r := range rows {
		flip := 1.0
		if r.rhs < 0 {
			flip = -1
		}
		for ci, k := range active {
			if v := r.coefs[k]; v != 0 {
				A.Set(i, ci, flip*v)
			}
		}
		if r.slack != 0 {
			A.Set(i, slackCol, flip*r.slack)
			slackCol++
		}
		b[i] = flip * r.rhs
	}
	for ci, k := range active {
		c[ci] = m.sign * m.objective[free[k]]
	}

	_, y, err := lp.Simplex(c, A, b, opts.Tolerance, nil)
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return nil, ErrInfeasible
		case errors.Is(err, lp.ErrUnbounded):
			return nil, ErrUnbounded
		case errors.Is(err, lp.ErrSingular):
			return nil, fmt.Errorf("%w: %v", ErrRankDeficient, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrNumerical, err)
		}
	}
	for ci, k := range active {
		x[free[k]] = lo[free[k]] + y[ci]
	}
	return x, nil
}
