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
)

// ObjectiveSense selects whether the objective is minimized or maximized.
type ObjectiveSense int

const (
	Minimize ObjectiveSense = iota
	Maximize
)

func (s ObjectiveSense) String() string {
	if s == Maximize {
		return "maximize"
	}
	return "minimize"
}

// ConstraintSense is the relation between a constraint's terms and its RHS.
type ConstraintSense int

const (
	LessEqual ConstraintSense = iota
	GreaterEqual
	Equal
)

func (s ConstraintSense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	default:
		return fmt.Sprintf("ConstraintSense(%d)", int(s))
	}
}

// Variable is a decision variable. Lower must be finite; Upper may be +Inf.
type Variable struct {
	Name    string
	Lower   float64
	Upper   float64
	Integer bool
}

// Term is one coefficient of a linear expression.
type Term struct {
	// Index is the variable index returned by Problem.AddVariable.
	Index int
	Coef  float64
}

// UnitTerms returns terms with coefficient 1 for each index.
func UnitTerms(indices ...int) []Term {
	terms := make([]Term, len(indices))
	for i, idx := range indices {
		terms[i] = Term{Index: idx, Coef: 1}
	}
	return terms
}

// Constraint is a linear constraint: sum(Terms) Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense ConstraintSense
	RHS   float64
}

// Problem is a linear program with optional integrality requirements.
// A Problem is not safe for concurrent mutation; Solve only reads it.
type Problem struct {
	Name  string
	Sense ObjectiveSense

	variables   []Variable
	objective   []float64
	constraints []Constraint
}

// NewProblem returns an empty problem.
func NewProblem(name string, sense ObjectiveSense) *Problem {
	return &Problem{
		Name:  name,
		Sense: sense,
	}
}

// AddVariable appends v and returns its index. Use math.Inf(1) as Upper for
// a variable without upper bound.
func (p *Problem) AddVariable(v Variable) int {
	p.variables = append(p.variables, v)
	p.objective = append(p.objective, 0)
	return len(p.variables) - 1
}

// SetObjectiveCoef sets the objective coefficient of variable idx.
func (p *Problem) SetObjectiveCoef(idx int, coef float64) {
	if idx < 0 || idx >= len(p.objective) {
		return
	}
	p.objective[idx] = coef
}

// AddConstraint appends c after checking its terms refer to known variables.
func (p *Problem) AddConstraint(c Constraint) error {
	for _, t := range c.Terms {
		if t.Index < 0 || t.Index >= len(p.variables) {
			return fmt.Errorf("%w: constraint %q references variable %d of %d",
				ErrInvalidProblem, c.Name, t.Index, len(p.variables))
		}
	}
	p.constraints = append(p.constraints, c)
	return nil
}

// NumConstraints returns the number of constraints.
func (p *Problem) NumConstraints() int {
	return len(p.constraints)
}

// Validate checks the problem can be handed to Solve.
func (p *Problem) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil problem", ErrInvalidProblem)
	}
	for i, v := range p.variables {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) {
			return fmt.Errorf("%w: variable %q has a NaN bound", ErrInvalidProblem, v.Name)
		}
		if math.IsInf(v.Lower, 0) {
			return fmt.Errorf("%w: variable %q needs a finite lower bound", ErrInvalidProblem, v.Name)
		}
		if v.Upper < v.Lower {
			return fmt.Errorf("%w: variable %q has upper bound %g below lower bound %g",
				ErrInvalidProblem, v.Name, v.Upper, v.Lower)
		}
		if c := p.objective[i]; math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: variable %q has a non-finite objective coefficient", ErrInvalidProblem, v.Name)
		}
	}
	for _, c := range p.constraints {
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("%w: constraint %q has a non-finite right-hand side", ErrInvalidProblem, c.Name)
		}
		if c.Sense != LessEqual && c.Sense != GreaterEqual && c.Sense != Equal {
			return fmt.Errorf("%w: constraint %q has sense %v", ErrInvalidProblem, c.Name, c.Sense)
		}
		for _, t := range c.Terms {
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("%w: constraint %q has a non-finite coefficient", ErrInvalidProblem, c.Name)
			}
		}
	}
	return nil
}
