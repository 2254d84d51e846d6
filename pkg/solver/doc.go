// Package solver implements the integer linear programming solver used by the
// budget allocator.
//
// A Problem is an explicit, request-scoped value: callers build one per
// allocation, hand it to Solve, and receive a Solution. There is no
// process-wide solver state, so independent problems may be solved from
// separate goroutines.
//
// Key Components:
//
//   - Problem: variables with bounds and integrality, linear constraints
//     (<=, >=, =), and a linear objective to minimize or maximize
//   - Solve: presolve followed by depth-first branch-and-bound; every node
//     relaxation is solved with the simplex method of gonum's lp package
//   - Options: time limit, node limit and numeric tolerances
//
// Solve Strategy:
//
//  1. Presolve turns single-variable constraints into variable bounds and
//     rounds the bounds of integer variables
//  2. Each node shifts variables to their lower bounds, adds slack columns,
//     and solves the standard-form relaxation with lp.Simplex
//  3. The most fractional integer variable is branched on; nodes whose
//     relaxation cannot beat the incumbent are pruned
//  4. When the time limit expires, the best integer solution found so far is
//     returned with StatusFeasible
//
// Example usage:
//
//	p := solver.NewProblem("budget", solver.Maximize)
//	x := p.AddVariable(solver.Variable{Name: "X1", Upper: 15, Integer: true})
//	y := p.AddVariable(solver.Variable{Name: "X2", Upper: 20, Integer: true})
//	p.SetObjectiveCoef(x, 1)
//	p.SetObjectiveCoef(y, 1)
//	if err := p.AddConstraint(solver.Constraint{
//	    Name:  "budget",
//	    Terms: solver.UnitTerms(x, y),
//	    Sense: solver.Equal,
//	    RHS:   30,
//	}); err != nil {
//	    return err
//	}
//	sol, err := solver.Solve(ctx, p, solver.DefaultOptions())
//
// The solver is designed to be:
//   - Deterministic: same problem, same solution (unless the time limit hits)
//   - Bounded: a wall-clock limit caps every call
//   - Small: it only targets the handful of variables of a budget split
package solver
