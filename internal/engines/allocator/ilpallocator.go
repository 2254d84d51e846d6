package allocator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/paliers/budget-allocator/internal/logging"
	"github.com/paliers/budget-allocator/internal/tracing"
	"github.com/paliers/budget-allocator/pkg/core"
	"github.com/paliers/budget-allocator/pkg/solver"
)

// ILPAllocator maximizes the amount given to the selected categories under
// their bounds, with the category amounts summing exactly to the budget.
// Each call builds and solves its own solver.Problem.
type ILPAllocator struct {
	config *AllocatorConfig
}

// NewILPAllocator creates a new ILPAllocator instance.
func NewILPAllocator(config *AllocatorConfig) (*ILPAllocator, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.TimeLimit == 0 {
		config.TimeLimit = solver.DefaultTimeLimit
	}
	return &ILPAllocator{
		config: config,
	}, nil
}

// Allocate solves the allocation problem of set for budget.
func (a *ILPAllocator) Allocate(
	ctx context.Context,
	set *core.ConstraintSet,
	vars core.VariableMap,
	budget int64,
) (*core.Allocation, error) {
	logger := logging.FromContext(ctx)

	if budget <= 0 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidBudget, budget)
	}
	if len(vars) == 0 {
		logger.V(logging.DEBUG).Info("No category selected, assigning the whole budget to Other",
			"budget", budget)
		return &core.Allocation{
			Budget:  budget,
			Amounts: map[string]int64{core.OtherCategory: budget},
			Status:  core.StatusOptimal,
		}, nil
	}

	bounds, err := boundsFor(set, vars)
	if err != nil {
		return nil, err
	}
	if reason := checkBudgetReach(bounds, budget); reason != "" {
		logger.V(logging.DEBUG).Info("Allocation rejected before solving",
			"budget", budget,
			"reason", reason)
		return nil, &core.InfeasibleAllocationError{Budget: budget, Reason: reason}
	}

	problem, err := buildProblem(bounds, budget)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.Tracer().Start(ctx, "allocator.Solve")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("budget", budget),
		attribute.Int("categories", len(bounds)),
		attribute.Int("constraints", problem.NumConstraints()),
	)

	solution, err := solver.Solve(ctx, problem, solver.Options{
		TimeLimit: a.config.TimeLimit,
		MaxNodes:  a.config.MaxNodes,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, solver.ErrInfeasible) ||
			errors.Is(err, solver.ErrTimeLimit) ||
			errors.Is(err, solver.ErrNodeLimit) {
			return nil, &core.InfeasibleAllocationError{Budget: budget, Err: err}
		}
		return nil, fmt.Errorf("solving allocation: %w", err)
	}
	span.SetAttributes(
		attribute.String("status", string(solution.Status)),
		attribute.Int("nodes", solution.Nodes),
	)

	amounts, err := roundAmounts(bounds, solution.Values, budget)
	if err != nil {
		return nil, err
	}

	status := core.StatusOptimal
	if solution.Status == solver.StatusFeasible {
		status = core.StatusFeasible
	}
	logger.V(logging.DEBUG).Info("Allocation solved",
		"budget", budget,
		"status", status,
		"other", amounts[core.OtherCategory],
		"nodes", solution.Nodes,
		"elapsed", solution.Elapsed)

	return &core.Allocation{
		Budget:  budget,
		Amounts: amounts,
		Status:  status,
	}, nil
}

// buildProblem creates one non-negative integer variable per bound, the
// global equality row and one or two rows per bound.
func buildProblem(bounds []core.Bound, budget int64) (*solver.Problem, error) {
	problem := solver.NewProblem("budget-allocation", solver.Maximize)

	indices := make([]int, len(bounds))
	for i, b := range bounds {
		indices[i] = problem.AddVariable(solver.Variable{
			Name:    b.Variable,
			Lower:   0,
			Upper:   math.Inf(1),
			Integer: true,
		})
		problem.SetObjectiveCoef(indices[i], 1)
	}

	rows := []solver.Constraint{{
		Name:  "budget",
		Terms: solver.UnitTerms(indices...),
		Sense: solver.Equal,
		RHS:   float64(budget),
	}}
	for i, b := range bounds {
		terms := solver.UnitTerms(indices[i])
		if b.Kind == core.ConstraintEquality {
			rows = append(rows, solver.Constraint{
				Name: b.Variable + "_eq", Terms: terms, Sense: solver.Equal, RHS: b.Price.InexactFloat64(),
			})
			continue
		}
		rows = append(rows,
			solver.Constraint{Name: b.Variable + "_lo", Terms: terms, Sense: solver.GreaterEqual, RHS: b.Lower.InexactFloat64()},
			solver.Constraint{Name: b.Variable + "_up", Terms: terms, Sense: solver.LessEqual, RHS: b.Upper.InexactFloat64()},
		)
	}
	for _, row := range rows {
		if err := problem.AddConstraint(row); err != nil {
			return nil, err
		}
	}
	return problem, nil
}
