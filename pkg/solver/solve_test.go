package solver_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/paliers/budget-allocator/pkg/solver"
)

var inf = math.Inf(1)

func intVar(name string, lo, hi float64) solver.Variable {
	return solver.Variable{Name: name, Lower: lo, Upper: hi, Integer: true}
}

// budgetProblem builds maximize sum(x) s.t. sum(x) = budget with the given
// per-variable constraints, the shape used by the allocator.
func budgetProblem(budget float64, eq map[int]float64, band map[int][2]float64, n int) *solver.Problem {
	p := solver.NewProblem("budget", solver.Maximize)
	idx := make([]int, n)
	for i := 0; i < n; i++ {
		idx[i] = p.AddVariable(intVar("X", 0, inf))
		p.SetObjectiveCoef(idx[i], 1)
	}
	Expect(p.AddConstraint(solver.Constraint{Name: "total", Terms: solver.UnitTerms(idx...), Sense: solver.Equal, RHS: budget})).To(Succeed())
	for i, v := range eq {
		Expect(p.AddConstraint(solver.Constraint{Terms: solver.UnitTerms(idx[i]), Sense: solver.Equal, RHS: v})).To(Succeed())
	}
	for i, b := range band {
		Expect(p.AddConstraint(solver.Constraint{Terms: solver.UnitTerms(idx[i]), Sense: solver.GreaterEqual, RHS: b[0]})).To(Succeed())
		Expect(p.AddConstraint(solver.Constraint{Terms: solver.UnitTerms(idx[i]), Sense: solver.LessEqual, RHS: b[1]})).To(Succeed())
	}
	return p
}

var _ = Describe("Solve", func() {
	Context("with the budget split shape", func() {
		It("should fund the equality variable exactly and fill the band with the rest", func() {
			p := budgetProblem(30, map[int]float64{0: 20}, map[int][2]float64{1: {3, 15}}, 2)

			sol, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Status).To(Equal(solver.StatusOptimal))
			Expect(sol.Value(0)).To(Equal(20.0))
			Expect(sol.Value(1)).To(Equal(10.0))
			Expect(sol.Objective).To(BeNumerically("~", 30, 1e-9))
		})

		It("should solve when every variable is fixed", func() {
			p := budgetProblem(35, map[int]float64{0: 20, 1: 15}, nil, 2)

			sol, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Values).To(Equal([]float64{20, 15}))
		})

		It("should keep every band variable within its bounds", func() {
			p := budgetProblem(40, nil, map[int][2]float64{0: {2, 10}, 1: {5, 20}, 2: {1, 30}}, 3)

			sol, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Value(0)).To(BeNumerically(">=", 2))
			Expect(sol.Value(0)).To(BeNumerically("<=", 10))
			Expect(sol.Value(1)).To(BeNumerically(">=", 5))
			Expect(sol.Value(1)).To(BeNumerically("<=", 20))
			Expect(sol.Value(2)).To(BeNumerically(">=", 1))
			Expect(sol.Value(2)).To(BeNumerically("<=", 30))
			Expect(sol.Value(0) + sol.Value(1) + sol.Value(2)).To(BeNumerically("~", 40, 1e-9))
			for _, v := range sol.Values {
				Expect(v).To(Equal(math.Round(v)))
			}
		})

		It("should report mandatory amounts above the budget as infeasible", func() {
			p := budgetProblem(20, map[int]float64{0: 20}, map[int][2]float64{1: {3, 15}}, 2)

			_, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).To(MatchError(solver.ErrInfeasible))
		})

		It("should report upper bounds that cannot reach the budget as infeasible", func() {
			p := budgetProblem(100, nil, map[int][2]float64{0: {1, 10}, 1: {1, 10}}, 2)

			_, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).To(MatchError(solver.ErrInfeasible))
		})

		It("should reject a fractional equality on an integer variable", func() {
			p := budgetProblem(30, map[int]float64{0: 12.5}, map[int][2]float64{1: {3, 20}}, 2)

			_, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).To(MatchError(solver.ErrInfeasible))
		})

		It("should return the same solution on repeated calls", func() {
			p := budgetProblem(40, map[int]float64{0: 12}, map[int][2]float64{1: {2, 10}, 2: {5, 25}}, 3)

			first, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			second, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Values).To(Equal(first.Values))
		})
	})

	Context("with a general integer program", func() {
		It("should branch to the integer optimum", func() {
			// max 5x + 4y s.t. 6x + 4y <= 24, x + 2y <= 6; the relaxation
			// peaks at (3, 1.5) and the integer optimum is (4, 0).
			p := solver.NewProblem("textbook", solver.Maximize)
			x := p.AddVariable(intVar("x", 0, inf))
			y := p.AddVariable(intVar("y", 0, inf))
			p.SetObjectiveCoef(x, 5)
			p.SetObjectiveCoef(y, 4)
			Expect(p.AddConstraint(solver.Constraint{Terms: []solver.Term{{Index: x, Coef: 6}, {Index: y, Coef: 4}}, Sense: solver.LessEqual, RHS: 24})).To(Succeed())
			Expect(p.AddConstraint(solver.Constraint{Terms: []solver.Term{{Index: x, Coef: 1}, {Index: y, Coef: 2}}, Sense: solver.LessEqual, RHS: 6})).To(Succeed())

			sol, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Status).To(Equal(solver.StatusOptimal))
			Expect(sol.Values).To(Equal([]float64{4, 0}))
			Expect(sol.Objective).To(BeNumerically("~", 20, 1e-9))
			Expect(sol.Nodes).To(BeNumerically(">", 1))
		})

		It("should minimize", func() {
			p := solver.NewProblem("min", solver.Minimize)
			x := p.AddVariable(intVar("x", 0, inf))
			y := p.AddVariable(solver.Variable{Name: "y", Lower: 0, Upper: inf})
			p.SetObjectiveCoef(x, 3)
			p.SetObjectiveCoef(y, 2)
			Expect(p.AddConstraint(solver.Constraint{Terms: solver.UnitTerms(x, y), Sense: solver.GreaterEqual, RHS: 4})).To(Succeed())
			Expect(p.AddConstraint(solver.Constraint{Terms: solver.UnitTerms(x), Sense: solver.GreaterEqual, RHS: 1})).To(Succeed())

			sol, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Value(x)).To(Equal(1.0))
			Expect(sol.Value(y)).To(BeNumerically("~", 3, 1e-9))
			Expect(sol.Objective).To(BeNumerically("~", 9, 1e-9))
		})

		It("should detect an unbounded objective", func() {
			p := solver.NewProblem("unbounded", solver.Maximize)
			x := p.AddVariable(solver.Variable{Name: "x", Lower: 0, Upper: inf})
			p.SetObjectiveCoef(x, 1)

			_, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).To(MatchError(solver.ErrUnbounded))
		})
	})

	Context("with limits", func() {
		// max x + 0.5y s.t. 10x + y <= 23, y <= 10: the relaxation gives
		// x = 1.3, the first branch explored (x <= 1) is integral, and the
		// x >= 2 branch is still pending after two nodes.
		newLimited := func() *solver.Problem {
			p := solver.NewProblem("limited", solver.Maximize)
			x := p.AddVariable(intVar("x", 0, 10))
			y := p.AddVariable(solver.Variable{Name: "y", Lower: 0, Upper: 10})
			p.SetObjectiveCoef(x, 1)
			p.SetObjectiveCoef(y, 0.5)
			Expect(p.AddConstraint(solver.Constraint{Terms: []solver.Term{{Index: x, Coef: 10}, {Index: y, Coef: 1}}, Sense: solver.LessEqual, RHS: 23})).To(Succeed())
			return p
		}

		It("should keep the best solution when the node limit interrupts the search", func() {
			opts := solver.DefaultOptions()
			opts.MaxNodes = 2

			sol, err := solver.Solve(testCtx, newLimited(), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Status).To(Equal(solver.StatusFeasible))
			Expect(sol.Value(0)).To(Equal(1.0))
			Expect(sol.Value(1)).To(BeNumerically("~", 10, 1e-9))
		})

		It("should fail when the node limit hits before any integer solution", func() {
			opts := solver.DefaultOptions()
			opts.MaxNodes = 1

			_, err := solver.Solve(testCtx, newLimited(), opts)
			Expect(err).To(MatchError(solver.ErrNodeLimit))
		})

		It("should fail with the time limit error when the deadline already passed", func() {
			ctx, cancel := context.WithDeadline(testCtx, time.Now().Add(-time.Second))
			defer cancel()

			_, err := solver.Solve(ctx, newLimited(), solver.DefaultOptions())
			Expect(err).To(MatchError(solver.ErrTimeLimit))
		})

		It("should prove optimality without limits", func() {
			sol, err := solver.Solve(testCtx, newLimited(), solver.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Status).To(Equal(solver.StatusOptimal))
			Expect(sol.Value(0)).To(Equal(1.0))
		})
	})

	Context("with malformed problems", func() {
		It("should reject a NaN bound", func() {
			p := solver.NewProblem("nan", solver.Minimize)
			p.AddVariable(solver.Variable{Name: "x", Lower: math.NaN(), Upper: 1})
			_, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).To(MatchError(solver.ErrInvalidProblem))
		})

		It("should reject a variable without lower bound", func() {
			p := solver.NewProblem("free", solver.Minimize)
			p.AddVariable(solver.Variable{Name: "x", Lower: math.Inf(-1), Upper: 1})
			_, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).To(MatchError(solver.ErrInvalidProblem))
		})

		It("should reject terms on unknown variables", func() {
			p := solver.NewProblem("bad-term", solver.Minimize)
			p.AddVariable(solver.Variable{Name: "x", Upper: 1})
			err := p.AddConstraint(solver.Constraint{Name: "c", Terms: solver.UnitTerms(3), Sense: solver.Equal, RHS: 1})
			Expect(err).To(MatchError(solver.ErrInvalidProblem))
		})

		It("should reject a constant constraint that does not hold", func() {
			p := solver.NewProblem("constant", solver.Minimize)
			p.AddVariable(solver.Variable{Name: "x", Upper: 1})
			Expect(p.AddConstraint(solver.Constraint{Name: "c", Sense: solver.Equal, RHS: 5})).To(Succeed())
			_, err := solver.Solve(testCtx, p, solver.DefaultOptions())
			Expect(err).To(MatchError(solver.ErrInfeasible))
		})
	})
})

var _ = Describe("ConstraintSense", func() {
	It("should render each relation", func() {
		Expect(solver.LessEqual.String()).To(Equal("<="))
		Expect(solver.GreaterEqual.String()).To(Equal(">="))
		Expect(solver.Equal.String()).To(Equal("="))
		Expect(solver.ConstraintSense(7).String()).To(Equal("ConstraintSense(7)"))
	})
})
