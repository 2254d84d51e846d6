// Package optimizer implements the budget optimization entry point.
//
// OptimizeBudget chains the engines of one request:
//
//	budget ─► Tier Resolver ─► tier
//	choices ─► Category Selector ─► variables
//	tier + variables ─► Constraint Builder ─► constraint set
//	constraint set ─► Allocator ─► allocation
//
// Every request gets a fresh request id, which tags its log lines, its trace
// span and the returned allocation. Nothing is shared between requests but
// the metrics emitter, so requests may run concurrently.
//
// Example usage:
//
//	alloc, _ := allocator.NewAllocator(allocator.ILPStrategy, allocator.DefaultAllocatorConfig())
//	opt, err := optimizer.NewOptimizer(alloc, catclass.DefaultClassConfig(), metrics.NewMetricsEmitter())
//	if err != nil {
//	    return err
//	}
//	result, err := opt.OptimizeBudget(ctx, table, 30, []string{"riz", "fleurs"}, 50)
//	if core.IsInfeasible(err) {
//	    // drop a category and retry
//	}
//
// Error Handling:
//
// Errors are returned as is, never retried:
//   - core.ErrInvalidBudget for a budget <= 0
//   - *core.DataFormatError for a bad threshold, price or tier
//   - *core.InfeasibleAllocationError when no split exists
//   - *core.RoundingInconsistencyError when rounding overspends the budget
package optimizer
