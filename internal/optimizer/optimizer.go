package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/paliers/budget-allocator/internal/engines/allocator"
	"github.com/paliers/budget-allocator/internal/engines/constraints"
	"github.com/paliers/budget-allocator/internal/engines/selector"
	"github.com/paliers/budget-allocator/internal/engines/tier"
	"github.com/paliers/budget-allocator/internal/logging"
	"github.com/paliers/budget-allocator/internal/metrics"
	"github.com/paliers/budget-allocator/internal/tracing"
	"github.com/paliers/budget-allocator/internal/utils/catclass"
	"github.com/paliers/budget-allocator/pkg/core"
)

// Optimizer runs budget optimization requests.
type Optimizer struct {
	allocator  allocator.Allocator
	classifier catclass.Classifier
	emitter    *metrics.MetricsEmitter
}

// NewOptimizer creates an Optimizer. A nil classifier selects
// catclass.DefaultClassConfig; a nil emitter disables metrics.
func NewOptimizer(
	alloc allocator.Allocator,
	classifier catclass.Classifier,
	emitter *metrics.MetricsEmitter,
) (*Optimizer, error) {
	if alloc == nil {
		return nil, errors.New("allocator cannot be nil")
	}
	if classifier == nil {
		classifier = catclass.DefaultClassConfig()
	}
	return &Optimizer{
		allocator:  alloc,
		classifier: classifier,
		emitter:    emitter,
	}, nil
}

// OptimizeBudget splits budget across the chosen categories of table.
// The tier is resolved from the budget; guestCount is recorded but takes no
// part in the tier lookup.
func (o *Optimizer) OptimizeBudget(
	ctx context.Context,
	table *core.PriceTable,
	budget int64,
	chosen []string,
	guestCount int,
) (result *core.Allocation, err error) {
	start := time.Now()
	requestID := uuid.NewString()
	logger := logging.FromContext(ctx).WithValues("requestID", requestID)
	ctx = logging.IntoContext(ctx, logger)

	ctx, span := tracing.Tracer().Start(ctx, "optimizer.OptimizeBudget")
	span.SetAttributes(
		attribute.String("request.id", requestID),
		attribute.Int64("budget", budget),
		attribute.Int("guests", guestCount),
		attribute.Int("chosen", len(chosen)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if o.emitter != nil {
			o.emitter.ObserveRequest(err, time.Since(start))
			o.emitter.EmitAllocation(result)
		}
	}()

	logger.V(logging.DEBUG).Info("Optimizing budget",
		"budget", budget,
		"guestCount", guestCount,
		"chosen", chosen)

	if budget <= 0 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidBudget, budget)
	}

	label, err := tier.ResolveTier(table, float64(budget))
	if err != nil {
		return nil, fmt.Errorf("resolving tier: %w", err)
	}
	span.SetAttributes(attribute.String("tier", string(label)))

	vars := selector.SelectCategories(table, chosen)
	if unmatched := selector.Unmatched(table, chosen); len(unmatched) > 0 {
		logger.Info("Ignoring categories absent from the price table",
			"unmatched", unmatched)
	}

	set, err := constraints.Build(table, label, vars, o.classifier)
	if err != nil {
		return nil, fmt.Errorf("building constraints: %w", err)
	}
	logger.V(logging.DEBUG).Info("Built constraints",
		"tier", label,
		"equalities", len(set.Equalities),
		"inequalities", len(set.Inequalities),
		"mandatory", set.MandatoryTotal().String())

	result, err = o.allocator.Allocate(ctx, set, vars, budget)
	if err != nil {
		return nil, fmt.Errorf("allocating budget: %w", err)
	}
	result.RequestID = requestID
	result.Tier = label

	logger.Info("Budget allocated",
		"tier", label,
		"status", result.Status,
		"categories", len(vars),
		"other", result.Other())
	return result, nil
}
