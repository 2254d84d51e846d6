// Package allocator splits a budget across the constrained categories.
package allocator

import (
	"context"
	"fmt"
	"time"

	"github.com/paliers/budget-allocator/pkg/core"
	"github.com/paliers/budget-allocator/pkg/solver"
)

// Allocator splits a budget across the categories of a constraint set.
type Allocator interface {
	// Allocate returns the integer amount of every category in vars plus the
	// core.OtherCategory remainder. The amounts sum to budget.
	Allocate(
		ctx context.Context,
		set *core.ConstraintSet,
		vars core.VariableMap,
		budget int64,
	) (*core.Allocation, error)
}

// AllocatorStrategy is an enumeration of the strategies an Allocator can use
type AllocatorStrategy int

// enumeration of AllocatorStrategy
const (
	// ILPStrategy solves the allocation as an integer linear program.
	ILPStrategy AllocatorStrategy = iota
)

func (s AllocatorStrategy) String() string {
	switch s {
	case ILPStrategy:
		return "ilp"
	default:
		return fmt.Sprintf("AllocatorStrategy(%d)", int(s))
	}
}

// ParseStrategy returns the strategy named name.
func ParseStrategy(name string) (AllocatorStrategy, error) {
	switch name {
	case "", "ilp":
		return ILPStrategy, nil
	default:
		return 0, fmt.Errorf("unsupported allocator strategy: %q", name)
	}
}

// AllocatorConfig holds configuration common to all allocators
type AllocatorConfig struct {
	// TimeLimit caps a single solve. Zero selects solver.DefaultTimeLimit.
	TimeLimit time.Duration
	// MaxNodes caps the branch-and-bound nodes of a single solve. Zero means no cap.
	MaxNodes int
}

// DefaultAllocatorConfig returns the configuration used by the CLI when no
// override is given.
func DefaultAllocatorConfig() *AllocatorConfig {
	return &AllocatorConfig{TimeLimit: solver.DefaultTimeLimit}
}

// NewAllocator is a factory that creates a new Allocator based on the provided strategy
func NewAllocator(strategy AllocatorStrategy, config *AllocatorConfig) (Allocator, error) {
	switch strategy {
	case ILPStrategy:
		return NewILPAllocator(config)
	default:
		return nil, fmt.Errorf("unsupported allocator strategy: %v", strategy)
	}
}
