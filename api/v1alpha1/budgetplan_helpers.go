package v1alpha1

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/paliers/budget-allocator/pkg/core"
)

// ParseBudgetPlan decodes a YAML or JSON BudgetPlan manifest. Unknown
// fields are rejected; apiVersion and kind are filled in when omitted.
func ParseBudgetPlan(data []byte) (*BudgetPlan, error) {
	plan := &BudgetPlan{}
	if err := yaml.UnmarshalStrict(data, plan); err != nil {
		return nil, fmt.Errorf("decoding budget plan: %w", err)
	}
	if plan.APIVersion == "" {
		plan.APIVersion = GroupVersion.String()
	}
	if plan.Kind == "" {
		plan.Kind = BudgetPlanKind
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// MarshalBudgetPlan encodes plan as YAML.
func MarshalBudgetPlan(plan *BudgetPlan) ([]byte, error) {
	return yaml.Marshal(plan)
}

// Validate checks the manifest header and spec.
func (p *BudgetPlan) Validate() error {
	var errs []error
	if p.APIVersion != GroupVersion.String() {
		errs = append(errs, fmt.Errorf("apiVersion must be %s, got %q", GroupVersion, p.APIVersion))
	}
	if p.Kind != BudgetPlanKind {
		errs = append(errs, fmt.Errorf("kind must be %s, got %q", BudgetPlanKind, p.Kind))
	}
	if p.Spec.TableRef == "" {
		errs = append(errs, errors.New("spec.tableRef is required"))
	}
	if p.Spec.Budget <= 0 {
		errs = append(errs, fmt.Errorf("spec.budget must be greater than zero, got %d", p.Spec.Budget))
	}
	if p.Spec.GuestCount < 0 {
		errs = append(errs, fmt.Errorf("spec.guestCount must not be negative, got %d", p.Spec.GuestCount))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid budget plan %q: %w", p.Name, errors.Join(errs...))
	}
	return nil
}

// SetResult records the outcome of an allocation run in the status.
// On failure the previous allocation is cleared.
func (p *BudgetPlan) SetResult(alloc *core.Allocation, err error, now metav1.Time) {
	p.Status.LastRunTime = now
	if err != nil {
		p.Status.Tier = ""
		p.Status.Allocations = nil
		p.Status.SolveStatus = ""
		p.Status.RequestID = ""

		reason := failureReason(err)
		feasible := metav1.ConditionUnknown
		if reason == ReasonInfeasible {
			feasible = metav1.ConditionFalse
		}
		p.setCondition(TypeFeasible, feasible, reason, err.Error())
		p.setCondition(TypeReady, metav1.ConditionFalse, reason, err.Error())
		return
	}

	p.Status.Tier = string(alloc.Tier)
	p.Status.Allocations = alloc.Amounts
	p.Status.SolveStatus = string(alloc.Status)
	p.Status.RequestID = alloc.RequestID

	reason, message := ReasonAllocated, "Budget split optimally"
	if alloc.Status == core.StatusFeasible {
		reason, message = ReasonTimeLimited, "Solver time limit reached, best allocation found kept"
	}
	p.setCondition(TypeFeasible, metav1.ConditionTrue, reason, message)
	p.setCondition(TypeReady, metav1.ConditionTrue, reason,
		fmt.Sprintf("Allocated %d across %d categories at tier %s", alloc.Budget, len(alloc.Categories()), alloc.Tier))
}

// SetTableUnavailable records that the price table could not be loaded.
func (p *BudgetPlan) SetTableUnavailable(err error, now metav1.Time) {
	p.Status.LastRunTime = now
	p.Status.Allocations = nil
	p.setCondition(TypeFeasible, metav1.ConditionUnknown, ReasonTableUnavailable, err.Error())
	p.setCondition(TypeReady, metav1.ConditionFalse, ReasonTableUnavailable, err.Error())
}

// IsReady reports whether the Ready condition is true.
func (p *BudgetPlan) IsReady() bool {
	return meta.IsStatusConditionTrue(p.Status.Conditions, TypeReady)
}

func (p *BudgetPlan) setCondition(conditionType string, status metav1.ConditionStatus, reason, message string) {
	meta.SetStatusCondition(&p.Status.Conditions, metav1.Condition{
		Type:               conditionType,
		Status:             status,
		ObservedGeneration: p.Generation,
		Reason:             reason,
		Message:            message,
	})
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidBudget):
		return ReasonInvalidBudget
	case core.IsDataFormatError(err):
		return ReasonDataFormatError
	case core.IsInfeasible(err):
		return ReasonInfeasible
	case core.IsRoundingInconsistency(err):
		return ReasonRoundingInconsistency
	default:
		return ReasonOptimizationFailed
	}
}
