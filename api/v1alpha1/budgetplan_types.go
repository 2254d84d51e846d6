package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// BudgetPlanKind is the kind of BudgetPlan manifests.
const BudgetPlanKind = "BudgetPlan"

// BudgetPlanSpec defines the budget to split and the categories to fund.
type BudgetPlanSpec struct {
	// TableRef is the path of the price table, relative to the manifest.
	// +kubebuilder:validation:MinLength=1
	// +kubebuilder:validation:Required
	TableRef string `json:"tableRef"`

	// Budget is the amount to split. It also selects the price tier.
	// +kubebuilder:validation:Minimum=1
	// +kubebuilder:validation:Required
	Budget int64 `json:"budget"`

	// GuestCount is the number of guests of the event.
	// It is recorded but does not take part in the tier lookup.
	// +kubebuilder:validation:Minimum=0
	// +optional
	GuestCount int `json:"guestCount,omitempty"`

	// Categories are the names of the categories to fund. Names absent from
	// the price table are ignored.
	// +optional
	Categories []string `json:"categories,omitempty"`
}

// BudgetPlanStatus is the outcome of the last allocation of a BudgetPlan.
type BudgetPlanStatus struct {
	// Tier is the price tier the budget resolved to.
	// +optional
	Tier string `json:"tier,omitempty"`

	// Allocations maps each funded category, plus "Other", to its amount.
	// +optional
	Allocations map[string]int64 `json:"allocations,omitempty"`

	// SolveStatus is "Optimal", or "Feasible" when the solver time limit
	// stopped the search.
	// +optional
	SolveStatus string `json:"solveStatus,omitempty"`

	// RequestID correlates the allocation with its logs and traces.
	// +optional
	RequestID string `json:"requestID,omitempty"`

	// LastRunTime is the timestamp of the last allocation run.
	LastRunTime metav1.Time `json:"lastRunTime,omitempty"`

	// Conditions represent the latest available observations of the BudgetPlan's state
	// +kubebuilder:validation:Optional
	// +patchMergeKey=type
	// +patchStrategy=merge
	// +listType=map
	// +listMapKey=type
	Conditions []metav1.Condition `json:"conditions,omitempty" patchStrategy:"merge" patchMergeKey:"type"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=bp
// +kubebuilder:printcolumn:name="Budget",type=integer,JSONPath=".spec.budget"
// +kubebuilder:printcolumn:name="Tier",type=string,JSONPath=".status.tier"
// +kubebuilder:printcolumn:name="Feasible",type=string,JSONPath=".status.conditions[?(@.type=='Feasible')].status"

// BudgetPlan is the Schema for budget plan manifests.
type BudgetPlan struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BudgetPlanSpec   `json:"spec,omitempty"`
	Status BudgetPlanStatus `json:"status,omitempty"`
}

// BudgetPlanList contains a list of BudgetPlan.
// +kubebuilder:object:root=true
type BudgetPlanList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`

	Items []BudgetPlan `json:"items"`
}

// Condition Types for BudgetPlan
const (
	// TypeFeasible indicates whether the budget could be split under the category bounds
	TypeFeasible = "Feasible"
	// TypeReady indicates whether the status holds a valid allocation
	TypeReady = "Ready"
)

// Condition Reasons for Feasible and Ready
const (
	// ReasonAllocated indicates an optimal allocation was found
	ReasonAllocated = "Allocated"
	// ReasonTimeLimited indicates the solver time limit was reached and the best allocation found was kept
	ReasonTimeLimited = "TimeLimited"
	// ReasonInfeasible indicates the bounds admit no split of the budget
	ReasonInfeasible = "Infeasible"
	// ReasonInvalidBudget indicates the budget is not strictly positive
	ReasonInvalidBudget = "InvalidBudget"
	// ReasonDataFormatError indicates a malformed price or threshold in the table
	ReasonDataFormatError = "DataFormatError"
	// ReasonRoundingInconsistency indicates rounding left a negative remainder
	ReasonRoundingInconsistency = "RoundingInconsistency"
	// ReasonTableUnavailable indicates the price table could not be loaded
	ReasonTableUnavailable = "TableUnavailable"
	// ReasonOptimizationFailed indicates any other failure
	ReasonOptimizationFailed = "OptimizationFailed"
)
