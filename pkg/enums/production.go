package enums

import "fmt"

// PlanStatus tracks the lifecycle of a production plan.
type PlanStatus string

const (
	PlanStatusScheduled  PlanStatus = "scheduled"
	PlanStatusInProgress PlanStatus = "in_progress"
	PlanStatusCompleted  PlanStatus = "completed"
	PlanStatusCancelled  PlanStatus = "cancelled"
)

var validPlanStatuses = []PlanStatus{
	PlanStatusScheduled,
	PlanStatusInProgress,
	PlanStatusCompleted,
	PlanStatusCancelled,
}

// String implements fmt.Stringer.
func (p PlanStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanStatus.
func (p PlanStatus) IsValid() bool {
	for _, candidate := range validPlanStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the plan can no longer change state.
func (p PlanStatus) IsTerminal() bool {
	return p == PlanStatusCompleted || p == PlanStatusCancelled
}

// ParsePlanStatus converts raw input into a PlanStatus.
func ParsePlanStatus(value string) (PlanStatus, error) {
	for _, candidate := range validPlanStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan status %q", value)
}

// UnitOfMeasure expresses how a plan's requested quantity is denominated.
type UnitOfMeasure string

const (
	UnitGrams     UnitOfMeasure = "grams"
	UnitKilograms UnitOfMeasure = "kilograms"
	UnitBatches   UnitOfMeasure = "batches"
)

var validUnits = []UnitOfMeasure{UnitGrams, UnitKilograms, UnitBatches}

// String implements fmt.Stringer.
func (u UnitOfMeasure) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UnitOfMeasure.
func (u UnitOfMeasure) IsValid() bool {
	for _, candidate := range validUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnitOfMeasure converts raw input into a UnitOfMeasure.
func ParseUnitOfMeasure(value string) (UnitOfMeasure, error) {
	for _, candidate := range validUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit of measure %q", value)
}
