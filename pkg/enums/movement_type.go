package enums

import "fmt"

// MovementType classifies a stock movement. The sign of the quantity is implied
// by the type; movement quantities themselves are always non-negative.
type MovementType string

const (
	MovementTypeInitial    MovementType = "initial"
	MovementTypeIncrement  MovementType = "increment"
	MovementTypeDecrement  MovementType = "decrement"
	MovementTypeAdjustment MovementType = "adjustment"
)

var validMovementTypes = []MovementType{
	MovementTypeInitial,
	MovementTypeIncrement,
	MovementTypeDecrement,
	MovementTypeAdjustment,
}

// String implements fmt.Stringer.
func (m MovementType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementType.
func (m MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// Adds reports whether the movement increases the stored quantity.
func (m MovementType) Adds() bool {
	return m == MovementTypeInitial || m == MovementTypeIncrement
}

// RequiresUnitCost reports whether the movement must carry a positive unit cost.
func (m MovementType) RequiresUnitCost() bool {
	return m.Adds()
}

// ParseMovementType converts raw input into a MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
