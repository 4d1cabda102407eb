package stock

import (
	"github.com/shopspring/decimal"

	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
)

var gramsPerKilogram = decimal.NewFromInt(1000)

// CostUpdate is the cost-basis outcome of applying one movement to a stock
// item. MovementUnitCost is what gets stamped on the movement record itself:
// the incoming cost for stock-increasing types, the current average for
// decrements (cost of goods sold at weighted average).
type CostUpdate struct {
	AverageUnitCostBRL  decimal.Decimal
	HighestUnitCostBRL  decimal.Decimal
	MovementUnitCostBRL decimal.NullDecimal
}

// WeightedAverageCost blends the current cost basis with an incoming lot.
// Costs are BRL per kilogram and quantities are grams; the unit conversion
// cancels out of the ratio, so the blend is a plain quantity-weighted average.
func WeightedAverageCost(currentQty, currentAvg, incomingQty, incomingCost decimal.Decimal) decimal.Decimal {
	total := currentQty.Add(incomingQty)
	if total.LessThanOrEqual(decimal.Zero) {
		return incomingCost
	}
	blended := currentQty.Mul(currentAvg).Add(incomingQty.Mul(incomingCost))
	return blended.Div(total)
}

// CostOfGoods converts a per-kilogram rate into the BRL total for a gram
// quantity.
func CostOfGoods(quantityG, unitCostPerKg decimal.Decimal) decimal.Decimal {
	return unitCostPerKg.Div(gramsPerKilogram).Mul(quantityG)
}

// ComputeCostUpdate applies the movement-type cost policy. Pure; the ledger
// calls it inside the adjust transaction.
func ComputeCostUpdate(
	movementType enums.MovementType,
	previousQty, previousAvg, previousHighest decimal.Decimal,
	resultingQty decimal.Decimal,
	quantity decimal.Decimal,
	unitCost *decimal.Decimal,
) (CostUpdate, error) {
	update := CostUpdate{
		AverageUnitCostBRL: previousAvg,
		HighestUnitCostBRL: previousHighest,
	}

	switch movementType {
	case enums.MovementTypeInitial, enums.MovementTypeIncrement:
		if unitCost == nil || unitCost.LessThanOrEqual(decimal.Zero) {
			return CostUpdate{}, pkgerrors.New(pkgerrors.CodeValidation,
				"initial and increment movements require a positive unit cost")
		}
		update.AverageUnitCostBRL = WeightedAverageCost(previousQty, previousAvg, quantity, *unitCost)
		update.HighestUnitCostBRL = decimal.Max(previousHighest, *unitCost)
		update.MovementUnitCostBRL = decimal.NewNullDecimal(*unitCost)

	case enums.MovementTypeDecrement:
		update.MovementUnitCostBRL = decimal.NewNullDecimal(previousAvg)
		if resultingQty.IsZero() {
			// an empty lot carries no residual valuation
			update.AverageUnitCostBRL = decimal.Zero
		}

	case enums.MovementTypeAdjustment:
		if unitCost != nil {
			if unitCost.LessThanOrEqual(decimal.Zero) {
				return CostUpdate{}, pkgerrors.New(pkgerrors.CodeValidation,
					"adjustment unit cost must be positive when provided")
			}
			update.AverageUnitCostBRL = *unitCost
			update.HighestUnitCostBRL = decimal.Max(previousHighest, *unitCost)
			update.MovementUnitCostBRL = decimal.NewNullDecimal(*unitCost)
		}

	default:
		return CostUpdate{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown movement type")
	}

	return update, nil
}
