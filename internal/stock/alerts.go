package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/RMarques88/gelatoprod-backend/pkg/db/models"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
)

// AlertTransition names what the state machine decided for metrics and logs.
type AlertTransition string

const (
	AlertTransitionNone      AlertTransition = "none"
	AlertTransitionOpened    AlertTransition = "opened"
	AlertTransitionReopened  AlertTransition = "reopened"
	AlertTransitionUpdated   AlertTransition = "updated"
	AlertTransitionEscalated AlertTransition = "escalated"
	AlertTransitionResolved  AlertTransition = "resolved"
)

// AlertOutcome is the result of evaluating the alert state machine after a
// ledger mutation. Alert is nil when nothing needs to be written. IsNew is set
// when the row must be inserted rather than updated.
type AlertOutcome struct {
	Alert      *models.StockAlert
	IsNew      bool
	Transition AlertTransition
	Notify     bool
}

var severityDivisor = decimal.NewFromInt(2)

// severityFor grades a shortage: critical when the item is empty or at or
// below half its minimum, warning otherwise.
func severityFor(resultingQty, minimumQty decimal.Decimal) enums.AlertSeverity {
	if resultingQty.LessThanOrEqual(decimal.Zero) {
		return enums.AlertSeverityCritical
	}
	if resultingQty.LessThanOrEqual(minimumQty.Div(severityDivisor)) {
		return enums.AlertSeverityCritical
	}
	return enums.AlertSeverityWarning
}

// TransitionAlert evaluates the shortage alert state machine for one stock
// item after a mutation left it at resultingQty. existing is the item's single
// logical alert, or nil when none has ever been raised. The function is
// deterministic and idempotent: re-evaluating the same snapshot never requests
// a second notification.
func TransitionAlert(existing *models.StockAlert, item *models.StockItem, resultingQty decimal.Decimal, now time.Time) AlertOutcome {
	belowMinimum := resultingQty.LessThanOrEqual(item.MinimumQuantityG)

	if !belowMinimum {
		if existing == nil || existing.Status == enums.AlertStatusResolved {
			return AlertOutcome{Transition: AlertTransitionNone}
		}
		existing.Status = enums.AlertStatusResolved
		existing.ResolvedAt = &now
		existing.CurrentQuantityG = resultingQty
		return AlertOutcome{Alert: existing, Transition: AlertTransitionResolved}
	}

	severity := severityFor(resultingQty, item.MinimumQuantityG)

	if existing == nil {
		alert := &models.StockAlert{
			StockItemID:        item.ID,
			ProductID:          item.ProductID,
			Status:             enums.AlertStatusOpen,
			Severity:           severity,
			CurrentQuantityG:   resultingQty,
			MinimumQuantityG:   item.MinimumQuantityG,
			TriggeredAt:        now,
			LastNotificationAt: &now,
		}
		return AlertOutcome{Alert: alert, IsNew: true, Transition: AlertTransitionOpened, Notify: true}
	}

	if existing.Status == enums.AlertStatusResolved {
		existing.Status = enums.AlertStatusOpen
		existing.Severity = severity
		existing.CurrentQuantityG = resultingQty
		existing.MinimumQuantityG = item.MinimumQuantityG
		existing.TriggeredAt = now
		existing.AcknowledgedAt = nil
		existing.ResolvedAt = nil
		existing.LastNotificationAt = &now
		return AlertOutcome{Alert: existing, Transition: AlertTransitionReopened, Notify: true}
	}

	// Alert is open or acknowledged. An acknowledged alert is not silently
	// reopened by an unrelated write, but escalation to critical warrants a
	// fresh notification.
	escalated := existing.Severity == enums.AlertSeverityWarning && severity == enums.AlertSeverityCritical
	existing.Severity = severity
	existing.CurrentQuantityG = resultingQty
	existing.MinimumQuantityG = item.MinimumQuantityG
	if escalated {
		existing.LastNotificationAt = &now
		return AlertOutcome{Alert: existing, Transition: AlertTransitionEscalated, Notify: true}
	}
	return AlertOutcome{Alert: existing, Transition: AlertTransitionUpdated}
}
