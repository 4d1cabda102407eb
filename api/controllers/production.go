package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RMarques88/gelatoprod-backend/api/responses"
	"github.com/RMarques88/gelatoprod-backend/api/validators"
	productionsvc "github.com/RMarques88/gelatoprod-backend/internal/production"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
	"github.com/RMarques88/gelatoprod-backend/pkg/logger"
)

type schedulePlanRequest struct {
	RecipeID      uuid.UUID       `json:"recipe_id" validate:"required"`
	QuantityUnits decimal.Decimal `json:"quantity_units"`
	UnitOfMeasure string          `json:"unit_of_measure" validate:"required"`
	ScheduledFor  *time.Time      `json:"scheduled_for,omitempty"`
	RequestedBy   string          `json:"requested_by" validate:"required"`
}

// SchedulePlan creates a production plan in scheduled state.
func SchedulePlan(svc productionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload schedulePlanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unit, err := enums.ParseUnitOfMeasure(payload.UnitOfMeasure)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit of measure"))
			return
		}

		plan, err := svc.Schedule(r.Context(), productionsvc.ScheduleInput{
			RecipeID:      payload.RecipeID,
			QuantityUnits: payload.QuantityUnits,
			UnitOfMeasure: unit,
			ScheduledFor:  payload.ScheduledFor,
			RequestedBy:   payload.RequestedBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, plan)
	}
}

// ListPlans returns plans, optionally filtered by comma-separated statuses.
func ListPlans(svc productionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := parsePlanStatuses(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plans, err := svc.ListPlans(r.Context(), statuses)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plans)
	}
}

// GetPlan returns one plan by id.
func GetPlan(svc productionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "planID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.GetPlan(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

// StartPlan moves a scheduled plan into progress.
func StartPlan(svc productionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "planID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.Start(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

// CancelPlan cancels a plan that has not finished.
func CancelPlan(svc productionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "planID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

type completePlanRequest struct {
	PerformedBy string `json:"performed_by" validate:"required"`
}

// CompletePlan consumes stock for the plan and stamps its realized cost.
func CompletePlan(svc productionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "planID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload completePlanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Complete(r.Context(), id, payload.PerformedBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ListPlanDivergences returns the divergence records of one plan.
func ListPlanDivergences(svc productionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "planID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		divergences, err := svc.ListDivergences(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, divergences)
	}
}

func parsePlanStatuses(r *http.Request) ([]enums.PlanStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	var statuses []enums.PlanStatus
	for _, part := range splitCSV(raw) {
		status, err := enums.ParsePlanStatus(part)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan status")
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
