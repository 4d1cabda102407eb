package controllers

import (
	"net/http"
	"strings"

	"github.com/RMarques88/gelatoprod-backend/api/responses"
	stocksvc "github.com/RMarques88/gelatoprod-backend/internal/stock"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
	"github.com/RMarques88/gelatoprod-backend/pkg/logger"
)

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var parts []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// ListAlerts returns stock alerts, optionally filtered by comma-separated
// statuses (?status=open,acknowledged).
func ListAlerts(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var statuses []enums.AlertStatus
		for _, part := range splitCSV(r.URL.Query().Get("status")) {
			status, err := enums.ParseAlertStatus(part)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid alert status"))
				return
			}
			statuses = append(statuses, status)
		}

		alerts, err := svc.ListAlerts(r.Context(), statuses)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alerts)
	}
}

// AcknowledgeAlert marks an open alert as seen by an operator.
func AcknowledgeAlert(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "alertID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		alert, err := svc.AcknowledgeAlert(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alert)
	}
}
