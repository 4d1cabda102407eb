package controllers

import (
	"net/http"

	"github.com/RMarques88/gelatoprod-backend/api/responses"
	"github.com/RMarques88/gelatoprod-backend/api/validators"
	notificationsvc "github.com/RMarques88/gelatoprod-backend/internal/notifications"
	"github.com/RMarques88/gelatoprod-backend/pkg/logger"
	"github.com/RMarques88/gelatoprod-backend/pkg/pagination"
)

// ListNotifications returns in-app notifications, newest first.
func ListNotifications(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unreadOnly, err := validators.ParseQueryBool(r, "unread_only", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notifications, err := svc.List(r.Context(), unreadOnly, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, notifications)
	}
}

// MarkNotificationRead marks one notification as read.
func MarkNotificationRead(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "notificationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.MarkRead(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}
