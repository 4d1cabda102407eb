package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RMarques88/gelatoprod-backend/api/responses"
	"github.com/RMarques88/gelatoprod-backend/api/validators"
	stocksvc "github.com/RMarques88/gelatoprod-backend/internal/stock"
	"github.com/RMarques88/gelatoprod-backend/pkg/enums"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
	"github.com/RMarques88/gelatoprod-backend/pkg/logger"
	"github.com/RMarques88/gelatoprod-backend/pkg/pagination"
)

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return id, nil
}

type createStockItemRequest struct {
	ProductID        uuid.UUID       `json:"product_id" validate:"required"`
	MinimumQuantityG decimal.Decimal `json:"minimum_quantity_g"`
}

// CreateStockItem provisions ledger tracking for a product.
func CreateStockItem(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createStockItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), stocksvc.CreateItemInput{
			ProductID:        payload.ProductID,
			MinimumQuantityG: payload.MinimumQuantityG,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ListStockItems lists stock items, optionally including archived ones.
func ListStockItems(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeArchived, err := validators.ParseQueryBool(r, "include_archived", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListItems(r.Context(), includeArchived)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// GetStockItem returns one stock item by id.
func GetStockItem(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "stockItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type updateMinimumRequest struct {
	MinimumQuantityG decimal.Decimal `json:"minimum_quantity_g"`
}

// UpdateStockItemMinimum changes the item's alert threshold.
func UpdateStockItemMinimum(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "stockItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateMinimumRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.UpdateMinimum(r.Context(), id, payload.MinimumQuantityG)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type adjustStockRequest struct {
	Type        string           `json:"type" validate:"required"`
	QuantityG   decimal.Decimal  `json:"quantity_g"`
	UnitCostBRL *decimal.Decimal `json:"unit_cost_brl,omitempty"`
	PerformedBy string           `json:"performed_by" validate:"required"`
	Note        *string          `json:"note,omitempty"`
}

// AdjustStock records one ledger movement against a stock item.
func AdjustStock(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "stockItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		movementType, err := enums.ParseMovementType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
			return
		}

		movement, err := svc.Adjust(r.Context(), stocksvc.AdjustInput{
			StockItemID: id,
			Type:        movementType,
			QuantityG:   payload.QuantityG,
			UnitCostBRL: payload.UnitCostBRL,
			PerformedBy: payload.PerformedBy,
			Note:        payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, movement)
	}
}

// ListStockMovements pages one item's movement history, newest first.
func ListStockMovements(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "stockItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListMovements(r.Context(), stocksvc.ListMovementsParams{
			StockItemID: id,
			Limit:       limit,
			Cursor:      r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ArchiveStockItem hides the item from active listings without touching history.
func ArchiveStockItem(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "stockItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Archive(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type deleteStockItemRequest struct {
	PerformedBy string `json:"performed_by" validate:"required"`
}

// DeleteStockItem removes the item after issuing a compensating adjustment to
// zero, keeping the movement history intact.
func DeleteStockItem(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "stockItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload deleteStockItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteWithCompensation(r.Context(), id, payload.PerformedBy); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
