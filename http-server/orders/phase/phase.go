package phase

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"threadworks/internal/api/resp"
	"threadworks/internal/storage"
)

type OrderMover interface {
	MoveOrderToNextPhase(ctx context.Context, orderID string, skipReason *string, userID, userName string) (*storage.Order, error)
	MarkOrderComplete(ctx context.Context, orderID string) (*storage.Order, error)
}

// MoveRequest carries an optional skip. A missing skipReason means a plain
// completion of the current phase; a present one must be non-blank.
type MoveRequest struct {
	SkipReason *string `json:"skipReason,omitempty"`
	UserID     string  `json:"userId"`
	UserName   string  `json:"userName"`
}

func MoveToNextPhase(log *slog.Logger, service OrderMover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.phase.MoveToNextPhase"

		id := chi.URLParam(r, "id")

		var req MoveRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				resp.Error(w, r, http.StatusBadRequest, "invalid payload")
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		order, err := service.MoveOrderToNextPhase(ctx, id, req.SkipReason, req.UserID, req.UserName)
		if err != nil {
			log.Error("failed to move order", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, order)
	}
}

func MarkComplete(log *slog.Logger, service OrderMover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.phase.MarkComplete"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		order, err := service.MarkOrderComplete(ctx, id)
		if err != nil {
			log.Error("failed to complete order", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, order)
	}
}
