package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"threadworks/internal/api/resp"
	"threadworks/internal/storage"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, order *storage.Order) (*storage.Order, error)
}

func CreateOrder(log *slog.Logger, service OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.save.CreateOrder"

		var order storage.Order
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			log.Error("invalid order payload", slog.String("op", op), slog.String("error", err.Error()))
			resp.Error(w, r, http.StatusBadRequest, "invalid payload")
			return
		}

		if strings.TrimSpace(order.OrderName) == "" {
			resp.Error(w, r, http.StatusBadRequest, "orderName is required")
			return
		}
		if strings.TrimSpace(order.CompanyID) == "" {
			resp.Error(w, r, http.StatusBadRequest, "companyId is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		created, err := service.CreateOrder(ctx, &order)
		if err != nil {
			log.Error("failed to create order", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, created)
	}
}
