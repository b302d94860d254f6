package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"threadworks/internal/api/resp"
	"threadworks/internal/storage"
)

type Orders interface {
	GetOrders(ctx context.Context) ([]storage.Order, error)
	GetOrder(ctx context.Context, id string) (*storage.Order, error)
	GetOrdersByCompany(ctx context.Context, companyID string) ([]storage.Order, error)
}

func GetOrders(log *slog.Logger, orders Orders) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.get.GetOrders"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := orders.GetOrders(ctx)
		if err != nil {
			log.Error("failed to load orders", slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func GetOrder(log *slog.Logger, orders Orders) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.get.GetOrder"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.GetOrder(ctx, id)
		if err != nil {
			log.Error("failed to load order", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, order)
	}
}

func GetOrdersByCompany(log *slog.Logger, orders Orders) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.get.GetOrdersByCompany"

		companyID := chi.URLParam(r, "companyId")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := orders.GetOrdersByCompany(ctx, companyID)
		if err != nil {
			log.Error("failed to load company orders", slog.String("op", op), slog.String("company_id", companyID), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, list)
	}
}
