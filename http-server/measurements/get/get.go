package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"threadworks/internal/api/resp"
	"threadworks/internal/storage"
)

type Measurements interface {
	GetMeasurementsByOrder(ctx context.Context, orderID string) ([]storage.Measurement, error)
	GetMeasurement(ctx context.Context, id string) (*storage.Measurement, error)
}

func GetMeasurementsByOrder(log *slog.Logger, measurements Measurements) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.measurements.get.GetMeasurementsByOrder"

		orderID := chi.URLParam(r, "orderId")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := measurements.GetMeasurementsByOrder(ctx, orderID)
		if err != nil {
			log.Error("failed to load measurements", slog.String("op", op), slog.String("order_id", orderID), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func GetMeasurement(log *slog.Logger, measurements Measurements) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.measurements.get.GetMeasurement"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		m, err := measurements.GetMeasurement(ctx, id)
		if err != nil {
			log.Error("failed to load measurement", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, m)
	}
}
