package delete

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"threadworks/internal/api/resp"
)

type MeasurementDeleter interface {
	DeleteMeasurement(ctx context.Context, id string) error
}

func DeleteMeasurement(log *slog.Logger, measurements MeasurementDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.measurements.delete.DeleteMeasurement"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := measurements.DeleteMeasurement(ctx, id); err != nil {
			log.Error("failed to delete measurement", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, map[string]string{"status": "deleted"})
	}
}
