package update

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

type MeasurementUpdater interface {
	GetMeasurement(ctx context.Context, id string) (*storage.Measurement, error)
	UpdateMeasurements(ctx context.Context, measurements []storage.Measurement) error
}

// UpdateMeasurement edits the measurement record itself (names, garment
// fields). Phase movement goes through the phase handlers, not here.
func UpdateMeasurement(log *slog.Logger, measurements MeasurementUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.measurements.update.UpdateMeasurement"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		existing, err := measurements.GetMeasurement(ctx, id)
		if err != nil {
			log.Error("failed to load measurement", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		phaseID := existing.CurrentPhaseID
		completed := existing.CompletedPhaseIDs

		if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
			resp.Error(w, r, http.StatusBadRequest, "invalid payload")
			return
		}
		existing.ID = id
		existing.CurrentPhaseID = phaseID
		existing.CompletedPhaseIDs = completed

		if err := measurements.UpdateMeasurements(ctx, []storage.Measurement{*existing}); err != nil {
			log.Error("failed to update measurement", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, existing)
	}
}
