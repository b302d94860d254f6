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

type PhaseConfigUpdater interface {
	GetPhaseConfig(ctx context.Context, id string) (*storage.PhaseConfig, error)
	UpdatePhaseConfig(ctx context.Context, p *storage.PhaseConfig) error
}

func UpdatePhase(log *slog.Logger, configs PhaseConfigUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.update.UpdatePhase"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		existing, err := configs.GetPhaseConfig(ctx, id)
		if err != nil {
			log.Error("failed to load phase config", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		// Decode over the loaded record so a partial payload keeps the
		// untouched fields.
		if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
			log.Error("invalid phase config payload", slog.String("op", op), slog.String("error", err.Error()))
			resp.Error(w, r, http.StatusBadRequest, "invalid payload")
			return
		}
		existing.ID = id

		if err := configs.UpdatePhaseConfig(ctx, existing); err != nil {
			log.Error("failed to update phase config", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, existing)
	}
}
