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

type PhaseConfigDeleter interface {
	DeactivatePhaseConfig(ctx context.Context, id string) error
	HardDeletePhaseConfig(ctx context.Context, id string) error
	CountOrdersReferencingPhase(ctx context.Context, id string) (int, error)
}

// DeactivatePhase is the soft delete, history is preserved.
func DeactivatePhase(log *slog.Logger, configs PhaseConfigDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.delete.DeactivatePhase"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := configs.DeactivatePhaseConfig(ctx, id); err != nil {
			log.Error("failed to deactivate phase config", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, map[string]string{"status": "deactivated"})
	}
}

// HardDeletePhase removes the phase permanently. Refused while any order
// still references it.
func HardDeletePhase(log *slog.Logger, configs PhaseConfigDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.delete.HardDeletePhase"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		refs, err := configs.CountOrdersReferencingPhase(ctx, id)
		if err != nil {
			log.Error("failed to count phase references", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}
		if refs > 0 {
			resp.Error(w, r, http.StatusConflict, "phase is still referenced by orders")
			return
		}

		if err := configs.HardDeletePhaseConfig(ctx, id); err != nil {
			log.Error("failed to delete phase config", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, map[string]string{"status": "deleted"})
	}
}
