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
	"threadworks/internal/workflow"
)

type PhaseConfigs interface {
	GetAllPhaseConfigs(ctx context.Context) ([]storage.PhaseConfig, error)
	GetActivePhaseConfigs(ctx context.Context) ([]storage.PhaseConfig, error)
	GetPhaseConfig(ctx context.Context, id string) (*storage.PhaseConfig, error)
	GetPhaseConfigByKey(ctx context.Context, key string) (*storage.PhaseConfig, error)
}

func GetActivePhases(log *slog.Logger, configs PhaseConfigs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.get.GetActivePhases"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		phases, err := configs.GetActivePhaseConfigs(ctx)
		if err != nil {
			log.Error("failed to load active phase configs", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, workflow.NewCatalog(phases).Active())
	}
}

func GetAllPhases(log *slog.Logger, configs PhaseConfigs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.get.GetAllPhases"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		phases, err := configs.GetAllPhaseConfigs(ctx)
		if err != nil {
			log.Error("failed to load phase configs", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, workflow.NewCatalog(phases).All())
	}
}

func GetMandatoryPhases(log *slog.Logger, configs PhaseConfigs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.get.GetMandatoryPhases"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		phases, err := configs.GetActivePhaseConfigs(ctx)
		if err != nil {
			log.Error("failed to load phase configs", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, workflow.NewCatalog(phases).Mandatory())
	}
}

// GetPhasesByCategory returns the active catalog grouped for the order
// creation screen.
func GetPhasesByCategory(log *slog.Logger, configs PhaseConfigs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.get.GetPhasesByCategory"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		phases, err := configs.GetActivePhaseConfigs(ctx)
		if err != nil {
			log.Error("failed to load phase configs", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, workflow.NewCatalog(phases).ByCategory())
	}
}

// GetPhasesOfCategory returns the active phases of a single category.
func GetPhasesOfCategory(log *slog.Logger, configs PhaseConfigs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.get.GetPhasesOfCategory"

		category := chi.URLParam(r, "category")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		phases, err := configs.GetActivePhaseConfigs(ctx)
		if err != nil {
			log.Error("failed to load phase configs", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, workflow.NewCatalog(phases).ByCategory()[category])
	}
}

func GetPhaseByID(log *slog.Logger, configs PhaseConfigs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.get.GetPhaseByID"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		phase, err := configs.GetPhaseConfig(ctx, id)
		if err != nil {
			log.Error("failed to load phase config", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, phase)
	}
}

func GetPhaseByKey(log *slog.Logger, configs PhaseConfigs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.get.GetPhaseByKey"

		key := chi.URLParam(r, "phaseKey")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		phase, err := configs.GetPhaseConfigByKey(ctx, key)
		if err != nil {
			log.Error("failed to load phase config by key", slog.String("op", op), slog.String("key", key), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, phase)
	}
}
