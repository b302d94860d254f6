package save

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"threadworks/internal/api/resp"
	"threadworks/internal/storage"
)

type PhaseConfigSaver interface {
	GetActivePhaseConfigs(ctx context.Context) ([]storage.PhaseConfig, error)
	GetPhaseConfig(ctx context.Context, id string) (*storage.PhaseConfig, error)
	SavePhaseConfig(ctx context.Context, p *storage.PhaseConfig) error
	InitializeDefaultPhaseConfigs(ctx context.Context) error
}

func CreatePhase(log *slog.Logger, configs PhaseConfigSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.save.CreatePhase"

		var phase storage.PhaseConfig
		if err := json.NewDecoder(r.Body).Decode(&phase); err != nil {
			log.Error("invalid phase config payload", slog.String("op", op), slog.String("error", err.Error()))
			resp.Error(w, r, http.StatusBadRequest, "invalid payload")
			return
		}

		if msg := validatePhase(&phase); msg != "" {
			resp.Error(w, r, http.StatusBadRequest, msg)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		// sequenceOrder must stay unique among active phases, ties would
		// make the pipeline order ambiguous.
		active, err := configs.GetActivePhaseConfigs(ctx)
		if err != nil {
			log.Error("failed to load phase configs", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}
		for _, existing := range active {
			if existing.SequenceOrder == phase.SequenceOrder {
				resp.Error(w, r, http.StatusBadRequest,
					fmt.Sprintf("sequenceOrder %d is already used by %s", phase.SequenceOrder, existing.PhaseName))
				return
			}
			if existing.PhaseKey == phase.PhaseKey {
				resp.Error(w, r, http.StatusBadRequest,
					fmt.Sprintf("phaseKey %q already exists", phase.PhaseKey))
				return
			}
		}

		if phase.ID == "" {
			phase.ID = uuid.NewString()
		}
		phase.IsActive = true

		if err := configs.SavePhaseConfig(ctx, &phase); err != nil {
			log.Error("failed to save phase config", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, phase)
	}
}

func InitializeDefaults(log *slog.Logger, configs PhaseConfigSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.save.InitializeDefaults"

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if err := configs.InitializeDefaultPhaseConfigs(ctx); err != nil {
			log.Error("failed to initialize default phases", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, map[string]string{"status": "initialized"})
	}
}

type ValidateMoveResponse struct {
	CanMove bool   `json:"canMove"`
	Message string `json:"message"`
}

// ValidateMove checks whether the target phase's prerequisites are all
// satisfied by the given completed phase ids.
func ValidateMove(log *slog.Logger, configs PhaseConfigSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.phaseconfig.save.ValidateMove"

		targetID := r.URL.Query().Get("targetPhaseId")
		if targetID == "" {
			resp.Error(w, r, http.StatusBadRequest, "targetPhaseId is required")
			return
		}

		var completedIDs []string
		if err := json.NewDecoder(r.Body).Decode(&completedIDs); err != nil {
			resp.Error(w, r, http.StatusBadRequest, "invalid payload")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		target, err := configs.GetPhaseConfig(ctx, targetID)
		if err != nil {
			log.Error("failed to load target phase", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		completed := map[string]bool{}
		for _, id := range completedIDs {
			completed[id] = true
		}
		for _, prereq := range target.Prerequisites {
			if !completed[prereq] {
				render.JSON(w, r, ValidateMoveResponse{
					CanMove: false,
					Message: fmt.Sprintf("prerequisite phase %s is not completed", prereq),
				})
				return
			}
		}

		render.JSON(w, r, ValidateMoveResponse{CanMove: true, Message: "ok"})
	}
}

func validatePhase(p *storage.PhaseConfig) string {
	if strings.TrimSpace(p.PhaseName) == "" {
		return "phaseName is required"
	}
	if strings.TrimSpace(p.PhaseKey) == "" {
		return "phaseKey is required"
	}
	if p.SequenceOrder <= 0 {
		return "sequenceOrder must be positive"
	}
	if p.MovementType != storage.MovementOrderLevel && p.MovementType != storage.MovementMeasurementLevel {
		return "movementType must be order-level or measurement-level"
	}
	for _, c := range storage.PhaseCategories {
		if p.Category == c {
			return ""
		}
	}
	return "unknown category"
}
