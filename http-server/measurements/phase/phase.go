package phase

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"threadworks/internal/api/resp"
	"threadworks/internal/service/phases"
	"threadworks/internal/storage"
)

type MeasurementMover interface {
	MoveMeasurementToNextPhase(ctx context.Context, measurementID string, skipReason *string, userID, userName string) (*storage.Measurement, error)
	BulkMoveToNextPhase(ctx context.Context, measurementIDs []string, userID, userName string) (*phases.BulkResult, error)
	RejectMeasurementToPhase(ctx context.Context, measurementID, targetPhaseID, reason, userID, userName string) (*storage.Measurement, error)
}

type MoveRequest struct {
	SkipReason *string `json:"skipReason,omitempty"`
	UserID     string  `json:"userId"`
	UserName   string  `json:"userName"`
}

type BulkMoveRequest struct {
	MeasurementIDs []string `json:"measurementIds"`
	UserID         string   `json:"userId"`
	UserName       string   `json:"userName"`
}

type RejectRequest struct {
	TargetPhaseID string `json:"targetPhaseId"`
	Reason        string `json:"reason"`
	UserID        string `json:"userId"`
	UserName      string `json:"userName"`
}

func MoveToNextPhase(log *slog.Logger, service MeasurementMover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.measurements.phase.MoveToNextPhase"

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

		m, err := service.MoveMeasurementToNextPhase(ctx, id, req.SkipReason, req.UserID, req.UserName)
		if err != nil {
			log.Error("failed to move measurement", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, m)
	}
}

func BulkMoveToNextPhase(log *slog.Logger, service MeasurementMover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.measurements.phase.BulkMoveToNextPhase"

		var req BulkMoveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			resp.Error(w, r, http.StatusBadRequest, "invalid payload")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		result, err := service.BulkMoveToNextPhase(ctx, req.MeasurementIDs, req.UserID, req.UserName)
		if err != nil {
			log.Error("failed to bulk move measurements",
				slog.String("op", op),
				slog.Int("requested", len(req.MeasurementIDs)),
				slog.String("error", err.Error()),
			)
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, result)
	}
}

func RejectToPhase(log *slog.Logger, service MeasurementMover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.measurements.phase.RejectToPhase"

		id := chi.URLParam(r, "id")

		var req RejectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			resp.Error(w, r, http.StatusBadRequest, "invalid payload")
			return
		}
		if strings.TrimSpace(req.Reason) == "" {
			resp.Error(w, r, http.StatusBadRequest, "reason is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		m, err := service.RejectMeasurementToPhase(ctx, id, req.TargetPhaseID, req.Reason, req.UserID, req.UserName)
		if err != nil {
			log.Error("failed to reject measurement",
				slog.String("op", op),
				slog.String("id", id),
				slog.String("target_phase", req.TargetPhaseID),
				slog.String("error", err.Error()),
			)
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, m)
	}
}
