// Package resp maps domain errors onto JSON error responses so every handler
// answers the same shape.
package resp

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"threadworks/internal/service/phases"
	"threadworks/internal/service/upload"
	"threadworks/internal/storage"
	"threadworks/internal/workflow"
)

type ErrResponse struct {
	Error string `json:"error"`
}

func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.WriteHeader(status)
	render.JSON(w, r, ErrResponse{Error: msg})
}

// DomainError picks the status for a service/storage error: rule violations
// are the caller's fault, a missing entity is 404, completion policy is a
// conflict, anything else is a 500 with a generic message.
func DomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, workflow.ErrNotReadyToComplete):
		Error(w, r, http.StatusConflict, err.Error())
	case isRuleError(err):
		Error(w, r, http.StatusBadRequest, err.Error())
	default:
		Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

func isRuleError(err error) bool {
	rules := []error{
		workflow.ErrNoCurrentPhase,
		workflow.ErrNoNextPhase,
		workflow.ErrPhaseNotInOrder,
		workflow.ErrSkipNotAllowed,
		workflow.ErrSkipReasonRequired,
		workflow.ErrRejectReason,
		workflow.ErrRejectTarget,
		workflow.ErrNoRejectTargets,
		workflow.ErrNotPreviousPhase,
		phases.ErrEmptyBulkRequest,
		phases.ErrNoPhasesSelected,
		phases.ErrUnknownPhase,
		upload.ErrEmptyFile,
		upload.ErrMissingColumns,
		upload.ErrBadMode,
	}
	for _, rule := range rules {
		if errors.Is(err, rule) {
			return true
		}
	}
	return false
}
