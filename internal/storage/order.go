package storage

import "time"

// Order status values. A completed order is terminal.
const (
	OrderStatusInProgress = "in-progress"
	OrderStatusCompleted  = "completed"
)

// Phase state status values as written by the server. The resolver maps
// "in-progress" to the UI-facing "current".
const (
	PhasePending    = "pending"
	PhaseInProgress = "in-progress"
	PhaseCompleted  = "completed"
	PhaseSkipped    = "skipped"
)

// SkippedPhase records a phase that was passed over without doing its work.
type SkippedPhase struct {
	PhaseID   string    `json:"phaseId"`
	PhaseName string    `json:"phaseName"`
	Reason    string    `json:"reason"`
	SkippedAt time.Time `json:"skippedAt"`
	SkippedBy string    `json:"skippedBy,omitempty"`
}

// UserActivity is the per-user breakdown inside one PhaseState.
type UserActivity struct {
	UserID                  string     `json:"userId"`
	UserName                string     `json:"userName"`
	CompletedCount          int        `json:"completedCount"`
	RejectedCount           int        `json:"rejectedCount"`
	FirstActivityAt         *time.Time `json:"firstActivityAt,omitempty"`
	LastActivityAt          *time.Time `json:"lastActivityAt,omitempty"`
	CompletedMeasurementIDs []string   `json:"completedMeasurementIds"`
}

// PhaseState is the server-computed aggregate for one phase of one order.
// It exists so callers never need to scan all measurements to know phase
// occupancy.
type PhaseState struct {
	PhaseConfigID  string                   `json:"phaseConfigId"`
	PhaseName      string                   `json:"phaseName"`
	PhaseKey       string                   `json:"phaseKey"`
	Status         string                   `json:"status"`
	MeasurementIDs []string                 `json:"measurementIds"`
	Count          int                      `json:"count"`
	UserActivities map[string]*UserActivity `json:"userActivities,omitempty"`
	StartedAt      *time.Time               `json:"startedAt,omitempty"`
	CompletedAt    *time.Time               `json:"completedAt,omitempty"`
	SkipReason     string                   `json:"skipReason,omitempty"`
	SkippedAt      *time.Time               `json:"skippedAt,omitempty"`
	SkippedBy      string                   `json:"skippedBy,omitempty"`
}

// Order is one customer order moving through a selected subset of the phase
// catalog. PhaseStates is the single source of truth for per-phase status and
// counts; the flat fields below it are kept for records written before the
// aggregate existed and must not be trusted when PhaseStates is present.
type Order struct {
	ID             string `json:"id"`
	OrderName      string `json:"orderName"`
	CompanyID      string `json:"companyId"`
	CompanyName    string `json:"companyName"`
	OrderDate      string `json:"orderDate"`
	CompletionDate string `json:"completionDate"`
	DeliveryDate   string `json:"deliveryDate"`
	Status         string `json:"status"`

	PhaseStates       []PhaseState `json:"phaseStates,omitempty"`
	TotalMeasurements int          `json:"totalMeasurements"`

	PhaseConfigIDs    []string       `json:"phaseConfigIds"`
	CompletedPhaseIDs []string       `json:"completedPhaseIds"`
	CurrentPhaseID    string         `json:"currentPhaseId,omitempty"`
	SkippedPhases     []SkippedPhase `json:"skippedPhases,omitempty"`

	// Deprecated, pre-phase-config records only.
	Phases       []string `json:"phases,omitempty"`
	CurrentPhase string   `json:"currentPhase,omitempty"`
}
