package storage

// MovementType controls whether a phase advances the whole order at once or
// each measurement on its own.
type MovementType string

const (
	MovementOrderLevel       MovementType = "order-level"
	MovementMeasurementLevel MovementType = "measurement-level"
)

// PhaseCategories is the fixed set of pipeline sections a phase can belong to.
var PhaseCategories = []string{
	"Order Management",
	"Material Management",
	"Production",
	"QA & Post-production",
	"Dispatch",
}

// PhaseConfig is one named stage of the production pipeline.
type PhaseConfig struct {
	ID               string       `json:"id"`
	PhaseName        string       `json:"phaseName"`
	PhaseKey         string       `json:"phaseKey"`
	Category         string       `json:"category"`
	Icon             string       `json:"icon"`
	SequenceOrder    int          `json:"sequenceOrder"`
	MovementType     MovementType `json:"movementType"`
	IsMandatory      bool         `json:"isMandatory"`
	CanSkip          bool         `json:"canSkip"`
	CanRunInParallel bool         `json:"canRunInParallel"`
	Prerequisites    []string     `json:"prerequisites"`
	IsActive         bool         `json:"isActive"`
}

// DefaultPhaseConfigs is the pipeline seeded by the initialize-defaults
// endpoint on a fresh installation. IDs are stable so re-running the
// initialization is harmless.
func DefaultPhaseConfigs() []PhaseConfig {
	return []PhaseConfig{
		{ID: "phase-order-intake", PhaseName: "Order Intake", PhaseKey: "order-intake", Category: "Order Management", Icon: "📋", SequenceOrder: 1, MovementType: MovementOrderLevel, IsMandatory: true, IsActive: true},
		{ID: "phase-material-sourcing", PhaseName: "Material Sourcing", PhaseKey: "material-sourcing", Category: "Material Management", Icon: "🧵", SequenceOrder: 2, MovementType: MovementOrderLevel, CanSkip: true, IsActive: true},
		{ID: "phase-cutting", PhaseName: "Cutting", PhaseKey: "cutting", Category: "Production", Icon: "✂️", SequenceOrder: 3, MovementType: MovementMeasurementLevel, IsMandatory: true, IsActive: true},
		{ID: "phase-stitching", PhaseName: "Stitching", PhaseKey: "stitching", Category: "Production", Icon: "🪡", SequenceOrder: 4, MovementType: MovementMeasurementLevel, IsMandatory: true, CanRunInParallel: true, IsActive: true},
		{ID: "phase-quality-check", PhaseName: "Quality Check", PhaseKey: "quality-check", Category: "QA & Post-production", Icon: "🔍", SequenceOrder: 5, MovementType: MovementMeasurementLevel, IsMandatory: true, Prerequisites: []string{"phase-stitching"}, IsActive: true},
		{ID: "phase-finishing", PhaseName: "Finishing & Ironing", PhaseKey: "finishing", Category: "QA & Post-production", Icon: "🧺", SequenceOrder: 6, MovementType: MovementMeasurementLevel, CanSkip: true, IsActive: true},
		{ID: "phase-packing", PhaseName: "Packing", PhaseKey: "packing", Category: "Dispatch", Icon: "📦", SequenceOrder: 7, MovementType: MovementOrderLevel, CanSkip: true, IsActive: true},
		{ID: "phase-dispatch", PhaseName: "Dispatch", PhaseKey: "dispatch", Category: "Dispatch", Icon: "🚚", SequenceOrder: 8, MovementType: MovementOrderLevel, IsMandatory: true, Prerequisites: []string{"phase-packing"}, IsActive: true},
	}
}
