// Package upload imports measurement sheets. Companies hand in one xlsx per
// order with a header row (emp id, employee name, department) plus whatever
// garment columns their uniforms need; unknown columns are kept as open
// extension fields on the measurement.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"threadworks/internal/storage"
	"threadworks/internal/workflow"
)

const (
	ModeAdd     = "add"
	ModeReplace = "replace"
)

var (
	ErrEmptyFile      = errors.New("file contains no measurement rows")
	ErrMissingColumns = errors.New("file is missing the empId and employeeName columns")
	ErrBadMode        = errors.New("mode must be add or replace")
)

type Storage interface {
	GetOrder(ctx context.Context, id string) (*storage.Order, error)
	GetAllPhaseConfigs(ctx context.Context) ([]storage.PhaseConfig, error)
	AddMeasurements(ctx context.Context, measurements []storage.Measurement) error
	ReplaceMeasurements(ctx context.Context, orderID string, measurements []storage.Measurement) error
	GetMeasurementsByOrder(ctx context.Context, orderID string) ([]storage.Measurement, error)
	UpdateOrder(ctx context.Context, order *storage.Order) error
}

type Service struct {
	storage Storage
	now     func() time.Time
}

func NewService(s Storage) *Service {
	return &Service{storage: s, now: time.Now}
}

type Result struct {
	NumberOfAddedRecords int    `json:"numberOfAddedRecords"`
	Mode                 string `json:"mode"`
}

// ImportFile parses the sheet and attaches the rows to the order. Mode
// "replace" drops the order's existing measurements first; "add" appends.
// New measurements enter the order's current phase.
func (s *Service) ImportFile(ctx context.Context, orderID, companyID string, file io.Reader, mode string) (*Result, error) {
	const op = "service.upload.ImportFile"

	if mode == "" {
		mode = ModeAdd
	}
	if mode != ModeAdd && mode != ModeReplace {
		return nil, ErrBadMode
	}

	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	configs, err := s.storage.GetAllPhaseConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	phases := workflow.NewCatalog(configs).ForOrder(order)

	initialPhase := order.CurrentPhaseID
	if initialPhase == "" && len(phases) > 0 {
		initialPhase = phases[0].ID
	}

	measurements, err := parseSheet(file, orderID, companyID, initialPhase)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeReplace:
		err = s.storage.ReplaceMeasurements(ctx, orderID, measurements)
	case ModeAdd:
		err = s.storage.AddMeasurements(ctx, measurements)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	all, err := s.storage.GetMeasurementsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	order.TotalMeasurements = len(all)
	order.PhaseStates = workflow.RebuildPhaseStates(order, phases, all, s.now())
	if err := s.storage.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Result{NumberOfAddedRecords: len(measurements), Mode: mode}, nil
}

func parseSheet(file io.Reader, orderID, companyID, initialPhase string) ([]storage.Measurement, error) {
	const op = "service.upload.parseSheet"

	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyFile
	}

	header := rows[0]
	empIDCol, nameCol := -1, -1
	deptCol := -1
	for i, h := range header {
		switch normalizeHeader(h) {
		case "empid", "employeeid":
			empIDCol = i
		case "employeename", "name":
			nameCol = i
		case "department", "dept":
			deptCol = i
		}
	}
	if empIDCol < 0 || nameCol < 0 {
		return nil, ErrMissingColumns
	}

	var measurements []storage.Measurement
	for _, row := range rows[1:] {
		if cell(row, empIDCol) == "" && cell(row, nameCol) == "" {
			continue
		}
		m := storage.Measurement{
			ID:             uuid.NewString(),
			OrderID:        orderID,
			CompanyID:      companyID,
			EmpID:          cell(row, empIDCol),
			EmployeeName:   cell(row, nameCol),
			CurrentPhaseID: initialPhase,
		}
		if deptCol >= 0 {
			m.Department = cell(row, deptCol)
		}
		for i, h := range header {
			if i == empIDCol || i == nameCol || i == deptCol {
				continue
			}
			key := strings.TrimSpace(h)
			value := cell(row, i)
			if key == "" || value == "" {
				continue
			}
			if m.Extra == nil {
				m.Extra = map[string]any{}
			}
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				m.Extra[key] = n
			} else {
				m.Extra[key] = value
			}
		}
		measurements = append(measurements, m)
	}
	if len(measurements) == 0 {
		return nil, ErrEmptyFile
	}

	return measurements, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
