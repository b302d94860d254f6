// Package report renders an order's measurement roster as an xlsx workbook:
// one row per measurement with its current phase and status, plus a
// per-phase occupancy block at the bottom for the floor supervisor.
package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"threadworks/internal/storage"
	"threadworks/internal/workflow"
)

type ReportStorage interface {
	GetOrder(ctx context.Context, id string) (*storage.Order, error)
	GetAllPhaseConfigs(ctx context.Context) ([]storage.PhaseConfig, error)
	GetMeasurementsByOrder(ctx context.Context, orderID string) ([]storage.Measurement, error)
}

type Service struct {
	storage ReportStorage
}

func NewService(s ReportStorage) *Service {
	return &Service{storage: s}
}

func (s *Service) GenerateOrderReport(ctx context.Context, orderID string) ([]byte, error) {
	const op = "service.report.GenerateOrderReport"

	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	configs, err := s.storage.GetAllPhaseConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	phases := workflow.NewCatalog(configs).ForOrder(order)
	measurements, err := s.storage.GetMeasurementsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	phaseNames := map[string]string{}
	for _, p := range phases {
		phaseNames[p.ID] = p.PhaseName
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Order Report"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	headers := []string{"Emp ID", "Employee", "Department", "Current Phase", "Completed Phases"}
	for i, h := range headers {
		c, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, c, h)
		f.SetCellStyle(sheet, c, c, headerStyle)
	}

	row := 2
	for _, m := range measurements {
		phaseName := phaseNames[m.CurrentPhaseID]
		if phaseName == "" {
			phaseName = m.CurrentPhaseID
		}
		values := []any{m.EmpID, m.EmployeeName, m.Department, phaseName, len(m.CompletedPhaseIDs)}
		for i, v := range values {
			c, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, c, v)
		}
		row++
	}

	// Occupancy block.
	row++
	c, _ := excelize.CoordinatesToCellName(1, row)
	f.SetCellValue(sheet, c, "Phase")
	f.SetCellStyle(sheet, c, c, headerStyle)
	c, _ = excelize.CoordinatesToCellName(2, row)
	f.SetCellValue(sheet, c, "Measurements")
	f.SetCellStyle(sheet, c, c, headerStyle)
	c, _ = excelize.CoordinatesToCellName(3, row)
	f.SetCellValue(sheet, c, "Status")
	f.SetCellStyle(sheet, c, c, headerStyle)
	row++
	for _, p := range phases {
		c, _ = excelize.CoordinatesToCellName(1, row)
		f.SetCellValue(sheet, c, p.PhaseName)
		c, _ = excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheet, c, workflow.MeasurementCount(order, p.ID))
		c, _ = excelize.CoordinatesToCellName(3, row)
		f.SetCellValue(sheet, c, string(workflow.ResolveStatus(p, order, phases)))
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}
