package upload

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"threadworks/internal/storage"
)

type fakeUploadStorage struct {
	order        *storage.Order
	configs      []storage.PhaseConfig
	measurements []storage.Measurement
	replaced     bool
}

func (f *fakeUploadStorage) GetOrder(ctx context.Context, id string) (*storage.Order, error) {
	if f.order == nil || f.order.ID != id {
		return nil, storage.ErrNotFound
	}
	cp := *f.order
	return &cp, nil
}

func (f *fakeUploadStorage) GetAllPhaseConfigs(ctx context.Context) ([]storage.PhaseConfig, error) {
	return f.configs, nil
}

func (f *fakeUploadStorage) AddMeasurements(ctx context.Context, measurements []storage.Measurement) error {
	f.measurements = append(f.measurements, measurements...)
	return nil
}

func (f *fakeUploadStorage) ReplaceMeasurements(ctx context.Context, orderID string, measurements []storage.Measurement) error {
	f.replaced = true
	f.measurements = append([]storage.Measurement{}, measurements...)
	return nil
}

func (f *fakeUploadStorage) GetMeasurementsByOrder(ctx context.Context, orderID string) ([]storage.Measurement, error) {
	return f.measurements, nil
}

func (f *fakeUploadStorage) UpdateOrder(ctx context.Context, order *storage.Order) error {
	cp := *order
	f.order = &cp
	return nil
}

func newUploadFixture() *fakeUploadStorage {
	return &fakeUploadStorage{
		order: &storage.Order{
			ID:             "o1",
			CompanyID:      "company-1",
			Status:         storage.OrderStatusInProgress,
			PhaseConfigIDs: []string{"A", "B"},
			CurrentPhaseID: "A",
		},
		configs: []storage.PhaseConfig{
			{ID: "A", PhaseName: "Cutting", SequenceOrder: 1, IsActive: true},
			{ID: "B", PhaseName: "Stitching", SequenceOrder: 2, IsActive: true},
		},
	}
}

func sheetWith(t *testing.T, header []string, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range header {
		c, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, c, h))
	}
	for r, row := range rows {
		for i, v := range row {
			c, err := excelize.CoordinatesToCellName(i+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, c, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportFile_Add(t *testing.T) {
	f := newUploadFixture()
	s := NewService(f)
	s.now = func() time.Time { return time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC) }

	buf := sheetWith(t,
		[]string{"Emp ID", "Employee Name", "Department", "Chest", "Sleeve Type"},
		[][]any{
			{"E01", "Asha", "Kitchen", 92.5, "full"},
			{"E02", "Manu", "Service", 88, "half"},
		},
	)

	result, err := s.ImportFile(context.Background(), "o1", "company-1", buf, ModeAdd)
	require.NoError(t, err)

	assert.Equal(t, 2, result.NumberOfAddedRecords)
	assert.Equal(t, ModeAdd, result.Mode)
	require.Len(t, f.measurements, 2)

	m := f.measurements[0]
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "o1", m.OrderID)
	assert.Equal(t, "E01", m.EmpID)
	assert.Equal(t, "Asha", m.EmployeeName)
	assert.Equal(t, "Kitchen", m.Department)
	// New rows enter the order's current phase.
	assert.Equal(t, "A", m.CurrentPhaseID)
	// Unknown columns land in Extra, numbers as numbers.
	assert.Equal(t, 92.5, m.Extra["Chest"])
	assert.Equal(t, "full", m.Extra["Sleeve Type"])

	// The order aggregate was refreshed.
	assert.Equal(t, 2, f.order.TotalMeasurements)
	require.NotEmpty(t, f.order.PhaseStates)
	assert.Equal(t, 2, f.order.PhaseStates[0].Count)
}

func TestImportFile_Replace(t *testing.T) {
	f := newUploadFixture()
	f.measurements = []storage.Measurement{{ID: "old", OrderID: "o1", CurrentPhaseID: "A"}}
	s := NewService(f)

	buf := sheetWith(t,
		[]string{"empid", "name"},
		[][]any{{"E09", "Rita"}},
	)

	result, err := s.ImportFile(context.Background(), "o1", "company-1", buf, ModeReplace)
	require.NoError(t, err)

	assert.True(t, f.replaced)
	assert.Equal(t, 1, result.NumberOfAddedRecords)
	require.Len(t, f.measurements, 1)
	assert.Equal(t, "Rita", f.measurements[0].EmployeeName)
}

func TestImportFile_Validation(t *testing.T) {
	f := newUploadFixture()
	s := NewService(f)

	_, err := s.ImportFile(context.Background(), "o1", "company-1", &bytes.Buffer{}, "upsert")
	assert.ErrorIs(t, err, ErrBadMode)

	// Header without the identity columns.
	buf := sheetWith(t, []string{"Chest", "Waist"}, [][]any{{90, 80}})
	_, err = s.ImportFile(context.Background(), "o1", "company-1", buf, ModeAdd)
	assert.ErrorIs(t, err, ErrMissingColumns)

	// Header only, no rows.
	buf = sheetWith(t, []string{"Emp ID", "Name"}, nil)
	_, err = s.ImportFile(context.Background(), "o1", "company-1", buf, ModeAdd)
	assert.ErrorIs(t, err, ErrEmptyFile)
}
