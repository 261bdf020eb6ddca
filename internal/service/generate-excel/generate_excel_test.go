package generate_excel

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"parte-diario/internal/storage"
)

type MockRangeStorage struct {
	mock.Mock
}

func (m *MockRangeStorage) ReportsInRange(ctx context.Context, rng storage.DateRange) ([]storage.Report, error) {
	args := m.Called(ctx, rng)
	if reports, ok := args.Get(0).([]storage.Report); ok {
		return reports, args.Error(1)
	}
	return nil, args.Error(1)
}

func report(id int64, day int, sector, supervisor string, hours ...string) storage.Report {
	r := storage.Report{
		ID:         id,
		Date:       storage.NewDate(2024, time.March, day),
		Shift:      storage.ShiftDay,
		Sector:     &storage.CatalogItem{ID: 3, Name: sector},
		Supervisor: &storage.CatalogItem{ID: 4, Name: supervisor},
		Details:    []storage.Detail{},
	}
	for _, h := range hours {
		r.Details = append(r.Details, storage.Detail{Hours: decimal.RequireFromString(h)})
	}
	return r
}

func TestGenerateExcel(t *testing.T) {
	rng := storage.DateRange{From: storage.NewDate(2024, time.March, 1), To: storage.NewDate(2024, time.March, 31)}

	st := new(MockRangeStorage)
	st.On("ReportsInRange", mock.Anything, rng).Return([]storage.Report{
		report(3, 5, "Planta Norte", "Perez", "8", "4.5"),
		report(9, 6, "Mina", "Gomez"),
	}, nil)

	b, err := NewGenerateService(st).GenerateExcel(context.Background(), rng)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"ID", "FECHA", "SECTOR", "TURNO", "OPERARIOS", "HORAS", "SUPERVISOR"}, rows[0])
	assert.Equal(t, []string{"3", "05/03/2024", "PLANTA NORTE", "DIA", "2", "12.5", "PEREZ"}, rows[1])
	assert.Equal(t, []string{"9", "06/03/2024", "MINA", "DIA", "0", "0", "GOMEZ"}, rows[2])

	styleID, err := f.GetCellStyle(sheet, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	st.AssertExpectations(t)
}

func TestGenerateExcel_StorageError(t *testing.T) {
	st := new(MockRangeStorage)
	st.On("ReportsInRange", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewGenerateService(st).GenerateExcel(context.Background(), storage.DateRange{})
	assert.Error(t, err)
}
