package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parte-diario/internal/storage"
)

var reportColumns = []string{
	"id", "fecha", "turno", "orden_compra", "observaciones",
	"contratista_id", "proyecto_id", "sector_id", "supervisor_id",
	"sector", "contratista", "proyecto", "supervisor",
}

var detailColumns = []string{"id", "formulario_id", "operario_id", "actividad_id", "horas", "operario", "actividad"}

func sampleInput() storage.ReportInput {
	return storage.ReportInput{
		Date:          storage.NewDate(2024, time.March, 5),
		Shift:         storage.ShiftDay,
		PurchaseOrder: "OC-55",
		Notes:         "sin novedades",
		ContractorID:  1,
		ProjectID:     2,
		SectorID:      3,
		SupervisorID:  4,
		Details: []storage.DetailInput{
			{OperatorID: 10, ActivityID: 20, Hours: decimal.NewFromInt(12)},
			{OperatorID: 11, ActivityID: 21, Hours: decimal.RequireFromString("7.5")},
		},
	}
}

func TestStorage_CreateReport(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO formularios_diarios").
		WithArgs("2024-03-05", "DIA", "OC-55", "sin novedades", int64(1), int64(2), int64(3), int64(4)).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("INSERT INTO detalles_actividad").
		WithArgs(
			int64(5), int64(10), int64(20), sqlmock.AnyArg(),
			int64(5), int64(11), int64(21), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	id, err := s.CreateReport(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Equal(t, int64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_CreateReport_RollsBackOnDetailFailure(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO formularios_diarios").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("INSERT INTO detalles_actividad").
		WillReturnError(&mysqldriver.MySQLError{Number: 1452, Message: "foreign key constraint fails"})
	mock.ExpectRollback()

	_, err := s.CreateReport(context.Background(), sampleInput())
	assert.ErrorIs(t, err, storage.ErrInvalidReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_CreateReport_HoursOutOfRange(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO formularios_diarios").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("INSERT INTO detalles_actividad").
		WillReturnError(&mysqldriver.MySQLError{Number: 1264, Message: "Out of range value for column 'horas'"})
	mock.ExpectRollback()

	_, err := s.CreateReport(context.Background(), sampleInput())
	assert.ErrorIs(t, err, storage.ErrOutOfRange)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_UpdateReport(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM formularios_diarios WHERE id = ? FOR UPDATE`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM detalles_actividad WHERE formulario_id = ?`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE formularios_diarios SET").
		WithArgs("2024-03-05", "DIA", "OC-55", "sin novedades", int64(1), int64(2), int64(3), int64(4), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO detalles_actividad").
		WithArgs(
			int64(7), int64(10), int64(20), sqlmock.AnyArg(),
			int64(7), int64(11), int64(21), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, s.UpdateReport(context.Background(), 7, sampleInput()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failure after the old details were deleted must not commit anything.
func TestStorage_UpdateReport_FailureAfterDeleteRollsBack(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM formularios_diarios WHERE id = ? FOR UPDATE`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM detalles_actividad WHERE formulario_id = ?`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE formularios_diarios SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO detalles_actividad").
		WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	err := s.UpdateReport(context.Background(), 7, sampleInput())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_UpdateReport_NotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM formularios_diarios WHERE id = ? FOR UPDATE`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := s.UpdateReport(context.Background(), 404, sampleInput())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func reportRows() *sqlmock.Rows {
	return sqlmock.NewRows(reportColumns)
}

func TestStorage_GetReport(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE f.id = ?`)).
		WithArgs(int64(7)).
		WillReturnRows(reportRows().AddRow(
			7, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), "NOCHE", "", "",
			1, 2, 3, 4, "Planta", "Minera SA", "Expansion", "Perez",
		))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE d.formulario_id IN (?) ORDER BY d.id ASC`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(detailColumns).
			AddRow(1, 7, 10, 20, "8.00", "Ana Gomez", "Perforacion").
			AddRow(2, 7, 11, 21, "4.50", "Luis Diaz", "Voladura"))

	r, err := s.GetReport(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), r.ID)
	assert.Equal(t, storage.ShiftNight, r.Shift)
	assert.Equal(t, "05/03/2024", r.Date.Display())
	assert.Equal(t, "Planta", r.Sector.Name)
	assert.Equal(t, "Minera SA", r.Contractor.Name)
	assert.Equal(t, "Expansion", r.Project.Name)
	assert.Equal(t, "Perez", r.Supervisor.Name)
	require.Len(t, r.Details, 2)
	assert.Equal(t, "Ana Gomez", r.Details[0].Operator.Name)
	assert.Equal(t, "Voladura", r.Details[1].Activity.Name)
	assert.Equal(t, "12.5", r.TotalHours().String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetReport_NotFound(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE f.id = ?`)).
		WithArgs(int64(404)).
		WillReturnRows(reportRows())
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE d.formulario_id IN (?)`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(detailColumns))

	_, err := s.GetReport(context.Background(), 404)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_SearchReports_NumericQuery(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE f.id = ? OR sp.nombre LIKE ? OR f.observaciones LIKE ? ORDER BY f.fecha DESC, f.id DESC LIMIT 50`)).
		WithArgs(int64(7), "%7%", "%7%").
		WillReturnRows(reportRows().
			AddRow(17, time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), "DIA", "", "camion 7 en taller",
				1, 2, 3, 4, "Planta", "Minera SA", "Expansion", "Perez").
			AddRow(7, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), "DIA", "", "",
				1, 2, 3, 4, "Planta", "Minera SA", "Expansion", "Perez"))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE d.formulario_id IN (?,?) ORDER BY d.id ASC`)).
		WithArgs(int64(17), int64(7)).
		WillReturnRows(sqlmock.NewRows(detailColumns).
			AddRow(1, 7, 10, 20, "8", "Ana Gomez", "Perforacion"))

	reports, err := s.SearchReports(context.Background(), "7")
	require.NoError(t, err)

	require.Len(t, reports, 2)
	assert.Equal(t, int64(17), reports[0].ID)
	assert.NotNil(t, reports[0].Details)
	assert.Empty(t, reports[0].Details)
	assert.Len(t, reports[1].Details, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_SearchReports_TextQuerySkipsIDBranch(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN supervisores sp ON sp.id = f.supervisor_id WHERE sp.nombre LIKE ? OR f.observaciones LIKE ? ORDER BY`)).
		WithArgs(`%50\%%`, `%50\%%`).
		WillReturnRows(reportRows())

	reports, err := s.SearchReports(context.Background(), "50%")
	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_SearchReports_EmptyQueryMatchesAll(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE sp.nombre LIKE ? OR f.observaciones LIKE ? ORDER BY f.fecha DESC, f.id DESC LIMIT 50`)).
		WithArgs("%%", "%%").
		WillReturnRows(reportRows())

	_, err := s.SearchReports(context.Background(), "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_ReportsInRange(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE f.fecha BETWEEN ? AND ? ORDER BY f.fecha ASC, f.id ASC`)).
		WithArgs("2024-03-01", "2024-03-31").
		WillReturnRows(reportRows().
			AddRow(3, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), "DIA", "", "",
				1, 2, 3, 4, "Planta", "Minera SA", "Expansion", "Perez"))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE d.formulario_id IN (?)`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(detailColumns).
			AddRow(1, 3, 10, 20, "6", "Ana Gomez", "Perforacion").
			AddRow(2, 3, 11, 20, "6", "Luis Diaz", "Perforacion"))

	reports, err := s.ReportsInRange(context.Background(), storage.DateRange{
		From: storage.NewDate(2024, time.March, 1),
		To:   storage.NewDate(2024, time.March, 31),
	})
	require.NoError(t, err)

	require.Len(t, reports, 1)
	assert.Equal(t, "12", reports[0].TotalHours().String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNumericID(t *testing.T) {
	cases := []struct {
		in   string
		id   int64
		isID bool
	}{
		{"7", 7, true},
		{" 42 ", 42, true},
		{"1e2", 100, true},
		{"7.5", 0, false},
		{"", 0, false},
		{"perez", 0, false},
		{"NaN", 0, false},
	}

	for _, tc := range cases {
		id, ok := numericID(tc.in)
		assert.Equal(t, tc.isID, ok, tc.in)
		assert.Equal(t, tc.id, id, tc.in)
	}
}
