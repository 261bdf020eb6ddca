package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"parte-diario/internal/storage"
)

const reportSelect = `
	SELECT f.id, f.fecha, f.turno, COALESCE(f.orden_compra, ''), COALESCE(f.observaciones, ''),
	       f.contratista_id, f.proyecto_id, f.sector_id, f.supervisor_id,
	       s.nombre, c.nombre, p.nombre, sp.nombre
	FROM formularios_diarios f
	JOIN sectores s ON s.id = f.sector_id
	JOIN contratistas c ON c.id = f.contratista_id
	JOIN proyectos p ON p.id = f.proyecto_id
	JOIN supervisores sp ON sp.id = f.supervisor_id`

const detailSelect = `
	SELECT d.id, d.formulario_id, d.operario_id, d.actividad_id, d.horas, o.nombre, a.nombre
	FROM detalles_actividad d
	JOIN operarios o ON o.id = d.operario_id
	JOIN actividades a ON a.id = d.actividad_id`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *Storage) CreateReport(ctx context.Context, in storage.ReportInput) (int64, error) {
	const op = "storage.mysql.CreateReport"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO formularios_diarios
		(fecha, turno, orden_compra, observaciones, contratista_id, proyecto_id, sector_id, supervisor_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Date, in.Shift, nullIfEmpty(in.PurchaseOrder), in.Notes,
		in.ContractorID, in.ProjectID, in.SectorID, in.SupervisorID,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: insert header: %w", op, translate(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	if err := insertDetails(ctx, tx, id, in.Details); err != nil {
		return 0, fmt.Errorf("%s: report id=%d: %w", op, id, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return id, nil
}

// UpdateReport replaces the header and every detail row of a report in one
// transaction. The header row is locked first so concurrent updates of the
// same report run one after another.
func (s *Storage) UpdateReport(ctx context.Context, id int64, in storage.ReportInput) error {
	const op = "storage.mysql.UpdateReport"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var locked int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM formularios_diarios WHERE id = ? FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: report id=%d: %w", op, id, storage.ErrNotFound)
		}
		return fmt.Errorf("%s: lock report id=%d: %w", op, id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM detalles_actividad WHERE formulario_id = ?`, id); err != nil {
		return fmt.Errorf("%s: delete details of report id=%d: %w", op, id, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE formularios_diarios
		SET fecha = ?, turno = ?, orden_compra = ?, observaciones = ?,
		    contratista_id = ?, proyecto_id = ?, sector_id = ?, supervisor_id = ?
		WHERE id = ?`,
		in.Date, in.Shift, nullIfEmpty(in.PurchaseOrder), in.Notes,
		in.ContractorID, in.ProjectID, in.SectorID, in.SupervisorID, id,
	)
	if err != nil {
		return fmt.Errorf("%s: update header id=%d: %w", op, id, translate(err))
	}

	if err := insertDetails(ctx, tx, id, in.Details); err != nil {
		return fmt.Errorf("%s: report id=%d: %w", op, id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

func insertDetails(ctx context.Context, tx *sql.Tx, reportID int64, details []storage.DetailInput) error {
	if len(details) == 0 {
		return nil
	}

	values := make([]string, 0, len(details))
	args := make([]interface{}, 0, len(details)*4)
	for _, d := range details {
		values = append(values, "(?, ?, ?, ?)")
		args = append(args, reportID, d.OperatorID, d.ActivityID, d.Hours)
	}

	query := `INSERT INTO detalles_actividad (formulario_id, operario_id, actividad_id, horas) VALUES ` +
		strings.Join(values, ", ")

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert details: %w", translate(err))
	}

	return nil
}

// GetReport loads the header and the details of one report concurrently.
func (s *Storage) GetReport(ctx context.Context, id int64) (*storage.Report, error) {
	const op = "storage.mysql.GetReport"

	var (
		report  *storage.Report
		details map[int64][]storage.Detail
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := scanReport(s.db.QueryRowContext(gCtx, reportSelect+` WHERE f.id = ?`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("header: %w", err)
		}
		report = r
		return nil
	})
	g.Go(func() error {
		var err error
		details, err = loadDetails(gCtx, s.db, []int64{id})
		if err != nil {
			return fmt.Errorf("details: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: report id=%d: %w", op, id, err)
	}

	report.Details = orEmpty(details[id])

	return report, nil
}

// SearchReports matches the report id (numeric queries only), the supervisor
// name or the notes. The branches are OR-ed, so a numeric query also matches
// by substring.
func (s *Storage) SearchReports(ctx context.Context, q string) ([]storage.Report, error) {
	const op = "storage.mysql.SearchReports"

	like := "%" + escapeLike(q) + "%"
	where := `sp.nombre LIKE ? OR f.observaciones LIKE ?`
	args := []interface{}{like, like}

	if id, ok := numericID(q); ok {
		where = `f.id = ? OR ` + where
		args = append([]interface{}{id}, args...)
	}

	query := reportSelect + ` WHERE ` + where + ` ORDER BY f.fecha DESC, f.id DESC LIMIT ` + strconv.Itoa(storage.SearchLimit)

	reports, err := s.queryReports(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: q=%q: %w", op, q, err)
	}

	return reports, nil
}

// ReportsInRange returns reports dated within [From, To], oldest first.
func (s *Storage) ReportsInRange(ctx context.Context, rng storage.DateRange) ([]storage.Report, error) {
	const op = "storage.mysql.ReportsInRange"

	query := reportSelect + ` WHERE f.fecha BETWEEN ? AND ? ORDER BY f.fecha ASC, f.id ASC`

	reports, err := s.queryReports(ctx, query, rng.From, rng.To)
	if err != nil {
		return nil, fmt.Errorf("%s: %s..%s: %w", op, rng.From, rng.To, err)
	}

	return reports, nil
}

func (s *Storage) queryReports(ctx context.Context, query string, args ...interface{}) ([]storage.Report, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]storage.Report, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		reports = append(reports, *r)
		ids = append(ids, r.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(ids) == 0 {
		return reports, nil
	}

	details, err := loadDetails(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("details: %w", err)
	}
	for i := range reports {
		reports[i].Details = orEmpty(details[reports[i].ID])
	}

	return reports, nil
}

func scanReport(row scanner) (*storage.Report, error) {
	var (
		r storage.Report

		sector, contractor, project, supervisor string
	)

	err := row.Scan(
		&r.ID, &r.Date, &r.Shift, &r.PurchaseOrder, &r.Notes,
		&r.ContractorID, &r.ProjectID, &r.SectorID, &r.SupervisorID,
		&sector, &contractor, &project, &supervisor,
	)
	if err != nil {
		return nil, err
	}

	r.Sector = &storage.CatalogItem{ID: r.SectorID, Name: sector}
	r.Contractor = &storage.CatalogItem{ID: r.ContractorID, Name: contractor}
	r.Project = &storage.CatalogItem{ID: r.ProjectID, Name: project}
	r.Supervisor = &storage.CatalogItem{ID: r.SupervisorID, Name: supervisor}

	return &r, nil
}

func loadDetails(ctx context.Context, q queryer, reportIDs []int64) (map[int64][]storage.Detail, error) {
	query := detailSelect + ` WHERE d.formulario_id IN (` + placeholders(len(reportIDs)) + `) ORDER BY d.id ASC`

	rows, err := q.QueryContext(ctx, query, toInterfaceSlice(reportIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byReport := make(map[int64][]storage.Detail, len(reportIDs))
	for rows.Next() {
		var (
			d                  storage.Detail
			operator, activity string
		)
		if err := rows.Scan(&d.ID, &d.ReportID, &d.OperatorID, &d.ActivityID, &d.Hours, &operator, &activity); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		d.Operator = &storage.CatalogItem{ID: d.OperatorID, Name: operator}
		d.Activity = &storage.CatalogItem{ID: d.ActivityID, Name: activity}
		byReport[d.ReportID] = append(byReport[d.ReportID], d)
	}

	return byReport, rows.Err()
}

// numericID follows the loose number parsing of the web client: surrounding
// spaces are ignored and only integral values can match an id.
func numericID(q string) (int64, bool) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(q, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}

	return int64(f), true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func orEmpty(details []storage.Detail) []storage.Detail {
	if details == nil {
		return []storage.Detail{}
	}
	return details
}
