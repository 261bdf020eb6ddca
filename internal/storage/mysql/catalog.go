package mysql

import (
	"context"
	"fmt"

	"parte-diario/internal/storage"
)

func (s *Storage) ListCatalog(ctx context.Context, c storage.Catalog, filter storage.CatalogFilter) ([]storage.CatalogItem, error) {
	const op = "storage.mysql.ListCatalog"

	var (
		query string
		args  []interface{}
	)

	if c.HasSector {
		query = `SELECT id, nombre, sector_id FROM ` + c.Table
		if filter.SectorID != 0 {
			query += ` WHERE sector_id = ?`
			args = append(args, filter.SectorID)
		}
	} else {
		query = `SELECT id, nombre FROM ` + c.Table
	}
	query += ` ORDER BY nombre ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, c.Slug, err)
	}
	defer rows.Close()

	items := make([]storage.CatalogItem, 0)
	for rows.Next() {
		var item storage.CatalogItem
		if c.HasSector {
			var sectorID int64
			if err := rows.Scan(&item.ID, &item.Name, &sectorID); err != nil {
				return nil, fmt.Errorf("%s: %s: scan: %w", op, c.Slug, err)
			}
			item.SectorID = &sectorID
		} else if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, fmt.Errorf("%s: %s: scan: %w", op, c.Slug, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, c.Slug, err)
	}

	return items, nil
}

func (s *Storage) CreateCatalogItem(ctx context.Context, c storage.Catalog, in storage.CatalogInput) (storage.CatalogItem, error) {
	const op = "storage.mysql.CreateCatalogItem"

	var (
		query string
		args  []interface{}
	)

	if c.HasSector {
		query = `INSERT INTO ` + c.Table + ` (nombre, sector_id) VALUES (?, ?)`
		args = []interface{}{in.Name, in.SectorID}
	} else {
		query = `INSERT INTO ` + c.Table + ` (nombre) VALUES (?)`
		args = []interface{}{in.Name}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.CatalogItem{}, fmt.Errorf("%s: %s: %w", op, c.Slug, translate(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return storage.CatalogItem{}, fmt.Errorf("%s: %s: last insert id: %w", op, c.Slug, err)
	}

	item := storage.CatalogItem{ID: id, Name: in.Name}
	if c.HasSector {
		sectorID := in.SectorID
		item.SectorID = &sectorID
	}

	return item, nil
}

func (s *Storage) DeleteCatalogItem(ctx context.Context, c storage.Catalog, id int64) error {
	const op = "storage.mysql.DeleteCatalogItem"

	res, err := s.db.ExecContext(ctx, `DELETE FROM `+c.Table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %s id=%d: %w", op, c.Slug, id, translate(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %s id=%d: rows affected: %w", op, c.Slug, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %s id=%d: %w", op, c.Slug, id, storage.ErrNotFound)
	}

	return nil
}
