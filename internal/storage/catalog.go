package storage

// Catalog describes one reference table served under /api/{Slug}.
type Catalog struct {
	Slug  string
	Table string
	// HasSector marks catalogs whose rows belong to a sector (operators).
	HasSector bool
}

type CatalogItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"nombre"`
	SectorID *int64 `json:"sectorId,omitempty"`
}

type CatalogInput struct {
	Name     string
	SectorID int64
}

// CatalogFilter narrows a listing. Zero SectorID means no filter.
type CatalogFilter struct {
	SectorID int64
}
