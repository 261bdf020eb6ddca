package request

import (
	"strings"

	"parte-diario/internal/storage"
)

type Catalog struct {
	Name     string `json:"nombre" validate:"required,max=120"`
	SectorID ID     `json:"sectorId"`
}

// Normalize validates the payload for catalog c. The sector is required only
// for catalogs whose rows belong to a sector.
func (r Catalog) Normalize(c storage.Catalog) (storage.CatalogInput, error) {
	r.Name = strings.TrimSpace(r.Name)

	verr := structErrors(validate.Struct(r))
	if c.HasSector && r.SectorID <= 0 {
		verr.add("sectorId", "required")
	}
	if err := verr.orNil(); err != nil {
		return storage.CatalogInput{}, err
	}

	in := storage.CatalogInput{Name: r.Name}
	if c.HasSector {
		in.SectorID = int64(r.SectorID)
	}

	return in, nil
}
