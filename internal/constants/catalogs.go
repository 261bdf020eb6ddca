package constants

import "parte-diario/internal/storage"

var (
	Sectors     = storage.Catalog{Slug: "sectores", Table: "sectores"}
	Contractors = storage.Catalog{Slug: "contratistas", Table: "contratistas"}
	Projects    = storage.Catalog{Slug: "proyectos", Table: "proyectos"}
	Supervisors = storage.Catalog{Slug: "supervisores", Table: "supervisores"}
	Operators   = storage.Catalog{Slug: "operarios", Table: "operarios", HasSector: true}
	Activities  = storage.Catalog{Slug: "actividades", Table: "actividades"}

	// Catalogs in the order the admin screen shows them.
	Catalogs = []storage.Catalog{Sectors, Contractors, Projects, Supervisors, Operators, Activities}
)

