package storage

import "github.com/shopspring/decimal"

type Shift string

const (
	ShiftDay   Shift = "DIA"
	ShiftNight Shift = "NOCHE"
)

// Report is the daily report header together with its detail rows.
type Report struct {
	ID            int64  `json:"id"`
	Date          Date   `json:"fecha"`
	Shift         Shift  `json:"turno"`
	PurchaseOrder string `json:"ordenCompra"`
	Notes         string `json:"observaciones"`
	ContractorID  int64  `json:"contratistaId"`
	ProjectID     int64  `json:"proyectoId"`
	SectorID      int64  `json:"sectorId"`
	SupervisorID  int64  `json:"supervisorId"`

	Sector     *CatalogItem `json:"sector,omitempty"`
	Contractor *CatalogItem `json:"contratista,omitempty"`
	Project    *CatalogItem `json:"proyecto,omitempty"`
	Supervisor *CatalogItem `json:"supervisor,omitempty"`

	Details []Detail `json:"detalles"`
}

type Detail struct {
	ID         int64           `json:"id"`
	ReportID   int64           `json:"formularioId"`
	OperatorID int64           `json:"operarioId"`
	ActivityID int64           `json:"actividadId"`
	Hours      decimal.Decimal `json:"horas"`

	Operator *CatalogItem `json:"operario,omitempty"`
	Activity *CatalogItem `json:"actividad,omitempty"`
}

func (r *Report) TotalHours() decimal.Decimal {
	total := decimal.Zero
	for _, d := range r.Details {
		total = total.Add(d.Hours)
	}
	return total
}

// OperatorCount is the number of detail rows, not distinct operators.
func (r *Report) OperatorCount() int {
	return len(r.Details)
}

// ReportInput is a validated create/update payload.
type ReportInput struct {
	Date          Date
	Shift         Shift
	PurchaseOrder string
	Notes         string
	ContractorID  int64
	ProjectID     int64
	SectorID      int64
	SupervisorID  int64
	Details       []DetailInput
}

type DetailInput struct {
	OperatorID int64
	ActivityID int64
	Hours      decimal.Decimal
}

type DateRange struct {
	From Date
	To   Date
}

const SearchLimit = 50
