package request

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"parte-diario/internal/storage"
)

type Report struct {
	Date          string   `json:"fecha" validate:"required,datetime=2006-01-02"`
	Shift         string   `json:"turno" validate:"required,oneof=DIA NOCHE"`
	PurchaseOrder string   `json:"ordenCompra" validate:"max=120"`
	Notes         string   `json:"observaciones"`
	ContractorID  ID       `json:"contratistaId" validate:"gt=0"`
	ProjectID     ID       `json:"proyectoId" validate:"gt=0"`
	SectorID      ID       `json:"sectorId" validate:"gt=0"`
	SupervisorID  ID       `json:"supervisorId" validate:"gt=0"`
	Details       []Detail `json:"detalles" validate:"required,min=1,dive"`
}

// hours are stored as DECIMAL(12,4)
const hoursScale = 4

var maxHours = decimal.New(1, 8)

type Detail struct {
	OperatorID ID              `json:"operarioId" validate:"gt=0"`
	ActivityID ID              `json:"actividadId" validate:"gt=0"`
	Hours      decimal.Decimal `json:"horas" validate:"gt=0"`
}

func (r Report) Normalize() (storage.ReportInput, error) {
	// clients may send a full timestamp, only the date part is kept
	r.Date = strings.TrimSpace(r.Date)
	if len(r.Date) > len("2006-01-02") && strings.Contains(r.Date, "T") {
		r.Date = r.Date[:len("2006-01-02")]
	}
	r.Shift = strings.ToUpper(strings.TrimSpace(r.Shift))
	r.PurchaseOrder = strings.TrimSpace(r.PurchaseOrder)
	r.Notes = strings.TrimSpace(r.Notes)

	verr := structErrors(validate.Struct(r))
	for i, d := range r.Details {
		field := fmt.Sprintf("detalles[%d].horas", i)
		switch {
		case !d.Hours.Equal(d.Hours.Truncate(hoursScale)):
			verr.add(field, "scale")
		case d.Hours.GreaterThanOrEqual(maxHours):
			verr.add(field, "max")
		}
	}
	if err := verr.orNil(); err != nil {
		return storage.ReportInput{}, err
	}

	date, err := storage.ParseDate(r.Date)
	if err != nil {
		verr := &ValidationError{}
		verr.add("fecha", "datetime")
		return storage.ReportInput{}, verr
	}

	in := storage.ReportInput{
		Date:          date,
		Shift:         storage.Shift(r.Shift),
		PurchaseOrder: r.PurchaseOrder,
		Notes:         r.Notes,
		ContractorID:  int64(r.ContractorID),
		ProjectID:     int64(r.ProjectID),
		SectorID:      int64(r.SectorID),
		SupervisorID:  int64(r.SupervisorID),
		Details:       make([]storage.DetailInput, 0, len(r.Details)),
	}
	for _, d := range r.Details {
		in.Details = append(in.Details, storage.DetailInput{
			OperatorID: int64(d.OperatorID),
			ActivityID: int64(d.ActivityID),
			Hours:      d.Hours,
		})
	}

	return in, nil
}
