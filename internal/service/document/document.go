package document

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"parte-diario/internal/storage"
)

//go:embed templates/report.html
var templates embed.FS

const (
	emptyNotes         = "Sin observaciones."
	emptyPurchaseOrder = "-"
)

type ReportGetter interface {
	GetReport(ctx context.Context, id int64) (*storage.Report, error)
}

// DocumentService renders a single report as a printable HTML page.
type DocumentService struct {
	storage ReportGetter
	tmpl    *template.Template
}

func NewDocumentService(storage ReportGetter) *DocumentService {
	return &DocumentService{
		storage: storage,
		tmpl:    template.Must(template.ParseFS(templates, "templates/report.html")),
	}
}

type reportView struct {
	ID            int64
	Date          string
	Shift         string
	Sector        string
	Supervisor    string
	Project       string
	Contractor    string
	PurchaseOrder string
	Notes         string
	Rows          []detailView
	TotalHours    string
}

type detailView struct {
	Operator string
	Activity string
	Hours    string
}

func (d *DocumentService) Render(ctx context.Context, id int64) ([]byte, error) {
	const op = "service.document.Render"

	report, err := d.storage.GetReport(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var buf bytes.Buffer
	if err := d.tmpl.Execute(&buf, newReportView(report)); err != nil {
		return nil, fmt.Errorf("%s: execute template: %w", op, err)
	}

	return buf.Bytes(), nil
}

func newReportView(r *storage.Report) reportView {
	v := reportView{
		ID:            r.ID,
		Date:          r.Date.Display(),
		Shift:         string(r.Shift),
		Sector:        name(r.Sector),
		Supervisor:    name(r.Supervisor),
		Project:       name(r.Project),
		Contractor:    name(r.Contractor),
		PurchaseOrder: r.PurchaseOrder,
		Notes:         r.Notes,
		Rows:          make([]detailView, 0, len(r.Details)),
		TotalHours:    r.TotalHours().String(),
	}

	if v.PurchaseOrder == "" {
		v.PurchaseOrder = emptyPurchaseOrder
	}
	if v.Notes == "" {
		v.Notes = emptyNotes
	}

	for _, d := range r.Details {
		v.Rows = append(v.Rows, detailView{
			Operator: name(d.Operator),
			Activity: name(d.Activity),
			Hours:    d.Hours.String(),
		})
	}

	return v
}

func name(item *storage.CatalogItem) string {
	if item == nil {
		return ""
	}
	return item.Name
}
