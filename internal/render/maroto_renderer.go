// Package render produces the printable A4 rendition of an invoice or quote.
//
// Page layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: company name          │  INVOICE/QUOTE + identifier │
//	│  ───────────────────────────────────────────────────────────│
//	│  BILL TO: client name + email  │  issue date / due date      │
//	│  ───────────────────────────────────────────────────────────│
//	│  TABLE: Description | Qty | Unit price | Tax % | Amount      │
//	│  ───────────────────────────────────────────────────────────│
//	│  TOTALS: Subtotal / Tax / Discount / Total                   │
//	│  CLARIFICATION banner when the draft has open questions      │
//	│  NOTES + footer note                                         │
//	└─────────────────────────────────────────────────────────────┘
package render

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	mconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"billforge/internal/config"
	"billforge/internal/domain"
	"billforge/internal/money"
	"billforge/internal/port"
)

var (
	colorPrimary = &props.Color{Red: 38, Green: 70, Blue: 110}
	colorGray    = &props.Color{Red: 105, Green: 105, Blue: 105}
	colorAmber   = &props.Color{Red: 176, Green: 108, Blue: 0}
)

// MarotoRenderer implements port.DocumentRenderer using Maroto v2.
type MarotoRenderer struct {
	cfg config.PDFConfig
}

// NewRenderer creates a PDF renderer with the company details from config.
func NewRenderer(cfg config.PDFConfig) port.DocumentRenderer {
	return &MarotoRenderer{cfg: cfg}
}

// RenderDocument renders the document to PDF bytes.
func (r *MarotoRenderer) RenderDocument(doc *domain.Document) ([]byte, error) {
	cfg := mconfig.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.Identifier, true).
		WithAuthor(r.cfg.CompanyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(r.headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(r.partiesRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, itemRow := range tableItemRows(doc.Items) {
		m.AddRows(itemRow)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, totalRow := range totalsRows(doc) {
		m.AddRows(totalRow)
	}

	if doc.NeedsClarification {
		m.AddRows(line.NewRow(2))
		for _, qRow := range clarificationRows(doc.ClarificationQuestions) {
			m.AddRows(qRow)
		}
	}

	if doc.Notes != "" {
		m.AddRows(line.NewRow(2))
		m.AddRows(notesRow(doc.Notes))
	}

	if r.cfg.FooterNote != "" {
		m.AddRows(line.NewRow(3))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		m.AddRows(row.New(6).Add(col.New(12).Add(
			text.New(r.cfg.FooterNote, props.Text{Size: 7, Color: colorGray, Top: 2, Align: align.Center}),
		)))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", doc.Identifier, err)
	}
	return out.GetBytes(), nil
}

// headerRow: company name on the left, document label, identifier and status
// on the right.
func (r *MarotoRenderer) headerRow(doc *domain.Document) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(r.cfg.CompanyName, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 2,
			}),
			text.New(r.cfg.CompanyAddress, props.Text{
				Size: 8, Top: 11, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(docLabel(doc.Type), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 2,
			}),
			text.New(doc.Identifier, props.Text{
				Style: fontstyle.Bold, Size: 13, Align: align.Right, Top: 8,
			}),
			text.New(strings.ToUpper(string(doc.Status)), props.Text{
				Size: 8, Align: align.Right, Top: 16, Color: colorGray,
			}),
		),
	)
}

// partiesRow: bill-to block on the left, the two dates on the right.
func (r *MarotoRenderer) partiesRow(doc *domain.Document) core.Row {
	clientName := doc.ClientName
	if clientName == "" {
		clientName = "Unknown Client"
	}

	return row.New(16).Add(
		col.New(7).Add(
			text.New("BILL TO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(clientName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(doc.ClientEmail, props.Text{
				Size: 8, Top: 12, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Issue date: "+doc.IssueDate.Format("2006-01-02"), props.Text{
				Size: 8, Align: align.Right, Top: 6, Color: colorGray,
			}),
			text.New(dueLabel(doc.Type)+": "+doc.DueDate.Format("2006-01-02"), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Description", 5, align.Left),
		h("Qty", 1, align.Center),
		h("Unit price", 2, align.Right),
		h("Tax %", 1, align.Center),
		h("Amount", 3, align.Right),
	)
}

func tableItemRows(items domain.LineItems) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, row.New(7).Add(
			col.New(5).Add(text.New(
				item.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				item.Quantity,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				money.ParseAmount(item.UnitPrice).StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				item.TaxRate,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				item.Total,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return rows
}

// totalsRows: one row per totals line, right-aligned. The discount line only
// appears when a discount was applied.
func totalsRows(doc *domain.Document) []core.Row {
	totalLine := func(label, value string) core.Row {
		return row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
			})),
			col.New(3).Add(text.New(value, props.Text{
				Size: 9, Align: align.Right, Right: 1,
			})),
		)
	}

	rows := []core.Row{
		totalLine("Subtotal:", doc.Subtotal),
		totalLine("Tax:", doc.TaxAmount),
	}
	if money.ParseAmount(doc.Discount).Sign() > 0 {
		rows = append(rows, totalLine("Discount:", "-"+money.ParseAmount(doc.Discount).StringFixed(2)))
	}

	rows = append(rows, row.New(8).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Right: 2, Top: 1,
		})),
		col.New(3).Add(text.New(doc.Total, props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Right: 1, Top: 1,
		})),
	))
	return rows
}

// clarificationRows: amber banner listing the open questions on a draft that
// still needs clarification.
func clarificationRows(questions []string) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("DRAFT - NEEDS CLARIFICATION", props.Text{
				Style: fontstyle.Bold, Size: 9, Color: colorAmber, Top: 1,
			}),
		)),
	}
	for _, q := range questions {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("- "+q, props.Text{Size: 8, Color: colorAmber, Top: 1, Left: 2}),
		)))
	}
	return rows
}

func notesRow(notes string) core.Row {
	return row.New(12).Add(col.New(12).Add(
		text.New("Notes", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
		}),
		text.New(notes, props.Text{Size: 8, Top: 6, Color: colorGray}),
	))
}

func docLabel(t domain.DocumentType) string {
	if t == domain.DocumentTypeQuote {
		return "QUOTE"
	}
	return "INVOICE"
}

func dueLabel(t domain.DocumentType) string {
	if t == domain.DocumentTypeQuote {
		return "Valid until"
	}
	return "Due date"
}
