package services

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// QuoteLine is one label/value pair on the exported quote.
type QuoteLine struct {
	Label string
	Value string
}

// QuoteSection groups related lines under a heading.
type QuoteSection struct {
	Title string
	Lines []QuoteLine
}

// QuoteExportData is everything rendered onto the quote PDF.
type QuoteExportData struct {
	OpportunityID string
	CustomerName  string
	Address       string
	Postcode      string
	Sections      []QuoteSection
	GeneratedAt   time.Time
}

// exportSections maps registry fields onto the PDF's section layout.
var exportSections = []struct {
	Title  string
	Fields []string
}{
	{"Tariff", []string{"tariff_type", "day_rate", "night_rate", "standing_charge", "annual_usage_kwh"}},
	{"Equipment", []string{"panel_manufacturer", "panel_model", "panel_warranty_years",
		"inverter_manufacturer", "inverter_model",
		"battery_manufacturer", "battery_model", "battery_warranty_years"}},
	{"Payment", []string{"payment_method", "deposit_amount", "finance_term_months", "finance_apr"}},
}

// exportLabels are the human labels used on the PDF; field IDs not listed
// fall back to their ID.
var exportLabels = map[string]string{
	"tariff_type":            "Tariff Type",
	"day_rate":               "Day Rate (p/kWh)",
	"night_rate":             "Night Rate (p/kWh)",
	"standing_charge":        "Standing Charge (p/day)",
	"annual_usage_kwh":       "Annual Usage (kWh)",
	"panel_manufacturer":     "Panel Manufacturer",
	"panel_model":            "Panel Model",
	"panel_warranty_years":   "Panel Warranty (years)",
	"inverter_manufacturer":  "Inverter Manufacturer",
	"inverter_model":         "Inverter Model",
	"battery_manufacturer":   "Battery Manufacturer",
	"battery_model":          "Battery Model",
	"battery_warranty_years": "Battery Warranty (years)",
	"payment_method":         "Payment Method",
	"deposit_amount":         "Deposit",
	"finance_term_months":    "Finance Term (months)",
	"finance_apr":            "Finance APR (%)",
}

// BuildQuoteExport reads the populated workbook into the flat structure
// the PDF renderer consumes. Blank fields are left off the document.
func BuildQuoteExport(s *WorkbookSession, opportunityID string) (QuoteExportData, error) {
	readField := func(id string) (string, error) {
		f, err := ResolveField(id)
		if err != nil {
			return "", err
		}
		return s.ReadCell(f.Ref)
	}

	data := QuoteExportData{
		OpportunityID: opportunityID,
		GeneratedAt:   time.Now(),
	}
	var err error
	if data.CustomerName, err = readField("customer_name"); err != nil {
		return QuoteExportData{}, err
	}
	if data.Address, err = readField("customer_address"); err != nil {
		return QuoteExportData{}, err
	}
	if data.Postcode, err = readField("customer_postcode"); err != nil {
		return QuoteExportData{}, err
	}

	for _, sec := range exportSections {
		section := QuoteSection{Title: sec.Title}
		for _, id := range sec.Fields {
			v, err := readField(id)
			if err != nil {
				return QuoteExportData{}, err
			}
			if v == "" {
				continue
			}
			label := exportLabels[id]
			if label == "" {
				label = id
			}
			section.Lines = append(section.Lines, QuoteLine{Label: label, Value: v})
		}
		if len(section.Lines) > 0 {
			data.Sections = append(data.Sections, section)
		}
	}

	// Arrays render as one line each.
	arrays := QuoteSection{Title: "Solar Arrays"}
	for n := 1; n <= MaxArrays; n++ {
		var parts []string
		for _, f := range ArrayFields(n) {
			v, err := s.ReadCell(f.Ref)
			if err != nil {
				return QuoteExportData{}, err
			}
			parts = append(parts, v)
		}
		if parts[0] == "" {
			continue
		}
		arrays.Lines = append(arrays.Lines, QuoteLine{
			Label: fmt.Sprintf("Array %d", n),
			Value: fmt.Sprintf("%s panels, orientation %s, pitch %s, shading %s", parts[0], parts[1], parts[2], parts[3]),
		})
	}
	if len(arrays.Lines) > 0 {
		data.Sections = append(data.Sections, arrays)
	}

	return data, nil
}

// GenerateQuotePDF renders the quote summary using maroto/v2 and returns
// the raw PDF bytes.
func GenerateQuotePDF(data QuoteExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addQuoteHeader(m, data)
	for _, section := range data.Sections {
		addQuoteSection(m, section)
	}
	addQuoteFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// addQuoteHeader adds the title and customer identity block.
func addQuoteHeader(m core.Maroto, data QuoteExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New("Solar Installation Quote", props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	grey := &props.Color{Red: 80, Green: 80, Blue: 80}
	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Opportunity: %s", data.OpportunityID), props.Text{
					Size: 9, Align: align.Left, Color: grey,
				}),
			),
			col.New(6).Add(
				text.New(data.GeneratedAt.Format("02 Jan 2006"), props.Text{
					Size: 9, Align: align.Right, Color: grey,
				}),
			),
		),
	)

	m.AddRows(
		row.New(7).Add(
			col.New(12).Add(
				text.New(data.CustomerName, props.Text{Size: 10, Style: fontstyle.Bold}),
			),
		),
		row.New(6).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("%s, %s", data.Address, data.Postcode), props.Text{Size: 9}),
			),
		),
	)

	// Spacer
	m.AddRows(row.New(4))
}

// addQuoteSection adds one heading plus its label/value rows.
func addQuoteSection(m core.Maroto, section QuoteSection) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(section.Title, props.Text{
					Size:  8,
					Style: fontstyle.Bold,
					Align: align.Left,
					Color: &props.Color{Red: 255, Green: 255, Blue: 255},
				}),
			).WithStyle(&props.Cell{BackgroundColor: headerBg}),
		),
	)

	stripe := &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
	for i, line := range section.Lines {
		labelCol := col.New(5).Add(text.New(line.Label, props.Text{Size: 8, Align: align.Left}))
		valueCol := col.New(7).Add(text.New(line.Value, props.Text{Size: 8, Align: align.Right}))
		if i%2 == 1 {
			labelCol = labelCol.WithStyle(stripe)
			valueCol = valueCol.WithStyle(stripe)
		}
		m.AddRows(row.New(6).Add(labelCol, valueCol))
	}

	m.AddRows(row.New(3))
}

// addQuoteFooter adds the generated-date line at the bottom.
func addQuoteFooter(m core.Maroto, data QuoteExportData) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", data.GeneratedAt.Format("02 Jan 2006 15:04")),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}
