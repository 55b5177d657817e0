// Package testhelpers provides utilities for testing the quote generation
// app: a PocketBase instance on a temp dir and excelize-built workbook
// fixtures shaped like the production quote template.
package testhelpers

import (
	"fmt"
	"path/filepath"
	"sort"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"

	"quotegeneration/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// ConfigureQuoteSettings writes a quote_settings record pointing at the
// given storage dir and template, and returns the record.
func ConfigureQuoteSettings(t *testing.T, app *pocketbase.PocketBase, storageDir, templatePath string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quote_settings")
	if err != nil {
		t.Fatalf("failed to find quote_settings collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("storage_dir", storageDir)
	record.Set("template_path", templatePath)
	record.Set("template_label", "SolarQuote")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save quote settings: %v", err)
	}

	return record
}

// Manufacturer reference data baked into test templates.
var (
	PanelMakers = map[string][]string{
		"Longi":    {"Hi-MO 5 405W", "Hi-MO 6 425W"},
		"JA Solar": {"JAM54S30 410", "JAM54D40 435"},
	}
	BatteryMakers = map[string][]string{
		"GivEnergy": {"Giv-Bat 5.2", "Giv-Bat 9.5"},
		"Pylontech": {"US3000C", "US5000"},
	}
	SolarInverterMakers = map[string][]string{
		"S SolarEdge": {"SE3500H", "SE5000H"},
		"Solis":       {"S6-GR1P3.6K"},
	}
	BatteryInverterMakers = map[string][]string{
		"B GivEnergy": {"Giv-HY 3.6", "Giv-HY 5.0"},
	}
)

// BuildQuoteTemplate writes a quote template workbook into dir and returns
// its path. The layout matches the production template: a Quote input
// sheet plus manufacturer reference tables with headers on row 2 (the two
// inverter categories share a sheet, battery inverters from row 30).
func BuildQuoteTemplate(t *testing.T, dir string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), "Quote"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}

	// Input labels so the sheet resembles the real template.
	labels := map[string]string{
		"B4": "Customer Name", "B5": "Address", "B6": "Postcode", "B7": "Quote Date",
		"B10": "Tariff Type", "B11": "Day Rate", "B12": "Night Rate",
		"B13": "Standing Charge", "B14": "Annual Usage",
		"B17": "Existing Customer", "B22": "Panel Manufacturer", "B23": "Panel Model",
		"B32": "Number of Arrays", "B44": "Payment Method",
	}
	for cell, label := range labels {
		if err := f.SetCellValue("Quote", cell, label); err != nil {
			t.Fatalf("set label %s: %v", cell, err)
		}
	}

	writeTable(t, f, "Panels", 2, 3, PanelMakers)
	writeTable(t, f, "Batteries", 2, 3, BatteryMakers)
	writeTable(t, f, "Inverters", 2, 3, SolarInverterMakers)
	writeTable(t, f, "Inverters", 30, 31, BatteryInverterMakers)

	path := filepath.Join(dir, "SolarQuote-Template.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save template: %v", err)
	}
	return path
}

// writeTable lays one manufacturer reference table onto a sheet: maker
// names across headerRow starting at column B, models down each column
// from dataRow.
func writeTable(t *testing.T, f *excelize.File, sheet string, headerRow, dataRow int, makers map[string][]string) {
	t.Helper()

	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet %s: %v", sheet, err)
		}
	}

	colNum := 2 // column B
	// Stable column order for deterministic fixtures.
	names := make([]string, 0, len(makers))
	for name := range makers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		col, err := excelize.ColumnNumberToName(colNum)
		if err != nil {
			t.Fatalf("column name: %v", err)
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, headerRow), name); err != nil {
			t.Fatalf("write header %s: %v", name, err)
		}
		for i, model := range makers[name] {
			cell := fmt.Sprintf("%s%d", col, dataRow+i)
			if err := f.SetCellValue(sheet, cell, model); err != nil {
				t.Fatalf("write model %s: %v", model, err)
			}
		}
		colNum++
	}
}
