package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// defaultSettings are the quote_settings values written on first boot.
// Deployments point storage_dir and template_path at the shared quote
// store before generating anything real.
var defaultSettings = map[string]any{
	"storage_dir":    "./quote_data/quotes",
	"template_path":  "./quote_data/SolarQuote-Template.xlsx",
	"template_label": "SolarQuote",
	"smtp_port":      587,
}

// MigrateDefaultQuoteSettings creates the quote_settings record when none
// exists. Safe to call on every startup.
func MigrateDefaultQuoteSettings(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId("quote_settings")
	if err != nil {
		return fmt.Errorf("migrate_settings: could not find quote_settings collection: %w", err)
	}

	existing, err := app.FindRecordsByFilter(col, "id != ''", "", 1, 0)
	if err == nil && len(existing) > 0 {
		return nil
	}

	record := core.NewRecord(col)
	for k, v := range defaultSettings {
		record.Set(k, v)
	}
	if err := app.Save(record); err != nil {
		return fmt.Errorf("migrate_settings: could not save defaults: %w", err)
	}
	return nil
}
