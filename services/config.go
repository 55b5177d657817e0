package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
)

// Config is the deployment configuration for quote generation, loaded
// from the quote_settings record created at startup.
type Config struct {
	StorageDir    string
	TemplatePath  string
	TemplateLabel string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	FromAddr string
}

// LoadConfig reads the quote_settings singleton.
func LoadConfig(app *pocketbase.PocketBase) (Config, error) {
	records, err := app.FindRecordsByFilter("quote_settings", "id != ''", "-created", 1, 0)
	if err != nil {
		return Config{}, fmt.Errorf("quote settings lookup: %w", err)
	}
	if len(records) == 0 {
		return Config{}, fmt.Errorf("quote settings not configured")
	}
	r := records[0]
	return Config{
		StorageDir:    r.GetString("storage_dir"),
		TemplatePath:  r.GetString("template_path"),
		TemplateLabel: r.GetString("template_label"),
		SMTPHost:      r.GetString("smtp_host"),
		SMTPPort:      int(r.GetFloat("smtp_port")),
		SMTPUser:      r.GetString("smtp_user"),
		SMTPPass:      r.GetString("smtp_pass"),
		FromAddr:      r.GetString("from_addr"),
	}, nil
}

// Store builds the version store described by this configuration.
func (c Config) Store() *VersionStore {
	return &VersionStore{Root: c.StorageDir, Label: c.TemplateLabel}
}
