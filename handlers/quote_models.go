package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"

	"quotegeneration/services"
)

// HandleQuoteModels returns a handler for the cascading option query:
// which models are valid for a manufacturer in one equipment category.
// The reference tables are read from the deployment's quote template.
func HandleQuoteModels(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		category := e.Request.URL.Query().Get("category")
		manufacturer := e.Request.URL.Query().Get("manufacturer")
		if category == "" || manufacturer == "" {
			return e.String(http.StatusBadRequest, "Missing category or manufacturer")
		}

		cfg, err := services.LoadConfig(app)
		if err != nil {
			log.Printf("models: config: %v", err)
			return e.String(http.StatusInternalServerError, "Quote settings not configured")
		}

		f, err := excelize.OpenFile(cfg.TemplatePath)
		if err != nil {
			log.Printf("models: open template %s: %v", cfg.TemplatePath, err)
			return e.String(http.StatusNotFound, "Quote template not found")
		}
		defer f.Close()

		options, err := services.ListModels(f, services.EquipmentCategory(category), manufacturer)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return e.String(http.StatusNotFound, "Unknown equipment category")
			}
			log.Printf("models: %s/%s: %v", category, manufacturer, err)
			return e.String(http.StatusInternalServerError, "Model resolution failed")
		}

		return e.JSON(http.StatusOK, map[string][]string{"options": options})
	}
}
