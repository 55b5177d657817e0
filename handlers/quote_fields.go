package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotegeneration/services"
)

// HandleQuoteFields returns a handler reporting, for UI population, which
// logical fields of an opportunity's latest workbook are currently
// eligible for input. Read-only.
func HandleQuoteFields(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		opportunityID := e.Request.PathValue("opportunityId")
		if opportunityID == "" {
			return e.String(http.StatusBadRequest, "Missing opportunity ID")
		}

		cfg, err := services.LoadConfig(app)
		if err != nil {
			log.Printf("fields: config: %v", err)
			return e.String(http.StatusInternalServerError, "Quote settings not configured")
		}

		ref, err := cfg.Store().ResolveLatest(opportunityID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return e.String(http.StatusNotFound, "No document for opportunity")
			}
			log.Printf("fields: resolve latest for %s: %v", opportunityID, err)
			return e.String(http.StatusInternalServerError, "Version resolution failed")
		}

		session, err := services.OpenWorkbook(ref.Path)
		if err != nil {
			log.Printf("fields: open %s: %v", ref.Path, err)
			return e.String(http.StatusConflict, "Workbook is not available")
		}
		defer session.Close()

		states, err := services.ListEnabledFields(session)
		if err != nil {
			log.Printf("fields: introspect %s: %v", ref.Path, err)
			return e.String(http.StatusInternalServerError, "Field introspection failed")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"documentVersionPath": ref.Path,
			"fields":              states,
		})
	}
}
