package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotegeneration/services"
)

type exportRequest struct {
	Email string `json:"email"`
}

// HandleQuoteExport returns a handler that renders an opportunity's latest
// workbook to its PDF artifact, overwriting any previous export, and
// optionally emails it.
func HandleQuoteExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		opportunityID := e.Request.PathValue("opportunityId")
		if opportunityID == "" {
			return e.String(http.StatusBadRequest, "Missing opportunity ID")
		}

		var req exportRequest
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}

		cfg, err := services.LoadConfig(app)
		if err != nil {
			log.Printf("export: config: %v", err)
			return e.String(http.StatusInternalServerError, "Quote settings not configured")
		}

		store := cfg.Store()
		ref, err := store.ResolveLatest(opportunityID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return e.String(http.StatusNotFound, "No document for opportunity")
			}
			log.Printf("export: resolve latest for %s: %v", opportunityID, err)
			return e.String(http.StatusInternalServerError, "Version resolution failed")
		}

		session, err := services.OpenWorkbook(ref.Path)
		if err != nil {
			log.Printf("export: open %s: %v", ref.Path, err)
			return e.String(http.StatusConflict, "Workbook is not available")
		}
		defer session.Close()

		data, err := services.BuildQuoteExport(session, opportunityID)
		if err != nil {
			log.Printf("export: build data for %s: %v", opportunityID, err)
			return e.String(http.StatusInternalServerError, "Failed to read quote data")
		}

		pdfBytes, err := services.GenerateQuotePDF(data)
		if err != nil {
			log.Printf("export: generate PDF for %s: %v", opportunityID, err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF")
		}

		pdfPath, err := store.PDFPath(opportunityID)
		if err != nil {
			log.Printf("export: pdf path for %s: %v", opportunityID, err)
			return e.String(http.StatusInternalServerError, "Failed to prepare export directory")
		}
		if err := os.WriteFile(pdfPath, pdfBytes, 0o644); err != nil {
			log.Printf("export: write %s: %v", pdfPath, err)
			return e.String(http.StatusInternalServerError, "Failed to write PDF")
		}

		emailed := false
		if req.Email != "" {
			if err := services.EmailQuote(cfg, req.Email, opportunityID, pdfBytes); err != nil {
				log.Printf("export: email for %s: %v", opportunityID, err)
			} else {
				emailed = true
			}
		}

		return e.JSON(http.StatusOK, map[string]any{
			"success": true,
			"pdfPath": pdfPath,
			"emailed": emailed,
		})
	}
}
