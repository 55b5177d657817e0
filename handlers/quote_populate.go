package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotegeneration/services"
)

// populateResponse is the JSON body returned by the populate endpoint.
type populateResponse struct {
	Success             bool                    `json:"success"`
	DocumentVersionPath string                  `json:"documentVersionPath,omitempty"`
	Fields              []services.FieldOutcome `json:"fields,omitempty"`
	Error               string                  `json:"error,omitempty"`
}

// HandleQuotePopulate returns a handler that runs the population pipeline
// for one opportunity.
func HandleQuotePopulate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req services.PopulateRequest
		if err := e.BindBody(&req); err != nil {
			return e.JSON(http.StatusBadRequest, populateResponse{Error: "invalid request body"})
		}
		if req.OpportunityID == "" {
			return e.JSON(http.StatusBadRequest, populateResponse{Error: "missing opportunityId"})
		}

		cfg, err := services.LoadConfig(app)
		if err != nil {
			log.Printf("populate: config: %v", err)
			return e.JSON(http.StatusInternalServerError, populateResponse{Error: "quote settings not configured"})
		}

		result, err := services.Populate(e.Request.Context(), cfg, req)
		if err != nil {
			log.Printf("populate: %s failed: %v", req.OpportunityID, err)
			status := http.StatusInternalServerError
			if errors.Is(err, services.ErrNotFound) {
				status = http.StatusNotFound
			}
			return e.JSON(status, populateResponse{Error: err.Error()})
		}

		if err := upsertOpportunity(app, req, result); err != nil {
			// The workbook is the system of record; a stale mirror is
			// logged, not surfaced.
			log.Printf("populate: opportunity mirror update failed: %v", err)
		}

		return e.JSON(http.StatusOK, populateResponse{
			Success:             true,
			DocumentVersionPath: result.DocumentPath,
			Fields:              result.Fields,
		})
	}
}

// upsertOpportunity keeps the opportunities collection in step with the
// latest populated version.
func upsertOpportunity(app *pocketbase.PocketBase, req services.PopulateRequest, result *services.PopulateResult) error {
	col, err := app.FindCollectionByNameOrId("opportunities")
	if err != nil {
		return err
	}

	records, err := app.FindRecordsByFilter(col, "opportunity_id = {:opp}", "", 1, 0,
		map[string]any{"opp": req.OpportunityID})

	var record *core.Record
	if err == nil && len(records) > 0 {
		record = records[0]
	} else {
		record = core.NewRecord(col)
		record.Set("opportunity_id", req.OpportunityID)
	}

	if req.Customer.CustomerName != "" {
		record.Set("customer_name", req.Customer.CustomerName)
	}
	if req.Customer.Postcode != "" {
		record.Set("postcode", req.Customer.Postcode)
	}
	record.Set("latest_version_path", result.DocumentPath)
	record.Set("latest_version", result.Version)

	return app.Save(record)
}
