package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleQuoteList returns a handler listing recent opportunities with
// their latest document versions, newest first.
func HandleQuoteList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("opportunities", "id != ''", "-updated", 100, 0)
		if err != nil {
			records = nil
		}

		type entry struct {
			OpportunityID string `json:"opportunityId"`
			CustomerName  string `json:"customerName"`
			Postcode      string `json:"postcode"`
			LatestVersion int    `json:"latestVersion"`
			LatestPath    string `json:"latestVersionPath"`
			Updated       string `json:"updated"`
		}

		entries := make([]entry, 0, len(records))
		for _, r := range records {
			entries = append(entries, entry{
				OpportunityID: r.GetString("opportunity_id"),
				CustomerName:  r.GetString("customer_name"),
				Postcode:      r.GetString("postcode"),
				LatestVersion: int(r.GetFloat("latest_version")),
				LatestPath:    r.GetString("latest_version_path"),
				Updated:       r.GetString("updated"),
			})
		}

		return e.JSON(http.StatusOK, map[string]any{"opportunities": entries})
	}
}
