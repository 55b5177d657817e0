package handlers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotegeneration/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// populateOpportunity runs the populate handler for one opportunity so a
// document version exists on disk for read-side handler tests.
func populateOpportunity(t *testing.T, app *pocketbase.PocketBase, opportunityID string) {
	t.Helper()

	body := `{
		"opportunityId": "` + opportunityID + `",
		"customerDetails": {"customerName": "Jane Smith", "postcode": "LS1 4AP"},
		"optionSelections": ["SingleRate"],
		"dynamicInputs": {"day_rate": "0.30", "payment_method": "Cash"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/quotes/populate",
		strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := HandleQuotePopulate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("populate helper: handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("populate helper: status %d: %s", rec.Code, rec.Body.String())
	}
}

// newConfiguredApp creates a test app with a quote template on disk and a
// quote_settings record pointing at it. Returns the app and the storage dir
// that generated documents land in.
func newConfiguredApp(t *testing.T) (*pocketbase.PocketBase, string) {
	t.Helper()

	app := testhelpers.NewTestApp(t)
	dir := t.TempDir()
	templatePath := testhelpers.BuildQuoteTemplate(t, dir)
	storageDir := filepath.Join(dir, "quotes")
	testhelpers.ConfigureQuoteSettings(t, app, storageDir, templatePath)
	return app, storageDir
}
