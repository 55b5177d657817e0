package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleQuoteFields_NoDocument(t *testing.T) {
	app, _ := newConfiguredApp(t)
	handler := HandleQuoteFields(app)

	req := httptest.NewRequest(http.MethodGet, "/api/quotes/OPP-NONE/fields", nil)
	req.SetPathValue("opportunityId", "OPP-NONE")
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestHandleQuoteFields_MissingPathValue(t *testing.T) {
	app, _ := newConfiguredApp(t)
	handler := HandleQuoteFields(app)

	req := httptest.NewRequest(http.MethodGet, "/api/quotes//fields", nil)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleQuoteFields_ReportsEnablement(t *testing.T) {
	app, _ := newConfiguredApp(t)
	populateOpportunity(t, app, "OPP-2001")

	handler := HandleQuoteFields(app)
	req := httptest.NewRequest(http.MethodGet, "/api/quotes/OPP-2001/fields", nil)
	req.SetPathValue("opportunityId", "OPP-2001")
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		DocumentVersionPath string `json:"documentVersionPath"`
		Fields              []struct {
			FieldID string `json:"fieldId"`
			Enabled bool   `json:"enabled"`
			Reason  string `json:"reason"`
			Value   string `json:"currentValue"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.DocumentVersionPath == "" {
		t.Error("expected documentVersionPath in response")
	}
	if len(resp.Fields) == 0 {
		t.Fatal("expected field states in response")
	}

	byID := make(map[string]struct {
		Enabled bool
		Reason  string
		Value   string
	})
	for _, f := range resp.Fields {
		byID[f.FieldID] = struct {
			Enabled bool
			Reason  string
			Value   string
		}{f.Enabled, f.Reason, f.Value}
	}

	// SingleRate ran during population, so day_rate is open and written.
	if f, ok := byID["day_rate"]; !ok || !f.Enabled {
		t.Errorf("day_rate should be enabled, got %+v", f)
	}
	// night_rate only unlocks under DualRate.
	if f, ok := byID["night_rate"]; !ok || f.Enabled {
		t.Errorf("night_rate should be locked, got %+v", f)
	}
	if f := byID["customer_name"]; f.Value != "Jane Smith" {
		t.Errorf("customer_name value = %q, want %q", f.Value, "Jane Smith")
	}
}
