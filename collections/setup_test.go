package collections_test

import (
	"testing"

	"quotegeneration/collections"
	"quotegeneration/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"opportunities",
	"quote_settings",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_OpportunitiesFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("opportunities")

	fields := []string{"opportunity_id", "customer_name", "postcode", "latest_version_path", "latest_version", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("opportunities: missing field %q", f)
		}
	}

	idField := col.Fields.GetByName("opportunity_id")
	if tf, ok := idField.(*core.TextField); ok {
		if !tf.Required {
			t.Error("opportunities.opportunity_id: expected Required=true")
		}
	} else {
		t.Error("opportunities.opportunity_id is not a TextField")
	}

	if _, ok := col.Fields.GetByName("latest_version").(*core.NumberField); !ok {
		t.Error("opportunities.latest_version is not a NumberField")
	}
}

func TestSetup_QuoteSettingsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("quote_settings")

	fields := []string{
		"storage_dir", "template_path", "template_label",
		"smtp_host", "smtp_port", "smtp_user", "smtp_pass", "from_addr",
		"created", "updated",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("quote_settings: missing field %q", f)
		}
	}

	for _, name := range []string{"storage_dir", "template_path", "template_label"} {
		field := col.Fields.GetByName(name)
		if tf, ok := field.(*core.TextField); ok {
			if !tf.Required {
				t.Errorf("quote_settings.%s: expected Required=true", name)
			}
		}
	}
}
