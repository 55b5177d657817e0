package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the opportunities and
// quote_settings collections exist.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, "opportunities", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "opportunity_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "customer_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "postcode", Required: false})
		c.Fields.Add(&core.TextField{Name: "latest_version_path", Required: false})
		c.Fields.Add(&core.NumberField{Name: "latest_version", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "quote_settings", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "storage_dir", Required: true})
		c.Fields.Add(&core.TextField{Name: "template_path", Required: true})
		c.Fields.Add(&core.TextField{Name: "template_label", Required: true})
		c.Fields.Add(&core.TextField{Name: "smtp_host", Required: false})
		c.Fields.Add(&core.NumberField{Name: "smtp_port", Required: false})
		c.Fields.Add(&core.TextField{Name: "smtp_user", Required: false})
		c.Fields.Add(&core.TextField{Name: "smtp_pass", Required: false})
		c.Fields.Add(&core.TextField{Name: "from_addr", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
}

// ensureCollection finds a collection by name, or creates it with the given fields.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
