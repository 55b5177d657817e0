package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotegeneration/collections"
	"quotegeneration/handlers"
)

func main() {
	app := pocketbase.New()

	// Create collections and default settings on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.MigrateDefaultQuoteSettings(app); err != nil {
			log.Printf("Warning: quote settings migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Quote generation ─────────────────────────────────────
		se.Router.POST("/api/quotes/populate", handlers.HandleQuotePopulate(app))
		se.Router.GET("/api/quotes", handlers.HandleQuoteList(app))

		// ── Cascading model options ──────────────────────────────
		se.Router.GET("/api/quotes/models", handlers.HandleQuoteModels(app))

		// ── Per-opportunity document state and export ────────────
		se.Router.GET("/api/quotes/{opportunityId}/fields", handlers.HandleQuoteFields(app))
		se.Router.POST("/api/quotes/{opportunityId}/export", handlers.HandleQuoteExport(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
