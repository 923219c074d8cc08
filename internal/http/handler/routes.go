package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"filingapi/internal/config"
	"filingapi/internal/http/middleware"
	"filingapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers stay
// thin; all business rules live in the services.
func RegisterRoutes(
	app *fiber.App,
	db *sql.DB,
	authCfg config.AuthConfig,
	obs FinalizeObserver,
	filingSvc service.FilingService,
	finalizeSvc service.FinalizeService,
	dossierSvc service.DossierService,
) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	auth := middleware.Auth(authCfg)

	app.Post("/auth/init", auth, InitUser(filingSvc))

	app.Post("/filing/create", auth, CreateFiling(filingSvc))
	app.Get("/filing/:id", auth, GetFiling(filingSvc))

	app.Post("/documents/upload", auth, UploadDocument(filingSvc))
	app.Post("/ml-results", auth, IngestMLResult(filingSvc))

	app.Post("/finalize", auth, Finalize(finalizeSvc, obs))
	app.Post("/generate-dossier", auth, GenerateDossier(dossierSvc))
	app.Get("/reports/download/:filing_id", auth, DownloadReport(dossierSvc))

	app.Get("/audit", auth, middleware.RequireAdmin(), ListAuditTrail(filingSvc))
}
