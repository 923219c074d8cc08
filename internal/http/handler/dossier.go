package handler

import (
	"github.com/gofiber/fiber/v2"

	"filingapi/internal/http/middleware"
	"filingapi/internal/service"
)

type generateDossierRequest struct {
	FilingID string `json:"filing_id"`
}

// GenerateDossier builds and stores the final dossier archive for a finalized
// filing and returns a signed download URL.
func GenerateDossier(svc service.DossierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req generateDossierRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		if req.FilingID == "" {
			return writeError(c, fiber.StatusBadRequest, "FILING_ID_REQUIRED", "filing_id is required")
		}

		res, err := svc.Generate(c.UserContext(), req.FilingID, middleware.CallerID(c), middleware.CallerFullName(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"dossier_path": res.DossierPath,
			"signed_url":   res.SignedURL,
		})
	}
}

// DownloadReport returns a fresh signed URL for an already generated dossier.
func DownloadReport(svc service.DossierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := svc.DownloadURL(c.UserContext(), c.Params("filing_id"), middleware.CallerID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"signed_url": url})
	}
}
