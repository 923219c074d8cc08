package handler

import (
	"github.com/gofiber/fiber/v2"

	"filingapi/internal/http/middleware"
	"filingapi/internal/model"
	"filingapi/internal/service"
)

// InitUser upserts the authenticated caller's user record. Safe to call on
// every login.
func InitUser(svc service.FilingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := &model.User{
			ID:       middleware.CallerID(c),
			Email:    middleware.CallerEmail(c),
			FullName: middleware.CallerFullName(c),
		}
		if err := svc.InitUser(c.UserContext(), u); err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"user_id": u.ID,
			"email":   u.Email,
		})
	}
}

type createFilingRequest struct {
	Metadata map[string]any `json:"metadata"`
}

// CreateFiling opens a new draft filing for the caller.
func CreateFiling(svc service.FilingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createFilingRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}

		filing, err := svc.Create(c.UserContext(), middleware.CallerID(c), req.Metadata)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(filing)
	}
}

// GetFiling returns a filing with its documents, parsed result and risk flags.
// Scoped to the caller; other users' filings read as absent.
func GetFiling(svc service.FilingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		detail, err := svc.Get(c.UserContext(), c.Params("id"), middleware.CallerID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(detail)
	}
}

// UploadDocument accepts a multipart form16 upload for the filing named by the
// filing_id query parameter.
func UploadDocument(svc service.FilingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filingID := c.Query("filing_id")
		if filingID == "" {
			return writeError(c, fiber.StatusBadRequest, "FILING_ID_REQUIRED", "filing_id query parameter is required")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.UploadDocument(c.UserContext(), filingID, middleware.CallerID(c), f, ct, fh.Size)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

type mlResultRequest struct {
	FilingID   string            `json:"filing_id"`
	ParsedJSON map[string]any    `json:"parsed_json"`
	RiskFlags  map[string]string `json:"risk_flags"`
}

// IngestMLResult records the parser output and optional risk flags for a filing.
func IngestMLResult(svc service.FilingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req mlResultRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		if req.FilingID == "" {
			return writeError(c, fiber.StatusBadRequest, "FILING_ID_REQUIRED", "filing_id is required")
		}

		result, err := svc.IngestParsedResult(c.UserContext(), req.FilingID, middleware.CallerID(c), req.ParsedJSON, req.RiskFlags)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	}
}

// ListAuditTrail returns the newest audit entries. Admin only; enforced by
// middleware.RequireAdmin on the route.
func ListAuditTrail(svc service.FilingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := svc.ListAudit(c.UserContext(), c.QueryInt("limit", 100))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"entries": entries})
	}
}
