package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"filingapi/internal/http/middleware"
	"filingapi/internal/service"
)

type finalizeRequest struct {
	FilingID string `json:"filing_id"`
}

// FinalizeObserver records finalize attempt outcomes for metrics. May be nil.
type FinalizeObserver interface {
	ObserveFinalize(outcome string)
}

// Finalize runs the exclusive FINAL transition for a filing. Exactly one call
// per filing ever succeeds; later calls get 409.
func Finalize(svc service.FinalizeService, obs FinalizeObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req finalizeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		if req.FilingID == "" {
			return writeError(c, fiber.StatusBadRequest, "FILING_ID_REQUIRED", "filing_id is required")
		}

		res, err := svc.Finalize(c.UserContext(), req.FilingID, middleware.CallerID(c))
		if obs != nil {
			obs.ObserveFinalize(finalizeOutcome(err))
		}
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"filing_id":       req.FilingID,
			"commitment_id":   res.CommitmentID,
			"commitment_hash": res.CommitmentHash,
		})
	}
}

func finalizeOutcome(err error) string {
	switch {
	case err == nil:
		return "applied"
	case errors.Is(err, service.ErrAlreadyFinalized):
		return "already_final"
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrDocumentsRequired),
		errors.Is(err, service.ErrParsedResultRequired):
		return "rejected"
	default:
		return "error"
	}
}
