package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"filingapi/internal/http/middleware"
	"filingapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NOT_FOUND", "ALREADY_FINALIZED")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// serviceError translates service sentinel errors into HTTP responses. Anything
// not in the taxonomy is reported as an opaque internal error.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "filing not found")
	case errors.Is(err, service.ErrDocumentsRequired):
		return writeError(c, fiber.StatusBadRequest, "PRECONDITION_FAILED", "filing has no uploaded documents")
	case errors.Is(err, service.ErrParsedResultRequired):
		return writeError(c, fiber.StatusBadRequest, "PRECONDITION_FAILED", "filing has no parsed result")
	case errors.Is(err, service.ErrAlreadyFinalized):
		return writeError(c, fiber.StatusConflict, "ALREADY_FINALIZED", "filing is already finalized")
	case errors.Is(err, service.ErrNotFinalized):
		return writeError(c, fiber.StatusBadRequest, "PRECONDITION_FAILED", "filing is not finalized")
	case errors.Is(err, service.ErrCommitmentMissing):
		return writeError(c, fiber.StatusBadRequest, "PRECONDITION_FAILED", "filing has no ledger commitment")
	case errors.Is(err, service.ErrInvalidRiskFlags):
		return writeError(c, fiber.StatusBadRequest, "INVALID_RISK_FLAGS", "risk flag values must be green or yellow")
	case errors.Is(err, service.ErrInvalidContentType):
		return writeError(c, fiber.StatusBadRequest, "INVALID_CONTENT_TYPE", "unsupported document content type")
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "document exceeds the upload size limit")
	case errors.Is(err, service.ErrDossierMissing):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "dossier not found")
	case errors.Is(err, service.ErrLedgerUnavailable):
		return writeError(c, fiber.StatusBadGateway, "LEDGER_UNAVAILABLE", "ledger submission failed")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "access denied")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
