package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pymepos-backend-go/internal/core"
	"pymepos-backend-go/internal/genai"
)

// AdvisoryHandler handles the premium AI advisory endpoint.
type AdvisoryHandler struct {
	advisoryService core.AdvisoryService
	logger          *zap.Logger
}

// NewAdvisoryHandler creates an AdvisoryHandler.
func NewAdvisoryHandler(as core.AdvisoryService, logger *zap.Logger) *AdvisoryHandler {
	return &AdvisoryHandler{advisoryService: as, logger: logger}
}

// Consult handles POST /api/consultar-ia. The caller identity comes from the
// user-id header; entitlement is checked in the service on every call.
func (h *AdvisoryHandler) Consult(c *gin.Context) {
	userID := c.GetHeader("user-id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "user-id header is required"})
		return
	}

	var req AdvisoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	html, err := h.advisoryService.Advise(c.Request.Context(), userID, req.Resumen)
	if err != nil {
		h.mapAdvisoryErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, AdvisoryResponse{HTML: html})
}

// mapAdvisoryErrorToStatus maps advisory errors to HTTP status codes. Quota
// exhaustion keeps its own status so the client can show "try again later"
// instead of a generic failure.
func (h *AdvisoryHandler) mapAdvisoryErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrAdvisoryNoUser):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "user-id header is required"})
	case errors.Is(err, core.ErrAdvisoryNotPremium):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Advisory requires an active premium plan"})
	case errors.Is(err, genai.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "Model quota exhausted, try again later"})
	case errors.Is(err, genai.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Advisory model unavailable"})
	default:
		h.logger.Error("advisory request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}
