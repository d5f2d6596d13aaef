package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pymepos-backend-go/internal/core"
)

// TicketHandler handles the user-facing support ticket endpoints.
type TicketHandler struct {
	ticketService core.TicketService
	logger        *zap.Logger
}

// NewTicketHandler creates a TicketHandler.
func NewTicketHandler(ts core.TicketService, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{ticketService: ts, logger: logger}
}

// Create handles POST /api/crear-ticket.
func (h *TicketHandler) Create(c *gin.Context) {
	userID := c.GetHeader("user-id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "user-id header is required"})
		return
	}

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	ticket, err := h.ticketService.Create(c.Request.Context(), userID, req.Topic)
	if err != nil {
		if errors.Is(err, core.ErrTicketMissingTopic) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("ticket creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create ticket"})
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// ListMine handles GET /api/mis-tickets.
func (h *TicketHandler) ListMine(c *gin.Context) {
	userID := c.GetHeader("user-id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "user-id header is required"})
		return
	}

	tickets, err := h.ticketService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("ticket listing failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list tickets"})
		return
	}

	c.JSON(http.StatusOK, tickets)
}
