package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pymepos-backend-go/internal/core"
	"pymepos-backend-go/internal/db"
)

// AdminHandler handles the admin-gated endpoints: account deletion and
// support ticket management.
type AdminHandler struct {
	deletionService core.DeletionService
	ticketService   core.TicketService
	logger          *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(ds core.DeletionService, ts core.TicketService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{deletionService: ds, ticketService: ts, logger: logger}
}

// DeleteUser handles DELETE /api/admin/users/:uid. The orchestrator is
// idempotent, so re-issuing the call after a partial failure is safe.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	uid := c.Param("uid")

	if err := h.deletionService.DeleteAccount(c.Request.Context(), uid); err != nil {
		if errors.Is(err, core.ErrInvalidUID) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("account deletion failed", zap.String("uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete account", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, DeletionResponse{Success: true})
}

// ScheduleDeletion handles POST /api/admin/users/:uid/schedule-deletion.
// The deferred-deletion sweep picks the account up once the time falls due.
func (h *AdminHandler) ScheduleDeletion(c *gin.Context) {
	uid := c.Param("uid")

	var req ScheduleDeletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	if err := h.deletionService.ScheduleDeletion(c.Request.Context(), uid, req.Days); err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidUID):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, db.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Account not found"})
		default:
			h.logger.Error("deletion scheduling failed", zap.String("uid", uid), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to schedule deletion"})
		}
		return
	}

	c.JSON(http.StatusOK, DeletionResponse{Success: true})
}

// ListTickets handles GET /api/admin/tickets.
func (h *AdminHandler) ListTickets(c *gin.Context) {
	tickets, err := h.ticketService.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("admin ticket listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list tickets"})
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// RespondTicket handles POST /api/admin/tickets/:id/responder.
func (h *AdminHandler) RespondTicket(c *gin.Context) {
	ticketID := c.Param("id")
	adminID := c.GetString("adminID")

	var req RespondTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	ticket, err := h.ticketService.Respond(c.Request.Context(), ticketID, adminID, req.Response)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrTicketNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Ticket not found"})
		case errors.Is(err, core.ErrTicketResolved):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Ticket is already resolved"})
		default:
			h.logger.Error("ticket response failed", zap.String("ticketId", ticketID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to respond to ticket"})
		}
		return
	}

	c.JSON(http.StatusOK, ticket)
}
