package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pymepos-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (logging, recovery, CORS) is applied to the
// router before this function is called, in main.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	checkoutHandler *CheckoutHandler,
	advisoryHandler *AdvisoryHandler,
	ticketHandler *TicketHandler,
	adminHandler *AdminHandler,
	adminMW *middleware.AdminMiddleware,
) {
	// Payment endpoints. /retorno is the gateway's browser redirect target
	// and must stay outside any auth gate.
	router.POST("/crear-transaccion", checkoutHandler.CreateTransaction)
	router.GET("/retorno", checkoutHandler.Return)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/consultar-ia", advisoryHandler.Consult)
		apiGroup.POST("/crear-ticket", ticketHandler.Create)
		apiGroup.GET("/mis-tickets", ticketHandler.ListMine)

		adminGroup := apiGroup.Group("/admin", adminMW.RequireAdmin())
		{
			adminGroup.DELETE("/users/:uid", adminHandler.DeleteUser)
			adminGroup.POST("/users/:uid/schedule-deletion", adminHandler.ScheduleDeletion)
			adminGroup.GET("/tickets", adminHandler.ListTickets)
			adminGroup.POST("/tickets/:id/responder", adminHandler.RespondTicket)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured")
}
