package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pymepos-backend-go/internal/core"
	"pymepos-backend-go/internal/webpay"
)

// CheckoutHandler handles the payment endpoints.
type CheckoutHandler struct {
	checkoutService core.CheckoutService
	receiptURL      string
	logger          *zap.Logger
}

// NewCheckoutHandler creates a CheckoutHandler. receiptURL is the fixed
// client page every payment return redirects to.
func NewCheckoutHandler(cs core.CheckoutService, receiptURL string, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: cs,
		receiptURL:      receiptURL,
		logger:          logger,
	}
}

// mapCheckoutErrorToStatus maps errors from checkout creation to HTTP status
// codes. Dispatch is on error kind, never on error text.
func mapCheckoutErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrMissingPlan),
		errors.Is(err, core.ErrMissingUserID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, webpay.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "Payment gateway rate limit reached, try again later"})
	case errors.Is(err, webpay.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Payment gateway unavailable"})
	case errors.Is(err, webpay.ErrRequestRejected):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Payment gateway rejected the request", Details: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// CreateTransaction handles POST /crear-transaccion.
func (h *CheckoutHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	session, err := h.checkoutService.CreateTransaction(c.Request.Context(), req.UserID, req.Plan, req.Monto)
	if err != nil {
		h.logger.Warn("checkout creation failed", zap.Error(err))
		mapCheckoutErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, CreateTransactionResponse{URL: session.URL, Token: session.Token})
}

// Return handles GET /retorno, the gateway's redirect back after payment.
// The answer is always a redirect to the client receipt page — never a raw
// error page — so the dashboard renders a consistent status screen.
func (h *CheckoutHandler) Return(c *gin.Context) {
	tokenWS := c.Query("token_ws")
	tbkToken := c.Query("TBK_TOKEN")

	outcome := h.checkoutService.CommitReturn(c.Request.Context(), tokenWS, tbkToken)

	params := url.Values{}
	params.Set("status", string(outcome.Status))
	if outcome.Status == core.ReturnSuccess {
		params.Set("amount", formatAmount(outcome.Amount))
		params.Set("plan", outcome.Plan)
		params.Set("card", outcome.Card)
		params.Set("date", outcome.Date.Format(time.RFC3339))
	}

	c.Redirect(http.StatusFound, h.receiptURL+"?"+params.Encode())
}

func formatAmount(amount int64) string {
	return strconv.FormatInt(amount, 10)
}
