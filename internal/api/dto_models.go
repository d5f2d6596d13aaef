package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// CreateTransactionRequest is the body of POST /crear-transaccion.
type CreateTransactionRequest struct {
	Monto  int64  `json:"monto" binding:"required"`
	Plan   string `json:"plan" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

// CreateTransactionResponse returns the gateway redirect target for a new
// checkout session.
type CreateTransactionResponse struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// AdvisoryRequest is the body of POST /api/consultar-ia. Resumen is the
// business summary the dashboard assembles client-side.
type AdvisoryRequest struct {
	Resumen map[string]interface{} `json:"resumen" binding:"required"`
}

// AdvisoryResponse carries the model's HTML advisory.
type AdvisoryResponse struct {
	HTML string `json:"html"`
}

// CreateTicketRequest is the body of POST /api/crear-ticket.
type CreateTicketRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// RespondTicketRequest is the body of POST /api/admin/tickets/:id/responder.
type RespondTicketRequest struct {
	Response string `json:"response" binding:"required"`
}

// ScheduleDeletionRequest is the body of POST /api/admin/users/:uid/schedule-deletion.
type ScheduleDeletionRequest struct {
	Days int `json:"days"`
}

// DeletionResponse acknowledges an admin deletion or scheduling action.
type DeletionResponse struct {
	Success bool `json:"success"`
}
