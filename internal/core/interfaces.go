package core

import (
	"context"

	"pymepos-backend-go/internal/models"
	"pymepos-backend-go/internal/webpay"
)

// CheckoutService drives a checkout attempt through its lifecycle: session
// creation, the redirect round-trip, and the commit back from the gateway.
type CheckoutService interface {
	// CreateTransaction opens a gateway session for the purchase and records
	// the pending intent. It returns the gateway URL/token the client needs
	// to redirect the buyer.
	CreateTransaction(ctx context.Context, userID, plan string, amount int64) (*CheckoutSession, error)
	// CommitReturn resolves the gateway's return redirect into a terminal
	// outcome. It never returns an error: every failure maps to a terminal
	// status so the client always lands on the receipt page.
	CommitReturn(ctx context.Context, tokenWS, tbkToken string) *ReturnOutcome
}

// AdvisoryService gates and serves the premium AI advisory feature.
type AdvisoryService interface {
	Advise(ctx context.Context, userID string, summary map[string]interface{}) (string, error)
}

// DeletionService removes an account and everything nested under it.
type DeletionService interface {
	// DeleteAccount is idempotent: running it twice on the same uid succeeds
	// both times.
	DeleteAccount(ctx context.Context, uid string) error
	// ScheduleDeletion defers the account's deletion by the given number of
	// days; the expiry sweep picks it up once due.
	ScheduleDeletion(ctx context.Context, uid string, days int) error
}

// TicketService manages support tickets.
type TicketService interface {
	Create(ctx context.Context, userID, topic string) (*models.SupportTicket, error)
	ListMine(ctx context.Context, userID string) ([]*models.SupportTicket, error)
	ListAll(ctx context.Context) ([]*models.SupportTicket, error)
	Respond(ctx context.Context, ticketID, adminID, response string) (*models.SupportTicket, error)
}

// PaymentGateway is the slice of the Webpay adapter the checkout service uses.
type PaymentGateway interface {
	Create(ctx context.Context, buyOrder, sessionID string, amount int64, returnURL string) (*webpay.CreateResponse, error)
	Commit(ctx context.Context, token string) (*webpay.CommitResult, error)
}

// AdvisoryModel is the slice of the generative-model adapter the advisory
// service uses.
type AdvisoryModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IdentityDeleter removes an identity-provider record. Implementations must
// treat an already-absent user as success (db.FirebaseIdentity does).
type IdentityDeleter interface {
	DeleteUser(ctx context.Context, uid string) error
}
