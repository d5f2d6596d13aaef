package db

import (
	"context"
	"time"

	"pymepos-backend-go/internal/models"
)

// AccountRepository defines the interface for account data storage operations.
type AccountRepository interface {
	GetByID(ctx context.Context, uid string) (*models.Account, error)
	// ActivateSubscription writes plan, subscriptionStatus=active and
	// planStartDate as a single update. It is the last step of a checkout
	// commit, so a failure leaves no partial subscription state behind.
	ActivateSubscription(ctx context.Context, uid, plan string, startedAt time.Time) error
	// ScheduleDeletion marks the account for deferred deletion at the given time.
	ScheduleDeletion(ctx context.Context, uid string, at time.Time) error
	// ListDueForDeletion returns the UIDs of accounts whose scheduled
	// deletion time is at or before now.
	ListDueForDeletion(ctx context.Context, now time.Time) ([]string, error)
	// Delete removes the account document. Deleting an absent document is
	// not an error.
	Delete(ctx context.Context, uid string) error
}

// BusinessDataRepository defines the interface for a user's nested business
// data: the parent document and the transactions subcollection under it.
type BusinessDataRepository interface {
	// PurgeTransactions erases the whole transactions subtree for uid in
	// batches of at most batchSize documents per atomic write.
	PurgeTransactions(ctx context.Context, uid string, batchSize int) error
	// DeleteParent removes the parent business-data document for uid.
	DeleteParent(ctx context.Context, uid string) error
}

// TicketRepository defines the interface for support ticket storage operations.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.SupportTicket) (string, error) // Returns new ticket ID
	GetByID(ctx context.Context, ticketID string) (*models.SupportTicket, error)
	ListByUser(ctx context.Context, userID string) ([]*models.SupportTicket, error)
	ListAll(ctx context.Context) ([]*models.SupportTicket, error)
	// SetResponse records an admin response and flips the ticket to resolved
	// in a single update.
	SetResponse(ctx context.Context, ticketID, response, adminID string, respondedAt time.Time) error
}
