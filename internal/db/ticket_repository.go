package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pymepos-backend-go/internal/models"
)

const ticketsCollection = "tickets"

// firestoreTicketRepository implements the TicketRepository interface using Firestore.
type firestoreTicketRepository struct {
	client *firestore.Client
}

// NewFirestoreTicketRepository creates a new instance of firestoreTicketRepository.
func NewFirestoreTicketRepository(client *firestore.Client) TicketRepository {
	return &firestoreTicketRepository{client: client}
}

// Create adds a new ticket document to Firestore with an auto-generated ID.
func (r *firestoreTicketRepository) Create(ctx context.Context, ticket *models.SupportTicket) (string, error) {
	docRef := r.client.Collection(ticketsCollection).NewDoc()
	ticket.ID = docRef.ID

	_, err := docRef.Create(ctx, ticket)
	if err != nil {
		return "", fmt.Errorf("failed to create ticket: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a ticket document from Firestore by its ID.
func (r *firestoreTicketRepository) GetByID(ctx context.Context, ticketID string) (*models.SupportTicket, error) {
	if ticketID == "" {
		return nil, errors.New("ticketID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(ticketsCollection).Doc(ticketID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("ticket with ID '%s' not found: %w", ticketID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ticket with ID '%s': %w", ticketID, err)
	}

	var ticket models.SupportTicket
	if err := docSnap.DataTo(&ticket); err != nil {
		return nil, fmt.Errorf("failed to decode ticket data for ID '%s': %w", ticketID, err)
	}
	ticket.ID = docSnap.Ref.ID

	return &ticket, nil
}

// ListByUser retrieves all tickets created by a specific user, newest first.
func (r *firestoreTicketRepository) ListByUser(ctx context.Context, userID string) ([]*models.SupportTicket, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUser operation")
	}
	query := r.client.Collection(ticketsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	return r.collect(ctx, query)
}

// ListAll retrieves every ticket, newest first.
func (r *firestoreTicketRepository) ListAll(ctx context.Context) ([]*models.SupportTicket, error) {
	query := r.client.Collection(ticketsCollection).OrderBy("createdAt", firestore.Desc)
	return r.collect(ctx, query)
}

func (r *firestoreTicketRepository) collect(ctx context.Context, query firestore.Query) ([]*models.SupportTicket, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var tickets []*models.SupportTicket
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate tickets: %w", err)
		}

		var ticket models.SupportTicket
		if err := doc.DataTo(&ticket); err != nil {
			return nil, fmt.Errorf("failed to decode ticket data (ID: %s): %w", doc.Ref.ID, err)
		}
		ticket.ID = doc.Ref.ID
		tickets = append(tickets, &ticket)
	}
	return tickets, nil
}

// SetResponse records the admin response and resolves the ticket in one update.
func (r *firestoreTicketRepository) SetResponse(ctx context.Context, ticketID, response, adminID string, respondedAt time.Time) error {
	if ticketID == "" {
		return errors.New("ticketID cannot be empty for SetResponse operation")
	}
	_, err := r.client.Collection(ticketsCollection).Doc(ticketID).Update(ctx, []firestore.Update{
		{Path: "response", Value: response},
		{Path: "status", Value: models.TicketResolved},
		{Path: "respondedAt", Value: respondedAt},
		{Path: "adminResponderId", Value: adminID},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("ticket with ID '%s' not found for response: %w", ticketID, ErrNotFound)
		}
		return fmt.Errorf("failed to set response on ticket '%s': %w", ticketID, err)
	}
	return nil
}
