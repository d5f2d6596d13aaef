package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pymepos-backend-go/internal/db"
	"pymepos-backend-go/internal/models"
)

// Ticket service errors.
var (
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketResolved     = errors.New("ticket is already resolved")
	ErrTicketMissingTopic = errors.New("topic is required")
)

// ticketService implements TicketService.
type ticketService struct {
	tickets db.TicketRepository
	now     func() time.Time
}

// NewTicketService creates a TicketService.
func NewTicketService(tickets db.TicketRepository) TicketService {
	return &ticketService{tickets: tickets, now: time.Now}
}

// Create opens a new ticket for userID.
func (s *ticketService) Create(ctx context.Context, userID, topic string) (*models.SupportTicket, error) {
	if userID == "" {
		return nil, errors.New("userID is required to create a ticket")
	}
	if topic == "" {
		return nil, ErrTicketMissingTopic
	}

	ticket := &models.SupportTicket{
		UserID: userID,
		Topic:  topic,
		Status: models.TicketOpen,
	}
	id, err := s.tickets.Create(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket for user '%s': %w", userID, err)
	}
	ticket.ID = id
	return ticket, nil
}

// ListMine returns the tickets created by userID.
func (s *ticketService) ListMine(ctx context.Context, userID string) ([]*models.SupportTicket, error) {
	if userID == "" {
		return nil, errors.New("userID is required to list tickets")
	}
	return s.tickets.ListByUser(ctx, userID)
}

// ListAll returns every ticket (admin view).
func (s *ticketService) ListAll(ctx context.Context) ([]*models.SupportTicket, error) {
	return s.tickets.ListAll(ctx)
}

// Respond records an admin response and resolves the ticket. The transition
// is one-way: responding to an already-resolved ticket is rejected.
func (s *ticketService) Respond(ctx context.Context, ticketID, adminID, response string) (*models.SupportTicket, error) {
	if response == "" {
		return nil, errors.New("response cannot be empty")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrTicketNotFound, ticketID)
		}
		return nil, err
	}
	if ticket.Status == models.TicketResolved {
		return nil, fmt.Errorf("%w: '%s'", ErrTicketResolved, ticketID)
	}

	respondedAt := s.now()
	if err := s.tickets.SetResponse(ctx, ticketID, response, adminID, respondedAt); err != nil {
		return nil, err
	}

	ticket.Status = models.TicketResolved
	ticket.Response = response
	ticket.RespondedAt = &respondedAt
	ticket.AdminResponderID = adminID
	return ticket, nil
}
