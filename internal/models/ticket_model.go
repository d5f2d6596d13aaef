package models

import "time"

// Support ticket status values. The only transition is open -> resolved,
// performed by an admin response.
const (
	TicketOpen     = "open"
	TicketResolved = "resolved"
)

// SupportTicket is a user-created support request stored in Firestore with an
// auto-generated document ID.
type SupportTicket struct {
	ID               string     `json:"id" firestore:"-"`
	UserID           string     `json:"userId" firestore:"userId"`
	Topic            string     `json:"topic" firestore:"topic"`
	Status           string     `json:"status" firestore:"status"`
	CreatedAt        time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	Response         string     `json:"response,omitempty" firestore:"response,omitempty"`
	RespondedAt      *time.Time `json:"respondedAt,omitempty" firestore:"respondedAt,omitempty"`
	AdminResponderID string     `json:"adminResponderId,omitempty" firestore:"adminResponderId,omitempty"`
}
