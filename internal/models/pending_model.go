package models

import "time"

// PendingTransaction is the purchase intent recorded when a checkout is
// initiated. It must survive the browser's redirect round-trip to the payment
// gateway: the return leg carries only a session id, so this record is the
// source of truth for which plan/user the purchase belongs to.
type PendingTransaction struct {
	SessionID string    `json:"sessionId"`
	Plan      string    `json:"plan"`
	Amount    int64     `json:"amount"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
