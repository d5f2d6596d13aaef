// Package pendingstore holds the purchase intent of in-flight checkouts,
// keyed by the gateway session id, across the browser's redirect round-trip.
package pendingstore

import (
	"context"
	"time"

	"pymepos-backend-go/internal/models"
)

// RetentionWindow bounds how long an unconsumed intent survives. Checkouts
// abandoned before the gateway redirects back are cleaned up passively by
// this expiry, not by active cancellation.
const RetentionWindow = 24 * time.Hour

// Store maps a payment session id to the pending purchase intent.
//
// Put overwrites any prior entry for the key; session ids are unique per
// checkout attempt, so the overwrite is a safety net, not relied-upon
// behavior. TakeAndExpire is a read-and-delete: it returns the intent for
// sessionID (ok=false when absent — a recoverable degraded case, never an
// error) and, as a side effect, drops every entry older than RetentionWindow.
// Implementations must tolerate interleaved access from concurrent checkouts
// without losing unrelated entries.
type Store interface {
	Put(ctx context.Context, sessionID string, tx models.PendingTransaction) error
	TakeAndExpire(ctx context.Context, sessionID string) (models.PendingTransaction, bool, error)
}
