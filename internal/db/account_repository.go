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

const accountsCollection = "usuarios"

// ErrNotFound is a common error for when a document is not found in Firestore.
var ErrNotFound = errors.New("document not found")

// firestoreAccountRepository implements the AccountRepository interface using Firestore.
type firestoreAccountRepository struct {
	client *firestore.Client
}

// NewFirestoreAccountRepository creates a new instance of firestoreAccountRepository.
func NewFirestoreAccountRepository(client *firestore.Client) AccountRepository {
	return &firestoreAccountRepository{client: client}
}

// GetByID retrieves an account document from Firestore by its UID (Firebase Auth UID).
func (r *firestoreAccountRepository) GetByID(ctx context.Context, uid string) (*models.Account, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(accountsCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("account with uid '%s' not found: %w", uid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account with uid '%s': %w", uid, err)
	}

	var account models.Account
	if err := docSnap.DataTo(&account); err != nil {
		return nil, fmt.Errorf("failed to decode account data for uid '%s': %w", uid, err)
	}
	account.UID = docSnap.Ref.ID

	return &account, nil
}

// ActivateSubscription sets plan, subscriptionStatus and planStartDate in one
// update so a committed purchase either fully lands on the account or not at all.
func (r *firestoreAccountRepository) ActivateSubscription(ctx context.Context, uid, plan string, startedAt time.Time) error {
	if uid == "" {
		return errors.New("uid cannot be empty for ActivateSubscription operation")
	}
	_, err := r.client.Collection(accountsCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "plan", Value: plan},
		{Path: "subscriptionStatus", Value: models.SubscriptionActive},
		{Path: "planStartDate", Value: startedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("account with uid '%s' not found for subscription update: %w", uid, ErrNotFound)
		}
		return fmt.Errorf("failed to activate subscription for uid '%s': %w", uid, err)
	}
	return nil
}

// ScheduleDeletion stamps the account with the time its deferred deletion falls due.
func (r *firestoreAccountRepository) ScheduleDeletion(ctx context.Context, uid string, at time.Time) error {
	if uid == "" {
		return errors.New("uid cannot be empty for ScheduleDeletion operation")
	}
	_, err := r.client.Collection(accountsCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "deletionScheduledAt", Value: at},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("account with uid '%s' not found for deletion scheduling: %w", uid, ErrNotFound)
		}
		return fmt.Errorf("failed to schedule deletion for uid '%s': %w", uid, err)
	}
	return nil
}

// ListDueForDeletion queries accounts whose deletionScheduledAt is at or before now.
func (r *firestoreAccountRepository) ListDueForDeletion(ctx context.Context, now time.Time) ([]string, error) {
	query := r.client.Collection(accountsCollection).Where("deletionScheduledAt", "<=", now)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var uids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate accounts due for deletion: %w", err)
		}
		uids = append(uids, doc.Ref.ID)
	}
	return uids, nil
}

// Delete removes the account document. Firestore document deletes succeed
// even when the document is already absent, which keeps re-runs idempotent.
func (r *firestoreAccountRepository) Delete(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.New("uid cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(accountsCollection).Doc(uid).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete account with uid '%s': %w", uid, err)
	}
	return nil
}
