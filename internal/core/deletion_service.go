package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pymepos-backend-go/internal/db"
)

// ErrInvalidUID is returned when a deletion is requested without a uid.
var ErrInvalidUID = errors.New("uid is required")

// deletionService implements DeletionService. Step order avoids orphaned
// state: the identity record goes first so a half-deleted account can no
// longer sign in, then the nested data, then the parent documents. Every
// step treats "already deleted" as success, so the whole operation is safely
// re-runnable — an admin call and the sweep may both hit the same uid.
type deletionService struct {
	identity  IdentityDeleter
	accounts  db.AccountRepository
	business  db.BusinessDataRepository
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
}

// NewDeletionService creates a DeletionService. batchSize bounds each atomic
// delete batch of the transactions purge.
func NewDeletionService(
	identity IdentityDeleter,
	accounts db.AccountRepository,
	business db.BusinessDataRepository,
	batchSize int,
	logger *zap.Logger,
) DeletionService {
	return &deletionService{
		identity:  identity,
		accounts:  accounts,
		business:  business,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// DeleteAccount removes the identity record, purges the transactions subtree,
// and deletes the business-data and account documents, in that order. Any
// identity-provider error other than "user not found" aborts the operation
// before any data is touched.
func (s *deletionService) DeleteAccount(ctx context.Context, uid string) error {
	if uid == "" {
		return ErrInvalidUID
	}

	if err := s.identity.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("identity deletion for uid '%s': %w", uid, err)
	}

	if err := s.business.PurgeTransactions(ctx, uid, s.batchSize); err != nil {
		return fmt.Errorf("transactions purge for uid '%s': %w", uid, err)
	}

	if err := s.business.DeleteParent(ctx, uid); err != nil {
		return fmt.Errorf("business data deletion for uid '%s': %w", uid, err)
	}

	if err := s.accounts.Delete(ctx, uid); err != nil {
		return fmt.Errorf("account document deletion for uid '%s': %w", uid, err)
	}

	s.logger.Info("account deleted", zap.String("uid", uid))
	return nil
}

// ScheduleDeletion defers the account's deletion by the given number of days.
func (s *deletionService) ScheduleDeletion(ctx context.Context, uid string, days int) error {
	if uid == "" {
		return ErrInvalidUID
	}
	if days < 0 {
		return fmt.Errorf("days cannot be negative, got %d", days)
	}

	at := s.now().Add(time.Duration(days) * 24 * time.Hour)
	if err := s.accounts.ScheduleDeletion(ctx, uid, at); err != nil {
		return err
	}

	s.logger.Info("account deletion scheduled",
		zap.String("uid", uid),
		zap.Time("deletionScheduledAt", at))
	return nil
}
