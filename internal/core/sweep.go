package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pymepos-backend-go/internal/db"
)

// Sweeper periodically finds accounts whose deferred deletion has fallen due
// and runs the deletion orchestrator on each. It is an independent background
// task: it holds no lock that could block checkout or advisory requests.
type Sweeper struct {
	deletion DeletionService
	accounts db.AccountRepository
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweeper creates a Sweeper that runs one cycle per interval.
func NewSweeper(deletion DeletionService, accounts db.AccountRepository, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		deletion: deletion,
		accounts: accounts,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled, executing one sweep cycle per tick.
// Intended to be started as a goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("deferred-deletion sweep started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("deferred-deletion sweep stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle performs one sweep. A failed due-accounts query skips the cycle
// (the next tick retries); a failure deleting one account is logged and the
// sweep moves on to the rest. The recover guard keeps a bad cycle from ever
// taking the process down.
func (s *Sweeper) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in deletion sweep cycle", zap.Any("panic", r))
		}
	}()

	uids, err := s.accounts.ListDueForDeletion(ctx, s.now())
	if err != nil {
		s.logger.Warn("sweep cycle skipped: could not query accounts due for deletion", zap.Error(err))
		return
	}
	if len(uids) == 0 {
		return
	}

	s.logger.Info("sweep found accounts due for deletion", zap.Int("count", len(uids)))
	for _, uid := range uids {
		if err := s.deletion.DeleteAccount(ctx, uid); err != nil {
			s.logger.Error("sweep failed to delete account, skipping",
				zap.String("uid", uid), zap.Error(err))
			continue
		}
	}
}
