package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pymepos-backend-go/internal/db"
	"pymepos-backend-go/internal/models"
	"pymepos-backend-go/internal/pendingstore"
)

// Validation errors for checkout creation.
var (
	ErrInvalidAmount = errors.New("amount must be a positive integer")
	ErrMissingPlan   = errors.New("plan is required")
	ErrMissingUserID = errors.New("userId is required")
)

// ReturnStatus is the terminal state of a checkout attempt. Every value maps
// to a distinct redirect outcome on the client receipt page.
type ReturnStatus string

const (
	ReturnSuccess   ReturnStatus = "success"
	ReturnRejected  ReturnStatus = "rejected"
	ReturnCancelled ReturnStatus = "cancelled"
	ReturnInvalid   ReturnStatus = "invalid"
	ReturnError     ReturnStatus = "error"
)

// CheckoutSession is what the client needs to send the buyer to the gateway.
type CheckoutSession struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// ReturnOutcome is the resolved result of a gateway return. Receipt detail
// fields are populated only on ReturnSuccess.
type ReturnOutcome struct {
	Status ReturnStatus
	Amount int64
	Plan   string
	Card   string
	Date   time.Time
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	gateway   PaymentGateway
	pending   pendingstore.Store
	accounts  db.AccountRepository
	returnURL string
	logger    *zap.Logger
	now       func() time.Time
}

// NewCheckoutService creates a CheckoutService. returnURL is the fixed URL
// the gateway redirects the browser back to after payment.
func NewCheckoutService(
	gateway PaymentGateway,
	pending pendingstore.Store,
	accounts db.AccountRepository,
	returnURL string,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		gateway:   gateway,
		pending:   pending,
		accounts:  accounts,
		returnURL: returnURL,
		logger:    logger,
		now:       time.Now,
	}
}

// newAttemptIDs generates the buy-order and session identifiers for one
// checkout attempt. A timestamp gives operators a readable anchor; the uuid
// suffix keeps two attempts created in the same second from colliding.
func (s *checkoutService) newAttemptIDs() (buyOrder, sessionID string) {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	ts := s.now().Unix()
	return fmt.Sprintf("O-%d-%s", ts, suffix), fmt.Sprintf("S-%d-%s", ts, suffix)
}

// CreateTransaction validates the purchase, records the pending intent and
// opens the gateway session.
func (s *checkoutService) CreateTransaction(ctx context.Context, userID, plan string, amount int64) (*CheckoutSession, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if plan == "" {
		return nil, ErrMissingPlan
	}
	if userID == "" {
		return nil, ErrMissingUserID
	}

	buyOrder, sessionID := s.newAttemptIDs()

	intent := models.PendingTransaction{
		SessionID: sessionID,
		Plan:      plan,
		Amount:    amount,
		UserID:    userID,
		CreatedAt: s.now(),
	}
	if err := s.pending.Put(ctx, sessionID, intent); err != nil {
		return nil, fmt.Errorf("failed to record pending transaction: %w", err)
	}

	created, err := s.gateway.Create(ctx, buyOrder, sessionID, amount, s.returnURL)
	if err != nil {
		// The intent is orphaned if session creation fails; reclaim it now
		// rather than waiting for the retention sweep.
		if _, _, takeErr := s.pending.TakeAndExpire(ctx, sessionID); takeErr != nil {
			s.logger.Warn("failed to reclaim pending transaction after gateway error",
				zap.String("sessionId", sessionID), zap.Error(takeErr))
		}
		return nil, err
	}

	s.logger.Info("checkout session created",
		zap.String("buyOrder", buyOrder),
		zap.String("sessionId", sessionID),
		zap.String("userId", userID),
		zap.String("plan", plan),
		zap.Int64("amount", amount))

	return &CheckoutSession{URL: created.URL, Token: created.Token}, nil
}

// CommitReturn resolves the gateway's return redirect.
//
// A TBK_TOKEN without a commit token means the buyer cancelled at the
// gateway. With a commit token present, the transaction is committed and the
// stored intent looked up by the commit result's session id — the intent, not
// any client-supplied value, decides which plan/user the purchase is for. A
// missing intent after an authorized commit resolves to rejected: updating an
// account to an unknown plan is unsafe. The subscription update is the last
// step, so an error outcome never leaves partial subscription state.
func (s *checkoutService) CommitReturn(ctx context.Context, tokenWS, tbkToken string) *ReturnOutcome {
	if tokenWS == "" {
		if tbkToken != "" {
			s.logger.Info("checkout cancelled by buyer", zap.String("tbkToken", tbkToken))
			return &ReturnOutcome{Status: ReturnCancelled}
		}
		return &ReturnOutcome{Status: ReturnInvalid}
	}

	result, err := s.gateway.Commit(ctx, tokenWS)
	if err != nil {
		s.logger.Error("gateway commit failed", zap.Error(err))
		return &ReturnOutcome{Status: ReturnError}
	}

	intent, ok, err := s.pending.TakeAndExpire(ctx, result.SessionID)
	if err != nil {
		s.logger.Error("failed to read pending transaction",
			zap.String("sessionId", result.SessionID), zap.Error(err))
		return &ReturnOutcome{Status: ReturnError}
	}
	if !ok {
		s.logger.Warn("no pending transaction for committed session",
			zap.String("sessionId", result.SessionID),
			zap.String("buyOrder", result.BuyOrder))
		return &ReturnOutcome{Status: ReturnRejected}
	}

	if !result.Authorized() {
		s.logger.Info("payment not authorized",
			zap.String("sessionId", result.SessionID),
			zap.String("status", result.Status),
			zap.Int("responseCode", result.ResponseCode))
		return &ReturnOutcome{Status: ReturnRejected}
	}

	if intent.UserID != "" {
		if err := s.accounts.ActivateSubscription(ctx, intent.UserID, intent.Plan, s.now()); err != nil {
			s.logger.Error("failed to update subscription after authorized payment",
				zap.String("userId", intent.UserID),
				zap.String("plan", intent.Plan),
				zap.Error(err))
			return &ReturnOutcome{Status: ReturnError}
		}
	}

	s.logger.Info("checkout committed",
		zap.String("sessionId", result.SessionID),
		zap.String("userId", intent.UserID),
		zap.String("plan", intent.Plan),
		zap.Int64("amount", result.Amount))

	return &ReturnOutcome{
		Status: ReturnSuccess,
		Amount: result.Amount,
		Plan:   intent.Plan,
		Card:   result.CardDetail.CardNumber,
		Date:   result.TransactionDate,
	}
}
