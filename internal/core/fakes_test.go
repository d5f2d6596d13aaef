package core

import (
	"context"
	"sync"
	"time"

	"pymepos-backend-go/internal/db"
	"pymepos-backend-go/internal/models"
	"pymepos-backend-go/internal/webpay"
)

// fakeAccountRepo is an in-memory AccountRepository for service tests.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*models.Account

	activateErr error
	listErr     error
	deleteErr   map[string]error

	activations []string
	deletions   []string
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts:  make(map[string]*models.Account),
		deleteErr: make(map[string]error),
	}
}

func (f *fakeAccountRepo) put(uid string, account *models.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account.UID = uid
	f.accounts[uid] = account
}

func (f *fakeAccountRepo) GetByID(_ context.Context, uid string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[uid]
	if !ok {
		return nil, db.ErrNotFound
	}
	copy := *account
	return &copy, nil
}

func (f *fakeAccountRepo) ActivateSubscription(_ context.Context, uid, plan string, startedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activations = append(f.activations, uid)
	account, ok := f.accounts[uid]
	if !ok {
		account = &models.Account{UID: uid}
		f.accounts[uid] = account
	}
	account.Plan = plan
	account.SubscriptionStatus = models.SubscriptionActive
	account.PlanStartDate = startedAt
	return nil
}

func (f *fakeAccountRepo) ScheduleDeletion(_ context.Context, uid string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[uid]
	if !ok {
		return db.ErrNotFound
	}
	account.DeletionScheduledAt = &at
	return nil
}

func (f *fakeAccountRepo) ListDueForDeletion(_ context.Context, now time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var uids []string
	for uid, account := range f.accounts {
		if account.DeletionScheduledAt != nil && !account.DeletionScheduledAt.After(now) {
			uids = append(uids, uid)
		}
	}
	return uids, nil
}

func (f *fakeAccountRepo) Delete(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[uid]; err != nil {
		return err
	}
	delete(f.accounts, uid)
	f.deletions = append(f.deletions, uid)
	return nil
}

// fakeBusinessRepo records purge/delete calls.
type fakeBusinessRepo struct {
	purged    []string
	parents   []string
	purgeErr  error
	parentErr error
}

func (f *fakeBusinessRepo) PurgeTransactions(_ context.Context, uid string, _ int) error {
	if f.purgeErr != nil {
		return f.purgeErr
	}
	f.purged = append(f.purged, uid)
	return nil
}

func (f *fakeBusinessRepo) DeleteParent(_ context.Context, uid string) error {
	if f.parentErr != nil {
		return f.parentErr
	}
	f.parents = append(f.parents, uid)
	return nil
}

// fakeGateway is a scripted PaymentGateway.
type fakeGateway struct {
	createErr error
	commitErr error
	result    *webpay.CommitResult

	createdSessionID string
	createCalls      int
	commitCalls      int
}

func (f *fakeGateway) Create(_ context.Context, _, sessionID string, _ int64, _ string) (*webpay.CreateResponse, error) {
	f.createCalls++
	f.createdSessionID = sessionID
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &webpay.CreateResponse{Token: "tok-" + sessionID, URL: "https://webpay.example/init"}, nil
}

func (f *fakeGateway) Commit(_ context.Context, _ string) (*webpay.CommitResult, error) {
	f.commitCalls++
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	return f.result, nil
}

// fakeModel returns scripted responses per attempt.
type fakeModel struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeModel) Generate(_ context.Context, _ string) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", nil
}

// fakeIdentity records identity deletions.
type fakeIdentity struct {
	deleted []string
	err     error
}

func (f *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, uid)
	return nil
}

// fakeTicketRepo is an in-memory TicketRepository.
type fakeTicketRepo struct {
	tickets map[string]*models.SupportTicket
	nextID  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*models.SupportTicket)}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *models.SupportTicket) (string, error) {
	f.nextID++
	id := "ticket-" + time.Now().Format("150405") + "-" + string(rune('a'+f.nextID))
	stored := *ticket
	stored.ID = id
	stored.CreatedAt = time.Now()
	f.tickets[id] = &stored
	return id, nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, ticketID string) (*models.SupportTicket, error) {
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return nil, db.ErrNotFound
	}
	copy := *ticket
	return &copy, nil
}

func (f *fakeTicketRepo) ListByUser(_ context.Context, userID string) ([]*models.SupportTicket, error) {
	var out []*models.SupportTicket
	for _, t := range f.tickets {
		if t.UserID == userID {
			copy := *t
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListAll(_ context.Context) ([]*models.SupportTicket, error) {
	var out []*models.SupportTicket
	for _, t := range f.tickets {
		copy := *t
		out = append(out, &copy)
	}
	return out, nil
}

func (f *fakeTicketRepo) SetResponse(_ context.Context, ticketID, response, adminID string, respondedAt time.Time) error {
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return db.ErrNotFound
	}
	ticket.Response = response
	ticket.Status = models.TicketResolved
	ticket.AdminResponderID = adminID
	ticket.RespondedAt = &respondedAt
	return nil
}
