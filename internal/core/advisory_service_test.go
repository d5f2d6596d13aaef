package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pymepos-backend-go/internal/genai"
	"pymepos-backend-go/internal/models"
)

func newAdvisoryFixture(t *testing.T, model *fakeModel) (*fakeAccountRepo, AdvisoryService) {
	t.Helper()
	accounts := newFakeAccountRepo()
	service := NewAdvisoryService(accounts, model, zap.NewNop())
	// Shrink the retry backoff so failure-path tests finish quickly.
	service.(*advisoryService).backoffUnit = time.Millisecond
	return accounts, service
}

func premiumAccount() *models.Account {
	return &models.Account{
		Email:              "dueno@pyme.cl",
		Plan:               models.PlanPremium,
		SubscriptionStatus: models.SubscriptionActive,
	}
}

func sampleSummary() map[string]interface{} {
	return map[string]interface{}{
		"ventasMes":   152000,
		"gastosMes":   98000,
		"topProducto": "café en grano",
	}
}

func TestAdviseRequiresUserID(t *testing.T) {
	model := &fakeModel{}
	_, service := newAdvisoryFixture(t, model)

	_, err := service.Advise(context.Background(), "", sampleSummary())
	assert.ErrorIs(t, err, ErrAdvisoryNoUser)
	assert.Zero(t, model.calls, "authorization failure must never reach the model")
}

func TestAdviseUnknownAccountIsNotPremium(t *testing.T) {
	model := &fakeModel{}
	_, service := newAdvisoryFixture(t, model)

	_, err := service.Advise(context.Background(), "nobody", sampleSummary())
	assert.ErrorIs(t, err, ErrAdvisoryNotPremium)
	assert.Zero(t, model.calls)
}

func TestAdviseRejectsNonPremiumPlans(t *testing.T) {
	model := &fakeModel{}
	accounts, service := newAdvisoryFixture(t, model)

	accounts.put("user-free", &models.Account{Plan: models.PlanFree})
	_, err := service.Advise(context.Background(), "user-free", sampleSummary())
	assert.ErrorIs(t, err, ErrAdvisoryNotPremium)

	// Premium plan without an active subscription is not entitled either.
	accounts.put("user-lapsed", &models.Account{
		Plan:               models.PlanPremium,
		SubscriptionStatus: models.SubscriptionNone,
	})
	_, err = service.Advise(context.Background(), "user-lapsed", sampleSummary())
	assert.ErrorIs(t, err, ErrAdvisoryNotPremium)

	assert.Zero(t, model.calls)
}

func TestAdviseReturnsModelOutput(t *testing.T) {
	model := &fakeModel{responses: []string{"<h2>Recomendaciones</h2><ul><li>Reduce inventario</li></ul>"}}
	accounts, service := newAdvisoryFixture(t, model)
	accounts.put("user-1", premiumAccount())

	html, err := service.Advise(context.Background(), "user-1", sampleSummary())
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Recomendaciones</h2>")
	assert.Equal(t, 1, model.calls)
}

func TestAdviseStripsCodeFences(t *testing.T) {
	model := &fakeModel{responses: []string{"```html\n<p>Hola</p>\n```"}}
	accounts, service := newAdvisoryFixture(t, model)
	accounts.put("user-1", premiumAccount())

	html, err := service.Advise(context.Background(), "user-1", sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, "<p>Hola</p>", html)
}

func TestAdviseRetriesTransientFailures(t *testing.T) {
	model := &fakeModel{
		errs:      []error{genai.ErrUnavailable, genai.ErrUnavailable, nil},
		responses: []string{"", "", "<p>listo</p>"},
	}
	accounts, service := newAdvisoryFixture(t, model)
	accounts.put("user-1", premiumAccount())

	html, err := service.Advise(context.Background(), "user-1", sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, "<p>listo</p>", html)
	assert.Equal(t, 3, model.calls)
}

func TestAdviseGivesUpAfterThreeAttempts(t *testing.T) {
	model := &fakeModel{errs: []error{genai.ErrUnavailable, genai.ErrUnavailable, genai.ErrUnavailable}}
	accounts, service := newAdvisoryFixture(t, model)
	accounts.put("user-1", premiumAccount())

	_, err := service.Advise(context.Background(), "user-1", sampleSummary())
	require.Error(t, err)
	assert.Equal(t, 3, model.calls)
}

func TestAdviseKeepsQuotaErrorDistinguishable(t *testing.T) {
	quotaErr := genai.ErrQuotaExceeded
	model := &fakeModel{errs: []error{quotaErr, quotaErr, quotaErr}}
	accounts, service := newAdvisoryFixture(t, model)
	accounts.put("user-1", premiumAccount())

	_, err := service.Advise(context.Background(), "user-1", sampleSummary())
	assert.ErrorIs(t, err, genai.ErrQuotaExceeded)
}

func TestAdviseStopsOnCancelledContext(t *testing.T) {
	model := &fakeModel{errs: []error{errors.New("transient"), errors.New("transient"), errors.New("transient")}}
	accounts := newFakeAccountRepo()
	service := NewAdvisoryService(accounts, model, zap.NewNop())
	// Ample backoff so the cancellation wins the race against the timer.
	service.(*advisoryService).backoffUnit = time.Minute
	accounts.put("user-1", premiumAccount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Advise(ctx, "user-1", sampleSummary())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, model.calls, "no further attempts after cancellation")
}
