package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pymepos-backend-go/internal/models"
)

func newDeletionFixture(t *testing.T) (*fakeIdentity, *fakeAccountRepo, *fakeBusinessRepo, DeletionService) {
	t.Helper()
	identity := &fakeIdentity{}
	accounts := newFakeAccountRepo()
	business := &fakeBusinessRepo{}
	service := NewDeletionService(identity, accounts, business, 400, zap.NewNop())
	return identity, accounts, business, service
}

func TestDeleteAccountRemovesEverything(t *testing.T) {
	identity, accounts, business, service := newDeletionFixture(t)
	ctx := context.Background()

	accounts.put("user-1", &models.Account{Email: "dueno@pyme.cl"})

	require.NoError(t, service.DeleteAccount(ctx, "user-1"))

	assert.Equal(t, []string{"user-1"}, identity.deleted)
	assert.Equal(t, []string{"user-1"}, business.purged)
	assert.Equal(t, []string{"user-1"}, business.parents)
	assert.Equal(t, []string{"user-1"}, accounts.deletions)
}

func TestDeleteAccountRequiresUID(t *testing.T) {
	_, _, _, service := newDeletionFixture(t)

	err := service.DeleteAccount(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidUID)
}

func TestDeleteAccountIsIdempotent(t *testing.T) {
	_, accounts, _, service := newDeletionFixture(t)
	ctx := context.Background()

	accounts.put("user-1", &models.Account{})

	require.NoError(t, service.DeleteAccount(ctx, "user-1"))
	// Every step tolerates already-deleted state, so the rerun succeeds too.
	require.NoError(t, service.DeleteAccount(ctx, "user-1"))
}

func TestDeleteAccountIdentityErrorAbortsBeforeData(t *testing.T) {
	identity, accounts, business, service := newDeletionFixture(t)
	identity.err = errors.New("identity provider unreachable")

	accounts.put("user-1", &models.Account{})

	err := service.DeleteAccount(context.Background(), "user-1")
	require.Error(t, err)

	// No data was touched: the account still exists and nothing was purged.
	assert.Empty(t, business.purged)
	assert.Empty(t, business.parents)
	assert.Empty(t, accounts.deletions)
	_, getErr := accounts.GetByID(context.Background(), "user-1")
	assert.NoError(t, getErr)
}

func TestDeleteAccountPurgeErrorStopsBeforeParent(t *testing.T) {
	_, accounts, business, service := newDeletionFixture(t)
	business.purgeErr = errors.New("batch commit failed")

	accounts.put("user-1", &models.Account{})

	err := service.DeleteAccount(context.Background(), "user-1")
	require.Error(t, err)
	assert.Empty(t, business.parents, "parent document must outlive a failed purge")
	assert.Empty(t, accounts.deletions)
}

func TestScheduleDeletion(t *testing.T) {
	_, accounts, _, service := newDeletionFixture(t)
	ctx := context.Background()

	accounts.put("user-1", &models.Account{})

	before := time.Now()
	require.NoError(t, service.ScheduleDeletion(ctx, "user-1", 30))

	account, err := accounts.GetByID(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, account.DeletionScheduledAt)

	want := before.Add(30 * 24 * time.Hour)
	assert.WithinDuration(t, want, *account.DeletionScheduledAt, time.Minute)
}

func TestScheduleDeletionValidation(t *testing.T) {
	_, accounts, _, service := newDeletionFixture(t)
	ctx := context.Background()

	accounts.put("user-1", &models.Account{})

	assert.ErrorIs(t, service.ScheduleDeletion(ctx, "", 30), ErrInvalidUID)
	assert.Error(t, service.ScheduleDeletion(ctx, "user-1", -1))
}
