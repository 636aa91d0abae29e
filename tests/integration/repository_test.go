//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/repositories"
)

func TestCreateWithinQuota_ConcurrentAppliesNeverExceedLimit(t *testing.T) {
	resetDB(t)
	ctx := context.Background()

	user, err := SeedUser(ctx, testDB.DB, "racer", models.RoleUser)
	require.NoError(t, err)
	jobs, err := SeedJobs(ctx, testDB.DB, "Race", 20)
	require.NoError(t, err)

	repo := repositories.NewApplicationRepository(testDB.DB)
	now := time.Now().UTC()
	windowStart := now.Add(-time.Hour)
	windowEnd := now.Add(time.Hour)
	const limit = 5

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, exceeded := 0, 0

	for _, job := range jobs {
		wg.Add(1)
		go func(jobID string) {
			defer wg.Done()
			_, err := repo.CreateWithinQuota(ctx, &models.Application{
				UserID:    user.ID,
				JobID:     jobID,
				AppliedAt: now,
			}, windowStart, windowEnd, limit)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, models.ErrQuotaExceeded):
				exceeded++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(job.ID)
	}
	wg.Wait()

	assert.Equal(t, limit, created)
	assert.Equal(t, len(jobs)-limit, exceeded)
}

func TestCreateWithinQuota_DuplicateApplicationConflicts(t *testing.T) {
	resetDB(t)
	ctx := context.Background()

	user, err := SeedUser(ctx, testDB.DB, "dup", models.RoleUser)
	require.NoError(t, err)
	job, err := SeedJob(ctx, testDB.DB, "Only once")
	require.NoError(t, err)

	repo := repositories.NewApplicationRepository(testDB.DB)
	now := time.Now().UTC()
	apply := func() error {
		_, err := repo.CreateWithinQuota(ctx, &models.Application{UserID: user.ID, JobID: job.ID, AppliedAt: now},
			now.Add(-time.Hour), now.Add(time.Hour), models.DailyApplicationLimit)
		return err
	}

	require.NoError(t, apply())
	assert.ErrorIs(t, apply(), models.ErrConflict)
}

func TestCreditAdjust_NeverGoesNegative(t *testing.T) {
	resetDB(t)
	ctx := context.Background()

	user, err := SeedUser(ctx, testDB.DB, "saver", models.RoleUser)
	require.NoError(t, err)
	admin, err := SeedUser(ctx, testDB.DB, "banker", models.RoleAdmin)
	require.NoError(t, err)

	repo := repositories.NewCreditRepository(testDB.DB)
	txn, err := repo.Adjust(ctx, user.ID, 3, models.CreditReasonAdminAdjustment, &admin.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, txn.BalanceAfter)

	// Ten concurrent -1 adjustments against a balance of 3
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, insufficient := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Adjust(ctx, user.ID, -1, models.CreditReasonAdminAdjustment, &admin.ID, nil)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, models.ErrInsufficientCredits) {
				insufficient++
			} else {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, 7, insufficient)

	refreshed, err := repositories.NewUserRepository(testDB.DB).GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, refreshed.BankedCredits)

	ledger, err := repo.ListByUser(ctx, user.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, ledger, 4)
}

func TestCreditAdjust_UnknownUser(t *testing.T) {
	resetDB(t)
	_, err := repositories.NewCreditRepository(testDB.DB).Adjust(context.Background(),
		"00000000-0000-0000-0000-000000000000", 5, models.CreditReasonAdminAdjustment, nil, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRegister_ConcurrentReferralRedemptions(t *testing.T) {
	resetDB(t)
	ctx := context.Background()

	referrer, err := SeedUser(ctx, testDB.DB, "referrer", models.RoleUser)
	require.NoError(t, err)

	referrals := repositories.NewReferralRepository(testDB.DB)
	rc, err := referrals.InsertIfAbsent(ctx, referrer.ID, "ABCD2345")
	require.NoError(t, err)
	require.NotNil(t, rc)

	users := repositories.NewUserRepository(testDB.DB)
	const referees = 8
	var wg sync.WaitGroup
	for i := 0; i < referees; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, redemption, err := users.Register(ctx, &models.User{
				Username:     fmt.Sprintf("referee%d", i),
				Email:        fmt.Sprintf("referee%d@example.com", i),
				PasswordHash: "x",
			}, "abcd2345")
			if assert.NoError(t, err) && assert.NotNil(t, redemption) {
				assert.Equal(t, models.ReferralBonusCredits, created.BankedCredits)
				assert.Equal(t, referrer.ID, redemption.ReferrerID)
			}
		}(i)
	}
	wg.Wait()

	updated, err := referrals.GetByUserID(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, referees, updated.UsageCount)

	refreshed, err := users.GetByID(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, referees*models.ReferralBonusCredits, refreshed.BankedCredits)
}

func TestRegister_UnknownReferralCodeIsIgnored(t *testing.T) {
	resetDB(t)
	created, redemption, err := repositories.NewUserRepository(testDB.DB).Register(context.Background(), &models.User{
		Username:     "solo",
		Email:        "solo@example.com",
		PasswordHash: "x",
	}, "ZZZZ9999")

	require.NoError(t, err)
	assert.Nil(t, redemption)
	assert.Equal(t, 0, created.BankedCredits)
}

func TestInsertIfAbsent_SecondCodeForSameUserLoses(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	user, err := SeedUser(ctx, testDB.DB, "coder", models.RoleUser)
	require.NoError(t, err)

	referrals := repositories.NewReferralRepository(testDB.DB)
	first, err := referrals.InsertIfAbsent(ctx, user.ID, "FIRST234")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := referrals.InsertIfAbsent(ctx, user.ID, "OTHER567")
	require.NoError(t, err)
	assert.Nil(t, second)
}

func TestCleanup_PrunesReadNotificationsAndExpiredSessions(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	user, err := SeedUser(ctx, testDB.DB, "tidy", models.RoleUser)
	require.NoError(t, err)

	notifications := repositories.NewNotificationRepository(testDB.DB)
	for i := 0; i < 2; i++ {
		_, err := notifications.Create(ctx, &models.Notification{UserID: user.ID, Type: models.NotificationApplicationStatus, Title: "t", Body: "b"})
		require.NoError(t, err)
	}
	_, err = notifications.MarkAllRead(ctx, user.ID)
	require.NoError(t, err)
	_, err = notifications.Create(ctx, &models.Notification{UserID: user.ID, Type: models.NotificationApplicationStatus, Title: "unread", Body: "b"})
	require.NoError(t, err)

	deleted, err := notifications.DeleteReadBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	unread, err := notifications.CountUnread(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	sessions := repositories.NewSessionRepository(testDB.DB)
	require.NoError(t, sessions.Revoke(ctx, "11111111-1111-1111-1111-111111111111", user.ID, time.Now().Add(-time.Minute)))
	require.NoError(t, sessions.Revoke(ctx, "22222222-2222-2222-2222-222222222222", user.ID, time.Now().Add(time.Hour)))

	removed, err := sessions.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	revoked, err := sessions.IsRevoked(ctx, "22222222-2222-2222-2222-222222222222")
	require.NoError(t, err)
	assert.True(t, revoked)
}
