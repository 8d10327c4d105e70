package ledger

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/cache"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testTenant = "tenant-1"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, postgres.AutoMigrate(db))
	return db
}

func newLedgerUsecase(db *gorm.DB, creditAccount domain.StoreCreditAccount) *DefaultLedgerUsecase {
	return NewDefaultLedgerUsecase(
		repository.NewDefaultLedgerRepository(db),
		repository.NewDefaultTenantRepository(db),
		creditAccount,
		cache.New(time.Minute),
		nil, nil,
	)
}

func seedMember(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	require.NoError(t, db.Create(&models.MemberModel{
		ID:       id,
		TenantID: testTenant,
		Email:    id + "@example.com",
		Status:   string(domain.MemberActive),
	}).Error)
}

// fakeCreditAccount records calls and can be told to fail.
type fakeCreditAccount struct {
	calls []string
	fail  bool
}

func (f *fakeCreditAccount) Credit(memberRef, entryID string, amount decimal.Decimal, note string) (string, error) {
	f.calls = append(f.calls, entryID)
	if f.fail {
		return "", fmt.Errorf("%w: gateway timeout", domain.ErrExternalSync)
	}
	return "ext-" + entryID, nil
}

func TestAddEntryValidation(t *testing.T) {
	db := newTestDB(t)
	uc := newLedgerUsecase(db, nil)

	cases := []struct {
		name  string
		input *AddEntryInput
	}{
		{"missing member", &AddEntryInput{TenantID: testTenant, Amount: decimal.NewFromInt(1), EventType: domain.EventCashback}},
		{"zero amount", &AddEntryInput{TenantID: testTenant, MemberID: "m1", EventType: domain.EventCashback}},
		{"missing event type", &AddEntryInput{TenantID: testTenant, MemberID: "m1", Amount: decimal.NewFromInt(1)}},
		{"source type without id", &AddEntryInput{TenantID: testTenant, MemberID: "m1", Amount: decimal.NewFromInt(1), EventType: domain.EventCashback, SourceType: "order"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.AddEntry(context.Background(), tc.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestAddEntrySourceKeyIdempotent(t *testing.T) {
	db := newTestDB(t)
	uc := newLedgerUsecase(db, nil)
	seedMember(t, db, "m1")

	input := &AddEntryInput{
		TenantID:   testTenant,
		MemberID:   "m1",
		Amount:     decimal.RequireFromString("7.50"),
		EventType:  domain.EventCashback,
		SourceType: "order",
		SourceID:   "1001",
	}

	first, err := uc.AddEntry(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := uc.AddEntry(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntryModel{}).
		Where("tenant_id = ?", testTenant).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	balance, err := uc.GetBalance(context.Background(), testTenant, "m1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("7.50")), "balance = %s", balance)
}

func TestAddEntryIdempotencyKey(t *testing.T) {
	db := newTestDB(t)
	uc := newLedgerUsecase(db, nil)
	seedMember(t, db, "m1")

	input := &AddEntryInput{
		TenantID:       testTenant,
		MemberID:       "m1",
		Amount:         decimal.NewFromInt(5),
		EventType:      domain.EventManualAdjustment,
		IdempotencyKey: "req-42",
		Actor:          "staff@shop.com",
	}

	first, err := uc.AddEntry(context.Background(), input)
	require.NoError(t, err)

	second, err := uc.AddEntry(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestAddEntryRejectsOverdraft(t *testing.T) {
	db := newTestDB(t)
	uc := newLedgerUsecase(db, nil)
	seedMember(t, db, "m1")

	_, err := uc.AddEntry(context.Background(), &AddEntryInput{
		TenantID:  testTenant,
		MemberID:  "m1",
		Amount:    decimal.RequireFromString("10.00"),
		EventType: domain.EventTradeIn,
	})
	require.NoError(t, err)

	_, err = uc.AddEntry(context.Background(), &AddEntryInput{
		TenantID:  testTenant,
		MemberID:  "m1",
		Amount:    decimal.RequireFromString("-15.00"),
		EventType: domain.EventManualAdjustment,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	balance, err := uc.GetBalance(context.Background(), testTenant, "m1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("10.00")), "balance = %s", balance)
}

func TestAddEntryAllowNegative(t *testing.T) {
	db := newTestDB(t)
	uc := newLedgerUsecase(db, nil)
	seedMember(t, db, "m1")

	_, err := uc.AddEntry(context.Background(), &AddEntryInput{
		TenantID:      testTenant,
		MemberID:      "m1",
		Amount:        decimal.RequireFromString("-3.25"),
		EventType:     domain.EventManualAdjustment,
		AllowNegative: true,
		Actor:         "staff@shop.com",
	})
	require.NoError(t, err)

	balance, err := uc.GetBalance(context.Background(), testTenant, "m1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("-3.25")), "balance = %s", balance)
}

func TestGetBalanceCacheInvalidatedOnWrite(t *testing.T) {
	db := newTestDB(t)
	uc := newLedgerUsecase(db, nil)
	seedMember(t, db, "m1")

	balance, err := uc.GetBalance(context.Background(), testTenant, "m1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	_, err = uc.AddEntry(context.Background(), &AddEntryInput{
		TenantID:  testTenant,
		MemberID:  "m1",
		Amount:    decimal.RequireFromString("2.00"),
		EventType: domain.EventCashback,
	})
	require.NoError(t, err)

	balance, err = uc.GetBalance(context.Background(), testTenant, "m1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("2.00")), "balance = %s", balance)
}

func TestSyncPending(t *testing.T) {
	db := newTestDB(t)
	account := &fakeCreditAccount{}
	uc := newLedgerUsecase(db, account)
	seedMember(t, db, "m1")

	entry, err := uc.AddEntry(context.Background(), &AddEntryInput{
		TenantID:  testTenant,
		MemberID:  "m1",
		Amount:    decimal.RequireFromString("4.00"),
		EventType: domain.EventTradeIn,
	})
	require.NoError(t, err)

	report, err := uc.SyncPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, []string{entry.ID}, account.calls)

	var row models.LedgerEntryModel
	require.NoError(t, db.First(&row, "id = ?", entry.ID).Error)
	assert.True(t, row.Synced)
	assert.Equal(t, "ext-"+entry.ID, row.ExternalTxnID)
	require.NotNil(t, row.SyncedAt)

	// Nothing left to push.
	report, err = uc.SyncPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Synced)
}

func TestSyncPendingRecordsFailureAndRetries(t *testing.T) {
	db := newTestDB(t)
	account := &fakeCreditAccount{fail: true}
	uc := newLedgerUsecase(db, account)
	seedMember(t, db, "m1")

	entry, err := uc.AddEntry(context.Background(), &AddEntryInput{
		TenantID:  testTenant,
		MemberID:  "m1",
		Amount:    decimal.RequireFromString("4.00"),
		EventType: domain.EventTradeIn,
	})
	require.NoError(t, err)

	report, err := uc.SyncPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Synced)
	assert.Equal(t, 1, report.Failed)

	var row models.LedgerEntryModel
	require.NoError(t, db.First(&row, "id = ?", entry.ID).Error)
	assert.False(t, row.Synced)
	assert.Contains(t, row.SyncError, "gateway timeout")
	assert.Equal(t, 1, row.SyncAttempts)

	// The local entry still counts toward the balance.
	balance, err := uc.GetBalance(context.Background(), testTenant, "m1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("4.00")))

	// Next run retries the same entry and succeeds.
	account.fail = false
	report, err = uc.SyncPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, []string{entry.ID, entry.ID}, account.calls)
}

func TestIssueAnniversaryRewardOncePerYear(t *testing.T) {
	db := newTestDB(t)
	uc := newLedgerUsecase(db, nil)
	seedMember(t, db, "m1")
	require.NoError(t, db.Create(&models.TenantModel{
		ID:         testTenant,
		ShopDomain: "shop.example.com",
		Settings: domain.TenantSettings{
			Anniversary: domain.AnniversarySettings{
				Enabled:      true,
				RewardAmount: decimal.RequireFromString("5.00"),
				Message:      "Happy anniversary!",
			},
		},
	}).Error)

	first, err := uc.IssueAnniversaryReward(context.Background(), &AnniversaryRewardInput{
		TenantID: testTenant, MemberID: "m1", Year: 2026, Actor: "scheduler",
	})
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "Happy anniversary!", first.Description)

	second, err := uc.IssueAnniversaryReward(context.Background(), &AnniversaryRewardInput{
		TenantID: testTenant, MemberID: "m1", Year: 2026, Actor: "scheduler",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// A new anniversary year is a fresh entry.
	next, err := uc.IssueAnniversaryReward(context.Background(), &AnniversaryRewardInput{
		TenantID: testTenant, MemberID: "m1", Year: 2027, Actor: "scheduler",
	})
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.NotEqual(t, first.ID, next.ID)

	balance, err := uc.GetBalance(context.Background(), testTenant, "m1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("10.00")), "balance = %s", balance)
}

func TestIssueAnniversaryRewardDisabled(t *testing.T) {
	db := newTestDB(t)
	uc := newLedgerUsecase(db, nil)
	seedMember(t, db, "m1")
	require.NoError(t, db.Create(&models.TenantModel{
		ID:         testTenant,
		ShopDomain: "shop.example.com",
	}).Error)

	entry, err := uc.IssueAnniversaryReward(context.Background(), &AnniversaryRewardInput{
		TenantID: testTenant, MemberID: "m1", Year: 2026,
	})
	require.NoError(t, err)
	assert.Nil(t, entry)
}
