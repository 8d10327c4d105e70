package distribution

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
	"github.com/tradeup-app/loyalty-service/internal/usecase/ledger"
	"github.com/tradeup-app/loyalty-service/internal/usecase/tier"
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

type fixture struct {
	db     *gorm.DB
	dist   *DefaultDistributionUsecase
	ledger ledger.LedgerUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	ledgerUC := ledger.NewDefaultLedgerUsecase(
		repository.NewDefaultLedgerRepository(db),
		repository.NewDefaultTenantRepository(db),
		nil,
		cache.New(time.Minute),
		nil, nil,
	)
	distUC := NewDefaultDistributionUsecase(
		repository.NewDefaultDistributionRepository(db),
		repository.NewDefaultTenantRepository(db),
		repository.NewDefaultMemberRepository(db),
		repository.NewDefaultTierRepository(db),
		ledgerUC,
		nil, nil,
		7,
	)
	return &fixture{db: db, dist: distUC, ledger: ledgerUC}
}

func (f *fixture) seedTenant(t *testing.T, settings domain.TenantSettings) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.TenantModel{
		ID:         testTenant,
		ShopDomain: "shop.example.com",
		Settings:   settings,
	}).Error)
}

func (f *fixture) seedTier(t *testing.T, id, name string, monthly string) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.TierModel{
		ID:            id,
		TenantID:      testTenant,
		Name:          name,
		MonthlyCredit: decimal.RequireFromString(monthly),
		IsActive:      true,
	}).Error)
}

func (f *fixture) seedMember(t *testing.T, id string, tierID string, tierName string) {
	t.Helper()
	member := &models.MemberModel{
		ID:       id,
		TenantID: testTenant,
		Email:    id + "@example.com",
		Status:   string(domain.MemberActive),
	}
	if tierID != "" {
		member.TierID = &tierID
		member.TierName = tierName
	}
	require.NoError(t, f.db.Create(member).Error)
}

var march = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

func TestCreateMonthlyCreditSnapshotsPreview(t *testing.T) {
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{})
	f.seedTier(t, "gold", "Gold", "7.50")
	f.seedTier(t, "free", "Free", "0")
	f.seedMember(t, "m1", "gold", "Gold")
	f.seedMember(t, "m2", "free", "Free")
	f.seedMember(t, "m3", "", "")

	d, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "monthly-2026-03", d.ReferenceKey)
	assert.Equal(t, domain.DistributionPending, d.Status)
	require.NotNil(t, d.Preview)
	assert.Equal(t, 1, d.Preview.TotalMembers)
	assert.Equal(t, 1, d.Preview.Skipped)
	assert.True(t, d.Preview.TotalAmount.Equal(decimal.RequireFromString("7.50")))
	require.Len(t, d.Preview.Members, 1)
	assert.Equal(t, "m1", d.Preview.Members[0].MemberID)
}

func TestCreateMonthlyCreditNoEligibleMembers(t *testing.T) {
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{})
	f.seedTier(t, "free", "Free", "0")
	f.seedMember(t, "m1", "free", "Free")

	d, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestCreateMonthlyCreditDuplicatePeriod(t *testing.T) {
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{})
	f.seedTier(t, "gold", "Gold", "7.50")
	f.seedMember(t, "m1", "gold", "Gold")

	first, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)
	require.NotNil(t, first)

	_, err = f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Rejecting the pending run frees the period for a corrected one.
	_, err = f.dist.Reject(context.Background(), &RejectInput{
		TenantID: testTenant, ID: first.ID, Rejector: "owner@shop.com", Reason: "wrong amounts",
	})
	require.NoError(t, err)

	second, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestApproveCreditsEveryPlannedMember(t *testing.T) {
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{})
	f.seedTier(t, "gold", "Gold", "7.50")
	f.seedTier(t, "silver", "Silver", "3.00")
	f.seedMember(t, "m1", "gold", "Gold")
	f.seedMember(t, "m2", "silver", "Silver")

	d, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)

	approved, err := f.dist.Approve(context.Background(), &ApproveInput{
		TenantID: testTenant, ID: d.ID, Approver: "owner@shop.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DistributionApproved, approved.Status)
	assert.Equal(t, "owner@shop.com", approved.ApprovedBy)
	require.NotNil(t, approved.ExecutionResult)
	assert.Equal(t, 2, approved.ExecutionResult.Credited)
	assert.True(t, approved.ExecutionResult.TotalAmount.Equal(decimal.RequireFromString("10.50")))

	balance, err := f.ledger.GetBalance(context.Background(), testTenant, "m1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("7.50")), "balance = %s", balance)

	// A second approval attempt is a conflict, not a double credit.
	_, err = f.dist.Approve(context.Background(), &ApproveInput{
		TenantID: testTenant, ID: d.ID, Approver: "owner@shop.com",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	var count int64
	require.NoError(t, f.db.Model(&models.LedgerEntryModel{}).
		Where("tenant_id = ? AND event_type = ?", testTenant, string(domain.EventMonthlyCredit)).
		Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestApproveExpiredDistribution(t *testing.T) {
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{})
	f.seedTier(t, "gold", "Gold", "7.50")
	f.seedMember(t, "m1", "gold", "Gold")

	d, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.db.Model(&models.PendingDistributionModel{}).
		Where("id = ?", d.ID).
		Update("expires_at", past).Error)

	_, err = f.dist.Approve(context.Background(), &ApproveInput{
		TenantID: testTenant, ID: d.ID, Approver: "owner@shop.com",
	})
	assert.ErrorIs(t, err, domain.ErrDistributionExpired)

	stored, err := f.dist.GetDistribution(context.Background(), testTenant, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DistributionExpired, stored.Status)

	// No credits went out.
	var count int64
	require.NoError(t, f.db.Model(&models.LedgerEntryModel{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestAutoApproveRequiresManualBootstrap(t *testing.T) {
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{
		Automation: domain.AutomationSettings{MonthlyCreditAutoApprove: true},
	})
	f.seedTier(t, "gold", "Gold", "7.50")
	f.seedMember(t, "m1", "gold", "Gold")

	d, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)

	// No human has ever approved for this tenant, so unattended approval is
	// refused even with the setting on.
	_, err = f.dist.Approve(context.Background(), &ApproveInput{
		TenantID: testTenant, ID: d.ID, Approver: "scheduler", Auto: true,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// A manual approval completes the bootstrap and persists the flag.
	_, err = f.dist.Approve(context.Background(), &ApproveInput{
		TenantID: testTenant, ID: d.ID, Approver: "owner@shop.com",
	})
	require.NoError(t, err)

	tenant, err := repository.NewDefaultTenantRepository(f.db).GetTenantByID(testTenant)
	require.NoError(t, err)
	assert.True(t, tenant.Settings.Automation.FirstMonthlyCreditCompleted)

	april := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	next, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, april)
	require.NoError(t, err)

	approved, err := f.dist.Approve(context.Background(), &ApproveInput{
		TenantID: testTenant, ID: next.ID, Approver: "scheduler", Auto: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DistributionApproved, approved.Status)
}

func TestManualApprovalCanEnableAutoApprove(t *testing.T) {
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{})
	f.seedTier(t, "gold", "Gold", "7.50")
	f.seedMember(t, "m1", "gold", "Gold")

	d, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)

	// The approver opts in to unattended approval for future periods.
	_, err = f.dist.Approve(context.Background(), &ApproveInput{
		TenantID:          testTenant,
		ID:                d.ID,
		Approver:          "owner@shop.com",
		EnableAutoApprove: true,
	})
	require.NoError(t, err)

	tenant, err := repository.NewDefaultTenantRepository(f.db).GetTenantByID(testTenant)
	require.NoError(t, err)
	assert.True(t, tenant.Settings.Automation.MonthlyCreditAutoApprove)
	assert.True(t, tenant.Settings.Automation.FirstMonthlyCreditCompleted)

	april := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	next, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, april)
	require.NoError(t, err)

	approved, err := f.dist.Approve(context.Background(), &ApproveInput{
		TenantID: testTenant, ID: next.ID, Approver: "scheduler", Auto: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DistributionApproved, approved.Status)
}

// A tenant whose history already holds an approved distribution passes the
// bootstrap even when the settings flag was never written, e.g. rows imported
// before the flag existed.
func TestAutoApproveBootstrapsFromApprovedHistory(t *testing.T) {
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{
		Automation: domain.AutomationSettings{MonthlyCreditAutoApprove: true},
	})
	f.seedTier(t, "gold", "Gold", "7.50")
	f.seedMember(t, "m1", "gold", "Gold")

	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&models.PendingDistributionModel{
		ID:           "dist-feb",
		TenantID:     testTenant,
		Type:         string(domain.DistributionMonthlyCredit),
		ReferenceKey: "monthly-2026-02",
		Status:       string(domain.DistributionApproved),
		ExpiresAt:    now.Add(-24 * time.Hour),
		ApprovedAt:   &now,
		ApprovedBy:   "owner@shop.com",
	}).Error)

	d, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)

	approved, err := f.dist.Approve(context.Background(), &ApproveInput{
		TenantID: testTenant, ID: d.ID, Approver: "scheduler", Auto: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DistributionApproved, approved.Status)
}

func TestAutoApproveRespectsThreshold(t *testing.T) {
	threshold := decimal.RequireFromString("5.00")
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{
		Automation: domain.AutomationSettings{
			MonthlyCreditAutoApprove:    true,
			FirstMonthlyCreditCompleted: true,
			AutoApproveThreshold:        &threshold,
		},
	})
	f.seedTier(t, "gold", "Gold", "7.50")
	f.seedMember(t, "m1", "gold", "Gold")

	d, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)

	_, err = f.dist.Approve(context.Background(), &ApproveInput{
		TenantID: testTenant, ID: d.ID, Approver: "scheduler", Auto: true,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRunMonthlyCycle(t *testing.T) {
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{
		Automation: domain.AutomationSettings{
			MonthlyCreditAutoApprove:    true,
			FirstMonthlyCreditCompleted: true,
		},
	})
	f.seedTier(t, "gold", "Gold", "7.50")
	f.seedMember(t, "m1", "gold", "Gold")

	require.NoError(t, f.dist.RunMonthlyCycle(context.Background(), march))

	list, err := f.dist.ListDistributions(context.Background(), testTenant, "", true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.DistributionApproved, list[0].Status)
	assert.Equal(t, "scheduler", list[0].ApprovedBy)

	balance, err := f.ledger.GetBalance(context.Background(), testTenant, "m1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("7.50")))

	// Rerunning the cycle for the same period changes nothing.
	require.NoError(t, f.dist.RunMonthlyCycle(context.Background(), march))
	list, err = f.dist.ListDistributions(context.Background(), testTenant, "", true)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSweepExpiredFlipsOnce(t *testing.T) {
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{})
	f.seedTier(t, "gold", "Gold", "7.50")
	f.seedMember(t, "m1", "gold", "Gold")

	d, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.db.Model(&models.PendingDistributionModel{}).
		Where("id = ?", d.ID).
		Update("expires_at", past).Error)

	expired, err := f.dist.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	again, err := f.dist.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again)

	// The expired period can be recreated.
	recreated, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)
	require.NotNil(t, recreated)
}

// Full pass through the flow described in the merchant docs: a member earns a
// tier on a purchase, collects cashback, and the monthly run credits the
// tier's allowance on approval.
func TestMonthlyCreditEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.seedTenant(t, domain.TenantSettings{})
	f.seedTier(t, "gold", "Gold", "7.50")

	require.NoError(t, f.db.Create(&models.MemberModel{
		ID:       "m1",
		TenantID: testTenant,
		Email:    "m1@example.com",
		Status:   string(domain.MemberActive),
	}).Error)

	tierUC := tier.NewDefaultTierUsecase(
		repository.NewDefaultTierLogRepository(f.db),
		repository.NewDefaultTierRepository(f.db),
		repository.NewDefaultMemberRepository(f.db),
		repository.NewDefaultPromotionRepository(f.db),
		repository.NewDefaultEligibilityRuleRepository(f.db),
		nil, nil, nil,
	)

	gold := "gold"
	log, err := tierUC.ApplyChange(context.Background(), &tier.ApplyChangeInput{
		TenantID:        testTenant,
		MemberID:        "m1",
		Source:          domain.SourcePurchase,
		ProposedTierID:  &gold,
		SourceReference: "order:5001",
		OrderTotal:      decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, domain.ChangeAssigned, log.ChangeType)
	assert.Nil(t, log.PreviousTierID)
	assert.Equal(t, "Gold", log.NewTierName)

	_, err = f.ledger.AddEntry(context.Background(), &ledger.AddEntryInput{
		TenantID:    testTenant,
		MemberID:    "m1",
		Amount:      decimal.RequireFromString("7.50"),
		EventType:   domain.EventCashback,
		Description: "5% cashback on order 5001",
		SourceType:  "order",
		SourceID:    "5001",
	})
	require.NoError(t, err)

	balance, err := f.ledger.GetBalance(context.Background(), testTenant, "m1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("7.50")))

	d, err := f.dist.CreateMonthlyCredit(context.Background(), testTenant, march)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 1, d.Preview.TotalMembers)
	assert.True(t, d.Preview.TotalAmount.Equal(decimal.RequireFromString("7.50")))

	approved, err := f.dist.Approve(context.Background(), &ApproveInput{
		TenantID: testTenant, ID: d.ID, Approver: "owner@shop.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DistributionApproved, approved.Status)

	balance, err = f.ledger.GetBalance(context.Background(), testTenant, "m1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("15.00")), "balance = %s", balance)
}
