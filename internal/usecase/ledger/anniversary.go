package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tradeup-app/loyalty-service/internal/domain"
)

type AnniversaryRewardInput struct {
	TenantID string
	MemberID string
	// Year is the membership anniversary being rewarded, e.g. 2026. Using it
	// as the source id makes the yearly reward idempotent by construction.
	Year  int
	Actor string
}

// IssueAnniversaryReward credits the tenant-configured anniversary amount at
// most once per member per year.
func (uc *DefaultLedgerUsecase) IssueAnniversaryReward(ctx context.Context, input *AnniversaryRewardInput) (*domain.LedgerEntry, error) {
	if input.Year <= 0 {
		return nil, fmt.Errorf("%w: year is required", domain.ErrValidation)
	}

	tenant, err := uc.tenantRepo.GetTenantByID(input.TenantID)
	if err != nil {
		return nil, err
	}

	settings := tenant.Settings.Anniversary
	if !settings.Enabled || !settings.RewardAmount.IsPositive() {
		return nil, nil
	}

	description := settings.Message
	if description == "" {
		description = fmt.Sprintf("Anniversary reward %d", input.Year)
	}

	return uc.AddEntry(ctx, &AddEntryInput{
		TenantID:    input.TenantID,
		MemberID:    input.MemberID,
		Amount:      settings.RewardAmount,
		EventType:   domain.EventAnniversaryReward,
		Description: description,
		SourceType:  string(domain.EventAnniversaryReward),
		SourceID:    strconv.Itoa(input.Year),
		Actor:       input.Actor,
	})
}
