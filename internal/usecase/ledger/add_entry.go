package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeup-app/loyalty-service/internal/domain"
)

type AddEntryInput struct {
	TenantID string
	MemberID string

	Amount      decimal.Decimal
	EventType   domain.CreditEventType
	Description string

	// SourceType/SourceID form the dedupe key for event-driven writes;
	// IdempotencyKey deduplicates explicit client retries. Either may be
	// empty.
	SourceType     string
	SourceID       string
	IdempotencyKey string

	Actor string

	// AllowNegative lets administrative corrections drive the balance below
	// zero.
	AllowNegative bool
}

// AddEntry appends one signed movement to the ledger. A redelivered source
// event or retried idempotency key returns the already-written entry instead
// of a duplicate, which is what makes at-least-once delivery safe upstream.
func (uc *DefaultLedgerUsecase) AddEntry(ctx context.Context, input *AddEntryInput) (*domain.LedgerEntry, error) {
	if input.TenantID == "" || input.MemberID == "" {
		return nil, fmt.Errorf("%w: tenant and member are required", domain.ErrValidation)
	}
	if input.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be non-zero", domain.ErrValidation)
	}
	if input.EventType == "" {
		return nil, fmt.Errorf("%w: event type is required", domain.ErrValidation)
	}
	if (input.SourceType == "") != (input.SourceID == "") {
		return nil, fmt.Errorf("%w: source_type and source_id come together", domain.ErrValidation)
	}

	if existing, err := uc.findExisting(input); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	entry := &domain.LedgerEntry{
		ID:             uuid.NewString(),
		TenantID:       input.TenantID,
		MemberID:       input.MemberID,
		Amount:         input.Amount,
		EventType:      input.EventType,
		Description:    input.Description,
		SourceType:     input.SourceType,
		SourceID:       input.SourceID,
		IdempotencyKey: input.IdempotencyKey,
		CreatedBy:      input.Actor,
		CreatedAt:      time.Now().UTC(),
	}

	if err := uc.ledgerRepo.CreateEntry(entry, input.AllowNegative); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost the insert race to a concurrent delivery of the same
			// event; the winner's row is the answer.
			existing, lookupErr := uc.findExisting(input)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	if uc.balanceCache != nil {
		uc.balanceCache.Invalidate(balanceKey(input.TenantID, input.MemberID))
	}
	amountFloat, _ := input.Amount.Float64()
	uc.metrics.RecordLedgerEntry(string(input.EventType), amountFloat)
	uc.notifyEntry(entry)
	return entry, nil
}

func (uc *DefaultLedgerUsecase) findExisting(input *AddEntryInput) (*domain.LedgerEntry, error) {
	if input.SourceType != "" {
		entry, err := uc.ledgerRepo.FindBySourceKey(input.TenantID, input.MemberID, input.SourceType, input.SourceID)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if input.IdempotencyKey != "" {
		entry, err := uc.ledgerRepo.FindByIdempotencyKey(input.TenantID, input.IdempotencyKey)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}
