package distribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/usecase/ledger"
)

type ApproveInput struct {
	TenantID string
	ID       string
	Approver string

	// Auto marks unattended approval by the scheduler, which is held to the
	// tenant's automation settings and the manual-first bootstrap rule.
	Auto bool

	// EnableAutoApprove lets a manual approver turn on unattended approval
	// for future periods in the same call. Ignored on auto runs.
	EnableAutoApprove bool
}

// Approve executes the snapshotted plan and flips the row to approved. Only
// pending, unexpired rows qualify; an expired row is flipped to expired here
// rather than waiting for the sweep. Execution goes through the ledger with
// per-member source ids, so a re-run after a crash cannot double-credit.
func (uc *DefaultDistributionUsecase) Approve(ctx context.Context, input *ApproveInput) (*domain.PendingDistribution, error) {
	d, err := uc.distRepo.GetDistributionByID(input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.DistributionPending {
		return nil, fmt.Errorf("%w: distribution already %s", domain.ErrConflict, d.Status)
	}

	now := time.Now().UTC()
	if d.IsExpired(now) {
		if _, err := uc.distRepo.MarkExpired(input.TenantID, d.ID); err != nil {
			return nil, err
		}
		uc.metrics.RecordDistribution(string(domain.DistributionExpired))
		return nil, fmt.Errorf("%w: expired at %s", domain.ErrDistributionExpired, d.ExpiresAt.Format(time.RFC3339))
	}

	if input.Auto {
		allowed, err := uc.autoApproveAllowed(d)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: auto-approve not permitted for tenant %s", domain.ErrValidation, input.TenantID)
		}
	}

	result := uc.execute(ctx, d, input.Approver, now)

	flipped, err := uc.distRepo.MarkApproved(input.TenantID, d.ID, input.Approver, result, now)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// A concurrent approval got there first. The ledger's idempotency
		// keys already kept our execution from double-crediting.
		return nil, fmt.Errorf("%w: distribution already processed", domain.ErrConflict)
	}

	if !input.Auto {
		uc.completeManualApproval(d.TenantID, input.EnableAutoApprove)
	}

	uc.metrics.RecordDistribution(string(domain.DistributionApproved))

	approved, err := uc.distRepo.GetDistributionByID(input.TenantID, d.ID)
	if err != nil {
		return nil, err
	}
	uc.notifyDistribution(approved)
	return approved, nil
}

// execute runs the snapshotted plan, revalidating each member at execution
// time. Per-member failures are recorded on the result, never silently
// dropped, and never abort the rest of the run.
func (uc *DefaultDistributionUsecase) execute(ctx context.Context, d *domain.PendingDistribution, actor string, now time.Time) *domain.ExecutionResult {
	result := &domain.ExecutionResult{ExecutedAt: now}
	if d.Preview == nil {
		return result
	}

	for _, planned := range d.Preview.Members {
		member, err := uc.memberRepo.GetMemberByID(d.TenantID, planned.MemberID)
		if err != nil || member.Status != domain.MemberActive {
			result.Skipped++
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("member %s: %v", planned.MemberID, err))
			}
			continue
		}

		entry, err := uc.ledgerUsecase.AddEntry(ctx, &ledger.AddEntryInput{
			TenantID:    d.TenantID,
			MemberID:    planned.MemberID,
			Amount:      planned.Amount,
			EventType:   domain.EventMonthlyCredit,
			Description: fmt.Sprintf("Monthly credit %s (%s)", d.ReferenceKey, planned.Tier),
			SourceType:  string(domain.EventMonthlyCredit),
			SourceID:    fmt.Sprintf("%s:%s", d.ReferenceKey, planned.MemberID),
			Actor:       actor,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("member %s: %v", planned.MemberID, err))
			continue
		}

		result.Credited++
		result.TotalAmount = result.TotalAmount.Add(entry.Amount)
	}
	return result
}

// autoApproveAllowed enforces the human-in-the-loop bootstrap: unattended
// approval needs the tenant setting on AND evidence of a completed manual
// run (the settings flag, or an approved row predating the flag), and
// respects the optional amount threshold.
func (uc *DefaultDistributionUsecase) autoApproveAllowed(d *domain.PendingDistribution) (bool, error) {
	tenant, err := uc.tenantRepo.GetTenantByID(d.TenantID)
	if err != nil {
		return false, err
	}
	automation := tenant.Settings.Automation
	if !automation.MonthlyCreditAutoApprove {
		return false, nil
	}
	if !automation.FirstMonthlyCreditCompleted {
		approvedBefore, err := uc.distRepo.HasApprovedBefore(d.TenantID)
		if err != nil {
			return false, err
		}
		if !approvedBefore {
			return false, nil
		}
	}
	if automation.AutoApproveThreshold != nil && d.Preview != nil &&
		d.Preview.TotalAmount.GreaterThan(*automation.AutoApproveThreshold) {
		return false, nil
	}
	return true, nil
}

// completeManualApproval records that the tenant has been through a manual
// run and, when requested by the approver, switches future periods to
// unattended approval. A failed settings write is logged, not fatal: the
// credits are already issued and the next manual approval retries the flags.
func (uc *DefaultDistributionUsecase) completeManualApproval(tenantID string, enableAuto bool) {
	tenant, err := uc.tenantRepo.GetTenantByID(tenantID)
	if err != nil {
		slog.Error("failed to load tenant after manual approval",
			"tenant_id", tenantID, "error", err.Error())
		return
	}
	settings := tenant.Settings
	changed := false
	if !settings.Automation.FirstMonthlyCreditCompleted {
		settings.Automation.FirstMonthlyCreditCompleted = true
		changed = true
	}
	if enableAuto && !settings.Automation.MonthlyCreditAutoApprove {
		settings.Automation.MonthlyCreditAutoApprove = true
		changed = true
	}
	if !changed {
		return
	}
	if err := uc.tenantRepo.UpdateSettings(tenantID, settings); err != nil {
		slog.Error("failed to persist automation settings after manual approval",
			"tenant_id", tenantID, "error", err.Error())
	}
}
