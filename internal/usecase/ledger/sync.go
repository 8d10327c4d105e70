package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type SyncReport struct {
	Synced int
	Failed int
}

// SyncPending pushes unsynced entries to the external credit account. The
// entry id rides along as the idempotency key, so a retried push after a
// recorded failure cannot credit twice. Failures are bookkept on the entry
// and retried on the next run; they never invalidate the local row.
func (uc *DefaultLedgerUsecase) SyncPending(ctx context.Context, limit int) (*SyncReport, error) {
	if uc.creditAccount == nil {
		return &SyncReport{}, nil
	}
	started := time.Now()

	entries, err := uc.ledgerRepo.FindUnsynced(limit)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{}
	for _, entry := range entries {
		note := entry.Description
		if note == "" {
			note = fmt.Sprintf("%s %s", entry.EventType, entry.Amount.StringFixed(2))
		}

		externalTxnID, err := uc.creditAccount.Credit(entry.MemberID, entry.ID, entry.Amount, note)
		if err != nil {
			report.Failed++
			uc.metrics.RecordSyncFailure()
			slog.Warn("ledger sync failed",
				"entry_id", entry.ID,
				"attempts", entry.SyncAttempts+1,
				"error", err.Error())
			if markErr := uc.ledgerRepo.MarkSyncFailed(entry.ID, err.Error()); markErr != nil {
				slog.Error("failed to record sync failure", "entry_id", entry.ID, "error", markErr.Error())
			}
			continue
		}

		if err := uc.ledgerRepo.MarkSynced(entry.ID, externalTxnID, time.Now().UTC()); err != nil {
			slog.Error("failed to mark entry synced", "entry_id", entry.ID, "error", err.Error())
			report.Failed++
			continue
		}
		report.Synced++
	}

	uc.metrics.RecordSweep("ledger_sync", started)
	return report, nil
}
