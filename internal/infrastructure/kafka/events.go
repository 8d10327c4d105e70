package publisher

import "time"

type TierChangeEvent struct {
	LogID        string `json:"log_id"`
	TenantID     string `json:"tenant_id"`
	MemberID     string `json:"member_id"`
	PreviousTier string `json:"previous_tier,omitempty"`
	NewTier      string `json:"new_tier,omitempty"`
	ChangeType   string `json:"change_type"`
	SourceType   string `json:"source_type"`
	Reference    string `json:"reference,omitempty"`
}

type LedgerEntryEvent struct {
	EntryID   string `json:"entry_id"`
	TenantID  string `json:"tenant_id"`
	MemberID  string `json:"member_id"`
	Amount    string `json:"amount"`
	EventType string `json:"event_type"`
}

type DistributionEvent struct {
	DistributionID string    `json:"distribution_id"`
	TenantID       string    `json:"tenant_id"`
	ReferenceKey   string    `json:"reference_key"`
	Status         string    `json:"status"`
	TotalMembers   int       `json:"total_members"`
	TotalAmount    string    `json:"total_amount"`
	ExpiresAt      time.Time `json:"expires_at"`
}
