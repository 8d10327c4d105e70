package domain

import "time"

type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberPaused   MemberStatus = "paused"
	MemberArchived MemberStatus = "archived"
)

type Member struct {
	ID           string
	TenantID     string
	MemberNumber string
	Email        string
	Name         string
	Status       MemberStatus

	// Denormalized tier fields. The tier change log is the source of truth;
	// these mirror the most recently applied log row.
	TierID         *string
	TierName       string
	TierAssignedAt *time.Time
	TierExpiresAt  *time.Time

	MembershipStartDate *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type MemberRepository interface {
	GetMemberByID(tenantID, memberID string) (*Member, error)
	GetActiveMembersWithTier(tenantID string) ([]*Member, error)
	FindMembersWithExpiredTier(tenantID string, now time.Time) ([]*Member, error)
}
