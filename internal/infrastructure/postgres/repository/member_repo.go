package repository

import (
	"errors"
	"time"

	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/mappers"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultMemberRepository struct {
	DB *gorm.DB
}

func NewDefaultMemberRepository(db *gorm.DB) *DefaultMemberRepository {
	return &DefaultMemberRepository{DB: db}
}

func (r *DefaultMemberRepository) GetMemberByID(tenantID, memberID string) (*domain.Member, error) {
	var member models.MemberModel
	if err := r.DB.First(&member, "tenant_id = ? AND id = ?", tenantID, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mappers.ToDomainMember(&member), nil
}

func (r *DefaultMemberRepository) GetActiveMembersWithTier(tenantID string) ([]*domain.Member, error) {
	var memberModels []models.MemberModel
	if err := r.DB.
		Where("tenant_id = ?", tenantID).
		Where("status = ?", string(domain.MemberActive)).
		Where("tier_id IS NOT NULL").
		Order("member_number ASC").
		Find(&memberModels).Error; err != nil {
		return nil, err
	}

	members := make([]*domain.Member, len(memberModels))
	for i, memberModel := range memberModels {
		members[i] = mappers.ToDomainMember(&memberModel)
	}
	return members, nil
}

func (r *DefaultMemberRepository) FindMembersWithExpiredTier(tenantID string, now time.Time) ([]*domain.Member, error) {
	var memberModels []models.MemberModel
	if err := r.DB.
		Where("tenant_id = ?", tenantID).
		Where("tier_id IS NOT NULL").
		Where("tier_expires_at IS NOT NULL").
		Where("tier_expires_at <= ?", now).
		Find(&memberModels).Error; err != nil {
		return nil, err
	}

	members := make([]*domain.Member, len(memberModels))
	for i, memberModel := range memberModels {
		members[i] = mappers.ToDomainMember(&memberModel)
	}
	return members, nil
}
