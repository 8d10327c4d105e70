package mappers

import (
	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
)

func ToDomainMember(model *models.MemberModel) *domain.Member {
	return &domain.Member{
		ID:                  model.ID,
		TenantID:            model.TenantID,
		MemberNumber:        model.MemberNumber,
		Email:               model.Email,
		Name:                model.Name,
		Status:              domain.MemberStatus(model.Status),
		TierID:              model.TierID,
		TierName:            model.TierName,
		TierAssignedAt:      model.TierAssignedAt,
		TierExpiresAt:       model.TierExpiresAt,
		MembershipStartDate: model.MembershipStartDate,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

func ToGORMMember(member *domain.Member) *models.MemberModel {
	return &models.MemberModel{
		ID:                  member.ID,
		TenantID:            member.TenantID,
		MemberNumber:        member.MemberNumber,
		Email:               member.Email,
		Name:                member.Name,
		Status:              string(member.Status),
		TierID:              member.TierID,
		TierName:            member.TierName,
		TierAssignedAt:      member.TierAssignedAt,
		TierExpiresAt:       member.TierExpiresAt,
		MembershipStartDate: member.MembershipStartDate,
		CreatedAt:           member.CreatedAt,
		UpdatedAt:           member.UpdatedAt,
	}
}
