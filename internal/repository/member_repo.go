package repository

import (
	"context"

	"lovegift/internal/models"

	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) WithTx(tx *gorm.DB) *MemberRepository {
	return &MemberRepository{db: tx}
}

func (r *MemberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var m models.Member
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) Create(ctx context.Context, m *models.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}
