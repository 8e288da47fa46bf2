package repository

import (
	"context"

	"github.com/tonlotto/backend/internal/entity"
	"github.com/tonlotto/backend/pkg/xcontext"
)

type CommissionRepository interface {
	Create(ctx context.Context, commissions []*entity.CommissionRecord) error
	GetByRoundID(ctx context.Context, roundID int64) ([]entity.CommissionRecord, error)
}

type commissionRepository struct{}

func NewCommissionRepository() *commissionRepository {
	return &commissionRepository{}
}

func (r *commissionRepository) Create(ctx context.Context, commissions []*entity.CommissionRecord) error {
	return xcontext.DB(ctx).Create(commissions).Error
}

func (r *commissionRepository) GetByRoundID(ctx context.Context, roundID int64) ([]entity.CommissionRecord, error) {
	var result []entity.CommissionRecord
	err := xcontext.DB(ctx).
		Where("round_id=?", roundID).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
