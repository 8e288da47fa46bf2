package repository

import (
	"context"

	"github.com/tonlotto/backend/internal/entity"
	"github.com/tonlotto/backend/pkg/xcontext"
)

type DrawResultRepository interface {
	Create(ctx context.Context, results []*entity.DrawResult) error
	GetByRoundID(ctx context.Context, roundID int64) ([]entity.DrawResult, error)
}

type drawResultRepository struct{}

func NewDrawResultRepository() *drawResultRepository {
	return &drawResultRepository{}
}

func (r *drawResultRepository) Create(ctx context.Context, results []*entity.DrawResult) error {
	return xcontext.DB(ctx).Create(results).Error
}

func (r *drawResultRepository) GetByRoundID(ctx context.Context, roundID int64) ([]entity.DrawResult, error) {
	var result []entity.DrawResult
	err := xcontext.DB(ctx).
		Where("round_id=?", roundID).
		Order("prize_rank ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
