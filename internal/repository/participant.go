package repository

import (
	"context"

	"github.com/tonlotto/backend/internal/entity"
	"github.com/tonlotto/backend/pkg/xcontext"
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *entity.Participant) error
	GetByRoundAndUser(ctx context.Context, roundID int64, userID string) (*entity.Participant, error)
	GetByRoundID(ctx context.Context, roundID int64) ([]entity.Participant, error)
	CountByRoundID(ctx context.Context, roundID int64) (int64, error)
}

type participantRepository struct{}

func NewParticipantRepository() *participantRepository {
	return &participantRepository{}
}

func (r *participantRepository) Create(ctx context.Context, participant *entity.Participant) error {
	return xcontext.DB(ctx).Create(participant).Error
}

func (r *participantRepository) GetByRoundAndUser(ctx context.Context, roundID int64, userID string) (*entity.Participant, error) {
	var result entity.Participant
	if err := xcontext.DB(ctx).Take(&result, "round_id=? AND user_id=?", roundID, userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *participantRepository) GetByRoundID(ctx context.Context, roundID int64) ([]entity.Participant, error) {
	var result []entity.Participant
	err := xcontext.DB(ctx).
		Where("round_id=?", roundID).
		Order("slot ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *participantRepository) CountByRoundID(ctx context.Context, roundID int64) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Participant{}).
		Where("round_id=?", roundID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
