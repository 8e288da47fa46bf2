package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/tonlotto/backend/internal/entity"
	"github.com/tonlotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RoundRepository interface {
	Create(ctx context.Context, round *entity.Round) error
	GetByID(ctx context.Context, roundID int64) (*entity.Round, error)
	GetByIDUnscoped(ctx context.Context, roundID int64) (*entity.Round, error)
	GetOpenRounds(ctx context.Context) ([]entity.Round, error)
	GetDrawingSince(ctx context.Context, before time.Time) ([]entity.Round, error)
	UpdateStatus(ctx context.Context, roundID int64, from, to entity.RoundStatus) error
	MarkAsDeleted(ctx context.Context, roundID int64) error
}

type roundRepository struct{}

func NewRoundRepository() *roundRepository {
	return &roundRepository{}
}

func (r *roundRepository) Create(ctx context.Context, round *entity.Round) error {
	return xcontext.DB(ctx).Create(round).Error
}

func (r *roundRepository) GetByID(ctx context.Context, roundID int64) (*entity.Round, error) {
	var result entity.Round
	if err := xcontext.DB(ctx).Take(&result, "id=?", roundID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetByIDUnscoped also returns soft deleted rounds; the caller must check
// DeletedAt itself.
func (r *roundRepository) GetByIDUnscoped(ctx context.Context, roundID int64) (*entity.Round, error) {
	var result entity.Round
	if err := xcontext.DB(ctx).Unscoped().Take(&result, "id=?", roundID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *roundRepository) GetOpenRounds(ctx context.Context) ([]entity.Round, error) {
	var result []entity.Round
	err := xcontext.DB(ctx).
		Where("status IN (?)", entity.OpenRoundStatuses).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *roundRepository) GetDrawingSince(ctx context.Context, before time.Time) ([]entity.Round, error) {
	var result []entity.Round
	err := xcontext.DB(ctx).
		Where("status=? AND updated_at < ?", entity.RoundDrawing, before).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateStatus performs the conditional transition: the status changes only
// if the row still holds the expected current status. A lost race surfaces
// as gorm.ErrRecordNotFound and must leave the caller without side effects.
func (r *roundRepository) UpdateStatus(ctx context.Context, roundID int64, from, to entity.RoundStatus) error {
	if !entity.ValidTransition(from, to) {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}

	updates := map[string]any{"status": to}
	if to.IsTerminal() {
		updates["closed_at"] = time.Now()
	}

	tx := xcontext.DB(ctx).Model(&entity.Round{}).
		Where("id=? AND status=?", roundID, from).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *roundRepository) MarkAsDeleted(ctx context.Context, roundID int64) error {
	tx := xcontext.DB(ctx).Delete(&entity.Round{}, "id=?", roundID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
