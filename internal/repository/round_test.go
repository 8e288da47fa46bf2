package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tonlotto/backend/internal/entity"
	"github.com/tonlotto/backend/pkg/testutil"
)

func Test_roundRepository_UpdateStatus(t *testing.T) {
	ctx := testutil.MockContext()
	roundRepo := NewRoundRepository()

	round := &entity.Round{
		SnowFlakeBase: entity.SnowFlakeBase{ID: 1},
		Status:        entity.RoundWaitingToStart,
		Type:          entity.RoundScheduled,
		TicketPrice:   decimal.NewFromInt(1),
	}
	require.NoError(t, roundRepo.Create(ctx, round))

	// The transition only applies while the expected status still holds.
	err := roundRepo.UpdateStatus(ctx, round.ID, entity.RoundWaitingToStart, entity.RoundDrawing)
	require.NoError(t, err)

	err = roundRepo.UpdateStatus(ctx, round.ID, entity.RoundWaitingToStart, entity.RoundDrawing)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// A terminal transition stamps the closing time.
	err = roundRepo.UpdateStatus(ctx, round.ID, entity.RoundDrawing, entity.RoundFinished)
	require.NoError(t, err)

	got, err := roundRepo.GetByID(ctx, round.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RoundFinished, got.Status)
	require.True(t, got.ClosedAt.Valid)

	// Nothing leaves a terminal status.
	err = roundRepo.UpdateStatus(ctx, round.ID, entity.RoundFinished, entity.RoundDrawing)
	require.Error(t, err)
	require.NotErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_roundRepository_GetOpenRounds(t *testing.T) {
	ctx := testutil.MockContext()
	roundRepo := NewRoundRepository()

	statuses := []entity.RoundStatus{
		entity.RoundWaitingToStart,
		entity.RoundWaitingForPayments,
		entity.RoundDrawing,
		entity.RoundFinished,
		entity.RoundCancelled,
	}
	for i, status := range statuses {
		require.NoError(t, roundRepo.Create(ctx, &entity.Round{
			SnowFlakeBase: entity.SnowFlakeBase{ID: int64(i + 1)},
			Status:        status,
			Type:          entity.RoundScheduled,
			TicketPrice:   decimal.NewFromInt(1),
		}))
	}

	open, err := roundRepo.GetOpenRounds(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	for _, r := range open {
		require.Contains(t, entity.OpenRoundStatuses, r.Status)
	}
}

func Test_roundRepository_GetDrawingSince(t *testing.T) {
	ctx := testutil.MockContext()
	roundRepo := NewRoundRepository()

	require.NoError(t, roundRepo.Create(ctx, &entity.Round{
		SnowFlakeBase: entity.SnowFlakeBase{ID: 1},
		Status:        entity.RoundDrawing,
		Type:          entity.RoundScheduled,
		TicketPrice:   decimal.NewFromInt(1),
	}))

	// A freshly drawing round is inside the grace period.
	stuck, err := roundRepo.GetDrawingSince(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Empty(t, stuck)

	stuck, err = roundRepo.GetDrawingSince(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, stuck, 1)
}

func Test_roundRepository_MarkAsDeleted(t *testing.T) {
	ctx := testutil.MockContext()
	roundRepo := NewRoundRepository()

	require.NoError(t, roundRepo.Create(ctx, &entity.Round{
		SnowFlakeBase: entity.SnowFlakeBase{ID: 1},
		Status:        entity.RoundCancelled,
		Type:          entity.RoundScheduled,
		TicketPrice:   decimal.NewFromInt(1),
	}))

	require.NoError(t, roundRepo.MarkAsDeleted(ctx, 1))

	_, err := roundRepo.GetByID(ctx, 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The unscoped read still sees the deleted row.
	round, err := roundRepo.GetByIDUnscoped(ctx, 1)
	require.NoError(t, err)
	require.True(t, round.DeletedAt.Valid)

	err = roundRepo.MarkAsDeleted(ctx, 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
