package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tonlotto/backend/internal/entity"
	"github.com/tonlotto/backend/pkg/testutil"
)

func Test_participantRepository_UniqueConstraints(t *testing.T) {
	ctx := testutil.MockContext()
	roundRepo := NewRoundRepository()
	participantRepo := NewParticipantRepository()

	require.NoError(t, roundRepo.Create(ctx, &entity.Round{
		SnowFlakeBase: entity.SnowFlakeBase{ID: 1},
		Status:        entity.RoundWaitingToStart,
		Type:          entity.RoundScheduled,
		TicketPrice:   decimal.NewFromInt(1),
	}))

	require.NoError(t, participantRepo.Create(ctx, &entity.Participant{
		Base:    entity.Base{ID: uuid.NewString()},
		RoundID: 1,
		UserID:  "user1",
		Slot:    1,
	}))

	// The same user cannot hold two slots of one round.
	err := participantRepo.Create(ctx, &entity.Participant{
		Base:    entity.Base{ID: uuid.NewString()},
		RoundID: 1,
		UserID:  "user1",
		Slot:    2,
	})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// One slot cannot be assigned twice within one round.
	err = participantRepo.Create(ctx, &entity.Participant{
		Base:    entity.Base{ID: uuid.NewString()},
		RoundID: 1,
		UserID:  "user2",
		Slot:    1,
	})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Another round reuses both the user and the slot freely.
	require.NoError(t, roundRepo.Create(ctx, &entity.Round{
		SnowFlakeBase: entity.SnowFlakeBase{ID: 2},
		Status:        entity.RoundWaitingToStart,
		Type:          entity.RoundScheduled,
		TicketPrice:   decimal.NewFromInt(1),
	}))
	require.NoError(t, participantRepo.Create(ctx, &entity.Participant{
		Base:    entity.Base{ID: uuid.NewString()},
		RoundID: 2,
		UserID:  "user1",
		Slot:    1,
	}))
}

func Test_participantRepository_GetByRoundID(t *testing.T) {
	ctx := testutil.MockContext()
	roundRepo := NewRoundRepository()
	participantRepo := NewParticipantRepository()

	require.NoError(t, roundRepo.Create(ctx, &entity.Round{
		SnowFlakeBase: entity.SnowFlakeBase{ID: 1},
		Status:        entity.RoundWaitingToStart,
		Type:          entity.RoundScheduled,
		TicketPrice:   decimal.NewFromInt(1),
	}))

	// Insert out of slot order; reads come back ordered.
	for _, slot := range []int{3, 1, 2} {
		require.NoError(t, participantRepo.Create(ctx, &entity.Participant{
			Base:    entity.Base{ID: uuid.NewString()},
			RoundID: 1,
			UserID:  uuid.NewString(),
			Slot:    slot,
		}))
	}

	participants, err := participantRepo.GetByRoundID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, participants, 3)
	for i := range participants {
		require.Equal(t, i+1, participants[i].Slot)
	}

	count, err := participantRepo.CountByRoundID(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}
