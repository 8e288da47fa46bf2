package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tonlotto/backend/internal/entity"
	"github.com/tonlotto/backend/internal/model"
	"github.com/tonlotto/backend/internal/repository"
	"github.com/tonlotto/backend/pkg/errorx"
	"github.com/tonlotto/backend/pkg/testutil"
	"github.com/tonlotto/backend/pkg/xcontext"
)

func newTestRoundDomain(publisher *testutil.MockPublisher, randIntn func(int) int) *roundDomain {
	roundRepo := repository.NewRoundRepository()
	participantRepo := repository.NewParticipantRepository()
	drawResultRepo := repository.NewDrawResultRepository()
	commissionRepo := repository.NewCommissionRepository()

	closer := NewRoundCloser(
		roundRepo, participantRepo, drawResultRepo, commissionRepo, publisher, randIntn)

	return NewRoundDomain(
		roundRepo, participantRepo, drawResultRepo, commissionRepo, closer)
}

func errorCode(t *testing.T, err error) errorx.Code {
	t.Helper()

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx), "expected an errorx.Error, got %v", err)
	return errx.Code
}

func Test_roundDomain_FullScenario(t *testing.T) {
	ctx := testutil.MockContext()
	roundDomain := newTestRoundDomain(&testutil.MockPublisher{}, nil)

	created, err := roundDomain.Create(ctx, &model.CreateRoundRequest{Type: "scheduled"})
	require.NoError(t, err)
	require.NotZero(t, created.RoundID)
	require.NotEmpty(t, created.SettlementReference)

	// Slots are assigned densely in join order.
	for i := 1; i <= 3; i++ {
		resp, err := roundDomain.Join(ctx, &model.JoinRoundRequest{
			RoundID: created.RoundID,
			UserID:  fmt.Sprintf("user%d", i),
		})
		require.NoError(t, err)
		require.Equal(t, i, resp.Slot)
		require.Equal(t, i, resp.ParticipantCount)
	}

	// A repeated join reports the existing slot without a new row.
	resp, err := roundDomain.Join(ctx, &model.JoinRoundRequest{
		RoundID: created.RoundID,
		UserID:  "user2",
	})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Slot)
	require.Equal(t, 3, resp.ParticipantCount)

	// Joining an unknown round fails.
	_, err = roundDomain.Join(ctx, &model.JoinRoundRequest{RoundID: 999, UserID: "user1"})
	require.Equal(t, errorx.NotFound, errorCode(t, err))

	// An empty user id is rejected.
	_, err = roundDomain.Join(ctx, &model.JoinRoundRequest{RoundID: created.RoundID})
	require.Equal(t, errorx.BadRequest, errorCode(t, err))

	// The user id can also come from the request context.
	resp, err = roundDomain.Join(
		xcontext.WithRequestUserID(ctx, "user4"),
		&model.JoinRoundRequest{RoundID: created.RoundID})
	require.NoError(t, err)
	require.Equal(t, 4, resp.Slot)

	got, err := roundDomain.Get(ctx, &model.GetRoundRequest{RoundID: created.RoundID})
	require.NoError(t, err)
	require.Equal(t, string(entity.RoundWaitingToStart), got.Round.Status)
	require.Len(t, got.Participants, 4)
	require.Empty(t, got.Results)

	list, err := roundDomain.GetList(ctx, &model.GetListRoundRequest{})
	require.NoError(t, err)
	require.Len(t, list.Rounds, 1)
	require.Equal(t, 4, list.Rounds[0].ParticipantCount)
}

func Test_roundDomain_Create(t *testing.T) {
	ctx := testutil.MockContext()
	roundDomain := newTestRoundDomain(&testutil.MockPublisher{}, nil)

	// Unknown round types are rejected.
	_, err := roundDomain.Create(ctx, &model.CreateRoundRequest{Type: "invalid"})
	require.Equal(t, errorx.BadRequest, errorCode(t, err))

	// A user created round needs a creator.
	_, err = roundDomain.Create(ctx, &model.CreateRoundRequest{Type: "user_created"})
	require.Equal(t, errorx.BadRequest, errorCode(t, err))

	// Negative ticket prices are rejected.
	_, err = roundDomain.Create(ctx, &model.CreateRoundRequest{TicketPrice: "-1"})
	require.Equal(t, errorx.BadRequest, errorCode(t, err))

	created, err := roundDomain.Create(ctx, &model.CreateRoundRequest{
		Type:        "user_created",
		CreatorID:   "alice",
		TicketPrice: "2.5",
	})
	require.NoError(t, err)

	got, err := roundDomain.Get(ctx, &model.GetRoundRequest{RoundID: created.RoundID})
	require.NoError(t, err)
	require.Equal(t, string(entity.RoundWaitingToStart), got.Round.Status)
	require.Equal(t, string(entity.RoundUserCreated), got.Round.Type)
	require.Equal(t, "alice", got.Round.CreatorID)
	require.Equal(t, "2.5", got.Round.TicketPrice)

	// The creator can also come from the request context.
	ctxBob := testutil.MockContextWithUserID("bob")
	created, err = roundDomain.Create(ctxBob, &model.CreateRoundRequest{Type: "user_created"})
	require.NoError(t, err)

	got, err = roundDomain.Get(ctxBob, &model.GetRoundRequest{RoundID: created.RoundID})
	require.NoError(t, err)
	require.Equal(t, "bob", got.Round.CreatorID)
}

func Test_roundDomain_JoinDeletedRound(t *testing.T) {
	ctx := testutil.MockContext()
	roundDomain := newTestRoundDomain(&testutil.MockPublisher{}, nil)

	created, err := roundDomain.Create(ctx, &model.CreateRoundRequest{Type: "scheduled"})
	require.NoError(t, err)

	require.NoError(t, roundDomain.roundRepo.MarkAsDeleted(ctx, created.RoundID))

	// A soft deleted round rejects the join as closed, not as unknown.
	_, err = roundDomain.Join(ctx, &model.JoinRoundRequest{
		RoundID: created.RoundID,
		UserID:  "user1",
	})
	require.Equal(t, errorx.Unavailable, errorCode(t, err))
}

func Test_roundDomain_CapacityClosure(t *testing.T) {
	ctx := testutil.MockContext()
	publisher := &testutil.MockPublisher{}
	roundDomain := newTestRoundDomain(publisher, nil)

	created, err := roundDomain.Create(ctx, &model.CreateRoundRequest{
		Type:        "user_created",
		CreatorID:   "alice",
		TicketPrice: "1",
	})
	require.NoError(t, err)

	// The tenth join fills the round and closes it immediately.
	for i := 1; i <= 10; i++ {
		_, err := roundDomain.Join(ctx, &model.JoinRoundRequest{
			RoundID: created.RoundID,
			UserID:  fmt.Sprintf("user%d", i),
		})
		require.NoError(t, err)
	}

	got, err := roundDomain.Get(ctx, &model.GetRoundRequest{RoundID: created.RoundID})
	require.NoError(t, err)
	require.Equal(t, string(entity.RoundFinished), got.Round.Status)
	require.Len(t, got.Results, 4)

	// Ticket price 1 and 10 participants collect 10 units. A user created
	// round pays 25% in commissions, leaving a 7.5 pool split 40/30/20/10.
	require.Equal(t, []string{"3", "2.25", "1.5", "0.75"}, []string{
		got.Results[0].PrizeAmount,
		got.Results[1].PrizeAmount,
		got.Results[2].PrizeAmount,
		got.Results[3].PrizeAmount,
	})

	require.Len(t, got.Commissions, 3)
	paid := decimal.Zero
	for _, c := range got.Commissions {
		amount, err := decimal.NewFromString(c.Amount)
		require.NoError(t, err)
		paid = paid.Add(amount)

		if c.Type == string(entity.CommissionCreator) {
			require.Equal(t, "alice", c.RecipientID)
		}
	}
	for _, r := range got.Results {
		amount, err := decimal.NewFromString(r.PrizeAmount)
		require.NoError(t, err)
		paid = paid.Add(amount)
	}
	require.True(t, paid.Equal(decimal.NewFromInt(10)),
		"commissions and prizes pay out %s, want the full 10 collected", paid)

	// A closed round accepts no more joins.
	_, err = roundDomain.Join(ctx, &model.JoinRoundRequest{
		RoundID: created.RoundID,
		UserID:  "user11",
	})
	require.Equal(t, errorx.Unavailable, errorCode(t, err))
}

func Test_roundDomain_Evaluate(t *testing.T) {
	ctx := testutil.MockContext()
	roundDomain := newTestRoundDomain(&testutil.MockPublisher{}, nil)

	created, err := roundDomain.Create(ctx, &model.CreateRoundRequest{Type: "scheduled"})
	require.NoError(t, err)

	_, err = roundDomain.Join(ctx, &model.JoinRoundRequest{RoundID: created.RoundID, UserID: "user1"})
	require.NoError(t, err)

	// A young round with too few participants is left alone.
	resp, err := roundDomain.Evaluate(ctx, &model.EvaluateRoundsRequest{})
	require.NoError(t, err)
	require.Equal(t, 0, resp.Closed)

	got, err := roundDomain.Get(ctx, &model.GetRoundRequest{RoundID: created.RoundID})
	require.NoError(t, err)
	require.Equal(t, string(entity.RoundWaitingToStart), got.Round.Status)
}

// ageRound backdates a round so the sweep sees it as older than it is.
func ageRound(ctx context.Context, t *testing.T, roundID int64, age time.Duration) {
	t.Helper()

	err := xcontext.DB(ctx).Model(&entity.Round{}).
		Where("id=?", roundID).
		UpdateColumn("created_at", time.Now().Add(-age)).Error
	require.NoError(t, err)
}
