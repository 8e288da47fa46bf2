package domain

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tonlotto/backend/internal/domain/notification/event"
	"github.com/tonlotto/backend/internal/entity"
	"github.com/tonlotto/backend/internal/model"
	"github.com/tonlotto/backend/internal/repository"
	"github.com/tonlotto/backend/pkg/crypto"
	"github.com/tonlotto/backend/pkg/enum"
	"github.com/tonlotto/backend/pkg/errorx"
	"github.com/tonlotto/backend/pkg/xcontext"
)

// maxSlotRetries bounds how many times a join retries after losing a slot
// race to a concurrent join of the same round.
const maxSlotRetries = 3

type RoundDomain interface {
	Create(ctx context.Context, req *model.CreateRoundRequest) (*model.CreateRoundResponse, error)
	Join(ctx context.Context, req *model.JoinRoundRequest) (*model.JoinRoundResponse, error)
	GetList(ctx context.Context, req *model.GetListRoundRequest) (*model.GetListRoundResponse, error)
	Get(ctx context.Context, req *model.GetRoundRequest) (*model.GetRoundResponse, error)
	Evaluate(ctx context.Context, req *model.EvaluateRoundsRequest) (*model.EvaluateRoundsResponse, error)
}

type roundDomain struct {
	roundRepo       repository.RoundRepository
	participantRepo repository.ParticipantRepository
	drawResultRepo  repository.DrawResultRepository
	commissionRepo  repository.CommissionRepository

	closer *RoundCloser
}

func NewRoundDomain(
	roundRepo repository.RoundRepository,
	participantRepo repository.ParticipantRepository,
	drawResultRepo repository.DrawResultRepository,
	commissionRepo repository.CommissionRepository,
	closer *RoundCloser,
) *roundDomain {
	return &roundDomain{
		roundRepo:       roundRepo,
		participantRepo: participantRepo,
		drawResultRepo:  drawResultRepo,
		commissionRepo:  commissionRepo,
		closer:          closer,
	}
}

func (d *roundDomain) Create(
	ctx context.Context, req *model.CreateRoundRequest,
) (*model.CreateRoundResponse, error) {
	roundType := entity.RoundScheduled
	if req.Type != "" {
		var err error
		roundType, err = enum.ToEnum[entity.RoundType](req.Type)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid round type %s", req.Type)
		}
	}

	creatorID := sql.NullString{}
	if roundType == entity.RoundUserCreated {
		id := req.CreatorID
		if id == "" {
			id = xcontext.RequestUserID(ctx)
		}

		if id == "" {
			return nil, errorx.New(errorx.BadRequest, "A user created round needs a creator")
		}

		creatorID = sql.NullString{Valid: true, String: id}
	}

	ticketPrice := decimal.NewFromFloat(xcontext.Configs(ctx).Round.TicketPrice)
	if req.TicketPrice != "" {
		var err error
		ticketPrice, err = decimal.NewFromString(req.TicketPrice)
		if err != nil || !ticketPrice.IsPositive() {
			return nil, errorx.New(errorx.BadRequest, "Invalid ticket price %s", req.TicketPrice)
		}
	}

	roundID := xcontext.SnowFlake(ctx).Generate().Int64()
	round := &entity.Round{
		SnowFlakeBase:       entity.SnowFlakeBase{ID: roundID},
		Status:              entity.RoundWaitingToStart,
		Type:                roundType,
		CreatorID:           creatorID,
		TicketPrice:         ticketPrice,
		SettlementReference: crypto.SettlementReference(roundID, time.Now().UnixNano()),
	}

	if err := d.roundRepo.Create(ctx, round); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create round: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateRoundResponse{
		RoundID:             round.ID,
		SettlementReference: round.SettlementReference,
	}, nil
}

// Join admits a user into an open round under a dense slot number. A repeat
// join of the same round reports the existing slot instead of failing. The
// join that fills the round to capacity also triggers its closure.
func (d *roundDomain) Join(
	ctx context.Context, req *model.JoinRoundRequest,
) (*model.JoinRoundResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	if userID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty user id")
	}

	round, err := d.roundRepo.GetByIDUnscoped(ctx, req.RoundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found round %d", req.RoundID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get round %d: %v", req.RoundID, err)
		return nil, errorx.Unknown
	}

	// A soft deleted round is closed, not unknown.
	if round.DeletedAt.Valid || !slices.Contains(entity.OpenRoundStatuses, round.Status) {
		return nil, errorx.New(errorx.Unavailable, "Round %d is closed", round.ID)
	}

	if resp, ok, err := d.existingJoin(ctx, round.ID, userID); err != nil {
		return nil, err
	} else if ok {
		return resp, nil
	}

	cfg := xcontext.Configs(ctx).Round

	var slot int
	for attempt := 0; ; attempt++ {
		count, err := d.participantRepo.CountByRoundID(ctx, round.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count participants of round %d: %v", round.ID, err)
			return nil, errorx.Unknown
		}

		if int(count) >= cfg.MaxParticipants {
			return nil, errorx.New(errorx.RoundFull, "Round %d is full", round.ID)
		}

		slot = int(count) + 1
		err = d.participantRepo.Create(ctx, &entity.Participant{
			Base:    entity.Base{ID: uuid.NewString()},
			RoundID: round.ID,
			UserID:  userID,
			Slot:    slot,
		})
		if err == nil {
			break
		}

		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			xcontext.Logger(ctx).Errorf("Cannot join user %s to round %d: %v", userID, round.ID, err)
			return nil, errorx.Unknown
		}

		// The conflict is either this user racing itself or another join
		// taking the slot first. The former resolves to the existing row,
		// the latter to a bounded retry at the next slot.
		if resp, ok, err := d.existingJoin(ctx, round.ID, userID); err != nil {
			return nil, err
		} else if ok {
			return resp, nil
		}

		if attempt >= maxSlotRetries {
			xcontext.Logger(ctx).Errorf("Cannot assign a slot in round %d after %d attempts", round.ID, attempt+1)
			return nil, errorx.Unknown
		}
	}

	d.closer.notify(ctx, userID, event.JoinedEvent{
		RoundID:          round.ID,
		Slot:             slot,
		ParticipantCount: slot,
	})

	if slot >= cfg.MaxParticipants {
		d.closeFullRound(ctx, round.ID)
	}

	return &model.JoinRoundResponse{Slot: slot, ParticipantCount: slot}, nil
}

func (d *roundDomain) existingJoin(
	ctx context.Context, roundID int64, userID string,
) (*model.JoinRoundResponse, bool, error) {
	participant, err := d.participantRepo.GetByRoundAndUser(ctx, roundID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get participant of round %d: %v", roundID, err)
		return nil, false, errorx.Unknown
	}

	count, err := d.participantRepo.CountByRoundID(ctx, roundID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count participants of round %d: %v", roundID, err)
		return nil, false, errorx.Unknown
	}

	return &model.JoinRoundResponse{
		Slot:             participant.Slot,
		ParticipantCount: int(count),
	}, true, nil
}

// closeFullRound drives the capacity closure after the filling join. A
// settlement failure here never fails the join; the sweep will retry it.
func (d *roundDomain) closeFullRound(ctx context.Context, roundID int64) {
	participants, err := d.participantRepo.GetByRoundID(ctx, roundID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get participants of full round %d: %v", roundID, err)
	} else {
		d.closer.broadcast(ctx, participants, event.RoundFullEvent{
			RoundID:          roundID,
			ParticipantCount: len(participants),
		})
	}

	// Capacity closure goes through the transient payment-collection state
	// before drawing. A lost race on the first hop means another actor is
	// already closing this round.
	err = d.roundRepo.UpdateStatus(ctx, roundID,
		entity.RoundWaitingToStart, entity.RoundWaitingForPayments)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot collect payments of full round %d: %v", roundID, err)
		return
	}

	round := &entity.Round{
		SnowFlakeBase: entity.SnowFlakeBase{ID: roundID},
		Status:        entity.RoundWaitingForPayments,
	}
	began, err := d.closer.BeginDraw(ctx, round)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot begin drawing full round %d: %v", roundID, err)
		return
	}

	if !began {
		return
	}

	if err := d.closer.Settle(ctx, roundID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot settle full round %d: %v", roundID, err)
	}
}

func (d *roundDomain) GetList(
	ctx context.Context, req *model.GetListRoundRequest,
) (*model.GetListRoundResponse, error) {
	rounds, err := d.roundRepo.GetOpenRounds(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get open rounds: %v", err)
		return nil, errorx.Unknown
	}

	converted := make([]model.Round, 0, len(rounds))
	for i := range rounds {
		count, err := d.participantRepo.CountByRoundID(ctx, rounds[i].ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count participants of round %d: %v", rounds[i].ID, err)
			return nil, errorx.Unknown
		}

		converted = append(converted, model.ConvertRound(&rounds[i], int(count)))
	}

	return &model.GetListRoundResponse{Rounds: converted}, nil
}

func (d *roundDomain) Get(
	ctx context.Context, req *model.GetRoundRequest,
) (*model.GetRoundResponse, error) {
	round, err := d.roundRepo.GetByID(ctx, req.RoundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found round %d", req.RoundID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get round %d: %v", req.RoundID, err)
		return nil, errorx.Unknown
	}

	participants, err := d.participantRepo.GetByRoundID(ctx, round.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants of round %d: %v", round.ID, err)
		return nil, errorx.Unknown
	}

	resp := &model.GetRoundResponse{
		Round: model.ConvertRound(round, len(participants)),
	}

	for i := range participants {
		resp.Participants = append(resp.Participants, model.ConvertParticipant(&participants[i]))
	}

	if round.Status == entity.RoundFinished {
		results, err := d.drawResultRepo.GetByRoundID(ctx, round.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get draw results of round %d: %v", round.ID, err)
			return nil, errorx.Unknown
		}

		commissions, err := d.commissionRepo.GetByRoundID(ctx, round.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get commissions of round %d: %v", round.ID, err)
			return nil, errorx.Unknown
		}

		for i := range results {
			resp.Results = append(resp.Results, model.ConvertDrawResult(&results[i]))
		}

		for i := range commissions {
			resp.Commissions = append(resp.Commissions, model.ConvertCommission(&commissions[i]))
		}
	}

	return resp, nil
}

// Evaluate runs one sweep over the open rounds. It is safe to call
// concurrently with itself and with joins; all coordination happens through
// the conditional status updates.
func (d *roundDomain) Evaluate(
	ctx context.Context, req *model.EvaluateRoundsRequest,
) (*model.EvaluateRoundsResponse, error) {
	closed, err := d.closer.Sweep(ctx)
	if err != nil {
		return nil, err
	}

	return &model.EvaluateRoundsResponse{Closed: closed}, nil
}
