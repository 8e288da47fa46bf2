package domain

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tonlotto/backend/config"
	"github.com/tonlotto/backend/internal/domain/notification/event"
	"github.com/tonlotto/backend/internal/entity"
	"github.com/tonlotto/backend/internal/repository"
	"github.com/tonlotto/backend/pkg/crypto"
	"github.com/tonlotto/backend/pkg/errorx"
	"github.com/tonlotto/backend/pkg/pubsub"
	"github.com/tonlotto/backend/pkg/xcontext"
)

const notificationTopic = "notifications"

const maxSweepConcurrency = 8

// RoundCloser owns everything that happens after a round stops accepting
// joins: the transition into drawing, winner selection, settlement, and the
// timed sweep that closes aging rounds.
type RoundCloser struct {
	roundRepo       repository.RoundRepository
	participantRepo repository.ParticipantRepository
	drawResultRepo  repository.DrawResultRepository
	commissionRepo  repository.CommissionRepository

	publisher pubsub.Publisher

	// randIntn backs winner selection. Production uses crypto/rand; tests
	// inject a seeded source for deterministic draws.
	randIntn func(int) int
}

func NewRoundCloser(
	roundRepo repository.RoundRepository,
	participantRepo repository.ParticipantRepository,
	drawResultRepo repository.DrawResultRepository,
	commissionRepo repository.CommissionRepository,
	publisher pubsub.Publisher,
	randIntn func(int) int,
) *RoundCloser {
	if randIntn == nil {
		randIntn = crypto.RandIntn
	}

	return &RoundCloser{
		roundRepo:       roundRepo,
		participantRepo: participantRepo,
		drawResultRepo:  drawResultRepo,
		commissionRepo:  commissionRepo,
		publisher:       publisher,
		randIntn:        randIntn,
	}
}

// BeginDraw attempts the conditional transition of the round into drawing.
// It returns false when another worker won the race, which is not an error;
// the loser must simply walk away.
func (c *RoundCloser) BeginDraw(ctx context.Context, round *entity.Round) (bool, error) {
	err := c.roundRepo.UpdateStatus(ctx, round.ID, round.Status, entity.RoundDrawing)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot transition round %d to drawing: %v", round.ID, err)
		return false, errorx.Unknown
	}

	return true, nil
}

// Settle runs the full settlement of a round that is already in drawing:
// draw winners, compute commissions and prize shares, record everything in
// one transaction, and finish the round. It is safe to call again after a
// crash; a duplicate settlement is detected by the unique constraints and
// collapses into finishing the round.
func (c *RoundCloser) Settle(ctx context.Context, roundID int64) error {
	round, err := c.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get round %d for settlement: %v", roundID, err)
		return errorx.Unknown
	}

	if round.Status != entity.RoundDrawing {
		if round.Status == entity.RoundFinished {
			return errorx.New(errorx.SettlementConflict, "Round %d is already settled", roundID)
		}

		return errorx.New(errorx.Unavailable, "Round %d is not drawing", roundID)
	}

	participants, err := c.participantRepo.GetByRoundID(ctx, roundID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants of round %d: %v", roundID, err)
		return errorx.Unknown
	}

	cfg := xcontext.Configs(ctx).Round
	if len(participants) < cfg.MinParticipants {
		// Should never happen: the sweep only draws rounds with enough
		// participants. Cancel rather than settle an unfillable tier.
		if err := c.roundRepo.UpdateStatus(ctx, roundID, entity.RoundDrawing, entity.RoundCancelled); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot cancel under-filled round %d: %v", roundID, err)
			return errorx.Unknown
		}

		c.broadcast(ctx, participants, event.RoundCancelledEvent{
			RoundID: roundID,
			Reason:  "not enough participants",
		})

		return errorx.New(errorx.InsufficientParticipants,
			"Round has %d participants, needs %d", len(participants), cfg.MinParticipants)
	}

	split, err := prizeSplit(len(participants))
	if err != nil {
		return err
	}

	drawnSlots := drawSlots(c.randIntn, len(participants), len(split))

	results, commissions := c.buildSettlement(round, participants, drawnSlots, split, cfg)

	alreadySettled := false
	if err := c.writeSettlement(ctx, results, commissions); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			xcontext.Logger(ctx).Errorf("Cannot record settlement of round %d: %v", roundID, err)
			return errorx.Unknown
		}

		// A previous attempt already wrote the settlement rows. Nothing to
		// redo except finishing the round below.
		xcontext.Logger(ctx).Warnf("Round %d was already settled, finishing it", roundID)
		alreadySettled = true
	}

	if err := c.roundRepo.UpdateStatus(ctx, roundID, entity.RoundDrawing, entity.RoundFinished); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Someone else finished it between our commit and now.
			return nil
		}

		xcontext.Logger(ctx).Errorf("Cannot finish round %d: %v", roundID, err)
		return errorx.Unknown
	}

	if alreadySettled {
		// The attempt that wrote the rows crashed before notifying; rebuild
		// the announcements from what it recorded.
		recorded, err := c.drawResultRepo.GetByRoundID(ctx, roundID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reload draw results of round %d: %v", roundID, err)
			return nil
		}

		recordedCommissions, err := c.commissionRepo.GetByRoundID(ctx, roundID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reload commissions of round %d: %v", roundID, err)
			return nil
		}

		results = results[:0]
		drawnSlots = drawnSlots[:0]
		for i := range recorded {
			results = append(results, &recorded[i])
			drawnSlots = append(drawnSlots, recorded[i].DrawnSlot)
		}

		commissions = commissions[:0]
		for i := range recordedCommissions {
			commissions = append(commissions, &recordedCommissions[i])
		}
	}

	c.announce(ctx, roundID, participants, drawnSlots, results, commissions)
	return nil
}

// writeSettlement records all settlement rows in one transaction. A
// duplicate key error means another attempt already wrote them; the caller
// must treat the round as settled, not as failed.
func (c *RoundCloser) writeSettlement(
	ctx context.Context,
	results []*entity.DrawResult,
	commissions []*entity.CommissionRecord,
) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := c.drawResultRepo.Create(ctx, results); err != nil {
		return err
	}

	if err := c.commissionRepo.Create(ctx, commissions); err != nil {
		return err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}

// buildSettlement computes the commission and prize rows of a round. Shares
// are rounded to cents only at the recorded row; the prize pool itself is
// the total minus the unrounded commission sum. Each recorded row therefore
// drifts from its exact share by at most half a cent, so the recorded total
// stays within half a cent per row of the collected total.
func (c *RoundCloser) buildSettlement(
	round *entity.Round,
	participants []entity.Participant,
	drawnSlots []int,
	split []decimal.Decimal,
	cfg config.RoundConfigs,
) ([]*entity.DrawResult, []*entity.CommissionRecord) {
	total := round.TicketPrice.Mul(decimal.NewFromInt(int64(len(participants))))

	reserve := total.Mul(decimal.NewFromFloat(cfg.ReservePercent))
	operator := total.Mul(decimal.NewFromFloat(cfg.OperatorPercent))

	commissions := []*entity.CommissionRecord{
		{
			Base:    entity.Base{ID: uuid.NewString()},
			RoundID: round.ID,
			Type:    entity.CommissionReserve,
			Amount:  reserve.Round(2),
		},
		{
			Base:    entity.Base{ID: uuid.NewString()},
			RoundID: round.ID,
			Type:    entity.CommissionOperator,
			Amount:  operator.Round(2),
		},
	}

	commissionSum := reserve.Add(operator)
	if round.Type == entity.RoundUserCreated {
		creator := total.Mul(decimal.NewFromFloat(cfg.CreatorPercent))
		commissions = append(commissions, &entity.CommissionRecord{
			Base:        entity.Base{ID: uuid.NewString()},
			RoundID:     round.ID,
			Type:        entity.CommissionCreator,
			RecipientID: round.CreatorID,
			Amount:      creator.Round(2),
		})
		commissionSum = commissionSum.Add(creator)
	}

	prizePool := total.Sub(commissionSum)
	if prizePool.IsNegative() {
		prizePool = decimal.Zero
	}

	holderBySlot := make(map[int]string, len(participants))
	for i := range participants {
		holderBySlot[participants[i].Slot] = participants[i].UserID
	}

	results := make([]*entity.DrawResult, 0, len(drawnSlots))
	for rank, slot := range drawnSlots {
		result := &entity.DrawResult{
			Base:      entity.Base{ID: uuid.NewString()},
			RoundID:   round.ID,
			Rank:      rank,
			DrawnSlot: slot,
		}

		// A drawn slot with no holder is recorded with a null winner and a
		// zero amount instead of failing the settlement.
		if userID, ok := holderBySlot[slot]; ok {
			result.WinnerID = sql.NullString{Valid: true, String: userID}
			result.PrizeAmount = prizePool.Mul(split[rank]).Round(2)
		}

		results = append(results, result)
	}

	return results, commissions
}

// TryCancel moves the round into cancelled if it still holds the status the
// caller observed. A lost race returns false with no error.
func (c *RoundCloser) TryCancel(ctx context.Context, round *entity.Round, reason string) (bool, error) {
	err := c.roundRepo.UpdateStatus(ctx, round.ID, round.Status, entity.RoundCancelled)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel round %d: %v", round.ID, err)
		return false, errorx.Unknown
	}

	participants, err := c.participantRepo.GetByRoundID(ctx, round.ID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get participants of cancelled round %d: %v", round.ID, err)
		return true, nil
	}

	c.broadcast(ctx, participants, event.RoundCancelledEvent{RoundID: round.ID, Reason: reason})
	return true, nil
}

// Sweep evaluates every open round against the timing rules and retries
// settlements that were cut off mid-flight. It returns the number of rounds
// it closed (drawn or cancelled).
func (c *RoundCloser) Sweep(ctx context.Context) (int, error) {
	rounds, err := c.roundRepo.GetOpenRounds(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get open rounds: %v", err)
		return 0, errorx.Unknown
	}

	cfg := xcontext.Configs(ctx).Round
	now := time.Now()

	var closed atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxSweepConcurrency)
	for i := range rounds {
		round := rounds[i]
		eg.Go(func() error {
			didClose, err := c.evaluateRound(egCtx, &round, cfg, now)
			if err != nil {
				xcontext.Logger(egCtx).Errorf("Cannot evaluate round %d: %v", round.ID, err)
				return nil
			}

			if didClose {
				closed.Add(1)
			}

			return nil
		})
	}

	// Never returns an error; per-round failures are logged and skipped so
	// one bad round cannot stall the rest of the sweep.
	_ = eg.Wait()

	stuck, err := c.roundRepo.GetDrawingSince(ctx, now.Add(-cfg.DrawingGracePeriod.Duration))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get stuck drawing rounds: %v", err)
		return int(closed.Load()), nil
	}

	for i := range stuck {
		xcontext.Logger(ctx).Warnf("Retrying settlement of stuck round %d", stuck[i].ID)
		if err := c.Settle(ctx, stuck[i].ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot resettle round %d: %v", stuck[i].ID, err)
			continue
		}

		closed.Add(1)
	}

	return int(closed.Load()), nil
}

func (c *RoundCloser) evaluateRound(
	ctx context.Context, round *entity.Round, cfg config.RoundConfigs, now time.Time,
) (bool, error) {
	count, err := c.participantRepo.CountByRoundID(ctx, round.ID)
	if err != nil {
		return false, err
	}

	age := now.Sub(round.CreatedAt)

	switch {
	case int(count) >= cfg.MaxParticipants,
		age >= cfg.DrawAfter.Duration && int(count) >= cfg.MinParticipants:
		began, err := c.BeginDraw(ctx, round)
		if err != nil || !began {
			return false, err
		}

		if err := c.Settle(ctx, round.ID); err != nil {
			return false, err
		}

		return true, nil

	case age >= cfg.CancelAfter.Duration:
		return c.TryCancel(ctx, round, "not enough participants before the deadline")
	}

	return false, nil
}

func (c *RoundCloser) announce(
	ctx context.Context,
	roundID int64,
	participants []entity.Participant,
	drawnSlots []int,
	results []*entity.DrawResult,
	commissions []*entity.CommissionRecord,
) {
	c.broadcast(ctx, participants, event.DrawnNumberEvent{RoundID: roundID, DrawnSlots: drawnSlots})

	winners := make([]event.WinnerShare, 0, len(results))
	for _, r := range results {
		winners = append(winners, event.WinnerShare{
			Rank:   r.Rank,
			Slot:   r.DrawnSlot,
			UserID: r.WinnerID.String,
			Amount: r.PrizeAmount.StringFixed(2),
		})
	}
	c.broadcast(ctx, participants, event.WinnersAnnouncedEvent{RoundID: roundID, Winners: winners})

	breakdown := make([]event.CommissionShare, 0, len(commissions))
	for _, cm := range commissions {
		breakdown = append(breakdown, event.CommissionShare{
			Type:        string(cm.Type),
			RecipientID: cm.RecipientID.String,
			Amount:      cm.Amount.StringFixed(2),
		})
	}
	c.broadcast(ctx, participants, event.CommissionsAnnouncedEvent{RoundID: roundID, Commissions: breakdown})

	c.broadcast(ctx, participants, event.RoundFinishedEvent{RoundID: roundID})
}

// broadcast hands one copy of the event per participant to the publisher.
// Delivery is best-effort; failures are logged and never propagate.
func (c *RoundCloser) broadcast(ctx context.Context, participants []entity.Participant, ev event.Event) {
	for i := range participants {
		c.notify(ctx, participants[i].UserID, ev)
	}
}

func (c *RoundCloser) notify(ctx context.Context, to string, ev event.Event) {
	b, err := json.Marshal(event.New(ev, event.Metadata{To: to}))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal %s event: %v", ev.Op(), err)
		return
	}

	pack := &pubsub.Pack{Key: []byte(fmt.Sprintf("%s|%s", ev.Op(), to)), Msg: b}
	if err := c.publisher.Publish(ctx, notificationTopic, pack); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish %s event to %s: %v", ev.Op(), to, err)
	}
}
