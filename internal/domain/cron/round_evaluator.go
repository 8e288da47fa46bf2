package cron

import (
	"context"
	"time"

	"github.com/tonlotto/backend/internal/domain"
	"github.com/tonlotto/backend/internal/model"
	"github.com/tonlotto/backend/internal/repository"
	"github.com/tonlotto/backend/pkg/xcontext"
)

// RoundEvaluatorCronJob periodically sweeps the open rounds, drawing or
// cancelling the ones past their thresholds, and keeps one scheduled round
// open for joins when auto creation is enabled.
type RoundEvaluatorCronJob struct {
	roundDomain domain.RoundDomain
	roundRepo   repository.RoundRepository

	interval time.Duration
}

func NewRoundEvaluatorCronJob(
	roundDomain domain.RoundDomain,
	roundRepo repository.RoundRepository,
	interval time.Duration,
) *RoundEvaluatorCronJob {
	return &RoundEvaluatorCronJob{
		roundDomain: roundDomain,
		roundRepo:   roundRepo,
		interval:    interval,
	}
}

func (job *RoundEvaluatorCronJob) Do(ctx context.Context) {
	resp, err := job.roundDomain.Evaluate(ctx, &model.EvaluateRoundsRequest{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot evaluate rounds: %v", err)
		return
	}

	if resp.Closed > 0 {
		xcontext.Logger(ctx).Infof("Closed %d rounds", resp.Closed)
	}

	if !xcontext.Configs(ctx).Cron.AutoCreate {
		return
	}

	open, err := job.roundRepo.GetOpenRounds(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get open rounds: %v", err)
		return
	}

	if len(open) > 0 {
		return
	}

	created, err := job.roundDomain.Create(ctx, &model.CreateRoundRequest{Type: "scheduled"})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot auto create a round: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Auto created round %d", created.RoundID)
}

func (job *RoundEvaluatorCronJob) RunNow() bool {
	return true
}

func (job *RoundEvaluatorCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
