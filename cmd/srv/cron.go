package main

import (
	"github.com/urfave/cli/v2"

	"github.com/tonlotto/backend/internal/domain/cron"
	"github.com/tonlotto/backend/pkg/xcontext"
)

func (s *srv) startCron(cctx *cli.Context) error {
	if err := s.loadConfig(cctx); err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRepos()
	s.loadPublisher()
	s.loadDomains()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewRoundEvaluatorCronJob(
		s.roundDomain, s.roundRepo, xcontext.Configs(s.ctx).Cron.SweepInterval.Duration))
	cronJobManager.Start(s.ctx)

	return nil
}
