package main

import (
	"github.com/urfave/cli/v2"

	"github.com/tonlotto/backend/internal/model"
	"github.com/tonlotto/backend/pkg/xcontext"
)

func (s *srv) startEvaluate(cctx *cli.Context) error {
	if err := s.loadConfig(cctx); err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.loadRepos()
	s.loadPublisher()
	s.loadDomains()

	resp, err := s.roundDomain.Evaluate(s.ctx, &model.EvaluateRoundsRequest{})
	if err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Closed %d rounds", resp.Closed)
	return nil
}
