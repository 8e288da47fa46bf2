package main

import (
	"github.com/urfave/cli/v2"

	"github.com/tonlotto/backend/pkg/xcontext"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	if err := s.loadConfig(cctx); err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	return nil
}
