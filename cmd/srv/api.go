package main

import (
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/tonlotto/backend/pkg/router"
	"github.com/tonlotto/backend/pkg/xcontext"
)

func (s *srv) startApi(cctx *cli.Context) error {
	if err := s.loadConfig(cctx); err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRepos()
	s.loadPublisher()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.ApiServer.Host, cfg.ApiServer.Port),
		Handler: s.router.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)

	router.POST(s.router, "/createRound", s.roundDomain.Create)
	router.POST(s.router, "/joinRound", s.roundDomain.Join)
	router.GET(s.router, "/getListRound", s.roundDomain.GetList)
	router.GET(s.router, "/getRound", s.roundDomain.Get)
	router.POST(s.router, "/evaluate", s.roundDomain.Evaluate)
}
