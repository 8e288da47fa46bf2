package main

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tonlotto/backend/config"
	"github.com/tonlotto/backend/internal/domain"
	"github.com/tonlotto/backend/internal/repository"
	"github.com/tonlotto/backend/migration"
	"github.com/tonlotto/backend/pkg/logger"
	"github.com/tonlotto/backend/pkg/pubsub"
	"github.com/tonlotto/backend/pkg/router"
	"github.com/tonlotto/backend/pkg/xcontext"
)

type srv struct {
	ctx context.Context
	app *cli.App

	roundRepo       repository.RoundRepository
	participantRepo repository.ParticipantRepository
	drawResultRepo  repository.DrawResultRepository
	commissionRepo  repository.CommissionRepository

	publisher pubsub.Publisher

	roundCloser *domain.RoundCloser
	roundDomain domain.RoundDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	node, err := snowflake.NewNode(cctx.Int64("node"))
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(cfg.LogLevel))
	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx)
	db, err := gorm.Open(
		mysql.Open(cfg.Database.ConnectionString()),
		&gorm.Config{TranslateError: true},
	)
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := migration.AutoMigrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.roundRepo = repository.NewRoundRepository()
	s.participantRepo = repository.NewParticipantRepository()
	s.drawResultRepo = repository.NewDrawResultRepository()
	s.commissionRepo = repository.NewCommissionRepository()
}

func (s *srv) loadPublisher() {
	s.publisher = pubsub.NewLogPublisher()
}

func (s *srv) loadDomains() {
	s.roundCloser = domain.NewRoundCloser(
		s.roundRepo, s.participantRepo, s.drawResultRepo, s.commissionRepo,
		s.publisher, nil)
	s.roundDomain = domain.NewRoundDomain(
		s.roundRepo, s.participantRepo, s.drawResultRepo, s.commissionRepo,
		s.roundCloser)
}
