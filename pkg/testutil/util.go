package testutil

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tonlotto/backend/config"
	"github.com/tonlotto/backend/internal/entity"
	"github.com/tonlotto/backend/pkg/logger"
	"github.com/tonlotto/backend/pkg/xcontext"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(err)
	}

	// Every connection of an in-memory sqlite database is its own database;
	// a single connection keeps concurrent tests on the same one.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Configs{
		Round: config.RoundConfigs{
			TicketPrice:        1.0,
			MaxParticipants:    10,
			MinParticipants:    2,
			DrawAfter:          config.Duration{Duration: time.Hour},
			CancelAfter:        config.Duration{Duration: 2 * time.Hour},
			ReservePercent:     0.10,
			OperatorPercent:    0.10,
			CreatorPercent:     0.05,
			DrawingGracePeriod: config.Duration{Duration: 5 * time.Minute},
		},
		Cron: config.CronConfigs{
			SweepInterval: config.Duration{Duration: 30 * time.Second},
			AutoCreate:    true,
		},
	}

	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
