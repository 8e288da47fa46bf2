package migration

import (
	"context"

	"github.com/tonlotto/backend/internal/entity"
)

func AutoMigrate(ctx context.Context) error {
	return entity.MigrateTable(ctx)
}
