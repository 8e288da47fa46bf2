package entity

import (
	"context"

	"github.com/tonlotto/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Round{},
		&Participant{},
		&DrawResult{},
		&CommissionRecord{},
	)
}
