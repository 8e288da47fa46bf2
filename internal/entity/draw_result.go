package entity

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type DrawResult struct {
	Base

	RoundID int64 `gorm:"uniqueIndex:idx_draw_results_round_rank"`
	Round   Round `gorm:"foreignKey:RoundID"`

	// Rank 0 is the top prize; higher ranks are lower tiers.
	Rank int `gorm:"column:prize_rank;uniqueIndex:idx_draw_results_round_rank"`

	DrawnSlot int

	// WinnerID is null when the drawn slot had no holder; the row is still
	// recorded with a zero amount.
	WinnerID sql.NullString

	PrizeAmount decimal.Decimal `gorm:"type:decimal(20,8)"`
}
