package entity

import (
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/tonlotto/backend/pkg/enum"
)

type CommissionType string

var (
	CommissionReserve  = enum.New(CommissionType("reserve"))
	CommissionOperator = enum.New(CommissionType("operator"))
	CommissionCreator  = enum.New(CommissionType("creator"))
)

type CommissionRecord struct {
	Base

	RoundID int64 `gorm:"uniqueIndex:idx_commissions_round_type"`
	Round   Round `gorm:"foreignKey:RoundID"`

	Type CommissionType `gorm:"uniqueIndex:idx_commissions_round_type"`

	// RecipientID is set only for creator commissions.
	RecipientID sql.NullString

	Amount decimal.Decimal `gorm:"type:decimal(20,8)"`
}
