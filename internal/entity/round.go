package entity

import (
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/tonlotto/backend/pkg/enum"
)

type RoundStatus string

var (
	RoundWaitingToStart     = enum.New(RoundStatus("waiting_to_start"))
	RoundWaitingForPayments = enum.New(RoundStatus("waiting_for_payments"))
	RoundDrawing            = enum.New(RoundStatus("drawing"))
	RoundFinished           = enum.New(RoundStatus("finished"))
	RoundCancelled          = enum.New(RoundStatus("cancelled"))
)

// OpenRoundStatuses are the statuses in which a round accepts joins.
var OpenRoundStatuses = []RoundStatus{RoundWaitingToStart, RoundWaitingForPayments}

// IsTerminal reports whether no transition may leave the status.
func (s RoundStatus) IsTerminal() bool {
	return s == RoundFinished || s == RoundCancelled
}

// ValidTransition reports whether the status graph permits from -> to.
// waiting_to_start -> waiting_for_payments -> drawing -> finished, with
// cancelled reachable from any non-terminal status.
func ValidTransition(from, to RoundStatus) bool {
	switch from {
	case RoundWaitingToStart:
		return to == RoundWaitingForPayments || to == RoundDrawing || to == RoundCancelled
	case RoundWaitingForPayments:
		return to == RoundDrawing || to == RoundCancelled
	case RoundDrawing:
		return to == RoundFinished || to == RoundCancelled
	default:
		return false
	}
}

type RoundType string

var (
	RoundScheduled   = enum.New(RoundType("scheduled"))
	RoundUserCreated = enum.New(RoundType("user_created"))
)

type Round struct {
	SnowFlakeBase

	Status RoundStatus `gorm:"index"`
	Type   RoundType

	// CreatorID is set iff Type is user_created.
	CreatorID sql.NullString

	TicketPrice decimal.Decimal `gorm:"type:decimal(20,8)"`

	// SettlementReference is an opaque contract-style address generated once
	// at creation and never updated.
	SettlementReference string

	ClosedAt sql.NullTime
}
