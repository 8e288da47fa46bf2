package entity

type Participant struct {
	Base

	RoundID int64 `gorm:"uniqueIndex:idx_participants_round_user;uniqueIndex:idx_participants_round_slot"`
	Round   Round `gorm:"foreignKey:RoundID"`

	UserID string `gorm:"uniqueIndex:idx_participants_round_user"`

	// Slot numbers are dense within a round: after N joins the slots are
	// exactly 1..N. The unique index rejects concurrent double-assignment.
	Slot int `gorm:"uniqueIndex:idx_participants_round_slot"`
}
