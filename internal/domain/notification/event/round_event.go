package event

type JoinedEvent struct {
	RoundID          int64 `json:"round_id"`
	Slot             int   `json:"slot"`
	ParticipantCount int   `json:"participant_count"`
}

func (JoinedEvent) Op() string {
	return "joined"
}

type RoundFullEvent struct {
	RoundID          int64 `json:"round_id"`
	ParticipantCount int   `json:"participant_count"`
}

func (RoundFullEvent) Op() string {
	return "round_full"
}

type DrawnNumberEvent struct {
	RoundID    int64 `json:"round_id"`
	DrawnSlots []int `json:"drawn_slots"`
}

func (DrawnNumberEvent) Op() string {
	return "drawn_number"
}

type WinnerShare struct {
	Rank   int    `json:"rank"`
	Slot   int    `json:"slot"`
	UserID string `json:"user_id,omitempty"`
	Amount string `json:"amount"`
}

type WinnersAnnouncedEvent struct {
	RoundID int64         `json:"round_id"`
	Winners []WinnerShare `json:"winners"`
}

func (WinnersAnnouncedEvent) Op() string {
	return "winners_announced"
}

type CommissionShare struct {
	Type        string `json:"type"`
	RecipientID string `json:"recipient_id,omitempty"`
	Amount      string `json:"amount"`
}

type CommissionsAnnouncedEvent struct {
	RoundID     int64             `json:"round_id"`
	Commissions []CommissionShare `json:"commissions"`
}

func (CommissionsAnnouncedEvent) Op() string {
	return "commissions_announced"
}

type RoundFinishedEvent struct {
	RoundID int64 `json:"round_id"`
}

func (RoundFinishedEvent) Op() string {
	return "round_finished"
}

type RoundCancelledEvent struct {
	RoundID int64  `json:"round_id"`
	Reason  string `json:"reason"`
}

func (RoundCancelledEvent) Op() string {
	return "round_cancelled"
}
