package model

import "time"

type Round struct {
	ID                  int64     `json:"id"`
	Status              string    `json:"status"`
	Type                string    `json:"type"`
	CreatorID           string    `json:"creator_id,omitempty"`
	TicketPrice         string    `json:"ticket_price"`
	SettlementReference string    `json:"settlement_reference"`
	ParticipantCount    int       `json:"participant_count"`
	CreatedAt           time.Time `json:"created_at"`
	ClosedAt            time.Time `json:"closed_at,omitempty"`
}

type Participant struct {
	UserID   string    `json:"user_id"`
	Slot     int       `json:"slot"`
	JoinedAt time.Time `json:"joined_at"`
}

type DrawResult struct {
	Rank        int    `json:"rank"`
	DrawnSlot   int    `json:"drawn_slot"`
	WinnerID    string `json:"winner_id,omitempty"`
	PrizeAmount string `json:"prize_amount"`
}

type Commission struct {
	Type        string `json:"type"`
	RecipientID string `json:"recipient_id,omitempty"`
	Amount      string `json:"amount"`
}

type CreateRoundRequest struct {
	Type        string `json:"type"`
	CreatorID   string `json:"creator_id"`
	TicketPrice string `json:"ticket_price"`
}

type CreateRoundResponse struct {
	RoundID             int64  `json:"round_id"`
	SettlementReference string `json:"settlement_reference"`
}

type JoinRoundRequest struct {
	RoundID int64  `json:"round_id"`
	UserID  string `json:"user_id"`
}

type JoinRoundResponse struct {
	Slot             int `json:"slot"`
	ParticipantCount int `json:"participant_count"`
}

type GetListRoundRequest struct{}

type GetListRoundResponse struct {
	Rounds []Round `json:"rounds"`
}

type GetRoundRequest struct {
	RoundID int64 `json:"round_id" form:"round_id"`
}

type GetRoundResponse struct {
	Round        Round         `json:"round"`
	Participants []Participant `json:"participants"`
	Results      []DrawResult  `json:"results,omitempty"`
	Commissions  []Commission  `json:"commissions,omitempty"`
}

type EvaluateRoundsRequest struct{}

type EvaluateRoundsResponse struct {
	Closed int `json:"closed"`
}
