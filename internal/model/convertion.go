package model

import (
	"github.com/tonlotto/backend/internal/entity"
)

func ConvertRound(round *entity.Round, participantCount int) Round {
	if round == nil {
		return Round{}
	}

	result := Round{
		ID:                  round.ID,
		Status:              string(round.Status),
		Type:                string(round.Type),
		TicketPrice:         round.TicketPrice.String(),
		SettlementReference: round.SettlementReference,
		ParticipantCount:    participantCount,
		CreatedAt:           round.CreatedAt,
	}

	if round.CreatorID.Valid {
		result.CreatorID = round.CreatorID.String
	}

	if round.ClosedAt.Valid {
		result.ClosedAt = round.ClosedAt.Time
	}

	return result
}

func ConvertParticipant(participant *entity.Participant) Participant {
	if participant == nil {
		return Participant{}
	}

	return Participant{
		UserID:   participant.UserID,
		Slot:     participant.Slot,
		JoinedAt: participant.CreatedAt,
	}
}

func ConvertDrawResult(result *entity.DrawResult) DrawResult {
	if result == nil {
		return DrawResult{}
	}

	converted := DrawResult{
		Rank:        result.Rank,
		DrawnSlot:   result.DrawnSlot,
		PrizeAmount: result.PrizeAmount.String(),
	}

	if result.WinnerID.Valid {
		converted.WinnerID = result.WinnerID.String
	}

	return converted
}

func ConvertCommission(commission *entity.CommissionRecord) Commission {
	if commission == nil {
		return Commission{}
	}

	converted := Commission{
		Type:   string(commission.Type),
		Amount: commission.Amount.String(),
	}

	if commission.RecipientID.Valid {
		converted.RecipientID = commission.RecipientID.String
	}

	return converted
}
