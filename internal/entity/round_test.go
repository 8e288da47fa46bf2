package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ValidTransition(t *testing.T) {
	allowed := map[RoundStatus][]RoundStatus{
		RoundWaitingToStart:     {RoundWaitingForPayments, RoundDrawing, RoundCancelled},
		RoundWaitingForPayments: {RoundDrawing, RoundCancelled},
		RoundDrawing:            {RoundFinished, RoundCancelled},
		RoundFinished:           {},
		RoundCancelled:          {},
	}

	all := []RoundStatus{
		RoundWaitingToStart, RoundWaitingForPayments,
		RoundDrawing, RoundFinished, RoundCancelled,
	}

	for from, tos := range allowed {
		for _, to := range all {
			want := false
			for _, ok := range tos {
				if to == ok {
					want = true
				}
			}

			require.Equal(t, want, ValidTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func Test_RoundStatus_IsTerminal(t *testing.T) {
	require.True(t, RoundFinished.IsTerminal())
	require.True(t, RoundCancelled.IsTerminal())
	require.False(t, RoundWaitingToStart.IsTerminal())
	require.False(t, RoundWaitingForPayments.IsTerminal())
	require.False(t, RoundDrawing.IsTerminal())
}
