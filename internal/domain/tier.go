package domain

import (
	"github.com/shopspring/decimal"

	"github.com/tonlotto/backend/pkg/errorx"
)

// Prize splits by tier, top prize first. The tier is selected by the
// number of participants in the round at closure time.
var (
	splitSingle = []decimal.Decimal{
		decimal.NewFromInt(1),
	}

	splitPair = []decimal.Decimal{
		decimal.NewFromFloat(0.70),
		decimal.NewFromFloat(0.30),
	}

	splitTriple = []decimal.Decimal{
		decimal.NewFromFloat(0.50),
		decimal.NewFromFloat(0.30),
		decimal.NewFromFloat(0.20),
	}

	splitQuad = []decimal.Decimal{
		decimal.NewFromFloat(0.40),
		decimal.NewFromFloat(0.30),
		decimal.NewFromFloat(0.20),
		decimal.NewFromFloat(0.10),
	}
)

func prizeSplit(participantCount int) ([]decimal.Decimal, error) {
	switch {
	case participantCount >= 2 && participantCount <= 3:
		return splitSingle, nil
	case participantCount >= 4 && participantCount <= 6:
		return splitPair, nil
	case participantCount >= 7 && participantCount <= 9:
		return splitTriple, nil
	case participantCount == 10:
		return splitQuad, nil
	}

	return nil, errorx.New(errorx.InsufficientParticipants,
		"No prize tier for %d participants", participantCount)
}

func winnerCount(participantCount int) (int, error) {
	split, err := prizeSplit(participantCount)
	if err != nil {
		return 0, err
	}

	return len(split), nil
}

// drawSlots samples count distinct slots from 1..n uniformly without
// replacement. The returned order matters: the first slot takes the top
// prize. randIntn is injected so tests can seed the source.
func drawSlots(randIntn func(int) int, n, count int) []int {
	slots := make([]int, n)
	for i := range slots {
		slots[i] = i + 1
	}

	for i := 0; i < count; i++ {
		j := i + randIntn(n-i)
		slots[i], slots[j] = slots[j], slots[i]
	}

	return slots[:count]
}
