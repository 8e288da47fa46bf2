package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func Test_prizeSplit(t *testing.T) {
	for n := 2; n <= 10; n++ {
		split, err := prizeSplit(n)
		require.NoError(t, err)

		sum := decimal.Zero
		for _, share := range split {
			sum = sum.Add(share)
		}

		require.True(t, sum.Equal(decimal.NewFromInt(1)),
			"split for %d participants sums to %s", n, sum)
	}

	for _, n := range []int{-1, 0, 1, 11, 100} {
		_, err := prizeSplit(n)
		require.Error(t, err)
	}
}

func Test_winnerCount(t *testing.T) {
	expected := map[int]int{2: 1, 3: 1, 4: 2, 5: 2, 6: 2, 7: 3, 8: 3, 9: 3, 10: 4}
	for n, want := range expected {
		got, err := winnerCount(n)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func Test_drawSlots(t *testing.T) {
	for n := 2; n <= 10; n++ {
		count, err := winnerCount(n)
		require.NoError(t, err)

		r := rand.New(rand.NewSource(42))
		first := drawSlots(r.Intn, n, count)
		require.Len(t, first, count)

		seen := map[int]bool{}
		for _, slot := range first {
			require.GreaterOrEqual(t, slot, 1)
			require.LessOrEqual(t, slot, n)
			require.False(t, seen[slot], "slot %d drawn twice", slot)
			seen[slot] = true
		}

		// A fixed seed always draws the same slots in the same order.
		r = rand.New(rand.NewSource(42))
		require.Equal(t, first, drawSlots(r.Intn, n, count))
	}
}
