package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// SettlementReference derives the opaque contract-style address recorded on
// a round at creation. The value is immutable for the round's lifetime.
func SettlementReference(roundID int64, nonce int64) string {
	hashed := sha256.Sum256([]byte(fmt.Sprintf("contract_%d-%d", roundID, nonce)))
	return "EQ_" + hex.EncodeToString(hashed[:])[:12]
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}
