// README: Verification code and booking id generation backed by crypto/rand.
package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// BookingPrefix starts every booking id.
const BookingPrefix = "UB"

type Generator interface {
	// NextCode returns a 4-digit one-time verification code.
	NextCode() string
	// NextBookingID returns a prefixed booking identifier.
	NextBookingID() string
}

// Random draws codes and ids from crypto/rand. It is safe for concurrent use.
type Random struct{}

func NewRandom() Random { return Random{} }

func (Random) NextCode() string {
	return fmt.Sprintf("%04d", between(1000, 9999))
}

func (Random) NextBookingID() string {
	return fmt.Sprintf("%s%05d", BookingPrefix, between(10000, 99999))
}

// between returns a uniform integer in [lo, hi].
func between(lo, hi int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(hi-lo+1))
	if err != nil {
		panic(fmt.Sprintf("idgen: reading random source: %v", err))
	}
	return lo + n.Int64()
}
