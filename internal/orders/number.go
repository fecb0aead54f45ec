package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

// numberAlphabet skips 0/O/1/I to keep order numbers readable over the phone.
const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const numberSuffixLen = 5

// generateNumber produces an order number like ORD-20260828-7KQ2M. Collisions
// are possible and handled by the unique index plus a retry at the call site.
func generateNumber(now time.Time) (string, error) {
	buf := make([]byte, numberSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating order number: %w", err)
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), string(buf)), nil
}
