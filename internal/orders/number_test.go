package orders

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestGenerateNumberFormat(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^ORD-20260828-[A-HJ-NP-Z2-9]{5}$`)

	for i := 0; i < 100; i++ {
		number, err := generateNumber(now)
		if err != nil {
			t.Fatalf("generateNumber: %v", err)
		}
		if !pattern.MatchString(number) {
			t.Fatalf("unexpected number %q", number)
		}
		for _, ambiguous := range []string{"0", "O", "1", "I"} {
			if strings.Contains(number[len("ORD-20260828-"):], ambiguous) {
				t.Fatalf("number %q contains ambiguous character %s", number, ambiguous)
			}
		}
	}
}
