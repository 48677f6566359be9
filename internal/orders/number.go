package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	orderNumberPrefix = "MO"
	suffixLength      = 6

	// maxNumberAttempts bounds the regenerate-and-retry loop on a persisted
	// uniqueness violation.
	maxNumberAttempts = 3
)

// NewOrderNumber builds a human-readable, time-ordered order number:
// "MO" + second-precision timestamp + 6 random hex characters. The random
// suffix gives enough entropy at our write rate that no counter or external
// coordination is needed.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:suffixLength]
	return orderNumberPrefix + now.Format("20060102150405") + suffix
}
