package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxLoanIDLen      = 24
	maxLoanIDAttempts = 8
)

// newLoanID builds an id from the creation time in base 36 followed by random
// hex from a UUID, truncated to maxLoanIDLen.
func newLoanID(now time.Time) string {
	id := strconv.FormatInt(now.UnixMilli(), 36) + strings.ReplaceAll(uuid.NewString(), "-", "")
	if len(id) > maxLoanIDLen {
		id = id[:maxLoanIDLen]
	}
	return id
}

// normalizeLoanID canonicalizes user-supplied ids. Generated ids are already
// lower case.
func normalizeLoanID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
