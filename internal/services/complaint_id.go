package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// NewComplaintID produces a tracking identifier of the form
// CMP-<year>-<8 digits>, the digits being the last four of the current Unix
// millisecond timestamp plus a four-digit random suffix. Two submissions in
// the same millisecond still differ with high probability; true uniqueness is
// enforced by the store's unique index with regenerate-and-retry.
func NewComplaintID() string {
	return complaintIDAt(time.Now())
}

func complaintIDAt(t time.Time) string {
	millis := t.UnixMilli() % 10_000
	return fmt.Sprintf("CMP-%d-%04d%04d", t.Year(), millis, randomDigits(10_000))
}

func randomDigits(max int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		// crypto/rand failing is unrecoverable for this process; fall back to
		// the clock so submission still proceeds.
		return time.Now().UnixNano() % max
	}
	return n.Int64()
}
