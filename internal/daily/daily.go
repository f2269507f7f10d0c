// internal/daily/daily.go
//
// Deterministic "deal of the day": every player gets the same shuffle on a
// given UTC date.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed derives the deal seed for a date from HMAC(salt, YYYY-MM-DD).
// The result is never 0, which the game package reads as "pick at random".
func Seed(date time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	n := binary.BigEndian.Uint64(sum[:8])
	if n == 0 {
		n = 1
	}
	return n
}
