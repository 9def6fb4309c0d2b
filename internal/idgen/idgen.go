// Package idgen allocates participant identities: a stable opaque id and
// a short human-readable label of the form "fm" + 4-5 decimal digits.
package idgen

import (
	"math/rand"
	"strconv"

	"github.com/google/uuid"
)

// NewID returns a fresh, globally unique participant id. Stable for the
// participant's lifetime and never reused.
func NewID() string {
	return uuid.NewString()
}

// NewLabel returns a short human-readable tag of the form "fm12345".
// Collisions across concurrently-connected participants are tolerated:
// the label is a display hint for operators, not an identity.
func NewLabel() string {
	n := 1000 + rand.Intn(90000) // 4 or 5 digits, 1000..90999
	return "fm" + strconv.Itoa(n)
}
