package core

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewID returns a new entity identifier.
func NewID() string {
	return uuid.NewString()
}

// IsValidID reports whether `id` is a well-formed entity identifier.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// NewRequestID returns a lexicographically sortable identifier, used to trace requests.
func NewRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
