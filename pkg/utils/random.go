package utils

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

var (
	randMu     sync.Mutex
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomBase36 returns length random lowercase base36 characters, used for
// fallback slugs.
func RandomBase36(length int) string {
	randMu.Lock()
	defer randMu.Unlock()
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[seededRand.Intn(len(charset))]
	}
	return string(b)
}

// NewID generates a record id.
func NewID() string {
	return uuid.NewString()
}

// NewEventID generates the id shared by the browser pixel and the
// server-side conversion call so the ads platform can deduplicate them.
func NewEventID() string {
	return uuid.NewString()
}
