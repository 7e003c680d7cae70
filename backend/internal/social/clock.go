package social

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time for deterministic tests
type Clock interface {
	Now() time.Time
}

// IDGenerator produces record IDs
type IDGenerator interface {
	New() string
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator issues random UUIDs
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
