package session

import (
	"time"

	"github.com/dicechamber/dicechamber/internal/common/clock"
	"github.com/dicechamber/dicechamber/internal/common/uuid"
	"github.com/dicechamber/dicechamber/internal/repositories/records"
)

const (
	// DefaultIdleTimeout closes connections with no traffic
	DefaultIdleTimeout = 30 * time.Second

	// DefaultEvictionTimeout tears down a coordinator with no connections
	DefaultEvictionTimeout = 10 * time.Minute

	// DefaultReplayLimit caps the records sent in a welcome replay
	DefaultReplayLimit = 50

	// DefaultReplayMaxAge excludes older records from a welcome replay
	DefaultReplayMaxAge = 24 * time.Hour
)

// Config holds configuration for session coordinators
type Config struct {
	// Record store dependency
	Store records.Repository

	// Clock for timestamps; defaults to the system clock
	Clock clock.Clock

	// UUIDGenerator for player ids; defaults to random UUIDs
	UUIDGenerator uuid.Generator

	// IdleTimeout is how long a silent connection stays open
	IdleTimeout time.Duration

	// EvictionTimeout is how long an empty session keeps its coordinator
	EvictionTimeout time.Duration

	// ReplayLimit caps the number of records in a welcome replay
	ReplayLimit int

	// ReplayMaxAge excludes records older than this from a welcome replay
	ReplayMaxAge time.Duration

	// IdleCheckInterval is how often idle connections are swept;
	// defaults to a quarter of IdleTimeout
	IdleCheckInterval time.Duration
}

// Conn is the coordinator's view of one client connection. Send enqueues a
// prepared frame without blocking and reports false when the connection can
// no longer accept writes.
type Conn interface {
	Send(data []byte) bool
	Close()
}
