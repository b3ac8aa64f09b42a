package session

import (
	"context"
	"sync"

	"github.com/dicechamber/dicechamber/internal/common/clock"
	"github.com/dicechamber/dicechamber/internal/common/uuid"
)

// Registry guarantees at most one live coordinator per session identifier
// in this process. Identifiers are matched by the literal case-preserved
// string, so differently-cased identifiers address different sessions.
type Registry struct {
	cfg *Config

	mu           sync.Mutex
	coordinators map[string]*Coordinator
	creating     map[string]*creation
}

// creation tracks one in-flight coordinator construction. Rehydration does
// store IO and must not run under the registry mutex; a stalled store call
// for one identifier may only block attaches to that identifier.
type creation struct {
	done chan struct{}

	// set before done is closed
	c   *Coordinator
	err error
}

// NewRegistry creates a new coordinator registry
func NewRegistry(cfg *Config) (*Registry, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Store == nil {
		return nil, ErrNilStore
	}

	// Copy so defaulting does not mutate the caller's config
	resolved := *cfg
	if resolved.Clock == nil {
		resolved.Clock = clock.New()
	}
	if resolved.UUIDGenerator == nil {
		resolved.UUIDGenerator = uuid.New()
	}
	if resolved.IdleTimeout <= 0 {
		resolved.IdleTimeout = DefaultIdleTimeout
	}
	if resolved.EvictionTimeout <= 0 {
		resolved.EvictionTimeout = DefaultEvictionTimeout
	}
	if resolved.ReplayLimit <= 0 {
		resolved.ReplayLimit = DefaultReplayLimit
	}
	if resolved.ReplayMaxAge <= 0 {
		resolved.ReplayMaxAge = DefaultReplayMaxAge
	}
	if resolved.IdleCheckInterval <= 0 {
		resolved.IdleCheckInterval = resolved.IdleTimeout / 4
	}

	return &Registry{
		cfg:          &resolved,
		coordinators: make(map[string]*Coordinator),
		creating:     make(map[string]*creation),
	}, nil
}

// Attach resolves or creates the coordinator for sessionID and registers
// the connection with it. The caller keeps the returned coordinator for
// routing later messages from the same connection.
func (r *Registry) Attach(ctx context.Context, sessionID string, conn Conn) (*Coordinator, error) {
	for {
		c, err := r.getOrCreate(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		err = c.Attach(conn)
		if err == nil {
			return c, nil
		}
		if err != ErrCoordinatorStopped {
			return nil, err
		}
		// The instance was evicted between lookup and attach; a fresh
		// one rehydrates from the store on the next iteration.
	}
}

func (r *Registry) getOrCreate(ctx context.Context, sessionID string) (*Coordinator, error) {
	r.mu.Lock()
	if c, ok := r.coordinators[sessionID]; ok {
		r.mu.Unlock()
		return c, nil
	}

	if inflight, ok := r.creating[sessionID]; ok {
		r.mu.Unlock()
		select {
		case <-inflight.done:
			return inflight.c, inflight.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	cr := &creation{done: make(chan struct{})}
	r.creating[sessionID] = cr
	r.mu.Unlock()

	c, err := newCoordinator(ctx, sessionID, r.cfg, r.remove)

	r.mu.Lock()
	delete(r.creating, sessionID)
	if err == nil {
		r.coordinators[sessionID] = c
	}
	r.mu.Unlock()

	cr.c, cr.err = c, err
	close(cr.done)

	return c, err
}

// remove deregisters an evicted coordinator. Only the current holder of
// the identifier is removed; a replacement created concurrently stays.
func (r *Registry) remove(c *Coordinator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.coordinators[c.sessionID] == c {
		delete(r.coordinators, c.sessionID)
	}
}

// ActiveSessions returns the number of live coordinator instances
func (r *Registry) ActiveSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.coordinators)
}
