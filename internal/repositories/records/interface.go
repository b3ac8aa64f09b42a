package records

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/dicechamber/dicechamber/internal/repositories/records Repository

import (
	"context"
)

// Repository defines the interface for durable session state: the player
// roster and the append-only roll log. It is the only writer of persisted
// state; coordinators call into it and never bypass it.
type Repository interface {
	// CreateSession ensures the durable session row exists and refreshes
	// its activity timestamp
	CreateSession(ctx context.Context, input *CreateSessionInput) error

	// UpsertPlayer inserts or updates a player row in the session roster
	UpsertPlayer(ctx context.Context, input *UpsertPlayerInput) error

	// AppendRoll assigns the next monotonic record id for the session and
	// persists the record. Records are append-only; there is no update or
	// delete of individual history rows
	AppendRoll(ctx context.Context, input *AppendRollInput) (*AppendRollOutput, error)

	// ListRoster retrieves every player row for a session
	ListRoster(ctx context.Context, input *ListRosterInput) (*ListRosterOutput, error)

	// ListRecentRolls retrieves the most recent roll records in ascending
	// id order, bounded by a count limit and an optional maximum age
	ListRecentRolls(ctx context.Context, input *ListRecentRollsInput) (*ListRecentRollsOutput, error)

	// MarkInactive flags a player row as no longer connected
	MarkInactive(ctx context.Context, input *MarkInactiveInput) error

	// PurgeOlderThan removes roll records older than the given age across
	// all sessions, and drops sessions left with no rows and no activity
	PurgeOlderThan(ctx context.Context, input *PurgeOlderThanInput) (*PurgeOlderThanOutput, error)
}
