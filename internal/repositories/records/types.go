package records

import (
	"time"

	"github.com/dicechamber/dicechamber/internal/models"
)

// CreateSessionInput holds parameters for the CreateSession method
type CreateSessionInput struct {
	// SessionID addresses the session, case preserved
	SessionID string
}

// UpsertPlayerInput holds parameters for the UpsertPlayer method
type UpsertPlayerInput struct {
	SessionID string
	Player    *models.Player
}

// AppendRollInput holds parameters for the AppendRoll method. The record's
// ID field is ignored; the store assigns it
type AppendRollInput struct {
	SessionID string
	Record    *models.RollRecord
}

// AppendRollOutput holds the persisted record with its assigned id
type AppendRollOutput struct {
	Record *models.RollRecord
}

// ListRosterInput holds parameters for the ListRoster method
type ListRosterInput struct {
	SessionID string
}

// ListRosterOutput holds the results of the ListRoster method
type ListRosterOutput struct {
	Players []*models.Player
}

// ListRecentRollsInput holds parameters for the ListRecentRolls method
type ListRecentRollsInput struct {
	SessionID string

	// Limit caps the number of records returned
	Limit int

	// MaxAge, when positive, excludes records older than this age
	MaxAge time.Duration
}

// ListRecentRollsOutput holds the results of the ListRecentRolls method,
// in ascending record id order
type ListRecentRollsOutput struct {
	Records []*models.RollRecord
}

// MarkInactiveInput holds parameters for the MarkInactive method
type MarkInactiveInput struct {
	SessionID string
	PlayerID  string
}

// PurgeOlderThanInput holds parameters for the PurgeOlderThan method
type PurgeOlderThanInput struct {
	// Age is the retention cutoff; records older than this are removed
	Age time.Duration
}

// PurgeOlderThanOutput holds the results of the PurgeOlderThan method
type PurgeOlderThanOutput struct {
	// RecordsRemoved is the number of roll records deleted
	RecordsRemoved int

	// SessionsRemoved is the number of stale session rows deleted
	SessionsRemoved int
}
