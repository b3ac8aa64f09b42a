package models

import (
	"time"
)

// Player represents a participant in a session
type Player struct {
	// ID is the server-generated identifier for this player's connection
	ID string `json:"id"`

	// Name is the display name of the player
	Name string `json:"name"`

	// JoinedAt is when the player first connected to the session
	JoinedAt time.Time `json:"joinedAt"`

	// LastSeen is when the player last sent any traffic
	LastSeen time.Time `json:"lastSeen"`

	// IsActive indicates whether the player's connection is still open
	IsActive bool `json:"isActive"`
}
