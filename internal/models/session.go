package models

import (
	"time"
)

// SessionMeta holds the durable metadata row for a session
type SessionMeta struct {
	// ID is the six character session identifier, case preserved as received
	ID string `json:"id"`

	// CreatedAt is when the session row was first created
	CreatedAt time.Time `json:"createdAt"`

	// LastActivity is when the session last saw a connection or a committed roll
	LastActivity time.Time `json:"lastActivity"`
}
