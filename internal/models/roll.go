package models

import (
	"encoding/json"
	"time"
)

// RollType identifies the kind of roll a record carries
type RollType string

const (
	// RollTypeCheck is a duality check roll (hope and fear dice)
	RollTypeCheck RollType = "check"

	// RollTypeDamage is a damage roll (a pool of dice plus an optional bonus die)
	RollTypeDamage RollType = "damage"

	// RollTypeGM is a GM d20 roll, optionally private
	RollTypeGM RollType = "gm"
)

// RollRecord represents one immutable roll event in a session
type RollRecord struct {
	// ID is the monotonic per-session record identifier, assigned at persist time
	ID int64 `json:"id"`

	// PlayerID is the ID of the player who made the roll
	PlayerID string `json:"playerId"`

	// PlayerName is the display name of the player at roll time
	PlayerName string `json:"playerName"`

	// RollType is the declared kind of roll
	RollType RollType `json:"rollType"`

	// Payload is the type-specific roll payload, persisted verbatim
	Payload json.RawMessage `json:"payload"`

	// Total is the combined numeric result of the roll
	Total int `json:"total"`

	// ResultText is the human-readable outcome of the roll
	ResultText string `json:"resultText"`

	// Private limits visibility of the record to the rolling player
	Private bool `json:"private,omitempty"`

	// Timestamp is when the roll was committed
	Timestamp time.Time `json:"timestamp"`
}
