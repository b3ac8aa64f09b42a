// Package protocol defines the JSON wire messages exchanged between clients
// and a session coordinator, and the validation of roll payloads.
package protocol

import (
	"encoding/json"

	"github.com/dicechamber/dicechamber/internal/models"
)

// Client to server message types
const (
	TypeJoin  = "JOIN"
	TypeRoll  = "ROLL"
	TypePing  = "PING"
	TypeLeave = "LEAVE"
)

// Server to client message types
const (
	TypeWelcome      = "WELCOME"
	TypePlayerJoined = "PLAYER_JOINED"
	TypePlayerLeft   = "PLAYER_LEFT"
	TypeRollResult   = "ROLL_RESULT"
	TypeHistory      = "HISTORY"
	TypePong         = "PONG"
	TypeError        = "ERROR"
)

// ClientMessage is the envelope for every inbound frame. Fields beyond
// Type are populated depending on the message type.
type ClientMessage struct {
	Type       string          `json:"type"`
	PlayerName string          `json:"playerName,omitempty"`
	RollType   models.RollType `json:"rollType,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// ParseClientMessage decodes one inbound frame
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, ErrMalformedMessage
	}
	return &msg, nil
}

// Welcome is sent once to a newly joined connection
type Welcome struct {
	Type        string               `json:"type"`
	PlayerID    string               `json:"playerId"`
	Roster      []*models.Player     `json:"roster"`
	RecentRolls []*models.RollRecord `json:"recentRolls"`
}

// PlayerJoined announces a player joining or renaming to the rest of the room
type PlayerJoined struct {
	Type   string         `json:"type"`
	Player *models.Player `json:"player"`
}

// PlayerLeft announces a player leaving the room
type PlayerLeft struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

// RollResult carries one committed roll record
type RollResult struct {
	Type   string             `json:"type"`
	Record *models.RollRecord `json:"record"`
}

// History carries a replay slice of committed roll records
type History struct {
	Type    string               `json:"type"`
	Records []*models.RollRecord `json:"records"`
}

// Pong answers a client PING
type Pong struct {
	Type string `json:"type"`
}

// ErrorMessage reports a recoverable failure to one client
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewWelcome builds a WELCOME message
func NewWelcome(playerID string, roster []*models.Player, recent []*models.RollRecord) *Welcome {
	return &Welcome{Type: TypeWelcome, PlayerID: playerID, Roster: roster, RecentRolls: recent}
}

// NewPlayerJoined builds a PLAYER_JOINED message
func NewPlayerJoined(player *models.Player) *PlayerJoined {
	return &PlayerJoined{Type: TypePlayerJoined, Player: player}
}

// NewPlayerLeft builds a PLAYER_LEFT message
func NewPlayerLeft(playerID string) *PlayerLeft {
	return &PlayerLeft{Type: TypePlayerLeft, PlayerID: playerID}
}

// NewRollResult builds a ROLL_RESULT message
func NewRollResult(record *models.RollRecord) *RollResult {
	return &RollResult{Type: TypeRollResult, Record: record}
}

// NewHistory builds a HISTORY message
func NewHistory(records []*models.RollRecord) *History {
	return &History{Type: TypeHistory, Records: records}
}

// NewPong builds a PONG message
func NewPong() *Pong {
	return &Pong{Type: TypePong}
}

// NewError builds an ERROR message
func NewError(message string) *ErrorMessage {
	return &ErrorMessage{Type: TypeError, Message: message}
}
