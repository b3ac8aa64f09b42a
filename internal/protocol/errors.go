package protocol

// ValidationError is a recoverable error for a malformed client message.
// The connection stays open; the client may correct and resend.
type ValidationError string

// Error implements the error interface
func (e ValidationError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrMalformedMessage   ValidationError = "malformed message"
	ErrUnknownRollType    ValidationError = "unknown roll type"
	ErrMalformedPayload   ValidationError = "malformed roll payload"
	ErrMissingHopeValue   ValidationError = "check roll requires hopeValue between 1 and 12"
	ErrMissingFearValue   ValidationError = "check roll requires fearValue between 1 and 12"
	ErrMissingDiceType    ValidationError = "damage roll requires diceType greater than 0"
	ErrMissingDiceValues  ValidationError = "damage roll requires at least one die value"
	ErrDieValueOutOfRange ValidationError = "damage roll die value out of range for diceType"
	ErrMissingD20Value    ValidationError = "gm roll requires d20Value between 1 and 20"
)
