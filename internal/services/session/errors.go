package session

// SessionError is a custom error type for session coordination errors
type SessionError string

// Error implements the error interface
func (e SessionError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig          SessionError = "config cannot be nil"
	ErrNilStore           SessionError = "record store cannot be nil"
	ErrCoordinatorStopped SessionError = "session coordinator stopped"
)
