// Package sessionid validates the six character codes that name sessions.
package sessionid

// Length is the required length of a session identifier.
const Length = 6

// Valid reports whether s is exactly six ASCII letters or digits.
// Case is preserved by callers; two differently-cased identifiers
// address two different sessions.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
