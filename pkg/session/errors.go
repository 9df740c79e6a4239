package session

import "fmt"

var (
	// ErrSearchAbandoned is returned when a search was cleared or the session
	// closed before its lookup resolved.
	ErrSearchAbandoned = fmt.Errorf("search abandoned")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = fmt.Errorf("session is closed")
)
