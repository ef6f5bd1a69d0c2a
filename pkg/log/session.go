package log

import "github.com/google/uuid"

// NewSessionID returns a fresh identifier for correlating the events of
// one dispatcher or collector instance across a log file.
func NewSessionID() string {
	return uuid.New().String()
}
