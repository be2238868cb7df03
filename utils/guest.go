package utils

import "github.com/google/uuid"

// NewGuestID mints the random identifier handed to anonymous clients. UUIDv4
// gives 122 random bits, so collisions across guest sessions are negligible.
func NewGuestID() string {
	return uuid.New().String()
}

// IsValidGuestID reports whether an inbound guest header is well-formed. A
// malformed value is simply replaced with a fresh id; guest ids are never an
// authentication mechanism.
func IsValidGuestID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
