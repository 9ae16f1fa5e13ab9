package service

import "github.com/google/uuid"

// Actor is the authenticated user a core operation runs on behalf of.
// Passed explicitly into every operation instead of being read from
// ambient session state.
type Actor struct {
	ID        uuid.UUID
	Username  string
	LoginName string
}
