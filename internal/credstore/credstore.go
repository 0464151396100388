// Package credstore persists the session's bearer token and user profile
// between runs, mirroring the two browser local-storage keys the web client
// uses.
package credstore

import (
	"fmt"

	"github.com/RS-Eagle/krema-admin-go/internal/models"
)

// Credentials is the persisted client state. ActiveSalonID carries the last
// selected scope across runs; zero means no selection was stored.
type Credentials struct {
	Token         string
	User          models.User
	ActiveSalonID int64
}

// Store defines the interface for credential backends.
type Store interface {
	// Save writes the credentials, replacing any previous ones.
	Save(creds Credentials) error

	// Load returns the stored credentials. ok is false when nothing is
	// stored; that is not an error.
	Load() (creds Credentials, ok bool, err error)

	// Clear removes any stored credentials. Clearing an empty store is a
	// no-op.
	Clear() error
}

// New creates a credential store for the given driver.
func New(driver, path string) (Store, error) {
	switch driver {
	case "file", "":
		return NewFileStore(path), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown credstore driver: %s", driver)
	}
}
