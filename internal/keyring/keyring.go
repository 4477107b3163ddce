package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitflow/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// account is the keyring user for a backend. Each remote backend keeps its
// own connection string so switching --backend does not clobber the others.
func account(backend constants.Backend) string {
	return constants.DefaultKeyringUser + ":" + string(backend)
}

// GetConnectionString retrieves the connection string for backend.
// Returns ErrNotFound if no credentials are stored.
func GetConnectionString(backend constants.Backend) (string, error) {
	connStr, err := keyring.Get(constants.AppName, account(backend))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// SetConnectionString stores the connection string for backend.
func SetConnectionString(backend constants.Backend, connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, account(backend), connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// DeleteConnectionString removes the connection string for backend.
func DeleteConnectionString(backend constants.Backend) error {
	err := keyring.Delete(constants.AppName, account(backend))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
