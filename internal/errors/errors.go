package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitflow/internal/logger"
)

var (
	// ErrNoActiveSession is returned when no user namespace can be resolved
	ErrNoActiveSession = stderrors.New("no user logged in")
	// ErrStorageRead wraps adapter failures and malformed blobs on read
	ErrStorageRead = stderrors.New("storage read failed")
	// ErrStorageWrite wraps adapter failures on write
	ErrStorageWrite = stderrors.New("storage write failed")
	// ErrNotFound is returned when an id is absent from a collection
	ErrNotFound = stderrors.New("not found")
	// ErrEmailTaken is returned when registering an email twice
	ErrEmailTaken = stderrors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = stderrors.New("invalid credentials")
	// ErrValidation is returned for rejected user input
	ErrValidation = stderrors.New("validation failed")
)

// Read wraps err as a storage read failure on key
func Read(key string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageRead, key, err)
}

// Write wraps err as a storage write failure on key
func Write(key string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageWrite, key, err)
}

// Validation builds an ErrValidation with a user-facing message
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
