package errors

import (
	stderrors "errors"
	"io"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: stderrors.New("something went wrong"), expected: "Error: something went wrong"},
		{name: "sentinel", err: ErrNoActiveSession, expected: "Error: no user logged in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("failed to load %s", "habits")
	if got != "Error: failed to load habits" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestWrappersKeepSentinels(t *testing.T) {
	readErr := Read("user_a@b.c_habits", io.ErrUnexpectedEOF)
	if !stderrors.Is(readErr, ErrStorageRead) {
		t.Errorf("Read() does not wrap ErrStorageRead: %v", readErr)
	}
	if !stderrors.Is(readErr, io.ErrUnexpectedEOF) {
		t.Errorf("Read() does not wrap the cause: %v", readErr)
	}
	if !strings.Contains(readErr.Error(), "user_a@b.c_habits") {
		t.Errorf("Read() message missing key: %v", readErr)
	}

	writeErr := Write("loggedUser", io.ErrClosedPipe)
	if !stderrors.Is(writeErr, ErrStorageWrite) || !stderrors.Is(writeErr, io.ErrClosedPipe) {
		t.Errorf("Write() lost wrapped errors: %v", writeErr)
	}

	valErr := Validation("email %q is invalid", "nope")
	if !stderrors.Is(valErr, ErrValidation) {
		t.Errorf("Validation() does not wrap ErrValidation")
	}
	if !strings.Contains(valErr.Error(), `"nope"`) {
		t.Errorf("Validation() message = %q", valErr.Error())
	}
}
