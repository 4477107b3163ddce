package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: false, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestInitExplicitDir(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "elsewhere")

	if err := Init(Config{Dir: logDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	Warn("written to file")

	if _, err := os.Stat(filepath.Join(logDir, "habitflow.log")); err != nil {
		t.Errorf("expected log file in %s: %v", logDir, err)
	}
}

func TestSetOutputLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)

	Debug("hidden debug")
	Warn("visible warning", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden debug") {
		t.Errorf("debug message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "visible warning") || !strings.Contains(out, "key=value") {
		t.Errorf("warning missing from output: %q", out)
	}

	buf.Reset()
	SetOutput(&buf, true)
	Debug("shown debug")
	if !strings.Contains(buf.String(), "shown debug") {
		t.Errorf("debug message missing in debug mode: %q", buf.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	Debug("no-op")
	Info("no-op")
	Warn("no-op")
	Error("no-op")
}
