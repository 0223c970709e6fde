package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{level: "error", expected: []string{"ERROR"}, excluded: []string{"WARN", "INFO", "DEBUG"}},
		{level: "warn", expected: []string{"ERROR", "WARN"}, excluded: []string{"INFO", "DEBUG"}},
		{level: "info", expected: []string{"ERROR", "WARN", "INFO"}, excluded: []string{"DEBUG"}},
		{level: "", expected: []string{"INFO"}, excluded: []string{"DEBUG"}},
		{level: "debug", expected: []string{"ERROR", "WARN", "INFO", "DEBUG"}},
	}

	for _, tt := range tests {
		t.Run("level="+tt.level, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), "terrain.log")
			cfg := FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1}

			log := New(tt.level, cfg, nil)
			log.Debug("debug message")
			log.Info("info message")
			log.Warn("warn message")
			log.Error("error message")
			_ = log.Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			out := string(content)
			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %s in log output for level %q", exc, tt.level)
				}
			}
		})
	}
}

func TestNewConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", FileConfig{}, &buf).Named("streaming")
	log.Warn("coverage gap detected")
	_ = log.Sync()

	out := buf.String()
	if !strings.Contains(out, "coverage gap detected") {
		t.Errorf("message missing from console output: %q", out)
	}
	if !strings.Contains(out, "streaming") {
		t.Errorf("logger name missing from console output: %q", out)
	}
}

func TestNewWithoutOutputsIsNop(t *testing.T) {
	log := New("debug", FileConfig{}, nil)
	if log.Core().Enabled(-1) {
		t.Error("expected a disabled core when no outputs are configured")
	}
}

func TestGlobalLoggerDefaultsToNop(t *testing.T) {
	// Package-level helpers must be safe before Init.
	Info("not initialised yet")
	Named("terrain").Debug("still fine")
	Sync()
}

func TestInitWithFileConfig(t *testing.T) {
	prev, prevSugar := Log, Sugar
	defer func() { Log, Sugar = prev, prevSugar }()

	logFile := filepath.Join(t.TempDir(), "init.log")
	if err := InitWithFileConfig("info", DefaultFileConfig(logFile), false); err != nil {
		t.Fatalf("InitWithFileConfig: %v", err)
	}
	Named("camera").Info("camera ready")
	Sugar.Infof("tiles=%d", 288)
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	for _, want := range []string{"camera ready", "tiles=288", "camera"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("expected %q in log file", want)
		}
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/test.log")

	if cfg.Path != "/tmp/test.log" {
		t.Errorf("expected path /tmp/test.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 {
		t.Errorf("expected MaxSizeMB 50, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 7 {
		t.Errorf("expected MaxAgeDays 7, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
