package slogutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"", 0},
		{"invalid", 0},
		{"100", 100},
		{"100B", 100},
		{"1KB", 1000},
		{"1KiB", 1024},
		{"10MB", 10 * 1000 * 1000},
		{"10MiB", 10 * 1024 * 1024},
		{"1GiB", 1024 * 1024 * 1024},
		{" 2kb ", 2000},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseSize(tt.input); got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRotatingFile_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.log")

	rf, err := OpenRotatingFile(path, 50, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile failed: %v", err)
	}

	line := []byte(strings.Repeat("a", 29) + "\n")
	for i := 0; i < 5; i++ {
		if _, err := rf.Write(line); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s should exist: %v", filepath.Base(p), err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("only two backups should be kept")
	}

	data, _ := os.ReadFile(path)
	if len(data) != len(line) {
		t.Errorf("current file has %d bytes, want %d", len(data), len(line))
	}
}

func TestRotatingFile_NoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.log")

	rf, err := OpenRotatingFile(path, 10, 0)
	if err != nil {
		t.Fatalf("OpenRotatingFile failed: %v", err)
	}
	defer rf.Close()

	_, _ = rf.Write([]byte("12345678\n"))
	_, _ = rf.Write([]byte("abcdefgh\n"))

	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no backup should be created when maxBackups is 0")
	}
}

func TestNewFileLoggerWithRotation(t *testing.T) {
	dir := t.TempDir()

	logger, closer, err := NewFileLoggerWithRotation(filepath.Join(dir, "rotating.log"), slog.LevelInfo, "1MiB", 3)
	if err != nil {
		t.Fatalf("NewFileLoggerWithRotation failed: %v", err)
	}
	if _, ok := closer.(*RotatingFile); !ok {
		t.Errorf("closer = %T, want *RotatingFile", closer)
	}
	logger.Info("hello")
	_ = closer.Close()

	plainPath := filepath.Join(dir, "plain.log")
	logger, closer, err = NewFileLoggerWithRotation(plainPath, slog.LevelInfo, "", 3)
	if err != nil {
		t.Fatalf("NewFileLoggerWithRotation without rotation failed: %v", err)
	}
	logger.Info("hello plain")
	_ = closer.Close()

	data, err := os.ReadFile(plainPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("hello plain")) {
		t.Errorf("plain log missing record: %q", data)
	}
}
