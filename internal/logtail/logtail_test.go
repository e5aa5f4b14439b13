package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 5)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Read() = %v, want nil", got)
	}
}

func TestParse(t *testing.T) {
	line := `{"level":"warn","board":"g","thread":42,"error":"dial tcp: timeout","time":"2025-10-08T21:01:05Z","message":"thread update failed, will retry on next poll"}`

	got := Parse(line)
	want := Entry{
		Time:    time.Date(2025, 10, 8, 21, 1, 5, 0, time.UTC),
		Level:   "warn",
		Message: "thread update failed, will retry on next poll",
		Error:   "dial tcp: timeout",
		Board:   "g",
		Thread:  42,
	}
	if !got.Time.Equal(want.Time) {
		t.Fatalf("Time = %v, want %v", got.Time, want.Time)
	}
	got.Time = want.Time
	if got != want {
		t.Fatalf("Parse() = %+v, want %+v", got, want)
	}

	plain := Parse("  not json  ")
	if plain.Message != "not json" || plain.Level != "" {
		t.Fatalf("Parse(plain) = %+v, want message only", plain)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{
			name: "empty",
		},
		{
			name:  "message only",
			entry: Entry{Message: "hello"},
			want:  "hello",
		},
		{
			name:  "level and board",
			entry: Entry{Level: "info", Board: "g", Message: "refreshed"},
			want:  "INFO /g/ – refreshed",
		},
		{
			name:  "thread with error",
			entry: Entry{Level: "warn", Board: "g", Thread: 42, Message: "update failed", Error: "timeout"},
			want:  "WARN /g/42 – update failed: timeout",
		},
		{
			name:  "error without message",
			entry: Entry{Level: "error", Error: "boom"},
			want:  "ERROR – boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.entry); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chanwatch.log")
	if got, err := Last(path); err != nil || got != "" {
		t.Fatalf("Last(missing) = %q, %v, want empty", got, err)
	}

	body := `{"level":"info","message":"first"}` + "\n" + `{"level":"debug","board":"v","message":"second"}` + "\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Last(path)
	if err != nil {
		t.Fatalf("Last() error = %v", err)
	}
	if got != "DEBUG /v/ – second" {
		t.Fatalf("Last() = %q, want %q", got, "DEBUG /v/ – second")
	}
}
