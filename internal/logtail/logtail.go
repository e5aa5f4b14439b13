package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed zerolog JSON line.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Error   string
	Board   string
	Thread  int
}

// Parse decodes a JSON log line. Lines that are not JSON come back as an
// Entry holding only the raw text as Message.
func Parse(line string) Entry {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return Entry{Message: strings.TrimSpace(line)}
	}

	var e Entry
	for name, val := range fields {
		switch name {
		case zerolog.TimestampFieldName:
			if s, ok := val.(string); ok {
				e.Time, _ = time.Parse(time.RFC3339, s)
			}
		case zerolog.LevelFieldName:
			e.Level, _ = val.(string)
		case zerolog.MessageFieldName:
			e.Message, _ = val.(string)
		case zerolog.ErrorFieldName:
			e.Error, _ = val.(string)
		case "board":
			e.Board, _ = val.(string)
		case "thread":
			if n, ok := val.(float64); ok {
				e.Thread = int(n)
			}
		}
	}
	return e
}

// Format renders an entry on one line, for example
// "21:01:05 WARN /g/42 – thread update failed: timeout".
func Format(e Entry) string {
	var parts []string
	if !e.Time.IsZero() {
		parts = append(parts, e.Time.In(time.Local).Format("15:04:05"))
	}
	if level := strings.ToUpper(strings.TrimSpace(e.Level)); level != "" {
		parts = append(parts, level)
	}
	if subject := composeSubject(e.Board, e.Thread); subject != "" {
		parts = append(parts, subject)
	}
	header := strings.Join(parts, " ")

	message := strings.TrimSpace(e.Message)
	if e.Error != "" {
		if message != "" {
			message += ": "
		}
		message += e.Error
	}
	switch {
	case header == "":
		return message
	case message == "":
		return header
	default:
		return header + " – " + message
	}
}

func composeSubject(board string, thread int) string {
	board = strings.TrimSpace(board)
	switch {
	case board != "" && thread > 0:
		return "/" + board + "/" + strconv.Itoa(thread)
	case board != "":
		return "/" + board + "/"
	default:
		return ""
	}
}

// Last returns the formatted final line of the log at path, or "" when the
// file is missing or empty.
func Last(path string) (string, error) {
	lines, err := Read(path, 1)
	if err != nil || len(lines) == 0 {
		return "", err
	}
	return Format(Parse(lines[0])), nil
}
