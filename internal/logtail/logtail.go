package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-logfmt/logfmt"
)

// Entry is one line of todoview's logfmt log.
type Entry struct {
	Raw     string
	Time    string
	Level   string
	Prefix  string
	Message string
	Fields  []Field
}

// Field is a key/value pair that is not one of the well-known keys.
type Field struct {
	Key   string
	Value string
}

// Tail returns the last maxLines entries of the log at path, oldest first.
// A missing file is not an error.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse decodes a logfmt line. Lines that are not valid logfmt come back
// with Message set to the raw text.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	dec := logfmt.NewDecoder(strings.NewReader(line))
	for dec.ScanRecord() {
		for dec.ScanKeyval() {
			key, value := string(dec.Key()), string(dec.Value())
			switch key {
			case "time", "ts":
				entry.Time = value
			case "level":
				entry.Level = strings.ToLower(value)
			case "prefix":
				entry.Prefix = value
			case "msg":
				entry.Message = value
			default:
				entry.Fields = append(entry.Fields, Field{Key: key, Value: value})
			}
		}
	}
	if dec.Err() != nil || (entry.Message == "" && entry.Level == "") {
		return Entry{Raw: line, Message: line}
	}
	return entry
}

// Read returns at most maxLines from the end of the file at path.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 || strings.TrimSpace(path) == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if count < maxLines {
		return ring[:count:count], nil
	}
	out := make([]string, 0, maxLines)
	out = append(out, ring[next:]...)
	return append(out, ring[:next]...), nil
}
