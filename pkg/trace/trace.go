// Package trace persists the quality history of a reconstruction run as
// JSON lines and renders it as a plot. One entry is written per iteration.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"tomorecon/pkg/quality"
)

// Entry is one serialized quality record.
type Entry struct {
	// Iteration is the reconstruction iteration number.
	Iteration int `json:"iteration"`

	// Values maps metric names to their value for this iteration. NaN
	// values (first iteration) are serialized as null.
	Values map[string]*float64 `json:"values"`

	// Timestamp records when the entry was written.
	Timestamp time.Time `json:"timestamp"`
}

// FromRecord converts a quality record, mapping NaN to null.
func FromRecord(r quality.Record, now time.Time) Entry {
	values := make(map[string]*float64, len(r.Values))
	for name, v := range r.Values {
		if v != v { // NaN: no delta was available
			values[name] = nil
			continue
		}
		val := v
		values[name] = &val
	}
	return Entry{Iteration: r.Iteration, Values: values, Timestamp: now}
}

// Writer appends entries to a JSONL file through a buffer.
type Writer struct {
	file   *os.File
	writer *bufio.Writer
	path   string
}

// NewWriter creates (or truncates) the trace file at path.
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("trace: create %s: %w", path, err)
	}
	return &Writer{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		path:   path,
	}, nil
}

// Write appends one entry.
func (w *Writer) Write(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("trace: marshal entry: %w", err)
	}
	if _, err := w.writer.Write(data); err != nil {
		return fmt.Errorf("trace: write entry: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("trace: write newline: %w", err)
	}
	return nil
}

// WriteAll converts and appends a whole quality history.
func (w *Writer) WriteAll(records []quality.Record) error {
	now := time.Now()
	for _, r := range records {
		if err := w.Write(FromRecord(r, now)); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the trace file.
func (w *Writer) Close() error {
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("trace: flush on close: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("trace: close: %w", err)
	}
	return nil
}

// Path returns the file path the writer targets.
func (w *Writer) Path() string {
	return w.path
}

// ReadAll loads every entry from a JSONL trace file.
func ReadAll(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("trace: unmarshal line %d: %w", len(entries)+1, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("trace: scan %s: %w", path, err)
	}
	return entries, nil
}
