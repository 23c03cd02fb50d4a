// Package execevent is the execution-lifecycle event stream the stream
// runner emits to — a separate JSONL sink from audit/, tracking each
// submitted order from SUBMITTED through FILLED or REJECTED (spec.md
// §4.8). It reuses audit's append-only, flush-per-line writer style
// (audit/writer.go) rather than a shared type, since the two sinks carry
// different record shapes and have no behavior worth sharing beyond that
// pattern.
package execevent

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/policygate/capital/intent"
)

// Kind is an execution event's lifecycle marker.
type Kind string

const (
	Submitted Kind = "ORDER_SUBMITTED"
	Filled    Kind = "ORDER_FILLED"
	Rejected  Kind = "ORDER_REJECTED"
)

// Event is one execution-lifecycle record. OrderType is only meaningful
// on SUBMITTED; Price only on FILLED.
type Event struct {
	Timestamp  string          `json:"ts"`
	Event      Kind            `json:"event"`
	IntentID   string          `json:"intent_id"`
	OrderID    string          `json:"order_id"`
	RunID      string          `json:"run_id,omitempty"`
	PolicyHash string          `json:"policy_hash,omitempty"`
	Symbol     string          `json:"symbol,omitempty"`
	Side       intent.Side     `json:"side,omitempty"`
	Qty        float64         `json:"qty,omitempty"`
	OrderType  intent.OrderType `json:"order_type,omitempty"`
	Price      *float64        `json:"price,omitempty"`
}

// Writer appends Events to a JSONL file, flushed per line.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// NewWriter opens path in append mode, creating parent directories and
// the file if necessary.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create exec log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open exec log: %w", err)
	}
	return &Writer{file: f}, nil
}

// Write appends a single execution event as one JSON line.
func (w *Writer) Write(e Event) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode exec event: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("write exec event: %w", err)
	}
	if _, err := w.file.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write exec event: %w", err)
	}
	return w.file.Sync()
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// ReadAll reads every complete execution event from path in file order,
// skipping a truncated trailing line.
func ReadAll(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open exec log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read exec log: %w", err)
	}
	return events, nil
}
