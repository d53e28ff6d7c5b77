package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by Load when no record exists for the id.
	ErrNotFound = errors.New("state not found")

	// ErrInvalidID is returned for request ids that cannot be used as keys.
	ErrInvalidID = errors.New("invalid request id")
)

// Status describes how far a run got.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is a persisted snapshot of a research run.
type Record struct {
	RequestID string          `json:"request_id"`
	Timestamp time.Time       `json:"timestamp"`
	Status    Status          `json:"status"`
	State     json.RawMessage `json:"state"`
}

// Store persists records keyed by request id. Saves overwrite; the last
// write wins.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Load(ctx context.Context, requestID string) (*Record, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, requestID string) error
}

// NewRecord marshals state into a record stamped with the current UTC time.
func NewRecord(requestID string, status Status, state any) (*Record, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return &Record{
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Status:    status,
		State:     data,
	}, nil
}

// Decode unmarshals the record's state into v.
func (r *Record) Decode(v any) error {
	if len(r.State) == 0 {
		return errors.New("record has no state")
	}
	return json.Unmarshal(r.State, v)
}

// ValidateID rejects ids that are empty or could escape a key namespace.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Validate checks a record before it is written.
func (r *Record) Validate() error {
	if r == nil {
		return errors.New("record is nil")
	}
	if err := ValidateID(r.RequestID); err != nil {
		return err
	}
	if len(r.State) > 0 && !json.Valid(r.State) {
		return errors.New("record state is not valid JSON")
	}
	return nil
}

// Marshal encodes a record the way every blob-style backend stores it.
func Marshal(r *Record) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a record written by Marshal.
func Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &r, nil
}
