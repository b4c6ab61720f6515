package bulletin

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Standup is one published standup bundle.
type Standup struct {
	ID            string `json:"id"`              // UUID assigned at publish time
	Date          string `json:"standup_date"`    // ISO date the standup is for
	HostTime      string `json:"host_time"`       // Human-readable meeting time
	PublishedAtMs int64  `json:"published_at_ms"` // Unix milliseconds
	Payload       string `json:"payload"`         // JSON of the standup bundle
}

// EventKind names the record type announced on the events channel.
type EventKind string

const (
	EventKindStandup EventKind = "standup"
	EventKindAgenda  EventKind = "agenda"
)

// Event is the notice published after a record is written.
type Event struct {
	Kind EventKind `json:"kind"`
	ID   string    `json:"id"`
}

// Validate checks a standup is complete enough to store.
func (s *Standup) Validate() error {
	if _, err := uuid.Parse(s.ID); err != nil {
		return fmt.Errorf("invalid standup id %q: %w", s.ID, err)
	}
	if s.Date == "" {
		return fmt.Errorf("standup_date is required")
	}
	if s.Payload == "" {
		return fmt.Errorf("payload is required")
	}
	return nil
}

// StandupToHash converts a standup to its Redis hash fields.
func StandupToHash(s *Standup) map[string]interface{} {
	return map[string]interface{}{
		"id":              s.ID,
		"standup_date":    s.Date,
		"host_time":       s.HostTime,
		"published_at_ms": s.PublishedAtMs,
		"payload":         s.Payload,
	}
}

// HashToStandup converts Redis hash fields back into a standup.
func HashToStandup(hash map[string]string) (*Standup, error) {
	publishedAt, err := strconv.ParseInt(hash["published_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid published_at_ms field: %w", err)
	}

	return &Standup{
		ID:            hash["id"],
		Date:          hash["standup_date"],
		HostTime:      hash["host_time"],
		PublishedAtMs: publishedAt,
		Payload:       hash["payload"],
	}, nil
}
