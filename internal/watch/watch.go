// Package watch follows the bulletin: it waits for agendas to appear and
// streams publish events as they happen.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/muster/internal/printer"
	"github.com/dyluth/muster/pkg/bulletin"
)

// OutputFormat selects how streamed events are written.
type OutputFormat string

const (
	// OutputFormatDefault is one human-readable line per event.
	OutputFormatDefault OutputFormat = "default"
	// OutputFormatJSON is line-delimited JSON.
	OutputFormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatDefault, OutputFormatJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: default, json)", s)
	}
}

// pollInterval is how often PollForAgenda checks the bulletin.
const pollInterval = 200 * time.Millisecond

// PollForAgenda polls until an agenda for ticketID is published.
// Returns the agenda text or an error if timeout occurs.
func PollForAgenda(ctx context.Context, client *bulletin.Client, ticketID string, timeout time.Duration) (string, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		text, err := client.GetAgenda(ctx, ticketID)
		if err == nil {
			return text, nil
		}
		if !bulletin.IsNotFound(err) {
			return "", fmt.Errorf("failed to query agenda: %w", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timeoutCh:
			return "", fmt.Errorf("timeout waiting for agenda %s after %v", ticketID, timeout)
		case <-ticker.C:
		}
	}
}

// record is the JSON line written for each event.
type record struct {
	Kind     bulletin.EventKind `json:"kind"`
	ID       string             `json:"id"`
	Date     string             `json:"standup_date,omitempty"`
	HostTime string             `json:"host_time,omitempty"`
	SeenAt   string             `json:"seen_at"`
}

// StreamEvents writes every event delivered on sub until ctx is cancelled or
// the subscription ends. Subscription errors are printed as warnings. Standup events are enriched with the stored date and
// host time; a standup that can no longer be read is still reported.
func StreamEvents(ctx context.Context, client *bulletin.Client, sub *bulletin.Subscription, format OutputFormat, w io.Writer, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			printer.Warning("%v\n", err)

		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}

			rec := record{Kind: event.Kind, ID: event.ID, SeenAt: now().UTC().Format(time.RFC3339)}
			if event.Kind == bulletin.EventKindStandup {
				if s, err := client.GetStandup(ctx, event.ID); err == nil {
					rec.Date = s.Date
					rec.HostTime = s.HostTime
				}
			}

			if err := writeRecord(w, format, rec); err != nil {
				return err
			}
		}
	}
}

func writeRecord(w io.Writer, format OutputFormat, rec record) error {
	if format == OutputFormatJSON {
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", line)
		return err
	}

	var err error
	switch rec.Kind {
	case bulletin.EventKindStandup:
		date := rec.Date
		if date == "" {
			date = "unknown date"
		}
		_, err = fmt.Fprintf(w, "[%s] 📋 Standup %s published for %s\n", rec.SeenAt, rec.ID, date)
	case bulletin.EventKindAgenda:
		_, err = fmt.Fprintf(w, "[%s] 🚀 Agenda published for %s\n", rec.SeenAt, rec.ID)
	default:
		_, err = fmt.Fprintf(w, "[%s] %s %s\n", rec.SeenAt, rec.Kind, rec.ID)
	}
	return err
}
