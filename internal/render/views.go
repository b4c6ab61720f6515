package render

import (
	"fmt"
	"io"

	"github.com/dyluth/muster/internal/backlog"
	"github.com/dyluth/muster/internal/orchestrator"
)

// AgentHeaders are the list-agents columns.
var AgentHeaders = []string{"id", "name", "purpose"}

// TicketHeaders are the ticket-digest columns.
var TicketHeaders = []string{"id", "status", "priority", "owner", "due", "path"}

// NoTicketsMessage is printed when a digest has nothing to show.
const NoTicketsMessage = "No backlog tickets found."

// WriteAgents renders the roster summary.
func WriteAgents(w io.Writer, r Renderer, agents []orchestrator.AgentSummary) error {
	rows := make([]Row, 0, len(agents))
	for _, a := range agents {
		rows = append(rows, Row{"id": a.ID, "name": a.Name, "purpose": a.Purpose})
	}
	return r.RenderRows(w, AgentHeaders, rows)
}

// WriteTicketDigest renders one row per ticket.
func WriteTicketDigest(w io.Writer, r Renderer, tickets []*backlog.Ticket) error {
	if len(tickets) == 0 {
		_, err := fmt.Fprintln(w, NoTicketsMessage)
		return err
	}

	rows := make([]Row, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, Row{
			"id":       t.ID(),
			"status":   t.Status(),
			"priority": t.Priority(),
			"owner":    t.Owner(),
			"due":      t.Due(),
			"path":     t.Path(),
		})
	}
	return r.RenderRows(w, TicketHeaders, rows)
}

// WriteStandup prints the mission control header, then each agent prompt under
// a separator naming the agent.
func WriteStandup(w io.Writer, bundle *orchestrator.StandupBundle) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", bundle.MissionControlPrompt); err != nil {
		return fmt.Errorf("failed to write standup: %w", err)
	}
	for _, p := range bundle.AgentPrompts {
		if _, err := fmt.Fprintf(w, "-------- %s --------\n%s\n\n", p.AgentName, p.Prompt); err != nil {
			return fmt.Errorf("failed to write standup: %w", err)
		}
	}
	return nil
}
