package orchestrator

import (
	"fmt"
	"strings"

	"github.com/dyluth/muster/internal/backlog"
)

// AgendaSteps are the fixed kickoff steps, in order.
var AgendaSteps = []string{
	"Restate objective and success metrics",
	"Review current context and dependencies",
	"Outline workplan, milestones, and checkpoints",
	"Identify risks, mitigation, and decision gates",
	"Confirm next actions and owners",
}

// AgendaForInitiative builds the kickoff agenda for the first backlog ticket
// whose id equals ticketID. Owner and contributor ids resolve to agent names
// where an agent is loaded and are printed verbatim otherwise.
func (o *Orchestrator) AgendaForInitiative(ticketID string) (string, error) {
	tickets, err := o.BacklogDigest()
	if err != nil {
		return "", err
	}

	ticket, ok := backlog.Find(tickets, ticketID)
	if !ok {
		return "", &TicketNotFoundError{ID: ticketID}
	}

	return o.renderAgenda(ticket), nil
}

func (o *Orchestrator) renderAgenda(ticket *backlog.Ticket) string {
	owner := "n/a"
	if id := ticket.Owner(); id != "" {
		owner = o.displayName(id)
	}

	contributors := "n/a"
	if ids := ticket.Contributors(); len(ids) > 0 {
		names := make([]string, 0, len(ids))
		for _, id := range ids {
			names = append(names, o.displayName(id))
		}
		contributors = strings.Join(names, ", ")
	}

	lines := []string{
		fmt.Sprintf("[Initiative Kickoff] %s", ticket.Title()),
		fmt.Sprintf("Owner: %s", owner),
		fmt.Sprintf("Contributors: %s", contributors),
		"Agenda:",
	}
	for i, step := range AgendaSteps {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
	}
	return strings.Join(lines, "\n")
}
