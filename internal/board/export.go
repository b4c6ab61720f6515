package board

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/muster/internal/backlog"
	"github.com/dyluth/muster/internal/orchestrator"
)

// UnsortedList collects tickets without a status.
const UnsortedList = "unsorted"

// ChecklistName is the checklist attached to every exported card.
const ChecklistName = "Kickoff agenda"

// Plan is the board layout derived from a backlog digest.
type Plan struct {
	BoardName   string        `json:"board"`
	Description string        `json:"description"`
	Lists       []PlannedList `json:"lists"`
}

// PlannedList is one status column.
type PlannedList struct {
	Name  string        `json:"name"`
	Cards []PlannedCard `json:"cards"`
}

// PlannedCard is one ticket.
type PlannedCard struct {
	TicketID  string   `json:"ticket_id"`
	Name      string   `json:"name"`
	Desc      string   `json:"desc"`
	Checklist []string `json:"checklist"`
}

// BuildPlan groups tickets into one list per status, in order of first
// appearance. Card order within a list follows the digest order.
func BuildPlan(boardName, description string, tickets []*backlog.Ticket) *Plan {
	plan := &Plan{BoardName: boardName, Description: description, Lists: []PlannedList{}}
	index := make(map[string]int)

	for _, t := range tickets {
		status := t.Status()
		if status == "" {
			status = UnsortedList
		}
		i, ok := index[status]
		if !ok {
			i = len(plan.Lists)
			index[status] = i
			plan.Lists = append(plan.Lists, PlannedList{Name: status})
		}
		plan.Lists[i].Cards = append(plan.Lists[i].Cards, PlannedCard{
			TicketID:  t.ID(),
			Name:      cardName(t),
			Desc:      cardDesc(t),
			Checklist: append([]string(nil), orchestrator.AgendaSteps...),
		})
	}
	return plan
}

// CardCount returns the total number of cards across lists.
func (p *Plan) CardCount() int {
	n := 0
	for _, l := range p.Lists {
		n += len(l.Cards)
	}
	return n
}

// Write prints the plan as an indented outline.
func (p *Plan) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Board: %s\n", p.BoardName)
	for _, l := range p.Lists {
		fmt.Fprintf(&b, "  List: %s (%d)\n", l.Name, len(l.Cards))
		for _, c := range l.Cards {
			fmt.Fprintf(&b, "    Card: %s\n", c.Name)
		}
	}
	fmt.Fprintf(&b, "%d lists, %d cards\n", len(p.Lists), p.CardCount())
	_, err := io.WriteString(w, b.String())
	return err
}

func cardName(t *backlog.Ticket) string {
	if t.Title() == "" {
		return t.ID()
	}
	return fmt.Sprintf("%s: %s", t.ID(), t.Title())
}

func cardDesc(t *backlog.Ticket) string {
	lines := []string{
		fmt.Sprintf("Priority: %s", orNA(t.Priority())),
		fmt.Sprintf("Owner: %s", orNA(t.Owner())),
		fmt.Sprintf("Due: %s", orNA(t.Due())),
	}
	if contributors := t.Contributors(); len(contributors) > 0 {
		lines = append(lines, fmt.Sprintf("Contributors: %s", strings.Join(contributors, ", ")))
	}
	lines = append(lines, fmt.Sprintf("Source: %s", orNA(t.Path())))
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

// Result summarises a completed export.
type Result struct {
	BoardID  string `json:"board_id"`
	BoardURL string `json:"url"`
	Lists    int    `json:"lists"`
	Cards    int    `json:"cards"`
}

// Exporter creates a board from a Plan.
type Exporter struct {
	client *Client
	prefs  BoardPrefs

	// Progress, when set, receives one line per created list and card.
	Progress func(format string, args ...any)
}

// NewExporter returns an exporter using client and prefs.
func NewExporter(client *Client, prefs BoardPrefs) *Exporter {
	return &Exporter{client: client, prefs: prefs}
}

// Export creates the board, then each list, card and checklist in plan order.
// The first failure stops the export; what was already created stays.
func (e *Exporter) Export(ctx context.Context, plan *Plan) (*Result, error) {
	board, err := e.client.CreateBoard(ctx, plan.BoardName, plan.Description, e.prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to create board %q: %w", plan.BoardName, err)
	}
	result := &Result{BoardID: board.ID, BoardURL: board.URL}

	for _, pl := range plan.Lists {
		list, err := e.client.CreateList(ctx, board.ID, pl.Name, "bottom")
		if err != nil {
			return result, fmt.Errorf("failed to create list %q: %w", pl.Name, err)
		}
		result.Lists++
		e.progress("List %s\n", pl.Name)

		for _, pc := range pl.Cards {
			if err := e.exportCard(ctx, list.ID, pc); err != nil {
				return result, err
			}
			result.Cards++
			e.progress("  Card %s\n", pc.Name)
		}
	}
	return result, nil
}

func (e *Exporter) exportCard(ctx context.Context, listID string, pc PlannedCard) error {
	card, err := e.client.CreateCard(ctx, listID, pc.Name, pc.Desc, "bottom")
	if err != nil {
		return fmt.Errorf("failed to create card %q: %w", pc.Name, err)
	}
	if len(pc.Checklist) == 0 {
		return nil
	}

	checklist, err := e.client.CreateChecklist(ctx, card.ID, ChecklistName)
	if err != nil {
		return fmt.Errorf("failed to create checklist on %q: %w", pc.Name, err)
	}
	for _, item := range pc.Checklist {
		if err := e.client.AddChecklistItem(ctx, checklist.ID, item); err != nil {
			return fmt.Errorf("failed to add checklist item to %q: %w", pc.Name, err)
		}
	}
	return nil
}

func (e *Exporter) progress(format string, args ...any) {
	if e.Progress != nil {
		e.Progress(format, args...)
	}
}
