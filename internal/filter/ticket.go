package filter

import (
	"path/filepath"

	"github.com/dyluth/muster/internal/backlog"
)

// Criteria defines filtering criteria for backlog tickets.
// All filters are ANDed together - a ticket must match ALL criteria to pass.
type Criteria struct {
	StatusGlob   string // Glob pattern for status, empty = no filter
	PriorityGlob string // Glob pattern for priority, empty = no filter
	Owner        string // Exact match for owner, empty = no filter
}

// Matches returns true if the ticket matches all filter criteria.
// Empty criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(t *backlog.Ticket) bool {
	if c.StatusGlob != "" && !globMatch(c.StatusGlob, t.Status()) {
		return false
	}
	if c.PriorityGlob != "" && !globMatch(c.PriorityGlob, t.Priority()) {
		return false
	}
	if c.Owner != "" && t.Owner() != c.Owner {
		return false
	}
	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.StatusGlob != "" || c.PriorityGlob != "" || c.Owner != ""
}

// Apply returns the tickets matching c, preserving order.
func (c *Criteria) Apply(tickets []*backlog.Ticket) []*backlog.Ticket {
	if c == nil || !c.HasFilters() {
		return tickets
	}
	out := make([]*backlog.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if c.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// globMatch reports a match; malformed patterns match nothing.
func globMatch(pattern, value string) bool {
	matched, err := filepath.Match(pattern, value)
	return err == nil && matched
}
