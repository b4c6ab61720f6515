// Package backlog reads backlog ticket descriptors from a directory.
//
// Tickets are schema-free mappings. The conventional fields (id, title, status,
// priority, owner, due, contributors) have typed accessors; everything else is
// reachable through Field. Every digest rescans the directory, so results always
// reflect the files on disk at call time.
package backlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dyluth/muster/internal/descriptor"
)

// PathField is injected into every ticket to record where it was loaded from.
const PathField = "path"

// Ticket is a read-only snapshot of one backlog descriptor.
type Ticket struct {
	fields *descriptor.Map
}

// NewTicket wraps an already-parsed mapping.
func NewTicket(fields *descriptor.Map) *Ticket {
	if fields == nil {
		fields = descriptor.NewMap()
	}
	return &Ticket{fields: fields}
}

func (t *Ticket) ID() string       { return t.fields.String("id") }
func (t *Ticket) Title() string    { return t.fields.String("title") }
func (t *Ticket) Status() string   { return t.fields.String("status") }
func (t *Ticket) Priority() string { return t.fields.String("priority") }
func (t *Ticket) Owner() string    { return t.fields.String("owner") }
func (t *Ticket) Due() string      { return t.fields.String("due") }
func (t *Ticket) Path() string     { return t.fields.String(PathField) }

// Contributors returns the contributor ids; absent yields an empty list.
func (t *Ticket) Contributors() []string {
	return t.fields.Strings("contributors")
}

// Field returns any field rendered as text; absent fields render as "".
func (t *Ticket) Field(name string) string {
	return t.fields.String(name)
}

// Fields exposes the underlying ordered mapping (for JSON output).
func (t *Ticket) Fields() *descriptor.Map {
	return t.fields
}

// MarshalJSON encodes the ticket as its field mapping.
func (t *Ticket) MarshalJSON() ([]byte, error) {
	return t.fields.MarshalJSON()
}

// IsTicketFile reports whether name looks like a ticket descriptor.
func IsTicketFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Digest loads every ticket descriptor in backlogDir, ordered by filename.
// A missing directory yields an empty list. The first unreadable descriptor
// fails the whole digest.
func Digest(backlogDir, repoRoot string) ([]*Ticket, error) {
	entries, err := os.ReadDir(backlogDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*Ticket{}, nil
		}
		return nil, fmt.Errorf("failed to read backlog directory %s: %w", backlogDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsTicketFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	tickets := make([]*Ticket, 0, len(names))
	for _, name := range names {
		path := filepath.Join(backlogDir, name)
		fields, err := descriptor.Load(path)
		if err != nil {
			return nil, err
		}
		fields.Set(PathField, relativeTo(repoRoot, path))
		tickets = append(tickets, NewTicket(fields))
	}

	return tickets, nil
}

// Find returns the first ticket whose id equals id.
func Find(tickets []*Ticket, id string) (*Ticket, bool) {
	for _, t := range tickets {
		if t.ID() == id {
			return t, true
		}
	}
	return nil, false
}

// relativeTo renders path relative to root in slash form, or as-is when outside root.
func relativeTo(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
