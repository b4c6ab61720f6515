package persona

import (
	"fmt"

	"github.com/dyluth/muster/internal/descriptor"
)

// RosterEntry is one agent line in the roster: identity plus the location of its persona file.
type RosterEntry struct {
	ID          string
	PersonaFile string
	Name        string // Optional display name
	Purpose     string // Optional one-line purpose
}

// DisplayName returns the entry name, falling back to the id.
func (e RosterEntry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// Roster is the top-level descriptor joining agent ids to persona files.
// Cadence is kept opaque; callers read the keys they understand.
type Roster struct {
	Path    string
	Agents  []RosterEntry
	Cadence *descriptor.Map
}

// LoadRoster reads and validates the roster descriptor at path.
func LoadRoster(path string) (*Roster, error) {
	raw, err := descriptor.Load(path)
	if err != nil {
		return nil, err
	}

	roster := &Roster{
		Path:    path,
		Agents:  []RosterEntry{},
		Cadence: raw.Map("cadence"),
	}

	agentsVal, _ := raw.Get("agents")
	if agentsVal == nil {
		return roster, nil
	}
	entries, ok := agentsVal.([]any)
	if !ok {
		return nil, &descriptor.MalformedDescriptorError{Path: path, Reason: "agents must be a sequence"}
	}

	for i, item := range entries {
		entryMap, ok := item.(*descriptor.Map)
		if !ok {
			return nil, &descriptor.MalformedDescriptorError{
				Path:   path,
				Reason: fmt.Sprintf("agents[%d] must be a mapping", i),
			}
		}
		entry := RosterEntry{
			ID:          entryMap.String("id"),
			PersonaFile: entryMap.String("persona_file"),
			Name:        entryMap.String("name"),
			Purpose:     entryMap.String("purpose"),
		}
		if entry.ID == "" {
			return nil, &descriptor.MalformedDescriptorError{
				Path:   path,
				Reason: fmt.Sprintf("agents[%d] is missing id", i),
			}
		}
		if entry.PersonaFile == "" {
			return nil, &descriptor.MalformedDescriptorError{
				Path:   path,
				Reason: fmt.Sprintf("agent '%s' is missing persona_file", entry.ID),
			}
		}
		roster.Agents = append(roster.Agents, entry)
	}

	return roster, nil
}
