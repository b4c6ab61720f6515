package orchestrator

import (
	"log"
	"path/filepath"
	"time"

	"github.com/dyluth/muster/internal/backlog"
	"github.com/dyluth/muster/internal/config"
	"github.com/dyluth/muster/internal/persona"
)

// Orchestrator owns the loaded roster, agent personas and backlog location.
// It is built once per process and is read-only afterwards.
type Orchestrator struct {
	paths  config.Paths
	roster *persona.Roster
	agents map[string]*persona.AgentPersona
	order  []string // agent ids in first-registration order
	now    func() time.Time
}

// AgentSummary is the roster projection used by list-agents.
type AgentSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

// Option customises an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithClock overrides the clock used to default standup dates.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New loads the roster and every persona it references.
// Any load failure aborts construction; there is no partially loaded orchestrator.
func New(paths config.Paths, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		paths:  paths,
		agents: make(map[string]*persona.AgentPersona),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	roster, err := persona.LoadRoster(paths.RosterPath)
	if err != nil {
		return nil, err
	}
	o.roster = roster

	for _, entry := range roster.Agents {
		agent, err := persona.LoadPersona(o.personaPath(entry), entry)
		if err != nil {
			return nil, err
		}
		o.register(agent)
	}

	return o, nil
}

// register adds agent to the mapping. A repeated id replaces the earlier persona
// but keeps its original position.
func (o *Orchestrator) register(agent *persona.AgentPersona) {
	if _, exists := o.agents[agent.ID]; exists {
		log.Printf("[Orchestrator] Warning: duplicate agent id '%s' in %s; the later persona replaces the earlier one", agent.ID, o.roster.Path)
	} else {
		o.order = append(o.order, agent.ID)
	}
	o.agents[agent.ID] = agent
}

func (o *Orchestrator) personaPath(entry persona.RosterEntry) string {
	if filepath.IsAbs(entry.PersonaFile) {
		return entry.PersonaFile
	}
	return filepath.Join(o.paths.AgentsDir, entry.PersonaFile)
}

// Paths returns the locations this orchestrator was loaded from.
func (o *Orchestrator) Paths() config.Paths {
	return o.paths
}

// Roster returns the loaded roster descriptor.
func (o *Orchestrator) Roster() *persona.Roster {
	return o.roster
}

// ListAgents projects the roster entries in declared order.
func (o *Orchestrator) ListAgents() []AgentSummary {
	out := make([]AgentSummary, 0, len(o.roster.Agents))
	for _, entry := range o.roster.Agents {
		out = append(out, AgentSummary{
			ID:      entry.ID,
			Name:    entry.DisplayName(),
			Purpose: entry.Purpose,
		})
	}
	return out
}

// Agents returns the loaded personas in mapping order.
func (o *Orchestrator) Agents() []*persona.AgentPersona {
	out := make([]*persona.AgentPersona, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.agents[id])
	}
	return out
}

// AgentIDs returns the loaded agent ids in mapping order.
func (o *Orchestrator) AgentIDs() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// GetAgent returns the persona registered under id.
func (o *Orchestrator) GetAgent(id string) (*persona.AgentPersona, error) {
	agent, ok := o.agents[id]
	if !ok {
		return nil, &UnknownAgentError{ID: id}
	}
	return agent, nil
}

// BacklogDigest rescans the backlog directory on every call.
func (o *Orchestrator) BacklogDigest() ([]*backlog.Ticket, error) {
	return backlog.Digest(o.paths.BacklogDir, o.paths.Root)
}

// displayName resolves an agent id to its persona name, or returns the id unchanged.
func (o *Orchestrator) displayName(id string) string {
	if agent, ok := o.agents[id]; ok {
		return agent.Name
	}
	return id
}
