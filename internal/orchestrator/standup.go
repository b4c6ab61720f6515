package orchestrator

import (
	"fmt"
	"strings"

	"github.com/dyluth/muster/internal/descriptor"
	"github.com/dyluth/muster/internal/timespec"
)

// DefaultStandupTime is used when the roster cadence does not set standup_time.
const DefaultStandupTime = "09:00 Europe/Tallinn"

// fallbackFocus stands in for an agent without mission focus entries.
const fallbackFocus = "core responsibilities"

// StandupBundle is the generated set of prompts for one standup date.
type StandupBundle struct {
	Date                 string
	HostTime             string
	MissionControlPrompt string
	AgentPrompts         []AgentPrompt
}

// AgentPrompt is the standup prompt addressed to one agent.
type AgentPrompt struct {
	AgentID   string
	AgentName string
	Prompt    string
}

// ToMap projects the bundle into its published shape:
// standup_date, host_time, mission_control_prompt, agent_prompts{id: prompt}.
func (b *StandupBundle) ToMap() *descriptor.Map {
	prompts := descriptor.NewMap()
	for _, p := range b.AgentPrompts {
		prompts.Set(p.AgentID, p.Prompt)
	}
	m := descriptor.NewMap()
	m.Set("standup_date", b.Date)
	m.Set("host_time", b.HostTime)
	m.Set("mission_control_prompt", b.MissionControlPrompt)
	m.Set("agent_prompts", prompts)
	return m
}

// MarshalJSON encodes the bundle in its published shape.
func (b *StandupBundle) MarshalJSON() ([]byte, error) {
	return b.ToMap().MarshalJSON()
}

// GenerateStandupPrompt builds the mission control header and one prompt per
// loaded agent. An empty onDate means today in local time.
func (o *Orchestrator) GenerateStandupPrompt(onDate string) (*StandupBundle, error) {
	date, err := timespec.ParseDate(onDate, o.now())
	if err != nil {
		return nil, &InvalidDateError{Value: onDate, Err: err}
	}

	hostTime := o.roster.Cadence.String("standup_time")
	if hostTime == "" {
		hostTime = DefaultStandupTime
	}
	dateText := timespec.FormatDate(date)

	bundle := &StandupBundle{
		Date:                 dateText,
		HostTime:             hostTime,
		MissionControlPrompt: missionControlPrompt(dateText, hostTime),
		AgentPrompts:         make([]AgentPrompt, 0, len(o.order)),
	}

	for _, agent := range o.Agents() {
		bundle.AgentPrompts = append(bundle.AgentPrompts, AgentPrompt{
			AgentID:   agent.ID,
			AgentName: agent.Name,
			Prompt:    agentPrompt(agent.Name, focusSummary(agent.MissionFocus)),
		})
	}

	return bundle, nil
}

func missionControlPrompt(date, hostTime string) string {
	return strings.Join([]string{
		"[Mission Control Standup]",
		fmt.Sprintf("Date: %s (%s)", date, hostTime),
		"Reminder: Share RAG status, key metrics movement, blockers, and next focus.",
	}, "\n")
}

// agentPrompt has five slots: status, highlights, metrics, blockers, next steps.
func agentPrompt(name, focus string) string {
	return strings.Join([]string{
		fmt.Sprintf("[Standup Prompt for %s]", name),
		"- Status (Green/Amber/Red):",
		fmt.Sprintf("- Highlights: What moved within %s?", focus),
		"- Metrics pulse: Any notable changes?",
		"- Blockers or asks for peers?",
		"- Next steps before next check-in?",
	}, "\n")
}

// focusSummary joins the first two mission focus entries.
func focusSummary(focus []string) string {
	if len(focus) == 0 {
		return fallbackFocus
	}
	if len(focus) > 2 {
		focus = focus[:2]
	}
	return strings.Join(focus, ", ")
}
