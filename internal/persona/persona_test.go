package persona

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/muster/internal/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRoster(t *testing.T) {
	t.Run("entries keep declared order", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "roster.yaml", `
agents:
  - id: mission_control
    persona_file: mission_control.yaml
    name: Mission Control
    purpose: Coordinates the crew
  - id: seo
    persona_file: seo.yaml
  - id: designer
    persona_file: designer.yaml
cadence:
  standup_time: "10:30 UTC"
`)

		roster, err := LoadRoster(path)
		require.NoError(t, err)
		require.Len(t, roster.Agents, 3)
		assert.Equal(t, "mission_control", roster.Agents[0].ID)
		assert.Equal(t, "seo", roster.Agents[1].ID)
		assert.Equal(t, "designer", roster.Agents[2].ID)
		assert.Equal(t, "Mission Control", roster.Agents[0].DisplayName())
		assert.Equal(t, "seo", roster.Agents[1].DisplayName())
		assert.Equal(t, "Coordinates the crew", roster.Agents[0].Purpose)
		assert.Equal(t, "10:30 UTC", roster.Cadence.String("standup_time"))
	})

	t.Run("empty roster file has no agents", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "roster.yaml", "")

		roster, err := LoadRoster(path)
		require.NoError(t, err)
		assert.Empty(t, roster.Agents)
		assert.Equal(t, 0, roster.Cadence.Len())
	})

	t.Run("missing roster", func(t *testing.T) {
		_, err := LoadRoster(filepath.Join(t.TempDir(), "roster.yaml"))
		assert.True(t, descriptor.IsMissingFile(err))
	})

	t.Run("roster that is not a mapping", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "roster.yaml", "- id: a\n")

		_, err := LoadRoster(path)
		assert.True(t, descriptor.IsMalformed(err))
	})

	t.Run("entry without persona_file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "roster.yaml", "agents:\n  - id: lonely\n")

		_, err := LoadRoster(path)
		require.Error(t, err)
		assert.True(t, descriptor.IsMalformed(err))
		assert.Contains(t, err.Error(), "lonely")
	})

	t.Run("entry without id", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "roster.yaml", "agents:\n  - persona_file: x.yaml\n")

		_, err := LoadRoster(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "agents[0] is missing id")
	})
}

func TestLoadPersona(t *testing.T) {
	entry := RosterEntry{ID: "seo", PersonaFile: "seo.yaml", Name: "SEO Strategist"}

	t.Run("omitted optional fields become empty containers", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "seo.yaml", "description: Finds search demand\n")

		p, err := LoadPersona(path, entry)
		require.NoError(t, err)
		assert.Equal(t, "seo", p.ID)
		assert.Equal(t, "SEO Strategist", p.Name)
		assert.Equal(t, "Finds search demand", p.Description)

		assert.NotNil(t, p.MissionFocus)
		assert.Empty(t, p.MissionFocus)
		assert.NotNil(t, p.Responsibilities)
		assert.Equal(t, 0, p.Responsibilities.Len())
		assert.NotNil(t, p.CommunicationStyle)
		assert.NotNil(t, p.CollaboratesWith)
		assert.NotNil(t, p.HandOffProtocol)
		assert.NotNil(t, p.MessageTemplates)
		assert.NotNil(t, p.SuccessMetrics)
		assert.NotNil(t, p.EscalationPolicy)
		assert.NotNil(t, p.Tools)
	})

	t.Run("payload values win over roster entry", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "seo.yaml", "id: seo\nname: Search Lead\n")

		p, err := LoadPersona(path, entry)
		require.NoError(t, err)
		assert.Equal(t, "Search Lead", p.Name)
	})

	t.Run("name falls back to id", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "seo.yaml", "description: x\n")

		p, err := LoadPersona(path, RosterEntry{ID: "seo", PersonaFile: "seo.yaml"})
		require.NoError(t, err)
		assert.Equal(t, "seo", p.Name)
	})

	t.Run("structured fields are read", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "seo.yaml", `
mission_focus: [organic growth, keyword research, backlinks]
responsibilities:
  research: [keyword gaps, competitor audit]
communication_style:
  tone: direct
collaborates_with: [designer, mission_control]
message_templates:
  handoff: "Passing {item} to {agent}"
tools:
  - name: search-console
    access: read
  - analytics
`)

		p, err := LoadPersona(path, entry)
		require.NoError(t, err)
		assert.Equal(t, []string{"organic growth", "keyword research", "backlinks"}, p.MissionFocus)
		assert.Equal(t, []string{"keyword gaps", "competitor audit"}, p.ResponsibilitiesFor("research"))
		assert.Equal(t, "direct", p.CommunicationStyle.String("tone"))
		assert.Equal(t, []string{"designer", "mission_control"}, p.CollaboratesWith)
		assert.Equal(t, "Passing {item} to {agent}", p.MessageTemplate("handoff"))
		require.Len(t, p.Tools, 2)
		assert.Equal(t, "search-console", p.Tools[0].String("name"))
		assert.Equal(t, "analytics", p.Tools[1].String("name"))
	})

	t.Run("missing descriptor", func(t *testing.T) {
		_, err := LoadPersona(filepath.Join(t.TempDir(), "seo.yaml"), entry)
		assert.True(t, descriptor.IsMissingFile(err))
	})

	t.Run("empty descriptor", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "seo.yaml", "# to be written\n")

		_, err := LoadPersona(path, entry)
		assert.True(t, descriptor.IsEmpty(err))
	})

	t.Run("id mismatch with roster", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "seo.yaml", "id: designer\n")

		_, err := LoadPersona(path, entry)
		require.Error(t, err)
		assert.True(t, descriptor.IsMalformed(err))
		assert.Contains(t, err.Error(), "does not match roster id")
	})

	t.Run("responsibilities must be a mapping", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "seo.yaml", "responsibilities: [a, b]\n")

		_, err := LoadPersona(path, entry)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "field 'responsibilities' must be a mapping")
	})
}

func TestToMapRoundTrip(t *testing.T) {
	path := writeFile(t, t.TempDir(), "seo.yaml", `
description: Finds search demand
mission_focus: [organic growth]
communication_style:
  tone: direct
  cadence: weekly
tools:
  - name: search-console
`)

	p, err := LoadPersona(path, RosterEntry{ID: "seo", PersonaFile: "seo.yaml", Name: "SEO"})
	require.NoError(t, err)

	projected := p.ToMap()
	assert.Equal(t, []string{
		"id", "name", "description", "mission_focus", "responsibilities",
		"communication_style", "collaborates_with", "hand_off_protocol",
		"message_templates", "success_metrics", "escalation_policy", "tools",
	}, projected.Keys())

	data, err := projected.MarshalJSON()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "seo", got["id"])
	assert.Equal(t, "SEO", got["name"])
	assert.Equal(t, []any{"organic growth"}, got["mission_focus"])
	assert.Equal(t, map[string]any{"tone": "direct", "cadence": "weekly"}, got["communication_style"])
	assert.Equal(t, map[string]any{}, got["responsibilities"])
	assert.Equal(t, []any{}, got["escalation_policy"])
	assert.Equal(t, []any{map[string]any{"name": "search-console"}}, got["tools"])

	// Loading the projection again reproduces the same persona.
	reloadDir := t.TempDir()
	reloadPath := filepath.Join(reloadDir, "seo.json")
	require.NoError(t, os.WriteFile(reloadPath, data, 0644))
	again, err := LoadPersona(reloadPath, RosterEntry{ID: "seo", PersonaFile: "seo.json"})
	require.NoError(t, err)
	assert.Equal(t, p.MissionFocus, again.MissionFocus)
	assert.Equal(t, p.Name, again.Name)
	assert.Equal(t, p.CommunicationStyle.Keys(), again.CommunicationStyle.Keys())
}
