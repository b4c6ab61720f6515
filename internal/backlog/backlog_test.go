package backlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/muster/internal/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTicket(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestDigest(t *testing.T) {
	t.Run("absent directory is empty, not an error", func(t *testing.T) {
		root := t.TempDir()

		tickets, err := Digest(filepath.Join(root, "backlog"), root)
		require.NoError(t, err)
		assert.NotNil(t, tickets)
		assert.Empty(t, tickets)
	})

	t.Run("empty directory", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "backlog")
		require.NoError(t, os.MkdirAll(dir, 0755))

		tickets, err := Digest(dir, root)
		require.NoError(t, err)
		assert.Empty(t, tickets)
	})

	t.Run("lexicographic filename order", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "backlog")
		writeTicket(t, dir, "b.yaml", "id: B-1\n")
		writeTicket(t, dir, "a.yaml", "id: A-1\n")
		writeTicket(t, dir, "c.yml", "id: C-1\n")
		writeTicket(t, dir, "notes.md", "not a ticket")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "archive.yaml"), 0755))

		tickets, err := Digest(dir, root)
		require.NoError(t, err)
		require.Len(t, tickets, 3)
		assert.Equal(t, "A-1", tickets[0].ID())
		assert.Equal(t, "B-1", tickets[1].ID())
		assert.Equal(t, "C-1", tickets[2].ID())
	})

	t.Run("path is injected relative to root", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "backlog")
		writeTicket(t, dir, "launch.yaml", "id: LAUNCH-1\npath: stale/value.yaml\n")

		tickets, err := Digest(dir, root)
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, "backlog/launch.yaml", tickets[0].Path())
	})

	t.Run("path outside root stays absolute", func(t *testing.T) {
		root := t.TempDir()
		dir := t.TempDir()
		writeTicket(t, dir, "x.yaml", "id: X\n")

		tickets, err := Digest(dir, root)
		require.NoError(t, err)
		assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "x.yaml")), tickets[0].Path())
	})

	t.Run("malformed ticket fails the digest", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "backlog")
		writeTicket(t, dir, "a.yaml", "id: A\n")
		writeTicket(t, dir, "b.yaml", "- not\n- a mapping\n")

		_, err := Digest(dir, root)
		require.Error(t, err)
		assert.True(t, descriptor.IsMalformed(err))
		assert.Contains(t, err.Error(), "b.yaml")
	})
}

func TestTicketAccessors(t *testing.T) {
	fields, err := descriptor.Parse("t.yaml", []byte(`
id: OPS-7
title: Launch checklist
status: in_progress
priority: 1
owner: mission_control
due: 2025-11-15
contributors: [seo, designer]
`))
	require.NoError(t, err)
	ticket := NewTicket(fields)

	assert.Equal(t, "OPS-7", ticket.ID())
	assert.Equal(t, "Launch checklist", ticket.Title())
	assert.Equal(t, "in_progress", ticket.Status())
	assert.Equal(t, "1", ticket.Priority())
	assert.Equal(t, "mission_control", ticket.Owner())
	assert.Equal(t, "2025-11-15", ticket.Due())
	assert.Equal(t, []string{"seo", "designer"}, ticket.Contributors())
	assert.Equal(t, "", ticket.Field("estimate"))

	data, err := json.Marshal(ticket)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"OPS-7"`)
}

func TestFind(t *testing.T) {
	first := descriptor.NewMap()
	first.Set("id", "DUP")
	first.Set("title", "first")
	second := descriptor.NewMap()
	second.Set("id", "DUP")
	second.Set("title", "second")
	tickets := []*Ticket{NewTicket(first), NewTicket(second)}

	found, ok := Find(tickets, "DUP")
	require.True(t, ok)
	assert.Equal(t, "first", found.Title())

	_, ok = Find(tickets, "NOPE")
	assert.False(t, ok)
}
