package commands

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/muster/internal/printer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// result is the captured outcome of one CLI invocation.
type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs the real root command with args and a fixed environment.
func execute(t *testing.T, env map[string]string, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	getenv = func(key string) string { return env[key] }
	printer.SetOutput(&out, &errOut)
	log.SetOutput(&errOut)
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		getenv = os.Getenv
		printer.SetOutput(nil, nil)
		log.SetOutput(os.Stderr)
		color.NoColor = noColor
	})

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.Execute()

	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

// resetFlags restores every flag to its default between invocations.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// sampleProject writes a three-agent project with two backlog tickets.
func sampleProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "agents/roster.yaml", `
agents:
  - id: mission_control
    persona_file: mission_control.yaml
    name: Mission Control
    purpose: Keeps the crew aligned
  - id: seo
    persona_file: seo.yaml
    name: SEO Strategist
  - id: designer
    persona_file: designer.yaml
cadence:
  standup_time: "10:00 UTC"
`)
	writeFile(t, root, "agents/mission_control.yaml", "description: Coordinates\n")
	writeFile(t, root, "agents/seo.yaml", `
name: Search Lead
mission_focus: [organic growth, keyword research]
tools:
  - analytics
`)
	writeFile(t, root, "agents/designer.yaml", "name: Brand Designer\n")
	writeFile(t, root, "backlog/a-brand.yaml", `
id: BRAND-1
title: Brand guidelines
status: in_progress
priority: high
owner: designer
`)
	writeFile(t, root, "backlog/b-launch.yaml", `
id: LAUNCH-2
title: Launch landing page
status: todo
owner: seo
contributors: [designer, ghost_writer]
due: 2025-11-10
`)
	return root
}
