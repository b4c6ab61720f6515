package commands

import (
	"fmt"

	"github.com/dyluth/muster/internal/orchestrator"
	"github.com/dyluth/muster/internal/printer"
	"github.com/dyluth/muster/internal/render"
	"github.com/dyluth/muster/internal/resolver"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showAgentOutput string

var showAgentCmd = &cobra.Command{
	Use:   "show-agent AGENT_ID",
	Short: "Show the full persona of one agent",
	Long: `Show the loaded persona for AGENT_ID with every field, including the
empty defaults filled in for fields the persona file leaves out.

Examples:
  muster show-agent mission_control
  muster show-agent seo --output yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runShowAgent,
}

func init() {
	showAgentCmd.Flags().StringVarP(&showAgentOutput, "output", "o", "json", "Output format: json or yaml")
	rootCmd.AddCommand(showAgentCmd)
}

func runShowAgent(cmd *cobra.Command, args []string) error {
	if showAgentOutput != "json" && showAgentOutput != "yaml" {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", showAgentOutput),
			[]string{"Valid formats: json, yaml"},
		)
	}

	p, err := loadProject()
	if err != nil {
		return err
	}

	agent, err := p.orch.GetAgent(args[0])
	if err != nil {
		if orchestrator.IsUnknownAgent(err) {
			return unknownAgentError(p, args[0])
		}
		return err
	}

	if showAgentOutput == "yaml" {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(agent.ToMap()); err != nil {
			return fmt.Errorf("failed to write YAML output: %w", err)
		}
		return enc.Close()
	}
	return render.WriteJSON(cmd.OutOrStdout(), agent.ToMap())
}

func unknownAgentError(p *project, id string) error {
	var suggestions []string
	for _, candidate := range resolver.Suggest(id, p.orch.AgentIDs()) {
		suggestions = append(suggestions, fmt.Sprintf("Did you mean: muster show-agent %s", candidate))
	}
	suggestions = append(suggestions, "List loaded agents:\n  muster list-agents")

	return printer.ErrorWithContext(
		fmt.Sprintf("unknown agent id: %s", id),
		"No agent with this id is loaded from the roster.",
		map[string]string{"Roster": p.orch.Roster().Path},
		suggestions,
	)
}
