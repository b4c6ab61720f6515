package commands

import (
	"github.com/dyluth/muster/internal/render"
	"github.com/spf13/cobra"
)

var listAgentsJSON bool

var listAgentsCmd = &cobra.Command{
	Use:   "list-agents",
	Short: "List the agents declared in the roster",
	Long: `List every roster entry in declared order with its id, display name and
purpose. Entries without a name show their id.

Examples:
  muster list-agents
  muster list-agents --json | jq '.[].id'`,
	Args: cobra.NoArgs,
	RunE: runListAgents,
}

func init() {
	listAgentsCmd.Flags().BoolVar(&listAgentsJSON, "json", false, "Output as a JSON array")
	rootCmd.AddCommand(listAgentsCmd)
}

func runListAgents(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	agents := p.orch.ListAgents()
	if listAgentsJSON {
		return render.WriteJSON(cmd.OutOrStdout(), agents)
	}
	return render.WriteAgents(cmd.OutOrStdout(), rendererFor(cmd), agents)
}
