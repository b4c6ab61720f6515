package commands

import (
	"github.com/dyluth/muster/internal/filter"
	"github.com/dyluth/muster/internal/render"
	"github.com/spf13/cobra"
)

var (
	digestStatus   string
	digestOwner    string
	digestPriority string
	digestJSON     bool
)

var ticketDigestCmd = &cobra.Command{
	Use:   "ticket-digest",
	Short: "Summarise the backlog tickets",
	Long: `List every backlog ticket, ordered by file name, with its id, status,
priority, owner, due date and path. The backlog is rescanned on every run.

Filters:
  --status    - glob pattern ("in_*", "todo")
  --priority  - glob pattern ("high")
  --owner     - exact agent id

Examples:
  muster ticket-digest
  muster ticket-digest --status 'in_*' --owner seo
  muster ticket-digest --json | jq '.[] | select(.priority=="high") | .id'`,
	Args: cobra.NoArgs,
	RunE: runTicketDigest,
}

func init() {
	ticketDigestCmd.Flags().StringVar(&digestStatus, "status", "", "Filter by status (glob pattern)")
	ticketDigestCmd.Flags().StringVar(&digestOwner, "owner", "", "Filter by owner (exact match)")
	ticketDigestCmd.Flags().StringVar(&digestPriority, "priority", "", "Filter by priority (glob pattern)")
	ticketDigestCmd.Flags().BoolVar(&digestJSON, "json", false, "Output every ticket field as a JSON array")
	rootCmd.AddCommand(ticketDigestCmd)
}

func runTicketDigest(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	tickets, err := p.orch.BacklogDigest()
	if err != nil {
		return explainLoadError(err)
	}

	criteria := &filter.Criteria{
		StatusGlob:   digestStatus,
		PriorityGlob: digestPriority,
		Owner:        digestOwner,
	}
	tickets = criteria.Apply(tickets)

	if digestJSON {
		return render.WriteJSON(cmd.OutOrStdout(), tickets)
	}
	return render.WriteTicketDigest(cmd.OutOrStdout(), rendererFor(cmd), tickets)
}
