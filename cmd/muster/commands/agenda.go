package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/dyluth/muster/internal/orchestrator"
	"github.com/dyluth/muster/internal/printer"
	"github.com/dyluth/muster/internal/resolver"
	"github.com/spf13/cobra"
)

var agendaPublish bool

var agendaCmd = &cobra.Command{
	Use:   "agenda TICKET_ID",
	Short: "Print the kickoff agenda for a backlog ticket",
	Long: `Print the kickoff agenda for the backlog ticket whose id is TICKET_ID.
Owner and contributor ids are shown as agent names where the agent is loaded.

Examples:
  muster agenda LAUNCH-2
  muster agenda LAUNCH-2 --publish`,
	Args: cobra.ExactArgs(1),
	RunE: runAgenda,
}

func init() {
	agendaCmd.Flags().BoolVar(&agendaPublish, "publish", false, "Publish the agenda to the Redis bulletin")
	rootCmd.AddCommand(agendaCmd)
}

func runAgenda(cmd *cobra.Command, args []string) error {
	ticketID := args[0]

	p, err := loadProject()
	if err != nil {
		return err
	}

	text, err := p.orch.AgendaForInitiative(ticketID)
	if err != nil {
		if orchestrator.IsTicketNotFound(err) {
			return ticketNotFoundError(p, ticketID)
		}
		return explainLoadError(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)

	if agendaPublish {
		return publishAgenda(cmd.Context(), p, ticketID, text)
	}
	return nil
}

func ticketNotFoundError(p *project, ticketID string) error {
	var ids []string
	if tickets, err := p.orch.BacklogDigest(); err == nil {
		for _, t := range tickets {
			ids = append(ids, t.ID())
		}
	}

	var suggestions []string
	for _, candidate := range resolver.Suggest(ticketID, ids) {
		suggestions = append(suggestions, fmt.Sprintf("Did you mean: muster agenda %s", candidate))
	}
	suggestions = append(suggestions, "List backlog tickets:\n  muster ticket-digest")

	return printer.ErrorWithContext(
		fmt.Sprintf("ticket not found in backlog: %s", ticketID),
		"No backlog ticket carries this id.",
		map[string]string{"Backlog": p.orch.Paths().BacklogDir},
		suggestions,
	)
}

func publishAgenda(ctx context.Context, p *project, ticketID, text string) error {
	client, err := openBulletin(ctx, p.config)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(contextOrBackground(ctx), publishTimeout)
	defer cancel()

	if err := client.PublishAgenda(ctx, ticketID, text); err != nil {
		return printer.Error("failed to publish agenda", err.Error(), nil)
	}
	log.Printf("[INFO] Published agenda for %s to bulletin instance '%s'", ticketID, client.InstanceName())
	return nil
}
