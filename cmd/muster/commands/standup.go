package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/dyluth/muster/internal/orchestrator"
	"github.com/dyluth/muster/internal/printer"
	"github.com/dyluth/muster/internal/render"
	"github.com/spf13/cobra"
)

var (
	standupDate    string
	standupJSON    bool
	standupPublish bool
)

var standupCmd = &cobra.Command{
	Use:   "standup",
	Short: "Generate the standup prompts for every agent",
	Long: `Generate the mission control header and one standup prompt per loaded
agent. The meeting time comes from the roster's cadence.standup_time.

Examples:
  muster standup
  muster standup --date 2025-11-01 --json
  muster standup --publish   # also post the bundle to the bulletin`,
	Args: cobra.NoArgs,
	RunE: runStandup,
}

func init() {
	standupCmd.Flags().StringVar(&standupDate, "date", "", "Standup date as YYYY-MM-DD (default: today)")
	standupCmd.Flags().BoolVar(&standupJSON, "json", false, "Output the bundle as JSON")
	standupCmd.Flags().BoolVar(&standupPublish, "publish", false, "Publish the bundle to the Redis bulletin")
	rootCmd.AddCommand(standupCmd)
}

func runStandup(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	bundle, err := p.orch.GenerateStandupPrompt(standupDate)
	if err != nil {
		if orchestrator.IsInvalidDate(err) {
			return printer.Error(
				"invalid date",
				err.Error(),
				[]string{"Use ISO format, e.g. --date 2025-11-01"},
			)
		}
		return err
	}

	if standupJSON {
		err = render.WriteJSON(cmd.OutOrStdout(), bundle)
	} else {
		err = render.WriteStandup(cmd.OutOrStdout(), bundle)
	}
	if err != nil {
		return err
	}

	if standupPublish {
		return publishStandup(cmd.Context(), p, bundle)
	}
	return nil
}

func publishStandup(ctx context.Context, p *project, bundle *orchestrator.StandupBundle) error {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to encode standup: %w", err)
	}

	client, err := openBulletin(ctx, p.config)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(contextOrBackground(ctx), publishTimeout)
	defer cancel()

	published, err := client.PublishStandup(ctx, bundle.Date, bundle.HostTime, string(payload))
	if err != nil {
		return printer.Error("failed to publish standup", err.Error(), nil)
	}
	log.Printf("[INFO] Published standup %s for %s to bulletin instance '%s'", published.ID, published.Date, client.InstanceName())
	return nil
}
