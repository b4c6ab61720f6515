package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dyluth/muster/internal/config"
	"github.com/dyluth/muster/internal/printer"
	"github.com/dyluth/muster/internal/render"
	"github.com/dyluth/muster/internal/watch"
	"github.com/dyluth/muster/pkg/bulletin"
	"github.com/spf13/cobra"
)

// publishTimeout bounds each bulletin round trip.
const publishTimeout = 10 * time.Second

var (
	bulletinLimit  int
	bulletinJSON   bool
	bulletinAgenda string
	bulletinWait   time.Duration
	bulletinWatch  bool
	bulletinOutput string
)

var bulletinCmd = &cobra.Command{
	Use:   "bulletin",
	Short: "Show what has been published to the Redis bulletin",
	Long: `List standups published with 'muster standup --publish', newest first,
or print the latest agenda published for a ticket.

The bulletin location comes from muster.yml (bulletin.redis_url and
bulletin.instance) and can be overridden with MUSTER_REDIS_URL.

Examples:
  muster bulletin
  muster bulletin --limit 3 --json
  muster bulletin --agenda LAUNCH-2
  muster bulletin --agenda LAUNCH-2 --wait 30s
  muster bulletin --watch --output json > events.jsonl`,
	Args: cobra.NoArgs,
	RunE: runBulletin,
}

func init() {
	bulletinCmd.Flags().IntVar(&bulletinLimit, "limit", 10, "Maximum standups to list (0 for all)")
	bulletinCmd.Flags().BoolVar(&bulletinJSON, "json", false, "Output standups as JSON")
	bulletinCmd.Flags().StringVar(&bulletinAgenda, "agenda", "", "Print the latest agenda published for this ticket id")
	bulletinCmd.Flags().DurationVar(&bulletinWait, "wait", 0, "With --agenda, wait up to this long for the agenda to be published")
	bulletinCmd.Flags().BoolVar(&bulletinWatch, "watch", false, "Stream publish events until interrupted")
	bulletinCmd.Flags().StringVarP(&bulletinOutput, "output", "o", "default", "Watch output format (default or json)")
	rootCmd.AddCommand(bulletinCmd)
}

func runBulletin(cmd *cobra.Command, args []string) error {
	format, err := watch.ParseOutputFormat(bulletinOutput)
	if err != nil {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", bulletinOutput),
			[]string{"Valid formats: default, json"},
		)
	}

	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := openBulletin(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if bulletinWatch {
		return watchBulletin(cmd, client, format)
	}

	ctx, cancel := context.WithTimeout(contextOrBackground(cmd.Context()), publishTimeout+bulletinWait)
	defer cancel()

	if bulletinAgenda != "" {
		var text string
		if bulletinWait > 0 {
			text, err = watch.PollForAgenda(ctx, client, bulletinAgenda, bulletinWait)
			if err != nil {
				return printer.Error(
					fmt.Sprintf("no agenda published for %s", bulletinAgenda),
					err.Error(),
					nil,
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}

		text, err = client.GetAgenda(ctx, bulletinAgenda)
		if err != nil {
			if bulletin.IsNotFound(err) {
				return printer.Error(
					fmt.Sprintf("no agenda published for %s", bulletinAgenda),
					fmt.Sprintf("Bulletin instance '%s' has no agenda for this ticket.", client.InstanceName()),
					[]string{fmt.Sprintf("Publish one:\n  muster agenda %s --publish", bulletinAgenda)},
				)
			}
			return printer.Error("failed to read agenda", err.Error(), nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}

	standups, err := client.ListStandups(ctx, bulletinLimit)
	if err != nil {
		return printer.Error("failed to list standups", err.Error(), nil)
	}

	if bulletinJSON {
		return render.WriteJSON(cmd.OutOrStdout(), standups)
	}
	if len(standups) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No standups published to instance '%s'\n", client.InstanceName())
		return nil
	}

	rows := make([]render.Row, 0, len(standups))
	for _, s := range standups {
		rows = append(rows, render.Row{
			"id":        s.ID,
			"date":      s.Date,
			"host_time": s.HostTime,
			"published": formatPublished(s.PublishedAtMs),
		})
	}
	return rendererFor(cmd).RenderRows(cmd.OutOrStdout(), []string{"id", "date", "host_time", "published"}, rows)
}

// watchBulletin streams events until the context ends or the user interrupts.
func watchBulletin(cmd *cobra.Command, client *bulletin.Client, format watch.OutputFormat) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
	defer stop()

	sub, err := client.SubscribeEvents(ctx)
	if err != nil {
		return printer.Error("failed to watch bulletin", err.Error(), nil)
	}
	defer sub.Close()

	if format == watch.OutputFormatDefault {
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching bulletin instance '%s' (Ctrl+C to stop)\n", client.InstanceName())
	}
	return watch.StreamEvents(ctx, client, sub, format, cmd.OutOrStdout(), nil)
}

// openBulletin connects to the configured Redis and checks it answers.
func openBulletin(ctx context.Context, cfg *config.MusterConfig) (*bulletin.Client, error) {
	client, err := bulletin.NewClientFromURL(cfg.Bulletin.RedisURL, cfg.Bulletin.Instance)
	if err != nil {
		return nil, printer.Error("invalid bulletin configuration", err.Error(), nil)
	}

	ctx, cancel := context.WithTimeout(contextOrBackground(ctx), publishTimeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, printer.ErrorWithContext(
			"bulletin unavailable",
			fmt.Sprintf("Could not reach Redis: %v", err),
			map[string]string{
				"Redis":    cfg.Bulletin.RedisURL,
				"Instance": cfg.Bulletin.Instance,
			},
			[]string{
				"Start Redis locally:\n  docker run -p 6379:6379 redis:7-alpine",
				"Point at another server with MUSTER_REDIS_URL or bulletin.redis_url in muster.yml",
			},
		)
	}
	return client, nil
}

func formatPublished(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

