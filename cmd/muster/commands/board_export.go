package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dyluth/muster/internal/board"
	"github.com/dyluth/muster/internal/config"
	"github.com/dyluth/muster/internal/filter"
	"github.com/dyluth/muster/internal/printer"
	"github.com/dyluth/muster/internal/render"
	"github.com/spf13/cobra"
)

var (
	boardName     string
	boardDryRun   bool
	boardJSON     bool
	boardStatus   string
	boardSaveFile string
)

var boardExportCmd = &cobra.Command{
	Use:   "board-export",
	Short: "Export the backlog to a Trello board",
	Long: `Create a new board with one list per ticket status (in order of first
appearance; tickets without a status go to "unsorted") and one card per
ticket. Every card gets a "Kickoff agenda" checklist.

Credentials are read from TRELLO_API_KEY and TRELLO_TOKEN, from the
environment or from a .env file at the project root.

Examples:
  muster board-export --dry-run
  muster board-export --name "Q4 growth" --status 'todo'
  muster board-export --save board.json`,
	Args: cobra.NoArgs,
	RunE: runBoardExport,
}

func init() {
	boardExportCmd.Flags().StringVar(&boardName, "name", "", "Board name (default: '<project> backlog')")
	boardExportCmd.Flags().BoolVar(&boardDryRun, "dry-run", false, "Print the planned board without contacting the service")
	boardExportCmd.Flags().BoolVar(&boardJSON, "json", false, "Print the plan (dry run) or result as JSON")
	boardExportCmd.Flags().StringVar(&boardStatus, "status", "", "Only export tickets whose status matches (glob pattern)")
	boardExportCmd.Flags().StringVar(&boardSaveFile, "save", "", "Write the export result as JSON to this file")
	rootCmd.AddCommand(boardExportCmd)
}

func runBoardExport(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	tickets, err := p.orch.BacklogDigest()
	if err != nil {
		return explainLoadError(err)
	}
	tickets = (&filter.Criteria{StatusGlob: boardStatus}).Apply(tickets)

	name := boardName
	if name == "" {
		name = filepath.Base(p.root) + " backlog"
	}
	plan := board.BuildPlan(name, fmt.Sprintf("Exported from %s by muster", p.root), tickets)

	out := cmd.OutOrStdout()
	if boardDryRun {
		if boardJSON {
			return render.WriteJSON(out, plan)
		}
		return plan.Write(out)
	}

	// Step output would corrupt a JSON result on stdout.
	progress := printer.Step
	if boardJSON {
		progress = nil
	}
	result, err := exportBoard(cmd.Context(), p.config.Board, plan, progress)
	if err != nil {
		return err
	}

	if boardSaveFile != "" {
		if err := saveResult(boardSaveFile, result); err != nil {
			return err
		}
	}

	if boardJSON {
		return render.WriteJSON(out, result)
	}
	printer.Success("Board created: %s\n", result.BoardURL)
	printer.Info("  Lists: %d\n  Cards: %d\n", result.Lists, result.Cards)
	return nil
}

func exportBoard(ctx context.Context, cfg *config.BoardConfig, plan *board.Plan, progress func(string, ...any)) (*board.Result, error) {
	client, err := board.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Token, nil)
	if err != nil {
		return nil, printer.Error(
			"board credentials missing",
			err.Error(),
			[]string{
				fmt.Sprintf("Export %s and %s", config.EnvBoardKey, config.EnvBoardToken),
				fmt.Sprintf("Add them to %s at the project root", config.DotEnvFile),
				"Preview the board without credentials:\n  muster board-export --dry-run",
			},
		)
	}

	exporter := board.NewExporter(client, board.BoardPrefs{
		Background:      cfg.Background,
		PermissionLevel: cfg.PermissionLevel,
	})
	exporter.Progress = progress

	result, err := exporter.Export(contextOrBackground(ctx), plan)
	if err != nil {
		details := map[string]string{"Service": cfg.BaseURL}
		if result != nil && result.BoardURL != "" {
			details["Partial board"] = result.BoardURL
		}
		var statusErr *board.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			return nil, printer.ErrorWithContext(
				"board service rejected the credentials",
				err.Error(),
				details,
				[]string{fmt.Sprintf("Check %s and %s", config.EnvBoardKey, config.EnvBoardToken)},
			)
		}
		return nil, printer.ErrorWithContext("board export failed", err.Error(), details, nil)
	}
	return result, nil
}

func saveResult(path string, result *board.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := render.WriteJSON(f, result); err != nil {
		return err
	}
	return f.Close()
}
