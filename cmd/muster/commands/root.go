package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/dyluth/muster/internal/config"
	"github.com/dyluth/muster/internal/descriptor"
	"github.com/dyluth/muster/internal/git"
	"github.com/dyluth/muster/internal/orchestrator"
	"github.com/dyluth/muster/internal/printer"
	"github.com/dyluth/muster/internal/render"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	rootDir     string
	plainOutput bool

	// getenv is replaced in tests.
	getenv = os.Getenv
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "muster",
	Short: "Muster - coordination prompts for a roster of AI agents",
	Long: `Muster reads a project of YAML descriptors (an agent roster, one persona
per agent and a backlog of tickets) and turns them into standup prompts,
backlog digests and initiative kickoff agendas.

The project root is taken from --root, then MUSTER_ROOT, then the enclosing
Git repository, then the current directory.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is specified, show help
		return cmd.Help()
	},
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Project root (default: $MUSTER_ROOT, Git root, or current directory)")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "Force plain pipe-delimited tables")
}

// project is everything a command needs from the resolved project root.
type project struct {
	root   string
	config *config.MusterConfig
	orch   *orchestrator.Orchestrator
}

// resolveRoot applies the root precedence rules and reports failures through the printer.
func resolveRoot() (string, error) {
	// Without a working directory there is no Git root to look for;
	// ResolveRoot reports the cwd failure itself if nothing else applies.
	var gitRoot func() (string, error)
	if wd, err := os.Getwd(); err == nil {
		gitRoot = git.NewChecker().RootFinder(wd)
	}
	root, err := config.ResolveRoot(rootDir, getenv, gitRoot)
	if err != nil {
		return "", printer.Error(
			"project root not found",
			err.Error(),
			[]string{"Pass --root <dir> or set MUSTER_ROOT"},
		)
	}
	return root, nil
}

// loadConfig resolves the root and reads muster.yml plus environment overrides.
func loadConfig() (string, *config.MusterConfig, error) {
	root, err := resolveRoot()
	if err != nil {
		return "", nil, err
	}

	lookup, err := config.WithDotEnv(root, getenv)
	if err != nil {
		return "", nil, printer.Error("failed to read .env", err.Error(), nil)
	}

	cfg, err := config.LoadForRoot(root, lookup)
	if err != nil {
		return "", nil, printer.ErrorWithContext(
			"invalid configuration",
			err.Error(),
			map[string]string{"Config": root + string(os.PathSeparator) + config.FileName},
			[]string{"Fix the file or remove it to use the defaults"},
		)
	}
	return root, cfg, nil
}

// loadProject loads configuration, roster and every persona.
func loadProject() (*project, error) {
	root, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	orch, err := orchestrator.New(cfg.ResolvePaths(root))
	if err != nil {
		return nil, explainLoadError(err)
	}
	return &project{root: root, config: cfg, orch: orch}, nil
}

// explainLoadError turns descriptor failures into printed, user-facing errors.
func explainLoadError(err error) error {
	var missing *descriptor.MissingFileError
	if errors.As(err, &missing) {
		return printer.ErrorWithContext(
			"expected descriptor file missing",
			"A file referenced by the project could not be found.",
			map[string]string{"Path": missing.Path},
			[]string{
				"Run 'muster init' to scaffold a new project",
				"Pass --root to point at an existing project",
			},
		)
	}

	var empty *descriptor.EmptyDescriptorError
	if errors.As(err, &empty) {
		return printer.ErrorWithContext(
			"descriptor is empty",
			"The file exists but contains no data.",
			map[string]string{"Path": empty.Path},
			[]string{"Add at least an id and a name"},
		)
	}

	var malformed *descriptor.MalformedDescriptorError
	if errors.As(err, &malformed) {
		explanation := malformed.Reason
		if malformed.Err != nil {
			explanation += ": " + malformed.Err.Error()
		}
		return printer.ErrorWithContext(
			"malformed descriptor",
			explanation,
			map[string]string{"Path": malformed.Path},
			nil,
		)
	}

	return printer.Error("failed to load project", err.Error(), nil)
}

// rendererFor picks the rich renderer only for interactive terminals.
func rendererFor(cmd *cobra.Command) render.Renderer {
	if plainOutput {
		return render.PlainRenderer{}
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return render.Select(ok && render.DetectRich(f, getenv))
}
