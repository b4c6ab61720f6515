package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dyluth/muster/internal/printer"
	"github.com/dyluth/muster/internal/scaffold"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new muster project",
	Long: `Initialize a new muster project with a starter configuration, a one-agent
roster and a first backlog ticket.

Creates:
  • muster.yml                    - Project configuration file
  • agents/roster.yaml            - Agent roster and standup cadence
  • agents/mission_control.yaml   - Mission control persona
  • backlog/INIT-001.yaml         - First backlog ticket

Use --force to overwrite these files in an existing project. Other files are
left untouched.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite existing scaffold files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	if err := scaffold.Initialize(root, forceInit); err != nil {
		var existing *scaffold.ExistingFilesError
		if errors.As(err, &existing) {
			return printer.ErrorWithContext(
				"project already initialized",
				fmt.Sprintf("Found existing files:\n  - %s", strings.Join(existing.Files, "\n  - ")),
				map[string]string{"Root": root},
				[]string{"Use 'muster init --force' to overwrite the scaffold files"},
			)
		}
		return printer.Error("initialization failed", err.Error(), nil)
	}

	printer.Success("Initialized muster project in %s\n\n", root)
	printer.Info("Created:\n")
	for _, file := range scaffold.Files {
		printer.Info("  ✓ %s\n", file.Path)
	}
	printer.Println("\nNext steps:")
	printer.Println("  1. Add your agents to agents/roster.yaml")
	printer.Println("  2. Run 'muster standup' to generate today's prompts")
	return nil
}
