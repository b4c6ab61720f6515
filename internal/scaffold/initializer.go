package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/muster/internal/config"
	"github.com/dyluth/muster/internal/orchestrator"
)

//go:embed templates/*
var templatesFS embed.FS

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string // relative to the project root, slash separated
	Template    string
	Permissions os.FileMode
}

// Files lists everything Initialize writes, in creation order.
var Files = []FileInfo{
	{Path: config.FileName, Template: "templates/muster.yml.tmpl", Permissions: 0644},
	{Path: "agents/roster.yaml", Template: "templates/roster.yaml.tmpl", Permissions: 0644},
	{Path: "agents/mission_control.yaml", Template: "templates/mission_control.yaml.tmpl", Permissions: 0644},
	{Path: "backlog/INIT-001.yaml", Template: "templates/INIT-001.yaml.tmpl", Permissions: 0644},
}

// Initialize writes a starter project into root and checks that it loads.
// Without force it refuses to touch a project that already has any of Files.
// With force the scaffold files are overwritten; other files are left alone.
func Initialize(root string, force bool) error {
	if !force {
		if err := CheckExisting(root); err != nil {
			return err
		}
	}

	for _, file := range Files {
		content, err := templatesFS.ReadFile(file.Template)
		if err != nil {
			return fmt.Errorf("failed to read %s template: %w", file.Path, err)
		}

		target := filepath.Join(root, filepath.FromSlash(file.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return validateCreatedFiles(root)
}

// validateCreatedFiles loads the new project the same way every command does.
func validateCreatedFiles(root string) error {
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return fmt.Errorf("created %s is invalid: %w", config.FileName, err)
	}
	if _, err := orchestrator.New(cfg.ResolvePaths(root)); err != nil {
		return fmt.Errorf("created project does not load: %w", err)
	}
	return nil
}

// CheckExisting returns an error naming every scaffold file already present in root.
func CheckExisting(root string) error {
	var existing []string
	for _, file := range Files {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(file.Path))); err == nil {
			existing = append(existing, file.Path)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return &ExistingFilesError{Files: existing}
}

// ExistingFilesError reports scaffold files that would be overwritten.
type ExistingFilesError struct {
	Files []string
}

func (e *ExistingFilesError) Error() string {
	if len(e.Files) == 1 {
		return fmt.Sprintf("project already initialized: found existing %s", e.Files[0])
	}
	return fmt.Sprintf("project already initialized: found %d existing files", len(e.Files))
}
