package scaffold

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dyluth/errand/internal/config"
	"github.com/dyluth/errand/internal/scenario"
)

//go:embed templates/*
var templatesFS embed.FS

// ConfigFile and ScriptsDir are created relative to the project directory
const (
	ConfigFile = "errand.yml"
	ScriptsDir = "scripts"
)

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize creates errand.yml and an example script in dir.
// If force is true, existing files are replaced; otherwise CheckExisting must pass.
func Initialize(dir string, force bool, w io.Writer) error {
	if force {
		if err := handleForce(dir, w); err != nil {
			return err
		}
	} else if err := CheckExisting(dir); err != nil {
		return err
	}

	files, err := getTemplateFiles()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(dir, ScriptsDir), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ScriptsDir, err)
	}

	for _, file := range files {
		path := filepath.Join(dir, file.Path)
		if err := os.WriteFile(path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return validateCreatedFiles(dir)
}

// handleForce removes existing files if --force was specified
func handleForce(dir string, w io.Writer) error {
	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "⚠️  Removing existing %s...\n", ConfigFile)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", ConfigFile, err)
		}
	}
	return nil
}

// getTemplateFiles reads all template files
func getTemplateFiles() ([]FileInfo, error) {
	cfg, err := templatesFS.ReadFile("templates/errand.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read errand.yml template: %w", err)
	}

	script, err := templatesFS.ReadFile("templates/delete-twice.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read script template: %w", err)
	}

	return []FileInfo{
		{Path: ConfigFile, Content: cfg, Permissions: 0644},
		{Path: filepath.Join(ScriptsDir, "delete-twice.yml"), Content: script, Permissions: 0644},
	}, nil
}

// validateCreatedFiles loads the written files the same way the CLI will
func validateCreatedFiles(dir string) error {
	if _, err := config.Load(filepath.Join(dir, ConfigFile)); err != nil {
		return fmt.Errorf("created %s is invalid: %w", ConfigFile, err)
	}
	if _, err := scenario.Load(filepath.Join(dir, ScriptsDir, "delete-twice.yml")); err != nil {
		return fmt.Errorf("created example script is invalid: %w", err)
	}
	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess(w io.Writer) {
	fmt.Fprintln(w, "\n✅ Successfully initialized errand project!")
	fmt.Fprintln(w, "\nCreated:")
	fmt.Fprintf(w, "  ✓ %s\n", ConfigFile)
	fmt.Fprintf(w, "  ✓ %s/delete-twice.yml\n", ScriptsDir)
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "  1. Edit the seed entities in errand.yml")
	fmt.Fprintln(w, "  2. Run 'errand list' to see them")
	fmt.Fprintln(w, "  3. Run 'errand run scripts/delete-twice.yml --yes' to try a scripted session")
}
