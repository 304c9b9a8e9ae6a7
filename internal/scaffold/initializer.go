// Package scaffold implements prdflow init: it writes a starter
// configuration, PRD and engineer roster into a directory.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/prdflow/internal/config"
	"github.com/dyluth/prdflow/internal/prd"
	"github.com/dyluth/prdflow/internal/roster"
)

//go:embed templates/*
var templatesFS embed.FS

const (
	PRDFileName       = "prd.json"
	EngineersFileName = "engineers.json"
)

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Template    string
	Permissions os.FileMode
}

// Files lists what Initialize writes, relative to the target directory.
var Files = []FileInfo{
	{Path: config.DefaultFileName, Template: "templates/prdflow.yml.tmpl", Permissions: 0644},
	{Path: PRDFileName, Template: "templates/prd.json.tmpl", Permissions: 0644},
	{Path: EngineersFileName, Template: "templates/engineers.json.tmpl", Permissions: 0644},
}

// Initialize writes the starter files into dir. With force, existing files
// are overwritten; otherwise CheckExisting must pass first.
func Initialize(dir string, force bool) error {
	if !force {
		if err := CheckExisting(dir); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	for _, f := range Files {
		content, err := templatesFS.ReadFile(f.Template)
		if err != nil {
			return fmt.Errorf("failed to read %s template: %w", f.Path, err)
		}
		path := filepath.Join(dir, f.Path)
		if err := os.WriteFile(path, content, f.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return validateCreatedFiles(dir)
}

// validateCreatedFiles loads each written file with the loader a run would use.
func validateCreatedFiles(dir string) error {
	if _, err := config.Load(filepath.Join(dir, config.DefaultFileName)); err != nil {
		return fmt.Errorf("created %s is invalid: %w", config.DefaultFileName, err)
	}
	if _, err := prd.Load(filepath.Join(dir, PRDFileName)); err != nil {
		return fmt.Errorf("created %s is invalid: %w", PRDFileName, err)
	}
	if _, err := roster.Load(filepath.Join(dir, EngineersFileName)); err != nil {
		return fmt.Errorf("created %s is invalid: %w", EngineersFileName, err)
	}
	return nil
}

// PrintSuccess prints the created files and next steps.
func PrintSuccess() {
	fmt.Println("\n✅ Successfully initialized prdflow project!")
	fmt.Println("\nCreated:")
	for _, f := range Files {
		fmt.Printf("  ✓ %s\n", f.Path)
	}
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Replace prd.json with your product requirements")
	fmt.Println("  2. List your team in engineers.json")
	fmt.Println("  3. Run 'prdflow run' to generate stories and assignments")
}
