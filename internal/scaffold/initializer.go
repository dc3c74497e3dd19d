// Package scaffold writes a starter mandelmovie.yml for `mandelmovie init`.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/mandelmovie/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// Initialize writes the default config into dir and returns its path.
// If force is true an existing config file is replaced.
func Initialize(dir string, force bool) (string, error) {
	path := filepath.Join(dir, config.DefaultPath)

	if !force {
		if err := CheckExisting(dir); err != nil {
			return "", err
		}
	}

	content, err := templatesFS.ReadFile("templates/mandelmovie.yml.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to read mandelmovie.yml template: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	// The template must stay loadable as the defaults evolve.
	if _, err := config.Load(path); err != nil {
		return "", fmt.Errorf("created %s is not a valid config: %w", path, err)
	}

	return path, nil
}
