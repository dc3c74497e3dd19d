package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/mandelmovie/internal/config"
)

// CheckExisting returns an error if dir already holds a config file.
func CheckExisting(dir string) error {
	path := filepath.Join(dir, config.DefaultPath)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("project already initialized\n\nFound existing: %s\n\nUse 'mandelmovie init --force' to overwrite it", path)
	}
	return nil
}
