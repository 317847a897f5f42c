// Package bootstrap creates the herald home directory layout on first run.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/castorie/herald/internal/config"
)

// Initialize creates the expected herald home tree if missing and writes the
// starter config file for first-time users.
func Initialize(cfg *config.Config) error {
	dirs := []string{
		cfg.HomeDir,
		cfg.LogsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	starter, err := config.DefaultUserConfigTOML()
	if err != nil {
		return err
	}
	return writeFileIfMissing(cfg.ConfigPath(), starter)
}

func writeFileIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write file %q: %w", path, err)
	}
	return nil
}
