package config

import "path/filepath"

const (
	// Global layout under HERALD_HOME.
	ConfigFilePath = "config.toml"
	LogsDirPath    = "logs"
)

func homeConfigPath(home string) string {
	return filepath.Join(home, ConfigFilePath)
}

func defaultHomePath(home string) string {
	return filepath.Join(home, ".herald")
}

func (c *Config) ConfigPath() string {
	return homeConfigPath(c.HomeDir)
}

func (c *Config) LogsDir() string {
	return filepath.Join(c.HomeDir, LogsDirPath)
}
