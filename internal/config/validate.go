package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validatable is implemented by config sections that can self-validate.
type Validatable interface {
	Validate() error
}

// ValidationReport collects non-fatal findings from startup validation.
type ValidationReport struct {
	Warnings []string
}

func (c DiscordConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Token == "" {
		return errors.New("token is required when enabled=true")
	}
	if c.Shards < 0 {
		return errors.New("shards must be >= 0")
	}
	return nil
}

func (c TelegramConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Token == "" {
		return errors.New("token is required when enabled=true")
	}
	return nil
}

func (c CommandConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	if c.Response == "" {
		return errors.New("response is required")
	}
	for _, alias := range c.Aliases {
		if strings.TrimSpace(alias) == "" {
			return errors.New("aliases must not be blank")
		}
	}
	return nil
}

// ValidateStartup validates startup configuration and returns warning
// messages alongside the first fatal error, if any.
func ValidateStartup(cfg *Config) (*ValidationReport, error) {
	var errs []error
	report := &ValidationReport{}

	if strings.ContainsAny(cfg.Prefix, " \t\n") {
		errs = append(errs, errors.New("prefix must not contain whitespace"))
	}

	if err := cfg.Discord.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("discord: %w", err))
	}
	if err := cfg.Telegram.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telegram: %w", err))
	}

	seen := make(map[string]string, len(cfg.Commands))
	for i, cmdCfg := range cfg.Commands {
		if err := cmdCfg.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("commands[%d]: %w", i, err))
			continue
		}
		for _, alias := range append([]string{cmdCfg.Name}, cmdCfg.Aliases...) {
			key := strings.ToLower(alias)
			if other, ok := seen[key]; ok {
				errs = append(errs, fmt.Errorf("commands[%d]: alias %q already used by %q", i, alias, other))
				continue
			}
			seen[key] = cmdCfg.Name
		}
	}

	if !cfg.Discord.Enabled && !cfg.Telegram.Enabled {
		report.Warnings = append(report.Warnings, "no platform is enabled, herald will idle")
	}
	if cfg.Discord.Enabled && len(cfg.Owners.Discord) == 0 {
		report.Warnings = append(report.Warnings, "owners.discord is empty, owner-only commands cannot be run on Discord")
	}
	if cfg.Telegram.Enabled && len(cfg.Owners.Telegram) == 0 {
		report.Warnings = append(report.Warnings, "owners.telegram is empty, owner-only commands cannot be run on Telegram")
	}

	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	return report, nil
}
