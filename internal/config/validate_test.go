package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Prefix: "!",
		Discord: DiscordConfig{
			Enabled: true,
			Token:   "discord-token",
			Shards:  1,
		},
		Telegram: TelegramConfig{
			Enabled: true,
			Token:   "telegram-token",
		},
		Owners: OwnersConfig{
			Discord:  []string{"1001"},
			Telegram: []string{"2002"},
		},
		Commands: []CommandConfig{
			{Name: "rules", Aliases: []string{"guidelines"}, Response: "be nice"},
		},
	}
}

func TestValidateStartup_AcceptsValidConfig(t *testing.T) {
	report, err := ValidateStartup(validConfig())
	if err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", report.Warnings)
	}
}

func TestValidateStartup_RejectsEnabledPlatformWithoutToken(t *testing.T) {
	cfg := validConfig()
	cfg.Discord.Token = ""

	_, err := ValidateStartup(cfg)
	if err == nil || !strings.Contains(err.Error(), "discord") {
		t.Fatalf("expected discord token error, got %v", err)
	}
}

func TestValidateStartup_RejectsWhitespacePrefix(t *testing.T) {
	cfg := validConfig()
	cfg.Prefix = "! "

	if _, err := ValidateStartup(cfg); err == nil {
		t.Fatal("expected prefix error")
	}
}

func TestValidateStartup_RejectsDuplicateCommandAliases(t *testing.T) {
	cfg := validConfig()
	cfg.Commands = append(cfg.Commands, CommandConfig{Name: "GUIDELINES", Response: "dup"})

	_, err := ValidateStartup(cfg)
	if err == nil || !strings.Contains(err.Error(), "already used") {
		t.Fatalf("expected duplicate alias error, got %v", err)
	}
}

func TestValidateStartup_RejectsCommandWithoutResponse(t *testing.T) {
	cfg := validConfig()
	cfg.Commands = []CommandConfig{{Name: "empty"}}

	_, err := ValidateStartup(cfg)
	if err == nil || !strings.Contains(err.Error(), "response is required") {
		t.Fatalf("expected response error, got %v", err)
	}
}

func TestValidateStartup_WarnsWhenNothingEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Discord.Enabled = false
	cfg.Telegram.Enabled = false

	report, err := ValidateStartup(cfg)
	if err != nil {
		t.Fatalf("idle config should validate, got %v", err)
	}
	if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "idle") {
		t.Fatalf("expected idle warning, got %v", report.Warnings)
	}
}

func TestValidateStartup_WarnsOnMissingOwners(t *testing.T) {
	cfg := validConfig()
	cfg.Owners = OwnersConfig{}

	report, err := ValidateStartup(cfg)
	if err != nil {
		t.Fatalf("missing owners should only warn, got %v", err)
	}
	if len(report.Warnings) != 2 {
		t.Fatalf("expected two owner warnings, got %v", report.Warnings)
	}
}
