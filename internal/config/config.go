// Package config loads herald runtime configuration from a TOML file and
// environment variables, exposing typed structs and accessors for all
// sections.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// DefaultPrefix is the command prefix used when none is configured.
const DefaultPrefix = "!"

// Config is the runtime configuration loaded from defaults, config.toml, and
// env vars.
type Config struct {
	// HomeDir is runtime-resolved from HERALD_HOME and not read from config.
	HomeDir  string          `mapstructure:"-"`
	Prefix   string          `mapstructure:"prefix"`
	Discord  DiscordConfig   `mapstructure:"discord"`
	Telegram TelegramConfig  `mapstructure:"telegram"`
	Owners   OwnersConfig    `mapstructure:"owners"`
	Commands []CommandConfig `mapstructure:"commands"`
	Notify   NotifyConfig    `mapstructure:"notify"`
}

// DiscordConfig configures the Discord connection.
type DiscordConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	// Shards is the number of gateway sessions to open. Zero or one means a
	// single unsharded session.
	Shards int `mapstructure:"shards"`
}

// TelegramConfig configures the Telegram connection.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

// OwnersConfig lists the user IDs allowed to run owner-only commands, per
// platform.
type OwnersConfig struct {
	Discord  []string `mapstructure:"discord"`
	Telegram []string `mapstructure:"telegram"`
}

// CommandConfig declares one static response command.
type CommandConfig struct {
	Name      string   `mapstructure:"name"`
	Aliases   []string `mapstructure:"aliases"`
	Response  string   `mapstructure:"response"`
	OwnerOnly bool     `mapstructure:"owner_only"`
}

// NotifyConfig controls whether unknown or denied command attempts are
// answered in the originating chat.
type NotifyConfig struct {
	NotFound   bool `mapstructure:"not_found"`
	NotAllowed bool `mapstructure:"not_allowed"`
}

var defaultConfig = Config{
	Prefix: DefaultPrefix,
	Discord: DiscordConfig{
		Enabled: false,
		Token:   "",
		Shards:  1,
	},
	Telegram: TelegramConfig{
		Enabled: false,
		Token:   "",
	},
	Notify: NotifyConfig{
		NotFound:   false,
		NotAllowed: true,
	},
}

// defaultUserConfig is the minimal bootstrap config written for first-time
// users. It intentionally contains only user-editable essentials and not the
// full runtime default surface.
var defaultUserConfig = Config{
	Prefix: DefaultPrefix,
	Discord: DiscordConfig{
		Enabled: false,
		Token:   "$DISCORD_TOKEN",
		Shards:  1,
	},
	Telegram: TelegramConfig{
		Enabled: false,
		Token:   "$TELEGRAM_TOKEN",
	},
}

// homeDir returns the herald home directory.
// Uses HERALD_HOME env var if set, otherwise defaults to ~/.herald.
func homeDir() (string, error) {
	if dir := os.Getenv("HERALD_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return defaultHomePath(home), nil
}

// Load merges hardcoded defaults and config file values in that order.
// Config is always at $HERALD_HOME/config.toml.
func Load() (*Config, error) {
	homeDir, err := homeDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(homeConfigPath(homeDir))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		expandEnvStringHook(),
		mapstructure.StringToSliceHookFunc(","),
	)

	if err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = decodeHook
	}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.HomeDir = homeDir
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	return &cfg, nil
}

// Write writes the merged configuration (defaults overlaid by user config) to
// w in TOML format.
func Write(w io.Writer) error {
	if w == nil {
		return errors.New("writer is required")
	}

	homeDir, err := homeDir()
	if err != nil {
		return err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(homeConfigPath(homeDir))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	if err := v.WriteConfigTo(w); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultUserConfigTOML renders the minimal bootstrap user config as TOML.
func DefaultUserConfigTOML() (string, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.Set("prefix", defaultUserConfig.Prefix)
	v.Set("discord.enabled", defaultUserConfig.Discord.Enabled)
	v.Set("discord.token", defaultUserConfig.Discord.Token)
	v.Set("discord.shards", defaultUserConfig.Discord.Shards)
	v.Set("telegram.enabled", defaultUserConfig.Telegram.Enabled)
	v.Set("telegram.token", defaultUserConfig.Telegram.Token)

	var out bytes.Buffer
	if err := v.WriteConfigTo(&out); err != nil {
		return "", fmt.Errorf("write default user config: %w", err)
	}
	return out.String(), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("prefix", defaultConfig.Prefix)

	v.SetDefault("discord.enabled", defaultConfig.Discord.Enabled)
	v.SetDefault("discord.token", defaultConfig.Discord.Token)
	v.SetDefault("discord.shards", defaultConfig.Discord.Shards)

	v.SetDefault("telegram.enabled", defaultConfig.Telegram.Enabled)
	v.SetDefault("telegram.token", defaultConfig.Telegram.Token)

	v.SetDefault("notify.not_found", defaultConfig.Notify.NotFound)
	v.SetDefault("notify.not_allowed", defaultConfig.Notify.NotAllowed)
}

func expandEnvStringHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.String {
			return data, nil
		}
		value, ok := data.(string)
		if !ok {
			return data, nil
		}
		return os.ExpandEnv(value), nil
	}
}
