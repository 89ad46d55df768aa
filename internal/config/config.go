package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"lie-hard-be/internal/service/game"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "LIEHARD"

type AppConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	LogLevel       string `mapstructure:"log_level"`
	LogDevelopment bool   `mapstructure:"log_development"`

	// PublicURL is what the display QR code points at. Empty means
	// http://<host>:<port>/display.
	PublicURL string `mapstructure:"public_url"`
	WebDir    string `mapstructure:"web_dir"`

	Store  StoreConfig  `mapstructure:"store"`
	Backup BackupConfig `mapstructure:"backup"`
	Game   GameConfig   `mapstructure:"game"`
}

type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	DSN        string `mapstructure:"dsn"`
	DocumentID string `mapstructure:"document_id"`
}

type BackupConfig struct {
	// Cron spec, empty disables backups.
	Schedule string `mapstructure:"schedule"`
	Path     string `mapstructure:"path"`
}

type GameConfig struct {
	Strict  bool           `mapstructure:"strict"`
	Players []PlayerConfig `mapstructure:"players"`
	Round4  Round4Config   `mapstructure:"round4"`
}

type PlayerConfig struct {
	ID    int    `mapstructure:"id"`
	Name  string `mapstructure:"name"`
	Photo string `mapstructure:"photo"`
}

type Round4Config struct {
	Title       string `mapstructure:"title"`
	Image       string `mapstructure:"image"`
	RealOwnerID int    `mapstructure:"real_owner_id"`
}

// InitConfig reads .env, then the config file, then LIEHARD_* env vars and
// any flags already bound to v. file may be empty, in which case an
// optional app_config.json in the working directory is used.
func InitConfig(v *viper.Viper, file string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("app_config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)
	v.SetDefault("public_url", "")
	v.SetDefault("web_dir", "")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.document_id", "live")

	v.SetDefault("backup.schedule", "")
	v.SetDefault("backup.path", "liehard_backup.json")

	v.SetDefault("game.strict", false)
}

func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}

	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Store.DocumentID == "" {
		return errors.New("store.document_id must not be empty")
	}

	if c.Backup.Schedule != "" && c.Backup.Path == "" {
		return errors.New("backup.path is required when backup.schedule is set")
	}

	roster := c.Roster()
	seen := make(map[int]bool, len(roster))
	for _, p := range roster {
		if seen[p.ID] {
			return fmt.Errorf("duplicate player id %d", p.ID)
		}
		seen[p.ID] = true
	}

	if owner := c.Round4().RealOwnerID; !seen[owner] {
		return fmt.Errorf("round 4 real owner %d is not on the roster", owner)
	}

	return nil
}

// Roster falls back to the built-in four players.
func (c *AppConfig) Roster() []game.Player {
	if len(c.Game.Players) == 0 {
		return game.DefaultRoster()
	}

	players := make([]game.Player, 0, len(c.Game.Players))
	for _, p := range c.Game.Players {
		players = append(players, game.Player{ID: p.ID, Name: p.Name, Photo: p.Photo})
	}

	return players
}

func (c *AppConfig) Round4() game.Round4Object {
	r4 := c.Game.Round4
	if r4.Title == "" {
		return game.DefaultRound4()
	}

	return game.Round4Object{
		Title:       r4.Title,
		Image:       r4.Image,
		RealOwnerID: r4.RealOwnerID,
	}
}

// DefaultContent is preloaded until the operator imports content.
func (c *AppConfig) DefaultContent() game.Content {
	return game.Content{Round4: c.Round4()}
}

// DisplayURL is the address the projector browser should open.
func (c *AppConfig) DisplayURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/") + "/display"
	}

	host := c.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}

	return fmt.Sprintf("http://%s:%d/display", host, c.Port)
}
