// Package config loads the server's YAML configuration file, falling back
// to sensible defaults when the file is absent (spec §6: "configuration
// consumed, not defined here").
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the connection core reads at startup.
type Config struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// World/gameplay toggles consumed by internal/gameserver and internal/world.
	Hardcore           bool   `yaml:"hardcore"`
	MaxPlayers         int    `yaml:"max_players"`
	ViewDistance        int8   `yaml:"view_distance"`
	SimulationDistance  int8   `yaml:"simulation_distance"`
	DefaultGameMode    string `yaml:"default_game_mode"` // survival|creative|adventure|spectator

	// Frame codec
	CompressionThreshold int `yaml:"compression_threshold"` // -1 disables compression
	CompressionLevel     int `yaml:"compression_level"`     // passed verbatim to the compressor (spec §9 open question)

	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)

	// RCON / console (consumed only; dispatch is out of scope, spec §1/§6)
	RCONEnabled  bool   `yaml:"rcon_enabled"`
	RCONBind     string `yaml:"rcon_bind"`
	RCONPassword string `yaml:"rcon_password"`
	ConsoleEnabled bool `yaml:"console_enabled"`

	// Database, backing the profile cache in internal/auth.
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns        int32  `yaml:"max_conns"`
	MinConns        int32  `yaml:"min_conns"`
	MaxConnLifetime string `yaml:"max_conn_lifetime"`
	MaxConnIdleTime string `yaml:"max_conn_idle_time"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	base := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)

	var params []string
	if d.MaxConns > 0 {
		params = append(params, fmt.Sprintf("pool_max_conns=%d", d.MaxConns))
	}
	if d.MinConns > 0 {
		params = append(params, fmt.Sprintf("pool_min_conns=%d", d.MinConns))
	}
	if d.MaxConnLifetime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_lifetime=%s", d.MaxConnLifetime))
	}
	if d.MaxConnIdleTime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_idle_time=%s", d.MaxConnIdleTime))
	}

	if len(params) > 0 {
		return base + "&" + strings.Join(params, "&")
	}
	return base
}

// Default returns Config with sensible defaults for a local dev server.
func Default() Config {
	return Config{
		BindAddress:          "0.0.0.0",
		Port:                 25565,
		Hardcore:             false,
		MaxPlayers:           20,
		ViewDistance:         10,
		SimulationDistance:   10,
		DefaultGameMode:      "survival",
		CompressionThreshold: 256,
		CompressionLevel:     -1, // zlib.DefaultCompression
		LogLevel:             "info",
		RCONEnabled:          false,
		RCONBind:             "0.0.0.0:25575",
		ConsoleEnabled:       true,
		Database: DatabaseConfig{
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "mcgo",
			Password: "mcgo",
			DBName:  "mcgo",
			SSLMode: "disable",
		},
	}
}

// gameModeBytes maps the configured name to the wire value Login/PlayLogin
// packets expect.
var gameModeBytes = map[string]int8{
	"survival":  0,
	"creative":  1,
	"adventure": 2,
	"spectator": 3,
}

// GameModeByte resolves DefaultGameMode to its wire value, defaulting to
// survival (0) for an unrecognized or empty name.
func (c Config) GameModeByte() int8 {
	if b, ok := gameModeBytes[strings.ToLower(c.DefaultGameMode)]; ok {
		return b
	}
	return 0
}

// Load loads Config from a YAML file. If the file doesn't exist, returns
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
