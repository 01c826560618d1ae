/*
Package config
File: internal/config/config.go
Description:
    Process configuration: environment variables, optional .env file, and
    defaults for every knob spec.md §6 names. Generalizes the teacher's
    single-file LoadConfig into a layered loader the way orbas1-Synnergy
    and acdtunes-spacetraders both do it (viper bound to env, godotenv for
    local development).
*/
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the fully resolved process configuration.
type Config struct {
	Host string
	Port int

	SessionSecret   string
	TokenExpiry     time.Duration
	LoginRateLimit  int // attempts per minute, per IP
	RegisterRateLimit int

	GalaxySeed int64

	SectorSize      float64
	BaseRadarRange  float64
	BaseSpeed       float64
	BaseMiningTime  time.Duration
	BaseMiningYield int
	StarSizeMax     float64
	BaseShieldRegen float64

	DefaultHullHP   float64
	DefaultShieldHP float64

	WormholeRange      float64
	SelectionTimeout   time.Duration
	TransitDuration    time.Duration
	ExitOffset         float64
	RespawnInvulnerability time.Duration

	TickMs    int64
	PersistMs int64

	MaxConns int

	DBPath      string
	BalancePath string
}

// Load reads `.env` (if present, best-effort) and then environment
// variables, applying spec.md §6's defaults for anything unset.
func Load() (*Config, error) {
	_ = godotenv.Load() // best-effort; absence is not an error

	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("PORT", 3388)
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("SESSION_SECRET", "dev-secret-change-me")
	v.SetDefault("TOKEN_EXPIRY_HOURS", 24)
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("REGISTER_RATE_LIMIT", 5)
	v.SetDefault("GALAXY_SEED", 1)
	v.SetDefault("SECTOR_SIZE", 2000.0)
	v.SetDefault("BASE_RADAR_RANGE", 600.0)
	v.SetDefault("BASE_SPEED", 180.0)
	v.SetDefault("BASE_MINING_TIME_MS", 4000)
	v.SetDefault("BASE_MINING_YIELD", 5)
	v.SetDefault("STAR_SIZE_MAX", 220.0)
	v.SetDefault("BASE_SHIELD_REGEN", 2.0)
	v.SetDefault("DEFAULT_HULL_HP", 100.0)
	v.SetDefault("DEFAULT_SHIELD_HP", 50.0)
	v.SetDefault("WORMHOLE_RANGE", 200.0)
	v.SetDefault("SELECTION_TIMEOUT_MS", 15000)
	v.SetDefault("TRANSIT_DURATION_MS", 6000)
	v.SetDefault("EXIT_OFFSET", 120.0)
	v.SetDefault("RESPAWN_INVULNERABILITY_MS", 3000)
	v.SetDefault("TICK_MS", 50)
	v.SetDefault("PERSIST_MS", 5000)
	v.SetDefault("MAX_CONNS", 2000)
	v.SetDefault("DB_PATH", "starforge.db")
	v.SetDefault("BALANCE_PATH", "config/balance.yaml")

	cfg := &Config{
		Host:              v.GetString("HOST"),
		Port:              v.GetInt("PORT"),
		SessionSecret:     v.GetString("SESSION_SECRET"),
		TokenExpiry:       time.Duration(v.GetInt("TOKEN_EXPIRY_HOURS")) * time.Hour,
		LoginRateLimit:    v.GetInt("LOGIN_RATE_LIMIT"),
		RegisterRateLimit: v.GetInt("REGISTER_RATE_LIMIT"),
		GalaxySeed:        v.GetInt64("GALAXY_SEED"),
		SectorSize:        v.GetFloat64("SECTOR_SIZE"),
		BaseRadarRange:    v.GetFloat64("BASE_RADAR_RANGE"),
		BaseSpeed:         v.GetFloat64("BASE_SPEED"),
		BaseMiningTime:    time.Duration(v.GetInt64("BASE_MINING_TIME_MS")) * time.Millisecond,
		BaseMiningYield:   v.GetInt("BASE_MINING_YIELD"),
		StarSizeMax:       v.GetFloat64("STAR_SIZE_MAX"),
		BaseShieldRegen:   v.GetFloat64("BASE_SHIELD_REGEN"),
		DefaultHullHP:     v.GetFloat64("DEFAULT_HULL_HP"),
		DefaultShieldHP:   v.GetFloat64("DEFAULT_SHIELD_HP"),
		WormholeRange:     v.GetFloat64("WORMHOLE_RANGE"),
		SelectionTimeout:  time.Duration(v.GetInt64("SELECTION_TIMEOUT_MS")) * time.Millisecond,
		TransitDuration:   time.Duration(v.GetInt64("TRANSIT_DURATION_MS")) * time.Millisecond,
		ExitOffset:        v.GetFloat64("EXIT_OFFSET"),
		RespawnInvulnerability: time.Duration(v.GetInt64("RESPAWN_INVULNERABILITY_MS")) * time.Millisecond,
		TickMs:            v.GetInt64("TICK_MS"),
		PersistMs:         v.GetInt64("PERSIST_MS"),
		MaxConns:          v.GetInt("MAX_CONNS"),
		DBPath:            v.GetString("DB_PATH"),
		BalancePath:       v.GetString("BALANCE_PATH"),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: PORT out of range: %d", cfg.Port)
	}
	if cfg.TickMs <= 0 {
		return nil, fmt.Errorf("config: TICK_MS must be positive")
	}
	return cfg, nil
}

// Addr is the listen address derived from Host and Port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
