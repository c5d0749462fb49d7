package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/jung-wan-kim/usage-gate/internal/cache"
	"github.com/jung-wan-kim/usage-gate/internal/domain"
)

// Environment variables. The names match the hook scripts users already
// have in their shell profiles.
const (
	EnvCacheDir    = "CLAUDE_USAGE_CACHE_DIR"
	EnvLimit5h     = "CLAUDE_OPUS_LIMIT_5H"
	EnvLimit7d     = "CLAUDE_OPUS_LIMIT_7D"
	EnvFallback5h  = "CLAUDE_FALLBACK_MODEL_5H"
	EnvFallback7d  = "CLAUDE_FALLBACK_MODEL_7D"
	EnvCheapModels = "CLAUDE_USAGE_GATE_CHEAP_MODELS"
	EnvTools       = "CLAUDE_USAGE_GATE_TOOLS"
	EnvCacheTTL    = "CLAUDE_USAGE_CACHE_TTL"
	EnvEnabled     = "CLAUDE_USAGE_GATE_ENABLED"
	EnvMode        = "CLAUDE_USAGE_GATE_MODE"
	EnvLanguage    = "CLAUDE_USAGE_GATE_LANG"
	EnvChainCmd    = "USAGE_GATE_CHAIN_CMD"
	EnvLogLevel    = "CLAUDE_USAGE_GATE_LOG_LEVEL"
	EnvConfigPath  = "CLAUDE_USAGE_GATE_CONFIG"
)

const defaultTTLSeconds = 60

type Config struct {
	Gate       GateConfig       `toml:"gate"`
	Cache      CacheConfig      `toml:"cache"`
	Statusline StatuslineConfig `toml:"statusline"`
	General    GeneralConfig    `toml:"general"`

	// Warnings collects values that could not be parsed and were replaced
	// by their defaults.
	Warnings []string `toml:"-"`
}

type GateConfig struct {
	Enabled       bool     `toml:"enabled"`
	Mode          string   `toml:"mode"`
	FiveHourLimit int      `toml:"five_hour_limit"`
	SevenDayLimit int      `toml:"seven_day_limit"`
	Fallback5h    string   `toml:"fallback_5h"`
	Fallback7d    string   `toml:"fallback_7d"`
	CheapModels   []string `toml:"cheap_models"`
	// Tools lists the tool names the gate inspects. Empty gates every
	// payload the hook matcher sends.
	Tools []string `toml:"tools"`
}

type CacheConfig struct {
	Dir        string `toml:"dir"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

type StatuslineConfig struct {
	ChainCmd string `toml:"chain_cmd"`
}

type GeneralConfig struct {
	Language string `toml:"language"`
	LogLevel string `toml:"log_level"`
}

func DefaultConfig() Config {
	limits := domain.DefaultLimits()
	return Config{
		Gate: GateConfig{
			Enabled:       limits.Enabled,
			Mode:          string(domain.ModeTransparent),
			FiveHourLimit: limits.FiveHourLimit,
			SevenDayLimit: limits.SevenDayLimit,
			Fallback5h:    limits.FallbackFor5h,
			Fallback7d:    limits.FallbackFor7d,
			CheapModels:   limits.CheapModels,
			Tools:         []string{"Task", "Agent"},
		},
		Cache: CacheConfig{
			TTLSeconds: defaultTTLSeconds,
		},
		General: GeneralConfig{
			Language: "en",
			LogLevel: "warn",
		},
	}
}

func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "usage-gate", "config.toml")
}

// Load builds the configuration from defaults, the optional TOML file at
// path, an optional .env file next to it, and finally the environment.
// It always returns a usable Config; the error only reports a config file
// that exists but could not be decoded.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var fileErr error
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			fileErr = fmt.Errorf("decode config %s: %w", path, err)
			cfg = DefaultConfig()
		}
	}

	// godotenv.Load never overrides variables already set.
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		cfg.warnf("load %s: %v", envFile, err)
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, fileErr
}

func Save(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v, ok := lookup(EnvCacheDir); ok {
		c.Cache.Dir = v
	}
	c.Gate.FiveHourLimit = c.envPercent(EnvLimit5h, c.Gate.FiveHourLimit)
	c.Gate.SevenDayLimit = c.envPercent(EnvLimit7d, c.Gate.SevenDayLimit)
	if v, ok := lookup(EnvFallback5h); ok {
		c.Gate.Fallback5h = v
	}
	if v, ok := lookup(EnvFallback7d); ok {
		c.Gate.Fallback7d = v
	}
	if v, ok := os.LookupEnv(EnvCheapModels); ok {
		c.Gate.CheapModels = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvTools); ok {
		c.Gate.Tools = splitList(v)
	}
	if v, ok := lookup(EnvCacheTTL); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.warnf("%s=%q is not a positive integer, using %d", EnvCacheTTL, v, c.Cache.TTLSeconds)
		} else {
			c.Cache.TTLSeconds = n
		}
	}
	if v, ok := lookup(EnvEnabled); ok {
		// Only "false" turns the gate off, as in the hook scripts.
		switch strings.ToLower(v) {
		case "false":
			c.Gate.Enabled = false
		case "true":
			c.Gate.Enabled = true
		default:
			c.warnf("%s=%q is neither true nor false, gate stays enabled", EnvEnabled, v)
			c.Gate.Enabled = true
		}
	}
	if v, ok := lookup(EnvMode); ok {
		c.Gate.Mode = v
	}
	if v, ok := lookup(EnvLanguage); ok {
		c.General.Language = v
	}
	if v, ok := lookup(EnvChainCmd); ok {
		c.Statusline.ChainCmd = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.General.LogLevel = v
	}
}

// normalize replaces values the file or environment left unusable.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Gate.FiveHourLimit < 0 {
		c.warnf("five_hour_limit %d is negative, using %d", c.Gate.FiveHourLimit, def.Gate.FiveHourLimit)
		c.Gate.FiveHourLimit = def.Gate.FiveHourLimit
	}
	if c.Gate.SevenDayLimit < 0 {
		c.warnf("seven_day_limit %d is negative, using %d", c.Gate.SevenDayLimit, def.Gate.SevenDayLimit)
		c.Gate.SevenDayLimit = def.Gate.SevenDayLimit
	}
	if strings.TrimSpace(c.Gate.Fallback5h) == "" {
		c.Gate.Fallback5h = def.Gate.Fallback5h
	}
	if strings.TrimSpace(c.Gate.Fallback7d) == "" {
		c.Gate.Fallback7d = def.Gate.Fallback7d
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = def.Cache.TTLSeconds
	}
	mode, ok := domain.ParseMode(c.Gate.Mode)
	if !ok {
		c.warnf("unknown gate mode %q, using %s", c.Gate.Mode, mode)
	}
	c.Gate.Mode = string(mode)
}

func (c *Config) envPercent(key string, fallback int) int {
	v, ok := lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		c.warnf("%s=%q is not a percentage, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func (c *Config) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// Limits returns the gate thresholds.
func (c Config) Limits() domain.Limits {
	return domain.Limits{
		FiveHourLimit: c.Gate.FiveHourLimit,
		SevenDayLimit: c.Gate.SevenDayLimit,
		FallbackFor5h: strings.TrimSpace(c.Gate.Fallback5h),
		FallbackFor7d: strings.TrimSpace(c.Gate.Fallback7d),
		CheapModels:   c.Gate.CheapModels,
		Enabled:       c.Gate.Enabled,
	}
}

func (c Config) Mode() domain.Mode {
	mode, _ := domain.ParseMode(c.Gate.Mode)
	return mode
}

func (c Config) TTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return cache.DefaultDir()
}

func (c Config) CachePath() string {
	return cache.PathIn(c.CacheDir())
}

// lookup returns a trimmed, non-empty environment value.
func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
