package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	stateDirName   = ".readtrack"
	configFileName = "config.yaml"
	dbFileName     = "readtrack.db"
)

type Display struct {
	// Plugin is the path of a display plugin binary. Relative paths resolve
	// against the data directory.
	Plugin string `yaml:"plugin"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	DataDir string `yaml:"-"`
	DBPath  string `yaml:"-"`

	UserID             int64         `yaml:"user_id"`
	Timezone           string        `yaml:"timezone"`
	TickInterval       time.Duration `yaml:"tick_interval"`
	StopTimeout        time.Duration `yaml:"stop_timeout"`
	PushTimeout        time.Duration `yaml:"push_timeout"`
	Shards             int           `yaml:"shards"`
	StatsWindowDays    int           `yaml:"stats_window_days"`
	StreakLookbackDays int           `yaml:"streak_lookback_days"`
	Journal            bool          `yaml:"journal"`
	Display            Display       `yaml:"display"`
	Log                Log           `yaml:"log"`

	Location *time.Location `yaml:"-"`
}

func Defaults(dataDir string) Config {
	return Config{
		DataDir:            dataDir,
		DBPath:             filepath.Join(dataDir, stateDirName, dbFileName),
		UserID:             1,
		Timezone:           "UTC",
		TickInterval:       time.Second,
		StopTimeout:        2 * time.Second,
		PushTimeout:        3 * time.Second,
		Shards:             32,
		StatsWindowDays:    30,
		StreakLookbackDays: 365,
		Log:                Log{Level: "info", Format: "text"},
		Location:           time.UTC,
	}
}

// Load returns defaults overlaid with <dataDir>/.readtrack/config.yaml when
// that file exists.
func Load(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data directory is required")
	}
	cfg := Defaults(dataDir)
	path := filepath.Join(dataDir, stateDirName, configFileName)
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(raw))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := cfg.finish(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc
	if c.Display.Plugin != "" && !filepath.IsAbs(c.Display.Plugin) {
		c.Display.Plugin = filepath.Clean(filepath.Join(c.DataDir, c.Display.Plugin))
	}
	return c.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.TickInterval <= 0:
		return fmt.Errorf("tick_interval must be positive")
	case c.StopTimeout <= 0:
		return fmt.Errorf("stop_timeout must be positive")
	case c.PushTimeout <= 0:
		return fmt.Errorf("push_timeout must be positive")
	case c.Shards <= 0:
		return fmt.Errorf("shards must be positive")
	case c.StatsWindowDays <= 0:
		return fmt.Errorf("stats_window_days must be positive")
	case c.StreakLookbackDays <= 0:
		return fmt.Errorf("streak_lookback_days must be positive")
	}
	return nil
}

// JournalDir is where markdown session notes are written.
func (c Config) JournalDir() string {
	return filepath.Join(c.DataDir, "sessions")
}

// LogPath is where the full-screen timer sends its log, keeping the terminal
// free for drawing.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, stateDirName, "readtrack.log")
}
