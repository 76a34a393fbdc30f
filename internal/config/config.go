// Package config reads the simulator settings from the environment, with
// an optional .env file underneath.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/logger"
	"github.com/MrT-Stephens/STP-Network-Simulation/internal/stp"
)

// Environment keys
const (
	KeyLogLevel    = "STP_LOG_LEVEL"
	KeySteps       = "STP_STEPS"
	KeySchedule    = "STP_SCHEDULE"
	KeyTopology    = "STP_TOPOLOGY"
	KeyRecordDB    = "STP_RECORD_DB"
	KeyHistoryFile = "STP_HISTORY_FILE"
)

// Defaults
const (
	DefaultSteps    = 5
	DefaultTopology = "topologies/triangle.yaml"
	historyName     = ".stp-sim_history"
)

// Config holds the resolved settings.
type Config struct {
	LogLevel    logger.LogLevel
	Steps       int
	Schedule    stp.Schedule
	Topology    string
	RecordDB    string
	HistoryFile string
}

// Default returns the settings used when nothing is set
func Default() Config {
	return Config{
		LogLevel:    logger.INFO,
		Steps:       DefaultSteps,
		Schedule:    stp.ScheduleSweep,
		Topology:    DefaultTopology,
		HistoryFile: filepath.Join(os.Getenv("HOME"), historyName),
	}
}

// Load reads the given .env files (or ./.env when none are named) into the
// process environment without overriding variables that are already set,
// then resolves the settings. A missing default .env is not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", strings.Join(files, ", "), err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv resolves the settings through getenv. Every invalid value is
// reported.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	var errs []error

	if v := strings.TrimSpace(getenv(KeyLogLevel)); v != "" {
		lvl, err := logger.ParseLevel(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
		}
		c.LogLevel = lvl
	}

	if v := strings.TrimSpace(getenv(KeySteps)); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %q is not a number", KeySteps, v))
		case n < 0:
			errs = append(errs, fmt.Errorf("%s: %d must not be negative", KeySteps, n))
		default:
			c.Steps = n
		}
	}

	if v := getenv(KeySchedule); v != "" {
		s, err := stp.ParseSchedule(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeySchedule, err))
		}
		c.Schedule = s
	}

	if v := strings.TrimSpace(getenv(KeyTopology)); v != "" {
		c.Topology = v
	}
	c.RecordDB = strings.TrimSpace(getenv(KeyRecordDB))
	if v := strings.TrimSpace(getenv(KeyHistoryFile)); v != "" {
		c.HistoryFile = v
	}

	if len(errs) > 0 {
		return c, errors.Join(errs...)
	}
	return c, nil
}
