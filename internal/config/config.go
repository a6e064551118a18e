package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// placeholderToken is the value shipped in sample configs
const placeholderToken = "PUT_YOUR_TOKEN_HERE"

// ErrMissingToken is returned when no usable bot token is configured
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")

// Config represents the configuration for the bot
type Config struct {
	// Telegram bot token
	Token string
	// CSV file results are appended to
	ResultsCSV string
	// Postgres DSN; empty means sqlite at DatabasePath
	DatabaseURL  string
	DatabasePath string
	// Optional .xlsx/.csv question bank replacing the built-in one
	QuestionBankPath string
	// Users allowed to run admin commands and receive reports
	AdminUserIDs []int64
	// Hour (UTC) of the daily admin report
	ReportHour       int
	SchedulerEnabled bool
	// Optional log file; empty logs to stderr
	LogFile string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ResultsCSV:       "quiz_results.csv",
		DatabasePath:     "data/placement.db",
		ReportHour:       9,
		SchedulerEnabled: true,
	}
}

// Load reads .env (when present) and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: unable to load .env file: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a config from a lookup function
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	cfg.Token = strings.TrimSpace(getenv("TELEGRAM_BOT_TOKEN"))
	if cfg.Token == "" {
		cfg.Token = strings.TrimSpace(getenv("BOT_TOKEN"))
	}
	if cfg.Token == "" || cfg.Token == placeholderToken {
		return nil, ErrMissingToken
	}

	if v := getenv("RESULTS_CSV"); v != "" {
		cfg.ResultsCSV = v
	}
	cfg.DatabaseURL = getenv("DATABASE_URL")
	if v := getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	cfg.QuestionBankPath = getenv("QUESTION_BANK_PATH")
	cfg.LogFile = getenv("LOG_FILE")

	if v := getenv("ADMIN_USER_IDS"); v != "" {
		for _, idStr := range strings.Split(v, ",") {
			idStr = strings.TrimSpace(idStr)
			if idStr == "" {
				continue
			}
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				log.Printf("Warning: Invalid admin user ID: %s", idStr)
				continue
			}
			cfg.AdminUserIDs = append(cfg.AdminUserIDs, id)
		}
	}

	if v := getenv("REPORT_HOUR"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil || h < 0 || h > 23 {
			return nil, fmt.Errorf("REPORT_HOUR must be between 0 and 23, got %q", v)
		}
		cfg.ReportHour = h
	}

	cfg.SchedulerEnabled = getenv("ENABLE_SCHEDULER") != "false"
	return cfg, nil
}

// IsAdmin checks if a user is an admin
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
