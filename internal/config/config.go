package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses durations and names weekdays
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required values go through must(); everything
// else has a default that matches the behavior of the original deployment.
type Config struct {
	Env          string        // application environment (e.g. "dev", "prod")
	Port         string        // HTTP port to listen on
	JWTSecret    string        // secret used to sign JWTs, at least 32 bytes
	DataDir      string        // parent directory of users/, stores/, orders/
	TokenTTLDays int           // token validity window in days
	BcryptCost   int           // bcrypt cost used by the hashpw tool
	ClearWeekday time.Weekday  // day of week the ledgers are cleared
	ClearHour    int           // hour of the clear window
	ClearMinute  int           // minute of the clear window
	ClearTick    time.Duration // how often the scheduler checks the clock
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		JWTSecret:    must("JWT_SECRET"),
		DataDir:      envStr("DATA_DIR", "data"),
		TokenTTLDays: envInt("TOKEN_TTL_DAYS", 7),
		BcryptCost:   envInt("BCRYPT_COST", 10),
		ClearWeekday: time.Weekday(envInt("CLEAR_WEEKDAY", 0)), // Sunday
		ClearHour:    envInt("CLEAR_HOUR", 12),
		ClearMinute:  envInt("CLEAR_MINUTE", 0),
		ClearTick:    envDur("CLEAR_TICK", time.Minute),
	}
	// A short HMAC secret makes every issued token forgeable offline.
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("JWT_SECRET must be at least 32 bytes")
	}
	return cfg
}

// UsersDir returns the directory holding the per-role credential tables.
func (c Config) UsersDir() string { return c.DataDir + "/users" }

// StoresDir returns the directory holding one JSON record per store.
func (c Config) StoresDir() string { return c.DataDir + "/stores" }

// OrdersDir returns the directory holding one ledger file per store.
func (c Config) OrdersDir() string { return c.DataDir + "/orders" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}
