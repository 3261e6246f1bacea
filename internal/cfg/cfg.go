package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config adds dispatch-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	DatabaseURL           string
	RosterFile            string
	SlackWebhookURL       string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	RedisQueueKey         string
	APIToken              string
	SOSSim                bool
	SOSSimDelaySeconds    int
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory stores)")
	fs.StringVar(&c.RosterFile, "roster-file", "", "path to officer roster JSON (empty = built-in roster)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for dispatch and SOS notifications")
	fs.StringVar(&c.RedisAddr, "redis-addr", "", "Redis address for the event queue (empty = disabled)")
	fs.StringVar(&c.RedisPassword, "redis-password", "", "Redis password")
	fs.IntVar(&c.RedisDB, "redis-db", 0, "Redis database number")
	fs.StringVar(&c.RedisQueueKey, "redis-queue-key", "unilert:events", "Redis list key events are pushed to")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token required on API requests (empty = no auth)")
	fs.BoolVar(&c.SOSSim, "sos-sim", false, "enable the simulated SOS alert feed")
	fs.IntVar(&c.SOSSimDelaySeconds, "sos-sim-delay-seconds", 5, "delay before the simulated SOS alert fires (1..300)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Redis DB index is non-negative
	if c.RedisDB < 0 {
		errs = append(errs, fmt.Errorf("invalid REDIS_DB %d (must be >= 0)", c.RedisDB))
	}

	// Queue key only matters when Redis is enabled
	if c.RedisAddr != "" && c.RedisQueueKey == "" {
		errs = append(errs, errors.New("REDIS_QUEUE_KEY is required when REDIS_ADDR is set"))
	}

	if c.SOSSimDelaySeconds <= 0 || c.SOSSimDelaySeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SOS_SIM_DELAY_SECONDS %d (must be 1..300)", c.SOSSimDelaySeconds))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
