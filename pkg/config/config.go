package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	LogFile  string
	HTTPPort string

	// RIT API
	APIBaseURL      string
	APIKey          string
	APITimeout      time.Duration
	APIMaxRetries   int
	APIRetryBackoff time.Duration

	// Evaluation weights (must sum to 1.0)
	WeightILS  float64
	WeightSQS  float64
	WeightOBBS float64
	WeightPLR  float64

	// Acceptance thresholds
	AcceptThresholdHigh   float64
	AcceptThresholdMedium float64
	AcceptThresholdLow    float64

	// Marginal acceptance cutoffs
	MarginalMinTimeRemaining time.Duration
	MarginalMinILS           float64

	// Position limits
	NetPositionLimit   int
	GrossPositionLimit int

	// Order sizing
	DefaultOrderLimit int
	OrderLimits       map[string]int // per-ticker overrides
	TickSize          float64

	// Costs
	TransactionCostPerShare float64

	// Timing
	CaseDuration           time.Duration
	EmergencyTimeThreshold time.Duration
	MonitorInterval        time.Duration
	MainLoopInterval       time.Duration
	Tier3TimeFloor         time.Duration

	// Repricing patience
	PatienceUrgent   time.Duration
	PatienceModerate time.Duration
	PatienceRelaxed  time.Duration

	// Risk thresholds
	StopLossThreshold      float64
	LargePositionThreshold int

	// Book sanity
	MinBookDepth        int
	MaxAcceptableSpread float64
	BookFetchDepth      int

	// Tender intake
	MaxTenders int

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// RIT API defaults
		APIBaseURL:      getEnvOrDefault("RIT_API_URL", "http://localhost:9999/v1"),
		APIKey:          os.Getenv("RIT_API_KEY"),
		APITimeout:      getDurationOrDefault("RIT_API_TIMEOUT", 10*time.Second),
		APIMaxRetries:   getIntOrDefault("RIT_API_MAX_RETRIES", 3),
		APIRetryBackoff: getDurationOrDefault("RIT_API_RETRY_BACKOFF", time.Second),

		// Evaluation weight defaults
		WeightILS:  getFloat64OrDefault("WEIGHT_ILS", 0.40),
		WeightSQS:  getFloat64OrDefault("WEIGHT_SQS", 0.25),
		WeightOBBS: getFloat64OrDefault("WEIGHT_OBBS", 0.20),
		WeightPLR:  getFloat64OrDefault("WEIGHT_PLR", 0.15),

		// Acceptance threshold defaults
		AcceptThresholdHigh:   getFloat64OrDefault("ACCEPT_THRESHOLD_HIGH", 70.0),
		AcceptThresholdMedium: getFloat64OrDefault("ACCEPT_THRESHOLD_MEDIUM", 55.0),
		AcceptThresholdLow:    getFloat64OrDefault("ACCEPT_THRESHOLD_LOW", 40.0),

		MarginalMinTimeRemaining: getDurationOrDefault("MARGINAL_MIN_TIME_REMAINING", 120*time.Second),
		MarginalMinILS:           getFloat64OrDefault("MARGINAL_MIN_ILS", 0.5),

		// Position limit defaults
		NetPositionLimit:   getIntOrDefault("NET_POSITION_LIMIT", 100000),
		GrossPositionLimit: getIntOrDefault("GROSS_POSITION_LIMIT", 250000),

		// Order sizing defaults
		DefaultOrderLimit: getIntOrDefault("DEFAULT_ORDER_LIMIT", 10000),
		OrderLimits:       getOrderLimits("ORDER_LIMITS", map[string]int{"CRZY": 25000, "TAME": 10000}),
		TickSize:          getFloat64OrDefault("TICK_SIZE", 0.01),

		// Cost defaults
		TransactionCostPerShare: getFloat64OrDefault("TRANSACTION_COST_PER_SHARE", 0.02),

		// Timing defaults
		CaseDuration:           getDurationOrDefault("CASE_DURATION", 5*time.Minute),
		EmergencyTimeThreshold: getDurationOrDefault("EMERGENCY_TIME_THRESHOLD", 30*time.Second),
		MonitorInterval:        getDurationOrDefault("MONITOR_INTERVAL", 2*time.Second),
		MainLoopInterval:       getDurationOrDefault("MAIN_LOOP_INTERVAL", 500*time.Millisecond),
		Tier3TimeFloor:         getDurationOrDefault("TIER3_TIME_FLOOR", 60*time.Second),

		// Patience defaults
		PatienceUrgent:   getDurationOrDefault("PATIENCE_URGENT", 5*time.Second),
		PatienceModerate: getDurationOrDefault("PATIENCE_MODERATE", 15*time.Second),
		PatienceRelaxed:  getDurationOrDefault("PATIENCE_RELAXED", 30*time.Second),

		// Risk defaults
		StopLossThreshold:      getFloat64OrDefault("STOP_LOSS_THRESHOLD", -5000.0),
		LargePositionThreshold: getIntOrDefault("LARGE_POSITION_THRESHOLD", 80000),

		// Book sanity defaults
		MinBookDepth:        getIntOrDefault("MIN_BOOK_DEPTH", 3),
		MaxAcceptableSpread: getFloat64OrDefault("MAX_ACCEPTABLE_SPREAD", 0.50),
		BookFetchDepth:      getIntOrDefault("BOOK_FETCH_DEPTH", 10),

		// Tender intake defaults
		MaxTenders: getIntOrDefault("MAX_TENDERS", 5),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "tenderbot"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "tenderbot123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "tenderbot"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("RIT_API_URL cannot be empty")
	}

	weightSum := c.WeightILS + c.WeightSQS + c.WeightOBBS + c.WeightPLR
	if weightSum < 0.999 || weightSum > 1.001 {
		return fmt.Errorf("evaluation weights must sum to 1.0, got %f", weightSum)
	}

	if c.AcceptThresholdHigh < c.AcceptThresholdMedium || c.AcceptThresholdMedium < c.AcceptThresholdLow {
		return fmt.Errorf("acceptance thresholds must satisfy high >= medium >= low, got %.1f/%.1f/%.1f",
			c.AcceptThresholdHigh, c.AcceptThresholdMedium, c.AcceptThresholdLow)
	}

	if c.NetPositionLimit <= 0 || c.GrossPositionLimit <= 0 {
		return fmt.Errorf("position limits must be positive")
	}

	if c.DefaultOrderLimit <= 0 {
		return fmt.Errorf("DEFAULT_ORDER_LIMIT must be positive, got %d", c.DefaultOrderLimit)
	}

	if c.TickSize <= 0 {
		return fmt.Errorf("TICK_SIZE must be positive, got %f", c.TickSize)
	}

	if c.CaseDuration <= 0 {
		return fmt.Errorf("CASE_DURATION must be positive")
	}

	if c.EmergencyTimeThreshold >= c.CaseDuration {
		return fmt.Errorf("EMERGENCY_TIME_THRESHOLD must be shorter than CASE_DURATION")
	}

	if c.MaxTenders <= 0 {
		return fmt.Errorf("MAX_TENDERS must be positive, got %d", c.MaxTenders)
	}

	if c.StorageMode != "console" && c.StorageMode != "postgres" {
		return fmt.Errorf("STORAGE_MODE must be 'console' or 'postgres', got %q", c.StorageMode)
	}

	return nil
}

// OrderLimit returns the per-order size cap for a ticker.
func (c *Config) OrderLimit(ticker string) int {
	if limit, ok := c.OrderLimits[ticker]; ok {
		return limit
	}
	return c.DefaultOrderLimit
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getOrderLimits parses "TICKER:LIMIT,TICKER:LIMIT" pairs.
func getOrderLimits(key string, defaultValue map[string]int) map[string]int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	limits := make(map[string]int)
	for _, pair := range strings.Split(value, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			continue
		}
		limit, err := strconv.Atoi(parts[1])
		if err != nil || limit <= 0 {
			continue
		}
		limits[strings.ToUpper(parts[0])] = limit
	}

	if len(limits) == 0 {
		return defaultValue
	}
	return limits
}
