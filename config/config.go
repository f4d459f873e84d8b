package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"hrpulse/apperrors"
	"hrpulse/fixtures"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	SourceFixtures = "fixtures"
	SourceMongo    = "mongo"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig `validate:"required"`
	Log           LogConfig    `validate:"required"`
	Source        SourceConfig `validate:"required"`
	Mongo         MongoConfig
	Loader        LoaderConfig `validate:"required"`
	Views         ViewConfig   `validate:"required"`
	ReferenceDate time.Time
}

type ServerConfig struct {
	Port            string        `validate:"required,numeric"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

type LogConfig struct {
	Level       string `validate:"oneof=debug info warn error"`
	Development bool
}

// SourceConfig selects where section data comes from.
type SourceConfig struct {
	Backend         string        `validate:"oneof=fixtures mongo"`
	Latency         time.Duration `validate:"gte=0"`
	FailCollections []string
}

type MongoConfig struct {
	URI      string
	Database string
}

type LoaderConfig struct {
	Debounce        time.Duration `validate:"gte=0"`
	SectionTimeouts map[string]time.Duration
}

type ViewConfig struct {
	IdleTTL       time.Duration `validate:"gt=0"`
	SweepInterval time.Duration `validate:"gt=0"`
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment alone is enough.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	timeouts, err := parseDurationMap(os.Getenv("SECTION_TIMEOUTS"))
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid SECTION_TIMEOUTS")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8081"),
			ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:       strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			Development: getEnvBoolOrDefault("LOG_DEVELOPMENT", false),
		},
		Source: SourceConfig{
			Backend:         strings.ToLower(getEnvOrDefault("DATA_SOURCE", SourceFixtures)),
			Latency:         getEnvDurationOrDefault("FIXTURE_LATENCY", 400*time.Millisecond),
			FailCollections: splitList(os.Getenv("FIXTURE_FAIL")),
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGO_URI"),
			Database: getEnvOrDefault("MONGO_DATABASE", "hrpulse"),
		},
		Loader: LoaderConfig{
			Debounce:        getEnvDurationOrDefault("LOADER_DEBOUNCE", 300*time.Millisecond),
			SectionTimeouts: timeouts,
		},
		Views: ViewConfig{
			IdleTTL:       getEnvDurationOrDefault("VIEW_IDLE_TTL", 30*time.Minute),
			SweepInterval: getEnvDurationOrDefault("VIEW_SWEEP_INTERVAL", time.Minute),
		},
	}

	if raw := os.Getenv("REFERENCE_DATE"); raw != "" {
		ref, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, apperrors.WithCode(apperrors.CodeConfigInvalid, err)
		}
		cfg.ReferenceDate = ref
	} else if cfg.Source.Backend == SourceFixtures {
		cfg.ReferenceDate = fixtures.ReferenceDate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints plus the cross-field rules validator tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.Wrap(apperrors.WithCode(apperrors.CodeConfigInvalid, err), "configuration validation failed")
	}
	if c.Source.Backend == SourceMongo && c.Mongo.URI == "" {
		return apperrors.ConfigInvalid("MONGO_URI is required when DATA_SOURCE=mongo")
	}
	for name, d := range c.Loader.SectionTimeouts {
		if d <= 0 {
			return apperrors.ConfigInvalid("section timeout for " + name + " must be positive")
		}
	}
	return nil
}

// Now returns the reference date when one is configured or implied by the fixture source,
// otherwise the wall clock.
func (c *Config) Now() time.Time {
	if !c.ReferenceDate.IsZero() {
		return c.ReferenceDate
	}
	return time.Now()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDurationMap parses "alerts=5s,timeline=8s".
func parseDurationMap(raw string) (map[string]time.Duration, error) {
	out := make(map[string]time.Duration)
	for _, pair := range splitList(raw) {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, apperrors.InvalidInput("expected name=duration, got " + pair)
		}
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
		}
		out[strings.TrimSpace(name)] = d
	}
	return out, nil
}
