package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort         = 3318
	defaultDatabaseType = "sqlite"
	defaultElectionName = "campus-election"
	defaultPollInterval = 15 * time.Second
	defaultFetchTimeout = 10 * time.Second
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string
	IPHashSalt   string
	ElectionName string

	// Live results refresh period and per-tally data fetch limit
	PollInterval time.Duration
	FetchTimeout time.Duration

	PrintAdminKey bool
}

// ParseFlags validates flags and fills unset values from the environment.
// Values in the env file are used only where the real environment has none.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("campus-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.ElectionName, "election", "", "Election name")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", 0, "Live results refresh interval")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", 0, "Tally data fetch timeout")
	fs.StringVar(&envFile, "env-file", ".env", "Env file to load")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	fs.BoolVar(&cfg.PrintAdminKey, "print-admin-key", false, "Print the admin key and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = defaultDatabaseType
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.ElectionName == "" {
		cfg.ElectionName = os.Getenv("ELECTION_NAME")
		if cfg.ElectionName == "" {
			cfg.ElectionName = defaultElectionName
		}
	}

	var err error
	if cfg.PollInterval, err = durationFromEnv(cfg.PollInterval, "POLL_INTERVAL", defaultPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.FetchTimeout, err = durationFromEnv(cfg.FetchTimeout, "FETCH_TIMEOUT", defaultFetchTimeout); err != nil {
		return Config{}, err
	}

	// Secrets - admin salt MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = cfg.AdminKeySalt
	}

	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func durationFromEnv(current time.Duration, key string, def time.Duration) (time.Duration, error) {
	if current != 0 {
		return current, nil
	}
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
