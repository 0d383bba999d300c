package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppPort string

	// DBDriver selects the gorm dialector: mysql, postgres or sqlite.
	DBDriver string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string
	SQLitePath  string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	PenaltyDailyRate decimal.Decimal
	PenaltyMaxRate   decimal.Decimal
	MissedAfterDays  int

	WAHABaseURL string
	WAHAAPIKey  string
	WAHASession string

	ReminderInterval  time.Duration
	ReminderBatchSize int

	// AutoMigrate runs gorm migrations when the API starts.
	AutoMigrate bool
	// AsyncEvents runs event handlers off the request goroutine.
	AsyncEvents bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func getdec(k string, d decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(k); v != "" {
		if n, err := decimal.NewFromString(v); err == nil {
			return n
		}
	}
	return d
}

// LoadDotenv reads .env into the process environment when present.
// Variables already set win.
func LoadDotenv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		DBDriver:  getenv("DB_DRIVER", "mysql"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "merry"),
		MySQLUser: getenv("MYSQL_USER", "merry"),
		MySQLPass: getenv("MYSQL_PASS", "merry"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		SQLitePath:  getenv("SQLITE_PATH", "merry.db"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		PenaltyDailyRate: getdec("PENALTY_DAILY_RATE", decimal.NewFromInt(1)),
		PenaltyMaxRate:   getdec("PENALTY_MAX_RATE", decimal.NewFromInt(30)),
		MissedAfterDays:  getint("MISSED_AFTER_DAYS", 7),

		WAHABaseURL: os.Getenv("WAHA_BASE_URL"),
		WAHAAPIKey:  os.Getenv("WAHA_API_KEY"),
		WAHASession: getenv("WAHA_SESSION", "default"),

		ReminderInterval:  time.Duration(getint("REMINDER_INTERVAL_MINUTES", 60)) * time.Minute,
		ReminderBatchSize: getint("REMINDER_BATCH_SIZE", 200),

		AutoMigrate: getbool("AUTO_MIGRATE", false),
		AsyncEvents: getbool("ASYNC_EVENTS", true),
	}
	return c
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.PenaltyDailyRate.IsNegative() || c.PenaltyMaxRate.IsNegative() {
		return errors.New("penalty rates must not be negative")
	}
	if c.ReminderInterval <= 0 {
		return errors.New("REMINDER_INTERVAL_MINUTES must be positive")
	}
	if c.MissedAfterDays < 0 {
		return errors.New("MISSED_AFTER_DAYS must not be negative")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN
	case "sqlite":
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) MissedAfter() time.Duration {
	return time.Duration(c.MissedAfterDays) * 24 * time.Hour
}
