// Package config loads server settings. Sources are layered, later ones
// winning: built-in defaults, a YAML file, a .env file, the process
// environment and finally command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Skryldev/jobly/db"
)

// Config is the complete server configuration.
type Config struct {
	Port int `yaml:"port"`

	// Database. DatabaseURL wins when set; otherwise the connection is
	// built from the DB* fields by the driver's DSN builder.
	DatabaseURL        string        `yaml:"database_url"`
	Driver             string        `yaml:"driver"`
	DBHost             string        `yaml:"db_host"`
	DBPort             int           `yaml:"db_port"`
	DBUser             string        `yaml:"db_user"`
	DBPassword         string        `yaml:"db_password"`
	DBName             string        `yaml:"db_name"`
	DBSSLMode          string        `yaml:"db_sslmode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"conn_max_lifetime"`
	QueryTimeout       time.Duration `yaml:"query_timeout"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
	AutoMigrate        bool          `yaml:"auto_migrate"`
	LogQueryArgs       bool          `yaml:"log_query_args"`

	// Auth
	SecretKey  string        `yaml:"secret_key"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`

	LogLevel    string   `yaml:"log_level"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Default returns the built-in configuration, suitable for local
// development against a Postgres database named jobly.
func Default() Config {
	return Config{
		Port:               3001,
		Driver:             "pgx",
		DBHost:             "localhost",
		DBPort:             5432,
		DBName:             "jobly",
		DBSSLMode:          "disable",
		MaxOpenConns:       25,
		MaxIdleConns:       10,
		ConnMaxLifetime:    5 * time.Minute,
		QueryTimeout:       10 * time.Second,
		SlowQueryThreshold: 200 * time.Millisecond,
		SecretKey:          "secret-dev",
		TokenTTL:           24 * time.Hour,
		BcryptCost:         12,
		LogLevel:           "info",
		CORSOrigins:        []string{"*"},
	}
}

// Load builds the configuration from args (typically os.Args[1:]).
func Load(args []string) (Config, error) {
	cfg := Default()

	fset := flag.NewFlagSet("jobly", flag.ContinueOnError)
	var (
		path     = fset.String("config", "", "YAML config file (default $JOBLY_CONFIG or jobly.yaml)")
		envFile  = fset.String("env-file", ".env", "dotenv file loaded into the environment when present")
		port     = fset.Int("port", 0, "HTTP port")
		dbURL    = fset.String("database-url", "", "database URL or DSN")
		driver   = fset.String("driver", "", "database/sql driver: pgx, postgres or sqlite3")
		logLevel = fset.String("log-level", "", "debug, info, warn or error")
		migrate  = fset.Bool("migrate", false, "apply pending migrations before serving")
	)
	if err := fset.Parse(args); err != nil {
		return cfg, err
	}

	if err := loadYAML(&cfg, *path); err != nil {
		return cfg, err
	}
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("config: %s: %w", *envFile, err)
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "database-url":
			cfg.DatabaseURL = *dbURL
		case "driver":
			cfg.Driver = *driver
		case "log-level":
			cfg.LogLevel = *logLevel
		case "migrate":
			cfg.AutoMigrate = *migrate
		}
	})
	return cfg, cfg.Validate()
}

func loadYAML(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = os.Getenv("JOBLY_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = "jobly.yaml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	var errs []error
	num := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(dst *time.Duration, key string) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	num(&cfg.Port, "PORT")
	num(&cfg.Port, "JOBLY_PORT")
	str(&cfg.DatabaseURL, "JOBLY_DATABASE_URL", "DATABASE_URL")
	str(&cfg.Driver, "JOBLY_DB_DRIVER")
	str(&cfg.DBHost, "JOBLY_DB_HOST", "PGHOST")
	num(&cfg.DBPort, "JOBLY_DB_PORT")
	num(&cfg.DBPort, "PGPORT")
	str(&cfg.DBUser, "JOBLY_DB_USER", "PGUSER")
	str(&cfg.DBPassword, "JOBLY_DB_PASSWORD", "PGPASSWORD")
	str(&cfg.DBName, "JOBLY_DB_NAME", "PGDATABASE")
	str(&cfg.DBSSLMode, "JOBLY_DB_SSLMODE", "PGSSLMODE")
	num(&cfg.MaxOpenConns, "JOBLY_MAX_OPEN_CONNS")
	num(&cfg.MaxIdleConns, "JOBLY_MAX_IDLE_CONNS")
	dur(&cfg.ConnMaxLifetime, "JOBLY_CONN_MAX_LIFETIME")
	dur(&cfg.QueryTimeout, "JOBLY_QUERY_TIMEOUT")
	dur(&cfg.SlowQueryThreshold, "JOBLY_SLOW_QUERY_THRESHOLD")
	str(&cfg.SecretKey, "JOBLY_SECRET_KEY", "SECRET_KEY")
	dur(&cfg.TokenTTL, "JOBLY_TOKEN_TTL")
	num(&cfg.BcryptCost, "JOBLY_BCRYPT_COST")
	num(&cfg.BcryptCost, "BCRYPT_WORK_FACTOR")
	str(&cfg.LogLevel, "JOBLY_LOG_LEVEL")

	if v := os.Getenv("JOBLY_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	boolean := func(dst *bool, key string) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	boolean(&cfg.AutoMigrate, "JOBLY_AUTO_MIGRATE")
	boolean(&cfg.LogQueryArgs, "JOBLY_LOG_QUERY_ARGS")
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" && c.DBName == "" {
		errs = append(errs, errors.New("config: database url or db name must be set"))
	}
	switch c.Driver {
	case "pgx", "postgres", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("config: unsupported driver %q", c.Driver))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("config: secret key must not be empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: port %d out of range", c.Port))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("config: bcrypt cost %d out of range [4,31]", c.BcryptCost))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// SlogLevel returns the configured log level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level: %w", err)
	}
	return l, nil
}

// DriverOptions returns the structured connection settings for
// db.OpenWithDriver. SQLite connections always enforce foreign keys.
func (c Config) DriverOptions() db.DriverOptions {
	o := db.DriverOptions{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Database: c.DBName,
		SSLMode:  c.DBSSLMode,
	}
	if c.Driver == "sqlite3" {
		o.Extra = map[string]string{"_foreign_keys": "on"}
	}
	return o
}

// DBConfig returns the pool settings for db.Open. DSN is left empty when no
// database url is configured.
func (c Config) DBConfig(hooks ...db.Hook) db.Config {
	return db.Config{
		DSN:             c.DatabaseURL,
		DriverName:      c.Driver,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		DefaultTimeout:  c.QueryTimeout,
		Hooks:           hooks,
	}
}

// OpenDB opens the configured database. A database url is used as is;
// otherwise the registered driver builds the DSN from the DB* fields.
func (c Config) OpenDB(hooks ...db.Hook) (*db.DB, error) {
	if c.DatabaseURL != "" {
		return db.Open(c.DBConfig(hooks...))
	}
	return db.OpenWithDriver(c.Driver, c.DriverOptions(), c.DBConfig(hooks...))
}

// MigrationURL converts the configured database into a golang-migrate URL.
// Postgres URLs pass through; a sqlite3 DSN gains the sqlite3:// scheme.
// Without a database url the URL is assembled from the DB* fields.
func (c Config) MigrationURL() string {
	if c.DatabaseURL == "" {
		return c.structuredMigrationURL()
	}
	if c.Driver == "sqlite3" && !strings.HasPrefix(c.DatabaseURL, "sqlite3://") {
		return "sqlite3://" + c.DatabaseURL
	}
	return c.DatabaseURL
}

func (c Config) structuredMigrationURL() string {
	if c.Driver == "sqlite3" {
		return "sqlite3://" + c.DBName
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	switch {
	case c.DBUser != "" && c.DBPassword != "":
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	case c.DBUser != "":
		u.User = url.User(c.DBUser)
	}
	if c.DBSSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.DBSSLMode}}.Encode()
	}
	return u.String()
}
