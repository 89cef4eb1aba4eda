package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"

	DefaultMongoURI = "mongodb://localhost:27017/test"
)

// Config holds environment-driven configuration.
type Config struct {
	Store struct {
		Driver string // mongo (default), mysql, memory
	}
	Mongo struct {
		URI      string // default: mongodb://localhost:27017/test
		Database string // optional, overrides the database in URI
	}
	MySQL struct {
		DSN string // e.g., user:pass@tcp(host:3306)/dbname?parseTime=true
	}
	Seed struct {
		PlanPath      string
		MaxAttempts   int
		HashPasswords bool
		FakerSeed     int64 // 0 means random
	}
}

// LoadDotEnv loads variables from the given files (".env" by default)
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config

	cfg.Store.Driver = strings.ToLower(os.Getenv("STORE_DRIVER"))
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverMongo
	}

	cfg.Mongo.URI = os.Getenv("MONGO_URI")
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = DefaultMongoURI
	}
	cfg.Mongo.Database = os.Getenv("MONGO_DATABASE")

	cfg.MySQL.DSN = os.Getenv("MYSQL_DSN")

	switch cfg.Store.Driver {
	case DriverMongo, DriverMemory:
	case DriverMySQL:
		if cfg.MySQL.DSN == "" {
			return cfg, errors.New("MYSQL_DSN is required when STORE_DRIVER=mysql")
		}
	default:
		return cfg, fmt.Errorf("STORE_DRIVER must be one of mongo, mysql, memory; got %q", cfg.Store.Driver)
	}

	cfg.Seed.PlanPath = os.Getenv("SEED_PLAN")
	if v := os.Getenv("SEED_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, errors.New("SEED_MAX_ATTEMPTS must be a positive integer")
		}
		cfg.Seed.MaxAttempts = n
	}
	if v := os.Getenv("SEED_HASH_PASSWORDS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.New("SEED_HASH_PASSWORDS must be a boolean")
		}
		cfg.Seed.HashPasswords = b
	}
	if v := os.Getenv("SEED_FAKER_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, errors.New("SEED_FAKER_SEED must be an integer")
		}
		cfg.Seed.FakerSeed = n
	}

	return cfg, nil
}
