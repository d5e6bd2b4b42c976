// Package app provides the application container holding all dependencies.
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/driftnotes/drift-sync-service/pkg/workerpool"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig is the application configuration.
type AppConfig struct {
	File     string         `yaml:"-"` // config file path, not serialized
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Remote   RemoteConfig   `yaml:"remote"`
	Sync     SyncConfig     `yaml:"sync"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// RunMode is debug or release
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort is the HTTP listen address
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout in seconds
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout in seconds
	WriteTimeout int `yaml:"write-timeout" default:"60"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a zapcore level name, see zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File is the log file path
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production enables JSON output and rotation
	Production bool `yaml:"production" default:"true"`
	// MaxSize is the rotated file size limit in megabytes
	MaxSize int `yaml:"max-size" default:"64"`
	// MaxBackups is the number of rotated files to retain
	MaxBackups int `yaml:"max-backups" default:"7"`
}

// DatabaseConfig configures the local database.
type DatabaseConfig struct {
	// Type is sqlite, mysql or postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path is the SQLite database file path
	Path string `yaml:"path" default:"storage/database/db.sqlite3"`
	// UserName for mysql/postgres
	UserName string `yaml:"username"`
	// Password for mysql/postgres
	Password string `yaml:"password"`
	// Host for mysql/postgres
	Host string `yaml:"host"`
	// Name is the database name
	Name string `yaml:"name"`
	// TablePrefix prepends every table name
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate runs schema migration at startup
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// MaxIdleConns defaults to 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns defaults to 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime like 30m or 1h
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
}

// RemoteConfig configures the remote replica table.
type RemoteConfig struct {
	// BaseURL is the REST root of the remote store
	BaseURL string `yaml:"base-url"`
	// APIKey authenticates against the remote store
	APIKey string `yaml:"api-key"`
	// Table is the replicated table name
	Table string `yaml:"table" default:"notes"`
}

// SyncConfig configures the sync engine.
type SyncConfig struct {
	// PullSchedule is a cron spec driving the periodic pull
	PullSchedule string `yaml:"pull-schedule" default:"@every 30s"`
	// ProbeInterval is the connectivity probe interval, like 30s
	ProbeInterval string `yaml:"probe-interval" default:"30s"`
	// Worker pool sizing for concurrent pushes
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"8"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"256"`
}

// LoadConfig loads the configuration from a file, applying defaults both
// before and after parsing so empty YAML fields fall back too.
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	return c, realpath, nil
}

// Save writes the configuration back to its file.
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetWorkerPoolConfig builds the push pool configuration.
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()

	if c.Sync.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.Sync.WorkerPoolMaxWorkers
	}
	if c.Sync.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.Sync.WorkerPoolQueueSize
	}

	return cfg
}

// GetProbeInterval parses the connectivity probe interval.
func (c *AppConfig) GetProbeInterval() time.Duration {
	if d, err := time.ParseDuration(c.Sync.ProbeInterval); err == nil {
		return d
	}
	return 30 * time.Second
}

// GetConnMaxLifetime parses the database connection lifetime.
func (c *AppConfig) GetConnMaxLifetime() time.Duration {
	if d, err := time.ParseDuration(c.Database.ConnMaxLifetime); err == nil {
		return d
	}
	return 30 * time.Minute
}
