// Package dao implements the data access layer
package dao

import (
	"fmt"
	"time"

	"github.com/driftnotes/drift-sync-service/internal/model"
	"github.com/driftnotes/drift-sync-service/pkg/fileurl"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig selects and tunes the local store's database engine.
type DatabaseConfig struct {
	Type            string // sqlite, mysql or postgres
	Path            string // sqlite file path
	UserName        string
	Password        string
	Host            string
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	RunMode         string
}

// Dao bundles the gorm handle shared by the repositories.
type Dao struct {
	db *gorm.DB
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Dao {
	return &Dao{db: db}
}

// DB exposes the underlying gorm handle.
func (d *Dao) DB() *gorm.DB {
	return d.db
}

func dialector(c *DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "sqlite", "":
		if c.Path != ":memory:" {
			if err := fileurl.CreatePath(c.Path, 0o755); err != nil {
				return nil, errors.Wrap(err, "create sqlite path")
			}
		}
		return sqlite.Open(c.Path), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.UserName, c.Password, c.Host, c.Name)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.Host, c.UserName, c.Password, c.Name)
		return postgres.Open(dsn), nil
	default:
		return nil, errors.Errorf("unsupported database type %q", c.Type)
	}
}

// NewDBEngine opens the local store database and runs migrations.
func NewDBEngine(c *DatabaseConfig) (*gorm.DB, error) {
	dial, err := dialector(c)
	if err != nil {
		return nil, err
	}

	logMode := logger.Default.LogMode(logger.Silent)
	if c.RunMode == "debug" {
		logMode = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logMode,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	}

	if c.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			return nil, errors.Wrap(err, "auto migrate")
		}
	}

	return db, nil
}
