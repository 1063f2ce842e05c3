package main

import (
	"context"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/config"
	"github.com/AdamBeresnev/koe-contest/internal/db"
)

type commandContext struct {
	driverFlag   *string
	databaseFlag *string

	configOnce sync.Once
	config     config.Config
	configErr  error

	dbOnce sync.Once
	db     *sqlx.DB
	dbErr  error
}

func newCommandContext(driverFlag, databaseFlag *string) *commandContext {
	return &commandContext{
		driverFlag:   driverFlag,
		databaseFlag: databaseFlag,
	}
}

// ensureConfig reads the environment without the server-only checks, so no JWT secret is needed here.
func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Parse()
		if err != nil {
			c.configErr = err
			return
		}
		if v := strings.TrimSpace(*c.driverFlag); v != "" {
			cfg.DatabaseDriver = v
		}
		if v := strings.TrimSpace(*c.databaseFlag); v != "" {
			cfg.DatabaseURL = v
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// database opens the configured store once per invocation and applies pending migrations.
func (c *commandContext) database(ctx context.Context) (*sqlx.DB, error) {
	c.dbOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.dbErr = err
			return
		}
		conn, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			c.dbErr = err
			return
		}
		if err := db.RunMigrations(conn); err != nil {
			conn.Close()
			c.dbErr = err
			return
		}
		c.db = conn
	})
	return c.db, c.dbErr
}

func (c *commandContext) close() {
	if c.db != nil {
		c.db.Close()
	}
}
