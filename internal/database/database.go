// Package database selects and wraps the SQL backend.
//
// Two structurally different backends are supported: a serverless Postgres
// endpoint (one-shot connections, no pool to manage) and a conventional
// MySQL server behind a bounded connection pool. The selection happens once
// per process; after that every Query call is relayed to whichever backend
// resolved, and callers never see which one it was.
package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	apperrors "sloozify/internal/errors"
)

// providerMarker identifies a serverless-provider connection string.
// Its presence in DATABASE_URL gives the Postgres backend first priority.
const providerMarker = "neon"

// BackendKind identifies which backend resolved.
type BackendKind string

const (
	BackendPostgres BackendKind = "postgres"
	BackendMySQL    BackendKind = "mysql"
	BackendNone     BackendKind = "none"
)

// Config holds the connection parameters for both backends. Derived once
// from the environment at startup; absence of everything is a valid state.
type Config struct {
	// PrimaryURL is the serverless Postgres connection string.
	PrimaryURL string

	MySQLHost     string
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string
	// PoolSize caps concurrent MySQL connections. Callers beyond the cap
	// wait; there is no queue limit.
	PoolSize int
}

// Row is a single result record, keyed by column name.
type Row map[string]any

// backend is the resolved query target. Exactly one implementation is live
// per process, or none at all.
type backend interface {
	kind() BackendKind
	query(ctx context.Context, stmt string, params []any) ([]Row, error)
	close() error
}

// Client routes queries to the resolved backend. Safe for concurrent use;
// the first caller (or racing callers) to need the database triggers a
// single selection attempt whose outcome everyone shares.
type Client struct {
	cfg Config

	once   sync.Once
	active backend // nil when no backend resolved
}

// New returns an unresolved client. No connection work happens until
// Initialize or the first Query.
func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Initialize resolves the backend. Idempotent: the selection runs at most
// once per client, and every caller observes the same outcome. Returns
// ErrNoConnection if no backend could be resolved; that outcome is final
// for the lifetime of the process.
func (c *Client) Initialize(ctx context.Context) error {
	c.once.Do(func() { c.selectBackend(ctx) })
	if c.active == nil {
		return apperrors.ErrNoConnection
	}
	return nil
}

// selectBackend tries each backend in priority order and keeps the first
// that constructs successfully. A failed attempt on one backend permits
// exactly one attempt on the other; it never loops.
func (c *Client) selectBackend(ctx context.Context) {
	// 1. Serverless Postgres, when the URL carries the provider marker.
	if c.cfg.PrimaryURL != "" && strings.Contains(c.cfg.PrimaryURL, providerMarker) {
		b, err := newPostgresBackend(c.cfg.PrimaryURL)
		if err == nil {
			log.Printf("[db] using serverless postgres backend")
			c.active = b
			return
		}
		log.Printf("[db] postgres backend unavailable, trying mysql: %v", err)
	}

	// 2. Pooled MySQL.
	if c.cfg.MySQLHost != "" {
		b, err := newMySQLBackend(c.cfg)
		if err == nil {
			log.Printf("[db] using pooled mysql backend (max %d conns)", b.db.Stats().MaxOpenConnections)
			c.active = b
			return
		}
		log.Printf("[db] mysql backend unavailable: %v", err)
	}

	// 3. Any Postgres URL at all, as a last resort.
	if c.cfg.PrimaryURL != "" {
		b, err := newPostgresBackend(c.cfg.PrimaryURL)
		if err == nil {
			log.Printf("[db] using postgres backend as fallback")
			c.active = b
			return
		}
		log.Printf("[db] fallback postgres backend unavailable: %v", err)
	}

	log.Printf("[db] no database configured; queries will fail fast")
}

// Kind reports which backend resolved, or BackendNone. Triggers selection
// if it has not run yet.
func (c *Client) Kind() BackendKind {
	c.once.Do(func() { c.selectBackend(context.Background()) })
	if c.active == nil {
		return BackendNone
	}
	return c.active.kind()
}

// Query executes stmt with `?` placeholders against the resolved backend
// and returns the result rows. The statement is not interpreted here;
// placeholder syntax is translated for the backend when needed.
//
// Fails with ErrNoConnection when no backend resolved, or with an error
// wrapping ErrQueryFailed (and the driver error) when the statement itself
// failed. Callers are expected to treat the latter as a signal to fall back,
// not as fatal.
func (c *Client) Query(ctx context.Context, stmt string, params ...any) ([]Row, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	rows, err := c.active.query(ctx, stmt, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}
	return rows, nil
}

// Close releases the resolved backend, if any.
func (c *Client) Close() error {
	if c.active == nil {
		return nil
	}
	return c.active.close()
}
