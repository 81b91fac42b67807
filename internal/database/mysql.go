package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

const defaultPoolSize = 10

// mysqlBackend targets a conventional MySQL server through a bounded
// connection pool. database/sql enforces the cap: callers beyond
// MaxOpenConns block until a connection frees up, without a queue limit.
type mysqlBackend struct {
	db *sql.DB
}

func newMySQLBackend(cfg Config) (*mysqlBackend, error) {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.MySQLHost
	mc.User = cfg.MySQLUser
	mc.Passwd = cfg.MySQLPassword
	mc.DBName = cfg.MySQLDatabase
	mc.ParseTime = true

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql pool: %w", err)
	}

	size := cfg.PoolSize
	if size <= 0 {
		size = defaultPoolSize
	}
	db.SetMaxOpenConns(size)
	db.SetMaxIdleConns(size)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &mysqlBackend{db: db}, nil
}

func (b *mysqlBackend) kind() BackendKind { return BackendMySQL }

func (b *mysqlBackend) query(ctx context.Context, stmt string, params []any) ([]Row, error) {
	rows, err := b.db.QueryContext(ctx, stmt, params...)
	if err != nil {
		return nil, err
	}
	// Closing the rows returns the pooled connection on every exit path,
	// including scan failures.
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			// The driver hands text columns back as raw bytes.
			if raw, ok := values[i].([]byte); ok {
				row[col] = string(raw)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (b *mysqlBackend) close() error { return b.db.Close() }
