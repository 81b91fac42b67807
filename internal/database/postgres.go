package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// postgresBackend targets a serverless Postgres endpoint. There is no
// connection lifecycle to manage: each query dials a fresh one-shot
// connection and closes it before returning, the way serverless SQL
// providers expect to be driven.
type postgresBackend struct {
	connCfg *pgx.ConnConfig
}

func newPostgresBackend(url string) (*postgresBackend, error) {
	cfg, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	return &postgresBackend{connCfg: cfg}, nil
}

func (b *postgresBackend) kind() BackendKind { return BackendPostgres }

func (b *postgresBackend) query(ctx context.Context, stmt string, params []any) ([]Row, error) {
	conn, err := pgx.ConnectConfig(ctx, b.connCfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, rebindPostgres(stmt), params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (b *postgresBackend) close() error { return nil }

// rebindPostgres rewrites `?` placeholders to the `$n` form Postgres
// expects, leaving quoted literals alone. Callers write one placeholder
// dialect regardless of which backend resolved.
func rebindPostgres(stmt string) string {
	var sb []byte
	n := 0
	inQuote := false
	for i := 0; i < len(stmt); i++ {
		ch := stmt[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			sb = append(sb, ch)
		case ch == '?' && !inQuote:
			n++
			sb = append(sb, fmt.Sprintf("$%d", n)...)
		default:
			sb = append(sb, ch)
		}
	}
	return string(sb)
}
