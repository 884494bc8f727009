package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	dialectPostgres = "postgres"
	// insertBatchSize bounds the rows of one INSERT statement.
	insertBatchSize = 500
)

// Execer runs one SQL statement. *pgxpool.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink appends tables to Postgres, creating them on first use.
type PostgresSink struct {
	db     Execer
	pool   *pgxpool.Pool // owned when opened through OpenPostgres
	prefix string
}

// NewPostgresSink writes through db. Table names get prefix prepended.
func NewPostgresSink(db Execer, prefix string) *PostgresSink {
	return &PostgresSink{db: db, prefix: prefix}
}

// OpenPostgres connects a pool to dsn.
func OpenPostgres(ctx context.Context, dsn, prefix string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &PostgresSink{db: pool, pool: pool, prefix: prefix}, nil
}

// Close releases the pool opened by OpenPostgres.
func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Write creates each table if missing and inserts its rows.
func (s *PostgresSink) Write(ctx context.Context, tables ...Table) error {
	for _, t := range tables {
		if _, err := s.db.Exec(ctx, s.CreateTableSQL(t)); err != nil {
			return fmt.Errorf("creating table %s: %w", s.tableName(t), err)
		}
		stmts, err := s.InsertSQL(t)
		if err != nil {
			return err
		}
		for _, st := range stmts {
			if _, err := s.db.Exec(ctx, st.SQL, st.Args...); err != nil {
				return fmt.Errorf("inserting into %s: %w", s.tableName(t), err)
			}
		}
		logrus.Debugf("postgres: wrote %d rows to %s", len(t.Rows), s.tableName(t))
	}
	return nil
}

// Statement is a prepared SQL statement with its arguments.
type Statement struct {
	SQL  string
	Args []any
}

// CreateTableSQL returns the DDL for t.
func (s *PostgresSink) CreateTableSQL(t Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = fmt.Sprintf("%q %s", c.Name, c.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", s.tableName(t), strings.Join(cols, ", "))
}

// InsertSQL builds batched, parameterized INSERT statements for the rows of t.
func (s *PostgresSink) InsertSQL(t Table) ([]Statement, error) {
	var out []Statement
	cols := make([]any, len(t.Columns))
	for i, name := range t.ColumnNames() {
		cols[i] = name
	}
	for start := 0; start < len(t.Rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(t.Rows))
		ds := goqu.Dialect(dialectPostgres).
			Insert(s.tableName(t)).
			Prepared(true).
			Cols(cols...)
		for _, row := range t.Rows[start:end] {
			ds = ds.Vals(row)
		}
		sql, args, err := ds.ToSQL()
		if err != nil {
			return nil, fmt.Errorf("building insert for %s: %w", s.tableName(t), err)
		}
		out = append(out, Statement{SQL: sql, Args: args})
	}
	return out, nil
}

func (s *PostgresSink) tableName(t Table) string {
	return s.prefix + t.Name
}
