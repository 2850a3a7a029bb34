// Package sqlstore implements service.Service on a SQL table, backed by
// SQLite for local use or MySQL for a shared server.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"countdo/internal/logging"
	"countdo/internal/service"
)

// QueryTimeout bounds every statement.
const QueryTimeout = 5 * time.Second

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Store is a service.Service over one table.
type Store struct {
	db     *sql.DB
	driver string
	table  string
	logger *log.Logger
}

// Open connects to the database and creates the task table if needed.
//
// For SQLite the connection is configured with:
//   - WAL mode for concurrent reads during writes
//   - a 5-second busy timeout for lock contention
//   - a single open connection
func Open(driver, dsn, table string, logger *log.Logger) (*Store, error) {
	if driver != DriverSQLite && driver != DriverMySQL {
		return nil, fmt.Errorf("unsupported sql driver: %q", driver)
	}
	if table == "" {
		table = service.DefaultCollection
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), QueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite only supports one writer at a time
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	s := &Store{db: db, driver: driver, table: table, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// migrate creates the task table. seq keeps insertion order; id is the
// public identifier.
func (s *Store) migrate(ctx context.Context) error {
	var ddl string
	switch s.driver {
	case DriverSQLite:
		ddl = `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    text TEXT NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0,
    deadline TEXT NOT NULL
)`
	case DriverMySQL:
		ddl = `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
    seq BIGINT PRIMARY KEY AUTO_INCREMENT,
    id VARCHAR(36) NOT NULL UNIQUE,
    text TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    deadline VARCHAR(64) NOT NULL
)`
	}
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// ListAll returns every row in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT id, text, completed, deadline FROM `+s.table+` ORDER BY seq`)
	if err != nil {
		return nil, wrapError("list", "", err)
	}
	defer rows.Close()

	var result []service.Task
	for rows.Next() {
		var t service.Task
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed, &t.Deadline); err != nil {
			return nil, wrapError("list", "", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list", "", err)
	}

	s.logger.Debug("sql list", "table", s.table, "count", len(result))
	return result, nil
}

// Create inserts a row with a fresh UUID and completed set to false.
func (s *Store) Create(ctx context.Context, text, deadline string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.table+` (id, text, completed, deadline) VALUES (?, ?, ?, ?)`,
		id, text, false, deadline)
	if err != nil {
		return "", wrapError("create", "", err)
	}

	s.logger.Debug("sql create", "id", id)
	return id, nil
}

// UpdateFields sets only the given columns of one row.
func (s *Store) UpdateFields(ctx context.Context, id string, fields service.Fields) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	if fields.Empty() {
		return s.mustExist(ctx, "update", id)
	}

	var (
		sets []string
		args []any
	)
	if fields.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *fields.Text)
	}
	if fields.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *fields.Completed)
	}
	if fields.Deadline != nil {
		sets = append(sets, "deadline = ?")
		args = append(args, *fields.Deadline)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE `+s.table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return wrapError("update", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapError("update", id, err)
	}
	// MySQL reports zero affected rows when the values did not change.
	if n == 0 {
		if err := s.mustExist(ctx, "update", id); err != nil {
			return err
		}
	}

	s.logger.Debug("sql update", "id", id, "fields", strings.Join(fields.Paths(), ","))
	return nil
}

// Delete removes one row. A missing row is an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = ?`, id)
	if err != nil {
		return wrapError("delete", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapError("delete", id, err)
	}
	if n == 0 {
		return service.Wrap("delete", id, service.ErrNotFound)
	}

	s.logger.Debug("sql delete", "id", id)
	return nil
}

func (s *Store) mustExist(ctx context.Context, op, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM `+s.table+` WHERE id = ?`, id).Scan(&one)
	if err != nil {
		return wrapError(op, id, err)
	}
	return nil
}

func wrapError(op, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return service.Wrap(op, id, service.ErrNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		return service.Wrap(op, id, fmt.Errorf("%w: %v", service.ErrTimeout, err))
	}
	return service.Wrap(op, id, err)
}
