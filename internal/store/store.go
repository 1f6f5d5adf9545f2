// Package store keeps the results of sheet runs in a SQL database. SQLite,
// MySQL and PostgreSQL are supported through database/sql.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"arevel/internal/sheet"
	"arevel/internal/value"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	SQLite   = "sqlite3"
	MySQL    = "mysql"
	Postgres = "postgres"
)

// ConnectionState is an open database and the transaction in progress, if any.
// Statements go through the transaction while one is open.
type ConnectionState struct {
	DB *sql.DB
	Tx *sql.Tx
}

type Store struct {
	driver string
	state  ConnectionState
}

// Record is one stored cell result.
type Record struct {
	RunID  int64
	CellID uint64
	Name   string
	Input  string
	Result value.Value
	Repr   string
	Error  string
}

// Run describes one stored evaluation of a sheet.
type Run struct {
	ID      int64
	Sheet   string
	Created time.Time
	Cells   int
}

func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case SQLite, MySQL, Postgres:
	case "":
		driver = SQLite
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	if dsn == "" {
		return nil, errors.New("store dsn is empty")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		slog.Error("failed to open store", slog.String("driver", driver), slog.Any("error", err))
		return nil, err
	}
	if driver == SQLite {
		db.SetMaxOpenConns(1)
	}
	slog.Debug("store opened", slog.String("driver", driver))
	return &Store{driver: driver, state: ConnectionState{DB: db}}, nil
}

func (s *Store) Driver() string {
	return s.driver
}

// Close rolls back an open transaction and closes the database.
func (s *Store) Close() error {
	if s.state.Tx != nil {
		_ = s.state.Tx.Rollback()
		s.state.Tx = nil
	}
	if s.state.DB == nil {
		return nil
	}
	err := s.state.DB.Close()
	s.state.DB = nil
	return err
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != Postgres {
		return query
	}
	var out strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			out.WriteByte('$')
			out.WriteString(strconv.Itoa(n))
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	query = s.rebind(query)
	if s.state.Tx != nil {
		return s.state.Tx.ExecContext(ctx, query, args...)
	}
	return s.state.DB.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	query = s.rebind(query)
	if s.state.Tx != nil {
		return s.state.Tx.QueryContext(ctx, query, args...)
	}
	return s.state.DB.QueryContext(ctx, query, args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	query = s.rebind(query)
	if s.state.Tx != nil {
		return s.state.Tx.QueryRowContext(ctx, query, args...)
	}
	return s.state.DB.QueryRowContext(ctx, query, args...)
}

func (s *Store) begin(ctx context.Context) error {
	if s.state.Tx != nil {
		return errors.New("transaction already in progress")
	}
	tx, err := s.state.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	s.state.Tx = tx
	return nil
}

func (s *Store) commit() error {
	if s.state.Tx == nil {
		return errors.New("no transaction in progress")
	}
	err := s.state.Tx.Commit()
	s.state.Tx = nil
	return err
}

func (s *Store) rollback() {
	if s.state.Tx == nil {
		return
	}
	if err := s.state.Tx.Rollback(); err != nil {
		slog.Warn("rollback failed", slog.Any("error", err))
	}
	s.state.Tx = nil
}

func (s *Store) serialColumn() string {
	switch s.driver {
	case MySQL:
		return "BIGINT AUTO_INCREMENT PRIMARY KEY"
	case Postgres:
		return "BIGSERIAL PRIMARY KEY"
	default:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

// Migrate creates the tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id ` + s.serialColumn() + `,
			sheet VARCHAR(255) NOT NULL,
			created VARCHAR(40) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id BIGINT NOT NULL,
			cell_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			input TEXT NOT NULL,
			result VARCHAR(16) NOT NULL,
			repr TEXT NOT NULL,
			error TEXT NOT NULL,
			PRIMARY KEY (run_id, cell_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) insertRun(ctx context.Context, name string, created time.Time) (int64, error) {
	stamp := created.UTC().Format(time.RFC3339Nano)
	if s.driver == Postgres {
		var id int64
		err := s.queryRow(ctx, "INSERT INTO runs (sheet, created) VALUES (?, ?) RETURNING id", name, stamp).Scan(&id)
		return id, err
	}
	result, err := s.exec(ctx, "INSERT INTO runs (sheet, created) VALUES (?, ?)", name, stamp)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// SaveRun stores the results of one run in a single transaction and returns
// the new run id.
func (s *Store) SaveRun(ctx context.Context, name string, results []sheet.CellResult) (int64, error) {
	if err := s.begin(ctx); err != nil {
		return 0, err
	}
	runID, err := s.insertRun(ctx, name, time.Now())
	if err != nil {
		s.rollback()
		return 0, fmt.Errorf("save run: %w", err)
	}
	for _, r := range results {
		_, err := s.exec(ctx,
			"INSERT INTO results (run_id, cell_id, name, input, result, repr, error) VALUES (?, ?, ?, ?, ?, ?, ?)",
			runID, int64(r.ID), r.Name, r.Input, formatWord(r.Value), r.Repr, r.Error)
		if err != nil {
			s.rollback()
			return 0, fmt.Errorf("save cell %d: %w", r.ID, err)
		}
	}
	if err := s.commit(); err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	slog.Debug("run saved", slog.Int64("run", runID), slog.Int("cells", len(results)))
	return runID, nil
}

// LoadRun returns the stored results of a run in cell order.
func (s *Store) LoadRun(ctx context.Context, runID int64) ([]Record, error) {
	rows, err := s.query(ctx,
		"SELECT cell_id, name, input, result, repr, error FROM results WHERE run_id = ? ORDER BY cell_id",
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			cellID int64
			word   string
			r      = Record{RunID: runID}
		)
		if err := rows.Scan(&cellID, &r.Name, &r.Input, &word, &r.Repr, &r.Error); err != nil {
			return nil, err
		}
		r.CellID = uint64(cellID)
		if r.Result, err = parseWord(word); err != nil {
			return nil, fmt.Errorf("run %d cell %d: %w", runID, cellID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Runs lists the stored runs of a sheet, newest first.
func (s *Store) Runs(ctx context.Context, name string) ([]Run, error) {
	rows, err := s.query(ctx, `SELECT r.id, r.sheet, r.created, COUNT(c.cell_id)
		FROM runs r LEFT JOIN results c ON c.run_id = r.id
		WHERE r.sheet = ?
		GROUP BY r.id, r.sheet, r.created
		ORDER BY r.id DESC`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run   Run
			stamp string
		)
		if err := rows.Scan(&run.ID, &run.Sheet, &stamp, &run.Cells); err != nil {
			return nil, err
		}
		if run.Created, err = time.Parse(time.RFC3339Nano, stamp); err != nil {
			return nil, fmt.Errorf("run %d: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func formatWord(v value.Value) string {
	return fmt.Sprintf("%016X", uint64(v))
}

func parseWord(s string) (value.Value, error) {
	raw, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid result word %q: %w", s, err)
	}
	return value.Value(raw), nil
}
