package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// unmarshalJSON unmarshals JSON and logs any errors without failing.
// Result lists are informational, a corrupt column should not hide the run.
func unmarshalJSON(data string, v any, field string, id string) {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		slog.Warn("failed to unmarshal JSON field",
			"field", field,
			"id", id,
			"error", err.Error(),
			"dataLen", len(data))
	}
}

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage creates a new SQLite storage instance. dbPath may be
// MemoryPath for a database that lives as long as the storage.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	var dsn string
	if dbPath == MemoryPath {
		dsn = MemoryPath + "?_foreign_keys=ON"
	} else {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = fmt.Sprintf("%s?_journal=WAL&_sync=NORMAL&_cache_size=10000&_foreign_keys=ON", dbPath)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLiteStorage{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS deployments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network TEXT NOT NULL,
		chain_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		tx_hash TEXT NOT NULL,
		block_number INTEGER DEFAULT 0,
		deployer TEXT,
		code_hash TEXT NOT NULL,
		constructor_args TEXT,
		abi TEXT,
		confirmations INTEGER DEFAULT 1,
		created_at DATETIME NOT NULL,
		UNIQUE(network, name)
	);

	CREATE INDEX IF NOT EXISTS idx_deployments_network ON deployments(network);

	CREATE TABLE IF NOT EXISTS harness_runs (
		id TEXT PRIMARY KEY,
		suite TEXT NOT NULL,
		network TEXT NOT NULL,
		chain_id INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME,
		status TEXT DEFAULT 'running',
		passed INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		error_message TEXT,
		results TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_harness_runs_started ON harness_runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS gas_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		contract TEXT NOT NULL,
		method TEXT NOT NULL,
		gas_used INTEGER NOT NULL,
		tx_hash TEXT,
		FOREIGN KEY (run_id) REFERENCES harness_runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_gas_samples_run ON gas_samples(run_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Columns added after the first schema; applied only when missing.
	migrations := []struct {
		table  string
		column string
		ddl    string
	}{
		{"deployments", "gas_used", "ALTER TABLE deployments ADD COLUMN gas_used INTEGER DEFAULT 0"},
		{"deployments", "verified", "ALTER TABLE deployments ADD COLUMN verified INTEGER DEFAULT 0"},
	}

	for _, m := range migrations {
		if !s.columnExists(m.table, m.column) {
			if _, err := s.db.Exec(m.ddl); err != nil {
				return fmt.Errorf("migration %s.%s: %w", m.table, m.column, err)
			}
		}
	}

	return nil
}

// columnExists checks if a column exists in a table.
// Table and column names are validated since they are formatted into the query.
func (s *SQLiteStorage) columnExists(table, column string) bool {
	if !isValidIdentifier(table) || !isValidIdentifier(column) {
		return false
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name = '%s'", table, column)
	var count int
	if err := s.db.QueryRow(query).Scan(&count); err != nil {
		return false
	}
	return count > 0
}

// isValidIdentifier checks if a string is a valid SQLite identifier.
// Only allows alphanumeric characters and underscore.
func isValidIdentifier(s string) bool {
	if len(s) == 0 || len(s) > 128 {
		return false
	}
	for _, c := range s {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return true
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveDeployment inserts a deployment or replaces the one recorded for the
// same network and name. The record's ID and CreatedAt are filled in.
func (s *SQLiteStorage) SaveDeployment(ctx context.Context, d *Deployment) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deployments (network, chain_id, name, address, tx_hash, block_number, deployer,
			code_hash, constructor_args, abi, confirmations, gas_used, verified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(network, name) DO UPDATE SET
			chain_id = excluded.chain_id,
			address = excluded.address,
			tx_hash = excluded.tx_hash,
			block_number = excluded.block_number,
			deployer = excluded.deployer,
			code_hash = excluded.code_hash,
			constructor_args = excluded.constructor_args,
			abi = excluded.abi,
			confirmations = excluded.confirmations,
			gas_used = excluded.gas_used,
			verified = excluded.verified,
			created_at = excluded.created_at
	`, d.Network, d.ChainID, d.Name, d.Address, d.TxHash, d.BlockNumber, nullString(d.Deployer),
		d.CodeHash, nullString(d.ConstructorArgs), nullString(d.ABI), d.Confirmations, d.GasUsed, d.Verified, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save deployment %s/%s: %w", d.Network, d.Name, err)
	}

	return s.db.QueryRowContext(ctx,
		"SELECT id FROM deployments WHERE network = ? AND name = ?", d.Network, d.Name,
	).Scan(&d.ID)
}

const deploymentColumns = `id, network, chain_id, name, address, tx_hash, block_number,
	COALESCE(deployer, ''), code_hash, COALESCE(constructor_args, ''), COALESCE(abi, ''),
	confirmations, COALESCE(gas_used, 0), COALESCE(verified, 0), created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDeployment(row scanner) (*Deployment, error) {
	var d Deployment
	err := row.Scan(&d.ID, &d.Network, &d.ChainID, &d.Name, &d.Address, &d.TxHash, &d.BlockNumber,
		&d.Deployer, &d.CodeHash, &d.ConstructorArgs, &d.ABI,
		&d.Confirmations, &d.GasUsed, &d.Verified, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDeployment returns the deployment recorded for name on network.
func (s *SQLiteStorage) GetDeployment(ctx context.Context, network, name string) (*Deployment, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+deploymentColumns+" FROM deployments WHERE network = ? AND name = ?", network, name)
	d, err := scanDeployment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deployment %s on %s: %w", name, network, ErrNotFound)
	}
	return d, err
}

// ListDeployments returns deployments ordered by network and id. An empty
// network lists every network.
func (s *SQLiteStorage) ListDeployments(ctx context.Context, network string) ([]Deployment, error) {
	query := "SELECT " + deploymentColumns + " FROM deployments"
	var args []any
	if network != "" {
		query += " WHERE network = ?"
		args = append(args, network)
	}
	query += " ORDER BY network, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Deployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// DeleteDeployments forgets every deployment recorded for network.
func (s *SQLiteStorage) DeleteDeployments(ctx context.Context, network string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM deployments WHERE network = ?", network)
	return err
}

// MarkVerified flags a deployment as verified on the block explorer.
func (s *SQLiteStorage) MarkVerified(ctx context.Context, network, name string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE deployments SET verified = 1 WHERE network = ? AND name = ?", network, name)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("deployment %s on %s: %w", name, network, ErrNotFound)
	}
	return nil
}

// CreateRun records the start of a harness run.
func (s *SQLiteStorage) CreateRun(ctx context.Context, run *Run) error {
	if run.Status == "" {
		run.Status = RunStatusRunning
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO harness_runs (id, suite, network, chain_id, started_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Suite, run.Network, run.ChainID, run.StartedAt, run.Status)
	return err
}

// CompleteRun stores the final status, counters and results of a run.
func (s *SQLiteStorage) CompleteRun(ctx context.Context, run *Run) error {
	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if run.CompletedAt == nil {
		now := time.Now().UTC()
		run.CompletedAt = &now
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE harness_runs SET
			completed_at = ?, status = ?, passed = ?, failed = ?, skipped = ?,
			error_message = ?, results = ?
		WHERE id = ?
	`, *run.CompletedAt, run.Status, run.Passed, run.Failed, run.Skipped,
		nullString(run.ErrorMessage), string(resultsJSON), run.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

const runColumns = `id, suite, network, chain_id, started_at, completed_at, status,
	passed, failed, skipped, COALESCE(error_message, ''), COALESCE(results, '')`

func scanRun(row scanner) (*Run, error) {
	var (
		run         Run
		completedAt sql.NullTime
		results     string
	)
	err := row.Scan(&run.ID, &run.Suite, &run.Network, &run.ChainID, &run.StartedAt, &completedAt, &run.Status,
		&run.Passed, &run.Failed, &run.Skipped, &run.ErrorMessage, &results)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if results != "" {
		unmarshalJSON(results, &run.Results, "results", run.ID)
	}
	return &run, nil
}

// GetRun retrieves a single run by ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM harness_runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// ListRuns returns a page of runs, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit, offset int) (*PaginatedRuns, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM harness_runs").Scan(&total); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM harness_runs ORDER BY started_at DESC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &PaginatedRuns{
		Runs:   runs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// BulkInsertGasSamples inserts the gas samples of a run in one transaction.
func (s *SQLiteStorage) BulkInsertGasSamples(ctx context.Context, runID string, samples []GasSample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO gas_samples (run_id, contract, method, gas_used, tx_hash)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sample := range samples {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := stmt.ExecContext(ctx, runID, sample.Contract, sample.Method, sample.GasUsed, nullString(sample.TxHash)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetGasSamples returns the gas samples of a run in insertion order.
func (s *SQLiteStorage) GetGasSamples(ctx context.Context, runID string) ([]GasSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT contract, method, gas_used, COALESCE(tx_hash, '')
		FROM gas_samples
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []GasSample
	for rows.Next() {
		var sample GasSample
		if err := rows.Scan(&sample.Contract, &sample.Method, &sample.GasUsed, &sample.TxHash); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// nullString converts empty strings to NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
