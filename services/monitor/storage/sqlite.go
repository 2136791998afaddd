package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iulianpascalau/device-health-check/services/monitor/common"
	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const (
	defaultHistoryLength    = 100
	minCleanIntervalSeconds = 60
)

var log = logger.GetOrCreate("storage")

// sqliteStorage is the sqlite implementation for check results storage
type sqliteStorage struct {
	db               *sql.DB
	retentionSeconds int
	historyLength    int
	cancelFunc       context.CancelFunc
	wg               sync.WaitGroup
}

// NewSQLiteStorage creates the database, schema, and starts the retention cleaner
func NewSQLiteStorage(dbPath string, retentionSeconds int, historyLength int) (*sqliteStorage, error) {
	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial empty DB file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = createSchema(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if historyLength <= 0 {
		historyLength = defaultHistoryLength
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &sqliteStorage{
		db:               db,
		retentionSeconds: retentionSeconds,
		historyLength:    historyLength,
		cancelFunc:       cancel,
	}

	if retentionSeconds > 0 {
		s.startRetentionCleaner(ctx)
	}

	return s, nil
}

func prepareDirectories(dbPath string) error {
	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS checks (
		name        TEXT    NOT NULL PRIMARY KEY,
		host        TEXT    NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS check_results (
		check_name  TEXT    NOT NULL REFERENCES checks(name) ON DELETE CASCADE,
		status      TEXT    NOT NULL,
		exit_code   INTEGER NOT NULL,
		output      TEXT    NOT NULL,
		metrics     TEXT    NOT NULL,
		diagnostics TEXT    NOT NULL,
		recorded_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_check_results_name ON check_results(check_name);
	CREATE INDEX IF NOT EXISTS idx_check_results_recorded_at ON check_results(recorded_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveReport upserts the check definition, inserts the result, and prunes the history of the check
func (s *sqliteStorage) SaveReport(ctx context.Context, report common.CheckReport, recordedAt int64) error {
	if len(report.Check) == 0 {
		return errEmptyCheckName
	}

	metrics, err := marshalList(report.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}
	diagnostics, err := marshalList(report.Diagnostics)
	if err != nil {
		return fmt.Errorf("failed to encode diagnostics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checks (name, host)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET host=excluded.host
	`, report.Check, report.Host)
	if err != nil {
		return fmt.Errorf("failed to upsert check definition: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO check_results (check_name, status, exit_code, output, metrics, diagnostics, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, report.Check, report.Status, report.ExitCode, report.Output, metrics, diagnostics, recordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert check result: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM check_results
		WHERE check_name = ?
		  AND rowid NOT IN (
			  SELECT rowid FROM check_results
			  WHERE check_name = ?
			  ORDER BY recorded_at DESC, rowid DESC
			  LIMIT ?
		  )
	`, report.Check, report.Check, s.historyLength)
	if err != nil {
		return fmt.Errorf("failed to trim check history: %w", err)
	}

	return tx.Commit()
}

func marshalList[T any](values []T) (string, error) {
	if values == nil {
		values = make([]T, 0)
	}

	buff, err := json.Marshal(values)
	if err != nil {
		return "", err
	}

	return string(buff), nil
}

// GetLatestChecks fetches the most recent result for each check
func (s *sqliteStorage) GetLatestChecks(ctx context.Context) ([]common.CheckHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.host, r.status, r.exit_code, r.output, r.metrics, r.diagnostics, r.recorded_at
		FROM checks c
		JOIN (
			SELECT check_name, status, exit_code, output, metrics, diagnostics, recorded_at,
				ROW_NUMBER() OVER(PARTITION BY check_name ORDER BY recorded_at DESC, rowid DESC) as rn
			FROM check_results
		) r ON c.name = r.check_name AND r.rn = 1
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	results := make([]common.CheckHistory, 0)
	for rows.Next() {
		var h common.CheckHistory
		var metrics, diagnostics string
		var record common.CheckRecord

		err = rows.Scan(&h.Name, &h.Host, &record.Status, &record.ExitCode, &record.Output, &metrics, &diagnostics, &record.RecordedAt)
		if err != nil {
			return nil, err
		}

		err = decodeRecord(&record, metrics, diagnostics)
		if err != nil {
			return nil, err
		}

		h.History = []common.CheckRecord{record}
		results = append(results, h)
	}

	return results, rows.Err()
}

// GetCheckHistory returns the check definition and all its retained results, oldest first
func (s *sqliteStorage) GetCheckHistory(ctx context.Context, name string) (*common.CheckHistory, error) {
	var h common.CheckHistory

	err := s.db.QueryRowContext(ctx, "SELECT name, host FROM checks WHERE name = ?", name).Scan(&h.Name, &h.Host)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrCheckNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, exit_code, output, metrics, diagnostics, recorded_at
		FROM check_results
		WHERE check_name = ?
		ORDER BY recorded_at, rowid
	`, name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	h.History = make([]common.CheckRecord, 0)
	for rows.Next() {
		var record common.CheckRecord
		var metrics, diagnostics string

		err = rows.Scan(&record.Status, &record.ExitCode, &record.Output, &metrics, &diagnostics, &record.RecordedAt)
		if err != nil {
			return nil, err
		}

		err = decodeRecord(&record, metrics, diagnostics)
		if err != nil {
			return nil, err
		}

		h.History = append(h.History, record)
	}

	return &h, rows.Err()
}

func decodeRecord(record *common.CheckRecord, metrics string, diagnostics string) error {
	err := json.Unmarshal([]byte(metrics), &record.Metrics)
	if err != nil {
		return fmt.Errorf("failed to decode metrics: %w", err)
	}

	err = json.Unmarshal([]byte(diagnostics), &record.Diagnostics)
	if err != nil {
		return fmt.Errorf("failed to decode diagnostics: %w", err)
	}
	if len(record.Diagnostics) == 0 {
		record.Diagnostics = nil
	}

	return nil
}

// DeleteCheck deletes a check and all its results from the database
func (s *sqliteStorage) DeleteCheck(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM checks WHERE name = ?", name)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return common.ErrCheckNotFound
	}

	return nil
}

// cleanRetainedResults executes the retention cleanup queries synchronously
func (s *sqliteStorage) cleanRetainedResults(ctx context.Context, now int64) error {
	cutoff := now - int64(s.retentionSeconds)
	_, err := s.db.ExecContext(ctx, "DELETE FROM check_results WHERE recorded_at < ?", cutoff)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, "DELETE FROM checks WHERE name NOT IN (SELECT DISTINCT check_name FROM check_results)")
	return err
}

func (s *sqliteStorage) startRetentionCleaner(ctx context.Context) {
	s.wg.Add(1)

	intervalSec := s.retentionSeconds / 10
	if intervalSec < minCleanIntervalSeconds {
		intervalSec = minCleanIntervalSeconds
	}

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)

	go func() {
		defer s.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Debug("running retention cleanup")

				err := s.cleanRetainedResults(ctx, time.Now().Unix())
				if err != nil {
					log.Warn("failed to cleanup retained check results", "error", err)
				}
			}
		}
	}()
}

// Close closes the database and stops background routines
func (s *sqliteStorage) Close() error {
	s.cancelFunc()
	s.wg.Wait()
	return s.db.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sqliteStorage) IsInterfaceNil() bool {
	return s == nil
}
