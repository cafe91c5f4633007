package resolution

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"brickmatch/internal/catalog"
	"brickmatch/internal/config"
)

// maxPageSize caps a single pending/not-found page regardless of the
// caller-supplied limit.
const maxPageSize = 1000

// Store manages resolution persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the resolution database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "brickmatch.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// UpsertCatalog inserts or refreshes catalog records keyed by set number.
func (s *Store) UpsertCatalog(ctx context.Context, records []catalog.Record) (created, updated int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin catalog tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, record := range records {
		if record.SetNumber == "" {
			continue
		}
		var existing int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM catalog_records WHERE set_number = ?`, record.SetNumber,
		).Scan(&existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO catalog_records (set_number, name, ean, upc, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				record.SetNumber, record.Name,
				nullableString(record.EAN), nullableString(record.UPC),
				now, now,
			); err != nil {
				return 0, 0, fmt.Errorf("insert catalog record %s: %w", record.SetNumber, err)
			}
			created++
		case err != nil:
			return 0, 0, fmt.Errorf("find catalog record %s: %w", record.SetNumber, err)
		default:
			if _, err := tx.ExecContext(ctx,
				`UPDATE catalog_records SET name = ?, ean = ?, upc = ?, updated_at = ? WHERE id = ?`,
				record.Name, nullableString(record.EAN), nullableString(record.UPC), now, existing,
			); err != nil {
				return 0, 0, fmt.Errorf("update catalog record %s: %w", record.SetNumber, err)
			}
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit catalog tx: %w", err)
	}
	return created, updated, nil
}

// InitializeFromCatalog creates a pending resolution record for every catalog
// record that lacks one. It is idempotent: re-running on an unchanged catalog
// creates nothing.
func (s *Store) InitializeFromCatalog(ctx context.Context) (created, skipped int, err error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO resolution_records (catalog_id, status, attempts, created_at, updated_at)
         SELECT c.id, ?, 0, ?, ?
         FROM catalog_records c
         WHERE NOT EXISTS (
             SELECT 1 FROM resolution_records r WHERE r.catalog_id = c.id
         )`,
		StatusPending, now, now,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("initialize resolution records: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("rows affected: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM catalog_records`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("count catalog records: %w", err)
	}
	return int(affected), total - int(affected), nil
}

const taskColumns = `r.id, r.attempts, c.id, c.set_number, c.name, c.ean, c.upc`

// Pending returns up to limit pending tasks with catalog id greater than
// resumeFromID, ordered by ascending catalog id so cursor resumption is
// deterministic.
func (s *Store) Pending(ctx context.Context, limit int, resumeFromID int64) ([]Task, error) {
	limit = clampPage(limit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+`
         FROM resolution_records r
         JOIN catalog_records c ON c.id = r.catalog_id
         WHERE r.status = ? AND c.id > ?
         ORDER BY c.id
         LIMIT ?`,
		StatusPending, resumeFromID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

// NotFound returns not_found tasks ordered by oldest attempt first (never
// attempted records lead). When maxAttempts is positive, records at or above
// the cap are excluded.
func (s *Store) NotFound(ctx context.Context, limit, maxAttempts int) ([]Task, error) {
	limit = clampPage(limit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+`
         FROM resolution_records r
         JOIN catalog_records c ON c.id = r.catalog_id
         WHERE r.status = ? AND (? <= 0 OR r.attempts < ?)
         ORDER BY r.last_attempt_at IS NOT NULL, r.last_attempt_at, c.id
         LIMIT ?`,
		StatusNotFound, maxAttempts, maxAttempts, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query not_found: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

// ResetToPending returns the identified resolution records to pending,
// clearing last_error while preserving the attempts history.
func (s *Store) ResetToPending(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+2)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE resolution_records
         SET status = ?, last_error = NULL, updated_at = ?
         WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("reset to pending: %w", err)
	}
	return nil
}

// MarkExcluded removes records from resolution consideration by set number.
func (s *Store) MarkExcluded(ctx context.Context, setNumbers []string) (int64, error) {
	if len(setNumbers) == 0 {
		return 0, nil
	}
	placeholders := makePlaceholders(len(setNumbers))
	args := make([]any, 0, len(setNumbers)+2)
	args = append(args, StatusExcluded, time.Now().UTC().Format(time.RFC3339Nano))
	for _, number := range setNumbers {
		args = append(args, number)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE resolution_records
         SET status = ?, updated_at = ?
         WHERE catalog_id IN (SELECT id FROM catalog_records WHERE set_number IN (`+placeholders+`))`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("mark excluded: %w", err)
	}
	return res.RowsAffected()
}

// SaveOutcome persists a pipeline outcome, increments the attempt counter,
// and stamps the attempt time. A write that claims an ASIN already held by a
// different found record fails with ErrASINConflict and leaves the record
// unchanged.
func (s *Store) SaveOutcome(ctx context.Context, resolutionID int64, outcome Outcome) error {
	if !outcome.Status.Valid() {
		return fmt.Errorf("invalid status %q", outcome.Status)
	}

	var alternativesJSON any
	if len(outcome.Alternatives) > 0 {
		payload, err := json.Marshal(outcome.Alternatives)
		if err != nil {
			return fmt.Errorf("marshal alternatives: %w", err)
		}
		alternativesJSON = string(payload)
	}

	var matched, method, confidence any
	if outcome.Status == StatusFound {
		matched = outcome.MatchedASIN
		method = string(outcome.Method)
		confidence = outcome.Confidence
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE resolution_records
         SET status = ?, matched_asin = ?, match_method = ?, confidence = ?,
             alternatives_json = ?, last_error = ?,
             attempts = attempts + 1, last_attempt_at = ?, updated_at = ?
         WHERE id = ?`,
		outcome.Status, matched, method, confidence,
		alternativesJSON, nullableString(outcome.LastError),
		now, now, resolutionID,
	)
	if err != nil {
		if isUniqueASINViolation(err) {
			return fmt.Errorf("%w: %s", ErrASINConflict, outcome.MatchedASIN)
		}
		return fmt.Errorf("save outcome: %w", err)
	}
	return nil
}

// RecordError stores a record-level failure without changing status, so a
// later run retries the record.
func (s *Store) RecordError(ctx context.Context, resolutionID int64, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE resolution_records
         SET last_error = ?, attempts = attempts + 1, last_attempt_at = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(message), now, now, resolutionID,
	)
	if err != nil {
		return fmt.Errorf("record error: %w", err)
	}
	return nil
}

// GetByCatalogID fetches the resolution record for a catalog record.
func (s *Store) GetByCatalogID(ctx context.Context, catalogID int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM resolution_records r WHERE catalog_id = ?`, catalogID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get resolution record: %w", err)
	}
	return record, nil
}

// GetBySetNumber fetches the resolution record for a catalog set number.
func (s *Store) GetBySetNumber(ctx context.Context, setNumber string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+`
         FROM resolution_records r
         JOIN catalog_records c ON c.id = r.catalog_id
         WHERE c.set_number = ?`, setNumber)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get resolution record: %w", err)
	}
	return record, nil
}

// Summary aggregates resolution state: counts by status, average confidence
// of found records, and the most recent attempt timestamp.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	summary := Summary{Counts: make(map[Status]int)}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM resolution_records GROUP BY status`)
	if err != nil {
		return summary, fmt.Errorf("summary counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return summary, err
		}
		summary.Counts[status] = count
		summary.Total += count
	}
	if err := rows.Err(); err != nil {
		return summary, err
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		`SELECT AVG(confidence) FROM resolution_records WHERE status = ?`, StatusFound,
	).Scan(&avg); err != nil {
		return summary, fmt.Errorf("summary confidence: %w", err)
	}
	if avg.Valid {
		summary.AvgConfidence = avg.Float64
	}

	var lastAttempt sql.NullString
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(last_attempt_at) FROM resolution_records`,
	).Scan(&lastAttempt); err != nil {
		return summary, fmt.Errorf("summary last attempt: %w", err)
	}
	if lastAttempt.Valid {
		if ts, err := parseTimeString(lastAttempt.String); err == nil {
			summary.LastAttemptAt = &ts
		}
	}

	return summary, nil
}

const recordColumns = `r.id, r.catalog_id, r.status, r.matched_asin, r.match_method,
    r.confidence, r.alternatives_json, r.attempts, r.last_attempt_at, r.last_error,
    r.created_at, r.updated_at`

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id            int64
		catalogID     int64
		statusStr     string
		matchedASIN   sql.NullString
		method        sql.NullString
		confidence    sql.NullInt64
		alternatives  sql.NullString
		attempts      int
		lastAttemptAt sql.NullString
		lastError     sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&catalogID,
		&statusStr,
		&matchedASIN,
		&method,
		&confidence,
		&alternatives,
		&attempts,
		&lastAttemptAt,
		&lastError,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:          id,
		CatalogID:   catalogID,
		Status:      Status(statusStr),
		MatchedASIN: matchedASIN.String,
		Method:      Method(method.String),
		Confidence:  int(confidence.Int64),
		Attempts:    attempts,
		LastError:   lastError.String,
	}
	if alternatives.Valid && alternatives.String != "" {
		if err := json.Unmarshal([]byte(alternatives.String), &record.Alternatives); err != nil {
			return nil, fmt.Errorf("decode alternatives: %w", err)
		}
	}
	if lastAttemptAt.Valid {
		if ts, err := parseTimeString(lastAttemptAt.String); err == nil {
			record.LastAttemptAt = &ts
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func scanTasks(rows *sql.Rows) ([]Task, error) {
	var tasks []Task
	for rows.Next() {
		var (
			task Task
			ean  sql.NullString
			upc  sql.NullString
		)
		if err := rows.Scan(
			&task.ResolutionID,
			&task.Attempts,
			&task.Catalog.ID,
			&task.Catalog.SetNumber,
			&task.Catalog.Name,
			&ean,
			&upc,
		); err != nil {
			return nil, err
		}
		task.Catalog.EAN = ean.String
		task.Catalog.UPC = upc.String
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func clampPage(limit int) int {
	if limit <= 0 || limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
