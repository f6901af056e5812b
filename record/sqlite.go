package record

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// defaultTemplate is the table name used inside schema.sql. Open rewrites
// it when a deployment configures a different template name.
const defaultTemplate = "image_classification"

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

var tableNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore implements the Store interface on a local SQLite database.
type SQLiteStore struct {
	Store
	db       *sql.DB
	path     string
	template string
}

// Open initializes or connects to the record database at path, ensuring the
// template table named template exists.
func Open(path string, template string) (*SQLiteStore, error) {

	if !tableNameRE.MatchString(template) {
		return nil, fmt.Errorf("Invalid template table name '%s'", template)
	}

	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, fmt.Errorf("Failed to open database %s, %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {

		_, err := db.Exec(pragma)

		if err != nil {
			db.Close()
			return nil, fmt.Errorf("Failed to apply pragma %q, %w", pragma, err)
		}
	}

	create := strings.Replace(schemaSQL, defaultTemplate, template, 1)

	_, err = db.Exec(create)

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("Failed to create template table '%s', %w", template, err)
	}

	s := &SQLiteStore{
		db:       db,
		path:     path,
		template: template,
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {

	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func isBusy(err error) bool {

	if err == nil {
		return false
	}

	var coder interface{ Code() int }

	if errors.As(err, &coder) && coder.Code() == 5 {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {

	delay := busyRetryInitialBackoff

	var last error

	for attempt := 0; attempt < busyRetryAttempts; attempt++ {

		last = op()

		if last == nil {
			return nil
		}

		if !isBusy(last) || attempt == busyRetryAttempts-1 {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}

	return last
}

// HasTable reports whether a table exists in the database.
func (s *SQLiteStore) HasTable(ctx context.Context, name string) (bool, error) {

	if !tableNameRE.MatchString(name) {
		return false, fmt.Errorf("Invalid table name '%s'", name)
	}

	var count int

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?",
		name,
	).Scan(&count)

	if err != nil {
		return false, fmt.Errorf("Failed to query sqlite_master, %w", err)
	}

	return count > 0, nil
}

// CreateTable creates a new record table by cloning the template table's
// schema. If the table already exists it is left untouched, so subsequent
// ingestion runs append to it.
func (s *SQLiteStore) CreateTable(ctx context.Context, name string) error {

	if !tableNameRE.MatchString(name) {
		return fmt.Errorf("Invalid table name '%s'", name)
	}

	exists, err := s.HasTable(ctx, name)

	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	var template_sql string

	err = s.db.QueryRowContext(ctx,
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?",
		s.template,
	).Scan(&template_sql)

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: '%s'", ErrMissingTemplate, s.template)
	}

	if err != nil {
		return fmt.Errorf("Failed to read template schema for '%s', %w", s.template, err)
	}

	// sqlite_master stores the original CREATE statement; swapping the
	// table name in is how the schema is cloned. Both names have been
	// validated against tableNameRE above.
	create := strings.Replace(template_sql, s.template, name, 1)

	err = retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, create)
		return err
	})

	if err != nil {
		return fmt.Errorf("Failed to create table '%s' from template, %w", name, err)
	}

	return nil
}

const recordColumns = `fid, folder_path, media_path, camera_id, datetime, local_time, timezone,
    longitude, latitude, species, species_count, species_second, comment,
    shortcode, shortcode2, fingerprint, imagehash_avg, imagehash_diff`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {

	var r Record

	var folder, path, camera, dt, local, tz sql.NullString
	var lon, lat sql.NullFloat64
	var species, second, comment, code, code2, fp, hash_avg, hash_diff sql.NullString
	var count sql.NullInt64

	err := row.Scan(
		&r.FID, &folder, &path, &camera, &dt, &local, &tz,
		&lon, &lat, &species, &count, &second, &comment,
		&code, &code2, &fp, &hash_avg, &hash_diff,
	)

	if err != nil {
		return nil, err
	}

	r.FolderPath = folder.String
	r.MediaPath = path.String
	r.CameraID = camera.String
	r.Captured = dt.String
	r.LocalTime = local.String
	r.Timezone = tz.String
	r.Location[0] = lon.Float64
	r.Location[1] = lat.Float64
	r.Species = species.String
	r.SpeciesCount = count.Int64
	r.SpeciesSecond = second.String
	r.Comment = comment.String
	r.Shortcode = code.String
	r.Shortcode2 = code2.String
	r.Fingerprint = fp.String
	r.ImageHashAvg = hash_avg.String
	r.ImageHashDiff = hash_diff.String

	return &r, nil
}

// Records enumerates all rows of a table in FID order.
func (s *SQLiteStore) Records(ctx context.Context, table string) ([]*Record, error) {

	if !tableNameRE.MatchString(table) {
		return nil, fmt.Errorf("Invalid table name '%s'", table)
	}

	exists, err := s.HasTable(ctx, table)

	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, fmt.Errorf("%w: '%s'", ErrNoSuchTable, table)
	}

	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY fid", recordColumns, table)

	rows, err := s.db.QueryContext(ctx, q)

	if err != nil {
		return nil, fmt.Errorf("Failed to enumerate '%s', %w", table, err)
	}

	defer rows.Close()

	records := make([]*Record, 0)

	for rows.Next() {

		r, err := scanRecord(rows)

		if err != nil {
			return nil, fmt.Errorf("Failed to scan record, %w", err)
		}

		records = append(records, r)
	}

	err = rows.Err()

	if err != nil {
		return nil, fmt.Errorf("Failed to enumerate '%s', %w", table, err)
	}

	return records, nil
}

// MediaPaths returns the set of media paths already present in table. The
// set is computed once per ingestion run so the per-file duplicate check is
// a map lookup rather than a table scan.
func (s *SQLiteStore) MediaPaths(ctx context.Context, table string) (map[string]bool, error) {

	if !tableNameRE.MatchString(table) {
		return nil, fmt.Errorf("Invalid table name '%s'", table)
	}

	q := fmt.Sprintf("SELECT media_path FROM %s WHERE media_path IS NOT NULL", table)

	rows, err := s.db.QueryContext(ctx, q)

	if err != nil {
		return nil, fmt.Errorf("Failed to read media paths from '%s', %w", table, err)
	}

	defer rows.Close()

	paths := make(map[string]bool)

	for rows.Next() {

		var p string

		err := rows.Scan(&p)

		if err != nil {
			return nil, fmt.Errorf("Failed to scan media path, %w", err)
		}

		paths[p] = true
	}

	err = rows.Err()

	if err != nil {
		return nil, fmt.Errorf("Failed to read media paths from '%s', %w", table, err)
	}

	return paths, nil
}

func nullableString(s string) any {

	if s == "" {
		return nil
	}

	return s
}

func nullableInt(i int64) any {

	if i == 0 {
		return nil
	}

	return i
}

// Append inserts records in a single transaction and returns the number
// added. If any insert fails the transaction is rolled back and no records
// are visible.
func (s *SQLiteStore) Append(ctx context.Context, table string, records []*Record) (int, error) {

	if !tableNameRE.MatchString(table) {
		return 0, fmt.Errorf("Invalid table name '%s'", table)
	}

	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)

	if err != nil {
		return 0, fmt.Errorf("Failed to begin append transaction, %w", err)
	}

	defer tx.Rollback()

	q := fmt.Sprintf(`INSERT INTO %s (
        folder_path, media_path, camera_id, datetime, local_time, timezone,
        longitude, latitude, species, species_count, species_second, comment,
        shortcode, shortcode2, fingerprint, imagehash_avg, imagehash_diff
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)

	stmt, err := tx.PrepareContext(ctx, q)

	if err != nil {
		return 0, fmt.Errorf("Failed to prepare insert for '%s', %w", table, err)
	}

	defer stmt.Close()

	for _, r := range records {

		_, err := stmt.ExecContext(ctx,
			nullableString(r.FolderPath),
			r.MediaPath,
			nullableString(r.CameraID),
			nullableString(r.Captured),
			nullableString(r.LocalTime),
			nullableString(r.Timezone),
			r.Location[0],
			r.Location[1],
			nullableString(r.Species),
			nullableInt(r.SpeciesCount),
			nullableString(r.SpeciesSecond),
			nullableString(r.Comment),
			nullableString(r.Shortcode),
			nullableString(r.Shortcode2),
			nullableString(r.Fingerprint),
			nullableString(r.ImageHashAvg),
			nullableString(r.ImageHashDiff),
		)

		if err != nil {

			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return 0, fmt.Errorf("%w: %s", ErrDuplicatePath, r.MediaPath)
			}

			return 0, fmt.Errorf("Failed to insert record for %s, %w", r.MediaPath, err)
		}
	}

	err = tx.Commit()

	if err != nil {
		return 0, fmt.Errorf("Failed to commit append, %w", err)
	}

	return len(records), nil
}

// UpdateAnnotations writes the annotation fields of a single row in its own
// transaction. Shortcode fields and the FID are never written; they are
// derived or assigned by the store.
func (s *SQLiteStore) UpdateAnnotations(ctx context.Context, table string, fid int64, a *Annotations) error {

	if !tableNameRE.MatchString(table) {
		return fmt.Errorf("Invalid table name '%s'", table)
	}

	if a == nil {
		return errors.New("Missing annotations")
	}

	q := fmt.Sprintf(`UPDATE %s SET
        species = ?, species_count = ?, species_second = ?, comment = ?
        WHERE fid = ?`, table)

	var res sql.Result

	err := retryOnBusy(ctx, func() error {

		tx, err := s.db.BeginTx(ctx, nil)

		if err != nil {
			return err
		}

		defer tx.Rollback()

		res, err = tx.ExecContext(ctx, q,
			nullableString(a.Species),
			nullableInt(a.SpeciesCount),
			nullableString(a.SpeciesSecond),
			nullableString(a.Comment),
			fid,
		)

		if err != nil {
			return err
		}

		return tx.Commit()
	})

	if err != nil {
		return fmt.Errorf("Failed to update annotations for fid %d in '%s', %w", fid, table, err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("Failed to count updated rows, %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("No row with fid %d in '%s'", fid, table)
	}

	return nil
}

// GetByFID fetches a single row, or nil if there is no such row.
func (s *SQLiteStore) GetByFID(ctx context.Context, table string, fid int64) (*Record, error) {

	if !tableNameRE.MatchString(table) {
		return nil, fmt.Errorf("Invalid table name '%s'", table)
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE fid = ?", recordColumns, table)

	row := s.db.QueryRowContext(ctx, q, fid)

	r, err := scanRecord(row)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("Failed to get record %d from '%s', %w", fid, table, err)
	}

	return r, nil
}
