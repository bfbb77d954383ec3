// Package sqlite implements the mutable resource backend on SQLite through
// database/sql. Uniqueness of (type, id) is enforced by the primary key; the
// adapter holds no in-process lock across database calls.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rajithacharith/thunder-sub007/faults"
	"github.com/rajithacharith/thunder-sub007/resource"
	"github.com/rajithacharith/thunder-sub007/store"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ store.Store = (*Store)(nil)

const defaultBusyTimeout = 5 * time.Second

type Options struct {
	// BusyTimeout is how long a writer waits on a locked database.
	BusyTimeout time.Duration
	// Now overrides the clock used for created_at/updated_at.
	Now func() time.Time
	// NewRevision overrides the revision generator.
	NewRevision func() string
}

type Store struct {
	db          *sql.DB
	now         func() time.Time
	newRevision func() string
}

// Open opens (creating when missing) the database at path and ensures the
// resources table exists.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, validationError("database path is required", nil)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, internalError("failed to create database directory", err)
		}
	}

	busyTimeout := opts.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		path, busyTimeout.Milliseconds(),
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, internalError("failed to open database", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		if ctxErr := faults.FromContext("database schema initialization timed out", ctx.Err()); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, internalError("failed to initialize database schema", err)
	}

	return New(db, opts), nil
}

// New wraps an already opened database. The schema must exist.
func New(db *sql.DB, opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newRevision := opts.NewRevision
	if newRevision == nil {
		newRevision = func() string { return uuid.NewString() }
	}
	return &Store{db: db, now: now, newRevision: newRevision}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, resourceType string, id string) (resource.Resource, error) {
	var (
		rawAttributes string
		revision      string
	)
	err := s.db.QueryRowContext(ctx, selectOne, resourceType, id).Scan(&rawAttributes, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return resource.Resource{}, notFoundError(fmt.Sprintf("%s %q not found", resourceType, id))
	}
	if err != nil {
		return resource.Resource{}, databaseError(ctx, "failed to read resource", err)
	}

	attributes, err := decodeAttributes(rawAttributes)
	if err != nil {
		return resource.Resource{}, err
	}
	return mutableRecord(resourceType, id, attributes, revision), nil
}

// List returns records ordered by id. A non-positive limit returns every
// record from the offset on. The count and the page are read in one read
// transaction so TotalCount matches the snapshot the items came from.
func (s *Store) List(ctx context.Context, resourceType string, page store.PageRequest) (store.PageResult, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return store.PageResult{}, databaseError(ctx, "failed to start list transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	if err := tx.QueryRowContext(ctx, countType, resourceType).Scan(&total); err != nil {
		return store.PageResult{}, databaseError(ctx, "failed to count resources", err)
	}

	offset := max(page.Offset, 0)
	limit := page.Limit
	if limit <= 0 {
		// SQLite treats a negative LIMIT as unbounded.
		limit = -1
	}

	items, err := listPage(ctx, tx, resourceType, limit, offset)
	if err != nil {
		return store.PageResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return store.PageResult{}, databaseError(ctx, "failed to finish list transaction", err)
	}

	return store.PageResult{Items: items, TotalCount: total}, nil
}

func listPage(ctx context.Context, tx *sql.Tx, resourceType string, limit int, offset int) ([]resource.Resource, error) {
	rows, err := tx.QueryContext(ctx, selectPage, resourceType, limit, offset)
	if err != nil {
		return nil, databaseError(ctx, "failed to list resources", err)
	}
	defer rows.Close()

	items := make([]resource.Resource, 0)
	for rows.Next() {
		var id, rawAttributes, revision string
		if err := rows.Scan(&id, &rawAttributes, &revision); err != nil {
			return nil, databaseError(ctx, "failed to scan resource row", err)
		}
		attributes, err := decodeAttributes(rawAttributes)
		if err != nil {
			return nil, err
		}
		items = append(items, mutableRecord(resourceType, id, attributes, revision))
	}
	if err := rows.Err(); err != nil {
		return nil, databaseError(ctx, "failed to list resources", err)
	}
	return items, nil
}

func (s *Store) Create(ctx context.Context, resourceType string, value resource.Resource) (resource.Resource, error) {
	rawAttributes, attributes, err := encodeAttributes(value.Attributes)
	if err != nil {
		return resource.Resource{}, err
	}

	revision := s.newRevision()
	timestamp := s.timestamp()
	_, err = s.db.ExecContext(ctx, insertOne, resourceType, value.ID, rawAttributes, revision, timestamp, timestamp)
	if err != nil {
		if isPrimaryKeyViolation(err) {
			return resource.Resource{}, conflictError(fmt.Sprintf("%s %q already exists", resourceType, value.ID), err)
		}
		return resource.Resource{}, databaseError(ctx, "failed to create resource", err)
	}

	return mutableRecord(resourceType, value.ID, attributes, revision), nil
}

// Update replaces the attributes of an existing record. A non-empty
// value.Revision must match the stored revision.
func (s *Store) Update(ctx context.Context, resourceType string, value resource.Resource) (resource.Resource, error) {
	rawAttributes, attributes, err := encodeAttributes(value.Attributes)
	if err != nil {
		return resource.Resource{}, err
	}

	revision := s.newRevision()
	timestamp := s.timestamp()

	var result sql.Result
	if expected := strings.TrimSpace(value.Revision); expected != "" {
		result, err = s.db.ExecContext(ctx, updateOneAtRevision, rawAttributes, revision, timestamp, resourceType, value.ID, expected)
	} else {
		result, err = s.db.ExecContext(ctx, updateOne, rawAttributes, revision, timestamp, resourceType, value.ID)
	}
	if err != nil {
		return resource.Resource{}, databaseError(ctx, "failed to update resource", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return resource.Resource{}, databaseError(ctx, "failed to update resource", err)
	}
	if affected == 0 {
		if _, getErr := s.Get(ctx, resourceType, value.ID); getErr != nil {
			return resource.Resource{}, getErr
		}
		return resource.Resource{}, conflictError(
			fmt.Sprintf("%s %q was modified concurrently: revision %q is stale", resourceType, value.ID, value.Revision),
			nil,
		)
	}

	return mutableRecord(resourceType, value.ID, attributes, revision), nil
}

func (s *Store) Delete(ctx context.Context, resourceType string, id string) error {
	result, err := s.db.ExecContext(ctx, deleteOne, resourceType, id)
	if err != nil {
		return databaseError(ctx, "failed to delete resource", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return databaseError(ctx, "failed to delete resource", err)
	}
	if affected == 0 {
		return notFoundError(fmt.Sprintf("%s %q not found", resourceType, id))
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func mutableRecord(resourceType string, id string, attributes map[string]any, revision string) resource.Resource {
	return resource.Resource{
		ID:         id,
		Type:       resourceType,
		Attributes: attributes,
		Source:     resource.SourceMutable,
		Revision:   revision,
	}
}

func encodeAttributes(attributes map[string]any) (string, map[string]any, error) {
	normalized, err := resource.NormalizeAttributes(attributes)
	if err != nil {
		return "", nil, err
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return "", nil, validationError("attributes cannot be encoded as JSON", err)
	}
	return string(encoded), normalized, nil
}

func decodeAttributes(raw string) (map[string]any, error) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()

	var attributes map[string]any
	if err := decoder.Decode(&attributes); err != nil {
		return nil, internalError("stored attributes are not valid JSON", err)
	}
	return resource.NormalizeAttributes(attributes)
}

func isPrimaryKeyViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func databaseError(ctx context.Context, message string, err error) error {
	if ctxErr := faults.FromContext(message, ctx.Err()); ctxErr != nil {
		return ctxErr
	}
	if ctxErr := faults.FromContext(message, err); ctxErr != nil {
		return ctxErr
	}
	return internalError(message, err)
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func conflictError(message string, cause error) error {
	return faults.NewTypedError(faults.ConflictError, message, cause)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
