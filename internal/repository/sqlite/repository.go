package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"marketplace/internal/errors"
	"marketplace/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the interface for the local key/value store
type Repository interface {
	GetEntry(ctx context.Context, key string) (*StorageEntry, error)
	// PutEntry inserts or replaces the entry and stamps UpdatedAt.
	PutEntry(ctx context.Context, entry *StorageEntry) error
	DeleteEntry(ctx context.Context, key string) error

	Close() error
}

// Options tunes a file-backed repository
type Options struct {
	QueryTimeout   time.Duration
	DirPermissions os.FileMode
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db           *sql.DB
	queryTimeout time.Duration
	now          func() time.Time
}

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions creates the parent directory when needed, opens the
// database and applies pending migrations.
func NewWithOptions(dbPath string, opts Options) (*SQLiteRepository, error) {
	if dbPath != ":memory:" && opts.DirPermissions != 0 {
		if err := os.MkdirAll(filepath.Dir(dbPath), opts.DirPermissions); err != nil {
			return nil, errors.NewStorageError("create storage directory", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStorageError("open database", err)
	}
	// A pooled :memory: database would give every connection its own schema.
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepository{db: db, queryTimeout: opts.QueryTimeout, now: time.Now}

	ctx, cancel := repo.withTimeout(context.Background())
	defer cancel()
	if err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewStorageError("run migrations", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

// GetEntry retrieves an entry by key
func (r *SQLiteRepository) GetEntry(ctx context.Context, key string) (*StorageEntry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
	SELECT key, value, updated_at
	FROM storage_entries
	WHERE key = ?`

	return QuerySingle(ctx, r.db, query, ScanStorageEntry, "storage entry", key, key)
}

// PutEntry inserts or replaces an entry
func (r *SQLiteRepository) PutEntry(ctx context.Context, entry *StorageEntry) error {
	if entry == nil || entry.Key == "" {
		return errors.NewInvalidInputError("key", "", "storage key cannot be empty")
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	entry.UpdatedAt = r.now().UTC().Truncate(time.Second)

	query := `
	INSERT INTO storage_entries (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	return Execute(ctx, r.db, query, entry.Key, entry.Value, FormatTimeForDB(entry.UpdatedAt))
}

// DeleteEntry removes an entry. Deleting a missing key returns a not found error.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, key string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `DELETE FROM storage_entries WHERE key = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "storage entry", key, key)
}
