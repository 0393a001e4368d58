// Package sqlitestore keeps credential records in a local SQLite database using the pure Go
// modernc.org/sqlite driver.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/jrsteele09/go-photos-proxy/credentials/sqlitestore/migrations"
)

const dbFileName = "credentials.db"

var _ credentials.Store = (*Store)(nil)

type Store struct {
	db      *sql.DB
	path    string
	nowFunc func() time.Time
}

// New opens (creating if needed) credentials.db inside dataDir and applies pending migrations.
func New(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("[sqlitestore New] data directory is required")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("[sqlitestore New] creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("[sqlitestore New] opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath, nowFunc: time.Now}
	if err := s.migrate(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("[sqlitestore New] running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, formatTime(s.nowFunc())); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*credentials.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, avatar_url,
		       access_token, refresh_token, scope, token_type, expiry,
		       created_at, updated_at
		FROM credentials WHERE id = ?
	`, id)

	var (
		rec                          credentials.Record
		expiry, createdAt, updatedAt string
	)
	err := row.Scan(&rec.ID, &rec.Profile.DisplayName, &rec.Profile.Email, &rec.Profile.AvatarURL,
		&rec.Tokens.AccessToken, &rec.Tokens.RefreshToken, &rec.Tokens.Scope, &rec.Tokens.TokenType, &expiry,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("[sqlitestore Get] %s: %w", id, credentials.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("[sqlitestore Get] %s: %v: %w", id, err, credentials.ErrStoreUnavailable)
	}

	rec.Tokens.Expiry = parseTime(expiry)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

// Upsert inserts or replaces the record. created_at is only written on first insert.
func (s *Store) Upsert(ctx context.Context, record *credentials.Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("[sqlitestore Upsert] record with an id is required")
	}

	now := s.nowFunc()
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, display_name, email, avatar_url,
		                         access_token, refresh_token, scope, token_type, expiry,
		                         created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			email = excluded.email,
			avatar_url = excluded.avatar_url,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			scope = excluded.scope,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`, record.ID, record.Profile.DisplayName, record.Profile.Email, record.Profile.AvatarURL,
		record.Tokens.AccessToken, record.Tokens.RefreshToken, record.Tokens.Scope, record.Tokens.TokenType,
		formatTime(record.Tokens.Expiry), formatTime(createdAt), formatTime(now))
	if err != nil {
		return fmt.Errorf("[sqlitestore Upsert] %s: %v: %w", record.ID, err, credentials.ErrStoreUnavailable)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
