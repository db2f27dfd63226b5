// Package memory is an optional SQLite translation memory. Translations
// returned by a provider are recorded and answered from the database the
// next time the same text is translated for the same language pair.
package memory

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Key identifies one cached translation.
type Key struct {
	SourceText string
	SrcLang    string
	TgtLang    string
	Provider   string
}

// Entry is a cached translation.
type Entry struct {
	Key
	Translation string
	CreatedAt   time.Time
}

// Store is the SQLite-backed cache table.
type Store struct {
	DB *sql.DB
	SQ sq.StatementBuilderType
}

// Open opens (creating if needed) the database at dbPath and applies
// pending migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("make memory dir: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, p := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
	} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if err := applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{DB: db, SQ: sq.StatementBuilder}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL UNIQUE,
        applied_at TEXT NOT NULL
    )`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		var n int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE name = ?`, name).Scan(&n)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations(name, applied_at) VALUES (?, ?)`, name, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

// Get returns the cached entry for key, or nil when there is none.
func (s *Store) Get(ctx context.Context, key Key) (*Entry, error) {
	sqlStr, args, err := s.SQ.
		Select("source_text", "src_lang", "tgt_lang", "provider", "translation", "created_at").
		From("cache").
		Where(sq.Eq{
			"source_text": key.SourceText,
			"src_lang":    key.SrcLang,
			"tgt_lang":    key.TgtLang,
			"provider":    key.Provider,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var e Entry
	var created string
	err = s.DB.QueryRowContext(ctx, sqlStr, args...).Scan(
		&e.SourceText,
		&e.SrcLang,
		&e.TgtLang,
		&e.Provider,
		&e.Translation,
		&created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory lookup: %w", err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &e, nil
}

// Put records a translation, replacing any earlier one for the same key.
func (s *Store) Put(ctx context.Context, key Key, translation string) error {
	sqlStr, args, err := s.SQ.
		Insert("cache").
		Columns("source_text", "src_lang", "tgt_lang", "provider", "translation", "created_at").
		Values(key.SourceText, key.SrcLang, key.TgtLang, key.Provider, translation, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(source_text, src_lang, tgt_lang, provider) DO UPDATE SET translation=excluded.translation, created_at=excluded.created_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("memory store: %w", err)
	}
	return nil
}

// Count returns the number of cached translations.
func (s *Store) Count(ctx context.Context) (int, error) {
	sqlStr, args, err := s.SQ.Select("COUNT(*)").From("cache").ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("memory count: %w", err)
	}
	return n, nil
}
