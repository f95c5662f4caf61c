// Package sqlitemigrate applies embedded SQL migrations to SQLite databases.
package sqlitemigrate

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"text/template"
	"time"
)

const migrationTable = "schema_migrations"

// Options controls how migration files are located, rendered, and recorded.
type Options struct {
	// Root is the directory inside the migration FS holding *.sql files.
	Root string
	// Namespace prefixes recorded migration keys so the same files can be
	// applied once per logical table in a shared database.
	Namespace string
	// Data is passed to text/template when rendering each file. Files are
	// applied verbatim when Data is nil.
	Data any
}

// ApplyMigrations executes embedded migrations at most once per file and
// namespace.
func ApplyMigrations(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS, opts Options) error {
	if sqlDB == nil {
		return fmt.Errorf("sql db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = "."
	}
	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`, migrationTable)
	if _, err := sqlDB.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range sqlFiles {
		key := migrationKey(opts.Namespace, root, file)

		content, err := fs.ReadFile(migrationFS, path.Join(root, file))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		applied, err := isApplied(ctx, sqlDB, key)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied {
			continue
		}

		upSQL, err := render(file, ExtractUpMigration(string(content)), opts.Data)
		if err != nil {
			return err
		}
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		tx, err := sqlDB.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration transaction %s: %w", file, err)
		}

		if _, err := tx.ExecContext(ctx, upSQL); err != nil {
			if !IsAlreadyExistsError(err) {
				_ = tx.Rollback()
				return fmt.Errorf("exec migration %s: %w", file, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)", migrationTable),
			key,
			time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}

	return nil
}

// ExtractUpMigration returns the SQL in the -- +migrate Up section.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}

// IsAlreadyExistsError reports whether this error indicates idempotent DDL success.
func IsAlreadyExistsError(err error) bool {
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}

// QuoteIdentifier returns name as a double-quoted SQLite identifier.
func QuoteIdentifier(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("identifier is required")
	}
	if strings.ContainsAny(name, "\"\x00") {
		return "", fmt.Errorf("identifier %q contains forbidden characters", name)
	}
	return `"` + name + `"`, nil
}

func render(file, body string, data any) (string, error) {
	if data == nil {
		return body, nil
	}
	tmpl, err := template.New(file).
		Option("missingkey=error").
		Funcs(template.FuncMap{"ident": QuoteIdentifier}).
		Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse migration %s: %w", file, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render migration %s: %w", file, err)
	}
	return buf.String(), nil
}

func migrationKey(namespace, root, file string) string {
	key := file
	if root != "." {
		key = path.Join(root, file)
	}
	if namespace = strings.TrimSpace(namespace); namespace != "" {
		key = namespace + ":" + key
	}
	return key
}

func isApplied(ctx context.Context, sqlDB *sql.DB, name string) (bool, error) {
	var found int
	row := sqlDB.QueryRowContext(ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = ?", name)
	if err := row.Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
