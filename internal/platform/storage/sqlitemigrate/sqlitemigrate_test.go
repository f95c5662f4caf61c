package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyMigrationsRecordsApplied(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);"),
		},
	}

	if err := ApplyMigrations(context.Background(), db, migrations, Options{}); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("expected 1 migration row, got %d", rows)
	}
	if !tableExists(t, db, "items") {
		t.Fatal("expected applied table to exist")
	}
}

func TestApplyMigrationsSkipsAlreadyApplied(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);"),
		},
	}
	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(context.Background(), db, migrations, Options{}); err != nil {
			t.Fatalf("apply migrations pass %d: %v", i, err)
		}
	}

	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("expected single migration row after replay, got %d", rows)
	}
}

func TestApplyMigrationsDoesNotRecordFailedMigration(t *testing.T) {
	db := openInMemoryDB(t)

	bad := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREAT table things(id INT);"),
		},
	}
	if err := ApplyMigrations(context.Background(), db, bad, Options{}); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 0 {
		t.Fatalf("expected failed migration to stay unrecorded, got %d rows", rows)
	}
}

func TestApplyMigrationsRendersTemplatePerNamespace(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"scores/001_scores.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE {{ident .Table}} (game_id TEXT NOT NULL);\n-- +migrate Down\nDROP TABLE {{ident .Table}};"),
		},
	}
	for _, table := range []string{"arcade", "puzzle-scores"} {
		err := ApplyMigrations(context.Background(), db, migrations, Options{
			Root:      "scores",
			Namespace: table,
			Data:      struct{ Table string }{Table: table},
		})
		if err != nil {
			t.Fatalf("apply migrations for %s: %v", table, err)
		}
		if !tableExists(t, db, table) {
			t.Fatalf("expected table %q", table)
		}
	}

	key := queryString(t, db, "SELECT name FROM schema_migrations ORDER BY name LIMIT 1")
	if key != "arcade:scores/001_scores.sql" {
		t.Fatalf("migration key = %q", key)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 2 {
		t.Fatalf("expected one row per namespace, got %d", rows)
	}
}

func TestApplyMigrationsRejectsMissingTemplateData(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"001_scores.sql": &fstest.MapFile{Data: []byte("CREATE TABLE {{ident .Table}} (id TEXT);")},
	}
	err := ApplyMigrations(context.Background(), db, migrations, Options{Data: map[string]string{}})
	if err == nil || !strings.Contains(err.Error(), "render migration") {
		t.Fatalf("err = %v, want render error", err)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	t.Parallel()

	got, err := QuoteIdentifier("scores-prod")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if got != `"scores-prod"` {
		t.Fatalf("quoted = %s", got)
	}
	for _, bad := range []string{"", "  ", `sco"res`} {
		if _, err := QuoteIdentifier(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func queryInt64(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var value int64
	if err := db.QueryRow(query).Scan(&value); err != nil {
		t.Fatalf("query int value: %v", err)
	}
	return value
}

func queryString(t *testing.T, db *sql.DB, query string) string {
	t.Helper()
	var value string
	if err := db.QueryRow(query).Scan(&value); err != nil {
		t.Fatalf("query string value: %v", err)
	}
	return value
}

func tableExists(t *testing.T, db *sql.DB, tableName string) bool {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", tableName).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false
		}
		t.Fatalf("check table exists: %v", err)
	}
	return name == tableName
}
