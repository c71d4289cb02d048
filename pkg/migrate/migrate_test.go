package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/roadtrack-backend/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir(embeddedDir); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}

func TestKVStoreMigrationShape(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join(embeddedDir, "*_create_kv_store.sql"))
	if err != nil || len(matches) == 0 {
		t.Fatalf("kv_store migration not found (err=%v)", err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS kv_store", "key TEXT PRIMARY KEY", "value JSONB NOT NULL", "DROP TABLE IF EXISTS kv_store"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("migration missing %q", want)
		}
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Report Index!")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.HasSuffix(path, "_add_report_index.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "kv.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to fail")
	}
}

func TestRunUpOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_run?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	if err := Run(context.Background(), sqlDB, config.KVDriverSQLite, "", "up"); err != nil {
		t.Fatalf("goose up failed: %v", err)
	}
	if !conn.Migrator().HasTable("kv_store") {
		t.Fatal("expected kv_store table after migration")
	}
}

func TestDialectFor(t *testing.T) {
	if d, _ := dialectFor(config.KVDriverPostgres); d != "postgres" {
		t.Fatalf("unexpected dialect %q", d)
	}
	if d, _ := dialectFor(config.KVDriverSQLite); d != "sqlite3" {
		t.Fatalf("unexpected dialect %q", d)
	}
	if _, err := dialectFor("redis"); err == nil {
		t.Fatal("expected redis to have no dialect")
	}
}
