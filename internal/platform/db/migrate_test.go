package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "002_labs.sql", "CREATE TABLE lab_events (id INT);")
	writeFile(t, dir, "001_core.sql", "CREATE TABLE admissions (id INT);")
	writeFile(t, dir, "010_later.sql", "SELECT 1;")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	wantVersions := []int{1, 2, 10}
	for i, w := range wantVersions {
		if migs[i].Version != w {
			t.Errorf("migration %d: expected version %d, got %d", i, w, migs[i].Version)
		}
	}
	if migs[0].SQL == "" {
		t.Error("migration SQL not loaded")
	}
}

func TestLoadMigrations_SkipsNonNumericAndNonSQL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001_core.sql", "SELECT 1;")
	writeFile(t, dir, "README.md", "notes")
	writeFile(t, dir, "schema_dump.sql", "SELECT 2;")
	writeFile(t, dir, "abc_bad.sql", "SELECT 3;")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migs) != 1 || migs[0].Name != "001_core.sql" {
		t.Errorf("expected only 001_core.sql, got %v", migs)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, filepath.Join(t.TempDir(), "nope"))
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
