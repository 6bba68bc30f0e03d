package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations_Paired(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("Failed to read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("Expected embedded migrations, found none")
	}

	ups := make(map[string]bool)
	downs := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("Unexpected file in migrations: %s", name)
		}
	}
	for base := range ups {
		if !downs[base] {
			t.Errorf("Migration %s has no down file", base)
		}
	}
	for base := range downs {
		if !ups[base] {
			t.Errorf("Migration %s has no up file", base)
		}
	}
}

func TestEmbeddedMigrations_UsersTableKeyedByExternalID(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(migrationsFS, "migrations/000001_create_users.up.sql")
	if err != nil {
		t.Fatalf("Failed to read users migration: %v", err)
	}
	sql := string(data)
	for _, want := range []string{"external_id text NOT NULL", "UNIQUE (external_id)", "email text NOT NULL"} {
		if !strings.Contains(sql, want) {
			t.Errorf("users migration missing %q", want)
		}
	}
}
