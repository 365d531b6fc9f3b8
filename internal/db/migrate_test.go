package db

import (
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/smartforge/landing/migrations"
)

func TestPendingFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"002_index.up.sql":    {Data: []byte("CREATE INDEX x ON emails (email);")},
		"001_emails.up.sql":   {Data: []byte("CREATE TABLE emails ();")},
		"001_emails.down.sql": {Data: []byte("DROP TABLE emails;")},
		"README.md":           {Data: []byte("notes")},
		"nested/003.up.sql":   {Data: []byte("SELECT 1;")},
	}

	got, err := pendingFiles(fsys)
	if err != nil {
		t.Fatalf("pendingFiles: %v", err)
	}

	want := []string{"001_emails.up.sql", "002_index.up.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pendingFiles = %v, want %v", got, want)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := pendingFiles(migrations.FS)
	if err != nil {
		t.Fatalf("pendingFiles: %v", err)
	}
	if len(got) == 0 || got[0] != "001_emails.up.sql" {
		t.Errorf("embedded migrations = %v", got)
	}
}
