package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVersionOf(t *testing.T) {
	tests := map[string]string{
		"001_init.sql":                 "001",
		"migrations/002_reads_idx.sql": "002",
		"003.sql":                      "003",
	}
	for in, want := range tests {
		if got := VersionOf(in); got != want {
			t.Fatalf("VersionOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCollectFilesOrdersSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700); err != nil {
		t.Fatal(err)
	}

	files, err := CollectFiles(dir)
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "001_a.sql" || filepath.Base(files[1]) != "002_b.sql" {
		t.Fatalf("files = %v", files)
	}
}
