package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"markerid/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckRoster(t *testing.T) {
	tests := []struct {
		name   string
		roster string
		label  string
		pass   bool
		detail string
	}{
		{"ok", testsupport.DefaultRoster, "{Section}-{Site}", true, "3 records, 3 compared columns"},
		{"unknown label column", testsupport.DefaultRoster, "{Row}", false, "label_format"},
		{"no mapped columns", "Section,Site\nA,1\n", "{Section}", false, "no mapped column"},
		{"empty file", "", "{Section}", false, "no header row"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithRoster(tt.roster))
			cfg.Roster.LabelFormat = tt.label
			result := CheckRoster(cfg)
			if result.Passed != tt.pass {
				t.Fatalf("Passed = %v, detail %q", result.Passed, result.Detail)
			}
			if !strings.Contains(result.Detail, tt.detail) {
				t.Fatalf("detail %q missing %q", result.Detail, tt.detail)
			}
		})
	}
}

func TestCheckRosterMissingFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.RosterFile = filepath.Join(t.TempDir(), "missing.csv")
	if result := CheckRoster(cfg); result.Passed || !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	results := RunAll(cfg)
	if len(results) != 3 || Failed(results) {
		t.Fatalf("unexpected results %+v", results)
	}
}
