package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"markerid/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	rosterPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("MARKERID_ROSTER_FILE", "")
	t.Setenv("MARKERID_STATE_DIR", "")
	t.Chdir(base)

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "markerid.toml"),
		rosterPath: filepath.Join(base, "roster.csv"),
	}
	testsupport.WriteFile(t, env.rosterPath, testsupport.DefaultRoster)
	testsupport.WriteFile(t, env.configPath, fmt.Sprintf(`[paths]
roster_file = %q
state_dir = %q
log_dir = %q

[roster]
label_format = "{Section}-{Site}"

[roster.columns]
first_name = "First Name"
surname = "Surname"
category_a = "State"
middle_name = ""
category_b = ""
date1 = ""
date2 = ""

[matching]
fuzzy_match_policy = "accept"

[logging]
level = "error"
`, env.rosterPath, filepath.Join(base, "state"), filepath.Join(base, "logs")))
	return env
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliTestEnv) run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, append([]string{"--config", e.configPath}, args...)...)
	if err != nil {
		t.Fatalf("markerid %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestClassifyCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := runCLI(t, "classify", "JOHN", "SMITH", "OHIO")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	for _, want := range []string{"first_name: JOHN", "surname: SMITH", "category_a: OHIO"} {
		if !strings.Contains(out, want) {
			t.Fatalf("classify output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, "classify", "...", "-"); err == nil {
		t.Fatal("expected error for tokens without letters or digits")
	}
}

func TestNormalizeDateCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := runCLI(t, "normalize-date", "1917-04-06")
	if err != nil {
		t.Fatalf("normalize-date: %v", err)
	}
	if strings.TrimSpace(out) != "1917-04-06\t1917-04-06" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestProcessAndReviewFlow(t *testing.T) {
	env := setupCLITestEnv(t)
	tokens := testsupport.WriteTokens(t, env.baseDir,
		testsupport.TokenLine{ID: "IMG_0001", Source: "IMG_0001.jpg", Tokens: []string{"JOHN", "SMITH", "OHIO"}},
		testsupport.TokenLine{ID: "IMG_0002", Tokens: []string{"--"}},
	)

	out := env.run(t, "process", tokens)
	if !strings.Contains(out, "assigned") || !strings.Contains(out, "review") {
		t.Fatalf("process output:\n%s", out)
	}

	out = env.run(t, "review", "list")
	if !strings.Contains(out, "IMG_0002") || !strings.Contains(out, "unclassifiable") {
		t.Fatalf("review list output:\n%s", out)
	}

	out = env.run(t, "review", "show", "IMG_0001")
	for _, want := range []string{"Artifact: IMG_0001", "Record:   0 (A-1, score 100)", "assigned to A-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("review show missing %q:\n%s", want, out)
		}
	}

	out = env.run(t, "review", "show")
	if !strings.Contains(out, "Artifact: IMG_0002") || !strings.Contains(out, "Status:   review") {
		t.Fatalf("review show front output:\n%s", out)
	}

	out = env.run(t, "review", "error", "IMG_0002", "blank", "photo")
	if !strings.Contains(out, "IMG_0002 marked as error") {
		t.Fatalf("review error output:\n%s", out)
	}
	out = env.run(t, "review", "show")
	if !strings.Contains(out, "Review queue is empty") {
		t.Fatalf("review show on empty queue:\n%s", out)
	}
	out = env.run(t, "review", "retry")
	if !strings.Contains(out, "Review queue is empty") {
		t.Fatalf("review retry output:\n%s", out)
	}

	out = env.run(t, "roster", "show", "--claimed")
	if !strings.Contains(out, "A-1") || !strings.Contains(out, "IMG_0001") || strings.Contains(out, "A-2") {
		t.Fatalf("roster show output:\n%s", out)
	}

	out = env.run(t, "report")
	for _, want := range []string{"label: A-1", "file: A-1.jpg", "error: 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}

	reportPath := filepath.Join(env.baseDir, "out", "report.yaml")
	env.run(t, "report", "--output", reportPath)
	if data, err := os.ReadFile(reportPath); err != nil || !strings.Contains(string(data), "assigned: 1") {
		t.Fatalf("report file: %v\n%s", err, data)
	}

	out = env.run(t, "roster", "reset")
	if !strings.Contains(out, "Cleared 1 claims; 1 artifacts returned to pending") {
		t.Fatalf("roster reset output:\n%s", out)
	}
	if roster := testsupport.ReadFile(t, env.rosterPath); !strings.Contains(roster, "A,1,JOHN,SMITH,OHIO,0") {
		t.Fatalf("roster after reset:\n%s", roster)
	}
}

func TestReviewConfirmCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	tokens := testsupport.WriteTokens(t, env.baseDir,
		testsupport.TokenLine{ID: "IMG_0005", Tokens: []string{"?"}},
	)
	env.run(t, "process", tokens)

	out := env.run(t, "review", "confirm", "IMG_0005", "1")
	if !strings.Contains(out, "IMG_0005 assigned to A-2 (score 100)") {
		t.Fatalf("confirm output:\n%s", out)
	}
	if _, err := runCLI(t, "--config", env.configPath, "review", "confirm", "IMG_0005", "x"); err == nil {
		t.Fatal("expected error for non-numeric index")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("MARKERID_ROSTER_FILE", "")
	t.Setenv("MARKERID_STATE_DIR", filepath.Join(base, "state"))
	t.Chdir(base)
	target := filepath.Join(base, "conf", "markerid.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("config init output:\n%s", out)
	}
	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists")
	}

	if _, err := runCLI(t, "--config", target, "config", "validate"); err == nil {
		t.Fatal("expected validate to fail before the roster exists")
	}
	testsupport.WriteFile(t, filepath.Join(base, "markers", "roster.csv"), testsupport.DefaultRoster)
	out, err = runCLI(t, "--config", target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("config validate output:\n%s", out)
	}
}
