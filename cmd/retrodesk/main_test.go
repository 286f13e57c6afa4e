package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"retrodesk/pkg/config"
	"retrodesk/pkg/store"
)

// setup loads the default config in an empty directory with an in-memory
// store and resets command globals.
func setup(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())

	var err error
	cfg, err = config.Load("", nil)
	if err != nil {
		t.Fatalf("config.Load returned error: %v", err)
	}
	cfg.Store = store.Config{Driver: store.DriverMemory}
	logger = zap.NewNop()
	indexJSON, indexQuery, shCommands = false, "", nil
}

func testCommand(in string) (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(in))
	return cmd, out
}

func TestIndexTable(t *testing.T) {
	setup(t)
	cmd, out := testCommand("")

	if err := runIndex(cmd, []string{"blog"}); err != nil {
		t.Fatalf("runIndex returned error: %v", err)
	}
	got := out.String()
	for _, want := range []string{"SLUG", "hello-world", "Notes on DOS", "2025-01-05"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "tiny-shell") {
		t.Errorf("expected only posts, got:\n%s", got)
	}
}

func TestIndexJSON(t *testing.T) {
	setup(t)
	indexJSON = true
	indexQuery = "shell"
	cmd, out := testCommand("")

	if err := runIndex(cmd, nil); err != nil {
		t.Fatalf("runIndex returned error: %v", err)
	}
	var entries []indexEntry
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if len(entries) == 0 {
		t.Fatalf("expected matches for %q", indexQuery)
	}
	for _, e := range entries {
		if !e.Meta.Matches(indexQuery) {
			t.Errorf("expected %s to match %q", e.Meta.Slug, indexQuery)
		}
	}
}

func TestIndexUnknownType(t *testing.T) {
	setup(t)
	cmd, _ := testCommand("")
	if err := runIndex(cmd, []string{"videos"}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestShCommands(t *testing.T) {
	setup(t)
	shCommands = []string{"echo hi", "nosuchcmd"}
	cmd, out := testCommand("")

	if err := runSh(cmd, nil); err != nil {
		t.Fatalf("runSh returned error: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "hi\n") {
		t.Errorf("expected echo output first, got:\n%s", got)
	}
	if !strings.Contains(got, "Bad command or file name") {
		t.Errorf("expected the DOS unknown command message, got:\n%s", got)
	}
}

func TestShCommandsUnix(t *testing.T) {
	setup(t)
	cfg.Shell.Dialect = "unix"
	shCommands = []string{"nosuchcmd"}
	cmd, out := testCommand("")

	if err := runSh(cmd, nil); err != nil {
		t.Fatalf("runSh returned error: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "nosuchcmd: command not found") {
		t.Errorf("expected the unix unknown command message, got:\n%s", got)
	}
}

func TestShREPL(t *testing.T) {
	setup(t)
	cmd, out := testCommand("echo one\nexit\necho two\n")

	if err := runSh(cmd, nil); err != nil {
		t.Fatalf("runSh returned error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Type 'help' for commands.") {
		t.Errorf("expected banner, got:\n%s", got)
	}
	if !strings.Contains(got, `C:\>one`) {
		t.Errorf("expected prompt followed by output, got:\n%s", got)
	}
	if strings.Contains(got, "two") {
		t.Errorf("expected exit to stop the loop, got:\n%s", got)
	}
}

func TestStaticFS(t *testing.T) {
	setup(t)
	fsys, err := staticFS(cfg)
	if err != nil {
		t.Fatalf("staticFS returned error: %v", err)
	}
	if _, err := fs.Stat(fsys, "index.html"); err != nil {
		t.Errorf("expected embedded index.html: %v", err)
	}

	cfg.StaticDir = "does-not-exist"
	if _, err := staticFS(cfg); err == nil {
		t.Error("expected error for a missing static dir")
	}
}

func TestReadyChecks(t *testing.T) {
	setup(t)
	a, err := newApp(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("newApp returned error: %v", err)
	}
	defer a.close()

	for _, c := range readyChecks(a) {
		if err := c.Fn(context.Background()); err != nil {
			t.Errorf("check %s failed: %v", c.Name, err)
		}
	}
}

func TestNewLogger(t *testing.T) {
	setup(t)
	for _, format := range []string{"console", "json"} {
		cfg.LogFormat = format
		l, err := newLogger(cfg)
		if err != nil {
			t.Fatalf("newLogger(%s) returned error: %v", format, err)
		}
		_ = l.Sync()
	}

	l, err := newTUILogger(cfg)
	if err != nil {
		t.Fatalf("newTUILogger returned error: %v", err)
	}
	if l.Core().Enabled(zap.ErrorLevel) {
		t.Error("expected the terminal logger to discard output without --debug")
	}
}
