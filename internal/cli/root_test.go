package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sunishkjoseph/mwhealth/internal/config"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	SetVersion("test-version")
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "test-version") {
		t.Errorf("expected version output to contain 'test-version', got: %s", out)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedSubcommands := []string{
		"check", "history", "report", "watch", "config", "version",
	}
	for _, sub := range expectedSubcommands {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help output to list %q, got: %s", sub, out)
		}
	}
}

func TestResolveCheckTypes(t *testing.T) {
	cfg := config.Defaults()

	// Explicit args win over everything.
	got := resolveCheckTypes([]string{"cluster", "jms"}, true, cfg)
	if len(got) != 2 || got[0] != "cluster" || got[1] != "jms" {
		t.Errorf("explicit args not honored: %v", got)
	}

	// --full expands to the whole suite.
	got = resolveCheckTypes(nil, true, cfg)
	if len(got) != len(fullChecks) {
		t.Errorf("expected %d checks, got %v", len(fullChecks), got)
	}

	// Configured "all" expands to individual checks.
	got = resolveCheckTypes(nil, false, cfg)
	if len(got) != len(fullChecks) {
		t.Errorf("default 'all' did not expand: %v", got)
	}

	// "all" inside an explicit list expands in place.
	got = resolveCheckTypes([]string{"threads", "all"}, false, cfg)
	if len(got) != 1+len(fullChecks) || got[0] != "threads" {
		t.Errorf("in-place expansion wrong: %v", got)
	}
}

func TestRedact(t *testing.T) {
	if redact("") != "" {
		t.Error("empty password must stay empty")
	}
	if redact("secret") == "secret" {
		t.Error("password must not be echoed")
	}
}
