package wlst

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeScript drops an executable shell script into a temp dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake_wlst.sh")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestExecInvoker_CapturesOutputAndArgs(t *testing.T) {
	exe := writeScript(t, `echo "check=$2 url=$3 user=$4"
echo "oops" >&2`)

	inv := &ExecInvoker{}
	res, err := inv.Invoke(context.Background(), Request{
		Executable: exe,
		Script:     "wlst_health_checks.py",
		CheckType:  "cluster",
		AdminURL:   "t3://admin:7001",
		Username:   "weblogic",
		Timeout:    10 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit 0, got %d", res.ExitCode)
	}
	if !strings.Contains(res.Stdout, "check=cluster") {
		t.Errorf("check type not passed through: %q", res.Stdout)
	}
	if !strings.Contains(res.Stdout, "url=t3://admin:7001") {
		t.Errorf("admin url not passed through: %q", res.Stdout)
	}
	if !strings.Contains(res.Stderr, "oops") {
		t.Errorf("stderr not captured: %q", res.Stderr)
	}
}

func TestExecInvoker_FixtureEnvVar(t *testing.T) {
	exe := writeScript(t, `echo "fixture=$WLST_SAMPLE_OUTPUT"`)

	inv := &ExecInvoker{}
	res, err := inv.Invoke(context.Background(), Request{
		Executable: exe,
		Script:     "script.py",
		CheckType:  "all",
		Fixture:    "/tmp/sample.json",
		Timeout:    10 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Stdout, "fixture=/tmp/sample.json") {
		t.Errorf("fixture env var not exported: %q", res.Stdout)
	}
}

func TestExecInvoker_NonzeroExitIsNotAnError(t *testing.T) {
	exe := writeScript(t, `echo "partial output"
exit 3`)

	inv := &ExecInvoker{}
	res, err := inv.Invoke(context.Background(), Request{
		Executable: exe,
		Script:     "script.py",
		CheckType:  "cluster",
		Timeout:    10 * time.Second,
	})
	if err != nil {
		t.Fatalf("nonzero exit must surface via ExitCode, got error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("expected exit 3, got %d", res.ExitCode)
	}
	if !strings.Contains(res.Stdout, "partial output") {
		t.Errorf("stdout lost on nonzero exit: %q", res.Stdout)
	}
}

func TestExecInvoker_SpawnFailure(t *testing.T) {
	inv := &ExecInvoker{}
	_, err := inv.Invoke(context.Background(), Request{
		Executable: filepath.Join(t.TempDir(), "does-not-exist"),
		Script:     "script.py",
		CheckType:  "cluster",
		Timeout:    10 * time.Second,
	})
	if !errors.Is(err, ErrSpawn) {
		t.Fatalf("expected ErrSpawn, got %v", err)
	}
}

func TestExecInvoker_DumpDirTranscript(t *testing.T) {
	exe := writeScript(t, `echo "payload"
echo "warn" >&2`)
	dumpDir := t.TempDir()

	inv := &ExecInvoker{DumpDir: dumpDir}
	_, err := inv.Invoke(context.Background(), Request{
		Executable: exe,
		Script:     "script.py",
		CheckType:  "jms",
		Timeout:    10 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dumpDir, "wlst_raw_jms_*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one transcript, got %v (%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if !strings.Contains(string(data), "payload") || !strings.Contains(string(data), "--- STDERR ---") {
		t.Errorf("transcript incomplete: %q", string(data))
	}
}

func TestExecInvoker_Timeout(t *testing.T) {
	exe := writeScript(t, `sleep 5
echo "too late"`)

	inv := &ExecInvoker{}
	start := time.Now()
	_, err := inv.Invoke(context.Background(), Request{
		Executable: exe,
		Script:     "script.py",
		CheckType:  "cluster",
		Timeout:    200 * time.Millisecond,
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("subprocess was not killed promptly on deadline")
	}
}
