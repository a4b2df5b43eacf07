package wlst

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// RawResult holds the captured output of one legacy-runtime invocation.
// It is immutable once returned.
type RawResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Sentinel errors for the two invocation failure modes. Both are fatal for
// the check that produced them and are never retried.
var (
	ErrSpawn   = errors.New("legacy runtime could not be launched")
	ErrTimeout = errors.New("legacy runtime deadline exceeded")
)

// Request describes one invocation of the legacy scripting runtime.
type Request struct {
	Executable string // wlst.sh, or an interpreter for local testing
	Script     string // path to the health-check script
	CheckType  string
	AdminURL   string
	Username   string
	Password   string
	Fixture    string        // when set, exported as WLST_SAMPLE_OUTPUT
	Timeout    time.Duration // bounds the subprocess lifetime
}

// Invoker abstracts legacy-runtime execution for testability.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (*RawResult, error)
}

// ExecInvoker implements Invoker by spawning a real subprocess. Exactly one
// process is created and terminated per call.
type ExecInvoker struct {
	// DumpDir, when set, receives a raw transcript of every invocation for
	// debugging. Dump failures are ignored.
	DumpDir string
}

func (e *ExecInvoker) Invoke(ctx context.Context, req Request) (*RawResult, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The runtime may execute in a far more limited environment than this
	// process; the contract is argv + env in, exit code + text streams out.
	cmd := exec.CommandContext(ctx, req.Executable,
		req.Script, req.CheckType, req.AdminURL, req.Username, req.Password)

	cmd.Env = os.Environ()
	if req.Fixture != "" {
		cmd.Env = append(cmd.Env, "WLST_SAMPLE_OUTPUT="+req.Fixture)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	e.dumpRaw(req.CheckType, stdout.String(), stderr.String())

	// Timeout wins over whatever exit state the kill produced. No partial
	// output is salvaged on this path.
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &RawResult{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, req.Executable, err)
	}

	return &RawResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// dumpRaw writes the captured streams to a transcript file under DumpDir.
func (e *ExecInvoker) dumpRaw(check, stdout, stderr string) {
	if e.DumpDir == "" {
		return
	}
	f, err := os.CreateTemp(e.DumpDir, "wlst_raw_"+check+"_*.log")
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(stdout)
	if stderr != "" {
		f.WriteString("\n--- STDERR ---\n")
		f.WriteString(stderr)
	}
}
