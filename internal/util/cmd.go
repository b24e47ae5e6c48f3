package util

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// CmdSpec describes a subprocess to run.
type CmdSpec struct {
	Path string   // Binary path
	Args []string // Arguments, passed as a vector (never through a shell)

	// Echo receives the command line and every output line when non-nil
	// (verbose mode). The TUI leaves it nil so the screen is not garbled.
	Echo io.Writer

	StdoutLine    func(string) // Called for each stdout line (if non-nil)
	StderrLine    func(string) // Called for each stderr line (if non-nil)
	CaptureStdout bool         // When false and StdoutLine is set, stdout is not buffered
}

// CmdRunner executes subprocesses. The pipeline depends on this interface so
// tests can substitute ffprobe and ffmpeg.
type CmdRunner interface {
	Run(ctx context.Context, spec CmdSpec) (CmdResult, error)
}

// DefaultRunner runs real subprocesses via Run.
type DefaultRunner struct{}

// NewDefaultRunner returns the exec-backed CmdRunner.
func NewDefaultRunner() CmdRunner {
	return DefaultRunner{}
}

// Run implements CmdRunner.
func (DefaultRunner) Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	return Run(ctx, spec)
}

// CmdResult contains captured output and exit status.
type CmdResult struct {
	Stdout []byte
	Stderr []byte
	Code   int
	Err    error
}

// Run executes the command and blocks until it exits and both output
// streams are drained. Stderr is always captured. On non-zero exit it
// returns an error describing the exit code, while also populating
// CmdResult.Code and the captured buffers.
func Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	var stdoutBuf, stderrBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}

	if spec.Echo != nil {
		fmt.Fprintf(spec.Echo, "+ %s\n", CommandLine(spec.Path, spec.Args))
	}

	if err := cmd.Start(); err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}

	captureStdout := spec.CaptureStdout || spec.StdoutLine == nil

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		drain(stdoutPipe, spec.StdoutLine, spec.Echo, &stdoutBuf, captureStdout)
	}()
	go func() {
		defer wg.Done()
		drain(stderrPipe, spec.StderrLine, spec.Echo, &stderrBuf, true)
	}()

	// Readers must finish before Wait closes the pipes.
	wg.Wait()
	waitErr := cmd.Wait()

	code := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}

	res := CmdResult{
		Stdout: stdoutBuf.Bytes(),
		Stderr: stderrBuf.Bytes(),
		Code:   code,
		Err:    waitErr,
	}

	if waitErr != nil {
		return res, fmt.Errorf("command failed (exit %d): %w", code, waitErr)
	}
	return res, nil
}

// drain scans r line by line, feeding the callback, the echo writer and the
// capture buffer in that order.
func drain(r io.Reader, onLine func(string), echo io.Writer, buf *bytes.Buffer, capture bool) {
	sc := bufio.NewScanner(r)
	// ffprobe JSON for containers with many streams can exceed the 64KB default
	const maxCapacity = 1024 * 1024
	sc.Buffer(make([]byte, 0, 64*1024), maxCapacity)
	for sc.Scan() {
		line := sc.Text()
		if onLine != nil {
			onLine(line)
		}
		if echo != nil {
			fmt.Fprintln(echo, line)
		}
		if capture {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil && echo != nil {
		fmt.Fprintf(echo, "scan error: %v\n", err)
	}
}

// CommandLine renders path and args as a copy-pasteable shell line. It is
// only used for display; execution always passes the argument vector.
func CommandLine(path string, args []string) string {
	b := &strings.Builder{}
	b.WriteString(quote(path))
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(quote(a))
	}
	return b.String()
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	// Simple quoting: wrap in single quotes and escape existing single quotes.
	if strings.ContainsAny(s, " \t\n\"'\\$`(){}[]*&;|<>?!") {
		return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
	}
	return s
}
