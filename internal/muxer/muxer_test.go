package muxer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subattach/internal/model"
	"subattach/internal/muxplan"
	"subattach/internal/progress"
	"subattach/internal/util"
)

type recordingReporter struct {
	updates []progress.Update
	logs    []progress.Log
}

func (r *recordingReporter) Update(u progress.Update) { r.updates = append(r.updates, u) }
func (r *recordingReporter) Log(l progress.Log)       { r.logs = append(r.logs, l) }
func (r *recordingReporter) Result(progress.Result)   {}

// fakeFFmpeg writes content to the last argument and exits with code.
// With noWrite set it exits without touching the output.
type fakeFFmpeg struct {
	content string
	code    int
	stderr  string
	noWrite bool
	args    []string
}

func (f *fakeFFmpeg) Run(ctx context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.args = spec.Args
	out := spec.Args[len(spec.Args)-1]
	if !f.noWrite {
		if err := os.WriteFile(out, []byte(f.content), 0o644); err != nil {
			return util.CmdResult{Code: -1}, err
		}
	}
	if spec.StdoutLine != nil {
		spec.StdoutLine("out_time_ms=5000000")
		spec.StdoutLine("progress=continue")
		spec.StdoutLine("progress=end")
	}
	if spec.StderrLine != nil && f.stderr != "" {
		spec.StderrLine(f.stderr)
	}
	if f.code != 0 {
		return util.CmdResult{Code: f.code, Stderr: []byte(f.stderr)}, errors.New("exit status")
	}
	return util.CmdResult{}, nil
}

func testPlan(t *testing.T) (muxplan.Plan, string) {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "movie.temp.mkv")
	req := model.AttachmentRequest{
		Input: filepath.Join(dir, "movie.mkv"), Subtitle: filepath.Join(dir, "movie.srt"),
		Output: out, Language: "eng",
	}
	return muxplan.Build(req, 1), out
}

func TestMux_Success(t *testing.T) {
	p, out := testPlan(t)
	ff := &fakeFFmpeg{content: "muxed"}
	rep := &recordingReporter{}
	m := New(Options{FFmpegPath: "/usr/bin/ffmpeg", Runner: ff, Reporter: rep, JobID: "j", DurationSec: 10})

	n, err := m.Mux(context.Background(), p)
	if err != nil {
		t.Fatalf("Mux() error = %v", err)
	}
	if n != int64(len("muxed")) {
		t.Errorf("Mux() bytes = %d, want %d", n, len("muxed"))
	}
	if ff.args[len(ff.args)-1] != out {
		t.Errorf("last arg = %q, want %q", ff.args[len(ff.args)-1], out)
	}
	if !strings.Contains(strings.Join(ff.args, " "), "-progress pipe:1") {
		t.Errorf("progress output not requested: %v", ff.args)
	}
	if len(rep.updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(rep.updates))
	}
	if rep.updates[0].Percent != 50 || rep.updates[1].Percent != 100 {
		t.Errorf("percents = %v, %v", rep.updates[0].Percent, rep.updates[1].Percent)
	}
}

func TestMux_Failures(t *testing.T) {
	tests := []struct {
		name    string
		ff      *fakeFFmpeg
		wantMsg string
	}{
		{"non-zero exit", &fakeFFmpeg{content: "partial", code: 1, stderr: "Invalid data found"}, "Invalid data found"},
		{"empty output", &fakeFFmpeg{content: ""}, "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := testPlan(t)
			m := New(Options{Runner: tt.ff, RemoveOnFailure: true})
			_, err := m.Mux(context.Background(), p)
			if !errors.Is(err, ErrMuxFailed) {
				t.Fatalf("Mux() error = %v, want ErrMuxFailed", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
			if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
				t.Errorf("partial output %s left behind", out)
			}
		})
	}
}

func TestMux_FailureKeepsOutputItDoesNotOwn(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "movie.mkv")
	existing := filepath.Join(dir, "release.mkv")
	for _, f := range []string{input, existing} {
		if err := os.WriteFile(f, []byte("keep"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		output  string
		remove  bool
		noWrite bool
	}{
		{"explicit output without ownership", existing, false, true},
		{"explicit output written then failed", existing, false, false},
		{"output is the input", input, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(tt.output, []byte("keep"), 0o644); err != nil {
				t.Fatal(err)
			}
			req := model.AttachmentRequest{
				Input: input, Subtitle: filepath.Join(dir, "movie.srt"),
				Output: tt.output, Language: "eng",
			}
			ff := &fakeFFmpeg{content: "partial", code: 1, stderr: "same as Input #0 - exiting", noWrite: tt.noWrite}
			m := New(Options{Runner: ff, RemoveOnFailure: tt.remove})

			if _, err := m.Mux(context.Background(), muxplan.Build(req, 0)); !errors.Is(err, ErrMuxFailed) {
				t.Fatalf("Mux() error = %v, want ErrMuxFailed", err)
			}
			if _, err := os.Stat(tt.output); err != nil {
				t.Errorf("%s removed after failed mux: %v", tt.output, err)
			}
		})
	}
}

func TestLastLines(t *testing.T) {
	if got := lastLines("a\nb\nc\n", 2); got != "b\nc" {
		t.Errorf("lastLines = %q", got)
	}
	if got := lastLines("", 2); got != "" {
		t.Errorf("lastLines(empty) = %q", got)
	}
}
