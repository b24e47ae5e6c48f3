package deps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindFFmpeg_CustomPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg-custom")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := FindFFmpeg(bin)
	if err != nil {
		t.Fatalf("FindFFmpeg(%q) error: %v", bin, err)
	}
	if got != bin {
		t.Errorf("FindFFmpeg = %q, want %q", got, bin)
	}
}

func TestFindFFprobe_MissingCustomPath(t *testing.T) {
	_, err := FindFFprobe(filepath.Join(t.TempDir(), "nope"))
	if err == nil || !strings.Contains(err.Error(), "ffprobe") {
		t.Errorf("expected ffprobe lookup error, got %v", err)
	}
}

func TestCheck_ReportsEachTool(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	st := Check(missing, missing)
	if len(st) != 2 {
		t.Fatalf("Check returned %d statuses, want 2", len(st))
	}
	for _, s := range st {
		if s.Available {
			t.Errorf("%s reported available for missing path", s.Name)
		}
		if s.Detail == "" {
			t.Errorf("%s missing detail", s.Name)
		}
	}
	if st[0].Name != "ffmpeg" || st[1].Name != "ffprobe" {
		t.Errorf("unexpected order: %s, %s", st[0].Name, st[1].Name)
	}
}
