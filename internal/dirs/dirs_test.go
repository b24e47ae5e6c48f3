package dirs

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestXDGDirs(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout is linux-only")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "cfg"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"config", ConfigDir, filepath.Join(base, "cfg", "subattach")},
		{"state", StateDir, filepath.Join(base, "state", "subattach")},
		{"locks", LockDir, filepath.Join(base, "state", "subattach", "locks")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if err := EnsureAll(); err != nil {
		t.Fatalf("EnsureAll() error = %v", err)
	}
}

func TestEnsure_EmptyPath(t *testing.T) {
	if err := Ensure(""); err == nil {
		t.Error("Ensure(\"\") should fail")
	}
}
