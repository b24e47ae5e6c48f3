package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "subattach"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// ConfigDir returns the directory searched for config.{yaml,toml,json}.
// - Linux: $XDG_CONFIG_HOME/subattach or ~/.config/subattach
// - macOS: ~/Library/Application Support/subattach
// - others: os.UserConfigDir()/subattach
func ConfigDir() (string, error) {
	return platformDir("XDG_CONFIG_HOME", ".config", "")
}

// StateDir holds run locks.
// - Linux: $XDG_STATE_HOME/subattach or ~/.local/state/subattach
// - macOS: ~/Library/Application Support/subattach/state
// - Windows: %LocalAppData%/subattach/state (fallback to ConfigDir/state)
func StateDir() (string, error) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		if la := os.Getenv("LOCALAPPDATA"); la != "" {
			return filepath.Join(la, AppName(), "state"), nil
		}
	}
	return platformDir("XDG_STATE_HOME", filepath.Join(".local", "state"), "state")
}

// LockDir is where per-input run locks live.
func LockDir() (string, error) {
	s, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(s, "locks"), nil
}

// platformDir resolves an XDG-style directory on Linux, the Application
// Support directory on macOS (plus sub, if set), and a directory under
// os.UserConfigDir elsewhere.
func platformDir(xdgEnv, linuxHomeRel, sub string) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", AppName(), sub), nil
	case "linux":
		if xdg := os.Getenv(xdgEnv); xdg != "" {
			return filepath.Join(xdg, AppName()), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, linuxHomeRel, AppName()), nil
	default:
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, AppName(), sub), nil
	}
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureAll ensures the config and state dirs exist.
func EnsureAll() error {
	for _, fn := range []func() (string, error){ConfigDir, StateDir} {
		p, err := fn()
		if err != nil {
			continue
		}
		if err := Ensure(p); err != nil {
			return err
		}
	}
	return nil
}
