package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Status reports whether an external tool could be resolved.
type Status struct {
	Name      string
	Path      string
	Available bool
	Detail    string
}

// find resolves customPath (a file path or a name on PATH), falling back to
// the default binary name.
func find(customPath, name string) (string, error) {
	customPath = strings.TrimSpace(customPath)
	if customPath != "" {
		if fi, err := os.Stat(customPath); err == nil && !fi.IsDir() {
			return customPath, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("could not find %s at %q", name, customPath)
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("could not find %s in PATH. Please install ffmpeg.", name)
}

// FindFFmpeg returns the path to the ffmpeg binary.
func FindFFmpeg(customPath string) (string, error) {
	return find(customPath, "ffmpeg")
}

// FindFFprobe returns the path to the ffprobe binary.
func FindFFprobe(customPath string) (string, error) {
	return find(customPath, "ffprobe")
}

// Check resolves both tools and reports their status without failing fast.
func Check(ffmpegPath, ffprobePath string) []Status {
	out := make([]Status, 0, 2)
	for _, c := range []struct {
		name   string
		custom string
		fn     func(string) (string, error)
	}{
		{"ffmpeg", ffmpegPath, FindFFmpeg},
		{"ffprobe", ffprobePath, FindFFprobe},
	} {
		p, err := c.fn(c.custom)
		st := Status{Name: c.name, Path: p, Available: err == nil}
		if err != nil {
			st.Detail = err.Error()
		}
		out = append(out, st)
	}
	return out
}
