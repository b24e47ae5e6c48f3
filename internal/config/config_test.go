package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "subattach"}
	pf := root.PersistentFlags()
	pf.BoolP("verbose", "v", false, "")
	pf.String("ffmpeg-binary", "", "")
	pf.String("ffprobe-binary", "", "")
	pf.String("log-level", "", "")
	pf.String("log-format", "", "")
	return root
}

func TestInit_Precedence(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("config dir layout is XDG-based on linux only")
	}
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	cfgDir := filepath.Join(cfgHome, "subattach")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := "lang = \"fra\"\nffmpeg_binary = \"/opt/ffmpeg\"\nlog_level = \"info\"\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUBATTACH_LANG", "deu")

	root := newRoot()
	if err := root.PersistentFlags().Set("log-level", "debug"); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := initViper(v, root); err != nil {
		t.Fatalf("initViper() error = %v", err)
	}
	s := FromViper(v)

	if s.Lang != "deu" {
		t.Errorf("Lang = %q, want env value deu", s.Lang)
	}
	if s.FFmpegBinary != "/opt/ffmpeg" {
		t.Errorf("FFmpegBinary = %q, want file value", s.FFmpegBinary)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want flag value debug", s.LogLevel)
	}
	if s.MetadataTitle != "ro-ox.com" {
		t.Errorf("MetadataTitle = %q, want default", s.MetadataTitle)
	}
	if s.LogFormat != "console" {
		t.Errorf("LogFormat = %q, want default console", s.LogFormat)
	}
}

func TestInit_MissingConfigIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := viper.New()
	if err := initViper(v, newRoot()); err != nil {
		t.Fatalf("initViper() error = %v", err)
	}
	if got := FromViper(v).Lang; got != "eng" {
		t.Errorf("Lang = %q, want eng", got)
	}
}

func TestRender(t *testing.T) {
	s := Settings{Lang: "spa", MetadataTitle: "x", LogLevel: "warn", LogFormat: "json", Verbose: true}

	out, err := Render(s, "toml")
	if err != nil {
		t.Fatalf("Render(toml) error = %v", err)
	}
	var back Settings
	if err := toml.Unmarshal(out, &back); err != nil {
		t.Fatalf("toml output does not parse: %v", err)
	}
	if back != s {
		t.Errorf("toml mismatch: %+v vs %+v", back, s)
	}

	out, err = Render(s, "YAML")
	if err != nil {
		t.Fatalf("Render(yaml) error = %v", err)
	}
	if !strings.Contains(string(out), "metadata_title: x") {
		t.Errorf("yaml output missing key: %s", out)
	}
	back = Settings{}
	if err := yaml.Unmarshal(out, &back); err != nil || back != s {
		t.Errorf("yaml mismatch: %+v (%v)", back, err)
	}

	if _, err := Render(s, "ini"); err == nil {
		t.Error("Render(ini) should fail")
	}
}
