package config

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"subattach/internal/dirs"
	"subattach/internal/model"
)

// Keys understood in config files and as SUBATTACH_* environment variables.
const (
	KeyLang          = "lang"
	KeyMetadataTitle = "metadata_title"
	KeyFFmpegBinary  = "ffmpeg_binary"
	KeyFFprobeBinary = "ffprobe_binary"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
	KeyVerbose       = "verbose"
)

// Settings is the effective configuration after defaults, config file,
// environment and flags are merged (later wins).
type Settings struct {
	Lang          string `toml:"lang" yaml:"lang"`
	MetadataTitle string `toml:"metadata_title" yaml:"metadata_title"`
	FFmpegBinary  string `toml:"ffmpeg_binary" yaml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary" yaml:"ffprobe_binary"`
	LogLevel      string `toml:"log_level" yaml:"log_level"`
	LogFormat     string `toml:"log_format" yaml:"log_format"`
	Verbose       bool   `toml:"verbose" yaml:"verbose"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLang, model.DefaultLanguage)
	v.SetDefault(KeyMetadataTitle, model.DefaultMetadataTitle)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "console")
}

// Init wires Viper with config paths, env, defaults, and flag bindings.
// It is non-fatal: a missing config file is ignored, a malformed one is returned.
func Init(root *cobra.Command) error {
	return initViper(viper.GetViper(), root)
}

func initViper(v *viper.Viper, root *cobra.Command) error {
	if cfgDir, err := dirs.ConfigDir(); err == nil {
		v.AddConfigPath(cfgDir)
	}
	v.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	// Environment variables: SUBATTACH_*
	v.SetEnvPrefix("SUBATTACH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Bind root persistent flags to Viper keys
	pf := root.PersistentFlags()
	_ = v.BindPFlag(KeyVerbose, pf.Lookup("verbose"))
	_ = v.BindPFlag(KeyFFmpegBinary, pf.Lookup("ffmpeg-binary"))
	_ = v.BindPFlag(KeyFFprobeBinary, pf.Lookup("ffprobe-binary"))
	_ = v.BindPFlag(KeyLogLevel, pf.Lookup("log-level"))
	_ = v.BindPFlag(KeyLogFormat, pf.Lookup("log-format"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Current returns the effective settings from the global Viper instance.
func Current() Settings {
	return FromViper(viper.GetViper())
}

// FromViper extracts Settings from v.
func FromViper(v *viper.Viper) Settings {
	return Settings{
		Lang:          v.GetString(KeyLang),
		MetadataTitle: v.GetString(KeyMetadataTitle),
		FFmpegBinary:  v.GetString(KeyFFmpegBinary),
		FFprobeBinary: v.GetString(KeyFFprobeBinary),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFormat:     v.GetString(KeyLogFormat),
		Verbose:       v.GetBool(KeyVerbose),
	}
}

// ConfigFileUsed returns the config file Viper loaded, if any.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// Render serializes s as "toml" or "yaml"; the output is a valid config file.
func Render(s Settings, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "toml":
		return toml.Marshal(s)
	case "yaml", "yml":
		return yaml.Marshal(s)
	default:
		return nil, fmt.Errorf("unsupported format %q (want toml or yaml)", format)
	}
}
