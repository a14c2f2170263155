// Package config loads hostctl settings from flags, a TOML file and
// HOSTCTL_* environment variables, in that order of precedence.
package config

import (
	"os"
	"runtime"
	"strings"
	"time"

	"codeberg.org/mutker/hostctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultEnvPrefix  = "HOSTCTL"
	defaultConfigName = "hostctl"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Launch   LaunchConfig   `mapstructure:"launch"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Probe    ProbeConfig    `mapstructure:"probe"`
	Power    PowerConfig    `mapstructure:"power"`
	GPU      GPUConfig      `mapstructure:"gpu"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Log      LogConfig      `mapstructure:"log"`
	Platform string         `mapstructure:"platform"`

	// ConfigFile is the file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	StaticDir   string   `mapstructure:"static_dir"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type AuthConfig struct {
	Token          string `mapstructure:"token"`
	ProtectControl bool   `mapstructure:"protect_control"`
}

type LaunchConfig struct {
	Config string `mapstructure:"config"`
}

type ExecutorConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type ProbeConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type PowerConfig struct {
	GraceDelay time.Duration `mapstructure:"grace_delay"`
}

type GPUConfig struct {
	NVML bool `mapstructure:"nvml"`
}

type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper, goos string) {
	v.SetDefault("server.listen", ":5000")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("auth.token", "")
	v.SetDefault("auth.protect_control", false)
	v.SetDefault("launch.config", "app_config.json")
	v.SetDefault("executor.timeout", 6*time.Second)
	v.SetDefault("probe.cache_ttl", time.Duration(0))
	v.SetDefault("power.grace_delay", 5*time.Second)
	v.SetDefault("gpu.nvml", false)
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", "hostctl-journal.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("platform", goos)
}

// NewFlagSet declares the command-line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "Path to a TOML configuration file")
	fs.StringP("listen", "l", "", "Listen address")
	fs.String("static-dir", "", "Directory served at / and /static")
	fs.String("launch-config", "", "Launch target catalog (.json or .yaml)")
	fs.String("token", "", "Shared launch token")
	fs.Bool("protect-control", false, "Require the token for control endpoints")
	fs.Duration("timeout", 0, "Per-command timeout")
	fs.Bool("nvml", false, "Read GPU metrics through NVML")
	fs.Bool("journal", false, "Record control actions in the SQLite journal")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("platform", "", "Provider registry to use (windows, linux)")

	return fs
}

var flagKeys = map[string]string{
	"listen":          "server.listen",
	"static-dir":      "server.static_dir",
	"launch-config":   "launch.config",
	"token":           "auth.token",
	"protect-control": "auth.protect_control",
	"timeout":         "executor.timeout",
	"nvml":            "gpu.nvml",
	"journal":         "journal.enabled",
	"log-level":       "log.level",
	"platform":        "platform",
}

// Load parses args and merges every configuration source.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: defaultEnvPrefix, goos: runtime.GOOS}
	for _, opt := range opts {
		opt(&o)
	}

	fs := NewFlagSet(defaultConfigName)
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	setDefaults(v, o.goos)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Only flags that were set override the lower layers.
	for name, key := range flagKeys {
		if flag := fs.Lookup(name); flag != nil && flag.Changed {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err)
			}
		}
	}

	configPath := o.configPath
	if path, _ := fs.GetString("config"); path != "" {
		configPath = path
	}
	if configPath == "" {
		configPath = os.Getenv(o.envPrefix + "_CONFIG")
	}

	v.SetConfigType("toml")
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/hostctl")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.Platform = strings.ToLower(strings.TrimSpace(cfg.Platform))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks everything except the token, which only the server
// needs.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Executor.Timeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidTimeout, c.Executor.Timeout.String())
	}
	if c.Probe.CacheTTL < 0 || c.Power.GraceDelay < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "durations must not be negative")
	}
	if !LogLevel(strings.ToLower(c.Log.Level)).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.Log.Level)
	}
	switch c.Platform {
	case "windows", "linux":
	default:
		return errFactory.WithData(errors.ErrInvalidPlatform, c.Platform)
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return errFactory.WithData(errors.ErrMissingConfig, "journal.path")
	}

	return nil
}

// RequireToken fails when no shared token is configured.
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.Auth.Token) == "" {
		return errors.New().New(errors.ErrMissingToken)
	}

	return nil
}
