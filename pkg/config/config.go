// Package config loads retrodesk settings from defaults, an optional
// retrodesk.yaml, RETRODESK_* environment variables and command line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"retrodesk/pkg/shell"
	"retrodesk/pkg/store"
	"retrodesk/pkg/wm"
)

// EnvPrefix prefixes environment overrides, e.g. RETRODESK_STORE_DRIVER.
const EnvPrefix = "RETRODESK"

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid config")

// Config is the full retrodesk configuration.
type Config struct {
	Addr string `mapstructure:"addr"`
	// ContentDir holds projects/ and blog/. Empty serves the bundled
	// sample content.
	ContentDir string `mapstructure:"content_dir"`
	// StaticDir overrides the embedded browser desktop.
	StaticDir      string       `mapstructure:"static_dir"`
	Watch          bool         `mapstructure:"watch"`
	Debug          bool         `mapstructure:"debug"`
	LogFormat      string       `mapstructure:"log_format"`
	AllowedOrigins []string     `mapstructure:"allowed_origins"`
	Store          store.Config `mapstructure:"store"`
	Viewport       wm.Viewport  `mapstructure:"viewport"`
	Shell          ShellConfig  `mapstructure:"shell"`
	TLS            TLSConfig    `mapstructure:"tls"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// ShellConfig configures terminal windows.
type ShellConfig struct {
	Dialect string `mapstructure:"dialect"`
}

// TLSConfig enables HTTPS when both files are set.
type TLSConfig struct {
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

// Enabled reports whether TLS is configured.
func (t TLSConfig) Enabled() bool {
	return t.Cert != "" && t.Key != ""
}

var defaults = map[string]any{
	"addr":            ":8080",
	"content_dir":     "",
	"static_dir":      "",
	"watch":           false,
	"debug":           false,
	"log_format":      "console",
	"allowed_origins": []string{},
	"store.driver":    store.DriverFile,
	"store.path":      "",
	"store.redis_url": "redis://localhost:6379/0",
	"store.prefix":    "retrodesk:",
	"viewport.width":  wm.DefaultViewport.Width,
	"viewport.height": wm.DefaultViewport.Height,
	"shell.dialect":   "dos",
	"tls.cert":        "",
	"tls.key":         "",
}

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"addr":         "addr",
	"content-dir":  "content_dir",
	"static-dir":   "static_dir",
	"watch":        "watch",
	"debug":        "debug",
	"log-format":   "log_format",
	"store":        "store.driver",
	"store-path":   "store.path",
	"redis-url":    "store.redis_url",
	"dialect":      "shell.dialect",
	"tls-cert":     "tls.cert",
	"tls-key":      "tls.key",
	"allow-origin": "allowed_origins",
}

// DefaultStorePath is used by the file and sqlite drivers when no path
// is configured.
func DefaultStorePath(driver string) string {
	switch driver {
	case store.DriverSQLite:
		return "retrodesk.db"
	case store.DriverFile:
		return "retrodesk-prefs.json"
	}
	return ""
}

// Load reads the configuration. file may be empty, in which case
// ./retrodesk.yaml is used when present. Flags that were set on the
// command line override everything else; flags may be nil.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("retrodesk")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || file != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		cfg.File = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath(cfg.Store.Driver)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if _, err := shell.ParseDialect(c.Shell.Dialect); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Driver {
	case store.DriverMemory, store.DriverFile, store.DriverSQLite, store.DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport %dx%d", c.Viewport.Width, c.Viewport.Height))
	}
	if (c.TLS.Cert == "") != (c.TLS.Key == "") {
		errs = append(errs, errors.New("tls.cert and tls.key must be set together"))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
