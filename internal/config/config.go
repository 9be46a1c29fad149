// Package config loads runtime settings from defaults, an optional YAML file,
// TOOLFINDER_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TOOLFINDER_API_BASEURL.
const EnvPrefix = "TOOLFINDER"

// Config is the resolved configuration.
type Config struct {
	Environment string        `mapstructure:"environment"`
	HTTP        HTTPConfig    `mapstructure:"http"`
	API         APIConfig     `mapstructure:"api"`
	Session     SessionConfig `mapstructure:"session"`
	UI          UIConfig      `mapstructure:"ui"`
	Demo        DemoConfig    `mapstructure:"demo"`
	Log         LogConfig     `mapstructure:"log"`
}

// HTTPConfig sets the listen address and the path the UI is mounted under.
type HTTPConfig struct {
	Address  string `mapstructure:"address"`
	BasePath string `mapstructure:"basePath"`
}

// APIConfig points at the catalog API. An empty BaseURL runs the in-memory
// demo catalog instead.
type APIConfig struct {
	BaseURL string        `mapstructure:"baseURL"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig holds the cookie keys and the limits of the per-visitor
// state kept in memory.
type SessionConfig struct {
	HashKey       string        `mapstructure:"hashKey"`
	BlockKey      string        `mapstructure:"blockKey"`
	CookieName    string        `mapstructure:"cookieName"`
	Secure        bool          `mapstructure:"secure"`
	StateCapacity int           `mapstructure:"stateCapacity"`
	StateIdleTTL  time.Duration `mapstructure:"stateIdleTTL"`
}

// UIConfig holds the confirmation delays rendered into htmx triggers.
type UIConfig struct {
	SuccessDelay     time.Duration `mapstructure:"successDelay"`
	ReviewCloseDelay time.Duration `mapstructure:"reviewCloseDelay"`
	MessageTTL       time.Duration `mapstructure:"messageTTL"`
}

// DemoConfig configures the in-memory catalog used in demo mode.
type DemoConfig struct {
	SeedFile      string `mapstructure:"seedFile"`
	AdminEmail    string `mapstructure:"adminEmail"`
	AdminPassword string `mapstructure:"adminPassword"`
	SigningKey    string `mapstructure:"signingKey"`
}

// LogConfig sets the minimum log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DemoMode reports whether no catalog API is configured.
func (c Config) DemoMode() bool {
	return strings.TrimSpace(c.API.BaseURL) == ""
}

// NewViper returns a viper instance with defaults and env binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.basePath", "/")
	v.SetDefault("api.baseURL", "")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("session.hashKey", "")
	v.SetDefault("session.blockKey", "")
	v.SetDefault("session.cookieName", "toolfinder_session")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.stateCapacity", 10000)
	v.SetDefault("session.stateIdleTTL", 12*time.Hour)
	v.SetDefault("ui.successDelay", time.Second)
	v.SetDefault("ui.reviewCloseDelay", 1500*time.Millisecond)
	v.SetDefault("ui.messageTTL", 3*time.Second)
	v.SetDefault("demo.seedFile", "")
	v.SetDefault("demo.adminEmail", "admin@example.com")
	v.SetDefault("demo.adminPassword", "admin")
	v.SetDefault("demo.signingKey", "")
	v.SetDefault("log.level", "info")
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"addr":        "http.address",
	"base-path":   "http.basePath",
	"api-url":     "api.baseURL",
	"api-timeout": "api.timeout",
	"seed":        "demo.seedFile",
	"log-level":   "log.level",
	"environment": "environment",
}

// RegisterFlags adds the serve flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("addr", ":8080", "listen address")
	fs.String("base-path", "/", "mount path of the UI")
	fs.String("api-url", "", "catalog API base URL (empty runs the demo catalog)")
	fs.Duration("api-timeout", 10*time.Second, "timeout for catalog API calls")
	fs.String("seed", "", "YAML seed file for the demo catalog")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("environment", "development", "deployment environment label")
}

// BindFlags binds the flags registered by RegisterFlags so that explicitly
// set flags win over file and environment values.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("config: bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional YAML file at path and decodes the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = NewViper()
	}
	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTP.Address) == "" {
		errs = append(errs, errors.New("http.address is required"))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	if n := len(c.Session.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		errs = append(errs, errors.New("session.blockKey must be 16, 24 or 32 bytes"))
	}
	if c.Session.StateCapacity < 0 || c.Session.StateIdleTTL < 0 {
		errs = append(errs, errors.New("session state limits must not be negative"))
	}
	if c.UI.SuccessDelay < 0 || c.UI.ReviewCloseDelay < 0 || c.UI.MessageTTL < 0 {
		errs = append(errs, errors.New("ui delays must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
