// Package config loads memochat settings from ~/.memochat/config.toml and
// MEMOCHAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "MEMOCHAT"
	appDirName = ".memochat"
)

const (
	KeyDataDir          = "data_dir"
	KeyLocale           = "locale"
	KeyStoreBackend     = "store.backend"
	KeyStoreFallback    = "store.fallback"
	KeyStorePath        = "store.path"
	KeyStoreDir         = "store.dir"
	KeyStoreSQLitePath  = "store.sqlite_path"
	KeyStoreDatabaseURL = "store.database_url"
	KeyStorePassPrefix  = "store.pass_prefix"
	KeyBackendMode      = "backend.mode"
	KeyBackendModel     = "backend.model"
	KeyBackendAPIKey    = "backend.api_key"
	KeyBackendProxyURL  = "backend.proxy_url"
	KeyBackendTimeout   = "backend.timeout"
	KeyQuotaDailyLimit  = "quota.daily_limit"
	KeyServeAddr        = "serve.addr"
	KeyServeShutdown    = "serve.shutdown_timeout"
	KeyServeNamespace   = "serve.metrics_namespace"
	KeyLogLevel         = "log.level"
	KeyLogFile          = "log.file"
)

var (
	Locales        = []string{"ar", "en"}
	StoreBackends  = []string{"toml", "file", "sqlite", "postgres", "pass", "memory"}
	BackendModes   = []string{"auto", "gemini", "anthropic", "proxy", "mock"}
	upstreamModels = map[string]string{
		"gemini":    "gemini-2.5-flash",
		"anthropic": "claude-3-7-sonnet-latest",
	}
)

type Config struct {
	DataDir string
	Locale  string
	Store   StoreConfig
	Backend BackendConfig
	Quota   QuotaConfig
	Serve   ServeConfig
	Log     LogConfig
}

type StoreConfig struct {
	Backend     string
	Fallback    string
	Path        string
	Dir         string
	SQLitePath  string
	DatabaseURL string
	PassPrefix  string
}

type BackendConfig struct {
	Mode            string
	Model           string
	APIKey          string
	GeminiAPIKey    string
	AnthropicAPIKey string
	ProxyURL        string
	Timeout         time.Duration
}

type QuotaConfig struct {
	DailyLimit int
}

type ServeConfig struct {
	Addr             string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads configuration into v. An explicit path must exist; the default
// ~/.memochat/config.toml is optional.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	defaultDataDir := filepath.Join(homeDir, appDirName)

	setDefaults(v, defaultDataDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(defaultDataDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v, homeDir)
}

func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault(KeyDataDir, dataDir)
	v.SetDefault(KeyLocale, "ar")
	v.SetDefault(KeyStoreBackend, "toml")
	v.SetDefault(KeyStoreFallback, "")
	v.SetDefault(KeyStorePath, "")
	v.SetDefault(KeyStoreDir, "")
	v.SetDefault(KeyStoreSQLitePath, "")
	v.SetDefault(KeyStoreDatabaseURL, "")
	v.SetDefault(KeyStorePassPrefix, "memochat")
	v.SetDefault(KeyBackendMode, "auto")
	v.SetDefault(KeyBackendModel, "")
	v.SetDefault(KeyBackendAPIKey, "")
	v.SetDefault(KeyBackendProxyURL, "")
	v.SetDefault(KeyBackendTimeout, "60s")
	v.SetDefault(KeyQuotaDailyLimit, 30)
	v.SetDefault(KeyServeAddr, "127.0.0.1:8787")
	v.SetDefault(KeyServeShutdown, "10s")
	v.SetDefault(KeyServeNamespace, "memochat")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFile, "")
}

func fromViper(v *viper.Viper, homeDir string) (Config, error) {
	cfg := Config{
		DataDir: expandHome(trim(v.GetString(KeyDataDir)), homeDir),
		Locale:  strings.ToLower(trim(v.GetString(KeyLocale))),
		Store: StoreConfig{
			Backend:     strings.ToLower(trim(v.GetString(KeyStoreBackend))),
			Fallback:    strings.ToLower(trim(v.GetString(KeyStoreFallback))),
			Path:        expandHome(trim(v.GetString(KeyStorePath)), homeDir),
			Dir:         expandHome(trim(v.GetString(KeyStoreDir)), homeDir),
			SQLitePath:  expandHome(trim(v.GetString(KeyStoreSQLitePath)), homeDir),
			DatabaseURL: trim(v.GetString(KeyStoreDatabaseURL)),
			PassPrefix:  trim(v.GetString(KeyStorePassPrefix)),
		},
		Backend: BackendConfig{
			Mode:            strings.ToLower(trim(v.GetString(KeyBackendMode))),
			Model:           trim(v.GetString(KeyBackendModel)),
			APIKey:          trim(v.GetString(KeyBackendAPIKey)),
			GeminiAPIKey:    firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("API_KEY")),
			AnthropicAPIKey: trim(os.Getenv("ANTHROPIC_API_KEY")),
			ProxyURL:        trim(v.GetString(KeyBackendProxyURL)),
		},
		Quota: QuotaConfig{DailyLimit: v.GetInt(KeyQuotaDailyLimit)},
		Serve: ServeConfig{
			Addr:             trim(v.GetString(KeyServeAddr)),
			MetricsNamespace: trim(v.GetString(KeyServeNamespace)),
		},
		Log: LogConfig{
			Level: strings.ToLower(trim(v.GetString(KeyLogLevel))),
			File:  expandHome(trim(v.GetString(KeyLogFile)), homeDir),
		},
	}

	var err error
	if cfg.Backend.Timeout, err = durationFrom(v, KeyBackendTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Serve.ShutdownTimeout, err = durationFrom(v, KeyServeShutdown); err != nil {
		return Config{}, err
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(cfg.DataDir, "store.toml")
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = filepath.Join(cfg.DataDir, "records")
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = filepath.Join(cfg.DataDir, "memochat.db")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%s must not be empty", KeyDataDir)
	}
	if !slices.Contains(Locales, c.Locale) {
		return fmt.Errorf("%s must be one of %s, got %q", KeyLocale, strings.Join(Locales, "|"), c.Locale)
	}
	if !slices.Contains(StoreBackends, c.Store.Backend) {
		return fmt.Errorf("%s must be one of %s, got %q", KeyStoreBackend, strings.Join(StoreBackends, "|"), c.Store.Backend)
	}
	if c.Store.Fallback != "" {
		if !slices.Contains(StoreBackends, c.Store.Fallback) {
			return fmt.Errorf("%s must be one of %s, got %q", KeyStoreFallback, strings.Join(StoreBackends, "|"), c.Store.Fallback)
		}
		if c.Store.Fallback == c.Store.Backend {
			return fmt.Errorf("%s must differ from %s", KeyStoreFallback, KeyStoreBackend)
		}
	}
	if (c.Store.Backend == "postgres" || c.Store.Fallback == "postgres") && c.Store.DatabaseURL == "" {
		return fmt.Errorf("%s is required for the postgres store", KeyStoreDatabaseURL)
	}
	if !slices.Contains(BackendModes, c.Backend.Mode) {
		return fmt.Errorf("%s must be one of %s, got %q", KeyBackendMode, strings.Join(BackendModes, "|"), c.Backend.Mode)
	}
	if c.Backend.Mode == "proxy" && c.Backend.ProxyURL == "" {
		return fmt.Errorf("%s is required when %s=proxy", KeyBackendProxyURL, KeyBackendMode)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyBackendTimeout)
	}
	if c.Quota.DailyLimit <= 0 {
		return fmt.Errorf("%s must be positive", KeyQuotaDailyLimit)
	}
	if c.Serve.ShutdownTimeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyServeShutdown)
	}
	return nil
}

// ModelFor returns the configured model, or the default for provider.
func (b BackendConfig) ModelFor(provider string) string {
	if b.Model != "" {
		return b.Model
	}
	return upstreamModels[provider]
}

// KeyFor returns the API key for provider, preferring backend.api_key.
func (b BackendConfig) KeyFor(provider string) string {
	if b.APIKey != "" {
		return b.APIKey
	}
	switch provider {
	case "gemini":
		return b.GeminiAPIKey
	case "anthropic":
		return b.AnthropicAPIKey
	default:
		return ""
	}
}

func durationFrom(v *viper.Viper, key string) (time.Duration, error) {
	raw := trim(v.GetString(key))
	if raw == "" {
		return 0, fmt.Errorf("%s must not be empty", key)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func expandHome(path string, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = trim(value); value != "" {
			return value
		}
	}
	return ""
}

func trim(v string) string {
	return strings.TrimSpace(v)
}
