package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultGatewayURL      = "https://openrouter.ai/api/v1"
	DefaultAntigravityURL  = "https://cloudcode-pa.googleapis.com"
	DefaultCopilotUserURL  = "https://api.github.com/copilot_internal/user"
	defaultHTTPTimeoutSecs = 30
	defaultQuotaDisplaySec = 60

	envPrefix = "USAGEBRIDGE"
)

type EndpointsConfig struct {
	// GatewayURL serves GET <GatewayURL>/models and is also the base URL
	// published with the provider.
	GatewayURL     string `json:"gateway_url"`
	AntigravityURL string `json:"antigravity_url"`
	CopilotUserURL string `json:"copilot_user_url"`
}

type QuotaConfig struct {
	DisplaySeconds int `json:"display_seconds"`
}

type Config struct {
	Endpoints          EndpointsConfig `json:"endpoints"`
	Quota              QuotaConfig     `json:"quota"`
	AuthPath           string          `json:"auth_path"`
	LogDir             string          `json:"log_dir"`
	HTTPTimeoutSeconds int             `json:"http_timeout_seconds"`

	// GatewayAPIKey is read from the environment only and never saved.
	GatewayAPIKey string `json:"-"`
}

// envOverrides mirrors the settings that may be overridden from the
// environment, e.g. USAGEBRIDGE_GATEWAY_URL.
type envOverrides struct {
	GatewayURL         string `envconfig:"GATEWAY_URL"`
	GatewayAPIKey      string `envconfig:"GATEWAY_API_KEY"`
	AntigravityURL     string `envconfig:"ANTIGRAVITY_URL"`
	CopilotUserURL     string `envconfig:"COPILOT_USER_URL"`
	AuthPath           string `envconfig:"AUTH_PATH"`
	LogDir             string `envconfig:"LOG_DIR"`
	HTTPTimeoutSeconds int    `envconfig:"HTTP_TIMEOUT_SECONDS"`
	QuotaDisplaySecs   int    `envconfig:"QUOTA_DISPLAY_SECONDS"`
}

func DefaultConfig() Config {
	return Config{
		Endpoints: EndpointsConfig{
			GatewayURL:     DefaultGatewayURL,
			AntigravityURL: DefaultAntigravityURL,
			CopilotUserURL: DefaultCopilotUserURL,
		},
		Quota:              QuotaConfig{DisplaySeconds: defaultQuotaDisplaySec},
		AuthPath:           filepath.Join(ConfigDir(), "auth.json"),
		LogDir:             filepath.Join(ConfigDir(), "logs"),
		HTTPTimeoutSeconds: defaultHTTPTimeoutSecs,
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "usagebridge")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "usagebridge")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c Config) QuotaDisplayWindow() time.Duration {
	return time.Duration(c.Quota.DisplaySeconds) * time.Second
}

// Load reads the settings file, then .env files, then USAGEBRIDGE_* variables.
func Load() (Config, error) {
	loadDotEnv(".env", filepath.Join(ConfigDir(), ".env"))
	cfg, err := LoadFrom(ConfigPath())
	if err != nil {
		return cfg, err
	}
	return ApplyEnv(cfg)
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	return normalize(cfg), nil
}

// ApplyEnv overlays non-empty USAGEBRIDGE_* environment values onto cfg.
func ApplyEnv(cfg Config) (Config, error) {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return cfg, fmt.Errorf("reading %s_* environment: %w", envPrefix, err)
	}

	if env.GatewayURL != "" {
		cfg.Endpoints.GatewayURL = env.GatewayURL
	}
	if env.GatewayAPIKey != "" {
		cfg.GatewayAPIKey = strings.TrimSpace(env.GatewayAPIKey)
	}
	if env.AntigravityURL != "" {
		cfg.Endpoints.AntigravityURL = env.AntigravityURL
	}
	if env.CopilotUserURL != "" {
		cfg.Endpoints.CopilotUserURL = env.CopilotUserURL
	}
	if env.AuthPath != "" {
		cfg.AuthPath = env.AuthPath
	}
	if env.LogDir != "" {
		cfg.LogDir = env.LogDir
	}
	if env.HTTPTimeoutSeconds > 0 {
		cfg.HTTPTimeoutSeconds = env.HTTPTimeoutSeconds
	}
	if env.QuotaDisplaySecs > 0 {
		cfg.Quota.DisplaySeconds = env.QuotaDisplaySecs
	}
	return normalize(cfg), nil
}

func normalize(cfg Config) Config {
	def := DefaultConfig()
	cfg.Endpoints.GatewayURL = strings.TrimRight(strings.TrimSpace(cfg.Endpoints.GatewayURL), "/")
	if cfg.Endpoints.GatewayURL == "" {
		cfg.Endpoints.GatewayURL = def.Endpoints.GatewayURL
	}
	cfg.Endpoints.AntigravityURL = strings.TrimRight(strings.TrimSpace(cfg.Endpoints.AntigravityURL), "/")
	if cfg.Endpoints.AntigravityURL == "" {
		cfg.Endpoints.AntigravityURL = def.Endpoints.AntigravityURL
	}
	if strings.TrimSpace(cfg.Endpoints.CopilotUserURL) == "" {
		cfg.Endpoints.CopilotUserURL = def.Endpoints.CopilotUserURL
	}
	if strings.TrimSpace(cfg.AuthPath) == "" {
		cfg.AuthPath = def.AuthPath
	}
	if strings.TrimSpace(cfg.LogDir) == "" {
		cfg.LogDir = def.LogDir
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = defaultHTTPTimeoutSecs
	}
	if cfg.Quota.DisplaySeconds <= 0 {
		cfg.Quota.DisplaySeconds = defaultQuotaDisplaySec
	}
	return cfg
}

func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "warning: ignoring %s: %v\n", p, err)
		}
	}
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SaveGatewayURL persists a new gateway URL into the config file (read-modify-write).
func SaveGatewayURL(url string) error {
	return SaveGatewayURLTo(ConfigPath(), url)
}

func SaveGatewayURLTo(path, url string) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	cfg, err := LoadFrom(path)
	if err != nil {
		cfg = DefaultConfig()
	}
	cfg.Endpoints.GatewayURL = url
	return SaveTo(path, cfg)
}
