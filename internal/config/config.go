package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "newscheck"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"

	DefaultLanguage = "en"
	DefaultTimeout  = 15 * time.Second
)

// KeyEnv maps each provider to the environment variable holding its
// credential.
var KeyEnv = map[string]string{
	"newsapi":    "NEWSAPI_KEY",
	"gnews":      "GNEWS_KEY",
	"factcheck":  "FACTCHECK_KEY",
	"mediastack": "MEDIASTACK_KEY",
	"newsdata":   "NEWSDATA_KEY",
	"currents":   "CURRENTS_KEY",
}

// Config is resolved once at startup and handed to the constructors that need
// it. Treat it as read-only.
type Config struct {
	Language          string            `json:"language"`
	TimeoutSeconds    int               `json:"timeout_seconds"`
	RequestsPerMinute int               `json:"requests_per_minute"`
	DisabledProviders []string          `json:"disabled_providers,omitempty"`
	ClassifierURL     string            `json:"classifier_url,omitempty"`
	ClassifierKey     string            `json:"classifier_key,omitempty"`
	Keys              map[string]string `json:"keys,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Language:          envString("NEWSCHECK_LANGUAGE", DefaultLanguage),
		TimeoutSeconds:    envInt("NEWSCHECK_TIMEOUT", int(DefaultTimeout/time.Second)),
		RequestsPerMinute: envInt("NEWSCHECK_REQUESTS_PER_MINUTE", 0),
		ClassifierURL:     envString("NEWSCHECK_CLASSIFIER_URL", ""),
		ClassifierKey:     envString("NEWSCHECK_CLASSIFIER_KEY", ""),
	}
}

// Timeout is the bound on a single provider request.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Key returns the credential configured for provider, or "".
func (c Config) Key(provider string) string {
	return strings.TrimSpace(c.Keys[provider])
}

func (c Config) Disabled(provider string) bool {
	for _, name := range c.DisabledProviders {
		if strings.EqualFold(strings.TrimSpace(name), provider) {
			return true
		}
	}
	return false
}

// Configured lists the providers that have a credential, sorted.
func (c Config) Configured() []string {
	var out []string
	for name := range KeyEnv {
		if c.Key(name) != "" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return withEnvKeys(DefaultConfig()), err
	}
	return LoadFrom(path)
}

// LoadFrom reads a JSON5 config file at path. A missing or blank file yields
// the defaults. Credentials from the environment take precedence over keys in
// the file.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return withEnvKeys(cfg), nil
		}
		return withEnvKeys(cfg), err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return withEnvKeys(cfg), nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return withEnvKeys(cfg), err
	}

	return withEnvKeys(cfg), nil
}

func withEnvKeys(cfg Config) Config {
	keys := make(map[string]string, len(KeyEnv))
	for name, value := range cfg.Keys {
		keys[strings.ToLower(strings.TrimSpace(name))] = value
	}
	for name, env := range KeyEnv {
		if value := strings.TrimSpace(os.Getenv(env)); value != "" {
			keys[name] = value
		}
	}
	cfg.Keys = keys
	cfg.DisabledProviders = append([]string(nil), cfg.DisabledProviders...)
	return cfg
}

// Init writes a default config.json and an empty proxies.txt if they don't
// already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return SplitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("NEWSCHECK_PROXIES")); env != "" {
		return SplitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}
	return readProxiesFile(path)
}

func readProxiesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// SplitCSV splits a comma-separated list, dropping blank entries.
func SplitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
