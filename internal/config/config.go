// Package config loads mergelens configuration, merging defaults, the
// config file, environment variables, and CLI flag overrides in that
// order. Credentials (GitLab token, provider API keys) are read from the
// environment by the components that need them, never stored here.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config is the effective service configuration.
type Config struct {
	ListenAddr   string        `json:"listenAddr"`
	LogLevel     string        `json:"logLevel"`
	RepoPath     string        `json:"repoPath"`
	GitLabURL    string        `json:"gitlabUrl"`
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	Temperature  float64       `json:"temperature"`
	MaxTokens    int           `json:"maxTokens"`
	MaxDiffBytes int           `json:"maxDiffBytes"`
	Cache        CacheConfig   `json:"cache"`
	Privacy      PrivacyConfig `json:"privacy"`
}

// CacheConfig controls the completion response cache.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls outbound redaction.
type PrivacyConfig struct {
	RedactSecrets bool `json:"redactSecrets"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		ListenAddr:   ":8080",
		LogLevel:     "info",
		RepoPath:     "./repo",
		GitLabURL:    "https://gitlab.com/api/v4",
		Provider:     "openrouter",
		Model:        "openai/gpt-4-turbo-preview",
		Temperature:  0.3,
		MaxTokens:    2000,
		MaxDiffBytes: 500000,
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 3600,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mergelens"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "mergelens"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "mergelens"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "mergelens"), nil
	default:
		return filepath.Join(home, ".config", "mergelens"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.ListenAddr != "" {
		dst.ListenAddr = src.ListenAddr
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.RepoPath != "" {
		dst.RepoPath = src.RepoPath
	}
	if src.GitLabURL != "" {
		dst.GitLabURL = src.GitLabURL
	}
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Temperature > 0 {
		dst.Temperature = src.Temperature
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.MaxDiffBytes > 0 {
		dst.MaxDiffBytes = src.MaxDiffBytes
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("MERGELENS_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("MERGELENS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MERGELENS_REPO_PATH"); v != "" {
		cfg.RepoPath = v
	}
	if v := os.Getenv("MERGELENS_GITLAB_URL"); v != "" {
		cfg.GitLabURL = v
	}
	if v := os.Getenv("MERGELENS_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("MERGELENS_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("MERGELENS_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("MERGELENS_MAX_DIFF_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDiffBytes = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	for k, v := range overrides {
		if v == "" {
			continue
		}
		// Flag overrides reuse the SetField key space.
		_ = SetField(cfg, k, v)
	}
}

// SetField sets a single config field by key name. Returns an error for
// unknown keys or unparseable values.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "listenAddr":
		cfg.ListenAddr = value
	case "logLevel":
		cfg.LogLevel = value
	case "repoPath":
		cfg.RepoPath = value
	case "gitlabUrl":
		cfg.GitLabURL = value
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "maxDiffBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxDiffBytes must be an integer: %w", err)
		}
		cfg.MaxDiffBytes = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
