package main

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const apiURLEnv = "HASHED_RISK_API_URL"

type Config struct {
	APIBaseURL          string `yaml:"api_base_url"`
	RequestTimeoutSecs  int    `yaml:"request_timeout_seconds"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	PageSize            int    `yaml:"page_size"`
	LogLevel            string `yaml:"log_level"`
	LogFile             string `yaml:"log_file"`
}

func DefaultConfig() Config {
	return Config{
		APIBaseURL:          "http://localhost:5001/api",
		RequestTimeoutSecs:  30,
		PollIntervalSeconds: 30,
		PageSize:            15,
		LogLevel:            "info",
		LogFile:             defaultLogPath(),
	}
}

// LoadConfig reads the YAML config, writing one with defaults on first run.
// The API base URL can be overridden through the environment.
func LoadConfig() (Config, error) {
	path := configPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			if err := SaveConfig(cfg); err != nil {
				return Config{}, err
			}
			return applyEnv(cfg), nil
		}
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 15
	}
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = 30
	}
	if cfg.RequestTimeoutSecs <= 0 {
		cfg.RequestTimeoutSecs = 30
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if base := strings.TrimSpace(os.Getenv(apiURLEnv)); base != "" {
		cfg.APIBaseURL = base
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg
}

func SaveConfig(cfg Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	blob, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o600)
}

var userConfigDir = os.UserConfigDir

func configPath() string {
	configDir, err := userConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(configDir, "hashed-risk", "config.yaml")
}

func tokenPath() string {
	configDir, err := userConfigDir()
	if err != nil {
		return "token"
	}
	return filepath.Join(configDir, "hashed-risk", "token")
}

func defaultLogPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "hashed-risk.log"
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	path := filepath.Join(dataDir, "hashed-risk")
	_ = os.MkdirAll(path, 0o755)
	return filepath.Join(path, "hashed-risk.log")
}
