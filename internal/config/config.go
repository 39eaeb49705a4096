package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	ServerURL    string `yaml:"server_url"`
	SaveDir      string `yaml:"save_dir"`
	GeminiAPIKey string `yaml:"-"`
}

const (
	DefaultListenAddr = ":4444"
	DefaultServerURL  = "ws://localhost:4444/play"
	DefaultSaveDir    = ".saves"
)

// LoadConfig loads the configuration from an optional YAML file named by
// TIMECLASH_CONFIG, then lets environment variables override it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ListenAddr: DefaultListenAddr,
		ServerURL:  DefaultServerURL,
		SaveDir:    DefaultSaveDir,
	}

	if path := os.Getenv("TIMECLASH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("TIMECLASH_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("TIMECLASH_SERVER"); v != "" {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv("TIMECLASH_SAVE_DIR"); ok {
		cfg.SaveDir = v // empty disables saving
	}
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	return cfg, nil
}

// RequireGemini reports an error when no API key is configured.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	return nil
}
