package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP struct {
		Bind string `yaml:"bind"`
		Port int    `yaml:"port"`
		TLS  struct {
			Enabled bool   `yaml:"enabled"`
			Cert    string `yaml:"cert"`
			Key     string `yaml:"key"`
		} `yaml:"tls"`
	} `yaml:"http"`
	Auth struct {
		ProviderURL    string `yaml:"provider_url"`
		SessionSecret  string `yaml:"session_secret"`
		Issuer         string `yaml:"issuer"`
		Audience       string `yaml:"audience"`
		SessionTTLMins int    `yaml:"session_ttl_minutes"`
		TimeoutSecs    int    `yaml:"timeout_seconds"`
	} `yaml:"auth"`
	Rates struct {
		URL         string `yaml:"url"`
		TimeoutSecs int    `yaml:"timeout_seconds"`
		Fake        bool   `yaml:"fake_rates"`
	} `yaml:"rates"`
	Uploads struct {
		Dir      string `yaml:"dir"`
		MaxBytes int64  `yaml:"max_bytes"`
	} `yaml:"uploads"`
	Logging struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logging"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Bind == "" {
		c.HTTP.Bind = "0.0.0.0"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "finboard-gateway"
	}
	if c.Auth.SessionTTLMins == 0 {
		c.Auth.SessionTTLMins = 60
	}
	if c.Auth.TimeoutSecs == 0 {
		c.Auth.TimeoutSecs = 10
	}
	if c.Rates.TimeoutSecs == 0 {
		c.Rates.TimeoutSecs = 5
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "/var/lib/finboard/uploads"
	}
	if c.Uploads.MaxBytes == 0 {
		c.Uploads.MaxBytes = 10 << 20
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
