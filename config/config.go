package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // signal-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN      string `yaml:"dsn"` // empty: in-memory chat log (dev)
	MaxConns int32  `yaml:"maxConns"`
}

type Redis struct {
	Addr string `yaml:"addr"` // empty: single-instance relay, no bus
	DB   int    `yaml:"db"`
}

type Mailbox struct {
	Dir string `yaml:"dir"`
}

type WebRTC struct {
	StunURL string `yaml:"stunUrl"` // passed through to clients untouched
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Logging  Logging  `yaml:"logging"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Mailbox  Mailbox  `yaml:"mailbox"`
	WebRTC   WebRTC   `yaml:"webrtc"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "signal-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Mailbox.Dir == "" {
		c.Mailbox.Dir = filepath.Join(os.TempDir(), "signal-mailbox")
	}
	if c.WebRTC.StunURL == "" {
		c.WebRTC.StunURL = "stun:stun.l.google.com:19302"
	}
	return nil
}
