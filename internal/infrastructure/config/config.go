// Package config loads hireline settings from defaults, a YAML file, a .env
// file and HIRELINE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HIRELINE_"

// DefaultFile is read when no path is given and it exists.
const DefaultFile = "hireline.yaml"

var validate = validator.New()

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Auth configures the bearer token presented to the identity gateway.
// A static Token wins over client credentials.
type Auth struct {
	Token        string   `yaml:"token" env:"TOKEN"`
	TokenURL     string   `yaml:"token_url" env:"TOKEN_URL" validate:"omitempty,url"`
	ClientID     string   `yaml:"client_id" env:"CLIENT_ID" validate:"required_with=TokenURL"`
	ClientSecret string   `yaml:"client_secret" env:"CLIENT_SECRET"`
	Scopes       []string `yaml:"scopes" env:"SCOPES" envSeparator:","`
}

// Enabled reports whether any credential is configured.
func (a Auth) Enabled() bool {
	return a.Token != "" || a.TokenURL != ""
}

// Config is the full runtime configuration.
type Config struct {
	APIBase    string `yaml:"api_base" env:"API_BASE" validate:"required,url"`
	StreamPath string `yaml:"stream_path" env:"STREAM_PATH"`
	ChatPath   string `yaml:"chat_path" env:"CHAT_PATH" validate:"required"`

	PollInterval    time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL" validate:"gte=100ms"`
	ReplayTick      time.Duration `yaml:"replay_tick" env:"REPLAY_TICK" validate:"gte=10ms"`
	SnapshotTimeout time.Duration `yaml:"snapshot_timeout" env:"SNAPSHOT_TIMEOUT" validate:"gt=0"`
	StreamRetry     time.Duration `yaml:"stream_retry" env:"STREAM_RETRY" validate:"gte=0"`

	ContentEvent  string `yaml:"content_event" env:"CONTENT_EVENT" validate:"required"`
	TerminalEvent string `yaml:"terminal_event" env:"TERMINAL_EVENT" validate:"required,nefield=ContentEvent"`

	JobsTarget       int `yaml:"jobs_target" env:"JOBS_TARGET" validate:"gte=0,lte=10000"`
	CandidatesTarget int `yaml:"candidates_target" env:"CANDIDATES_TARGET" validate:"gte=0,lte=10000"`

	SigningSecret string `yaml:"signing_secret" env:"SIGNING_SECRET"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" validate:"oneof=json text"`

	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
	MirrorAddr  string `yaml:"mirror_addr" env:"MIRROR_ADDR"`

	Auth Auth `yaml:"auth" envPrefix:"AUTH_"`

	// Path is the file the config was read from, empty for none.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIBase:          "http://localhost:8000",
		StreamPath:       "/events/stream",
		ChatPath:         "/chat/stream",
		PollInterval:     time.Second,
		ReplayTick:       500 * time.Millisecond,
		SnapshotTimeout:  5 * time.Second,
		StreamRetry:      3 * time.Second,
		ContentEvent:     "content",
		TerminalEvent:    "done",
		JobsTarget:       300,
		CandidatesTarget: 50,
		SigningSecret:    "dev-signing-secret",
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// StreamURL is the absolute push-channel URL, empty when streaming is
// disabled.
func (c *Config) StreamURL() string {
	if c.StreamPath == "" {
		return ""
	}
	return join(c.APIBase, c.StreamPath)
}

// ChatURL is the absolute chat endpoint.
func (c *Config) ChatURL() string {
	return join(c.APIBase, c.ChatPath)
}

func join(base, path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Load builds the configuration. An empty path reads DefaultFile when it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := readFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else {
		cfg.Path = path
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Save writes c as YAML to path.
func Save(path string, c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
