package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGeminiModel     = "gemini-1.5-flash"
	DefaultGeminiBaseURL   = "https://generativelanguage.googleapis.com/v1"
	DefaultUpstreamTimeout = 30 * time.Second
)

// ServerConfig holds configuration for the tasksplit server. It is built once
// at startup and passed by value to the components that need it.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	MetricsAddr     string        `yaml:"metrics_addr"`
	LogLevel        string        `yaml:"log_level"`
	ConfigFile      string        `yaml:"-"`
	EnvFile         string        `yaml:"env_file"`
	GeminiAPIKey    string        `yaml:"gemini_api_key"`
	GeminiModel     string        `yaml:"gemini_model"`
	GeminiBaseURL   string        `yaml:"gemini_base_url"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
	StaticDir       string        `yaml:"static_dir"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	RedisAddr       string        `yaml:"redis_addr"`
	DrainTimeout    time.Duration `yaml:"drain_timeout"`
	ShowVersion     bool          `yaml:"-"`
}

// SetDefaults initializes c with built-in defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ConfigFile == "" {
		c.ConfigFile = DefaultConfigPath("server.yaml")
	}
	if c.EnvFile == "" {
		c.EnvFile = ".env"
	}
	if c.GeminiModel == "" {
		c.GeminiModel = DefaultGeminiModel
	}
	if c.GeminiBaseURL == "" {
		c.GeminiBaseURL = DefaultGeminiBaseURL
	}
	if c.UpstreamTimeout == 0 {
		c.UpstreamTimeout = DefaultUpstreamTimeout
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = 5 * time.Second
	}
}

// ApplyEnv overlays environment variables onto the current config values.
func (c *ServerConfig) ApplyEnv() {
	if v := GetEnv("HOST", ""); v != "" {
		c.Host = v
	}
	if v := GetEnv("PORT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := GetEnv("METRICS_PORT", ""); v != "" {
		if strings.Contains(v, ":") {
			c.MetricsAddr = v
		} else {
			c.MetricsAddr = ":" + v
		}
	}
	if v := GetEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := GetEnv("GEMINI_API_KEY", ""); v != "" {
		c.GeminiAPIKey = v
	}
	if v := GetEnv("GEMINI_MODEL", ""); v != "" {
		c.GeminiModel = v
	}
	if v := GetEnv("GEMINI_BASE_URL", ""); v != "" {
		c.GeminiBaseURL = v
	}
	if v := GetEnv("UPSTREAM_TIMEOUT", ""); v != "" {
		if d, err := parseSeconds(v); err == nil {
			c.UpstreamTimeout = d
		}
	}
	if v := GetEnv("STATIC_DIR", ""); v != "" {
		c.StaticDir = v
	}
	if v := GetEnv("ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitComma(v)
	}
	if v := GetEnv("REDIS_ADDR", ""); v != "" {
		c.RedisAddr = v
	}
	if v := GetEnv("DRAIN_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DrainTimeout = d
		}
	}
}

// BindFlags binds command line flags on fs using the current config values as
// defaults.
func (c *ServerConfig) BindFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.ShowVersion, "version", c.ShowVersion, "print version and exit")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "server config file path")
	fs.StringVar(&c.EnvFile, "env-file", c.EnvFile, "dotenv file loaded before reading the environment")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	fs.StringVar(&c.Host, "host", c.Host, "HTTP listen host")
	fs.IntVar(&c.Port, "port", c.Port, "HTTP listen port")
	fs.StringVar(&c.MetricsAddr, "metrics-port", c.MetricsAddr, "Prometheus metrics listen address or port; defaults to the value of --port")
	fs.StringVar(&c.GeminiAPIKey, "gemini-api-key", c.GeminiAPIKey, "Gemini API key; requests fail with 500 when empty")
	fs.StringVar(&c.GeminiModel, "gemini-model", c.GeminiModel, "Gemini model identifier")
	fs.StringVar(&c.GeminiBaseURL, "gemini-base-url", c.GeminiBaseURL, "Gemini API base URL")
	fs.Func("upstream-timeout", "upstream request timeout in seconds (default 30)", func(v string) error {
		d, err := parseSeconds(v)
		if err != nil {
			return err
		}
		c.UpstreamTimeout = d
		return nil
	})
	fs.StringVar(&c.StaticDir, "static-dir", c.StaticDir, "serve static files from this directory instead of the embedded site")
	fs.Func("allowed-origins", "comma separated list of allowed CORS origins", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "redis connection URL for server state")
	fs.DurationVar(&c.DrainTimeout, "drain-timeout", c.DrainTimeout, "time to keep serving after the first termination signal")
}

// LoadFile populates the config from a YAML file.
func (c *ServerConfig) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// Validate reports settings the server cannot start with. A missing API key
// is not an error: the proxy endpoint reports it per request.
func (c ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.GeminiModel) == "" {
		return errors.New("gemini model is required")
	}
	u, err := url.Parse(c.GeminiBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid gemini base url %q", c.GeminiBaseURL)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("invalid upstream timeout %s", c.UpstreamTimeout)
	}
	return nil
}

// ListenAddr returns the host:port the public server binds to.
func (c ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SeparateMetrics reports whether metrics are served on their own listener.
func (c ServerConfig) SeparateMetrics() bool {
	if c.MetricsAddr == "" {
		return false
	}
	return c.MetricsAddr != fmt.Sprintf(":%d", c.Port) && c.MetricsAddr != c.ListenAddr()
}

// Load builds the configuration from defaults, the YAML file, the dotenv file,
// the environment and finally the command line, each layer overriding the
// previous one. Values already present in the environment win over the dotenv
// file.
func Load(name string, args []string) (ServerConfig, error) {
	var c ServerConfig
	c.SetDefaults()
	c.ConfigFile = GetEnv("CONFIG_FILE", c.ConfigFile)
	c.EnvFile = GetEnv("ENV_FILE", c.EnvFile)

	// A first pass only locates the config and dotenv files.
	boot := c
	bfs := flag.NewFlagSet(name, flag.ContinueOnError)
	bfs.SetOutput(io.Discard)
	boot.BindFlags(bfs)
	_ = bfs.Parse(args)
	c.ConfigFile = boot.ConfigFile
	c.EnvFile = boot.EnvFile

	if c.ConfigFile != "" {
		if err := c.LoadFile(c.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return c, fmt.Errorf("load config %s: %w", c.ConfigFile, err)
		}
	}
	bfs.Visit(func(f *flag.Flag) {
		if f.Name == "env-file" {
			c.EnvFile = boot.EnvFile
		}
	})
	if c.EnvFile != "" {
		if err := godotenv.Load(c.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return c, fmt.Errorf("load env file %s: %w", c.EnvFile, err)
		}
	}
	c.ApplyEnv()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	c.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = fmt.Sprintf(":%d", c.Port)
	} else if !strings.Contains(c.MetricsAddr, ":") {
		c.MetricsAddr = ":" + c.MetricsAddr
	}
	return c, nil
}

func parseSeconds(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return time.Duration(f * float64(time.Second)), nil
}

func splitComma(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
