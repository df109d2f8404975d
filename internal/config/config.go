package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PaperSize describes a paper format in inches.
type PaperSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Config is the process-wide configuration. It is built once at startup and
// passed by value into the components that need it.
type Config struct {
	Server struct {
		Host        string `yaml:"host"`
		Port        string `yaml:"port"`
		Prefork     bool   `yaml:"prefork"`
		BodyLimitMB int    `yaml:"body_limit_mb"`
		PublicHost  string `yaml:"public_host"`
	} `yaml:"server"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	Render struct {
		ChromePath   string               `yaml:"chrome_path"`
		BrowserFlags []string             `yaml:"browser_flags"`
		UserDataDir  string               `yaml:"user_data_dir"`
		TimeoutSecs  int                  `yaml:"timeout_secs"`
		SettleWindow time.Duration        `yaml:"settle_window"`
		PaperSizes   map[string]PaperSize `yaml:"paper_sizes"`
	} `yaml:"render"`

	Stats struct {
		RedisHost string `yaml:"redis_host"`
		RedisDB   int    `yaml:"redis_db"`
		Key       string `yaml:"key"`
	} `yaml:"stats"`

	Audit struct {
		Postgres PostgresConfig `yaml:"postgres"`
	} `yaml:"audit"`
}

// PostgresConfig locates the audit database. Host may also be a full
// postgres:// URL, in which case the other fields are ignored.
type PostgresConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Database           string `yaml:"database"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	SSLMode            string `yaml:"sslmode"`
	ConnectTimeoutSecs int    `yaml:"connect_timeout_secs"`
}

// auditApplicationName tags audit connections in pg_stat_activity.
const auditApplicationName = "html2pdf-audit"

// Enabled reports whether an audit database is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// DSN is the connection URL for the audit journal. A short connect timeout
// keeps an unreachable database from stalling startup.
func (p PostgresConfig) DSN() (string, error) {
	if strings.HasPrefix(p.Host, "postgres://") || strings.HasPrefix(p.Host, "postgresql://") {
		return p.Host, nil
	}
	switch {
	case p.Host == "":
		return "", errors.New("audit.postgres.host is empty")
	case p.Database == "":
		return "", errors.New("audit.postgres.database is empty")
	case p.User == "":
		return "", errors.New("audit.postgres.user is empty")
	}

	port := p.Port
	if port == 0 {
		port = 5432
	}
	addr := p.Host
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(strings.Trim(addr, "[]"), strconv.Itoa(port))
	}

	timeout := p.ConnectTimeoutSecs
	if timeout <= 0 {
		timeout = 5
	}
	q := url.Values{}
	q.Set("application_name", auditApplicationName)
	q.Set("connect_timeout", strconv.Itoa(timeout))
	if p.SSLMode != "" {
		q.Set("sslmode", p.SSLMode)
	}

	u := &url.URL{Scheme: "postgres", Host: addr, Path: "/" + p.Database, RawQuery: q.Encode()}
	if p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	} else {
		u.User = url.User(p.User)
	}
	return u.String(), nil
}

// DefaultBrowserFlags isolate headless Chrome for container environments.
var DefaultBrowserFlags = []string{"--no-sandbox", "--disable-setuid-sandbox"}

// DefaultPaperSizes lists the paper formats Chrome's print pipeline understands,
// in inches.
func DefaultPaperSizes() map[string]PaperSize {
	return map[string]PaperSize{
		"LETTER":  {Width: 8.5, Height: 11},
		"LEGAL":   {Width: 8.5, Height: 14},
		"TABLOID": {Width: 11, Height: 17},
		"LEDGER":  {Width: 17, Height: 11},
		"A0":      {Width: 33.1102, Height: 46.811},
		"A1":      {Width: 23.3858, Height: 33.1102},
		"A2":      {Width: 16.5354, Height: 23.3858},
		"A3":      {Width: 11.6929, Height: 16.5354},
		"A4":      {Width: 8.2677, Height: 11.6929},
		"A5":      {Width: 5.8268, Height: 8.2677},
		"A6":      {Width: 4.1339, Height: 5.8268},
	}
}

// Default returns a configuration with every field set to its documented default.
func Default() Config {
	var cfg Config
	cfg.Server.Host = ""
	cfg.Server.Port = ":3000"
	cfg.Server.BodyLimitMB = 50
	cfg.Server.PublicHost = "http://localhost"
	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = 100
	cfg.Logger.MaxBackups = 3
	cfg.Logger.MaxAgeDays = 28
	cfg.Render.BrowserFlags = append([]string(nil), DefaultBrowserFlags...)
	cfg.Render.TimeoutSecs = 60
	cfg.Render.SettleWindow = 500 * time.Millisecond
	cfg.Render.PaperSizes = DefaultPaperSizes()
	cfg.Stats.Key = "html2pdf:engine"
	return cfg
}

// Load reads the configuration from CONFIG_PATH (default config.yaml).
func Load() Config {
	loadDotEnv()
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFrom(path)
}

// LoadFrom reads the YAML file at path on top of the defaults and applies
// environment overrides. A missing file yields the defaults. Invalid values panic.
func LoadFrom(path string) Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			panic(fmt.Sprintf("config: parse %s: %v", path, err))
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}

	applyEnv(&cfg)
	normalizePaperSizes(&cfg)

	if err := validate(cfg); err != nil {
		panic("config: " + err.Error())
	}
	return cfg
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return c.Server.Host + c.Server.Port
}

// PublicURL is the base URL advertised in the API documentation.
func (c Config) PublicURL() string {
	return strings.TrimRight(c.Server.PublicHost, "/") + ":" + strings.TrimPrefix(c.Server.Port, ":")
}

// RenderTimeout bounds a single conversion including browser launch.
func (c Config) RenderTimeout() time.Duration {
	return time.Duration(c.Render.TimeoutSecs) * time.Second
}

// BodyLimit is the maximum accepted request body in bytes.
func (c Config) BodyLimit() int {
	return c.Server.BodyLimitMB * 1024 * 1024
}

func loadDotEnv() {
	file := ".env.dev"
	if os.Getenv("APP_ENV") == "production" {
		file = ".env.prod"
	}
	// Existing variables win; a missing file is not an error.
	_ = godotenv.Load(file)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BROWSER_OPTIONS"); v != "" {
		cfg.Render.BrowserFlags = ParseFlagList(v)
	}
	if v := os.Getenv("CHROME_BIN"); v != "" && cfg.Render.ChromePath == "" {
		cfg.Render.ChromePath = v
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("PUBLIC_HOST"); v != "" {
		cfg.Server.PublicHost = v
	}
	if v := os.Getenv("AUDIT_DATABASE_URL"); v != "" {
		cfg.Audit.Postgres.Host = v
	}
}

// ParseFlagList splits a comma-separated list of browser flags, dropping blanks.
func ParseFlagList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func normalizePaperSizes(cfg *Config) {
	sizes := make(map[string]PaperSize, len(cfg.Render.PaperSizes))
	for name, size := range cfg.Render.PaperSizes {
		sizes[strings.ToUpper(name)] = size
	}
	cfg.Render.PaperSizes = sizes
}

func validate(cfg Config) error {
	if cfg.Server.BodyLimitMB <= 0 {
		return errors.New("server.body_limit_mb must be positive")
	}
	if cfg.Render.TimeoutSecs <= 0 {
		return errors.New("render.timeout_secs must be positive")
	}
	if cfg.Render.SettleWindow < 0 {
		return errors.New("render.settle_window must not be negative")
	}
	if len(cfg.Render.PaperSizes) == 0 {
		return errors.New("render.paper_sizes is empty")
	}
	for name, size := range cfg.Render.PaperSizes {
		if size.Width <= 0 || size.Height <= 0 {
			return fmt.Errorf("render.paper_sizes.%s must have positive width and height", name)
		}
	}
	return nil
}
