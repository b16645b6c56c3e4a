package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vadimbarashkov/shortlink/internal/slug"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	RedirectTemporary = "TEMPORARY"
	RedirectPermanent = "PERMANENT"
)

type Config struct {
	Env      string `yaml:"env"`
	Password string `yaml:"password"`
	// PublicMode lets anyone create links. Listing still needs credentials.
	PublicMode     bool   `yaml:"public_mode"`
	RedirectMethod string `yaml:"redirect_method"`
	SiteURL        string `yaml:"site_url"`
	// APIPrefix is mounted in front of every management route.
	APIPrefix          string `yaml:"api_prefix"`
	CacheControlHeader string `yaml:"cache_control_header"`
	APIKeySize         int    `yaml:"api_key_size"`
	Slug               `yaml:"slug"`
	HTTPServer         `yaml:"http_server"`
	Storage            `yaml:"storage"`
	Redis              `yaml:"redis"`
	Session            `yaml:"session"`
	CORS               `yaml:"cors"`
}

// TemporaryRedirect reports whether resolutions answer 302 instead of 301.
func (c *Config) TemporaryRedirect() bool {
	return c.RedirectMethod == RedirectTemporary
}

type Slug struct {
	Style  string `yaml:"style"`
	Length int    `yaml:"length"`
}

var defaultSlug = Slug{
	Style:  string(slug.StylePair),
	Length: 8,
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           4567,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// TLS reports whether both a certificate and a key are configured.
func (s *HTTPServer) TLS() bool {
	return s.CertFile != "" && s.KeyFile != ""
}

type Storage struct {
	Driver   string `yaml:"driver"`
	SQLite   `yaml:"sqlite"`
	Postgres `yaml:"postgres"`
}

type SQLite struct {
	Path string `yaml:"path"`
}

var defaultStorage = Storage{
	Driver: DriverSQLite,
	SQLite: SQLite{Path: "urls.sqlite"},
	Postgres: Postgres{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		ConnMaxIdleTime: 5 * time.Minute,
		ConnMaxLifetime: 30 * time.Minute,
		MaxIdleConns:    5,
		MaxOpenConns:    25,
		ConnectAttempts: 5,
	},
}

type Postgres struct {
	// URL replaces the DSN assembled from the other fields when set.
	URL             string        `yaml:"url"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	// ConnectAttempts bounds the startup pings, one second apart.
	ConnectAttempts int           `yaml:"connect_attempts"`
}

func (p *Postgres) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

// Redis configures the link cache. An empty Addr disables it.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

var defaultRedis = Redis{
	TTL: time.Hour,
}

// Session holds the cookie signing and encryption keys. Empty keys are
// replaced with random ones on every start, which logs everybody out.
type Session struct {
	HashKey  string `yaml:"hash_key"`
	BlockKey string `yaml:"block_key"`
	Secure   bool   `yaml:"secure"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

var defaultCORS = CORS{
	AllowedOrigins: []string{"https://*", "http://*"},
}

// Load builds the configuration from defaults, the YAML file at path, a
// .env file in the working directory and the process environment, in that
// order. An empty path skips the YAML file.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: failed to load .env file: %w", op, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg.APIPrefix = normalizePrefix(cfg.APIPrefix)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.RedirectMethod = RedirectPermanent
	cfg.SiteURL = "unset"
	cfg.APIKeySize = 32
	cfg.Slug = defaultSlug
	cfg.HTTPServer = defaultHTTPServer
	cfg.Storage = defaultStorage
	cfg.Redis = defaultRedis
	cfg.CORS = defaultCORS
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	num := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n

		return nil
	}

	str("APP_ENV", &cfg.Env)
	str("PASSWORD", &cfg.Password)
	str("REDIRECT_METHOD", &cfg.RedirectMethod)
	str("SITE_URL", &cfg.SiteURL)
	str("API_URL", &cfg.APIPrefix)
	str("CACHE_CONTROL_HEADER", &cfg.CacheControlHeader)
	str("SLUG_STYLE", &cfg.Slug.Style)
	str("DB_DRIVER", &cfg.Storage.Driver)
	str("DB_URL", &cfg.Storage.SQLite.Path)
	str("POSTGRES_DSN", &cfg.Storage.Postgres.URL)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	str("SESSION_HASH_KEY", &cfg.Session.HashKey)
	str("SESSION_BLOCK_KEY", &cfg.Session.BlockKey)

	if v, ok := os.LookupEnv("PUBLIC_MODE"); ok {
		enabled, err := parseSwitch(v)
		if err != nil {
			return fmt.Errorf("invalid PUBLIC_MODE: %w", err)
		}
		cfg.PublicMode = enabled
	}

	for key, dst := range map[string]*int{
		"PORT":         &cfg.HTTPServer.Port,
		"SLUG_LENGTH":  &cfg.Slug.Length,
		"API_KEY_SIZE": &cfg.APIKeySize,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	return nil
}

// parseSwitch accepts "Enable"/"Disable" besides the strconv.ParseBool forms.
func parseSwitch(v string) (bool, error) {
	switch v {
	case "Enable":
		return true, nil
	case "Disable", "":
		return false, nil
	}

	return strconv.ParseBool(v)
}

func normalizePrefix(prefix string) string {
	for strings.Contains(prefix, "//") {
		prefix = strings.ReplaceAll(prefix, "//", "/")
	}

	return strings.TrimSuffix(prefix, "/")
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvDev, EnvStage, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}

	if _, err := slug.ParseStyle(c.Slug.Style); err != nil {
		return fmt.Errorf("invalid slug style: %w", err)
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.HTTPServer.Port <= 0 || c.HTTPServer.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.HTTPServer.Port)
	}

	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("api prefix %q must start with /", c.APIPrefix)
	}

	return nil
}
