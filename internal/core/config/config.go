package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
}

type App struct {
	Name      string
	Env       string
	APIPrefix string `mapstructure:"apiPrefix"`
	HTTP      HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

type Password struct {
	Cost        int
	Concurrency int64
}

type Redis struct {
	Enabled         bool   `mapstructure:"enabled"`
	Addr            string `mapstructure:"addr"`
	Password        string `mapstructure:"password"`
	DB              int    `mapstructure:"db"`
	UserTTLSec      int    `mapstructure:"userTTLSec"`
	SnapshotKey     string `mapstructure:"snapshotKey"`
	SnapshotChannel string `mapstructure:"snapshotChannel"`
}

type Kafka struct {
	Enabled     bool
	Host        string
	Port        int
	Topic       string
	GroupPrefix string `mapstructure:"groupPrefix"`
}

func (k Kafka) Brokers() []string { return []string{fmt.Sprintf("%s:%d", k.Host, k.Port)} }

type DB struct {
	Driver             string
	DSN                string
	Host               string
	Port               int
	Name               string
	Username           string
	Password           string
	SSLMode            string `mapstructure:"sslMode"`
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type CORS struct {
	Origins []string
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	Password Password
	DB       DB
	Kafka    Kafka
	Redis    Redis `mapstructure:"redis"`
	CORS     CORS  `mapstructure:"cors"`
}

var defaults = map[string]any{
	"app.name":                   "account-service",
	"app.env":                    "local",
	"app.apiPrefix":              "/api/v1",
	"app.http.host":              "0.0.0.0",
	"app.http.port":              8080,
	"app.http.readTimeoutSec":    5,
	"app.http.writeTimeoutSec":   10,
	"app.http.idleTimeoutSec":    60,
	"app.http.requestTimeoutSec": 10,
	"log.level":                  "info",
	"log.json":                   false,
	"log.file.enable":            false,
	"log.file.filename":          "logs/app.log",
	"log.file.maxSizeMB":         100,
	"log.file.maxBackups":        7,
	"log.file.maxAgeDays":        30,
	"log.file.compress":          true,
	"jwt.secret":                 "",
	"jwt.issuer":                 "account-service",
	"jwt.accessTokenTTLMin":      60 * 24 * 8,
	"password.cost":              12,
	"password.concurrency":       8,
	"db.driver":                  "postgres",
	"db.dsn":                     "",
	"db.host":                    "127.0.0.1",
	"db.port":                    5432,
	"db.name":                    "accounts",
	"db.username":                "postgres",
	"db.password":                "",
	"db.sslMode":                 "disable",
	"db.maxOpenConns":            20,
	"db.maxIdleConns":            10,
	"db.connMaxLifetimeMin":      30,
	"db.autoMigrate":             true,
	"db.logLevel":                "warn",
	"kafka.enabled":              true,
	"kafka.host":                 "127.0.0.1",
	"kafka.port":                 9092,
	"kafka.topic":                "app-state",
	"kafka.groupPrefix":          "account-service",
	"redis.enabled":              false,
	"redis.addr":                 "127.0.0.1:6379",
	"redis.password":             "",
	"redis.db":                   0,
	"redis.userTTLSec":           60,
	"redis.snapshotKey":          "app:state",
	"redis.snapshotChannel":      "app:state:updates",
	"cors.origins":               []string{},
}

// Read loads path (YAML) with APP_ environment overrides, e.g. APP_JWT_SECRET.
// An empty path falls back to CONFIG_PATH, then ./configs/config.local.yaml.
// A missing default file is not an error; defaults and environment still apply.
func Read(path string) (*Config, error) {
	v := viper.New()
	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// 逗号分隔的环境变量，例如 APP_CORS_ORIGINS="http://a,http://b"
	c.CORS.Origins = splitList(strings.Join(c.CORS.Origins, ","))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		errs = append(errs, errors.New("jwt.accessTokenTTLMin must be positive"))
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when kafka is enabled"))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
