package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvDev  = "DEV"
	EnvTest = "TEST"
	EnvQA   = "QA"
	EnvProd = "PROD"
)

type (
	ServerConfig struct {
		Addr            string
		DebugAddr       string
		Host            string
		ShutdownTimeout time.Duration
		LoginBurst      int
		LoginEvery      time.Duration
	}

	SessionConfig struct {
		Secret     string
		TTL        time.Duration
		CookieName string
	}

	MongoConfig struct {
		URI            string
		Name           string
		ConnectTimeout time.Duration
	}

	PostgresConfig struct {
		URL string
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	SMSConfig struct {
		APIKey   string
		SenderID string
		BaseURL  string
		Timeout  time.Duration
	}

	AdminConfig struct {
		Email      string
		Username   string
		Password   string
		SeedSecret string
	}

	Config struct {
		Env              string
		Build            string
		AppName          string
		Debug            bool
		TestMode         bool
		WorkDir          string
		BaseURL          string
		CoachingName     string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridAPIKey   string

		Server   ServerConfig
		Session  SessionConfig
		Mongo    MongoConfig
		Postgres PostgresConfig
		Redis    RedisConfig
		SMS      SMSConfig
		Admin    AdminConfig
	}
)

func newViper(env string) *viper.Viper {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", env != EnvProd)
	v.SetDefault("build", "develop")
	v.SetDefault("app_name", "CoachDesk")
	v.SetDefault("app_base_url", "http://localhost:8000")
	v.SetDefault("coaching_name", "")
	v.SetDefault("default_from_email", "CoachDesk <noreply@localhost>")
	v.SetDefault("http_addr", ":8000")
	v.SetDefault("debug_addr", ":4000")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("login_burst", 5)
	v.SetDefault("login_every", 12*time.Second)
	v.SetDefault("session_ttl", 7*24*time.Hour)
	v.SetDefault("session_cookie", "coachdesk_session")
	v.SetDefault("mongodb_connect_timeout", 10*time.Second)
	v.SetDefault("redis_db", 0)
	v.SetDefault("sms_base_url", "http://bulksmsbd.net/api")
	v.SetDefault("sms_timeout", 15*time.Second)

	// every key is read from its upper-cased env var (e.g. jwt_secret <- JWT_SECRET)
	for _, key := range []string{
		"jwt_secret", "mongodb_uri", "mongodb_db", "sms_api_key", "sms_sender_id",
		"admin_email", "admin_username", "admin_password", "seed_secret",
		"postgres_url", "redis_addr", "redis_password", "rollbar_token", "sendgrid_api_key",
	} {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()
	return v
}

// NewConfig loads the app configuration from the environment, after loading `config/.env.<env>` if it exists.
func NewConfig() (*Config, error) {
	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = EnvDev
	}
	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v := newViper(env)

	from, err := mail.ParseAddress(v.GetString("default_from_email"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing DEFAULT_FROM_EMAIL")
	}
	host, _ := os.Hostname()

	conf := &Config{
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("app_name"),
		Debug:            v.GetBool("debug"),
		TestMode:         env == EnvTest,
		WorkDir:          wd,
		BaseURL:          strings.TrimRight(v.GetString("app_base_url"), "/"),
		CoachingName:     v.GetString("coaching_name"),
		DefaultFromEmail: *from,
		RollbarToken:     v.GetString("rollbar_token"),
		SendgridAPIKey:   v.GetString("sendgrid_api_key"),
		Server: ServerConfig{
			Addr:            v.GetString("http_addr"),
			DebugAddr:       v.GetString("debug_addr"),
			Host:            host,
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
			LoginBurst:      v.GetInt("login_burst"),
			LoginEvery:      v.GetDuration("login_every"),
		},
		Session: SessionConfig{
			Secret:     v.GetString("jwt_secret"),
			TTL:        v.GetDuration("session_ttl"),
			CookieName: v.GetString("session_cookie"),
		},
		Mongo: MongoConfig{
			URI:            v.GetString("mongodb_uri"),
			Name:           v.GetString("mongodb_db"),
			ConnectTimeout: v.GetDuration("mongodb_connect_timeout"),
		},
		Postgres: PostgresConfig{URL: v.GetString("postgres_url")},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		SMS: SMSConfig{
			APIKey:   v.GetString("sms_api_key"),
			SenderID: v.GetString("sms_sender_id"),
			BaseURL:  strings.TrimRight(v.GetString("sms_base_url"), "/"),
			Timeout:  v.GetDuration("sms_timeout"),
		},
		Admin: AdminConfig{
			Email:      v.GetString("admin_email"),
			Username:   v.GetString("admin_username"),
			Password:   v.GetString("admin_password"),
			SeedSecret: v.GetString("seed_secret"),
		},
	}
	return conf, nil
}

// Validate checks that the settings required by the API are present.
func (c *Config) Validate() error {
	required := []struct{ key, val string }{
		{"JWT_SECRET", c.Session.Secret},
		{"MONGODB_URI", c.Mongo.URI},
		{"MONGODB_DB", c.Mongo.Name},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			return NewConfigError(r.key)
		}
	}
	return nil
}

func (c *Config) IsProd() bool { return c.Env == EnvProd }
