package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	NATS   NATSConfig
	XMPP   XMPPConfig
	LLM    LLMConfig
	Chat   ChatConfig
	Quota  QuotaConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
	// AuthRateLimit is the number of auth requests allowed per client IP per minute. 0 disables it.
	AuthRateLimit int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// NATSConfig enables the chat message bus. An empty URL disables NATS and
// with it the XMPP gateway and the activity log consumer.
type NATSConfig struct {
	URL string
}

func (c NATSConfig) Enabled() bool { return c.URL != "" }

type XMPPConfig struct {
	Enabled         bool
	ComponentHost   string
	ComponentPort   int
	ComponentName   string
	ComponentSecret string
}

func (c XMPPConfig) ComponentAddr() string {
	return fmt.Sprintf("%s:%d", c.ComponentHost, c.ComponentPort)
}

// LLMConfig selects the generative backend. Provider "none" keeps the
// assistant on templated replies.
type LLMConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

func (c LLMConfig) Enabled() bool { return c.Provider != "none" }

type ChatConfig struct {
	HistoryTTL time.Duration
}

// QuotaConfig budgets generative calls per user. Zero disables a limit.
type QuotaConfig struct {
	PerMinute int
	PerDay    int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	return load(".env")
}

func load(dotenvPath string) (*Config, error) {
	k := koanf.New(".")

	// .env is optional. Its keys are spelled like environment variables, so
	// they are mapped the same way before merging.
	dotenvK := koanf.New(".")
	if err := dotenvK.Load(file.Provider(dotenvPath), dotenv.Parser()); err == nil {
		for key, val := range dotenvK.All() {
			if err := k.Set(envKey(key), val); err != nil {
				return nil, fmt.Errorf("loading %s: %w", dotenvPath, err)
			}
		}
	}

	// Environment variables override .env
	err := k.Load(env.Provider("", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:               stringOr(k, "server.host", "0.0.0.0"),
			Port:               intOr(k, "server.port", 8080),
			CORSAllowedOrigins: list(k.String("cors.allowed.origins")),
			AuthRateLimit:      intOr(k, "auth.rate.limit", 20),
		},
		DB: DBConfig{
			Host:     stringOr(k, "db.host", "localhost"),
			Port:     intOr(k, "db.port", 5432),
			User:     stringOr(k, "db.user", "chronomate"),
			Password: k.String("db.password"),
			Name:     stringOr(k, "db.name", "chronomate"),
			SSLMode:  stringOr(k, "db.sslmode", "disable"),
			MaxConns: int32(intOr(k, "db.max.conns", 25)),
		},
		Redis: RedisConfig{
			Host:     stringOr(k, "redis.host", "localhost"),
			Port:     intOr(k, "redis.port", 6379),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		JWT: JWTConfig{
			AccessSecret:  k.String("jwt.access.secret"),
			RefreshSecret: k.String("jwt.refresh.secret"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		XMPP: XMPPConfig{
			Enabled:         k.Bool("xmpp.enabled"),
			ComponentHost:   stringOr(k, "xmpp.component.host", "localhost"),
			ComponentPort:   intOr(k, "xmpp.component.port", 5347),
			ComponentName:   stringOr(k, "xmpp.component.name", "assistant.chronomate.local"),
			ComponentSecret: k.String("xmpp.component.secret"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(stringOr(k, "llm.provider", "none")),
			APIKey:      k.String("llm.api.key"),
			BaseURL:     k.String("llm.base.url"),
			Model:       k.String("llm.model"),
			Temperature: k.Float64("llm.temperature"),
		},
		Quota: QuotaConfig{
			PerMinute: intOr(k, "quota.per.minute", 10),
			PerDay:    intOr(k, "quota.per.day", 200),
		},
		Log: LogConfig{
			Level:  stringOr(k, "log.level", "info"),
			Format: stringOr(k, "log.format", "text"),
		},
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"jwt.access.expiry", "15m", &cfg.JWT.AccessExpiry},
		{"jwt.refresh.expiry", "168h", &cfg.JWT.RefreshExpiry},
		{"llm.timeout", "30s", &cfg.LLM.Timeout},
		{"chat.history.ttl", "24h", &cfg.Chat.HistoryTTL},
	}
	for _, d := range durations {
		raw := stringOr(k, d.key, d.def)
		*d.dst, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", d.key, err)
		}
	}

	return cfg, nil
}

// envKey maps DB_MAX_CONNS to db.max.conns.
func envKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", "."))
}

func stringOr(k *koanf.Koanf, key, def string) string {
	if v := k.String(key); v != "" {
		return v
	}
	return def
}

func intOr(k *koanf.Koanf, key string, def int) int {
	if !k.Exists(key) {
		return def
	}
	return k.Int(key)
}

func list(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
