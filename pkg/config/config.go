package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	PromoCheck   PromoCheckRateLimitConfig
	AdminLogin   AdminLoginRateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Telegram     TelegramConfig
	AdminSeed    AdminSeedConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MANGOBOX_APP_ENV" required:"true"`
	Port         string `envconfig:"MANGOBOX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MANGOBOX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MANGOBOX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MANGOBOX_DB_DSN"`
	Driver string `envconfig:"MANGOBOX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MANGOBOX_DB_HOST"`
	LegacyPort     int    `envconfig:"MANGOBOX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MANGOBOX_DB_USER"`
	LegacyPassword string `envconfig:"MANGOBOX_DB_PASSWORD"`
	LegacyName     string `envconfig:"MANGOBOX_DB_NAME"`
	LegacySSLMode  string `envconfig:"MANGOBOX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MANGOBOX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MANGOBOX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MANGOBOX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MANGOBOX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MANGOBOX_REDIS_URL" required:"true"`
	Password     string        `envconfig:"MANGOBOX_REDIS_PASSWORD"`
	DB           int           `envconfig:"MANGOBOX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MANGOBOX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MANGOBOX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MANGOBOX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MANGOBOX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MANGOBOX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MANGOBOX_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MANGOBOX_JWT_ISSUER" default:"mangobox"`
	ExpirationMinutes int    `envconfig:"MANGOBOX_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MANGOBOX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MANGOBOX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MANGOBOX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MANGOBOX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MANGOBOX_ARGON_KEY_LEN" default:"32"`
}

type PromoCheckRateLimitConfig struct {
	Window  time.Duration `envconfig:"MANGOBOX_PROMO_CHECK_WINDOW" default:"1m"`
	IPLimit int           `envconfig:"MANGOBOX_PROMO_CHECK_IP_LIMIT" default:"30"`
}

// Login gets a tighter default than promo check since failed attempts are
// credential guesses, not browsing.
type AdminLoginRateLimitConfig struct {
	Window  time.Duration `envconfig:"MANGOBOX_ADMIN_LOGIN_WINDOW" default:"1m"`
	IPLimit int           `envconfig:"MANGOBOX_ADMIN_LOGIN_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate    bool `envconfig:"MANGOBOX_AUTO_MIGRATE" default:"false"`
	SeedDefaults   bool `envconfig:"MANGOBOX_SEED_DEFAULTS" default:"false"`
	NotifyOnOrders bool `envconfig:"MANGOBOX_NOTIFY_ON_ORDERS" default:"true"`
}

type TelegramConfig struct {
	BotToken    string        `envconfig:"MANGOBOX_TELEGRAM_BOT_TOKEN"`
	ChatID      string        `envconfig:"MANGOBOX_TELEGRAM_CHAT_ID"`
	BaseURL     string        `envconfig:"MANGOBOX_TELEGRAM_BASE_URL" default:"https://api.telegram.org"`
	Timeout     time.Duration `envconfig:"MANGOBOX_TELEGRAM_TIMEOUT" default:"10s"`
	MaxAttempts int           `envconfig:"MANGOBOX_TELEGRAM_MAX_ATTEMPTS" default:"3"`
}

// Enabled reports whether the Telegram notifier has enough config to run.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

type AdminSeedConfig struct {
	Email    string `envconfig:"MANGOBOX_ADMIN_SEED_EMAIL"`
	Password string `envconfig:"MANGOBOX_ADMIN_SEED_PASSWORD"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
