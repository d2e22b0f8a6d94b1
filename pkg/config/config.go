package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "PERPUSDESA"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	JWT          JWTConfig
	Password     PasswordConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"PERPUSDESA_APP_ENV" required:"true"`
	Port         string `envconfig:"PERPUSDESA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PERPUSDESA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PERPUSDESA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"PERPUSDESA_DB_DSN"`

	Host     string `envconfig:"PERPUSDESA_DB_HOST"`
	Port     int    `envconfig:"PERPUSDESA_DB_PORT" default:"5432"`
	User     string `envconfig:"PERPUSDESA_DB_USER"`
	Password string `envconfig:"PERPUSDESA_DB_PASSWORD"`
	Name     string `envconfig:"PERPUSDESA_DB_NAME"`
	SSLMode  string `envconfig:"PERPUSDESA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PERPUSDESA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PERPUSDESA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PERPUSDESA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PERPUSDESA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	var missing []string
	for env, value := range map[string]string{
		"PERPUSDESA_DB_HOST": db.Host,
		"PERPUSDESA_DB_USER": db.User,
		"PERPUSDESA_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either PERPUSDESA_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

type JWTConfig struct {
	Secret            string `envconfig:"PERPUSDESA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PERPUSDESA_JWT_ISSUER" default:"perpusdesa"`
	ExpirationMinutes int    `envconfig:"PERPUSDESA_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PERPUSDESA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PERPUSDESA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PERPUSDESA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PERPUSDESA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PERPUSDESA_ARGON_KEY_LEN" default:"32"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PERPUSDESA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PERPUSDESA_AUTO_MIGRATE" default:"false"`
}
