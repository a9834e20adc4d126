package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Vision        VisionConfig
	Supabase      SupabaseConfig
	Uploads       UploadsConfig
	Seed          SeedConfig
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
	Env          string   `envconfig:"FLEETFUEL_APP_ENV" required:"true"`
	Port         string   `envconfig:"FLEETFUEL_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"FLEETFUEL_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"FLEETFUEL_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"FLEETFUEL_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FLEETFUEL_DB_DSN"`
	Driver string `envconfig:"FLEETFUEL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FLEETFUEL_DB_HOST"`
	LegacyPort     int    `envconfig:"FLEETFUEL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FLEETFUEL_DB_USER"`
	LegacyPassword string `envconfig:"FLEETFUEL_DB_PASSWORD"`
	LegacyName     string `envconfig:"FLEETFUEL_DB_NAME"`
	LegacySSLMode  string `envconfig:"FLEETFUEL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLEETFUEL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLEETFUEL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLEETFUEL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLEETFUEL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FLEETFUEL_REDIS_URL"`
	Address      string        `envconfig:"FLEETFUEL_REDIS_ADDR"`
	Password     string        `envconfig:"FLEETFUEL_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLEETFUEL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLEETFUEL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLEETFUEL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLEETFUEL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLEETFUEL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLEETFUEL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FLEETFUEL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FLEETFUEL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FLEETFUEL_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FLEETFUEL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FLEETFUEL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FLEETFUEL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FLEETFUEL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FLEETFUEL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"FLEETFUEL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"FLEETFUEL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"FLEETFUEL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FLEETFUEL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FLEETFUEL_AUTO_MIGRATE" default:"false"`
}

type VisionConfig struct {
	APIKey  string        `envconfig:"FLEETFUEL_VISION_API_KEY"`
	BaseURL string        `envconfig:"FLEETFUEL_VISION_BASE_URL" default:"https://vision.googleapis.com/v1"`
	Timeout time.Duration `envconfig:"FLEETFUEL_VISION_TIMEOUT" default:"15s"`
}

type SupabaseConfig struct {
	URL        string        `envconfig:"FLEETFUEL_SUPABASE_URL"`
	ServiceKey string        `envconfig:"FLEETFUEL_SUPABASE_KEY"`
	Bucket     string        `envconfig:"FLEETFUEL_SUPABASE_BUCKET" default:"fleet-photos"`
	Timeout    time.Duration `envconfig:"FLEETFUEL_SUPABASE_TIMEOUT" default:"30s"`
}

type UploadsConfig struct {
	TempDir     string `envconfig:"FLEETFUEL_UPLOAD_TEMP_DIR"`
	MaxUploadMB int    `envconfig:"FLEETFUEL_MAX_UPLOAD_MB" default:"20"`
}

type SeedConfig struct {
	AdminName     string `envconfig:"FLEETFUEL_SEED_ADMIN_NAME" default:"Fleet Administrator"`
	AdminEmail    string `envconfig:"FLEETFUEL_SEED_ADMIN_EMAIL"`
	AdminPassword string `envconfig:"FLEETFUEL_SEED_ADMIN_PASSWORD"`
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
