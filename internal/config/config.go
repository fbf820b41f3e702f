package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/justsurfingit/jobx/internal/apperr"
)

// Config represents the application configuration
type Config struct {
	Env string `mapstructure:"env"`

	Server struct {
		Host         string        `mapstructure:"host"`
		Port         int           `mapstructure:"port"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
		CORSOrigins  []string      `mapstructure:"cors_origins"`
	} `mapstructure:"server"`

	Database struct {
		DSN          string `mapstructure:"dsn"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
		AutoMigrate  bool   `mapstructure:"auto_migrate"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret   string        `mapstructure:"jwt_secret"`
		TokenExpiry time.Duration `mapstructure:"token_expiry"`
	} `mapstructure:"auth"`

	Applications struct {
		FreeQuota         int           `mapstructure:"free_quota"`
		QuotaWindow       time.Duration `mapstructure:"quota_window"`
		StrictTransitions bool          `mapstructure:"strict_transitions"`
	} `mapstructure:"applications"`

	Uploads struct {
		Backend        string `mapstructure:"backend"`
		Dir            string `mapstructure:"dir"`
		PublicPath     string `mapstructure:"public_path"`
		MaxResumeBytes int64  `mapstructure:"max_resume_bytes"`
		S3             S3     `mapstructure:"s3"`
	} `mapstructure:"uploads"`

	Redis struct {
		URL string        `mapstructure:"url"`
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`

	LLM struct {
		GeminiAPIKey string `mapstructure:"gemini_api_key"`
		Model        string `mapstructure:"model"`
	} `mapstructure:"llm"`

	Sweeper struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"sweeper"`

	RateLimit struct {
		RPS   float64 `mapstructure:"rps"`
		Burst int     `mapstructure:"burst"`
	} `mapstructure:"ratelimit"`

	Logging struct {
		Level string `mapstructure:"level"`
		JSON  bool   `mapstructure:"json"`
	} `mapstructure:"logging"`
}

// S3 locates the bucket resumes go to when uploads.backend is s3. Endpoint
// is only needed for S3-compatible stores such as DigitalOcean Spaces or
// MinIO.
type S3 struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicURL       string `mapstructure:"public_url"`
	Prefix          string `mapstructure:"prefix"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
}

// Upload backends.
const (
	UploadsDisk = "disk"
	UploadsS3   = "s3"
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.dsn", "host=localhost user=postgres password=password dbname=jobx port=5432 sslmode=disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_expiry", 24*time.Hour)

	v.SetDefault("applications.free_quota", 5)
	v.SetDefault("applications.quota_window", 30*24*time.Hour)
	v.SetDefault("applications.strict_transitions", false)

	v.SetDefault("uploads.backend", UploadsDisk)
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.public_path", "/uploads")
	v.SetDefault("uploads.max_resume_bytes", 5*1024*1024)
	v.SetDefault("uploads.s3.bucket", "")
	v.SetDefault("uploads.s3.region", "")
	v.SetDefault("uploads.s3.endpoint", "")
	v.SetDefault("uploads.s3.access_key_id", "")
	v.SetDefault("uploads.s3.secret_access_key", "")
	v.SetDefault("uploads.s3.public_url", "")
	v.SetDefault("uploads.s3.prefix", "resumes")
	v.SetDefault("uploads.s3.force_path_style", false)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", 30*time.Second)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model", "gemini-2.5-flash")

	v.SetDefault("sweeper.interval", 10*time.Minute)

	v.SetDefault("ratelimit.rps", 20.0)
	v.SetDefault("ratelimit.burst", 40)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)
}

// legacyEnv maps keys to the plain variable names the deployment already uses.
var legacyEnv = map[string]string{
	"database.dsn":       "DATABASE_URL",
	"auth.jwt_secret":    "JWT_SECRET",
	"llm.gemini_api_key": "GEMINI_API_KEY",
	"server.port":        "PORT",
	"redis.url":          "REDIS_URL",
	"logging.level":      "LOG_LEVEL",
}

// Load reads configuration from defaults, the optional file at path, a .env
// file and the environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("JOBX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range legacyEnv {
		prefixed := "JOBX_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return nil, apperr.Wrapf(err, "bind env %s", name)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperr.Wrapf(err, "read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperr.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment is true for local and test environments.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "test"
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return apperr.New("database.dsn must be set")
	}
	if c.Applications.FreeQuota < 0 {
		return apperr.New("applications.free_quota must not be negative")
	}
	if c.Applications.QuotaWindow <= 0 {
		return apperr.New("applications.quota_window must be positive")
	}
	if c.Uploads.MaxResumeBytes <= 0 {
		return apperr.New("uploads.max_resume_bytes must be positive")
	}
	switch c.Uploads.Backend {
	case "", UploadsDisk:
	case UploadsS3:
		if c.Uploads.S3.Bucket == "" || c.Uploads.S3.Region == "" {
			return apperr.New("uploads.s3.bucket and uploads.s3.region must be set for the s3 backend")
		}
	default:
		return apperr.Newf("uploads.backend must be %s or %s, got %q", UploadsDisk, UploadsS3, c.Uploads.Backend)
	}
	if !c.IsDevelopment() && len(c.Auth.JWTSecret) < 32 {
		return apperr.Newf("auth.jwt_secret must be at least 32 bytes in %s", c.Env)
	}
	return nil
}
