// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "local"}
	validDrivers      = []string{"sqlite", "postgres"}
)

type Config struct {
	App      App      `mapstructure:"app"`
	Host     Host     `mapstructure:"host"`
	Session  Session  `mapstructure:"session"`
	Admin    Admin    `mapstructure:"admin"`
	Database Database `mapstructure:"database"`
	Storage  Storage  `mapstructure:"storage"`
	S3       S3       `mapstructure:"s3"`
	Upload   Upload   `mapstructure:"upload"`
	FFmpeg   FFmpeg   `mapstructure:"ffmpeg"`
	Captcha  Captcha  `mapstructure:"captcha"`
	Security Security `mapstructure:"security"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
	// Brand is drawn on placeholder thumbnails when a video has no title
	Brand string `mapstructure:"brand"`
}

type Host struct {
	Port       int      `mapstructure:"port"`
	CORS       []string `mapstructure:"cors"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
}

type Session struct {
	Secret string        `mapstructure:"secret"`
	MaxAge time.Duration `mapstructure:"max_age"`
}

// Admin holds the credentials the single administrator account is seeded from
type Admin struct {
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	DisplayName string `mapstructure:"display_name"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// WipeOnStart drops every table before migrating. Off unless asked for.
	WipeOnStart bool `mapstructure:"wipe_on_start"`
}

type Storage struct {
	Type string `mapstructure:"type"`
	// Root is the local directory media is written to when Type is local
	Root string `mapstructure:"root"`
	// PublicURL is prepended to object keys when media is served from S3
	PublicURL string `mapstructure:"public_url"`
}

type S3 struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type Upload struct {
	// MaxSize is in MiB
	MaxSize int64 `mapstructure:"max_size"`
}

// MaxBytes returns the upload limit in bytes
func (u Upload) MaxBytes() int64 {
	return u.MaxSize << 20
}

type FFmpeg struct {
	Path        string        `mapstructure:"path"`
	FFprobePath string        `mapstructure:"ffprobe_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	// Embedded enables in-process frame decoding as the first thumbnail tier
	Embedded bool `mapstructure:"embedded"`
}

type Captcha struct {
	RegisterQuestion string `mapstructure:"register_question"`
	RegisterAnswer   string `mapstructure:"register_answer"`
}

type Security struct {
	// RateLimit is the allowed requests per second per IP on auth endpoints
	RateLimit int `mapstructure:"rate_limit"`
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Load prepares everything config-related so that the app can
// start working. args are the command line arguments without the
// program name. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("emotube", pflag.ContinueOnError)
	cfgPath := fs.String("config", ".", "Directory containing config.toml")
	fs.Bool("wipe-db", false, "Drops all tables on start and reseeds the admin account")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.BindPFlag("database.wipe_on_start", fs.Lookup("wipe-db"))

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*cfgPath)

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")
	v.BindEnv("app.brand", "APP_BRAND")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.cors", "HOST_CORS")
	v.BindEnv("host.ssl_enabled", "HOST_SSL_ENABLED")

	v.BindEnv("session.secret", "SESSION_SECRET")
	v.BindEnv("session.max_age", "SESSION_MAX_AGE")

	v.BindEnv("admin.username", "ADMIN_USERNAME")
	v.BindEnv("admin.password", "ADMIN_PASSWORD")

	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN")

	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.root", "STORAGE_ROOT")
	v.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")

	v.BindEnv("s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secret_access_key", "S3_SECRET_ACCESS_KEY")

	v.BindEnv("upload.max_size", "UPLOAD_MAX_SIZE")

	v.BindEnv("ffmpeg.path", "FFMPEG_PATH")
	v.BindEnv("ffmpeg.ffprobe_path", "FFPROBE_PATH")
	v.BindEnv("ffmpeg.timeout", "FFMPEG_TIMEOUT")

	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.brand", "EmoTube99")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", []string{"http://localhost:8080"})
	v.SetDefault("host.ssl_enabled", false)

	v.SetDefault("session.max_age", 30*24*time.Hour)

	v.SetDefault("admin.username", "admin@emotube.local")
	v.SetDefault("admin.password", "admin1234")
	v.SetDefault("admin.display_name", "Admin")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "emotube.db")
	v.SetDefault("database.wipe_on_start", false)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.root", "static/uploads")
	v.SetDefault("storage.public_url", "")

	v.SetDefault("s3.region", "auto")

	v.SetDefault("upload.max_size", 2048)

	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffmpeg.ffprobe_path", "ffprobe")
	v.SetDefault("ffmpeg.timeout", 30*time.Second)
	v.SetDefault("ffmpeg.embedded", true)

	v.SetDefault("captcha.register_question", "3 + 4 = ?")
	v.SetDefault("captcha.register_answer", "7")

	v.SetDefault("security.rate_limit", 10)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: No config.toml found, running with defaults and environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Session.Secret == "" {
		fmt.Println("[WARNING]: You haven't set a session secret, a random one was generated. Sessions won't survive a restart.")
		cfg.Session.Secret = genSecret()
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if c.FFmpeg.Timeout <= 0 {
		return errors.New("ffmpeg.timeout must be bigger than 0")
	}

	if c.Admin.Username == "" || c.Admin.Password == "" {
		return errors.New("admin credentials can't be empty")
	}

	if c.Captcha.RegisterAnswer == "" {
		return errors.New("captcha.register_answer can't be empty")
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.DSN == "" {
		return errors.New("database.dsn can't be empty")
	}

	if !slices.Contains(validStorageTypes, c.Storage.Type) {
		return errors.New("invalid storage type provided")
	}

	switch c.Storage.Type {
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if c.S3.AccessKeyID == "" {
			return errors.New("access key id can't be empty")
		}
		if c.S3.SecretAccessKey == "" {
			return errors.New("secret access key can't be empty")
		}
		if c.Storage.PublicURL == "" {
			return errors.New("storage.public_url is required when serving media from S3")
		}
	case "local":
		if c.Storage.Root == "" {
			return errors.New("storage.root can't be empty")
		}
	}

	return nil
}
