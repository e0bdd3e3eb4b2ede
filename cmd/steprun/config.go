package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/hairizuan-noorazman/steprunner/database"
	"github.com/hairizuan-noorazman/steprunner/evidence"
	"github.com/hairizuan-noorazman/steprunner/session"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Session  SessionConfig
	Evidence EvidenceConfig
	Database database.Config
	Suite    SuiteConfig
	Server   ServerConfig
	Log      LogConfig
}

// SessionConfig holds browser session configuration.
type SessionConfig struct {
	DefaultType string
	Headless    bool
	Timeout     time.Duration
	SlowMo      time.Duration
	BaseURL     string
}

// EvidenceConfig holds screenshot capture and storage configuration.
type EvidenceConfig struct {
	Mode          string // "none", "failures" or "every-step"
	Type          string // "local" or "s3"
	BaseDir       string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	PresignExpiry time.Duration
}

// SuiteConfig holds scenario scheduling configuration.
type SuiteConfig struct {
	Concurrency int
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Playwright returns the browser factory configuration.
func (c SessionConfig) Playwright() session.PlaywrightConfig {
	return session.PlaywrightConfig{
		Headless: c.Headless,
		Timeout:  c.Timeout,
		SlowMo:   c.SlowMo,
		BaseURL:  c.BaseURL,
	}
}

// Store returns the evidence store configuration.
func (c EvidenceConfig) Store() evidence.Config {
	return evidence.Config{
		Type:          c.Type,
		BaseDir:       c.BaseDir,
		Bucket:        c.S3Bucket,
		Region:        c.S3Region,
		Endpoint:      c.S3Endpoint,
		PresignExpiry: c.PresignExpiry,
	}
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("steprun")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("STEPRUN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("session.default_type", session.TypeChromium)
	v.SetDefault("session.headless", true)
	v.SetDefault("session.timeout", "30s")
	v.SetDefault("session.slow_mo", "0s")
	v.SetDefault("session.base_url", "")

	v.SetDefault("evidence.mode", string(evidence.ModeFailures))
	v.SetDefault("evidence.type", "local")
	v.SetDefault("evidence.base_dir", "./evidence")
	v.SetDefault("evidence.s3_bucket", "")
	v.SetDefault("evidence.s3_region", "us-east-1")
	v.SetDefault("evidence.s3_endpoint", "")
	v.SetDefault("evidence.presign_expiry", "15m")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./steprun.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "steprun")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("suite.concurrency", 2)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	config.Session.DefaultType = v.GetString("session.default_type")
	config.Session.Headless = v.GetBool("session.headless")
	config.Session.Timeout = v.GetDuration("session.timeout")
	config.Session.SlowMo = v.GetDuration("session.slow_mo")
	config.Session.BaseURL = v.GetString("session.base_url")

	config.Evidence.Mode = v.GetString("evidence.mode")
	config.Evidence.Type = v.GetString("evidence.type")
	config.Evidence.BaseDir = v.GetString("evidence.base_dir")
	config.Evidence.S3Bucket = v.GetString("evidence.s3_bucket")
	config.Evidence.S3Region = v.GetString("evidence.s3_region")
	config.Evidence.S3Endpoint = v.GetString("evidence.s3_endpoint")
	config.Evidence.PresignExpiry = v.GetDuration("evidence.presign_expiry")

	config.Database.Driver = v.GetString("database.driver")
	config.Database.Path = v.GetString("database.path")
	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")
	config.Database.AutoMigrate = v.GetBool("database.auto_migrate")

	config.Suite.Concurrency = v.GetInt("suite.concurrency")

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Log.Level = v.GetString("log.level")
	config.Log.Format = v.GetString("log.format")

	return &config, nil
}
