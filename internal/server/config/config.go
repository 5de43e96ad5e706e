// Package config handles configuration for the gophsocial server, layering
// defaults, environment (including an optional .env file), a JSON overlay and
// command-line flags.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/common"
)

// Config holds runtime settings for the server.
//
// Fields:
//   - EndpointAddrHTTP: bind address of the HTTP API.
//   - MongoURI / MongoDatabase: document store connection.
//   - SecretKey: HMAC secret for signing JWTs (HS256). No default; must be
//     supplied through env, JSON or flags.
//   - AccessTokenValidityDuration: token lifetime.
//   - S3*: S3-compatible object storage for uploads.
//   - RedisAddr / RedisPassword / RedisDB / ProfileCacheTTL: optional profile
//     cache. Empty RedisAddr disables it.
//   - NatsURL: optional event bus. Empty disables publishing.
//   - MaxUploadSize: upper bound for a single uploaded image, bytes.
type Config struct {
	EndpointAddrHTTP            string
	MongoURI                    string
	MongoDatabase               string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
	RedisAddr                   string
	RedisPassword               string
	RedisDB                     int
	ProfileCacheTTL             time.Duration
	NatsURL                     string
	MaxUploadSize               int64
	LogLevel                    string
	ShutdownTimeout             time.Duration
}

var ErrMissingSecret = errors.New("jwt secret is not configured")

// LoadDefaults populates Config with development defaults. SecretKey is
// deliberately left empty.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.MongoURI = "mongodb://localhost:27017"
	c.MongoDatabase = "gophsocial"
	c.AccessTokenValidityDuration = common.DefaultTokenValidity
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "images"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.ProfileCacheTTL = 10 * time.Minute
	c.MaxUploadSize = 10 << 20
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecret
	}
	return nil
}

// LoadConfig builds a Config from defaults, then environment, then an
// optional JSON file, then command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, os.Args[1:]); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, os.Args[1:]); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}
