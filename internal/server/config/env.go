package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv loads dotenvPath (if it exists) into the process environment and
// overlays every variable that is set onto config. Variables already present
// in the environment take precedence over the file.
func parseEnv(config *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", dotenvPath, err)
		}
	}

	envString("HTTP_ADDR", &config.EndpointAddrHTTP)
	envString("MONGO_URI", &config.MongoURI)
	envString("MONGO_DATABASE", &config.MongoDatabase)
	envString("JWT_SECRET", &config.SecretKey)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envString("REDIS_ADDR", &config.RedisAddr)
	envString("REDIS_PASSWORD", &config.RedisPassword)
	envString("NATS_URL", &config.NatsURL)
	envString("LOG_LEVEL", &config.LogLevel)

	if err := envDuration("TOKEN_TTL", &config.AccessTokenValidityDuration); err != nil {
		return err
	}
	if err := envDuration("PROFILE_CACHE_TTL", &config.ProfileCacheTTL); err != nil {
		return err
	}
	if err := envInt("REDIS_DB", &config.RedisDB); err != nil {
		return err
	}
	if err := envInt64("MAX_UPLOAD_SIZE", &config.MaxUploadSize); err != nil {
		return err
	}

	return nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
