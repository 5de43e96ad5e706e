package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, "mongodb://localhost:27017", c.MongoURI)
	assert.Equal(t, "gophsocial", c.MongoDatabase)
	assert.Empty(t, c.SecretKey)
	assert.Equal(t, 5*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, "images", c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Equal(t, "http://127.0.0.1:9000/", c.S3BaseEndpoint)
	assert.Empty(t, c.RedisAddr)
	assert.Empty(t, c.NatsURL)
	assert.Equal(t, int64(10<<20), c.MaxUploadSize)
	assert.Equal(t, "info", c.LogLevel)
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	assert.ErrorIs(t, c.Validate(), ErrMissingSecret)

	c.SecretKey = "s3cr3t"
	assert.NoError(t, c.Validate())
}
