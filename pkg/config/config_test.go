package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, RelationshipFriendship, cfg.RelationshipModel)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, 10*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 280, cfg.NewsflashMaxLength)
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.RequireAuth)
	assert.Empty(t, cfg.JWTSecret)
}

func TestValidateRequiresSecretWithAuth(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())

	cfg.JWTSecret = ""
	cfg.RequireAuth = false
	assert.NoError(t, cfg.Validate())
}

func TestFromViperNormalisesUnknownValues(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("RELATIONSHIP_MODEL", "Follow")
	v.Set("STORAGE", "something-else")
	v.Set("NOTIFY_WORKERS", 0)
	v.Set("ENV", "Development")

	cfg := fromViper(v)

	assert.Equal(t, RelationshipFollow, cfg.RelationshipModel)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, 1, cfg.NotifyWorkers)
	assert.True(t, cfg.IsDevelopment())
}
