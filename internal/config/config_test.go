package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_EMAIL", "  Boss@Example.com ")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "shop_db", cfg.Mongo.DBName)
	require.Equal(t, 5*time.Second, cfg.Mongo.OpTimeout)
	require.Equal(t, time.Hour, cfg.JWT.AccessTokenTTL)
	require.Equal(t, "boss@example.com", cfg.Admin.Email)
	require.Equal(t, "8000", cfg.App.Port)
	require.False(t, cfg.App.IsProd())
}

func TestLoadRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	require.NoError(t, os.Unsetenv("MONGO_URI"))
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
}
