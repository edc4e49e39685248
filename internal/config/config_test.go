package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, BlobLocal, cfg.BlobBackend)
	assert.Equal(t, []string{"743425"}, cfg.AllowedPincodes)
	assert.True(t, decimal.NewFromInt(20).Equal(cfg.DeliveryCharge))
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.Equal(t, DefaultAdminPassword, cfg.AdminPassword)
	assert.True(t, cfg.JWTSecretGenerated)
	assert.Len(t, cfg.JWTSecret, 64)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "FOODIFY", cfg.ShopName)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "FILE")
	t.Setenv("DATA_DIR", "/var/lib/foodify")
	t.Setenv("RUN_MIGRATIONS", "no")
	t.Setenv("ALLOWED_PINCODES", " 743425, 743426 ,")
	t.Setenv("DELIVERY_CHARGE", "35.50")
	t.Setenv("SESSION_TTL", "bogus")
	t.Setenv("JWT_SECRET", "fixed")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("BLOB_BACKEND", "r2")
	t.Setenv("R2_ACCOUNT_ID", "acc")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET", "menu")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "/var/lib/foodify", cfg.DataDir)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, []string{"743425", "743426"}, cfg.AllowedPincodes)
	assert.Equal(t, "35.5", cfg.DeliveryCharge.String())
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []byte("fixed"), cfg.JWTSecret)
	assert.False(t, cfg.JWTSecretGenerated)
	assert.Empty(t, cfg.AdminPassword)
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com", cfg.R2.Endpoint)
	assert.Equal(t, "menu", cfg.R2.Bucket)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "backend", env: map[string]string{"STORAGE_BACKEND": "mysql"}},
		{name: "blob backend", env: map[string]string{"BLOB_BACKEND": "gcs"}},
		{name: "r2 incomplete", env: map[string]string{"BLOB_BACKEND": "r2", "R2_BUCKET": "menu"}},
		{name: "charge", env: map[string]string{"DELIVERY_CHARGE": "twenty"}},
		{name: "negative charge", env: map[string]string{"DELIVERY_CHARGE": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := fromEnv()
			assert.Error(t, err)
		})
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("FLAG", "ON")
	assert.True(t, envBool("FLAG", false))
	t.Setenv("FLAG", "maybe")
	assert.False(t, envBool("FLAG", false))
	assert.True(t, envBool("UNSET_FLAG_X", true))
}
