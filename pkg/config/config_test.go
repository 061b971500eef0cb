package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Ledger.MaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.Ledger.StoreTimeout)
	assert.Equal(t, 365, cfg.Audit.RetentionDays)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, "postgres://postgres:@localhost:5432/clinic_ledger?sslmode=disable", cfg.DB.ConnectionString())
}

func TestFromViper_Valores(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "DynamoDB")
	v.Set("LEDGER_MAX_ATTEMPTS", "8")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("S3_BUCKET", "exports")
	v.Set("DATABASE_URL", "postgres://x@db/ledger")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, DriverDynamoDB, cfg.Store.Driver)
	assert.Equal(t, 8, cfg.Ledger.MaxAttempts)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, "postgres://x@db/ledger", cfg.DB.ConnectionString())
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "firestore")
	_, err := fromViper(v)
	assert.Error(t, err)
}
