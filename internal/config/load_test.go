package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestLedger"
	testPort := 9090
	testLogLevel := "debug"
	testRate := "0.05"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nFEES_PLATFORM_RATE=%s\n",
		testAppName, testPort, testLogLevel, testRate,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.True(t, cfg.Fees.PlatformRate.Equal(decimal.RequireFromString(testRate)))

	// Defaults fill everything the file does not set
	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "settlement_events", cfg.Kafka.SettlementTopic)
	assert.Equal(t, "ledger_notifications", cfg.Kafka.NotificationTopic)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, int64(50000), cfg.Fees.FreeTierThreshold)
	assert.Equal(t, int64(100), cfg.Wallet.MinDeposit)
	assert.Equal(t, int64(200000), cfg.Wallet.MaxDeposit)
	assert.Equal(t, 10, cfg.WorkerPool.Size)

	cfgWithName, err := LoadConfigWithName("configs/test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfgWithName)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)

	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	require.NotNil(t, cfgWithNameAndType)
	assert.Equal(t, testAppName, cfgWithNameAndType.Application.Name)
}

func TestLoadConfig_RejectsBadPlatformRate(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	envFilePath := filepath.Join(tempDir, "bad_rate.env")
	err = os.WriteFile(envFilePath, []byte("FEES_PLATFORM_RATE=three-percent\n"), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()
	require.NoError(t, os.Chdir(tempDir))

	_, err = LoadConfig("bad_rate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEES_PLATFORM_RATE")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig("does_not_exist") // Defaults only
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing server port",
			mutate:  func(cfg *Config) { cfg.Server.Port = 0 },
			wantErr: "SERVER_PORT",
		},
		{
			name:    "missing settlement topic",
			mutate:  func(cfg *Config) { cfg.Kafka.SettlementTopic = "" },
			wantErr: "KAFKA_SETTLEMENT_TOPIC",
		},
		{
			name:    "rate of one or more",
			mutate:  func(cfg *Config) { cfg.Fees.PlatformRate = decimal.NewFromInt(1) },
			wantErr: "FEES_PLATFORM_RATE",
		},
		{
			name:    "negative rate",
			mutate:  func(cfg *Config) { cfg.Fees.PlatformRate = decimal.RequireFromString("-0.01") },
			wantErr: "FEES_PLATFORM_RATE",
		},
		{
			name:    "deposit ceiling below floor",
			mutate:  func(cfg *Config) { cfg.Wallet.MaxDeposit = cfg.Wallet.MinDeposit - 1 },
			wantErr: "WALLET_MAX_DEPOSIT",
		},
		{
			name:    "missing webhook secret",
			mutate:  func(cfg *Config) { cfg.Payments.WebhookSecret = "" },
			wantErr: "PAYMENTS_WEBHOOK_SECRET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
