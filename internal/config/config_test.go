package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Lock.Backend)
	assert.Equal(t, 3, cfg.Business.ReminderDays)
	assert.Equal(t, 30, cfg.Business.FirstDueDays)
	assert.True(t, cfg.GetMaxCreditLimit().Equal(decimal.NewFromInt(10000)))
	assert.True(t, cfg.GetLimitIncreaseRate().Equal(decimal.NewFromInt(10)))
	assert.True(t, cfg.GetLimitDecreaseRate().Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 48*time.Hour, cfg.GetApprovalTokenTTL())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URL", "file:ledger.db")
	t.Setenv("MAX_CREDIT_LIMIT", "25000.50")
	t.Setenv("REMINDER_DAYS", "5")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "file:ledger.db", cfg.Database.URL)
	assert.True(t, cfg.GetMaxCreditLimit().Equal(decimal.RequireFromString("25000.50")))
	assert.Equal(t, 5, cfg.Business.ReminderDays)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		value         string
		errorContains string
	}{
		{"bad decimal", "LIMIT_DECREASE_RATE", "five", "LIMIT_DECREASE_RATE"},
		{"negative max limit", "MAX_CREDIT_LIMIT", "-1", "MAX_CREDIT_LIMIT"},
		{"unknown driver", "DATABASE_DRIVER", "mysql", "DATABASE_DRIVER"},
		{"unknown lock backend", "LOCK_BACKEND", "etcd", "LOCK_BACKEND"},
		{"bad cron spec", "SCHEDULER_SPEC", "every day", "SCHEDULER_SPEC"},
		{"bad duration", "LOCK_TTL", "soon", "LOCK_TTL"},
		{"email without smtp", "NOTIFY_CHANNEL", "email", "SMTP_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}
