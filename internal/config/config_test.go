package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/freightdesk/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "0.18", cfg.Invoice.TaxRate.String())
	assert.Equal(t, 30, cfg.Invoice.DueDays)
	assert.Equal(t, 10*time.Second, cfg.PDF.Timeout)
	assert.Equal(t, "remote", cfg.PDF.Mode)
	assert.Equal(t, "postgres://postgres:@localhost:5432/freightdesk?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("INVOICE_TAX_RATE", "0.2")
	t.Setenv("PDF_TIMEOUT", "3s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.2", cfg.Invoice.TaxRate.String())
	assert.Equal(t, 3*time.Second, cfg.PDF.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "MissingSecret",
			env:  map[string]string{"AUTH_DISABLED": "false", "AUTH_JWT_SECRET": ""},
		},
		{
			name: "NegativeTaxRate",
			env:  map[string]string{"AUTH_DISABLED": "true", "INVOICE_TAX_RATE": "-0.1"},
		},
		{
			name: "ZeroDueDays",
			env:  map[string]string{"AUTH_DISABLED": "true", "INVOICE_DUE_DAYS": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
