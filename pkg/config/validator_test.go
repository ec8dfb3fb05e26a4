package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 32 bytes em base64
const testKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func TestValidator_Validate(t *testing.T) {
	validator := NewValidator()

	valid := func() *Config {
		return &Config{
			Version: "1.0",
			Table:   TableConf{Name: "accounts", Region: "us-east-1"},
			Cursor:  CursorConf{EncryptKey: testKey, DecryptKey: testKey},
			Logging: LoggingConf{Enabled: true, Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "Valid Config", mutate: func(*Config) {}},
		{name: "Cursor disabled", mutate: func(c *Config) { c.Cursor = CursorConf{} }},
		{name: "Decrypt only", mutate: func(c *Config) { c.Cursor.EncryptKey = "" }},
		{name: "Missing Version", mutate: func(c *Config) { c.Version = "" }, wantErr: true},
		{name: "Missing Table Name", mutate: func(c *Config) { c.Table.Name = "" }, wantErr: true},
		{name: "Invalid Endpoint", mutate: func(c *Config) { c.Table.Endpoint = "not a url" }, wantErr: true},
		{name: "Valid Endpoint", mutate: func(c *Config) { c.Table.Endpoint = "http://localhost:8000" }},
		{name: "Invalid Log Level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: true},
		{name: "Datadog without Addr", mutate: func(c *Config) { c.Metrics.Datadog.Enabled = true }, wantErr: true},
		{name: "Invalid Cursor Key", mutate: func(c *Config) { c.Cursor.EncryptKey = "c2hvcnQ=" }, wantErr: true},
		{name: "Unresolved Cursor Key", mutate: func(c *Config) { c.Cursor.DecryptKey = "${env.KEY}" }, wantErr: true},
		{name: "Encrypt without Decrypt", mutate: func(c *Config) { c.Cursor.DecryptKey = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validator.Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
