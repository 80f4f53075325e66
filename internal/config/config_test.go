package config

import (
	"os"
	"testing"
)

func TestLoadAPIFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(APIConfig) bool
	}{
		{
			name:    "postgres needs database url",
			env:     map[string]string{"LABELSIM_STORE": "postgres"},
			wantErr: true,
		},
		{
			name: "port overrides addr",
			env:  map[string]string{"LABELSIM_STORE": "memory", "PORT": "9090"},
			check: func(c APIConfig) bool {
				return c.Addr == ":9090" && c.Store == StoreMemory
			},
		},
		{
			name: "sqlite default path",
			env:  map[string]string{"LABELSIM_STORE": "SQLite"},
			check: func(c APIConfig) bool {
				return c.Store == StoreSQLite && c.SQLitePath == "labelsim.db" && c.Addr == ":8080"
			},
		},
		{
			name: "postgres",
			env:  map[string]string{"DATABASE_URL": " postgres://localhost/labelsim "},
			check: func(c APIConfig) bool {
				return c.Store == StorePostgres && c.DatabaseURL == "postgres://localhost/labelsim"
			},
		},
		{
			name:    "unknown store",
			env:     map[string]string{"LABELSIM_STORE": "redis"},
			wantErr: true,
		},
		{
			name:    "discord token without channel",
			env:     map[string]string{"LABELSIM_STORE": "memory", "DISCORD_BOT_TOKEN": "abc"},
			wantErr: true,
		},
	}
	keys := []string{"LABELSIM_STORE", "PORT", "DATABASE_URL", "LABELSIM_API_ADDR", "LABELSIM_SQLITE_PATH", "DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID"}
	for _, tc := range tests {
		for _, k := range keys {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
		for k, v := range tc.env {
			t.Setenv(k, v)
		}
		cfg, err := LoadAPIFromEnv()
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !tc.check(cfg) {
			t.Fatalf("%s: unexpected config %+v", tc.name, cfg)
		}
	}
}

func TestLoadCLIFromEnv(t *testing.T) {
	t.Setenv("LBL_API_BASE_URL", "https://labels.example.com/")
	if got := LoadCLIFromEnv().APIBaseURL; got != "https://labels.example.com" {
		t.Fatalf("base url = %q", got)
	}
}
