package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults"},
		{
			name:    "version",
			mutate:  func(c *Config) { c.Version = 3 },
			wantErr: "unsupported config version",
		},
		{
			name:    "relative api base",
			mutate:  func(c *Config) { c.GitHub.APIBase = "api.github.com" },
			wantErr: "github.api_base",
		},
		{
			name:    "empty branch",
			mutate:  func(c *Config) { c.GitHub.Branches = []string{"main", " "} },
			wantErr: "github.branches[1]",
		},
		{
			name:    "batch larger than cap",
			mutate:  func(c *Config) { c.Analysis.BatchSize = 200 },
			wantErr: "analysis.batch_size",
		},
		{
			name:    "dotted alias",
			mutate:  func(c *Config) { c.Resolver.AliasPrefix = "./" },
			wantErr: "resolver.alias_prefix",
		},
		{
			name:    "escaping alias target",
			mutate:  func(c *Config) { c.Resolver.AliasTarget = "../src/" },
			wantErr: "resolver.alias_target",
		},
		{
			name:    "bad exclude glob",
			mutate:  func(c *Config) { c.Local.Exclude = []string{"[unterminated"} },
			wantErr: "local.exclude[0]",
		},
		{
			name:    "server address",
			mutate:  func(c *Config) { c.Server.Address = "localhost" },
			wantErr: "server.address",
		},
		{
			name: "history path",
			mutate: func(c *Config) {
				c.History.Enabled = true
				c.History.Path = ""
			},
			wantErr: "history.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
