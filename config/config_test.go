package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ncforge/ncengine/capability"
	"github.com/ncforge/ncengine/nclog"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "engine.toml")
	assert.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name    string
		body    string
		want    func(*Config)
		wantErr bool
	}{
		{
			name: "empty file keeps defaults",
			body: "",
			want: func(*Config) {},
		},
		{
			name: "full override",
			body: `
capabilities = ["urn:ietf:params:netconf:base:1.1"]
verbosity = "debug"

[subsystems]
notifications = true
access-control = true

[session]
inactivity-timeout = "5m"
`,
			want: func(c *Config) {
				c.Capabilities = []string{capability.Base11}
				c.Verbosity = nclog.LevelDebug
				c.Subsystems.Notifications = true
				c.Subsystems.AccessControl = true
				c.InactivityTimeout = 5 * time.Minute
			},
		},
		{
			name: "partial override keeps remaining defaults",
			body: `verbosity = "verbose"`,
			want: func(c *Config) { c.Verbosity = nclog.LevelVerbose },
		},
		{
			name:    "unknown verbosity level",
			body:    `verbosity = "chatty"`,
			wantErr: true,
		},
		{
			name:    "bad timeout",
			body:    "[session]\ninactivity-timeout = \"soon\"",
			wantErr: true,
		},
		{
			name:    "negative timeout",
			body:    "[session]\ninactivity-timeout = \"-1m\"",
			wantErr: true,
		},
		{
			name:    "unknown key rejected",
			body:    `verbposity = "debug"`,
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			check := assert.New(t)
			cfg, err := Load(writeConfig(t, tc.body))
			if tc.wantErr {
				check.Error(err)
				return
			}
			check.NoError(err)
			want := Default()
			tc.want(&want)
			check.Equal(want, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	check := assert.New(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	check.Error(err)
}
