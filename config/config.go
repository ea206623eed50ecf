// Package config loads engine configuration from a TOML file.
//
// Every value is optional: Load starts from Default and only
// overrides what the file actually defines, so a partial file leaves
// the remaining defaults intact.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/ncforge/ncengine/capability"
	"github.com/ncforge/ncengine/lifecycle"
	"github.com/ncforge/ncengine/nclog"
)

// Config is the engine configuration
type Config struct {
	// Capabilities are the local capability URIs declared in <hello>
	Capabilities []string
	// Verbosity is the logging verbosity level
	Verbosity nclog.Level
	// Subsystems selects the optional engine subsystems
	Subsystems lifecycle.Flags
	// InactivityTimeout terminates sessions idle for longer; zero
	// disables the timeout
	InactivityTimeout time.Duration
}

// Default returns the configuration used in the absence of a file
func Default() Config {
	return Config{
		Capabilities: []string{
			capability.Base10,
			capability.WritableRunning,
		},
		Verbosity: nclog.LevelError,
	}
}

type fileConfig struct {
	Capabilities []string `toml:"capabilities"`
	Verbosity    string   `toml:"verbosity"`
	Subsystems   struct {
		Notifications bool `toml:"notifications"`
		AccessControl bool `toml:"access-control"`
	} `toml:"subsystems"`
	Session struct {
		InactivityTimeout string `toml:"inactivity-timeout"`
	} `toml:"session"`
}

// Load reads the TOML file at path, overlaying it on Default
func Load(path string) (Config, error) {
	cfg := Default()

	var f fileConfig
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return cfg, errors.Wrapf(err, "decoding %s", path)
	}
	if keys := meta.Undecoded(); len(keys) > 0 {
		return cfg, errors.Errorf("unknown configuration key %s", keys[0])
	}

	if meta.IsDefined("capabilities") {
		cfg.Capabilities = f.Capabilities
	}
	if meta.IsDefined("verbosity") {
		level, ok := nclog.ParseLevel(f.Verbosity)
		if !ok {
			return cfg, errors.Errorf("unknown verbosity level %q", f.Verbosity)
		}
		cfg.Verbosity = level
	}
	if meta.IsDefined("subsystems", "notifications") {
		cfg.Subsystems.Notifications = f.Subsystems.Notifications
	}
	if meta.IsDefined("subsystems", "access-control") {
		cfg.Subsystems.AccessControl = f.Subsystems.AccessControl
	}
	if meta.IsDefined("session", "inactivity-timeout") {
		d, perr := time.ParseDuration(f.Session.InactivityTimeout)
		if perr != nil || d < 0 {
			return cfg, errors.Errorf("invalid inactivity-timeout %q", f.Session.InactivityTimeout)
		}
		cfg.InactivityTimeout = d
	}
	return cfg, nil
}
