// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads client settings from an optional YAML file and
// command-line flags. File keys are the flag names.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/visitant/internal/logging"
	"github.com/holomush/visitant/internal/timing"
)

// Error codes.
const (
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeLoadFailed    = "CONFIG_LOAD_FAILED"
)

// Keys shared by flags and the config file.
const (
	KeyFirstName    = "firstname"
	KeyLastName     = "lastname"
	KeyPassword     = "password"
	KeyURI          = "uri"
	KeyAutoLogin    = "auto-login"
	KeyUIPort       = "ui-port"
	KeyServerHost   = "server-host"
	KeyCorePort     = "core-port"
	KeyMode         = "mode"
	KeyTimeout      = "timeout"
	KeyRez          = "rez"
	KeyPollInterval = "poll-interval"
	KeyLogFormat    = "log-format"
	KeyLogLevel     = "log-level"
	KeyMetricsAddr  = "metrics-addr"

	// flagUser is a short alias for firstname.
	flagUser = "user"
)

// Config is the resolved client configuration.
type Config struct {
	FirstName    string        `koanf:"firstname"`
	LastName     string        `koanf:"lastname"`
	Password     string        `koanf:"password"`
	URI          string        `koanf:"uri"`
	AutoLogin    bool          `koanf:"auto-login"`
	UIPort       int           `koanf:"ui-port"`
	ServerHost   string        `koanf:"server-host"`
	CorePort     int           `koanf:"core-port"`
	Mode         string        `koanf:"mode"`
	Timeout      int           `koanf:"timeout"`
	Rez          bool          `koanf:"rez"`
	PollInterval time.Duration `koanf:"poll-interval"`
	LogFormat    string        `koanf:"log-format"`
	LogLevel     string        `koanf:"log-level"`
	MetricsAddr  string        `koanf:"metrics-addr"`

	// AutoLoginSet is true when auto-login was given explicitly rather
	// than left to the mode default.
	AutoLoginSet bool `koanf:"-"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		FirstName:    "Test",
		LastName:     "User",
		Password:     "password",
		URI:          "http://127.0.0.1:9000/",
		UIPort:       12000,
		ServerHost:   "127.0.0.1",
		CorePort:     12001,
		Mode:         timing.Standard.String(),
		PollInterval: 50 * time.Millisecond,
		LogFormat:    "json",
		LogLevel:     "info",
	}
}

// RegisterFlags defines every configuration flag on fs with its default.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(KeyFirstName, d.FirstName, "agent first name")
	fs.String(flagUser, "", "alias for --firstname")
	fs.String(KeyLastName, d.LastName, "agent last name")
	fs.String(KeyPassword, d.Password, "agent password")
	fs.String(KeyURI, d.URI, "login URI")
	fs.Bool(KeyAutoLogin, false, "log in at startup (default depends on --mode)")
	fs.Int(KeyUIPort, d.UIPort, "local UDP port to receive on")
	fs.String(KeyServerHost, d.ServerHost, "server host")
	fs.Int(KeyCorePort, d.CorePort, "server UDP port")
	fs.String(KeyMode, d.Mode, "run mode: standard, rejection, wallflower, ghost, chatter, interactive")
	fs.Int(KeyTimeout, 0, "maximum run time in seconds (0 disables)")
	fs.Bool(KeyRez, false, "rez an object after login")
	fs.Duration(KeyPollInterval, d.PollInterval, "how long each tick waits for an inbound event")
	fs.String(KeyLogFormat, d.LogFormat, "diagnostic log format (json or text)")
	fs.String(KeyLogLevel, d.LogLevel, "diagnostic log level (debug, info, warn, error)")
	fs.String(KeyMetricsAddr, "", "address for the metrics and health server (empty disables)")
}

// Load resolves configuration from path (skipped when empty) and the
// flags in fs. Flags the user set win over the file; file values win
// over flag defaults.
func Load(fs *pflag.FlagSet, path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code(CodeLoadFailed).With("path", path).Wrap(err)
		}
	}

	autoLoginSet := k.Exists(KeyAutoLogin) || changed(fs, KeyAutoLogin)

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return Config{}, oops.Code(CodeLoadFailed).Wrap(err)
	}

	if changed(fs, flagUser) {
		user, err := fs.GetString(flagUser)
		if err != nil {
			return Config{}, oops.Code(CodeLoadFailed).Wrap(err)
		}
		if err := k.Set(KeyFirstName, user); err != nil {
			return Config{}, oops.Code(CodeLoadFailed).Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code(CodeLoadFailed).Wrap(err)
	}
	cfg.AutoLoginSet = autoLoginSet
	return cfg, nil
}

func changed(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	invalid := func(key string, value any, msg string) error {
		return oops.Code(CodeInvalidConfig).
			With("key", key).
			With("value", value).
			Errorf("%s: %s", key, msg)
	}

	switch {
	case c.FirstName == "":
		return invalid(KeyFirstName, c.FirstName, "must not be empty")
	case c.LastName == "":
		return invalid(KeyLastName, c.LastName, "must not be empty")
	case c.UIPort < 0 || c.UIPort > 65535:
		return invalid(KeyUIPort, c.UIPort, "must be between 0 and 65535")
	case c.CorePort < 1 || c.CorePort > 65535:
		return invalid(KeyCorePort, c.CorePort, "must be between 1 and 65535")
	case c.ServerHost == "":
		return invalid(KeyServerHost, c.ServerHost, "must not be empty")
	case c.Timeout < 0:
		return invalid(KeyTimeout, c.Timeout, "must not be negative")
	case c.PollInterval <= 0:
		return invalid(KeyPollInterval, c.PollInterval.String(), "must be positive")
	case c.LogFormat != "json" && c.LogFormat != "text":
		return invalid(KeyLogFormat, c.LogFormat, "must be json or text")
	}

	// The underlying errors carry their own codes, so only their text is kept.
	if _, err := timing.ParseRunMode(c.Mode); err != nil {
		return invalid(KeyMode, c.Mode, err.Error())
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return invalid(KeyLogLevel, c.LogLevel, err.Error())
	}
	return nil
}

// RunMode returns the parsed mode. Call Validate first.
func (c Config) RunMode() timing.RunMode {
	mode, _ := timing.ParseRunMode(c.Mode)
	return mode
}

// TimeoutDuration converts the timeout to a duration.
func (c Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ResolveAutoLogin applies the mode default unless auto-login was set.
func (c Config) ResolveAutoLogin() bool {
	if c.AutoLoginSet {
		return c.AutoLogin
	}
	return c.RunMode().Policy().AutoLogin
}
