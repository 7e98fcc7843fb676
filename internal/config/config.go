// Package config loads and validates the tool's config.toml.
package config

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"go.uber.org/zap/zapcore"
)

// Config is the persisted user configuration, stored as config.toml inside
// the plugins directory.
type Config struct {
	Core CoreConfig `toml:"core"`
	Log  LogConfig  `toml:"log"`
}

// CoreConfig holds the game installation settings.
type CoreConfig struct {
	// InstallRoot is the game's installation directory; the binaries are
	// expected under <install_root>\bin.
	InstallRoot string `toml:"install_root"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{
		Core: CoreConfig{
			InstallRoot: `C:\Program Files (x86)\Steam\steamapps\common\Baldurs Gate 3`,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config at path, creating it with defaults when missing.
// Returns created=true when a new file was written.
func Load(path string) (cfg Config, created bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg = Default()
		out, merr := toml.Marshal(cfg)
		if merr != nil {
			return Config{}, false, errors.Wrap(merr, "marshal default config")
		}
		if werr := os.WriteFile(path, out, 0o644); werr != nil {
			return Config{}, false, errors.Wrap(werr, "write default config")
		}
		return cfg, true, nil
	}
	if err != nil {
		return Config{}, false, errors.Wrap(err, "read config")
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, false, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, false, err
	}
	return cfg, false, nil
}

// Validate checks the loaded values.
func (c Config) Validate() error {
	if c.Core.InstallRoot == "" {
		return errors.New("config: core.install_root must not be empty")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, "config: invalid log.level %q", c.Log.Level)
	}
	return nil
}

// LogLevel parses the configured level, falling back to info.
func (c Config) LogLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
