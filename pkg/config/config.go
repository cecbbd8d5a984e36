// Package config loads the builder's own configuration (not the descriptor):
// compression default, output directory, artifact extension. Layering, low
// to high: embedded defaults, a setupforge.toml next to the descriptor,
// SETUPFORGE_* environment variables.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/yoelcortes/setupforge/pkg/errors"
	"github.com/yoelcortes/setupforge/pkg/logging"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// ConfigFileName is looked up next to the descriptor
const ConfigFileName = "setupforge.toml"

// EnvPrefix namespaces environment overrides. Sections are separated with
// a double underscore, e.g. SETUPFORGE_BUILD__COMPRESSION=max
const EnvPrefix = "SETUPFORGE_"

// Config is the builder configuration threaded through a build invocation
type Config struct {
	Build BuildConfig `koanf:"build" toml:"build"`
}

// BuildConfig holds the user-tunable build settings
type BuildConfig struct {
	Compression string `koanf:"compression" toml:"compression"`
	OutputDir   string `koanf:"output_dir" toml:"output_dir"`
	Extension   string `koanf:"extension" toml:"extension"`
}

// Load builds the layered configuration. descriptorDir is where an optional
// setupforge.toml is searched for; pass "" to skip the file layer.
func Load(descriptorDir string) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "loading embedded defaults")
	}

	if descriptorDir != "" {
		path := filepath.Join(descriptorDir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrManifestParse, "loading %q", path)
			}
			logger.Debug().Str("path", path).Msg("Loaded config file")
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "loading environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "unmarshaling configuration")
	}
	return &cfg, nil
}

// rawBytesProvider implements a koanf provider over in-memory bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}
