package config

import (
	"os"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/yoelcortes/setupforge/pkg/errors"
)

// WriteTemplate writes a setupforge.toml seeded with the built-in defaults
// so users have a documented starting point to edit
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf(errors.ErrIOWrite, "%q already exists, not overwriting", path)
	}

	cfg, err := Load("")
	if err != nil {
		return err
	}

	data, err := gotoml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "marshaling config template")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIOWrite, "writing %q", path)
	}
	return nil
}
