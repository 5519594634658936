// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ChainSafe/alpenglow/internal/log"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/naoina/toml"
)

// DefaultValidators is the validator count used when the
// configuration file does not set one.
const DefaultValidators = 4

var logger = log.NewFromGlobal(log.AddContext("pkg", "config"))

// Load loads a TOML configuration file. Keys absent from the file keep
// the values of model.DefaultConfig for the validator count of the file.
func Load(path string) (*Config, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var file Config
	if err = toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	count := file.Validators.Count
	if count == 0 {
		count = DefaultValidators
	}

	cfg := FromModel(model.DefaultConfig(count))
	cfg.Validators.Count = count
	if err = toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	logger.Debugf("loaded configuration for %d validators from %s", count, path)
	return cfg, nil
}

func readFile(path string) (data []byte, err error) {
	fp, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("finding absolute path of %s: %w", path, err)
	}

	f, err := os.Open(filepath.Clean(fp))
	if err != nil {
		return nil, err
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil {
			logger.Warnf("cannot close %s: %s", fp, closeErr)
		}
	}()

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fp, err)
	}
	return data, nil
}

// Export writes the configuration as a TOML file.
func Export(cfg *Config, path string) error {
	raw, err := toml.Marshal(*cfg)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}

	const perm = 0600
	if err = os.WriteFile(filepath.Clean(path), raw, perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logger.Infof("configuration exported to %s", path)
	return nil
}
