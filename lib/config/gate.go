package config

import (
	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/spf13/viper"
)

// GateConfig is what lib/gate needs to build its tables.
type GateConfig struct {
	// KeyTable is a key table path; empty means the embedded keys.
	KeyTable string
	// Profile pins key sizes; the zero profile takes sizes from the first key.
	Profile dsa.Profile
	// ModuleTable is a hash table path; empty means the embedded table.
	ModuleTable string
	// MaxModuleSize bounds LoadModule input.
	MaxModuleSize int
	// MaxBundleContent bounds VerifyBundle payloads.
	MaxBundleContent int64
}

// DefaultGateConfig returns a GateConfig using only embedded tables.
func DefaultGateConfig() *GateConfig {
	d := Defaults()
	return &GateConfig{
		KeyTable:         d.Keys.Table,
		Profile:          d.Keys.Profile,
		ModuleTable:      d.ModHash.Table,
		MaxModuleSize:    d.ModHash.MaxModuleSize,
		MaxBundleContent: d.Bundle.MaxContentSize,
	}
}

// NewGateConfigFromViper reads the gate settings from current viper state.
// Table paths are taken as config file values: relative ones resolve inside
// the bootgate directory and may not escape it.
func NewGateConfigFromViper() (*GateConfig, error) {
	cfg := &GateConfig{
		Profile: dsa.Profile{
			L: viper.GetInt(KeyKeysProfileL),
			N: viper.GetInt(KeyKeysProfileN),
		},
		MaxModuleSize:    viper.GetInt(KeyModHashMaxModuleSize),
		MaxBundleContent: viper.GetInt64(KeyBundleMaxContentSize),
	}
	var err error
	if cfg.KeyTable, err = ResolveTablePath(viper.GetString(KeyKeysTable), FromConfig); err != nil {
		return nil, err
	}
	if cfg.ModuleTable, err = ResolveTablePath(viper.GetString(KeyModHashTable), FromConfig); err != nil {
		return nil, err
	}
	if err := Validate(cfg.Defaults()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults converts back into the ConfigDefaults shape for validation.
func (c *GateConfig) Defaults() ConfigDefaults {
	return ConfigDefaults{
		Keys:    KeysDefaults{Table: c.KeyTable, Profile: c.Profile},
		ModHash: ModHashDefaults{Table: c.ModuleTable, MaxModuleSize: c.MaxModuleSize},
		Bundle:  BundleDefaults{MaxContentSize: c.MaxBundleContent},
	}
}

// OverrideTables replaces the table paths with non-empty values given on
// the command line, resolved against the working directory.
func (c *GateConfig) OverrideTables(keyTable, moduleTable string) error {
	if keyTable != "" {
		p, err := ResolveTablePath(keyTable, FromCommandLine)
		if err != nil {
			return err
		}
		c.KeyTable = p
	}
	if moduleTable != "" {
		p, err := ResolveTablePath(moduleTable, FromCommandLine)
		if err != nil {
			return err
		}
		c.ModuleTable = p
	}
	return nil
}
