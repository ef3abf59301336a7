package config

import (
	"github.com/go-i2p/bootgate/lib/crypto/dsa"
	"github.com/go-i2p/bootgate/lib/modhash"
	"github.com/go-i2p/logger"
)

// ConfigDefaults contains all default configuration values for bootgate.
type ConfigDefaults struct {
	Keys    KeysDefaults
	ModHash ModHashDefaults
	Bundle  BundleDefaults
}

// KeysDefaults configures the signing key table.
type KeysDefaults struct {
	// Table is a key table file (.pem, .words, .yaml). Empty selects the
	// keys compiled into the binary.
	Table string

	// Profile pins the DSA parameter sizes every key must have.
	// Default: L=1024, N=160
	Profile dsa.Profile
}

// ModHashDefaults configures the module integrity gate.
type ModHashDefaults struct {
	// Table is a hash table file (.sha1/.hex/.txt or .bin). Empty selects
	// the table compiled into the binary.
	Table string

	// MaxModuleSize is the largest module accepted, in bytes.
	// Default: 4 MiB
	MaxModuleSize int
}

// BundleDefaults configures signed image bundles.
type BundleDefaults struct {
	// MaxContentSize is the largest bundle payload read, in bytes.
	// Default: 64 MiB
	MaxContentSize int64
}

// DefaultMaxBundleContent bounds bundle payloads unless configured.
const DefaultMaxBundleContent = 64 << 20

// Defaults returns a ConfigDefaults instance with all default values set.
func Defaults() ConfigDefaults {
	return ConfigDefaults{
		Keys: KeysDefaults{
			Profile: dsa.Classic,
		},
		ModHash: ModHashDefaults{
			MaxModuleSize: modhash.DefaultMaxModuleSize,
		},
		Bundle: BundleDefaults{
			MaxContentSize: DefaultMaxBundleContent,
		},
	}
}

// Validate checks if the provided configuration values are reasonable.
// Returns an error describing the first invalid value found.
func Validate(cfg ConfigDefaults) error {
	log.WithFields(logger.Fields{
		"at":     "Validate",
		"reason": "verification_requested",
	}).Debug("validating configuration")
	validators := []func() error{
		func() error { return validateKeys(cfg.Keys) },
		func() error { return validateModHash(cfg.ModHash) },
		func() error { return validateBundle(cfg.Bundle) },
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			log.WithError(err).Error("Configuration validation failed")
			return err
		}
	}
	return nil
}

func validateKeys(k KeysDefaults) error {
	if k.Profile.IsZero() {
		return nil
	}
	if k.Profile.L < 512 || k.Profile.N < 160 {
		log.WithFields(logger.Fields{"l": k.Profile.L, "n": k.Profile.N}).Error("Invalid key profile")
		return newValidationError("Keys.Profile must be at least L=512, N=160")
	}
	if k.Profile.N >= k.Profile.L {
		return newValidationError("Keys.Profile.N must be smaller than Keys.Profile.L")
	}
	if k.Profile.L%64 != 0 || k.Profile.N%8 != 0 {
		return newValidationError("Keys.Profile.L must be a multiple of 64 and N a multiple of 8")
	}
	return nil
}

func validateModHash(m ModHashDefaults) error {
	if m.MaxModuleSize < 1 {
		log.WithField("max_module_size", m.MaxModuleSize).Error("Invalid module hash configuration")
		return newValidationError("ModHash.MaxModuleSize must be at least 1")
	}
	return nil
}

func validateBundle(b BundleDefaults) error {
	if b.MaxContentSize < 1 {
		log.WithField("max_content_size", b.MaxContentSize).Error("Invalid bundle configuration")
		return newValidationError("Bundle.MaxContentSize must be at least 1")
	}
	return nil
}

// validationError is returned when configuration validation fails
type validationError struct {
	message string
}

func newValidationError(message string) error {
	return &validationError{message: message}
}

func (e *validationError) Error() string {
	return "configuration validation failed: " + e.message
}
