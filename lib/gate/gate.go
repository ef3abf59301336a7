package gate

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/go-i2p/bootgate/lib/bundle"
	"github.com/go-i2p/bootgate/lib/config"
	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/go-i2p/bootgate/lib/keys"
	"github.com/go-i2p/bootgate/lib/modhash"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// Gatekeeper is what a loader needs from bootgate.
type Gatekeeper interface {
	// VerifyImage hashes image with SHA-1 and checks sig against the key at
	// keyIndex.
	VerifyImage(image, sig []byte, keyIndex int) error

	// VerifyDigest checks sig over a precomputed 20 byte SHA-1 digest.
	VerifyDigest(digest, sig []byte, keyIndex int) error

	// LoadModule admits blob only if its SHA-1 digest is in the module table.
	LoadModule(blob []byte) error

	// VerifyBundle reads a signed bundle and returns its content only when
	// the signature verifies.
	VerifyBundle(r io.Reader) (*bundle.Bundle, []byte, error)
}

// Gate is the standard Gatekeeper. Its tables can be swapped with Reload
// while other goroutines are verifying.
type Gate struct {
	mu      sync.RWMutex
	cfg     *config.GateConfig
	keys    *keys.Table
	modules *modhash.Gate
}

var _ Gatekeeper = (*Gate)(nil)

// New loads the tables named by cfg.
func New(cfg *config.GateConfig) (*Gate, error) {
	if cfg == nil {
		return nil, oops.Errorf("configuration cannot be nil")
	}
	g := &Gate{}
	if err := g.Reload(cfg); err != nil {
		return nil, err
	}
	return g, nil
}

// NewWithTables builds a Gate from tables the caller already holds. The
// limits go through the same validation as New.
func NewWithTables(keyTable *keys.Table, modules *modhash.Gate, maxBundleContent int64) (*Gate, error) {
	if keyTable == nil {
		return nil, oops.Errorf("key table cannot be nil")
	}
	if modules == nil {
		return nil, oops.Errorf("module gate cannot be nil")
	}
	cfg := &config.GateConfig{
		MaxModuleSize:    modules.MaxModuleSize(),
		MaxBundleContent: maxBundleContent,
	}
	if err := config.Validate(cfg.Defaults()); err != nil {
		return nil, err
	}
	return &Gate{cfg: cfg, keys: keyTable, modules: modules}, nil
}

// Reload rebuilds both tables from cfg. On error the current tables stay in
// place.
func (g *Gate) Reload(cfg *config.GateConfig) error {
	if cfg == nil {
		return oops.Errorf("configuration cannot be nil")
	}
	if err := config.Validate(cfg.Defaults()); err != nil {
		return err
	}

	log.WithFields(logger.Fields{
		"at":           "Gate.Reload",
		"phase":        "configuration",
		"key_table":    tableName(cfg.KeyTable),
		"module_table": tableName(cfg.ModuleTable),
	}).Info("loading trust tables")

	keyTable, err := LoadKeyTable(cfg.KeyTable, cfg.Profile)
	if err != nil {
		log.WithError(err).WithFields(logger.Fields{
			"at":     "Gate.Reload",
			"reason": "key table load failed",
		}).Error("failed to load key table")
		return oops.Wrapf(err, "failed to load key table")
	}
	moduleTable, err := LoadModuleTable(cfg.ModuleTable)
	if err != nil {
		log.WithError(err).WithFields(logger.Fields{
			"at":     "Gate.Reload",
			"reason": "module table load failed",
		}).Error("failed to load module table")
		return oops.Wrapf(err, "failed to load module table")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg = cfg
	g.keys = keyTable
	g.modules = modhash.NewGate(moduleTable, cfg.MaxModuleSize)

	log.WithFields(logger.Fields{
		"at":      "Gate.Reload",
		"phase":   "configuration",
		"keys":    keyTable.Len(),
		"modules": moduleTable.Len(),
		"profile": fmt.Sprintf("%d/%d", keyTable.Profile().L, keyTable.Profile().N),
	}).Info("trust tables loaded")
	return nil
}

func tableName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// Keys returns the current key table.
func (g *Gate) Keys() *keys.Table {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.keys
}

// Modules returns the current module gate.
func (g *Gate) Modules() *modhash.Gate {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.modules
}

func (g *Gate) VerifyImage(image, sig []byte, keyIndex int) error {
	err := g.Keys().VerifyData(image, sig, keyIndex)
	logDecision("VerifyImage", err, logger.Fields{"key_index": keyIndex, "image_size": len(image)})
	return err
}

func (g *Gate) VerifyDigest(digest, sig []byte, keyIndex int) error {
	err := g.Keys().Verify(digest, sig, keyIndex)
	logDecision("VerifyDigest", err, logger.Fields{"key_index": keyIndex})
	return err
}

func (g *Gate) LoadModule(blob []byte) error {
	err := g.Modules().Check(blob)
	logDecision("LoadModule", err, logger.Fields{"module_size": len(blob)})
	return err
}

func (g *Gate) VerifyBundle(r io.Reader) (*bundle.Bundle, []byte, error) {
	g.mu.RLock()
	keyTable, limit := g.keys, g.cfg.MaxBundleContent
	g.mu.RUnlock()

	b, err := bundle.Read(r, uint64(limit))
	if err != nil {
		logDecision("VerifyBundle", err, logger.Fields{"stage": "header"})
		return nil, nil, err
	}
	var content bytes.Buffer
	err = b.VerifyTo(keyTable, &content)
	logDecision("VerifyBundle", err, logger.Fields{
		"stage":        "signature",
		"key_index":    b.KeyIndex,
		"content_type": b.ContentType.String(),
		"version":      b.Version,
	})
	if err != nil {
		return b, nil, err
	}
	return b, content.Bytes(), nil
}

// logDecision records every accept and reject. Fatal errors log at error
// level so they stand out from ordinary rejections.
func logDecision(op string, err error, fields logger.Fields) {
	fields["at"] = "Gate." + op
	switch {
	case err == nil:
		fields["reason"] = "accepted"
		log.WithFields(fields).Info("gate accepted")
	case types.IsFatal(err):
		fields["reason"] = "internal_failure"
		log.WithError(err).WithFields(fields).Error("gate aborted")
	default:
		fields["reason"] = "rejected"
		log.WithError(err).WithFields(fields).Info("gate rejected")
	}
}
