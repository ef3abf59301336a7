package modhash

import (
	"github.com/go-i2p/bootgate/lib/crypto/types"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// DefaultMaxModuleSize bounds the size of a module image.
const DefaultMaxModuleSize = 4 << 20

// Gate admits or rejects module images against a digest table.
type Gate struct {
	table   *Table
	maxSize int
	pool    enginePool
}

// NewGate creates a gate over table. A maxSize of zero or less selects
// DefaultMaxModuleSize.
func NewGate(table *Table, maxSize int) *Gate {
	if maxSize <= 0 {
		maxSize = DefaultMaxModuleSize
	}
	return &Gate{table: table, maxSize: maxSize}
}

// MaxModuleSize returns the largest image the gate will hash.
func (g *Gate) MaxModuleSize() int {
	return g.maxSize
}

// Table returns the digest table behind the gate.
func (g *Gate) Table() *Table {
	return g.table
}

// Check hashes blob with a pooled engine and looks the digest up. It returns
// nil when the module may be loaded and an error matching types.ErrRejected
// otherwise.
func (g *Gate) Check(blob []byte) error {
	if err := g.checkSize(blob); err != nil {
		return err
	}
	e := g.pool.get()
	defer g.pool.put(e)
	return g.lookup(e.Sum(blob), len(blob))
}

// CheckWith is Check using a caller-owned engine. The caller serializes use
// of e.
func (g *Gate) CheckWith(e *Engine, blob []byte) error {
	if err := g.checkSize(blob); err != nil {
		return err
	}
	return g.lookup(e.Sum(blob), len(blob))
}

// CheckDigest looks up a digest computed elsewhere.
func (g *Gate) CheckDigest(d Digest) error {
	return g.lookup(d, -1)
}

func (g *Gate) checkSize(blob []byte) error {
	if len(blob) > g.maxSize {
		log.WithFields(logger.Fields{
			"at":       "modhash.Gate.Check",
			"size":     len(blob),
			"max_size": g.maxSize,
		}).Debug("module image too large")
		return oops.Wrapf(types.ErrRejected, "module is %d bytes, limit is %d", len(blob), g.maxSize)
	}
	return nil
}

func (g *Gate) lookup(d Digest, size int) error {
	idx, ok := g.table.Lookup(d)
	fields := logger.Fields{
		"at":      "modhash.Gate.lookup",
		"digest":  d.String(),
		"size":    size,
		"entries": g.table.Len(),
		"index":   idx,
	}
	if !ok {
		log.WithFields(fields).Debug("module hash not in table")
		return oops.Wrapf(types.ErrRejected, "module hash %s not in table", d)
	}
	log.WithFields(fields).Debug("module hash accepted")
	return nil
}
