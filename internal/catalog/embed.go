package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
)

// rawDefaultCatalog is the catalog document compiled into the binary. It
// covers common machining stock, finishes, and per-machine cost factors so
// the library is usable without any external catalog feed.
//
//go:embed default_catalog.json
var rawDefaultCatalog []byte

// catalogDocument is the on-disk shape of a catalog feed.
type catalogDocument struct {
	Version     string        `json:"version"`
	Materials   []Material    `json:"materials"`
	Finishes    []Finish      `json:"finishes"`
	CostFactors []CostFactors `json:"cost_factors"`
}

var (
	defaultOnce sync.Once
	defaultSnap *Snapshot
	defaultErr  error
)

// DefaultSnapshot returns the snapshot built from the embedded catalog.
// Parsing happens exactly once; every caller shares the same snapshot.
func DefaultSnapshot() (*Snapshot, error) {
	defaultOnce.Do(func() {
		defaultSnap, defaultErr = ParseSnapshot(rawDefaultCatalog)
	})
	if defaultErr != nil {
		return nil, fmt.Errorf("loading embedded catalog: %w", defaultErr)
	}
	return defaultSnap, nil
}

// ParseSnapshot builds a snapshot from a JSON catalog document. Feeds from
// catalog administration use the same document shape as the embedded default.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog document: %w", err)
	}
	if len(doc.Materials) == 0 {
		return nil, fmt.Errorf("catalog document has no materials")
	}
	return NewSnapshot(doc.Materials, doc.Finishes, doc.CostFactors)
}
