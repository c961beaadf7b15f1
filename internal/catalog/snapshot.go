// Package catalog provides an immutable, content-hashed snapshot of the
// material, finish, and cost-factor records pricing computations read from.
// Callers construct a snapshot once and inject it; there is no module-level
// mutable state, so snapshots can be hot-swapped without races and tests get
// fully deterministic lookups.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// MaterialNotFoundError reports a material lookup that matched nothing in
// the snapshot.
type MaterialNotFoundError struct {
	Query string
}

func (e *MaterialNotFoundError) Error() string {
	return fmt.Sprintf("material %q not found in catalog", e.Query)
}

// FactorsNotFoundError reports a missing cost-factor record for a
// process+machine pairing.
type FactorsNotFoundError struct {
	Process   string
	MachineID string
}

func (e *FactorsNotFoundError) Error() string {
	return fmt.Sprintf("cost factors not found for process %q machine %q", e.Process, e.MachineID)
}

// Snapshot is an immutable point-in-time view of the catalog. All lookup
// methods are safe for unbounded concurrent use.
type Snapshot struct {
	materials []Material
	finishes  map[string]Finish
	factors   map[string]CostFactors

	byID   map[string]int // material ID -> index into materials
	byName map[string]int // lowercased material name -> index

	hash string
}

// NewSnapshot builds a snapshot from catalog records. Input slices are
// copied; the caller may reuse them afterwards. Materials are ordered by ID
// so every derived iteration (candidate queries, content hash) is stable
// regardless of input order.
func NewSnapshot(materials []Material, finishes []Finish, factors []CostFactors) (*Snapshot, error) {
	s := &Snapshot{
		materials: make([]Material, len(materials)),
		finishes:  make(map[string]Finish, len(finishes)),
		factors:   make(map[string]CostFactors, len(factors)),
		byID:      make(map[string]int, len(materials)),
		byName:    make(map[string]int, len(materials)),
	}

	copy(s.materials, materials)
	sort.Slice(s.materials, func(i, j int) bool { return s.materials[i].ID < s.materials[j].ID })

	for i, m := range s.materials {
		if m.ID == "" {
			return nil, fmt.Errorf("material at index %d has empty id", i)
		}
		if _, dup := s.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate material id %q", m.ID)
		}
		s.byID[m.ID] = i
		if m.Name != "" {
			s.byName[strings.ToLower(m.Name)] = i
		}
	}

	for _, fin := range finishes {
		if fin.Code == "" {
			return nil, fmt.Errorf("finish %q has empty code", fin.Name)
		}
		if _, dup := s.finishes[fin.Code]; dup {
			return nil, fmt.Errorf("duplicate finish code %q", fin.Code)
		}
		s.finishes[fin.Code] = fin
	}

	for _, cf := range factors {
		key := factorKey(cf.Process, cf.MachineID)
		if _, dup := s.factors[key]; dup {
			return nil, fmt.Errorf("duplicate cost factors for %s", key)
		}
		s.factors[key] = cf
	}

	hash, err := contentHash(s.materials, finishes, factors)
	if err != nil {
		return nil, fmt.Errorf("hashing catalog snapshot: %w", err)
	}
	s.hash = hash

	return s, nil
}

// Version returns the snapshot's content hash. Two snapshots built from the
// same records always report the same version.
func (s *Snapshot) Version() string {
	return s.hash
}

// MaterialByID returns the material with the exact ID.
func (s *Snapshot) MaterialByID(id string) (Material, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Material{}, false
	}
	return s.materials[i], true
}

// ResolveMaterial finds a material by ID, exact name (case-insensitive), or
// partial name match, in that order of preference. Partial matches scan in
// ID order so a given query always resolves to the same record.
func (s *Snapshot) ResolveMaterial(query string) (Material, error) {
	if m, ok := s.MaterialByID(query); ok {
		return m, nil
	}
	lowered := strings.ToLower(query)
	if i, ok := s.byName[lowered]; ok {
		return s.materials[i], nil
	}
	if lowered != "" {
		for _, m := range s.materials {
			if strings.Contains(strings.ToLower(m.Name), lowered) {
				return m, nil
			}
		}
	}
	return Material{}, &MaterialNotFoundError{Query: query}
}

// CandidatesFor returns up to limit alternative materials for the baseline:
// same category or supporting the requested process, baseline excluded.
// Results are in ID order.
func (s *Snapshot) CandidatesFor(baseline Material, process string, limit int) []Material {
	if limit <= 0 {
		return nil
	}
	out := make([]Material, 0, limit)
	for _, m := range s.materials {
		if m.ID == baseline.ID {
			continue
		}
		if m.Category != baseline.Category && !m.SupportsProcess(process) {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out
}

// FinishByCode returns the finish record for the code.
func (s *Snapshot) FinishByCode(code string) (Finish, bool) {
	f, ok := s.finishes[code]
	return f, ok
}

// FactorsFor returns the cost-factor record for a process+machine pairing.
func (s *Snapshot) FactorsFor(process, machineID string) (CostFactors, error) {
	cf, ok := s.factors[factorKey(process, machineID)]
	if !ok {
		return CostFactors{}, &FactorsNotFoundError{Process: process, MachineID: machineID}
	}
	return cf, nil
}

// MaterialCount returns the number of materials in the snapshot.
func (s *Snapshot) MaterialCount() int {
	return len(s.materials)
}

func factorKey(process, machineID string) string {
	return process + "/" + machineID
}

// contentHash computes a SHA-256 over the canonical JSON encoding of all
// records, sorted by identity, so the hash depends only on content.
func contentHash(materials []Material, finishes []Finish, factors []CostFactors) (string, error) {
	fins := make([]Finish, len(finishes))
	copy(fins, finishes)
	sort.Slice(fins, func(i, j int) bool { return fins[i].Code < fins[j].Code })

	cfs := make([]CostFactors, len(factors))
	copy(cfs, factors)
	sort.Slice(cfs, func(i, j int) bool {
		return factorKey(cfs[i].Process, cfs[i].MachineID) < factorKey(cfs[j].Process, cfs[j].MachineID)
	})

	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, part := range []any{materials, fins, cfs} {
		if err := enc.Encode(part); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
