// Package comparison ranks alternative materials against a baseline. It
// fans one pricing call out per candidate, tolerates per-candidate failures,
// and scores survivors on cost proximity, machinability, strength, and
// compatibility.
package comparison

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fabworks/quotecost/internal/catalog"
	"github.com/fabworks/quotecost/internal/costmodel"
	"github.com/fabworks/quotecost/internal/money"
)

// Pricer prices one material for a comparison request. Implementations must
// be safe for concurrent use; the service invokes one call per candidate in
// parallel.
type Pricer interface {
	PriceMaterial(ctx context.Context, m catalog.Material, req CompareRequest) (costmodel.PricingBreakdown, error)
}

// Service orchestrates material comparisons against one catalog snapshot.
type Service struct {
	snapshot *catalog.Snapshot
	pricer   Pricer
	logger   zerolog.Logger
}

// NewService creates a comparison service. The snapshot and pricer are
// required; the logger may be a no-op logger.
func NewService(snapshot *catalog.Snapshot, pricer Pricer, logger zerolog.Logger) (*Service, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("comparison: snapshot is required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("comparison: pricer is required")
	}
	return &Service{snapshot: snapshot, pricer: pricer, logger: logger}, nil
}

// Compare resolves the baseline, prices all candidates concurrently, and
// returns the ranked alternatives. A candidate whose pricing fails is
// logged and dropped without affecting its siblings; a baseline that cannot
// be resolved or priced fails the whole request.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	start := time.Now()
	traceID := uuid.New().String()

	if req.Quantity <= 0 {
		return nil, &costmodel.InvalidQuantityError{Quantity: req.Quantity}
	}

	baseline, err := s.snapshot.ResolveMaterial(req.BaselineMaterialID)
	if err != nil {
		return nil, err
	}

	basePricing, err := s.pricer.PriceMaterial(ctx, baseline, req)
	if err != nil {
		return nil, fmt.Errorf("pricing baseline material %q: %w", baseline.ID, err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	candidates := s.snapshot.CandidatesFor(baseline, req.Process, limit+candidateHeadroom)

	type outcome struct {
		pricing costmodel.PricingBreakdown
		err     error
	}
	outcomes := make([]outcome, len(candidates))

	var wg sync.WaitGroup
	for i, cand := range candidates {
		wg.Add(1)
		go func(i int, cand catalog.Material) {
			defer wg.Done()
			pricing, perr := s.pricer.PriceMaterial(ctx, cand, req)
			if perr != nil {
				outcomes[i] = outcome{err: &CandidatePricingError{MaterialID: cand.ID, Err: perr}}
				return
			}
			outcomes[i] = outcome{pricing: pricing}
		}(i, cand)
	}
	wg.Wait()

	dropped := 0
	items := make([]MaterialComparisonItem, 0, len(candidates))
	for i, cand := range candidates {
		if outcomes[i].err != nil {
			dropped++
			s.logger.Warn().
				Str("trace_id", traceID).
				Str("material_id", cand.ID).
				Err(outcomes[i].err).
				Msg("candidate pricing failed, dropping candidate")
			continue
		}
		items = append(items, s.buildItem(cand, outcomes[i].pricing, baseline, basePricing, req))
	}

	// Stable sort: equal scores keep catalog query order.
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if len(items) > limit {
		items = items[:limit]
	}
	if len(items) > 0 {
		items[0].IsBestValue = true
	}

	meta := s.buildMetadata(items, traceID)
	meta.CandidatesConsidered = len(candidates)
	meta.CandidatesDropped = dropped

	current := s.buildItem(baseline, basePricing, baseline, basePricing, req)

	s.logger.Info().
		Str("trace_id", traceID).
		Str("baseline_material", baseline.ID).
		Str("process", req.Process).
		Int("quantity", req.Quantity).
		Int("candidates_considered", len(candidates)).
		Int("candidates_dropped", dropped).
		Int("alternatives_returned", len(items)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("material comparison completed")

	return &CompareResult{
		Current:      current,
		Alternatives: items,
		Metadata:     meta,
	}, nil
}

// buildItem assembles one comparison row: deltas against the baseline,
// compatibility flags and warnings, and the composite score.
func (s *Service) buildItem(
	m catalog.Material,
	pricing costmodel.PricingBreakdown,
	baseline catalog.Material,
	basePricing costmodel.PricingBreakdown,
	req CompareRequest,
) MaterialComparisonItem {
	var costDeltaPct float64
	costDelta := money.Round2(pricing.TotalPrice - basePricing.TotalPrice)
	if basePricing.TotalPrice > 0 {
		costDeltaPct = money.Round2((pricing.TotalPrice - basePricing.TotalPrice) / basePricing.TotalPrice * 100)
	}

	// Weight delta at the common reference volume reduces to a density
	// ratio.
	var weightDeltaPct float64
	if baseline.DensityGPerCC > 0 {
		weightDeltaPct = money.Round2((m.DensityGPerCC - baseline.DensityGPerCC) / baseline.DensityGPerCC * 100)
	}

	flags := CompatibilityFlags{
		ProcessMatch:    m.SupportsProcess(req.Process),
		RegionAvailable: m.AvailableIn(req.Region),
		FinishesMatch:   finishesMatch(m, req.Finishes),
	}
	if m.MachinabilityRating < lowMachinabilityThreshold {
		flags.Warnings = append(flags.Warnings, WarnLowMachinability)
	}
	if abs(costDeltaPct) > highCostDeltaThreshold {
		flags.Warnings = append(flags.Warnings, WarnHighCostDelta)
	}
	if !flags.ProcessMatch {
		flags.Warnings = append(flags.Warnings, WarnProcessMismatch)
	}

	return MaterialComparisonItem{
		MaterialID:          m.ID,
		MaterialName:        m.Name,
		Category:            m.Category,
		DensityGPerCC:       m.DensityGPerCC,
		MachinabilityRating: m.MachinabilityRating,
		TensileStrengthMPa:  m.TensileStrengthMPa,
		Pricing:             pricing,
		CostDeltaPercent:    costDeltaPct,
		CostDeltaAmount:     costDelta,
		WeightDeltaPercent:  weightDeltaPct,
		Compatibility:       flags,
		Score:               compositeScore(costDeltaPct, m.MachinabilityRating, m.TensileStrengthMPa, flags),
	}
}

// buildMetadata reports the single-dimension winners among the surviving
// alternatives.
func (s *Service) buildMetadata(items []MaterialComparisonItem, traceID string) CompareMetadata {
	meta := CompareMetadata{
		CatalogVersion: s.snapshot.Version(),
		TraceID:        traceID,
	}
	var cheapest, strongest, mostMachinable float64
	for _, it := range items {
		if meta.CheapestMaterialID == "" || it.Pricing.TotalPrice < cheapest {
			meta.CheapestMaterialID = it.MaterialID
			cheapest = it.Pricing.TotalPrice
		}
		if meta.StrongestMaterialID == "" || it.TensileStrengthMPa > strongest {
			meta.StrongestMaterialID = it.MaterialID
			strongest = it.TensileStrengthMPa
		}
		if meta.MostMachinableMaterialID == "" || it.MachinabilityRating > mostMachinable {
			meta.MostMachinableMaterialID = it.MaterialID
			mostMachinable = it.MachinabilityRating
		}
	}
	return meta
}

func finishesMatch(m catalog.Material, finishes []string) bool {
	for _, code := range finishes {
		if !m.SupportsFinish(code) {
			return false
		}
	}
	return true
}
