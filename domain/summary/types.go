package summary

import (
	"wavestats/domain/core"
)

// Column names shared by every flattened table.
const (
	ColProtocol       = "Protocol"
	ColTreatmentGroup = "Treatment_Group"
	ColStage          = "Stage"
	ColRegion         = "Region"

	ColMeanInvolvement   = "Mean_Involvement"
	ColMedianInvolvement = "Median_Involvement"
	ColStdInvolvement    = "Std_Involvement"
	ColCount             = "Count"
	ColTotalWaves        = "Total_Waves"
	ColPercentage        = "Percentage"
)

// GroupKey is the ordered tuple of grouping labels identifying one leaf
// summary, e.g. (Protocol, Stage) or (Protocol, Treatment_Group, Stage).
type GroupKey []string

func (k GroupKey) String() string { return core.KeyPath(k) }

// InvolvementStat is the precomputed involvement summary for one group.
// Std may be NaN when Count < 2.
type InvolvementStat struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Count  int     `json:"count"`
}

// Check rejects summaries no upstream stage could have produced.
func (s InvolvementStat) Check(key GroupKey) error {
	if s.Count < 0 {
		return core.NewNegativeCountError(key, "count", s.Count)
	}
	return nil
}

// RegionCount is the number of waves attributed to one origin region.
type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// OriginStat is the precomputed origin summary for one group. TotalWaves is an
// independent denominator: it is not required to equal the sum of
// RegionCounts, which may undercount when some waves have no region.
type OriginStat struct {
	RegionCounts []RegionCount `json:"region_counts"`
	TotalWaves   int           `json:"total_waves"`
}

// Check rejects negative counts. The relation between TotalWaves and the
// region sum is deliberately left unchecked.
func (s OriginStat) Check(key GroupKey) error {
	if s.TotalWaves < 0 {
		return core.NewNegativeCountError(key, "total_waves", s.TotalWaves)
	}
	for _, rc := range s.RegionCounts {
		if rc.Count < 0 {
			return core.NewNegativeCountError(append(key.clone(), rc.Region), "count", rc.Count)
		}
	}
	return nil
}

// RegionSum totals the per-region counts.
func (s OriginStat) RegionSum() int {
	total := 0
	for _, rc := range s.RegionCounts {
		total += rc.Count
	}
	return total
}

func (k GroupKey) clone() GroupKey {
	out := make(GroupKey, len(k))
	copy(out, k)
	return out
}
