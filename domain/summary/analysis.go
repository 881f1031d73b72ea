package summary

import (
	"fmt"

	"wavestats/domain/core"
)

// GroupResult is the upstream result bundle for one top-level label (a
// protocol or a treatment group). Its trees are keyed below that label.
type GroupResult struct {
	Label            string
	Involvement      InvolvementTree
	Origin           OriginTree
	InvolvementTests []Record
	OriginTests      []Record
	ComparisonTests  []Record
}

// GroupedResults keeps group bundles in upstream order.
type GroupedResults []GroupResult

// InvolvementTree nests every group's involvement tree under its label.
func (g GroupedResults) InvolvementTree() InvolvementTree {
	tree := make(InvolvementTree, 0, len(g))
	for _, r := range g {
		tree = append(tree, Lift(r.Label, r.Involvement))
	}
	return tree
}

// OriginTree nests every group's origin tree under its label.
func (g GroupedResults) OriginTree() OriginTree {
	tree := make(OriginTree, 0, len(g))
	for _, r := range g {
		tree = append(tree, Lift(r.Label, r.Origin))
	}
	return tree
}

// Comparison is the upstream result of a cross-group comparison whose trees
// already carry the group level.
type Comparison struct {
	Involvement InvolvementTree
	Origin      OriginTree
	Tests       []Record
}

// StageRegions holds raw per-region counts for one stage of the meta analysis.
type StageRegions struct {
	Stage  string
	Counts []RegionCount
}

// MetaResults pools every protocol into a single Stage-keyed summary. Origin
// totals are not carried separately: each stage's denominator is the Count of
// its involvement summary.
type MetaResults struct {
	Involvement  InvolvementTree
	RegionCounts []StageRegions
	Tests        []Record
}

// OriginTree derives Stage-keyed origin stats using involvement counts as
// totals. A stage with region counts but no involvement summary is malformed.
func (m MetaResults) OriginTree() (OriginTree, error) {
	tree := make(OriginTree, 0, len(m.RegionCounts))
	for _, sr := range m.RegionCounts {
		inv, ok := m.Involvement.Find(sr.Stage)
		if !ok {
			return nil, fmt.Errorf("%w: no involvement summary for stage %q", core.ErrMissingStat, sr.Stage)
		}
		tree = append(tree, Leaf(sr.Stage, OriginStat{
			RegionCounts: sr.Counts,
			TotalWaves:   inv.Count,
		}))
	}
	return tree, nil
}

// Analysis gathers every view's upstream result. Nil or empty members are
// views with nothing to export.
type Analysis struct {
	Protocols     GroupedResults
	Treatment     *Comparison
	Overall       *Comparison
	ProtoSpecific GroupedResults
	WithinGroup   GroupedResults
	Meta          *MetaResults
}
