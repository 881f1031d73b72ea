// Package testkit builds realistic summaries from raw wave samples for tests
// and local runs.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"wavestats/domain/summary"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Wave is one synthetic observation: its involvement measure and the region it
// was attributed to. An empty Region means the wave was not classified.
type Wave struct {
	Involvement float64
	Region      string
}

// Summarize computes the involvement summary of waves. Std is the sample
// standard deviation and is NaN for fewer than two waves; mean and median are
// NaN for none.
func Summarize(waves []Wave) summary.InvolvementStat {
	s := summary.InvolvementStat{
		Mean:   math.NaN(),
		Median: math.NaN(),
		Std:    math.NaN(),
		Count:  len(waves),
	}
	if len(waves) == 0 {
		return s
	}

	data := make(stats.Float64Data, len(waves))
	for i, w := range waves {
		data[i] = w.Involvement
	}
	s.Mean, _ = data.Mean()
	s.Median, _ = data.Median()
	if len(waves) > 1 {
		s.Std = stat.StdDev(data, nil)
	}
	return s
}

// Origins counts waves per region in first-seen order. Unclassified waves
// count towards TotalWaves only.
func Origins(waves []Wave) summary.OriginStat {
	index := make(map[string]int)
	var counts []summary.RegionCount
	for _, w := range waves {
		if w.Region == "" {
			continue
		}
		i, ok := index[w.Region]
		if !ok {
			i = len(counts)
			index[w.Region] = i
			counts = append(counts, summary.RegionCount{Region: w.Region})
		}
		counts[i].Count++
	}
	return summary.OriginStat{RegionCounts: counts, TotalWaves: len(waves)}
}

// Kit generates deterministic wave samples.
type Kit struct {
	rng     *rand.Rand
	Regions []string
	Stages  []string
}

// New creates a kit seeded for reproducible output.
func New(seed int64) *Kit {
	return &Kit{
		rng:     rand.New(rand.NewSource(seed)),
		Regions: []string{"Frontal", "Parietal", "Temporal", "Occipital"},
		Stages:  []string{"pre", "early", "late", "post"},
	}
}

// Waves draws n waves; roughly one in ten is left unclassified.
func (k *Kit) Waves(n int) []Wave {
	waves := make([]Wave, n)
	for i := range waves {
		waves[i].Involvement = math.Abs(k.rng.NormFloat64()*0.15 + 0.4)
		if k.rng.Intn(10) > 0 {
			waves[i].Region = k.Regions[k.rng.Intn(len(k.Regions))]
		}
	}
	return waves
}

// StageTrees summarizes n waves per stage into Stage-keyed trees.
func (k *Kit) StageTrees(n int) (summary.InvolvementTree, summary.OriginTree) {
	var inv summary.InvolvementTree
	var org summary.OriginTree
	for _, stage := range k.Stages {
		waves := k.Waves(n)
		inv = append(inv, summary.Leaf(stage, Summarize(waves)))
		org = append(org, summary.Leaf(stage, Origins(waves)))
	}
	return inv, org
}

// TestResult builds a test record shaped like the upstream test stage output.
func (k *Kit) TestResult(test, metric string) summary.Record {
	p := k.rng.Float64()
	return summary.NewRecord(
		summary.Col("Test", test),
		summary.Col("Metric", metric),
		summary.Col("Statistic", k.rng.Float64()*10),
		summary.Col("P_Value", p),
		summary.Col("Significant", p < 0.05),
	)
}

// Groups builds one result bundle per label with Stage-keyed trees and one
// involvement and origin test each.
func (k *Kit) Groups(n int, labels ...string) summary.GroupedResults {
	groups := make(summary.GroupedResults, 0, len(labels))
	for _, label := range labels {
		inv, org := k.StageTrees(n)
		groups = append(groups, summary.GroupResult{
			Label:            label,
			Involvement:      inv,
			Origin:           org,
			InvolvementTests: []summary.Record{k.TestResult("Kruskal-Wallis", "Involvement")},
			OriginTests:      []summary.Record{k.TestResult("Chi-Square", "Origin Distribution")},
		})
	}
	return groups
}

// Comparison builds a Group -> Stage comparison across labels.
func (k *Kit) Comparison(n int, labels ...string) *summary.Comparison {
	c := &summary.Comparison{}
	for _, label := range labels {
		inv, org := k.StageTrees(n)
		c.Involvement = append(c.Involvement, summary.Lift(label, inv))
		c.Origin = append(c.Origin, summary.Lift(label, org))
		c.Tests = append(c.Tests, k.TestResult("Mann-Whitney U", fmt.Sprintf("Involvement: %s", label)))
	}
	return c
}

// Analysis builds a complete upstream result covering every view.
func (k *Kit) Analysis(n int) *summary.Analysis {
	protocols := []string{"Proto1", "Proto2"}
	groups := []string{"Active", "SHAM"}

	a := &summary.Analysis{
		Protocols:   k.Groups(n, protocols...),
		Treatment:   k.Comparison(n, groups...),
		Overall:     k.Comparison(n, groups...),
		WithinGroup: k.Groups(n, groups...),
	}

	for _, p := range protocols {
		c := k.Comparison(n, groups...)
		a.ProtoSpecific = append(a.ProtoSpecific, summary.GroupResult{
			Label:           p,
			Involvement:     c.Involvement,
			Origin:          c.Origin,
			ComparisonTests: c.Tests,
		})
	}

	meta := &summary.MetaResults{}
	for _, stage := range k.Stages {
		waves := k.Waves(n * len(protocols))
		meta.Involvement = append(meta.Involvement, summary.Leaf(stage, Summarize(waves)))
		meta.RegionCounts = append(meta.RegionCounts, summary.StageRegions{
			Stage:  stage,
			Counts: Origins(waves).RegionCounts,
		})
	}
	meta.Tests = []summary.Record{k.TestResult("Kruskal-Wallis", "Involvement")}
	a.Meta = meta

	return a
}
