package flatten

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"wavestats/domain/core"
	"wavestats/domain/summary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var protocolStage = []string{summary.ColProtocol, summary.ColStage}

func TestInvolvement_SingleLeaf(t *testing.T) {
	tree := summary.InvolvementTree{
		summary.Branch("ProtoA",
			summary.Leaf("Baseline", summary.InvolvementStat{Mean: 1.0, Median: 1.0, Std: 0.0, Count: 2}),
		),
	}

	rows, err := Involvement(tree, protocolStage)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, map[string]any{
		"Protocol":           "ProtoA",
		"Stage":              "Baseline",
		"Mean_Involvement":   1.0,
		"Median_Involvement": 1.0,
		"Std_Involvement":    0.0,
		"Count":              2,
	}, rows[0].Map())
	assert.Equal(t, []string{
		"Protocol", "Stage", "Mean_Involvement", "Median_Involvement", "Std_Involvement", "Count",
	}, rows[0].Keys())
}

func TestInvolvement_KeepsZeroCountAndNaN(t *testing.T) {
	tree := summary.InvolvementTree{
		summary.Branch("Active",
			summary.Leaf("pre", summary.InvolvementStat{Mean: math.NaN(), Median: math.NaN(), Std: math.NaN(), Count: 0}),
			summary.Leaf("post", summary.InvolvementStat{Mean: 3, Median: 3, Std: math.NaN(), Count: 1}),
		),
	}

	rows, err := Involvement(tree, []string{summary.ColTreatmentGroup, summary.ColStage})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	count, _ := rows[0].Get(summary.ColCount)
	assert.Equal(t, 0, count)
	std, _ := rows[1].Get(summary.ColStdInvolvement)
	assert.True(t, math.IsNaN(std.(float64)))
}

func TestInvolvement_ThreeLevels(t *testing.T) {
	tree := summary.InvolvementTree{
		summary.Branch("ProtoA",
			summary.Branch("Active", summary.Leaf("pre", summary.InvolvementStat{Count: 5})),
			summary.Branch("SHAM", summary.Leaf("pre", summary.InvolvementStat{Count: 6})),
		),
	}

	rows, err := Involvement(tree, []string{summary.ColProtocol, summary.ColTreatmentGroup, summary.ColStage})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	group, _ := rows[1].Get(summary.ColTreatmentGroup)
	assert.Equal(t, "SHAM", group)
}

func TestInvolvement_MalformedInputFailsFast(t *testing.T) {
	tree := summary.InvolvementTree{
		summary.Branch("ProtoA", summary.Leaf("pre", summary.InvolvementStat{Count: -3})),
	}
	_, err := Involvement(tree, protocolStage)
	assert.True(t, core.IsMalformedInput(err))

	_, err = Involvement(tree, nil)
	assert.True(t, core.IsMalformedInput(err))

	_, err = Involvement(tree, []string{summary.ColStage})
	assert.True(t, core.IsMalformedInput(err))
}

func TestOrigin_RegionExpansion(t *testing.T) {
	tree := summary.OriginTree{
		summary.Branch("ProtoA",
			summary.Leaf("Baseline", summary.OriginStat{
				RegionCounts: []summary.RegionCount{{Region: "North", Count: 3}, {Region: "South", Count: 0}},
				TotalWaves:   3,
			}),
		),
	}

	rows, err := Origin(tree, protocolStage)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, map[string]any{
		"Protocol":    "ProtoA",
		"Stage":       "Baseline",
		"Region":      "North",
		"Count":       3,
		"Total_Waves": 3,
		"Percentage":  100.0,
	}, rows[0].Map())
	pct, _ := rows[1].Get(summary.ColPercentage)
	assert.Equal(t, 0.0, pct)
}

func TestOrigin_ZeroTotal(t *testing.T) {
	tree := summary.OriginTree{
		summary.Branch("ProtoA",
			summary.Leaf("Baseline", summary.OriginStat{
				RegionCounts: []summary.RegionCount{{Region: "North", Count: 0}},
				TotalWaves:   0,
			}),
		),
	}

	rows, err := Origin(tree, protocolStage)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	pct, _ := rows[0].Get(summary.ColPercentage)
	assert.Equal(t, 0.0, pct)
}

func TestOrigin_EmptyRegionsDropLeaf(t *testing.T) {
	tree := summary.OriginTree{
		summary.Branch("ProtoA",
			summary.Leaf("pre", summary.OriginStat{TotalWaves: 12}),
			summary.Leaf("post", summary.OriginStat{
				RegionCounts: []summary.RegionCount{{Region: "Frontal", Count: 2}},
				TotalWaves:   4,
			}),
		),
	}

	rows, err := Origin(tree, protocolStage)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	stage, _ := rows[0].Get(summary.ColStage)
	assert.Equal(t, "post", stage)
}

func TestOrigin_TotalIsIndependentOfRegionSum(t *testing.T) {
	tree := summary.OriginTree{
		summary.Branch("ProtoA",
			summary.Leaf("pre", summary.OriginStat{
				RegionCounts: []summary.RegionCount{{Region: "North", Count: 1}},
				TotalWaves:   4,
			}),
		),
	}

	rows, err := Origin(tree, protocolStage)
	require.NoError(t, err)
	pct, _ := rows[0].Get(summary.ColPercentage)
	assert.Equal(t, 25.0, pct)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 50.0, Percentage(1, 2))
	assert.InDelta(t, 33.333, Percentage(1, 3), 0.001)
}

// randomTrees builds seeded two-level trees with random fan-out, including
// empty interior nodes and empty region lists.
func randomTrees(r *rand.Rand) (summary.InvolvementTree, summary.OriginTree) {
	var inv summary.InvolvementTree
	var org summary.OriginTree
	protocols := r.Intn(5)
	for p := 0; p < protocols; p++ {
		invNode := summary.Branch[summary.InvolvementStat](fmt.Sprintf("P%d", p))
		orgNode := summary.Branch[summary.OriginStat](fmt.Sprintf("P%d", p))
		stages := r.Intn(4)
		for s := 0; s < stages; s++ {
			stage := fmt.Sprintf("S%d", s)
			invNode.Children = append(invNode.Children, summary.Leaf(stage, summary.InvolvementStat{
				Mean: r.Float64(), Count: r.Intn(20),
			}))
			stat := summary.OriginStat{TotalWaves: r.Intn(10)}
			regions := r.Intn(4)
			for g := 0; g < regions; g++ {
				stat.RegionCounts = append(stat.RegionCounts, summary.RegionCount{
					Region: fmt.Sprintf("R%d", g), Count: r.Intn(10),
				})
			}
			orgNode.Children = append(orgNode.Children, summary.Leaf(stage, stat))
		}
		inv = append(inv, invNode)
		org = append(org, orgNode)
	}
	return inv, org
}

func TestFlatten_RowCountInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		inv, org := randomTrees(r)

		invRows, err := Involvement(inv, protocolStage)
		require.NoError(t, err)
		assert.Len(t, invRows, inv.Leaves())

		wantOrigin := 0
		require.NoError(t, org.Walk(2, func(_ summary.GroupKey, s summary.OriginStat) error {
			wantOrigin += len(s.RegionCounts)
			return nil
		}))

		orgRows, err := Origin(org, protocolStage)
		require.NoError(t, err)
		assert.Len(t, orgRows, wantOrigin)

		for _, row := range orgRows {
			count, _ := row.Get(summary.ColCount)
			total, _ := row.Get(summary.ColTotalWaves)
			pct, _ := row.Get(summary.ColPercentage)
			p := pct.(float64)
			assert.False(t, math.IsNaN(p))
			if total.(int) > 0 {
				assert.InDelta(t, float64(count.(int))/float64(total.(int))*100, p, 1e-9)
			} else {
				assert.Equal(t, 0.0, p)
			}
		}
	}
}

func TestFlatten_DoesNotMutateInput(t *testing.T) {
	stat := summary.OriginStat{
		RegionCounts: []summary.RegionCount{{Region: "North", Count: 1}},
		TotalWaves:   2,
	}
	tree := summary.OriginTree{summary.Branch("ProtoA", summary.Leaf("pre", stat))}

	_, err := Origin(tree, protocolStage)
	require.NoError(t, err)
	got, _ := tree.Find("ProtoA", "pre")
	assert.Equal(t, stat, got)
}
