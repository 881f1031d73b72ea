// Package flatten turns nested grouping trees into flat table rows.
package flatten

import (
	"fmt"

	"wavestats/domain/core"
	"wavestats/domain/summary"
)

// ShapeFunc maps one leaf stat to the column sets emitted for it. Each returned
// record becomes one row, prefixed with the key columns. Returning no records
// drops the leaf.
type ShapeFunc[T any] func(key summary.GroupKey, stat T) ([]summary.Record, error)

// Flatten walks tree in insertion order and emits one row per record returned
// by shape. levels names the grouping columns, outermost first; the tree must
// be exactly len(levels) deep.
func Flatten[T any](tree summary.Tree[T], levels []string, shape ShapeFunc[T]) ([]summary.Record, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: no grouping levels", core.ErrDepthMismatch)
	}

	var rows []summary.Record
	err := tree.Walk(len(levels), func(key summary.GroupKey, stat T) error {
		shaped, err := shape(key, stat)
		if err != nil {
			return err
		}
		for _, cols := range shaped {
			row := make(summary.Record, 0, len(levels)+len(cols))
			for i, level := range levels {
				row = append(row, summary.Col(level, key[i]))
			}
			rows = append(rows, append(row, cols...))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Involvement emits exactly one row per leaf, zero-count groups included.
func Involvement(tree summary.InvolvementTree, levels []string) ([]summary.Record, error) {
	return Flatten(tree, levels, involvementShape)
}

func involvementShape(key summary.GroupKey, s summary.InvolvementStat) ([]summary.Record, error) {
	if err := s.Check(key); err != nil {
		return nil, err
	}
	return []summary.Record{{
		summary.Col(summary.ColMeanInvolvement, s.Mean),
		summary.Col(summary.ColMedianInvolvement, s.Median),
		summary.Col(summary.ColStdInvolvement, s.Std),
		summary.Col(summary.ColCount, s.Count),
	}}, nil
}

// Origin emits one row per region per leaf. Leaves without region counts
// produce no rows.
func Origin(tree summary.OriginTree, levels []string) ([]summary.Record, error) {
	return Flatten(tree, levels, originShape)
}

func originShape(key summary.GroupKey, s summary.OriginStat) ([]summary.Record, error) {
	if err := s.Check(key); err != nil {
		return nil, err
	}
	rows := make([]summary.Record, 0, len(s.RegionCounts))
	for _, rc := range s.RegionCounts {
		rows = append(rows, summary.Record{
			summary.Col(summary.ColRegion, rc.Region),
			summary.Col(summary.ColCount, rc.Count),
			summary.Col(summary.ColTotalWaves, s.TotalWaves),
			summary.Col(summary.ColPercentage, Percentage(rc.Count, s.TotalWaves)),
		})
	}
	return rows, nil
}
