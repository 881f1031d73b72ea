// Package merge concatenates test result lists from several sub-analyses into
// one table, tagging each record with the grouping it came from.
package merge

import (
	"wavestats/domain/summary"
)

// Tag is one identifying column added to every record of a batch.
type Tag struct {
	Column string
	Value  string
}

// Batch is a list of test results sharing one grouping context.
type Batch struct {
	Tags    []Tag
	Records []summary.Record
}

// Tagged builds a batch whose records all receive the same tags.
func Tagged(records []summary.Record, tags ...Tag) Batch {
	return Batch{Tags: tags, Records: records}
}

// Merge concatenates batches in order, then records in order within each
// batch. Every record is copied; a tag column is only set when the upstream
// record does not already carry it.
func Merge(batches ...Batch) []summary.Record {
	var out []summary.Record
	for _, b := range batches {
		for _, r := range b.Records {
			tagged := r.Clone()
			for _, tag := range b.Tags {
				tagged = tagged.WithDefault(tag.Column, tag.Value)
			}
			out = append(out, tagged)
		}
	}
	return out
}

// Groups turns grouped results into batches tagged with each group's label
// under column. The involvement, origin and comparison lists of a group are
// kept in that order.
func Groups(groups summary.GroupedResults, column string) []Batch {
	batches := make([]Batch, 0, len(groups)*3)
	for _, g := range groups {
		tag := Tag{Column: column, Value: g.Label}
		batches = append(batches,
			Tagged(g.InvolvementTests, tag),
			Tagged(g.OriginTests, tag),
			Tagged(g.ComparisonTests, tag),
		)
	}
	return batches
}
