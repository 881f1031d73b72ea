package app

import (
	"wavestats/domain/summary"
	"wavestats/internal/merge"
)

// ViewName identifies one analysis view.
type ViewName string

const (
	ViewPerProtocol   ViewName = "per_protocol"
	ViewTreatment     ViewName = "treatment"
	ViewOverall       ViewName = "overall_treatment"
	ViewProtoSpecific ViewName = "proto_specific"
	ViewWithinGroup   ViewName = "within_group"
	ViewMeta          ViewName = "meta"
)

// Logical table keys in a ViewResult.
const (
	TableInvolvement = "involvement_stats"
	TableOrigin      = "origin_stats"
	TableTests       = "test_results"
)

// ViewSpec parameterizes the shared export pipeline for one view: the
// grouping columns and where each table goes.
type ViewSpec struct {
	Name   ViewName
	Levels []string

	InvolvementTable string
	OriginTable      string
	TestsTable       string

	// SplitOrigin writes one origin table per top-level label, named
	// "<label>_<OriginTable>" and keyed "origin_stats/<label>".
	SplitOrigin bool
}

var (
	PerProtocolView = ViewSpec{
		Name:             ViewPerProtocol,
		Levels:           []string{summary.ColProtocol, summary.ColStage},
		InvolvementTable: "involvement_statistics",
		OriginTable:      "origin_statistics",
		TestsTable:       "statistical_test_results",
		SplitOrigin:      true,
	}
	TreatmentView = ViewSpec{
		Name:             ViewTreatment,
		Levels:           []string{summary.ColTreatmentGroup, summary.ColStage},
		InvolvementTable: "treatment_involvement_statistics",
		OriginTable:      "treatment_origin_statistics",
		TestsTable:       "treatment_comparison_test_results",
	}
	OverallView = ViewSpec{
		Name:             ViewOverall,
		Levels:           []string{summary.ColTreatmentGroup, summary.ColStage},
		InvolvementTable: "overall_involvement_statistics",
		OriginTable:      "overall_origin_statistics",
		TestsTable:       "overall_comparison_test_results",
	}
	ProtoSpecificView = ViewSpec{
		Name:             ViewProtoSpecific,
		Levels:           []string{summary.ColProtocol, summary.ColTreatmentGroup, summary.ColStage},
		InvolvementTable: "proto_specific_involvement_statistics",
		OriginTable:      "proto_specific_origin_statistics",
		TestsTable:       "proto_specific_comparison_test_results",
	}
	WithinGroupView = ViewSpec{
		Name:             ViewWithinGroup,
		Levels:           []string{summary.ColTreatmentGroup, summary.ColStage},
		InvolvementTable: "within_group_involvement_statistics",
		OriginTable:      "within_group_origin_statistics",
		TestsTable:       "within_group_test_results",
	}
	MetaView = ViewSpec{
		Name:             ViewMeta,
		Levels:           []string{summary.ColStage},
		InvolvementTable: "meta_involvement_statistics",
		OriginTable:      "meta_origin_statistics",
		TestsTable:       "meta_statistical_test_results",
	}
)

// ViewInput is what the shared pipeline consumes: trees already keyed to the
// view's levels and the test batches to merge.
type ViewInput struct {
	Involvement summary.InvolvementTree
	Origin      summary.OriginTree
	Tests       []merge.Batch
}

// PerProtocolInput lifts each protocol's Stage trees under its label and tags
// its tests with Protocol.
func PerProtocolInput(protocols summary.GroupedResults) ViewInput {
	return groupedInput(protocols, summary.ColProtocol)
}

// ProtoSpecificInput lifts each protocol's Group -> Stage trees under its
// label and tags its tests with Protocol.
func ProtoSpecificInput(protocols summary.GroupedResults) ViewInput {
	return groupedInput(protocols, summary.ColProtocol)
}

// WithinGroupInput lifts each group's Stage trees under its label and tags its
// tests with Treatment_Group.
func WithinGroupInput(groups summary.GroupedResults) ViewInput {
	return groupedInput(groups, summary.ColTreatmentGroup)
}

func groupedInput(groups summary.GroupedResults, tag string) ViewInput {
	return ViewInput{
		Involvement: groups.InvolvementTree(),
		Origin:      groups.OriginTree(),
		Tests:       merge.Groups(groups, tag),
	}
}

// ComparisonInput passes a comparison through untagged; its trees already
// carry the group level. A nil comparison is an empty view.
func ComparisonInput(c *summary.Comparison) ViewInput {
	if c == nil {
		return ViewInput{}
	}
	return ViewInput{
		Involvement: c.Involvement,
		Origin:      c.Origin,
		Tests:       []merge.Batch{{Records: c.Tests}},
	}
}

// MetaInput derives the Stage-keyed origin tree from involvement counts.
func MetaInput(m *summary.MetaResults) (ViewInput, error) {
	if m == nil {
		return ViewInput{}, nil
	}
	origin, err := m.OriginTree()
	if err != nil {
		return ViewInput{}, err
	}
	return ViewInput{
		Involvement: m.Involvement,
		Origin:      origin,
		Tests:       []merge.Batch{{Records: m.Tests}},
	}, nil
}
