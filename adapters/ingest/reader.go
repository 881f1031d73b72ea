// Package ingest decodes the upstream analysis result document into summary
// structures. Object key order in the document becomes traversal order.
package ingest

import (
	"fmt"
	"math"
	"os"
	"strings"

	"wavestats/domain/core"
	"wavestats/domain/summary"

	"github.com/tidwall/gjson"
)

// Top-level sections of the result document and the keys inside them.
const (
	keyProtocols     = "protocols"
	keyTreatment     = "treatment_comparison"
	keyOverall       = "overall_comparison"
	keyProtoSpecific = "proto_specific"
	keyWithinGroup   = "within_group"
	keyMeta          = "meta"

	keyInvolvementStats = "involvement_stats"
	keyOriginData       = "origin_data"
	keyInvolvementTests = "involvement_test_results"
	keyOriginTests      = "origin_test_results"
	keyComparisonTests  = "comparison_tests"
)

// ReadFile reads and decodes a result document from disk.
func ReadFile(path string) (*summary.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a result document. Sections that are absent leave the
// corresponding view empty; a present section with a missing required field
// fails with a MalformedInput error.
func Parse(data []byte) (*summary.Analysis, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: results document is not valid JSON", core.ErrMalformedInput)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: results document must be an object", core.ErrMalformedInput)
	}

	var a summary.Analysis
	var err error

	if a.Protocols, err = parseGroups(doc.Get(keyProtocols), keyProtocols, 1); err != nil {
		return nil, err
	}
	if a.Treatment, err = parseComparison(doc.Get(keyTreatment), keyTreatment, "treatment"); err != nil {
		return nil, err
	}
	if a.Overall, err = parseComparison(doc.Get(keyOverall), keyOverall, "overall"); err != nil {
		return nil, err
	}
	if a.ProtoSpecific, err = parseGroups(doc.Get(keyProtoSpecific+".proto_specific_results"), keyProtoSpecific, 2); err != nil {
		return nil, err
	}
	if a.WithinGroup, err = parseGroups(doc.Get(keyWithinGroup+".within_group_results"), keyWithinGroup, 1); err != nil {
		return nil, err
	}
	if a.Meta, err = parseMeta(doc.Get(keyMeta), keyMeta); err != nil {
		return nil, err
	}
	return &a, nil
}

// parseGroups reads an object of label -> result bundle whose inner trees are
// depth levels deep.
func parseGroups(res gjson.Result, path string, depth int) (summary.GroupedResults, error) {
	if !res.Exists() {
		return nil, nil
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: %s must be an object", core.ErrMalformedInput, path)
	}

	var groups summary.GroupedResults
	var err error
	res.ForEach(func(label, body gjson.Result) bool {
		p := path + "." + label.String()
		if !body.IsObject() {
			err = fmt.Errorf("%w: %s must be an object", core.ErrMalformedInput, p)
			return false
		}
		g := summary.GroupResult{Label: label.String()}
		if g.Involvement, err = parseInvolvementTree(body.Get(keyInvolvementStats), p+"."+keyInvolvementStats, depth); err != nil {
			return false
		}
		if g.Origin, err = parseOriginTree(body.Get(keyOriginData), p+"."+keyOriginData, depth); err != nil {
			return false
		}
		if g.InvolvementTests, err = parseRecords(body.Get(keyInvolvementTests), p+"."+keyInvolvementTests); err != nil {
			return false
		}
		if g.OriginTests, err = parseRecords(body.Get(keyOriginTests), p+"."+keyOriginTests); err != nil {
			return false
		}
		if g.ComparisonTests, err = parseRecords(body.Get(keyComparisonTests), p+"."+keyComparisonTests); err != nil {
			return false
		}
		groups = append(groups, g)
		return true
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// parseComparison reads a comparison section whose keys carry prefix, e.g.
// treatment_involvement_stats.
func parseComparison(res gjson.Result, path, prefix string) (*summary.Comparison, error) {
	if !res.Exists() {
		return nil, nil
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: %s must be an object", core.ErrMalformedInput, path)
	}
	inv := prefix + "_" + keyInvolvementStats
	org := prefix + "_" + keyOriginData
	tests := prefix + "_" + keyComparisonTests

	var c summary.Comparison
	var err error
	if c.Involvement, err = parseInvolvementTree(res.Get(inv), path+"."+inv, 2); err != nil {
		return nil, err
	}
	if c.Origin, err = parseOriginTree(res.Get(org), path+"."+org, 2); err != nil {
		return nil, err
	}
	if c.Tests, err = parseRecords(res.Get(tests), path+"."+tests); err != nil {
		return nil, err
	}
	return &c, nil
}

func parseMeta(res gjson.Result, path string) (*summary.MetaResults, error) {
	if !res.Exists() {
		return nil, nil
	}
	var m summary.MetaResults
	var err error
	if m.Involvement, err = parseInvolvementTree(res.Get("meta_involvement_stats"), path+".meta_involvement_stats", 1); err != nil {
		return nil, err
	}

	origin := res.Get("meta_origin_data")
	if origin.Exists() && !origin.IsObject() {
		return nil, fmt.Errorf("%w: %s.meta_origin_data must be an object", core.ErrMalformedInput, path)
	}
	origin.ForEach(func(stage, counts gjson.Result) bool {
		var rc []summary.RegionCount
		rc, err = parseRegionCounts(counts, path+".meta_origin_data."+stage.String())
		if err != nil {
			return false
		}
		m.RegionCounts = append(m.RegionCounts, summary.StageRegions{Stage: stage.String(), Counts: rc})
		return true
	})
	if err != nil {
		return nil, err
	}

	if m.Tests, err = parseRecords(res.Get("meta_stats_results"), path+".meta_stats_results"); err != nil {
		return nil, err
	}
	return &m, nil
}

// parseTree reads depth levels of nested objects and hands each leaf object to
// leaf.
func parseTree[T any](res gjson.Result, path string, depth int, leaf func(gjson.Result, string) (T, error)) (summary.Tree[T], error) {
	if !res.Exists() || res.Type == gjson.Null {
		return nil, nil
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: %s must be an object", core.ErrMalformedInput, path)
	}

	var tree summary.Tree[T]
	var err error
	res.ForEach(func(label, body gjson.Result) bool {
		p := path + "." + label.String()
		if depth == 1 {
			var stat T
			if stat, err = leaf(body, p); err != nil {
				return false
			}
			tree = append(tree, summary.Leaf(label.String(), stat))
			return true
		}
		var children summary.Tree[T]
		if children, err = parseTree(body, p, depth-1, leaf); err != nil {
			return false
		}
		tree = append(tree, summary.Lift(label.String(), children))
		return true
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

func parseInvolvementTree(res gjson.Result, path string, depth int) (summary.InvolvementTree, error) {
	return parseTree(res, path, depth, parseInvolvementStat)
}

func parseOriginTree(res gjson.Result, path string, depth int) (summary.OriginTree, error) {
	return parseTree(res, path, depth, parseOriginStat)
}

func parseInvolvementStat(res gjson.Result, path string) (summary.InvolvementStat, error) {
	var s summary.InvolvementStat
	if !res.IsObject() {
		return s, fmt.Errorf("%w: %s must be an object", core.ErrMalformedInput, path)
	}
	var err error
	if s.Mean, err = floatField(res, path, "mean"); err != nil {
		return s, err
	}
	if s.Median, err = floatField(res, path, "median"); err != nil {
		return s, err
	}
	if s.Std, err = floatField(res, path, "std"); err != nil {
		return s, err
	}
	if s.Count, err = intField(res, path, "count"); err != nil {
		return s, err
	}
	return s, nil
}

func parseOriginStat(res gjson.Result, path string) (summary.OriginStat, error) {
	var s summary.OriginStat
	if !res.IsObject() {
		return s, fmt.Errorf("%w: %s must be an object", core.ErrMalformedInput, path)
	}
	counts := res.Get("region_counts")
	if !counts.Exists() {
		return s, core.NewMissingFieldError(path, "region_counts")
	}
	var err error
	if s.RegionCounts, err = parseRegionCounts(counts, path+".region_counts"); err != nil {
		return s, err
	}
	if s.TotalWaves, err = intField(res, path, "total_waves"); err != nil {
		return s, err
	}
	return s, nil
}

func parseRegionCounts(res gjson.Result, path string) ([]summary.RegionCount, error) {
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: %s must be an object", core.ErrMalformedInput, path)
	}
	var counts []summary.RegionCount
	var err error
	res.ForEach(func(region, count gjson.Result) bool {
		var n int
		if n, err = asInt(count, path, region.String()); err != nil {
			return false
		}
		counts = append(counts, summary.RegionCount{Region: region.String(), Count: n})
		return true
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// floatField reads a required number. null and "NaN" decode to NaN.
func floatField(res gjson.Result, path, field string) (float64, error) {
	v := res.Get(gjson.Escape(field))
	if !v.Exists() {
		return 0, core.NewMissingFieldError(path, field)
	}
	switch v.Type {
	case gjson.Number:
		return v.Float(), nil
	case gjson.Null:
		return math.NaN(), nil
	case gjson.String:
		if strings.EqualFold(v.Str, "nan") {
			return math.NaN(), nil
		}
	}
	return 0, fmt.Errorf("%w: %s.%s is not a number", core.ErrMalformedInput, path, field)
}

// intField reads a required whole number.
func intField(res gjson.Result, path, field string) (int, error) {
	v := res.Get(gjson.Escape(field))
	if !v.Exists() {
		return 0, core.NewMissingFieldError(path, field)
	}
	return asInt(v, path, field)
}

func asInt(v gjson.Result, path, field string) (int, error) {
	if v.Type != gjson.Number || v.Float() != math.Trunc(v.Float()) {
		return 0, fmt.Errorf("%w: %s.%s is not a whole number", core.ErrMalformedInput, path, field)
	}
	return int(v.Int()), nil
}

// parseRecords reads an array of open-ended objects, keeping field order.
func parseRecords(res gjson.Result, path string) ([]summary.Record, error) {
	if !res.Exists() || res.Type == gjson.Null {
		return nil, nil
	}
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: %s must be an array", core.ErrMalformedInput, path)
	}

	var records []summary.Record
	for i, item := range res.Array() {
		if !item.IsObject() {
			return nil, fmt.Errorf("%w: %s[%d] must be an object", core.ErrMalformedInput, path, i)
		}
		var r summary.Record
		item.ForEach(func(k, v gjson.Result) bool {
			r = append(r, summary.Col(k.String(), scalar(v)))
			return true
		})
		records = append(records, r)
	}
	return records, nil
}

// scalar converts a JSON value to a cell value. Whole numbers written without
// a fraction or exponent stay integers; nested values keep their raw JSON.
func scalar(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.String:
		return v.Str
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			return v.Int()
		}
		return v.Float()
	default:
		return v.Raw
	}
}
