package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"wavestats/domain/core"
	"wavestats/domain/summary"
)

// Table is a rectangular view over heterogeneous records. Cells missing from a
// record are nil.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NewTable takes the union of record keys in first-seen order as columns.
func NewTable(records []summary.Record) Table {
	index := make(map[string]int)
	var columns []string
	for _, r := range records {
		for _, c := range r {
			if _, seen := index[c.Name]; !seen {
				index[c.Name] = len(columns)
				columns = append(columns, c.Name)
			}
		}
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		row := make([]any, len(columns))
		for _, c := range r {
			row[index[c.Name]] = c.Value
		}
		rows[i] = row
	}
	return Table{Columns: columns, Rows: rows}
}

// Fingerprint hashes the table's text rendering, so the same records give the
// same fingerprint in every output format.
func (t Table) Fingerprint() core.Hash {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatCell(v)
		}
		rows[i] = cells
	}
	return core.ComputeTableHash(t.Columns, rows)
}

// FormatCell renders a cell for text formats. Missing cells and NaN render
// empty; whole floats keep a trailing ".0" so numeric columns stay
// recognisably floating point.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case interface{ String() string }:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
