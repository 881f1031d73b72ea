package summary

// Column is one named cell of a Record.
type Column struct {
	Name  string
	Value any
}

// Record is an ordered mapping of column name to scalar value. It backs both
// flattened rows and open-ended test result records; column order is the
// order in which names were first set.
type Record []Column

// Col is shorthand for building a Column.
func Col(name string, value any) Column {
	return Column{Name: name, Value: value}
}

// NewRecord builds a record from columns, later duplicates replacing earlier ones.
func NewRecord(cols ...Column) Record {
	r := make(Record, 0, len(cols))
	for _, c := range cols {
		r = r.With(c.Name, c.Value)
	}
	return r
}

func (r Record) index(name string) int {
	for i, c := range r {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	if i := r.index(name); i >= 0 {
		return r[i].Value, true
	}
	return nil, false
}

// Has reports whether name is set.
func (r Record) Has(name string) bool {
	return r.index(name) >= 0
}

// Keys returns the column names in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, c := range r {
		keys[i] = c.Name
	}
	return keys
}

// Clone returns a copy that shares no backing array with r.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// With returns a copy of r with name set to value, replacing any existing
// value in place.
func (r Record) With(name string, value any) Record {
	out := r.Clone()
	if i := out.index(name); i >= 0 {
		out[i].Value = value
		return out
	}
	return append(out, Column{Name: name, Value: value})
}

// WithDefault returns a copy of r with name set to value only when name is
// not already present.
func (r Record) WithDefault(name string, value any) Record {
	if r.Has(name) {
		return r.Clone()
	}
	return r.With(name, value)
}

// Map converts the record to an unordered map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, c := range r {
		m[c.Name] = c.Value
	}
	return m
}
