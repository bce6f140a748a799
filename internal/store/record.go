package store

// Field is one named cell of a record.
type Field struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Record is a document with ordered fields. Field order is the column order
// of the sheet it was imported from.
type Record struct {
	ID     uint64  `json:"-"`
	Fields []Field `json:"fields"`
}

// NewRecord builds a record from parallel name and value slices.
func NewRecord(names []string, values []any) Record {
	r := Record{Fields: make([]Field, 0, len(names))}
	for i, n := range names {
		var v any
		if i < len(values) {
			v = values[i]
		}
		r.Fields = append(r.Fields, Field{Name: n, Value: v})
	}
	return r
}

// Get returns the value of the first field called name.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of name, appending the field when absent.
func (r *Record) Set(name string, value any) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// Names returns the field names in order.
func (r Record) Names() []string {
	out := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		out[i] = f.Name
	}
	return out
}

// project keeps only the listed fields, in record order. An empty
// projection keeps everything.
func (r Record) project(names []string) Record {
	if len(names) == 0 {
		return r
	}
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		keep[n] = struct{}{}
	}
	out := Record{ID: r.ID, Fields: make([]Field, 0, len(names))}
	for _, f := range r.Fields {
		if _, ok := keep[f.Name]; ok {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}
