package tabulate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
)

// DefaultGrandTotalLabel marks the grand-total row in the first grouping
// column.
const DefaultGrandTotalLabel = "Total General"

// PivotSpec names the grouping columns, the value columns and one
// aggregation per value column. A single aggregation applies to all
// value columns.
type PivotSpec struct {
	Index        []string
	Values       []string
	Aggregations []string
}

// PivotTable is the grouped result. Rows are sorted by group key; the grand
// total is the last row.
type PivotTable struct {
	Header []string
	Rows   [][]Value
}

// ErrorTable is the one-cell table written in place of a failed pivot.
func ErrorTable(err error) PivotTable {
	return PivotTable{
		Header: []string{"Error"},
		Rows:   [][]Value{{Text(err.Error())}},
	}
}

// PivotBuilder groups a validated table and aggregates value columns.
type PivotBuilder struct {
	sentinel   string
	totalLabel string
	logger     *slog.Logger
}

// NewPivotBuilder returns a builder. Empty arguments take the package
// defaults.
func NewPivotBuilder(sentinel, totalLabel string, logger *slog.Logger) *PivotBuilder {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	if totalLabel == "" {
		totalLabel = DefaultGrandTotalLabel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PivotBuilder{sentinel: sentinel, totalLabel: totalLabel, logger: logger}
}

type group struct {
	key  []Value
	rows []int
}

// Build checks every named column, then groups and aggregates.
func (b *PivotBuilder) Build(ctx context.Context, vt ValidatedTable, spec PivotSpec) (*PivotTable, error) {
	index, values, err := b.resolve(vt, spec)
	if err != nil {
		return nil, err
	}
	aggs, err := b.aggregationsFor(spec, values)
	if err != nil {
		return nil, err
	}

	keys := make([][]Value, len(index))
	for i, col := range index {
		keys[i] = b.groupKeys(col)
	}

	groups := make(map[string]*group)
	order := make([]*group, 0)
	for r := 0; r < vt.Len(); r++ {
		key := make([]Value, len(index))
		parts := make([]string, len(index))
		for i := range index {
			key[i] = keys[i][r]
			parts[i] = key[i].Kind.String() + "\x00" + key[i].String()
		}
		id := strings.Join(parts, "\x1f")
		g, ok := groups[id]
		if !ok {
			g = &group{key: key}
			groups[id] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, r)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return compareKeys(order[i].key, order[j].key) < 0
	})

	pt := &PivotTable{Header: append(append([]string{}, spec.Index...), spec.Values...)}
	for _, g := range order {
		row := append([]Value{}, g.key...)
		for i, col := range values {
			row = append(row, reduce(aggs[i], pick(col.Values, g.rows)))
		}
		pt.Rows = append(pt.Rows, row)
	}

	total := make([]Value, len(index))
	total[0] = Text(b.totalLabel)
	for i, col := range values {
		total = append(total, reduce(aggs[i], col.Values))
	}
	pt.Rows = append(pt.Rows, total)

	b.logger.DebugContext(ctx, "pivot built",
		slog.Int("groups", len(order)),
		slog.Any("index", spec.Index),
		slog.Any("values", spec.Values),
	)
	return pt, nil
}

func (b *PivotBuilder) resolve(vt ValidatedTable, spec PivotSpec) ([]Column, []Column, error) {
	index := make([]Column, 0, len(spec.Index))
	for _, name := range spec.Index {
		c, ok := vt.Lookup(name)
		if !ok {
			return nil, nil, &MissingColumnError{Column: name}
		}
		index = append(index, c)
	}
	values := make([]Column, 0, len(spec.Values))
	for _, name := range spec.Values {
		c, ok := vt.Lookup(name)
		if !ok {
			return nil, nil, &MissingColumnError{Column: name}
		}
		values = append(values, c)
	}
	if len(index) == 0 {
		return nil, nil, &PivotSpecError{Reason: "at least one index column is required"}
	}
	if len(values) == 0 {
		return nil, nil, &PivotSpecError{Reason: "at least one value column is required"}
	}
	return index, values, nil
}

func (b *PivotBuilder) aggregationsFor(spec PivotSpec, values []Column) ([]Aggregation, error) {
	names := spec.Aggregations
	switch {
	case len(names) == 1 && len(values) > 1:
		broadcast := make([]string, len(values))
		for i := range broadcast {
			broadcast[i] = names[0]
		}
		names = broadcast
	case len(names) != len(values):
		return nil, &PivotSpecError{Reason: fmt.Sprintf(
			"%d aggregations given for %d value columns", len(names), len(values))}
	}

	out := make([]Aggregation, len(names))
	for i, name := range names {
		a, ok := LookupAggregation(name)
		if !ok {
			return nil, &UnknownAggregationError{Name: name}
		}
		if a.NumericOnly && values[i].Category != Numeric {
			return nil, &UnsupportedAggregationError{
				Aggregation: a.Name,
				Column:      values[i].Name,
				Category:    values[i].Category,
			}
		}
		out[i] = a
	}
	return out, nil
}

// groupKeys replaces blank group values with the sentinel.
func (b *PivotBuilder) groupKeys(col Column) []Value {
	out := make([]Value, len(col.Values))
	for i, v := range col.Values {
		switch v.Kind {
		case KindMissing:
			out[i] = Text(b.sentinel)
		case KindText:
			if strings.TrimSpace(v.Str) == "" {
				out[i] = Text(b.sentinel)
			} else {
				out[i] = v
			}
		case KindNumber, KindDateTime:
			out[i] = v
		}
	}
	return out
}

func compareKeys(a, b []Value) int {
	for i := range a {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func pick(vals []Value, rows []int) []Value {
	out := make([]Value, len(rows))
	for i, r := range rows {
		out[i] = vals[r]
	}
	return out
}

// reduce applies a and fills NaN results with 0.
func reduce(a Aggregation, vals []Value) Value {
	v := a.Reduce(vals)
	if v.Kind == KindNumber && math.IsNaN(v.Num) {
		return Number(0)
	}
	return v
}
