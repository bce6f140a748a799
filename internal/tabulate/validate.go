package tabulate

import (
	"context"
	"io"
	"log/slog"
)

// Row maps a column name to its raw value. Absent names read as Missing.
type Row map[string]any

// Table is the untyped input: ordered column names and ordered rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// Column returns the raw values of name in row order.
func (t Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// Column is a validated column: one category, one value per row.
type Column struct {
	Name     string
	Category Category
	Values   []Value
}

// ValidatedTable holds typed columns of equal length.
type ValidatedTable struct {
	Columns []Column
}

// Len is the number of rows.
func (vt ValidatedTable) Len() int {
	if len(vt.Columns) == 0 {
		return 0
	}
	return len(vt.Columns[0].Values)
}

// Lookup returns the column called name.
func (vt ValidatedTable) Lookup(name string) (Column, bool) {
	for _, c := range vt.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in order.
func (vt ValidatedTable) Names() []string {
	out := make([]string, len(vt.Columns))
	for i, c := range vt.Columns {
		out[i] = c.Name
	}
	return out
}

// Validator infers and coerces every column of a table.
type Validator struct {
	inferrer *Inferrer
	coercer  *ColumnCoercer
	logger   *slog.Logger
}

// NewValidator wires an inferrer and a column coercer. A nil logger
// discards output.
func NewValidator(threshold float64, sentinel string, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Validator{
		inferrer: NewInferrer(threshold),
		coercer:  NewColumnCoercer(sentinel),
		logger:   logger,
	}
}

// Sentinel is the placeholder this validator writes into text gaps.
func (v *Validator) Sentinel() string { return v.coercer.Sentinel }

// Validate returns the typed table. Columns are independent; row and
// column order are kept.
func (v *Validator) Validate(ctx context.Context, t Table) ValidatedTable {
	vt := ValidatedTable{Columns: make([]Column, 0, len(t.Columns))}
	for _, name := range t.Columns {
		raw := t.Column(name)
		counts := v.inferrer.Tally(raw)
		cat := v.inferrer.Decide(counts)
		v.logger.DebugContext(ctx, "column detected",
			slog.String("column", name),
			slog.String("category", cat.String()),
			slog.Int("numeric", counts.Numeric),
			slog.Int("temporal", counts.Temporal),
			slog.Int("textual", counts.Textual),
			slog.Int("missing", counts.Missing),
		)
		vt.Columns = append(vt.Columns, Column{
			Name:     name,
			Category: cat,
			Values:   v.coercer.CoerceColumn(raw, cat),
		})
	}
	return vt
}
