package tabulate

// DefaultThreshold is the share of non-missing values a category needs to
// become a column's predominant type.
const DefaultThreshold = 0.7

// Counts tallies coerced values of a column by category.
type Counts struct {
	Numeric  int
	Temporal int
	Textual  int
	Missing  int
}

// Total is the number of non-missing values.
func (c Counts) Total() int {
	return c.Numeric + c.Temporal + c.Textual
}

func (c Counts) of(cat Category) int {
	switch cat {
	case Numeric:
		return c.Numeric
	case Temporal:
		return c.Temporal
	case Textual:
		return c.Textual
	default:
		return 0
	}
}

// Inferrer picks the predominant category of a column.
type Inferrer struct {
	Threshold float64
}

// NewInferrer returns an Inferrer; a non-positive threshold falls back to
// DefaultThreshold.
func NewInferrer(threshold float64) *Inferrer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Inferrer{Threshold: threshold}
}

// Tally coerces every value and counts categories.
func (in *Inferrer) Tally(values []any) Counts {
	var c Counts
	for _, raw := range values {
		cat, ok := categoryOf(Coerce(raw).Kind)
		if !ok {
			c.Missing++
			continue
		}
		switch cat {
		case Numeric:
			c.Numeric++
		case Temporal:
			c.Temporal++
		case Textual:
			c.Textual++
		}
	}
	return c
}

// Infer returns the first category, in Numeric, Temporal, Textual order,
// whose share of the non-missing values reaches the threshold. Columns
// with no present values, or with no dominant category, are Textual.
func (in *Inferrer) Infer(values []any) Category {
	return in.Decide(in.Tally(values))
}

// Decide applies the threshold rule to precomputed counts.
func (in *Inferrer) Decide(c Counts) Category {
	total := c.Total()
	if total == 0 {
		return Textual
	}
	for _, cat := range categoryOrder {
		if float64(c.of(cat))/float64(total) >= in.Threshold {
			return cat
		}
	}
	return Textual
}
