package tabulate

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Aggregation reduces the values of one column within one group.
type Aggregation struct {
	Name        string
	NumericOnly bool
	Reduce      func(vals []Value) Value
}

var aggregations = map[string]Aggregation{
	"sum":     {Name: "sum", NumericOnly: true, Reduce: aggSum},
	"mean":    {Name: "mean", NumericOnly: true, Reduce: aggMean},
	"count":   {Name: "count", Reduce: aggCount},
	"min":     {Name: "min", NumericOnly: true, Reduce: aggMin},
	"max":     {Name: "max", NumericOnly: true, Reduce: aggMax},
	"median":  {Name: "median", NumericOnly: true, Reduce: aggMedian},
	"std":     {Name: "std", NumericOnly: true, Reduce: aggStd},
	"var":     {Name: "var", NumericOnly: true, Reduce: aggVar},
	"first":   {Name: "first", Reduce: aggFirst},
	"last":    {Name: "last", Reduce: aggLast},
	"nunique": {Name: "nunique", Reduce: aggNUnique},
}

// LookupAggregation resolves a case-insensitive aggregation name.
func LookupAggregation(name string) (Aggregation, bool) {
	a, ok := aggregations[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// AggregationNames lists the registered aggregations, sorted.
func AggregationNames() []string {
	out := make([]string, 0, len(aggregations))
	for n := range aggregations {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func numbers(vals []Value) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		switch v.Kind {
		case KindNumber:
			out = append(out, v.Num)
		case KindMissing:
			out = append(out, 0)
		case KindDateTime, KindText:
		}
	}
	return out
}

// decimalSum adds exactly when every input is finite.
func decimalSum(nums []float64) float64 {
	acc := decimal.Zero
	for _, f := range nums {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return floatSum(nums)
		}
		acc = acc.Add(decimal.NewFromFloat(f))
	}
	out, _ := acc.Float64()
	return out
}

func floatSum(nums []float64) float64 {
	var s float64
	for _, f := range nums {
		s += f
	}
	return s
}

func aggSum(vals []Value) Value {
	return Number(decimalSum(numbers(vals)))
}

func aggMean(vals []Value) Value {
	nums := numbers(vals)
	if len(nums) == 0 {
		return Number(math.NaN())
	}
	sum := decimalSum(nums)
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return Number(sum / float64(len(nums)))
	}
	out, _ := decimal.NewFromFloat(sum).Div(decimal.NewFromInt(int64(len(nums)))).Float64()
	return Number(out)
}

func aggCount(vals []Value) Value {
	n := 0
	for _, v := range vals {
		if !v.IsMissing() {
			n++
		}
	}
	return Number(float64(n))
}

func aggMin(vals []Value) Value {
	nums := numbers(vals)
	if len(nums) == 0 {
		return Number(math.NaN())
	}
	m := nums[0]
	for _, f := range nums[1:] {
		m = math.Min(m, f)
	}
	return Number(m)
}

func aggMax(vals []Value) Value {
	nums := numbers(vals)
	if len(nums) == 0 {
		return Number(math.NaN())
	}
	m := nums[0]
	for _, f := range nums[1:] {
		m = math.Max(m, f)
	}
	return Number(m)
}

func aggMedian(vals []Value) Value {
	nums := numbers(vals)
	if len(nums) == 0 {
		return Number(math.NaN())
	}
	sort.Float64s(nums)
	mid := len(nums) / 2
	if len(nums)%2 == 1 {
		return Number(nums[mid])
	}
	return Number((nums[mid-1] + nums[mid]) / 2)
}

// variance is the sample variance (n-1 denominator); NaN below two values.
func variance(nums []float64) float64 {
	if len(nums) < 2 {
		return math.NaN()
	}
	mean := floatSum(nums) / float64(len(nums))
	var ss float64
	for _, f := range nums {
		d := f - mean
		ss += d * d
	}
	return ss / float64(len(nums)-1)
}

func aggVar(vals []Value) Value {
	return Number(variance(numbers(vals)))
}

func aggStd(vals []Value) Value {
	return Number(math.Sqrt(variance(numbers(vals))))
}

func aggFirst(vals []Value) Value {
	for _, v := range vals {
		if !v.IsMissing() {
			return v
		}
	}
	return Missing()
}

func aggLast(vals []Value) Value {
	for i := len(vals) - 1; i >= 0; i-- {
		if !vals[i].IsMissing() {
			return vals[i]
		}
	}
	return Missing()
}

func aggNUnique(vals []Value) Value {
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		if v.IsMissing() {
			continue
		}
		seen[v.Kind.String()+"\x00"+v.String()] = struct{}{}
	}
	return Number(float64(len(seen)))
}
