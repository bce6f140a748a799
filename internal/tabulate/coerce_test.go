package tabulate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		wantKind Kind
		check    func(t *testing.T, v Value)
	}{
		{name: "nil is missing", raw: nil, wantKind: KindMissing},
		{name: "empty string is missing", raw: "", wantKind: KindMissing},
		{name: "whitespace is missing", raw: "   \t", wantKind: KindMissing},
		{
			name: "integer string", raw: "10", wantKind: KindNumber,
			check: func(t *testing.T, v Value) { assert.Equal(t, 10.0, v.Num) },
		},
		{
			name: "padded decimal", raw: " 3.25 ", wantKind: KindNumber,
			check: func(t *testing.T, v Value) { assert.Equal(t, 3.25, v.Num) },
		},
		{
			name: "exponent", raw: "1e3", wantKind: KindNumber,
			check: func(t *testing.T, v Value) { assert.Equal(t, 1000.0, v.Num) },
		},
		{
			name: "native int", raw: 7, wantKind: KindNumber,
			check: func(t *testing.T, v Value) { assert.Equal(t, 7.0, v.Num) },
		},
		{
			name: "native bool", raw: true, wantKind: KindNumber,
			check: func(t *testing.T, v Value) { assert.Equal(t, 1.0, v.Num) },
		},
		{
			name: "overflow keeps infinity", raw: "1e999", wantKind: KindNumber,
			check: func(t *testing.T, v Value) { assert.True(t, math.IsInf(v.Num, 1)) },
		},
		{
			name: "iso date", raw: "2023-01-01", wantKind: KindDateTime,
			check: func(t *testing.T, v Value) {
				assert.True(t, v.Time.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
			},
		},
		{
			name: "native time", raw: time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC), wantKind: KindDateTime,
		},
		{
			name: "plain text", raw: "abc", wantKind: KindText,
			check: func(t *testing.T, v Value) { assert.Equal(t, "abc", v.Str) },
		},
		{
			name: "not a date", raw: "not a date", wantKind: KindText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Coerce(tt.raw)
			assert.Equal(t, tt.wantKind, v.Kind)
			if tt.check != nil {
				tt.check(t, v)
			}
		})
	}
}

func TestRulesOrder(t *testing.T) {
	r := Rules()
	require.Len(t, r, 3)
	assert.Equal(t, "numeric", r[0].Name)
	assert.Equal(t, "temporal", r[1].Name)
	assert.Equal(t, "textual", r[2].Name)

	// Mutating the copy leaves the chain intact.
	r[0].Name = "changed"
	assert.Equal(t, "numeric", Rules()[0].Name)
}

func TestCoerceNumericWinsOverTemporal(t *testing.T) {
	// "2023" parses both ways; the numeric rule runs first.
	v := Coerce("2023")
	assert.Equal(t, KindNumber, v.Kind)
	assert.Equal(t, 2023.0, v.Num)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "", Missing().String())
	assert.Equal(t, "13", Number(13).String())
	assert.Equal(t, "0.5", Number(0.5).String())
	assert.Equal(t, "2023-01-01", DateTime(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)).String())
	assert.Equal(t, "2023-01-01 10:30:00", DateTime(time.Date(2023, 1, 1, 10, 30, 0, 0, time.UTC)).String())
	assert.Equal(t, "x", Text("x").String())
}

func TestCompare(t *testing.T) {
	day := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, -1, Compare(Number(1), Number(2)))
	assert.Equal(t, 1, Compare(Text("b"), Text("a")))
	assert.Equal(t, 0, Compare(DateTime(day), DateTime(day)))
	assert.Equal(t, -1, Compare(Number(100), DateTime(day)))
	assert.Equal(t, -1, Compare(DateTime(day), Text("a")))
	assert.Equal(t, -1, Compare(Missing(), Number(0)))
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Number(math.NaN()).Equal(Number(math.NaN())))
	assert.False(t, Number(1).Equal(Text("1")))
	assert.True(t, Missing().Equal(Value{}))
}
