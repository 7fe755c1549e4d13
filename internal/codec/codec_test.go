package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, v any) any {
	t.Helper()
	wire, err := Encode(v)
	require.NoError(t, err)
	out, err := Decode(wire)
	require.NoError(t, err, "wire form: %s", wire)
	return out
}

func TestRoundTrip_Scalars(t *testing.T) {
	assert.Equal(t, int64(42), roundTrip(t, int64(42)))
	assert.Equal(t, int64(-7), roundTrip(t, int64(-7)))
	assert.Equal(t, 3.25, roundTrip(t, 3.25))
	assert.Equal(t, true, roundTrip(t, true))
	assert.Equal(t, false, roundTrip(t, false))
	assert.Nil(t, roundTrip(t, nil))
	assert.Equal(t, "plain", roundTrip(t, "plain"))
}

func TestRoundTrip_StringEscapes(t *testing.T) {
	cases := []string{
		`he said "hi"`,
		`back\slash`,
		"line\nbreak\ttab\rret",
		`mixed "quotes" and \\ doubles`,
		"",
	}
	for _, s := range cases {
		assert.Equal(t, s, roundTrip(t, s), "case %q", s)
	}
}

func TestRoundTrip_NestedTables(t *testing.T) {
	v := Table{
		"type": "review",
		"review": Table{
			"driver":    "Thrall-Draenor",
			"rating":    int64(5),
			"comment":   `careful driver, "A+"`,
			"timestamp": int64(1700000000),
			"meta": Table{
				"level":   int64(70),
				"partial": true,
				"score":   4.5,
			},
		},
		int64(1): "numeric key",
	}
	assert.Equal(t, v, roundTrip(t, v))
}

func TestEncode_Shape(t *testing.T) {
	wire, err := Encode(Table{"a": int64(1)})
	require.NoError(t, err)
	assert.Equal(t, `{["a"]=1}`, wire)

	wire, err = Encode(Table{int64(2): "x"})
	require.NoError(t, err)
	assert.Equal(t, `{[2]="x"}`, wire)
}

func TestEncode_UnsupportedValueCoercesToString(t *testing.T) {
	type odd struct{ A int }
	wire, err := Encode(Table{"v": odd{A: 3}})
	require.NoError(t, err)
	out, err := Decode(wire)
	require.NoError(t, err)
	s, ok := out.(Table).String("v")
	require.True(t, ok)
	assert.Equal(t, "{3}", s)
}

func TestEncode_TooDeep(t *testing.T) {
	v := Table{}
	cur := v
	for i := 0; i < maxDepth+2; i++ {
		next := Table{}
		cur["n"] = next
		cur = next
	}
	_, err := Encode(v)
	assert.Error(t, err)
}

func TestDecode_BareIdentifierKeys(t *testing.T) {
	out, err := Decode(`{type="review",count=2}`)
	require.NoError(t, err)
	tbl, ok := out.(Table)
	require.True(t, ok)
	s, _ := tbl.String("type")
	assert.Equal(t, "review", s)
	n, _ := tbl.Int("count")
	assert.Equal(t, int64(2), n)
}

func TestDecode_WhitespaceAndTrailingComma(t *testing.T) {
	out, err := Decode(" { [\"a\"] = 1 ,\n [\"b\"] = \"x\" , } ")
	require.NoError(t, err)
	tbl := out.(Table)
	assert.Len(t, tbl, 2)
}

func TestDecode_Malformed(t *testing.T) {
	cases := []string{
		"not valid {{{",
		"os.exit()",
		`os.execute("rm -rf /")`,
		"print(1)",
		"{[\"a\"]=print}",
		"{[\"a\"]=1+1}",
		"1 2",
		"{",
		"{[\"a\"]}",
		"{[\"a\"]=}",
		`"unterminated`,
		`"bad \q escape"`,
		"{[fn()]=1}",
		"trueish",
		"--comment\n1",
		"5.",
		"",
		"{[\"a\"]=1}}",
		"{[1e]=2}",
	}
	for _, c := range cases {
		v, err := Decode(c)
		assert.Error(t, err, "input %q decoded to %#v", c, v)
		assert.Nil(t, v, "input %q", c)
	}
}

func TestDecode_IntegerOverflowFallsBackToFloat(t *testing.T) {
	out, err := Decode("99999999999999999999")
	require.NoError(t, err)
	_, isFloat := out.(float64)
	assert.True(t, isFloat)
}

func TestDecode_DepthLimit(t *testing.T) {
	deep := strings.Repeat(`{["n"]=`, maxDepth+2) + "1" + strings.Repeat("}", maxDepth+2)
	_, err := Decode(deep)
	assert.Error(t, err)
}

func TestTable_FieldHelpers(t *testing.T) {
	tbl := Table{
		"s":     "text",
		"i":     int64(4),
		"whole": 5.0,
		"frac":  4.5,
		"t":     Table{"x": int64(1)},
	}

	s, ok := tbl.String("s")
	assert.True(t, ok)
	assert.Equal(t, "text", s)
	_, ok = tbl.String("i")
	assert.False(t, ok)

	n, ok := tbl.Int("i")
	assert.True(t, ok)
	assert.Equal(t, int64(4), n)

	n, ok = tbl.Int("whole")
	assert.True(t, ok)
	assert.Equal(t, int64(5), n)

	_, ok = tbl.Int("frac")
	assert.False(t, ok, "fractional numbers are not integral")

	nested, ok := tbl.Table("t")
	assert.True(t, ok)
	assert.Len(t, nested, 1)

	_, ok = tbl.Value("missing")
	assert.False(t, ok)
}
