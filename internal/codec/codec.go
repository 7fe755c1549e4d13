// Package codec implements the wire form ratings travel in: a
// brace-delimited literal grammar of nested tables, quoted strings,
// numbers, booleans and nil. Decoding is a dedicated parser over
// exactly that grammar — nothing is evaluated, so a hostile peer can
// produce at worst a parse error.
package codec

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// maxDepth bounds table nesting on both encode and decode.
const maxDepth = 32

// Table is one mapping node of the wire grammar. Keys are string or
// int64; values are nil, bool, int64, float64, string or Table.
type Table map[any]any

// String fetches a string field from the table.
func (t Table) String(key string) (string, bool) {
	v, ok := t[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int fetches an integral numeric field. Integral floats are accepted
// since peers may encode whole numbers either way.
func (t Table) Int(key string) (int64, bool) {
	v, ok := t[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		if math.Trunc(n) == n && !math.IsInf(n, 0) {
			return int64(n), true
		}
	}
	return 0, false
}

// Table fetches a nested table field.
func (t Table) Table(key string) (Table, bool) {
	v, ok := t[key]
	if !ok {
		return nil, false
	}
	nested, ok := v.(Table)
	return nested, ok
}

// Value fetches a raw field, reporting presence.
func (t Table) Value(key string) (any, bool) {
	v, ok := t[key]
	return v, ok
}

// Encode renders v as a wire literal. Maps become {["key"]=value,...}
// with numeric keys bare; strings are quoted and escaped; any value
// outside the grammar falls back to its quoted string form. Key order
// is not guaranteed.
func Encode(v any) (string, error) {
	var b strings.Builder
	if err := encodeValue(&b, v, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeValue(b *strings.Builder, v any, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("codec: nesting deeper than %d", maxDepth)
	}
	switch x := v.(type) {
	case nil:
		b.WriteString("nil")
	case bool:
		if x {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case string:
		encodeString(b, x)
	case int:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case Table:
		return encodeTable(b, x, depth)
	case map[any]any:
		return encodeTable(b, Table(x), depth)
	case map[string]any:
		t := make(Table, len(x))
		for k, val := range x {
			t[k] = val
		}
		return encodeTable(b, t, depth)
	default:
		encodeString(b, fmt.Sprintf("%v", x))
	}
	return nil
}

func encodeTable(b *strings.Builder, t Table, depth int) error {
	b.WriteByte('{')
	// Sorted key emission keeps equal tables byte-identical on the wire.
	keys := make([]any, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		switch key := k.(type) {
		case string:
			encodeString(b, key)
		case int:
			b.WriteString(strconv.FormatInt(int64(key), 10))
		case int64:
			b.WriteString(strconv.FormatInt(key, 10))
		case float64:
			b.WriteString(strconv.FormatFloat(key, 'g', -1, 64))
		default:
			encodeString(b, fmt.Sprintf("%v", key))
		}
		b.WriteString("]=")
		if err := encodeValue(b, t[k], depth+1); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

func keyLess(a, b any) bool {
	an, aNum := numericKey(a)
	bn, bNum := numericKey(b)
	switch {
	case aNum && bNum:
		return an < bn
	case aNum != bNum:
		return aNum // numeric keys sort before string keys
	default:
		return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
	}
}

func numericKey(k any) (float64, bool) {
	switch n := k.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func encodeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}
