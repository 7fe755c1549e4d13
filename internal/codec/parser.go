package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// Decode parses a wire literal back into its value. The parser accepts
// exactly the literal grammar — tables, bracketed or bare-identifier
// keys, quoted strings, decimal numbers, true/false/nil — and fails on
// everything else: identifiers in value position, calls, operators,
// unknown escapes, trailing input. A failure never carries side
// effects; callers treat it as "no usable payload".
func Decode(s string) (any, error) {
	p := &parser{src: s}
	p.skipSpace()
	v, err := p.parseValue(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing data")
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("codec: %s at offset %d", msg, p.pos)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) expect(c byte) error {
	got, ok := p.peek()
	if !ok {
		return p.errorf("unexpected end of input, want %q", string(c))
	}
	if got != c {
		return p.errorf("unexpected %q, want %q", string(got), string(c))
	}
	p.pos++
	return nil
}

func (p *parser) parseValue(depth int) (any, error) {
	if depth > maxDepth {
		return nil, p.errorf("nesting deeper than %d", maxDepth)
	}
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of input")
	}
	switch {
	case c == '{':
		return p.parseTable(depth)
	case c == '"':
		return p.parseString()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == 't' || c == 'f' || c == 'n':
		return p.parseKeyword()
	default:
		return nil, p.errorf("unexpected %q", string(c))
	}
}

func (p *parser) parseKeyword() (any, error) {
	rest := p.src[p.pos:]
	for _, kw := range []struct {
		lit string
		val any
	}{
		{"true", true},
		{"false", false},
		{"nil", nil},
	} {
		if strings.HasPrefix(rest, kw.lit) && !identChar(rest, len(kw.lit)) {
			p.pos += len(kw.lit)
			return kw.val, nil
		}
	}
	return nil, p.errorf("unexpected identifier")
}

// identChar reports whether s[i] continues an identifier, guarding
// against keywords glued to more letters ("nilx", "trueish").
func identChar(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *parser) parseNumber() (any, error) {
	start := p.pos
	if c, ok := p.peek(); ok && c == '-' {
		p.pos++
	}
	digits := 0
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
		digits++
	}
	if digits == 0 {
		return nil, p.errorf("malformed number")
	}
	isFloat := false
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		isFloat = true
		p.pos++
		frac := 0
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
			frac++
		}
		if frac == 0 {
			return nil, p.errorf("malformed number")
		}
	}
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		isFloat = true
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		exp := 0
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
			exp++
		}
		if exp == 0 {
			return nil, p.errorf("malformed number")
		}
	}
	lit := p.src[start:p.pos]
	if !isFloat {
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return n, nil
		}
		// fall through for values beyond int64
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, p.errorf("malformed number %q", lit)
	}
	return f, nil
}

func (p *parser) parseString() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		p.pos++
		switch c {
		case '"':
			return b.String(), nil
		case '\\':
			if p.pos >= len(p.src) {
				return "", p.errorf("unterminated escape")
			}
			e := p.src[p.pos]
			p.pos++
			switch e {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				p.pos -= 2
				return "", p.errorf("unknown escape \\%s", string(e))
			}
		default:
			b.WriteByte(c)
		}
	}
}

func (p *parser) parseTable(depth int) (Table, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	t := make(Table)
	p.skipSpace()
	if c, ok := p.peek(); ok && c == '}' {
		p.pos++
		return t, nil
	}
	for {
		p.skipSpace()
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect('='); err != nil {
			return nil, err
		}
		p.skipSpace()
		val, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		t[key] = val

		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated table")
		}
		switch c {
		case ',':
			p.pos++
			p.skipSpace()
			// trailing comma before the closing brace is legal
			if c2, ok2 := p.peek(); ok2 && c2 == '}' {
				p.pos++
				return t, nil
			}
		case '}':
			p.pos++
			return t, nil
		default:
			return nil, p.errorf("unexpected %q in table", string(c))
		}
	}
}

// parseKey handles [number], ["string"] and bare identifier keys.
// Bracketed numeric keys decode as int64 when integral.
func (p *parser) parseKey() (any, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of input in table key")
	}
	if c == '[' {
		p.pos++
		p.skipSpace()
		inner, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated table key")
		}
		var key any
		var err error
		switch {
		case inner == '"':
			key, err = p.parseString()
		case inner == '-' || (inner >= '0' && inner <= '9'):
			key, err = p.parseNumber()
		default:
			return nil, p.errorf("unexpected %q in table key", string(inner))
		}
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		return key, nil
	}

	// bare identifier key
	start := p.pos
	for identChar(p.src, p.pos) {
		p.pos++
	}
	if p.pos == start {
		return nil, p.errorf("unexpected %q in table key", string(c))
	}
	first := p.src[start]
	if first >= '0' && first <= '9' {
		return nil, p.errorf("malformed table key")
	}
	return p.src[start:p.pos], nil
}
