package stdlib

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/atlas-lang/atlas/report"
	"github.com/atlas-lang/atlas/source"
	"github.com/atlas-lang/atlas/value"
)

// maxJSONDepth is the nesting limit spec.md §8 pins as a boundary behavior:
// "Deeply nested JSON (> 128 levels) -> AT0110".
const maxJSONDepth = 128

func init() {
	register(&Builtin{
		Name: "jsonParse", Arity: 1,
		Call: func(ctx *Context, span source.Span, args []value.Value) (value.Value, error) {
			s, ok := args[0].(value.Str)
			if !ok {
				return nil, argTypeError(span, "jsonParse", "string", args[0])
			}
			p := &jsonParser{src: string(s), span: span}
			v, err := p.parseValue(0)
			if err != nil {
				return nil, err
			}
			p.skipSpace()
			if p.pos != len(p.src) {
				return nil, report.NewRuntimeError(report.ErrJSONParse, span, "unexpected trailing data at byte %d", p.pos)
			}
			return v, nil
		},
	})

	register(&Builtin{
		Name: "jsonStringify", Arity: 1,
		Call: func(ctx *Context, span source.Span, args []value.Value) (value.Value, error) {
			var b strings.Builder
			if err := stringifyValue(&b, args[0], span); err != nil {
				return nil, err
			}
			return value.Str(b.String()), nil
		},
	})

	register(&Builtin{
		Name: "jsonGet", Arity: 2,
		Call: func(ctx *Context, span source.Span, args []value.Value) (value.Value, error) {
			obj, ok := args[0].(value.JSON)
			if !ok || !obj.IsObject() {
				return nil, report.NewRuntimeError(report.ErrJSONTypeMismatch, span, "jsonGet: expected a JSON object, got %s", value.KindOf(args[0]))
			}
			key, ok := args[1].(value.Str)
			if !ok {
				return nil, argTypeError(span, "jsonGet", "string", args[1])
			}
			field, found := obj.Field(string(key))
			if !found {
				return nil, report.NewRuntimeError(report.ErrJSONKeyNotFound, span, "jsonGet: key %q not found", string(key))
			}
			return field, nil
		},
	})
}

// stringifyValue converts an arbitrary runtime Value to its JSON text
// representation, per SPEC_FULL.md's widening of spec.md §4.14's bare
// str(number|bool|null) builtin to a general-purpose serializer. Function
// values have no JSON representation and raise AT0109 (spec.md §7
// "serialize error").
func stringifyValue(b *strings.Builder, v value.Value, span source.Span) error {
	switch x := v.(type) {
	case value.Number:
		writeJSONNumber(b, float64(x))
	case value.Str:
		writeJSONString(b, string(x))
	case value.Bool:
		if x {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case value.Null:
		b.WriteString("null")
	case *value.Array:
		b.WriteByte('[')
		for i, e := range x.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := stringifyValue(b, e, span); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case value.JSON:
		stringifyJSON(b, x)
	case value.Func:
		return report.NewRuntimeError(report.ErrJSONSerialize, span, "cannot serialize a function value to JSON")
	default:
		return report.NewRuntimeError(report.ErrJSONSerialize, span, "cannot serialize %s to JSON", value.KindOf(v))
	}
	return nil
}

func stringifyJSON(b *strings.Builder, j value.JSON) {
	switch {
	case j.IsNumber():
		writeJSONNumber(b, j.AsNumber())
	case j.IsString():
		writeJSONString(b, j.AsString())
	case j.IsBool():
		if j.AsBool() {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case j.IsNull():
		b.WriteString("null")
	case j.IsArray():
		b.WriteByte('[')
		for i, e := range j.AsArray() {
			if i > 0 {
				b.WriteByte(',')
			}
			stringifyJSON(b, e)
		}
		b.WriteByte(']')
	case j.IsObject():
		b.WriteByte('{')
		for i, k := range j.Keys() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, k)
			b.WriteByte(':')
			field, _ := j.Field(k)
			stringifyJSON(b, field)
		}
		b.WriteByte('}')
	default:
		b.WriteString("null")
	}
}

func writeJSONNumber(b *strings.Builder, n float64) {
	b.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

// jsonParser is a small hand-rolled recursive-descent JSON text parser,
// grounded on the same hand-written-scanner convention as lexer.lexString:
// Atlas never reaches for a regex/generated parser for text it has to walk
// byte by byte.
type jsonParser struct {
	src  string
	pos  int
	span source.Span
}

func (p *jsonParser) errf(code report.Code, format string, args ...any) error {
	return report.NewRuntimeError(code, p.span, format, args...)
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) parseValue(depth int) (value.JSON, error) {
	if depth > maxJSONDepth {
		return value.JSON{}, p.errf(report.ErrJSONTooDeep, "JSON nesting exceeds %d levels", maxJSONDepth)
	}
	p.skipSpace()
	if p.pos >= len(p.src) {
		return value.JSON{}, p.errf(report.ErrJSONParse, "unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject(depth)
	case c == '[':
		return p.parseArray(depth)
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return value.JSON{}, err
		}
		return value.JSONString(s), nil
	case c == 't':
		return p.parseLiteral("true", value.JSONBool(true))
	case c == 'f':
		return p.parseLiteral("false", value.JSONBool(false))
	case c == 'n':
		return p.parseLiteral("null", value.JSONNull())
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return value.JSON{}, p.errf(report.ErrJSONParse, "unexpected character %q at byte %d", c, p.pos)
	}
}

func (p *jsonParser) parseLiteral(lit string, v value.JSON) (value.JSON, error) {
	if p.pos+len(lit) > len(p.src) || p.src[p.pos:p.pos+len(lit)] != lit {
		return value.JSON{}, p.errf(report.ErrJSONParse, "invalid literal at byte %d", p.pos)
	}
	p.pos += len(lit)
	return v, nil
}

func (p *jsonParser) parseNumber() (value.JSON, error) {
	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	text := p.src[start:p.pos]
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return value.JSON{}, p.errf(report.ErrJSONParse, "invalid number %q", text)
	}
	return value.JSONNumber(n), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (p *jsonParser) parseString() (string, error) {
	if p.src[p.pos] != '"' {
		return "", p.errf(report.ErrJSONParse, "expected string at byte %d", p.pos)
	}
	p.pos++
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errf(report.ErrJSONParse, "unterminated string")
		}
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errf(report.ErrJSONParse, "unterminated escape")
			}
			switch e := p.src[p.pos]; e {
			case '"', '\\', '/':
				b.WriteByte(e)
				p.pos++
			case 'b':
				b.WriteByte('\b')
				p.pos++
			case 'f':
				b.WriteByte('\f')
				p.pos++
			case 'n':
				b.WriteByte('\n')
				p.pos++
			case 'r':
				b.WriteByte('\r')
				p.pos++
			case 't':
				b.WriteByte('\t')
				p.pos++
			case 'u':
				p.pos++
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
			default:
				return "", p.errf(report.ErrJSONParse, "invalid escape \\%c", e)
			}
			continue
		}
		r, sz := utf8.DecodeRuneInString(p.src[p.pos:])
		b.WriteRune(r)
		p.pos += sz
	}
}

func (p *jsonParser) parseUnicodeEscape() (rune, error) {
	first, err := p.readHex4()
	if err != nil {
		return 0, err
	}
	if utf16.IsSurrogate(rune(first)) && p.pos+1 < len(p.src) && p.src[p.pos] == '\\' && p.src[p.pos+1] == 'u' {
		p.pos += 2
		second, err := p.readHex4()
		if err != nil {
			return 0, err
		}
		combined := utf16.DecodeRune(rune(first), rune(second))
		if combined != utf8.RuneError {
			return combined, nil
		}
	}
	return rune(first), nil
}

func (p *jsonParser) readHex4() (uint16, error) {
	if p.pos+4 > len(p.src) {
		return 0, p.errf(report.ErrJSONParse, "invalid \\u escape: expected 4 hex digits")
	}
	var v uint16
	for i := 0; i < 4; i++ {
		c := p.src[p.pos+i]
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'f':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int(c-'A') + 10
		default:
			return 0, p.errf(report.ErrJSONParse, "invalid \\u escape: expected 4 hex digits")
		}
		v = v<<4 | uint16(d)
	}
	p.pos += 4
	return v, nil
}

func (p *jsonParser) parseArray(depth int) (value.JSON, error) {
	p.pos++ // consume '['
	var elems []value.JSON
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return value.JSONArray(elems), nil
	}
	for {
		v, err := p.parseValue(depth + 1)
		if err != nil {
			return value.JSON{}, err
		}
		elems = append(elems, v)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return value.JSON{}, p.errf(report.ErrJSONParse, "unterminated array")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == ']' {
			p.pos++
			return value.JSONArray(elems), nil
		}
		return value.JSON{}, p.errf(report.ErrJSONParse, "expected ',' or ']' at byte %d", p.pos)
	}
}

func (p *jsonParser) parseObject(depth int) (value.JSON, error) {
	p.pos++ // consume '{'
	var keys []string
	var vals []value.JSON
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return value.JSONObject(keys, vals), nil
	}
	for {
		p.skipSpace()
		key, err := p.parseString()
		if err != nil {
			return value.JSON{}, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return value.JSON{}, p.errf(report.ErrJSONParse, "expected ':' at byte %d", p.pos)
		}
		p.pos++
		v, err := p.parseValue(depth + 1)
		if err != nil {
			return value.JSON{}, err
		}
		keys = append(keys, key)
		vals = append(vals, v)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return value.JSON{}, p.errf(report.ErrJSONParse, "unterminated object")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == '}' {
			p.pos++
			return value.JSONObject(keys, vals), nil
		}
		return value.JSON{}, p.errf(report.ErrJSONParse, "expected ',' or '}' at byte %d", p.pos)
	}
}
