package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/atlas-lang/atlas/source"
)

// magic identifies an Atlas bytecode artifact on disk; version guards
// against a later change to the section layout below (spec.md §4/§3
// "the bytecode compiler consumes [typed AST] and produces an
// independently owned bytecode artifact").
var magic = [4]byte{'A', 'T', 'L', 'C'}

const artifactVersion byte = 1

// constTag identifies which Constant variant follows in the serialized
// constant-pool section.
type constTag byte

const (
	constTagNumber constTag = iota
	constTagStr
	constTagFunc
)

// Marshal serializes chunk (the top-level program chunk; nested FuncProto
// constants are written recursively) into a self-contained artifact:
// magic, version, then one section each for constants, code, and debug
// spans.
func Marshal(chunk *Chunk) []byte {
	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(artifactVersion)
	writeChunk(&buf, chunk)
	return buf.Bytes()
}

// Unmarshal parses an artifact produced by Marshal back into a Chunk.
func Unmarshal(data []byte) (*Chunk, error) {
	r := bytes.NewReader(data)
	var got [4]byte
	if _, err := r.Read(got[:]); err != nil || got != magic {
		return nil, fmt.Errorf("bytecode: not an Atlas artifact (bad magic)")
	}
	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("bytecode: truncated artifact header")
	}
	if version != artifactVersion {
		return nil, fmt.Errorf("bytecode: unsupported artifact version %d", version)
	}
	return readChunk(r)
}

func writeChunk(buf *bytes.Buffer, c *Chunk) {
	writeU32(buf, uint32(len(c.Constants)))
	for _, constant := range c.Constants {
		switch v := constant.(type) {
		case NumberConst:
			buf.WriteByte(byte(constTagNumber))
			writeU64(buf, math.Float64bits(float64(v)))
		case StrConst:
			buf.WriteByte(byte(constTagStr))
			writeString(buf, string(v))
		case *FuncProto:
			buf.WriteByte(byte(constTagFunc))
			writeString(buf, v.Name)
			writeU32(buf, uint32(v.Arity))
			writeU32(buf, uint32(v.NumLocals))
			writeU32(buf, uint32(len(v.FreeVars)))
			for _, fv := range v.FreeVars {
				writeString(buf, fv)
			}
			writeChunk(buf, v.Chunk)
		}
	}

	writeU32(buf, uint32(len(c.Code)))
	buf.Write(c.Code)

	var spans []struct {
		offset int
		span   source.Span
	}
	c.spans.Scan(func(offset int, span source.Span) bool {
		spans = append(spans, struct {
			offset int
			span   source.Span
		}{offset, span})
		return true
	})
	writeU32(buf, uint32(len(spans)))
	for _, s := range spans {
		writeU32(buf, uint32(s.offset))
		name := ""
		if s.span.File != nil {
			name = s.span.File.Name()
		}
		writeString(buf, name)
		writeU32(buf, uint32(s.span.Start))
		writeU32(buf, uint32(s.span.End))
		writeU32(buf, uint32(s.span.Line))
		writeU32(buf, uint32(s.span.Column))
	}
}

func readChunk(r *bytes.Reader) (*Chunk, error) {
	c := NewChunk()

	numConsts, err := readU32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < numConsts; i++ {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		switch constTag(tag) {
		case constTagNumber:
			bits, err := readU64(r)
			if err != nil {
				return nil, err
			}
			c.Constants = append(c.Constants, NumberConst(math.Float64frombits(bits)))
		case constTagStr:
			s, err := readString(r)
			if err != nil {
				return nil, err
			}
			c.Constants = append(c.Constants, StrConst(s))
		case constTagFunc:
			name, err := readString(r)
			if err != nil {
				return nil, err
			}
			arity, err := readU32(r)
			if err != nil {
				return nil, err
			}
			numLocals, err := readU32(r)
			if err != nil {
				return nil, err
			}
			numFree, err := readU32(r)
			if err != nil {
				return nil, err
			}
			freeVars := make([]string, numFree)
			for j := range freeVars {
				freeVars[j], err = readString(r)
				if err != nil {
					return nil, err
				}
			}
			nested, err := readChunk(r)
			if err != nil {
				return nil, err
			}
			c.Constants = append(c.Constants, &FuncProto{
				Name: name, Arity: int(arity), NumLocals: int(numLocals),
				FreeVars: freeVars, Chunk: nested,
			})
		default:
			return nil, fmt.Errorf("bytecode: unknown constant tag %d", tag)
		}
	}

	codeLen, err := readU32(r)
	if err != nil {
		return nil, err
	}
	code := make([]byte, codeLen)
	if _, err := r.Read(code); err != nil {
		return nil, err
	}
	c.Code = code

	numSpans, err := readU32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < numSpans; i++ {
		offset, err := readU32(r)
		if err != nil {
			return nil, err
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		start, err := readU32(r)
		if err != nil {
			return nil, err
		}
		end, err := readU32(r)
		if err != nil {
			return nil, err
		}
		line, err := readU32(r)
		if err != nil {
			return nil, err
		}
		col, err := readU32(r)
		if err != nil {
			return nil, err
		}
		// A deserialized artifact has no access to the original source
		// buffer, so the reconstructed File carries no Data; it exists only
		// to give the span a non-nil, named anchor for diagnostic text
		// ("file:line:column"), not for Text() snippet rendering.
		var file *source.File
		if name != "" {
			file = source.New(name, nil)
		}
		c.spans.Set(int(offset), source.Span{File: file, Start: int(start), End: int(end), Line: int(line), Column: int(col)})
	}

	return c, nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(b); err != nil {
			return "", err
		}
	}
	return string(b), nil
}
