package value

import "strings"

// JSON is the deeply immutable tagged tree from spec.md §3: number, string,
// bool, null, array, or an ordered key→value object. It is its own Value
// kind, distinct from Array/Str/etc., because spec.md §3 makes JsonValue
// "deliberately non-assignable to primitive types" — converting between the
// two families is an explicit stdlib operation, never an implicit coercion
// (spec.md §1 Non-goals: "implicit type coercion of any kind").
type JSON struct {
	tag      jsonTag
	num      float64
	str      string
	boolean  bool
	arr      []JSON
	obj      []jsonField
}

type jsonTag int

const (
	jsonNumber jsonTag = iota
	jsonString
	jsonBool
	jsonNull
	jsonArray
	jsonObject
)

type jsonField struct {
	Key   string
	Value JSON
}

func (JSON) valueKind() Kind { return KindJSON }

func JSONNumber(n float64) JSON { return JSON{tag: jsonNumber, num: n} }
func JSONString(s string) JSON  { return JSON{tag: jsonString, str: s} }
func JSONBool(b bool) JSON      { return JSON{tag: jsonBool, boolean: b} }
func JSONNull() JSON            { return JSON{tag: jsonNull} }
func JSONArray(elems []JSON) JSON {
	return JSON{tag: jsonArray, arr: elems}
}

// JSONObject builds an object preserving the given key order, as JSON
// objects in this model are ordered maps (spec.md §3 "object is an ordered
// key→value map"), not sorted ones — this is why it is a slice of pairs
// here rather than built atop the sorted tidwall/btree map used elsewhere
// in the tree (bytecode's debug-span table), which would
// silently reorder keys.
func JSONObject(keys []string, values []JSON) JSON {
	fields := make([]jsonField, len(keys))
	for i := range keys {
		fields[i] = jsonField{Key: keys[i], Value: values[i]}
	}
	return JSON{tag: jsonObject, obj: fields}
}

func (j JSON) IsNumber() bool { return j.tag == jsonNumber }
func (j JSON) IsString() bool { return j.tag == jsonString }
func (j JSON) IsBool() bool   { return j.tag == jsonBool }
func (j JSON) IsNull() bool   { return j.tag == jsonNull }
func (j JSON) IsArray() bool  { return j.tag == jsonArray }
func (j JSON) IsObject() bool { return j.tag == jsonObject }

func (j JSON) AsNumber() float64 { return j.num }
func (j JSON) AsString() string  { return j.str }
func (j JSON) AsBool() bool      { return j.boolean }
func (j JSON) AsArray() []JSON   { return j.arr }

// Field looks up a key in an object-tagged JSON, returning (value, found).
func (j JSON) Field(key string) (JSON, bool) {
	for _, f := range j.obj {
		if f.Key == key {
			return f.Value, true
		}
	}
	return JSON{}, false
}

// Keys returns an object's field names in insertion order.
func (j JSON) Keys() []string {
	keys := make([]string, len(j.obj))
	for i, f := range j.obj {
		keys[i] = f.Key
	}
	return keys
}

// Depth returns the tree's nesting depth, used to enforce the "deeply
// nested JSON (>128 levels) -> AT0110" boundary in spec.md §8.
func (j JSON) Depth() int {
	switch j.tag {
	case jsonArray:
		max := 0
		for _, e := range j.arr {
			if d := e.Depth(); d > max {
				max = d
			}
		}
		return max + 1
	case jsonObject:
		max := 0
		for _, f := range j.obj {
			if d := f.Value.Depth(); d > max {
				max = d
			}
		}
		return max + 1
	default:
		return 1
	}
}

func (j JSON) String() string {
	switch j.tag {
	case jsonNumber:
		return Number(j.num).String()
	case jsonString:
		return `"` + j.str + `"`
	case jsonBool:
		return Bool(j.boolean).String()
	case jsonNull:
		return "null"
	case jsonArray:
		parts := make([]string, len(j.arr))
		for i, e := range j.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case jsonObject:
		parts := make([]string, len(j.obj))
		for i, f := range j.obj {
			parts[i] = `"` + f.Key + `": ` + f.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "null"
	}
}

// JSONDeepEqual implements spec.md §3 "JsonValue by deep structural
// equality". Object field order does not affect equality: two objects with
// the same keys and values in a different order are equal, matching how
// the testable JSON round-trip property in spec.md §8 is phrased
// structurally rather than byte-for-byte.
func JSONDeepEqual(a, b JSON) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case jsonNumber:
		return a.num == b.num
	case jsonString:
		return a.str == b.str
	case jsonBool:
		return a.boolean == b.boolean
	case jsonNull:
		return true
	case jsonArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !JSONDeepEqual(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case jsonObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for _, fa := range a.obj {
			fb, ok := b.Field(fa.Key)
			if !ok || !JSONDeepEqual(fa.Value, fb) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
