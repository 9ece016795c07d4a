package safeconfig

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type held by a Value. The set is closed: decoding
// rejects kinds outside it rather than instantiating arbitrary types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindBytes
	KindTime
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Value is one tagged settings value, built through the constructors. The
// zero Value has KindInvalid and is what missing keys read back as.
type Value struct {
	kind Kind
	str  string
	num  int64
	fl   float64
	bl   bool
	bs   []byte
	tm   time.Time
	li   []Value
	mp   map[string]Value
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, num: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, fl: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, bl: b} }

// Bytes returns a byte sequence value. The slice is copied.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, bs: append([]byte(nil), b...)}
}

// Time returns a timestamp value. Instants are preserved to nanosecond
// precision; the zone is not stored.
func Time(t time.Time) Value { return Value{kind: KindTime, tm: t} }

// List returns a list value holding vs in order. The elements are copied.
func List(vs ...Value) Value {
	li := make([]Value, len(vs))
	copy(li, vs)
	return Value{kind: KindList, li: li}
}

// Map returns a map value holding m's entries. The map is copied.
func Map(m map[string]Value) Value {
	mp := make(map[string]Value, len(m))
	for k, v := range m {
		mp[k] = v
	}
	return Value{kind: KindMap, mp: mp}
}

// Kind returns the kind tag.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is the zero Value.
func (v Value) IsZero() bool { return v.kind == KindInvalid }

// Interface returns the held value as string, int64, float64, bool,
// []byte, time.Time, []Value, or map[string]Value. Slices and maps are
// copied. The zero Value returns nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.fl
	case KindBool:
		return v.bl
	case KindBytes:
		return append([]byte(nil), v.bs...)
	case KindTime:
		return v.tm
	case KindList:
		li := make([]Value, len(v.li))
		copy(li, v.li)
		return li
	case KindMap:
		mp := make(map[string]Value, len(v.mp))
		for k, e := range v.mp {
			mp[k] = e
		}
		return mp
	}
	return nil
}

// Equal reports whether v and o hold the same kind and contents. Times
// compare as instants, so the same moment in different zones is equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInvalid:
		return true
	case KindString:
		return v.str == o.str
	case KindInt:
		return v.num == o.num
	case KindFloat:
		return v.fl == o.fl
	case KindBool:
		return v.bl == o.bl
	case KindBytes:
		return bytes.Equal(v.bs, o.bs)
	case KindTime:
		return v.tm.Equal(o.tm)
	case KindList:
		if len(v.li) != len(o.li) {
			return false
		}
		for i := range v.li {
			if !v.li[i].Equal(o.li[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.mp) != len(o.mp) {
			return false
		}
		for k, e := range v.mp {
			oe, ok := o.mp[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders a short display form: quoted strings, base64 bytes,
// RFC 3339 times, bracketed lists, and maps with sorted keys.
func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "<invalid>"
	case KindString:
		return strconv.Quote(v.str)
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.fl, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.bl)
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.bs)
	case KindTime:
		return v.tm.Format(time.RFC3339Nano)
	case KindList:
		parts := make([]string, len(v.li))
		for i, e := range v.li {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		keys := make([]string, 0, len(v.mp))
		for k := range v.mp {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.mp[k].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "<" + v.kind.String() + ">"
}
