package safeconfig

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// codecVersion tags the encoded payload inside the protected settings
// file. Decoding rejects other versions.
const codecVersion = 1

// Encoding is deterministic (sorted map keys); decoding is strict, since
// the input ultimately comes from disk: duplicate keys, indefinite
// lengths, bad UTF-8, and unknown fields all fail instead of being
// papered over.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("settings codec encode mode: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		UTF8:              cbor.UTF8RejectInvalid,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic("settings codec decode mode: " + err.Error())
	}
}

// Wire structures use integer CBOR keys for a compact, stable layout.
// Field numbers are append-only.
type wireFile struct {
	Version int                  `cbor:"1,keyasint"`
	Values  map[string]wireValue `cbor:"2,keyasint"`
}

type wireValue struct {
	Kind    uint8                `cbor:"1,keyasint"`
	Str     string               `cbor:"2,keyasint,omitempty"`
	Int     int64                `cbor:"3,keyasint,omitempty"`
	Float   float64              `cbor:"4,keyasint,omitempty"`
	Bool    bool                 `cbor:"5,keyasint,omitempty"`
	Bytes   []byte               `cbor:"6,keyasint,omitempty"`
	TimeSec int64                `cbor:"7,keyasint,omitempty"`
	TimeNS  int32                `cbor:"8,keyasint,omitempty"`
	List    []wireValue          `cbor:"9,keyasint,omitempty"`
	Map     map[string]wireValue `cbor:"10,keyasint,omitempty"`
}

// encodeSettings serializes the whole value map.
func encodeSettings(values map[string]Value) ([]byte, error) {
	f := wireFile{
		Version: codecVersion,
		Values:  make(map[string]wireValue, len(values)),
	}
	for k, v := range values {
		f.Values[k] = toWire(v)
	}
	data, err := encMode.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}

// decodeSettings reverses encodeSettings. Any undecodable input reports
// ErrCorrupt.
func decodeSettings(data []byte) (map[string]Value, error) {
	var f wireFile
	if err := decMode.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if f.Version != codecVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, f.Version)
	}
	values := make(map[string]Value, len(f.Values))
	for k, w := range f.Values {
		v, err := fromWire(w)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", ErrCorrupt, k, err)
		}
		values[k] = v
	}
	return values, nil
}

func toWire(v Value) wireValue {
	w := wireValue{Kind: uint8(v.kind)}
	switch v.kind {
	case KindString:
		w.Str = v.str
	case KindInt:
		w.Int = v.num
	case KindFloat:
		w.Float = v.fl
	case KindBool:
		w.Bool = v.bl
	case KindBytes:
		w.Bytes = v.bs
	case KindTime:
		// Split so the zero time and times before 1970 survive.
		w.TimeSec = v.tm.Unix()
		w.TimeNS = int32(v.tm.Nanosecond())
	case KindList:
		w.List = make([]wireValue, len(v.li))
		for i, e := range v.li {
			w.List[i] = toWire(e)
		}
	case KindMap:
		w.Map = make(map[string]wireValue, len(v.mp))
		for k, e := range v.mp {
			w.Map[k] = toWire(e)
		}
	}
	return w
}

func fromWire(w wireValue) (Value, error) {
	switch Kind(w.Kind) {
	case KindInvalid:
		return Value{}, nil
	case KindString:
		return String(w.Str), nil
	case KindInt:
		return Int(w.Int), nil
	case KindFloat:
		return Float(w.Float), nil
	case KindBool:
		return Bool(w.Bool), nil
	case KindBytes:
		return Bytes(w.Bytes), nil
	case KindTime:
		return Time(time.Unix(w.TimeSec, int64(w.TimeNS)).UTC()), nil
	case KindList:
		li := make([]Value, len(w.List))
		for i, e := range w.List {
			v, err := fromWire(e)
			if err != nil {
				return Value{}, err
			}
			li[i] = v
		}
		return Value{kind: KindList, li: li}, nil
	case KindMap:
		mp := make(map[string]Value, len(w.Map))
		for k, e := range w.Map {
			v, err := fromWire(e)
			if err != nil {
				return Value{}, err
			}
			mp[k] = v
		}
		return Value{kind: KindMap, mp: mp}, nil
	}
	return Value{}, fmt.Errorf("unknown value kind %d", w.Kind)
}
