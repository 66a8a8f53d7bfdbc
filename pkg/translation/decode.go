package translation

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Value is one decoded field of an output record. Exactly one of Uint,
// Int, or Str carries the value, selected by Type.
type Value struct {
	TargetID uint32
	Type     FieldType
	Uint     uint64
	Int      int64
	Str      string
}

// DecodeRecord applies each surviving field's resolved strategy to the
// raw record bytes and returns the values in field order. Records are
// little-endian, as the kernel writes them on every platform this runs
// on.
//
// raw must be at least ev.Size bytes; for events straight out of a
// Table that guarantees every field's byte range is in bounds.
func DecodeRecord(ev *Event, raw []byte) ([]Value, error) {
	if ev == nil {
		return nil, fmt.Errorf("nil event")
	}
	if len(raw) < int(ev.Size) {
		return nil, fmt.Errorf("record for event %q too short: %d bytes, need %d", ev.Name, len(raw), ev.Size)
	}

	values := make([]Value, 0, len(ev.Fields))
	for i := range ev.Fields {
		fld := &ev.Fields[i]
		b := raw[fld.KernelOffset : uint32(fld.KernelOffset)+uint32(fld.KernelSize)]
		v := Value{TargetID: fld.TargetID, Type: fld.TargetType}

		switch fld.Strategy {
		case StrategyUint8ToUint32, StrategyUint8ToUint64:
			v.Uint = uint64(b[0])
		case StrategyUint16ToUint32, StrategyUint16ToUint64:
			v.Uint = uint64(binary.LittleEndian.Uint16(b))
		case StrategyUint32ToUint32, StrategyUint32ToUint64:
			v.Uint = uint64(binary.LittleEndian.Uint32(b))
		case StrategyUint64ToUint64:
			v.Uint = binary.LittleEndian.Uint64(b)
		case StrategyInt8ToInt32, StrategyInt8ToInt64:
			v.Int = int64(int8(b[0]))
		case StrategyInt16ToInt32, StrategyInt16ToInt64:
			v.Int = int64(int16(binary.LittleEndian.Uint16(b)))
		case StrategyInt32ToInt32, StrategyInt32ToInt64:
			v.Int = int64(int32(binary.LittleEndian.Uint32(b)))
		case StrategyInt64ToInt64:
			v.Int = int64(binary.LittleEndian.Uint64(b))
		case StrategyFixedCStringToString:
			v.Str = cString(b)
		default:
			// Unreachable for builder-produced events.
			return nil, fmt.Errorf("event %q field %q: unresolved strategy", ev.Name, fld.KernelName)
		}
		values = append(values, v)
	}
	return values, nil
}

// cString interprets b as a NUL-padded fixed-length char array.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
