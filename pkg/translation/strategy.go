package translation

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy is the resolved conversion that reads a typed value out of a
// raw byte range and emits it into the target schema. The set is closed:
// every supported (kernel type, target type) pair has exactly one entry.
type Strategy int

const (
	StrategyInvalid Strategy = iota
	StrategyUint8ToUint32
	StrategyUint16ToUint32
	StrategyUint32ToUint32
	StrategyUint8ToUint64
	StrategyUint16ToUint64
	StrategyUint32ToUint64
	StrategyUint64ToUint64
	StrategyInt8ToInt32
	StrategyInt16ToInt32
	StrategyInt32ToInt32
	StrategyInt8ToInt64
	StrategyInt16ToInt64
	StrategyInt32ToInt64
	StrategyInt64ToInt64
	StrategyFixedCStringToString
)

var strategyNames = map[Strategy]string{
	StrategyInvalid:              "invalid",
	StrategyUint8ToUint32:        "u8->uint32",
	StrategyUint16ToUint32:       "u16->uint32",
	StrategyUint32ToUint32:       "u32->uint32",
	StrategyUint8ToUint64:        "u8->uint64",
	StrategyUint16ToUint64:       "u16->uint64",
	StrategyUint32ToUint64:       "u32->uint64",
	StrategyUint64ToUint64:       "u64->uint64",
	StrategyInt8ToInt32:          "i8->int32",
	StrategyInt16ToInt32:         "i16->int32",
	StrategyInt32ToInt32:         "i32->int32",
	StrategyInt8ToInt64:          "i8->int64",
	StrategyInt16ToInt64:         "i16->int64",
	StrategyInt32ToInt64:         "i32->int64",
	StrategyInt64ToInt64:         "i64->int64",
	StrategyFixedCStringToString: "fixed-cstring->string",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Resolve reports the conversion for a (kernel type, target type) pair,
// or false if the pair is unsupported. It is a pure function over a
// finite pair space; unsupported pairs are a normal outcome and cause
// the field to be dropped from the table.
func Resolve(k KernelType, t FieldType) (Strategy, bool) {
	switch t {
	case FieldTypeUint32:
		switch k {
		case KernelTypeUint8:
			return StrategyUint8ToUint32, true
		case KernelTypeUint16:
			return StrategyUint16ToUint32, true
		case KernelTypeUint32:
			return StrategyUint32ToUint32, true
		}
	case FieldTypeUint64:
		switch k {
		case KernelTypeUint8:
			return StrategyUint8ToUint64, true
		case KernelTypeUint16:
			return StrategyUint16ToUint64, true
		case KernelTypeUint32:
			return StrategyUint32ToUint64, true
		case KernelTypeUint64:
			return StrategyUint64ToUint64, true
		}
	case FieldTypeInt32:
		switch k {
		case KernelTypeInt8:
			return StrategyInt8ToInt32, true
		case KernelTypeInt16:
			return StrategyInt16ToInt32, true
		case KernelTypeInt32:
			return StrategyInt32ToInt32, true
		}
	case FieldTypeInt64:
		switch k {
		case KernelTypeInt8:
			return StrategyInt8ToInt64, true
		case KernelTypeInt16:
			return StrategyInt16ToInt64, true
		case KernelTypeInt32:
			return StrategyInt32ToInt64, true
		case KernelTypeInt64:
			return StrategyInt64ToInt64, true
		}
	case FieldTypeString:
		if k == KernelTypeFixedCString {
			return StrategyFixedCStringToString, true
		}
	}
	return StrategyInvalid, false
}

var charWordRe = regexp.MustCompile(`\bchar\b`)

// InferKernelType classifies a kernel field from its C type text, byte
// size, and signedness.
//
// Fixed-length char arrays (size > 1) become KernelTypeFixedCString.
// Dynamic arrays (__data_loc) and pointers are not classifiable and
// yield KernelTypeInvalid, which no strategy accepts. Everything else is
// treated as a fixed-width integer keyed on size and signedness; a
// one-byte char lands there too, since single chars are commonly used as
// flag bytes rather than text.
func InferKernelType(ctype string, size uint16, signed bool) KernelType {
	if strings.HasPrefix(ctype, "__data_loc") || strings.Contains(ctype, "*") {
		return KernelTypeInvalid
	}
	if charWordRe.MatchString(ctype) && size > 1 {
		return KernelTypeFixedCString
	}
	if signed {
		switch size {
		case 1:
			return KernelTypeInt8
		case 2:
			return KernelTypeInt16
		case 4:
			return KernelTypeInt32
		case 8:
			return KernelTypeInt64
		}
	} else {
		switch size {
		case 1:
			return KernelTypeUint8
		case 2:
			return KernelTypeUint16
		case 4:
			return KernelTypeUint32
		case 8:
			return KernelTypeUint64
		}
	}
	return KernelTypeInvalid
}
