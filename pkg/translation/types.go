// Package translation builds the immutable table that maps kernel trace
// events onto the target output schema.
//
// The kernel describes its trace event layouts at runtime (field names,
// byte offsets, byte sizes vary across kernel versions and configs),
// while the output schema is compiled in. At startup the Builder
// reconciles the two into a Table that a decoder can consult for every
// raw record it pulls off the trace ring: which bytes belong to which
// target field, and which conversion re-encodes them.
package translation

import "fmt"

// FieldType identifies a field type in the target output schema.
type FieldType int

const (
	FieldTypeInvalid FieldType = iota
	FieldTypeUint32
	FieldTypeUint64
	FieldTypeInt32
	FieldTypeInt64
	FieldTypeString
)

var fieldTypeNames = map[FieldType]string{
	FieldTypeInvalid: "invalid",
	FieldTypeUint32:  "uint32",
	FieldTypeUint64:  "uint64",
	FieldTypeInt32:   "int32",
	FieldTypeInt64:   "int64",
	FieldTypeString:  "string",
}

func (t FieldType) String() string {
	if s, ok := fieldTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// ParseFieldType parses the string form used in catalog files.
func ParseFieldType(s string) (FieldType, error) {
	for t, name := range fieldTypeNames {
		if t != FieldTypeInvalid && name == s {
			return t, nil
		}
	}
	return FieldTypeInvalid, fmt.Errorf("unknown field type %q", s)
}

// KernelType classifies a kernel-reported field layout. It is inferred
// from the C type text, byte size, and signedness in the format file.
type KernelType int

const (
	KernelTypeInvalid KernelType = iota
	KernelTypeUint8
	KernelTypeUint16
	KernelTypeUint32
	KernelTypeUint64
	KernelTypeInt8
	KernelTypeInt16
	KernelTypeInt32
	KernelTypeInt64
	// KernelTypeFixedCString is a fixed-length char array such as
	// "char comm[16]". NUL-padded, not necessarily NUL-terminated.
	KernelTypeFixedCString
)

var kernelTypeNames = map[KernelType]string{
	KernelTypeInvalid:      "invalid",
	KernelTypeUint8:        "u8",
	KernelTypeUint16:       "u16",
	KernelTypeUint32:       "u32",
	KernelTypeUint64:       "u64",
	KernelTypeInt8:         "i8",
	KernelTypeInt16:        "i16",
	KernelTypeInt32:        "i32",
	KernelTypeInt64:        "i64",
	KernelTypeFixedCString: "fixed-cstring",
}

func (t KernelType) String() string {
	if s, ok := kernelTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("KernelType(%d)", int(t))
}

// Field maps one kernel-reported field onto a field of the target schema.
//
// A catalog declares only KernelName, TargetID, and TargetType. The
// remaining members are populated by the Builder and must be zero before
// the build runs.
type Field struct {
	// KernelName identifies the field in the kernel's format text.
	KernelName string
	// TargetID and TargetType identify the destination field in the
	// output schema.
	TargetID   uint32
	TargetType FieldType

	// KernelOffset and KernelSize locate the field's bytes within a raw
	// record, as reported by the running kernel.
	KernelOffset uint16
	KernelSize   uint16
	// KernelType is inferred from the kernel's C type text.
	KernelType KernelType
	// Strategy is the resolved conversion for this (kernel, target) pair.
	Strategy Strategy
}

// CommonField is a byte range present in every event's record header,
// independent of event type.
type CommonField struct {
	Offset uint16
	Size   uint16
}

// Event is one trace event type, keyed both by its static identity in
// the target schema (TargetID) and by the numeric id the running kernel
// assigned to it (KernelID, resolved by the Builder).
type Event struct {
	Name  string
	Group string
	// TargetID is the event's identity in the output schema. Required,
	// non-zero.
	TargetID uint32
	// KernelID is the kernel-assigned event id. Zero until the Builder
	// resolves it; an event only enters the table with a non-zero id.
	KernelID uint32
	// Fields holds the surviving mapped fields in catalog declaration
	// order.
	Fields []Field
	// Size is the total byte extent of a raw record for this event:
	// max(common header extent, max field offset+size).
	Size uint16
}
