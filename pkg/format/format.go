// Package format parses the kernel's self-describing trace event format
// files into structured event descriptors.
//
// Format files live under events/<group>/<name>/format in tracefs and
// look like this:
//
//	name: sched_switch
//	ID: 316
//	format:
//		field:unsigned short common_type;	offset:0;	size:2;	signed:0;
//		... (more common fields)
//
//		field:char prev_comm[16];	offset:8;	size:16;	signed:1;
//		... (more event fields)
//
//	print fmt: "prev_comm=%s ...", ...
package format

// EventFormat is the parsed descriptor of a single trace event: the
// kernel-assigned numeric id plus the ordered field layouts reported by
// the running kernel.
type EventFormat struct {
	Name         string
	ID           uint32
	Fields       []FieldFormat
	CommonFields []FieldFormat
}

// FieldFormat describes one field line from a format file.
type FieldFormat struct {
	// TypeAndName is the raw C declaration token, e.g. "char prev_comm[16]".
	TypeAndName string
	// Name is the field name extracted from TypeAndName.
	Name string
	// Type is the C type text with the name and any array suffix stripped,
	// e.g. "char" or "unsigned short".
	Type string
	// Offset and Size locate the field's bytes within a raw record.
	Offset uint16
	Size   uint16
	// Signed is the signed: attribute. Some older kernels omit it, in
	// which case it defaults to false.
	Signed bool
}
