package translation

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/yairfalse/tracetab/pkg/format"
)

// FormatSource reads the kernel's self-describing format text for one
// trace event. An event that does not exist on the running kernel yields
// ("", nil), not an error; errors are reserved for real I/O failures.
// *tracefs.Tracefs satisfies this.
type FormatSource interface {
	ReadEventFormat(group, name string) (string, error)
}

// Builder reconciles a static event catalog against the formats the
// running kernel reports and produces the resulting Table.
//
// Construction is a single synchronous pass, run once at startup before
// any decoding begins. Events the kernel does not know and fields that
// cannot be matched or converted are dropped silently: the caller gets a
// table covering whatever subset of the catalog this kernel actually
// supports. Only a malformed catalog is an error.
type Builder struct {
	source FormatSource
	logger *zap.Logger

	eventsResolved metric.Int64Counter
	eventsDropped  metric.Int64Counter
	fieldsDropped  metric.Int64Counter
}

// NewBuilder creates a Builder reading formats from source.
func NewBuilder(source FormatSource, logger *zap.Logger) (*Builder, error) {
	if source == nil {
		return nil, errors.New("format source is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := otel.Meter("tracetab.translation")

	eventsResolved, err := meter.Int64Counter(
		"tracetab_events_resolved_total",
		metric.WithDescription("Catalog events resolved against the running kernel"),
	)
	if err != nil {
		logger.Warn("Failed to create events resolved counter", zap.Error(err))
	}
	eventsDropped, err := meter.Int64Counter(
		"tracetab_events_dropped_total",
		metric.WithDescription("Catalog events dropped during table construction"),
	)
	if err != nil {
		logger.Warn("Failed to create events dropped counter", zap.Error(err))
	}
	fieldsDropped, err := meter.Int64Counter(
		"tracetab_fields_dropped_total",
		metric.WithDescription("Catalog fields dropped during table construction"),
	)
	if err != nil {
		logger.Warn("Failed to create fields dropped counter", zap.Error(err))
	}

	return &Builder{
		source:         source,
		logger:         logger.Named("translation"),
		eventsResolved: eventsResolved,
		eventsDropped:  eventsDropped,
		fieldsDropped:  fieldsDropped,
	}, nil
}

// Build runs the reconciliation pass over the catalog, in catalog order,
// and returns the finished table.
//
// Per event: read the kernel's format text, parse it, take the kernel
// event id, then match each declared field by exact name against the
// kernel's fields (first match in kernel order wins), copy its offset
// and size, and resolve a conversion strategy. Unmatched and
// unconvertible fields are dropped; an event whose format is absent or
// unparseable is dropped whole. Common header fields are captured once,
// from the first format that parses, and assumed identical for every
// event. After the pass, events without a kernel id are discarded and
// the two indices are built.
//
// Build returns an error only for catalog precondition violations, which
// are defects in the compiled-in schema, not runtime conditions.
func (b *Builder) Build(ctx context.Context, catalog []Event) (*Table, error) {
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	var (
		common         []CommonField
		commonCaptured bool
		commonExtent   uint16
	)

	resolved := make([]Event, 0, len(catalog))
	for _, ev := range catalog {
		text, err := b.source.ReadEventFormat(ev.Group, ev.Name)
		if err != nil {
			b.dropEvent(ctx, ev, "read_failed", err)
			continue
		}
		if text == "" {
			b.dropEvent(ctx, ev, "absent", nil)
			continue
		}
		ef, err := format.ParseEvent(text)
		if err != nil {
			b.dropEvent(ctx, ev, "unparseable", err)
			continue
		}

		ev.KernelID = ef.ID

		var fieldsExtent uint16
		kept := make([]Field, 0, len(ev.Fields))
		for _, fld := range ev.Fields {
			kf, ok := findKernelField(ef.Fields, fld.KernelName)
			if !ok {
				b.dropField(ctx, ev, fld, "no_kernel_field")
				continue
			}
			fld.KernelOffset = kf.Offset
			fld.KernelSize = kf.Size
			fld.KernelType = InferKernelType(kf.Type, kf.Size, kf.Signed)

			strategy, ok := Resolve(fld.KernelType, fld.TargetType)
			if !ok {
				b.dropField(ctx, ev, fld, "unsupported_conversion")
				continue
			}
			fld.Strategy = strategy

			if end := fld.KernelOffset + fld.KernelSize; end > fieldsExtent {
				fieldsExtent = end
			}
			kept = append(kept, fld)
		}
		ev.Fields = kept

		// Common header fields are captured once, from the first format
		// that parses, and not re-checked against later events.
		if !commonCaptured {
			for _, cf := range ef.CommonFields {
				common = append(common, CommonField{Offset: cf.Offset, Size: cf.Size})
				if end := cf.Offset + cf.Size; end > commonExtent {
					commonExtent = end
				}
			}
			commonCaptured = true
		}

		ev.Size = max(fieldsExtent, commonExtent)
		resolved = append(resolved, ev)

		if b.eventsResolved != nil {
			b.eventsResolved.Add(ctx, 1)
		}
		b.logger.Debug("Resolved event",
			zap.String("group", ev.Group),
			zap.String("event", ev.Name),
			zap.Uint32("kernel_id", ev.KernelID),
			zap.Int("fields", len(ev.Fields)),
			zap.Uint16("size", ev.Size),
		)
	}

	// The zero-id checks repeat the drop conditions above; kept as a
	// final gate so nothing without both identities can enter an index.
	final := make([]Event, 0, len(resolved))
	for _, ev := range resolved {
		if ev.TargetID == 0 || ev.KernelID == 0 {
			continue
		}
		final = append(final, ev)
	}

	return newTable(final, common), nil
}

// findKernelField returns the first kernel field whose name equals name,
// in kernel-declared order. Matching is exact string equality; duplicate
// kernel field names (which a well-formed format file should not
// contain) resolve to the first occurrence.
func findKernelField(fields []format.FieldFormat, name string) (format.FieldFormat, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return format.FieldFormat{}, false
}

func (b *Builder) dropEvent(ctx context.Context, ev Event, reason string, err error) {
	if b.eventsDropped != nil {
		b.eventsDropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
	b.logger.Debug("Dropped event",
		zap.String("group", ev.Group),
		zap.String("event", ev.Name),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

func (b *Builder) dropField(ctx context.Context, ev Event, fld Field, reason string) {
	if b.fieldsDropped != nil {
		b.fieldsDropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
	b.logger.Debug("Dropped field",
		zap.String("group", ev.Group),
		zap.String("event", ev.Name),
		zap.String("field", fld.KernelName),
		zap.String("reason", reason),
	)
}

// ValidateCatalog checks the catalog preconditions: identity set, nothing
// runtime-resolved set. A violation is a programming error in the
// catalog itself, so Build refuses the whole catalog rather than
// skipping entries.
func ValidateCatalog(catalog []Event) error {
	for i := range catalog {
		ev := &catalog[i]
		if ev.Name == "" {
			return fmt.Errorf("catalog event %d: name is required", i)
		}
		if ev.Group == "" {
			return fmt.Errorf("catalog event %q: group is required", ev.Name)
		}
		if ev.TargetID == 0 {
			return fmt.Errorf("catalog event %q: target id must be non-zero", ev.Name)
		}
		if ev.KernelID != 0 {
			return fmt.Errorf("catalog event %q: kernel id must be unset before build", ev.Name)
		}
		if ev.Size != 0 {
			return fmt.Errorf("catalog event %q: size must be unset before build", ev.Name)
		}
		for j := range ev.Fields {
			fld := &ev.Fields[j]
			if fld.KernelName == "" {
				return fmt.Errorf("catalog event %q field %d: kernel name is required", ev.Name, j)
			}
			if fld.TargetID == 0 {
				return fmt.Errorf("catalog event %q field %q: target id must be non-zero", ev.Name, fld.KernelName)
			}
			if fld.TargetType == FieldTypeInvalid {
				return fmt.Errorf("catalog event %q field %q: target type is required", ev.Name, fld.KernelName)
			}
			if fld.KernelOffset != 0 || fld.KernelSize != 0 {
				return fmt.Errorf("catalog event %q field %q: kernel offset/size must be unset before build", ev.Name, fld.KernelName)
			}
			if fld.Strategy != StrategyInvalid {
				return fmt.Errorf("catalog event %q field %q: strategy must be unset before build", ev.Name, fld.KernelName)
			}
		}
	}
	return nil
}
