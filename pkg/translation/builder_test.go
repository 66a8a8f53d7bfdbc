package translation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

// fakeSource serves format text from memory, keyed by "group/name".
// Missing entries behave like an absent event on the running kernel.
type fakeSource map[string]string

func (s fakeSource) ReadEventFormat(group, name string) (string, error) {
	return s[group+"/"+name], nil
}

type failingSource struct{ err error }

func (s failingSource) ReadEventFormat(group, name string) (string, error) {
	return "", s.err
}

const fakeSchedSwitch = `name: sched_switch
ID: 42
format:
	field:unsigned short common_type;	offset:0;	size:2;	signed:0;
	field:int common_pid;	offset:4;	size:4;	signed:1;

	field:char prev_comm[16];	offset:8;	size:16;	signed:1;
	field:pid_t next_pid;	offset:24;	size:4;	signed:1;
	field:int unrelated;	offset:28;	size:4;	signed:1;

print fmt: "prev_comm=%s next_pid=%d"
`

const fakeSchedSwitchNoNextPid = `name: sched_switch
ID: 42
format:
	field:unsigned short common_type;	offset:0;	size:2;	signed:0;
	field:int common_pid;	offset:4;	size:4;	signed:1;

	field:char prev_comm[16];	offset:8;	size:16;	signed:1;

print fmt: "prev_comm=%s"
`

const fakeSchedWakeup = `name: sched_wakeup
ID: 43
format:
	field:unsigned short common_type;	offset:0;	size:2;	signed:0;
	field:int common_pid;	offset:4;	size:4;	signed:1;

	field:pid_t pid;	offset:8;	size:4;	signed:1;

print fmt: "pid=%d"
`

func schedSwitchCatalog(t *testing.T) []Event {
	t.Helper()
	return []Event{
		{
			Name:     "sched_switch",
			Group:    "sched",
			TargetID: 5,
			Fields: []Field{
				{KernelName: "prev_comm", TargetID: 1, TargetType: FieldTypeString},
				{KernelName: "next_pid", TargetID: 2, TargetType: FieldTypeInt32},
			},
		},
	}
}

func newTestBuilder(t *testing.T, source FormatSource) *Builder {
	t.Helper()
	b, err := NewBuilder(source, zaptest.NewLogger(t))
	require.NoError(t, err)
	return b
}

func TestNewBuilderRequiresSource(t *testing.T) {
	_, err := NewBuilder(nil, nil)
	assert.Error(t, err)
}

func TestBuildFullMatch(t *testing.T) {
	source := fakeSource{"sched/sched_switch": fakeSchedSwitch}
	b := newTestBuilder(t, source)

	table, err := b.Build(context.Background(), schedSwitchCatalog(t))
	require.NoError(t, err)

	ev, ok := table.EventByID(42)
	require.True(t, ok)
	assert.Equal(t, uint32(42), ev.KernelID)
	assert.Equal(t, uint32(5), ev.TargetID)
	assert.Equal(t, uint16(28), ev.Size)

	require.Len(t, ev.Fields, 2)

	prevComm := ev.Fields[0]
	assert.Equal(t, "prev_comm", prevComm.KernelName)
	assert.Equal(t, uint16(8), prevComm.KernelOffset)
	assert.Equal(t, uint16(16), prevComm.KernelSize)
	assert.Equal(t, KernelTypeFixedCString, prevComm.KernelType)
	assert.Equal(t, StrategyFixedCStringToString, prevComm.Strategy)

	nextPid := ev.Fields[1]
	assert.Equal(t, "next_pid", nextPid.KernelName)
	assert.Equal(t, uint16(24), nextPid.KernelOffset)
	assert.Equal(t, uint16(4), nextPid.KernelSize)
	assert.Equal(t, KernelTypeInt32, nextPid.KernelType)
	assert.Equal(t, StrategyInt32ToInt32, nextPid.Strategy)

	// The kernel's unrelated field never appears.
	for _, fld := range ev.Fields {
		assert.NotEqual(t, "unrelated", fld.KernelName)
	}

	assert.Equal(t, []CommonField{{Offset: 0, Size: 2}, {Offset: 4, Size: 4}}, table.CommonFields())
}

func TestBuildMissingField(t *testing.T) {
	source := fakeSource{"sched/sched_switch": fakeSchedSwitchNoNextPid}
	b := newTestBuilder(t, source)

	table, err := b.Build(context.Background(), schedSwitchCatalog(t))
	require.NoError(t, err)

	ev, ok := table.EventByName("sched_switch")
	require.True(t, ok)
	require.Len(t, ev.Fields, 1)
	assert.Equal(t, "prev_comm", ev.Fields[0].KernelName)
	assert.Equal(t, uint16(24), ev.Size)
}

func TestBuildMissingEvent(t *testing.T) {
	// sched_switch is absent on this kernel; sched_wakeup is not.
	source := fakeSource{"sched/sched_wakeup": fakeSchedWakeup}
	catalog := append(schedSwitchCatalog(t), Event{
		Name:     "sched_wakeup",
		Group:    "sched",
		TargetID: 6,
		Fields: []Field{
			{KernelName: "pid", TargetID: 1, TargetType: FieldTypeInt32},
		},
	})
	b := newTestBuilder(t, source)

	table, err := b.Build(context.Background(), catalog)
	require.NoError(t, err)

	_, ok := table.EventByName("sched_switch")
	assert.False(t, ok)

	ev, ok := table.EventByName("sched_wakeup")
	require.True(t, ok)
	assert.Equal(t, uint32(43), ev.KernelID)
	require.Len(t, ev.Fields, 1)
}

func TestBuildUnsupportedConversion(t *testing.T) {
	source := fakeSource{"sched/sched_switch": fakeSchedSwitch}
	catalog := schedSwitchCatalog(t)
	// No strategy converts a 4-byte signed integer into a string.
	catalog[0].Fields[1].TargetType = FieldTypeString
	b := newTestBuilder(t, source)

	table, err := b.Build(context.Background(), catalog)
	require.NoError(t, err)

	ev, ok := table.EventByName("sched_switch")
	require.True(t, ok)
	require.Len(t, ev.Fields, 1)
	assert.Equal(t, "prev_comm", ev.Fields[0].KernelName)
	assert.Equal(t, uint16(24), ev.Size)
}

func TestBuildUnparseableFormat(t *testing.T) {
	source := fakeSource{"sched/sched_switch": "complete garbage\n"}
	b := newTestBuilder(t, source)

	table, err := b.Build(context.Background(), schedSwitchCatalog(t))
	require.NoError(t, err)

	_, ok := table.EventByName("sched_switch")
	assert.False(t, ok)
	assert.Empty(t, table.Resolved())
}

func TestBuildSourceReadError(t *testing.T) {
	// An I/O failure drops the event the same way absence does; Build
	// itself still succeeds.
	b := newTestBuilder(t, failingSource{err: errors.New("permission denied")})

	table, err := b.Build(context.Background(), schedSwitchCatalog(t))
	require.NoError(t, err)
	assert.Empty(t, table.Resolved())
}

func TestBuildEventWithZeroSurvivingFields(t *testing.T) {
	// Every declared field is unmatched, but the event itself survives
	// with a resolved kernel id and the common-header size.
	source := fakeSource{"sched/sched_switch": fakeSchedSwitch}
	catalog := []Event{{
		Name:     "sched_switch",
		Group:    "sched",
		TargetID: 5,
		Fields: []Field{
			{KernelName: "no_such_field", TargetID: 1, TargetType: FieldTypeInt32},
		},
	}}
	b := newTestBuilder(t, source)

	table, err := b.Build(context.Background(), catalog)
	require.NoError(t, err)

	ev, ok := table.EventByName("sched_switch")
	require.True(t, ok)
	assert.Empty(t, ev.Fields)
	assert.Equal(t, uint32(42), ev.KernelID)
	assert.Equal(t, uint16(8), ev.Size)
}

func TestBuildIndexIdentity(t *testing.T) {
	source := fakeSource{
		"sched/sched_switch": fakeSchedSwitch,
		"sched/sched_wakeup": fakeSchedWakeup,
	}
	catalog := append(schedSwitchCatalog(t), Event{
		Name:     "sched_wakeup",
		Group:    "sched",
		TargetID: 6,
		Fields: []Field{
			{KernelName: "pid", TargetID: 1, TargetType: FieldTypeInt32},
		},
	})
	b := newTestBuilder(t, source)

	table, err := b.Build(context.Background(), catalog)
	require.NoError(t, err)

	for _, name := range []string{"sched_switch", "sched_wakeup"} {
		byName, ok := table.EventByName(name)
		require.True(t, ok, name)
		byID, ok := table.EventByID(byName.KernelID)
		require.True(t, ok, name)
		assert.Same(t, byName, byID, "name and id index must reference the identical entry")
	}
}

func TestBuildDeterminism(t *testing.T) {
	source := fakeSource{
		"sched/sched_switch": fakeSchedSwitch,
		"sched/sched_wakeup": fakeSchedWakeup,
	}
	catalog := append(schedSwitchCatalog(t), Event{
		Name:     "sched_wakeup",
		Group:    "sched",
		TargetID: 6,
		Fields: []Field{
			{KernelName: "pid", TargetID: 1, TargetType: FieldTypeInt32},
		},
	})

	first, err := newTestBuilder(t, source).Build(context.Background(), catalog)
	require.NoError(t, err)
	second, err := newTestBuilder(t, source).Build(context.Background(), catalog)
	require.NoError(t, err)

	require.Equal(t, len(first.Resolved()), len(second.Resolved()))
	for i, ev := range first.Resolved() {
		assert.Equal(t, *ev, *second.Resolved()[i])
	}
	assert.Equal(t, first.CommonFields(), second.CommonFields())
	assert.Equal(t, first.LargestID(), second.LargestID())
}

func TestBuildDoesNotMutateCatalog(t *testing.T) {
	source := fakeSource{"sched/sched_switch": fakeSchedSwitch}
	catalog := schedSwitchCatalog(t)
	b := newTestBuilder(t, source)

	_, err := b.Build(context.Background(), catalog)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), catalog[0].KernelID)
	assert.Equal(t, uint16(0), catalog[0].Size)
	for _, fld := range catalog[0].Fields {
		assert.Equal(t, uint16(0), fld.KernelOffset)
		assert.Equal(t, uint16(0), fld.KernelSize)
		assert.Equal(t, StrategyInvalid, fld.Strategy)
	}
}

func TestValidateCatalog(t *testing.T) {
	valid := func() []Event { return schedSwitchCatalog(t) }

	tests := []struct {
		name   string
		mutate func([]Event)
	}{
		{name: "missing name", mutate: func(c []Event) { c[0].Name = "" }},
		{name: "missing group", mutate: func(c []Event) { c[0].Group = "" }},
		{name: "zero target id", mutate: func(c []Event) { c[0].TargetID = 0 }},
		{name: "kernel id preset", mutate: func(c []Event) { c[0].KernelID = 9 }},
		{name: "size preset", mutate: func(c []Event) { c[0].Size = 64 }},
		{name: "field missing kernel name", mutate: func(c []Event) { c[0].Fields[0].KernelName = "" }},
		{name: "field zero target id", mutate: func(c []Event) { c[0].Fields[0].TargetID = 0 }},
		{name: "field invalid target type", mutate: func(c []Event) { c[0].Fields[0].TargetType = FieldTypeInvalid }},
		{name: "field offset preset", mutate: func(c []Event) { c[0].Fields[0].KernelOffset = 8 }},
		{name: "field strategy preset", mutate: func(c []Event) { c[0].Fields[0].Strategy = StrategyInt32ToInt32 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := valid()
			tt.mutate(catalog)
			assert.Error(t, ValidateCatalog(catalog))

			b := newTestBuilder(t, fakeSource{})
			_, err := b.Build(context.Background(), catalog)
			assert.Error(t, err)
		})
	}

	assert.NoError(t, ValidateCatalog(valid()))
}

func TestBuildRecordsDropMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(sdkmetric.NewMeterProvider()) })

	source := fakeSource{"sched/sched_switch": fakeSchedSwitchNoNextPid}
	catalog := append(schedSwitchCatalog(t), Event{
		Name:     "missing_event",
		Group:    "sched",
		TargetID: 7,
	})

	b := newTestBuilder(t, source)
	_, err := b.Build(context.Background(), catalog)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
		}
	}
	assert.True(t, found["tracetab_events_resolved_total"])
	assert.True(t, found["tracetab_events_dropped_total"])
	assert.True(t, found["tracetab_fields_dropped_total"])
}
