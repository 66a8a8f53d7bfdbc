package translation

// Table is the read-only result of a build: the resolved events indexed
// both by kernel-assigned id and by name, plus the common header fields
// shared by every event.
//
// The by-id index is a dense slice sized largest id + 1; unused slots
// hold zero-valued Events. The name index stores positions in that slice
// rather than pointers, so both indices always resolve to the identical
// entry. A Table is immutable after construction and safe for
// unsynchronized concurrent readers; callers must not modify anything
// reachable from the accessors.
type Table struct {
	events    []Event
	byName    map[string]uint32
	common    []CommonField
	largestID uint32
}

func newTable(events []Event, common []CommonField) *Table {
	var largest uint32
	for i := range events {
		if events[i].KernelID > largest {
			largest = events[i].KernelID
		}
	}

	t := &Table{
		byName:    make(map[string]uint32, len(events)),
		common:    common,
		largestID: largest,
	}
	if len(events) == 0 {
		return t
	}

	t.events = make([]Event, largest+1)
	for i := range events {
		t.events[events[i].KernelID] = events[i]
	}
	for i := range events {
		t.byName[events[i].Name] = events[i].KernelID
	}
	return t
}

// EventByID returns the event the kernel reports under id. The lookup is
// a bounds-checked slice index; out-of-range ids and unused slots return
// false.
func (t *Table) EventByID(id uint32) (*Event, bool) {
	if id >= uint32(len(t.events)) {
		return nil, false
	}
	ev := &t.events[id]
	if ev.KernelID == 0 {
		return nil, false
	}
	return ev, true
}

// EventByName returns the event with the given catalog name.
func (t *Table) EventByName(name string) (*Event, bool) {
	id, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return &t.events[id], true
}

// CommonFields returns the header byte ranges present in every event's
// record, captured from the first event format the kernel reported.
func (t *Table) CommonFields() []CommonField {
	return t.common
}

// LargestID returns the largest kernel event id in the table.
func (t *Table) LargestID() uint32 {
	return t.largestID
}

// Resolved returns the resolved events in ascending kernel-id order,
// skipping unused slots.
func (t *Table) Resolved() []*Event {
	out := make([]*Event, 0, len(t.byName))
	for i := range t.events {
		if t.events[i].KernelID != 0 {
			out = append(out, &t.events[i])
		}
	}
	return out
}
