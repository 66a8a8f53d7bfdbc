package format

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	nameRe  = regexp.MustCompile(`^name:[ \t]*(\w+)`)
	idRe    = regexp.MustCompile(`^ID:[ \t]*(\d+)`)
	fieldRe = regexp.MustCompile(`field:[ \t]*([^;]+);[ \t]*offset:[ \t]*(\d+);[ \t]*size:[ \t]*(\d+);[ \t]*(?:signed:[ \t]*(\d+);)?`)
)

type parseState int

const (
	stateName parseState = iota
	stateID
	stateFormat
	stateCommonFields
	stateFields
	stateDone
)

// ParseEvent parses the contents of a tracefs event format file.
//
// The parser walks the file as a line state machine: the name: line, the
// ID: line, the format: header, then two field blocks separated by a
// blank line (common header fields first, event fields second), and stops
// at the print fmt: line. Field declaration order is preserved.
func ParseEvent(text string) (*EventFormat, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))

	ef := &EventFormat{}
	state := stateName

scan:
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" && state != stateCommonFields {
			continue
		}

		switch state {
		case stateName:
			m := nameRe.FindStringSubmatch(trimmed)
			if m == nil {
				return nil, fmt.Errorf("expected name: line, got %q", line)
			}
			ef.Name = m[1]
			state = stateID
		case stateID:
			m := idRe.FindStringSubmatch(trimmed)
			if m == nil {
				return nil, fmt.Errorf("expected ID: line, got %q", line)
			}
			id, err := strconv.ParseUint(m[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("parsing event id: %w", err)
			}
			ef.ID = uint32(id)
			state = stateFormat
		case stateFormat:
			if trimmed != "format:" {
				return nil, fmt.Errorf("expected format: line, got %q", line)
			}
			state = stateCommonFields
		case stateCommonFields:
			// A blank line (or the first non-field line) ends the
			// common-field block.
			f, err := parseFieldLine(line)
			if err != nil {
				state = stateFields
				continue
			}
			ef.CommonFields = append(ef.CommonFields, f)
		case stateFields:
			// The print fmt: line ends the event-field block.
			f, err := parseFieldLine(line)
			if err != nil {
				state = stateDone
				continue
			}
			ef.Fields = append(ef.Fields, f)
		case stateDone:
			break scan
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading format text: %w", err)
	}
	if state < stateCommonFields {
		return nil, fmt.Errorf("truncated format text for event %q", ef.Name)
	}

	return ef, nil
}

func parseFieldLine(line string) (FieldFormat, error) {
	m := fieldRe.FindStringSubmatch(line)
	if m == nil {
		return FieldFormat{}, fmt.Errorf("not a field line: %q", line)
	}

	decl := strings.TrimSpace(m[1])
	typ, name, ok := SplitTypeAndName(decl)
	if !ok {
		return FieldFormat{}, fmt.Errorf("cannot split declaration %q", decl)
	}

	offset, err := strconv.ParseUint(m[2], 10, 16)
	if err != nil {
		return FieldFormat{}, fmt.Errorf("parsing offset for field %q: %w", name, err)
	}
	size, err := strconv.ParseUint(m[3], 10, 16)
	if err != nil {
		return FieldFormat{}, fmt.Errorf("parsing size for field %q: %w", name, err)
	}

	f := FieldFormat{
		TypeAndName: decl,
		Name:        name,
		Type:        typ,
		Offset:      uint16(offset),
		Size:        uint16(size),
	}

	// signed: is absent on some older kernels.
	if m[4] != "" {
		signed, err := strconv.ParseUint(m[4], 10, 8)
		if err != nil {
			return FieldFormat{}, fmt.Errorf("parsing signed for field %q: %w", name, err)
		}
		f.Signed = signed != 0
	}

	return f, nil
}

// SplitTypeAndName splits a C declaration token like
// "unsigned short common_type" or "char prev_comm[16]" into its type text
// and field name. An array suffix on the name is stripped; a length suffix
// attached to the type (as in "__data_loc char[] name") stays with the
// type.
func SplitTypeAndName(decl string) (typ, name string, ok bool) {
	s := strings.TrimSpace(decl)
	if i := strings.LastIndex(s, "["); i >= 0 && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[:i])
	}
	i := strings.LastIndexAny(s, " \t")
	if i < 0 {
		return "", "", false
	}
	name = s[i+1:]
	typ = strings.Join(strings.Fields(s[:i]), " ")
	if typ == "" || name == "" {
		return "", "", false
	}
	return typ, name, true
}
