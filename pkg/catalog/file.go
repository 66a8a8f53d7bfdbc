package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yairfalse/tracetab/pkg/translation"
)

// fileCatalog is the YAML shape of a catalog file:
//
//	events:
//	  - name: sched_switch
//	    group: sched
//	    target_id: 1
//	    fields:
//	      - kernel_name: prev_comm
//	        target_id: 1
//	        type: string
type fileCatalog struct {
	Events []fileEvent `yaml:"events"`
}

type fileEvent struct {
	Name     string      `yaml:"name"`
	Group    string      `yaml:"group"`
	TargetID uint32      `yaml:"target_id"`
	Fields   []fileField `yaml:"fields"`
}

type fileField struct {
	KernelName string `yaml:"kernel_name"`
	TargetID   uint32 `yaml:"target_id"`
	Type       string `yaml:"type"`
}

// Load reads and validates a YAML catalog file.
func Load(path string) ([]translation.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	events, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return events, nil
}

// Parse decodes YAML catalog data and validates the builder
// preconditions, so a broken hand-written catalog fails here with file
// context instead of surfacing later as a build defect.
func Parse(data []byte) ([]translation.Event, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if len(fc.Events) == 0 {
		return nil, fmt.Errorf("catalog declares no events")
	}

	events := make([]translation.Event, 0, len(fc.Events))
	for _, fe := range fc.Events {
		ev := translation.Event{
			Name:     fe.Name,
			Group:    fe.Group,
			TargetID: fe.TargetID,
		}
		for _, ff := range fe.Fields {
			ft, err := translation.ParseFieldType(ff.Type)
			if err != nil {
				return nil, fmt.Errorf("event %q field %q: %w", fe.Name, ff.KernelName, err)
			}
			ev.Fields = append(ev.Fields, translation.Field{
				KernelName: ff.KernelName,
				TargetID:   ff.TargetID,
				TargetType: ft,
			})
		}
		events = append(events, ev)
	}

	if err := translation.ValidateCatalog(events); err != nil {
		return nil, err
	}
	return events, nil
}
