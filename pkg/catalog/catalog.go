// Package catalog holds the static event schema: which kernel trace
// events we want mapped into the output schema, and onto which target
// ids and types. The builder reconciles this catalog against whatever
// the running kernel actually reports.
package catalog

import "github.com/yairfalse/tracetab/pkg/translation"

// Default returns the compiled-in catalog: the scheduler and task
// lifecycle events the decoder understands. Target ids are the output
// schema's field numbers and never change meaning between releases.
//
// The returned slice is freshly allocated; callers may hand it straight
// to the builder.
func Default() []translation.Event {
	return []translation.Event{
		{
			Name:     "sched_switch",
			Group:    "sched",
			TargetID: 1,
			Fields: []translation.Field{
				{KernelName: "prev_comm", TargetID: 1, TargetType: translation.FieldTypeString},
				{KernelName: "prev_pid", TargetID: 2, TargetType: translation.FieldTypeInt32},
				{KernelName: "prev_prio", TargetID: 3, TargetType: translation.FieldTypeInt32},
				{KernelName: "prev_state", TargetID: 4, TargetType: translation.FieldTypeInt64},
				{KernelName: "next_comm", TargetID: 5, TargetType: translation.FieldTypeString},
				{KernelName: "next_pid", TargetID: 6, TargetType: translation.FieldTypeInt32},
				{KernelName: "next_prio", TargetID: 7, TargetType: translation.FieldTypeInt32},
			},
		},
		{
			Name:     "sched_wakeup",
			Group:    "sched",
			TargetID: 2,
			Fields: []translation.Field{
				{KernelName: "comm", TargetID: 1, TargetType: translation.FieldTypeString},
				{KernelName: "pid", TargetID: 2, TargetType: translation.FieldTypeInt32},
				{KernelName: "prio", TargetID: 3, TargetType: translation.FieldTypeInt32},
				{KernelName: "target_cpu", TargetID: 4, TargetType: translation.FieldTypeInt32},
			},
		},
		{
			Name:     "sched_process_exit",
			Group:    "sched",
			TargetID: 3,
			Fields: []translation.Field{
				{KernelName: "comm", TargetID: 1, TargetType: translation.FieldTypeString},
				{KernelName: "pid", TargetID: 2, TargetType: translation.FieldTypeInt32},
				{KernelName: "prio", TargetID: 3, TargetType: translation.FieldTypeInt32},
			},
		},
		{
			Name:     "sched_process_fork",
			Group:    "sched",
			TargetID: 4,
			Fields: []translation.Field{
				{KernelName: "parent_comm", TargetID: 1, TargetType: translation.FieldTypeString},
				{KernelName: "parent_pid", TargetID: 2, TargetType: translation.FieldTypeInt32},
				{KernelName: "child_comm", TargetID: 3, TargetType: translation.FieldTypeString},
				{KernelName: "child_pid", TargetID: 4, TargetType: translation.FieldTypeInt32},
			},
		},
		{
			Name:     "task_newtask",
			Group:    "task",
			TargetID: 5,
			Fields: []translation.Field{
				{KernelName: "pid", TargetID: 1, TargetType: translation.FieldTypeInt32},
				{KernelName: "comm", TargetID: 2, TargetType: translation.FieldTypeString},
				{KernelName: "clone_flags", TargetID: 3, TargetType: translation.FieldTypeUint64},
				{KernelName: "oom_score_adj", TargetID: 4, TargetType: translation.FieldTypeInt32},
			},
		},
		{
			Name:     "task_rename",
			Group:    "task",
			TargetID: 6,
			Fields: []translation.Field{
				{KernelName: "pid", TargetID: 1, TargetType: translation.FieldTypeInt32},
				{KernelName: "oldcomm", TargetID: 2, TargetType: translation.FieldTypeString},
				{KernelName: "newcomm", TargetID: 3, TargetType: translation.FieldTypeString},
				{KernelName: "oom_score_adj", TargetID: 4, TargetType: translation.FieldTypeInt32},
			},
		},
	}
}
