package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/tracetab/pkg/translation"
)

var dumpJSON bool

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Build the translation table and print it",
	Long: `Build the translation table against the running kernel and print
every resolved event with its kernel id, record size, and per-field byte
layout and conversion strategy.`,
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpJSON, "json", false, "print the table as JSON")
}

func runDump(cmd *cobra.Command, args []string) error {
	table, _, source, err := buildTable(cmd)
	if err != nil {
		return err
	}

	if dumpJSON {
		return printJSON(cmd, table)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "tracefs: %s\n", source.Root())
	fmt.Fprintf(cmd.OutOrStdout(), "common fields:\n")
	for _, cf := range table.CommonFields() {
		fmt.Fprintf(cmd.OutOrStdout(), "  offset=%-3d size=%d\n", cf.Offset, cf.Size)
	}
	for _, ev := range table.Resolved() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s  kernel_id=%d target_id=%d size=%d\n",
			ev.Group, ev.Name, ev.KernelID, ev.TargetID, ev.Size)
		for _, fld := range ev.Fields {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-16s offset=%-3d size=%-3d target_id=%-2d %s\n",
				fld.KernelName, fld.KernelOffset, fld.KernelSize, fld.TargetID, fld.Strategy)
		}
	}
	return nil
}

type dumpField struct {
	KernelName string `json:"kernel_name"`
	TargetID   uint32 `json:"target_id"`
	TargetType string `json:"target_type"`
	Offset     uint16 `json:"offset"`
	Size       uint16 `json:"size"`
	Strategy   string `json:"strategy"`
}

type dumpEvent struct {
	Name     string      `json:"name"`
	Group    string      `json:"group"`
	KernelID uint32      `json:"kernel_id"`
	TargetID uint32      `json:"target_id"`
	Size     uint16      `json:"size"`
	Fields   []dumpField `json:"fields"`
}

type dumpTable struct {
	CommonFields []translation.CommonField `json:"common_fields"`
	Events       []dumpEvent               `json:"events"`
}

func printJSON(cmd *cobra.Command, table *translation.Table) error {
	out := dumpTable{CommonFields: table.CommonFields()}
	for _, ev := range table.Resolved() {
		de := dumpEvent{
			Name:     ev.Name,
			Group:    ev.Group,
			KernelID: ev.KernelID,
			TargetID: ev.TargetID,
			Size:     ev.Size,
		}
		for _, fld := range ev.Fields {
			de.Fields = append(de.Fields, dumpField{
				KernelName: fld.KernelName,
				TargetID:   fld.TargetID,
				TargetType: fld.TargetType.String(),
				Offset:     fld.KernelOffset,
				Size:       fld.KernelSize,
				Strategy:   fld.Strategy.String(),
			})
		}
		out.Events = append(out.Events, de)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
