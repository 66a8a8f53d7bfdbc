package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check which catalog events this kernel supports",
	Long: `Build the translation table and report, per catalog event, whether
the running kernel knows it and how many of its declared fields survived
matching and conversion.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	table, declared, source, err := buildTable(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "tracetab check\n")
	fmt.Fprintf(out, "  tracefs: %s\n", source.Root())

	resolved := 0
	for _, want := range declared {
		label := want.Group + "/" + want.Name
		ev, ok := table.EventByName(want.Name)
		if !ok {
			fmt.Fprintf(out, "  %-28s absent on this kernel\n", label)
			continue
		}
		resolved++
		if len(ev.Fields) == len(want.Fields) {
			fmt.Fprintf(out, "  %-28s ok (id=%d, %d/%d fields)\n",
				label, ev.KernelID, len(ev.Fields), len(want.Fields))
		} else {
			fmt.Fprintf(out, "  %-28s partial (id=%d, %d/%d fields)\n",
				label, ev.KernelID, len(ev.Fields), len(want.Fields))
		}
	}

	fmt.Fprintf(out, "Summary: %d/%d events resolved\n", resolved, len(declared))
	return nil
}
