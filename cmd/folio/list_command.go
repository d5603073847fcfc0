package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"folio/internal/lister"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list [path]",
		Short: "List the visible entries of a sandboxed directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := ctx.ensureOperations()
			if err != nil {
				return err
			}
			path := ""
			if len(args) > 0 {
				path = args[0]
			}

			result, err := eng.List(cmd.Context(), path)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}

			rows := make([][]string, 0, len(result.Entries))
			for _, entry := range result.Entries {
				size := ""
				if entry.Kind == lister.KindFile {
					size = formatSize(entry.Size)
				}
				rows = append(rows, []string{
					entry.Name,
					string(entry.Kind),
					size,
					entry.ModifiedAt.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Path)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Kind", "Size", "Modified"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
