package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDuplicatesCommand(ctx *commandContext) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "duplicates [path]",
		Short: "Find byte-identical files and the space they waste",
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

			result, err := eng.FindDuplicates(cmd.Context(), path, recursive)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if len(result.Groups) == 0 {
				fmt.Fprintln(out, "No duplicates found.")
				return nil
			}

			var totalWasted int64
			for i, group := range result.Groups {
				totalWasted += group.WastedBytes
				fmt.Fprintf(out, "Group %d  (%s wasted, hash %.12s)\n", i+1, formatSize(group.WastedBytes), group.ContentHash)
				rows := make([][]string, 0, len(group.Members))
				for _, member := range group.Members {
					rows = append(rows, []string{
						member.Name,
						formatSize(member.Size),
						member.ModifiedAt.Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Name", "Size", "Modified"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
			}
			fmt.Fprintf(out, "%d group(s), %s reclaimable.\n", len(result.Groups), formatSize(totalWasted))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into visible subdirectories")
	return cmd
}
