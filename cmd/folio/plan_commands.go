package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"folio/internal/plan"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "plan [path]",
		Short: "Propose normalized names for every visible entry",
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

			result, err := eng.PlanAlpha(cmd.Context(), path)
			if err != nil {
				return err
			}

			if output != "" {
				encoded, err := json.MarshalIndent(result.Plan, "", "  ")
				if err != nil {
					return fmt.Errorf("encode plan: %w", err)
				}
				if err := os.WriteFile(output, append(encoded, '\n'), 0o644); err != nil {
					return fmt.Errorf("write plan: %w", err)
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(result.Plan.Items))
			for _, item := range result.Plan.Items {
				proposed := item.ProposedName
				if !item.NeedsChange {
					proposed = "(unchanged)"
				}
				rows = append(rows, []string{item.CurrentName, proposed, string(item.Kind)})
			}
			fmt.Fprintln(out, result.Plan.Path)
			fmt.Fprintln(out, renderTable(
				[]string{"Current", "Proposed", "Kind"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d of %d entries would be renamed.\n", result.Plan.Changes(), len(result.Plan.Items))
			if result.Plan.Changes() > 0 && stdoutIsTerminal() {
				fmt.Fprintln(out, "Run `folio apply --commit` to perform these renames.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the plan as JSON to this file")
	return cmd
}

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var planPath string
	var commit bool

	cmd := &cobra.Command{
		Use:   "apply [path]",
		Short: "Validate and execute a rename plan (dry run unless --commit)",
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

			var items []plan.Item
			if strings.TrimSpace(planPath) != "" {
				document, err := readPlanDocument(planPath)
				if err != nil {
					return err
				}
				items = document.Items
				if path == "" {
					path = document.Path
				}
			} else {
				generated, err := eng.PlanAlpha(cmd.Context(), path)
				if err != nil {
					return err
				}
				items = generated.Plan.Items
			}

			result, err := eng.ApplyPlan(cmd.Context(), path, items, !commit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printApplyResult(cmd, result.Path, result.Result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "Apply a previously saved plan file instead of generating one")
	cmd.Flags().BoolVar(&commit, "commit", false, "Perform the renames instead of a dry run")
	return cmd
}

func readPlanDocument(path string) (plan.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return plan.Document{}, fmt.Errorf("read plan file: %w", err)
	}
	var document plan.Document
	if err := json.Unmarshal(raw, &document); err != nil {
		return plan.Document{}, fmt.Errorf("parse plan file: %w", err)
	}
	return document, nil
}

func printApplyResult(cmd *cobra.Command, path string, result plan.Result) {
	out := cmd.OutOrStdout()
	mode := "committed"
	if result.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(out, "%s (%s)\n", path, mode)

	rows := make([][]string, 0, result.Total())
	for _, item := range result.Applied {
		rows = append(rows, []string{item.From, item.To, "applied", ""})
	}
	for _, item := range result.Skipped {
		rows = append(rows, []string{item.Name, "", "skipped", item.Reason})
	}
	for _, item := range result.Errors {
		rows = append(rows, []string{item.Name, item.Proposed, item.ErrorType, item.Reason})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Name", "Target", "Outcome", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "%d applied, %d skipped, %d failed.\n",
		len(result.Applied), len(result.Skipped), len(result.Errors))
}
