package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"folio/internal/organizer"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Move top-level files into subfolders",
	}
	cmd.AddCommand(newOrganizeTypeCommand(ctx))
	cmd.AddCommand(newOrganizeCategoryCommand(ctx))
	return cmd
}

func newOrganizeTypeCommand(ctx *commandContext) *cobra.Command {
	var commit bool

	cmd := &cobra.Command{
		Use:   "type [path]",
		Short: "Group files by uppercased extension (dry run unless --commit)",
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

			result, err := eng.OrganizeByType(cmd.Context(), path, !commit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printOrganizeResult(cmd, result.Path, result.Result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&commit, "commit", false, "Perform the moves instead of a dry run")
	return cmd
}

func newOrganizeCategoryCommand(ctx *commandContext) *cobra.Command {
	var commit bool
	var path string

	cmd := &cobra.Command{
		Use:   "category <description>",
		Short: "Group files matching a described category (dry run unless --commit)",
		Long: `Asks the configured classifier which top-level files belong to the
described category and moves the included ones into a folder named after the
description. Files the classifier excludes, or fails to mention, stay put.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := ctx.ensureOperations()
			if err != nil {
				return err
			}

			result, err := eng.OrganizeByCategory(cmd.Context(), path, args[0], !commit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category folder: %s\n", result.Category)
			printOrganizeResult(cmd, result.Path, result.Result)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Directory to organize (defaults to the first sandbox root)")
	cmd.Flags().BoolVar(&commit, "commit", false, "Perform the moves instead of a dry run")
	return cmd
}

func printOrganizeResult(cmd *cobra.Command, path string, result organizer.Result) {
	printApplyResult(cmd, path, result.Result)
	if len(result.CreatedFolders) > 0 {
		verb := "Created"
		if result.DryRun {
			verb = "Would create"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s folders: %v\n", verb, result.CreatedFolders)
	}
}
