package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"folio/internal/ipc"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Inspect and control a running foliod",
	}
	cmd.AddCommand(newDaemonStatusCommand(ctx))
	cmd.AddCommand(newDaemonStopCommand(ctx))
	return cmd
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, status)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Running: %s (pid %d)\n", yesNo(status.Running), status.PID)
				fmt.Fprintf(out, "Socket:  %s\n", status.SocketPath)
				fmt.Fprintf(out, "Audit:   %s\n", yesNo(status.AuditEnabled))
				fmt.Fprintln(out, "Roots:")
				for _, root := range status.Roots {
					fmt.Fprintf(out, "  %s\n", root)
				}
				return nil
			})
		},
	}
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Ask the daemon to shut down",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Shutdown()
				if err != nil {
					return err
				}
				if !resp.Stopping {
					return fmt.Errorf("daemon refused the shutdown request")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Shutdown requested.")
				return nil
			})
		},
	}
}
