package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/portflow/portflow/internal/adapters/repository/postgres"
	"github.com/portflow/portflow/internal/core/flow"
	"github.com/portflow/portflow/internal/core/runner"
	"github.com/portflow/portflow/internal/infrastructure/telemetry"
	"github.com/portflow/portflow/internal/nodes"
	"github.com/portflow/portflow/pkg/portflow"
	"github.com/portflow/portflow/pkg/validation"
)

func newRunCmd() *cobra.Command {
	var params []string
	var logDB string
	var noValidate bool

	cmd := &cobra.Command{
		Use:   "run <flow-file>",
		Short: "Execute a flow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := portflow.NewRuntime()
			f, err := rt.LoadFile(args[0])
			if err != nil {
				return err
			}

			paramMap, err := parseParams(params)
			if err != nil {
				return err
			}

			cfg := runner.DefaultConfig()
			if noValidate {
				cfg.ValidateFlow = false
			}

			ctx := nodes.WithParams(cmd.Context(), paramMap)
			report, err := runner.NewRunner(f, cfg).Start(ctx)
			if err != nil {
				return err
			}

			if logDB != "" {
				if err := saveRunLog(cmd, logDB, args[0], report); err != nil {
					// Run log persistence is best-effort; the run itself
					// already completed.
					telemetry.FromContext(cmd.Context()).Error("save run log", "error", err)
				}
			}

			printReport(cmd, report)
			if !report.OK() {
				return fmt.Errorf("run %s finished with failures", report.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "Flow parameter as name=value (repeatable)")
	cmd.Flags().StringVar(&logDB, "log-db", os.Getenv("PORTFLOW_LOG_DB"), "PostgreSQL connection string for run history")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip upfront flow validation")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <flow-file>",
		Short: "Check a flow file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := portflow.NewRuntime()
			f, err := rt.LoadFile(args[0])
			if err != nil {
				return err
			}
			opts := validation.FlowValidationOptions{CheckCycles: true, CheckConnections: true}
			if err := validation.ValidateFlow(f, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d nodes)\n", args[0], len(f.Nodes()))
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <flow-file>",
		Short: "Print the structure of a flow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := portflow.NewRuntime()
			f, err := rt.LoadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range f.Nodes() {
				fmt.Fprintf(out, "%s (%s)\n", n.ID(), n.Type())
				for _, p := range n.Ports() {
					describePort(out, p)
				}
			}
			var starts []string
			for _, n := range f.StartNodes() {
				starts = append(starts, n.ID())
			}
			fmt.Fprintf(out, "start nodes: %s\n", strings.Join(starts, ", "))
			return nil
		},
	}
}

func describePort(out io.Writer, p *flow.Port) {
	var attrs []string
	if p.IsInput() && p.Kind() == flow.KindValue && !p.Slot() {
		attrs = append(attrs, fmt.Sprintf("literal=%v", p.Value()))
	}
	for _, succ := range p.Successors() {
		attrs = append(attrs, "-> "+succ.FullName())
	}
	suffix := ""
	if len(attrs) > 0 {
		suffix = "  " + strings.Join(attrs, "  ")
	}
	fmt.Fprintf(out, "  %s %s/%s%s\n", p.Name(), p.Role(), p.Kind(), suffix)
}

func printReport(cmd *cobra.Command, report *runner.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %s\n", report.RunID, report.Duration())
	for _, res := range report.Results {
		line := fmt.Sprintf("  %-20s %s", res.NodeID, res.State)
		if res.Err != nil {
			line += "  " + res.Err.Error()
		}
		fmt.Fprintln(out, line)
	}
}

func saveRunLog(cmd *cobra.Command, connString, flowName string, report *runner.Report) error {
	saver, err := postgres.Connect(cmd.Context(), connString)
	if err != nil {
		return err
	}
	defer saver.Close()
	return saver.SaveReport(cmd.Context(), flowName, report)
}

func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}
		params[name] = value
	}
	return params, nil
}
