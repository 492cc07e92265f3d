package nodes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/portflow/portflow/internal/core/flow"
	"github.com/portflow/portflow/internal/infrastructure/telemetry"
)

// TypeProcess runs a shell command with stdin/stdout/stderr wired to
// stream ports.
const TypeProcess = "process"

// ProcessNode executes a shell command. The command line is a literal
// parameter; standard input is an optional stream; standard output and
// error are published as streams and the exit code as the result.
type ProcessNode struct {
	node    *flow.Node
	Command *flow.Port
	Stdin   *flow.Port
	Stdout  *flow.Port
	Stderr  *flow.Port
	Result  *flow.Port
}

// NewProcessNode declares the node's ports and run function.
func NewProcessNode() *ProcessNode {
	n := flow.NewNode(TypeProcess)
	p := &ProcessNode{node: n}
	p.Command = n.AddValuePort("cmd", flow.RoleParameter).WithLiteral("")
	p.Stdin = n.AddStreamPort("stdin", flow.RoleInput)
	p.Stdin.SetSlot(false) // optional unless a connector feeds it
	p.Stdout = n.AddStreamPort("stdout", flow.RoleOutput)
	p.Stderr = n.AddStreamPort("stderr", flow.RoleOutput)
	p.Result = n.AddValuePort("result", flow.RoleResult)
	n.OnRun(p.run)
	return p
}

// Def returns the engine-side node.
func (p *ProcessNode) Def() *flow.Node { return p.node }

func (p *ProcessNode) run(ctx context.Context) error {
	cmdline := asString(p.Command.Value())
	if cmdline == "" {
		return ErrMissingCommand
	}
	telemetry.FromContext(ctx).Info("run command", "cmd", cmdline)

	stdin, err := p.openStdin()
	if err != nil {
		return err
	}
	defer stdin.Close()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", cmdline)
	cmd.Stdin = stdin
	cmd.Stdout = p.Stdout.Stream()
	cmd.Stderr = p.Stderr.Stream()

	runErr := cmd.Run()
	code := 0
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}
	p.Result.SetValue(code)

	// A nonzero exit code is a result, not a node failure; only failures
	// to launch or kill abort the node.
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return fmt.Errorf("run %q: %w", cmdline, runErr)
	}
	return nil
}

func (p *ProcessNode) openStdin() (io.ReadCloser, error) {
	s := p.Stdin.Stream()
	if s.Closed() {
		return s.Open()
	}
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
