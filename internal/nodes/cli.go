package nodes

import (
	"context"
	"io"
	"os"

	"github.com/portflow/portflow/internal/core/flow"
	"github.com/portflow/portflow/internal/infrastructure/telemetry"
)

// Type tags for the CLI node family.
const (
	TypeCLIParam = "cliparam"
	TypeStdin    = "stdin"
	TypeStdout   = "stdout"
)

// CLIParamNode reads one named command-line parameter from the run
// context (see WithParams), falling back to a literal default.
type CLIParamNode struct {
	node    *flow.Node
	Name    *flow.Port
	Default *flow.Port
	Out     *flow.Port
}

func NewCLIParamNode() *CLIParamNode {
	n := flow.NewNode(TypeCLIParam)
	c := &CLIParamNode{node: n}
	c.Name = n.AddValuePort("name", flow.RoleParameter).WithLiteral("")
	c.Default = n.AddValuePort("default", flow.RoleParameter).WithLiteral("")
	c.Out = n.AddValuePort("value", flow.RoleOutput)
	n.OnRun(c.run)
	return c
}

func (c *CLIParamNode) Def() *flow.Node { return c.node }

func (c *CLIParamNode) run(ctx context.Context) error {
	name := asString(c.Name.Value())
	if name == "" {
		return ErrMissingParamName
	}
	value, ok := ParamsFromContext(ctx)[name]
	if !ok || value == "" {
		value = asString(c.Default.Value())
	}
	telemetry.FromContext(ctx).Info("cli parameter", "name", name, "value", value)
	c.Out.SetValue(value)
	return nil
}

// StdinNode publishes the process standard input as a stream.
type StdinNode struct {
	node   *flow.Node
	Output *flow.Port

	// in is swappable for tests.
	in io.Reader
}

func NewStdinNode() *StdinNode {
	n := flow.NewNode(TypeStdin)
	s := &StdinNode{node: n, in: os.Stdin}
	s.Output = n.AddStreamPort("output", flow.RoleOutput)
	n.OnRun(s.run)
	return s
}

func (s *StdinNode) Def() *flow.Node { return s.node }

// SetReader overrides the input source.
func (s *StdinNode) SetReader(r io.Reader) { s.in = r }

func (s *StdinNode) run(_ context.Context) error {
	_, err := io.Copy(s.Output.Stream(), s.in)
	return err
}

// StdoutNode writes its input stream to the process standard output.
type StdoutNode struct {
	node  *flow.Node
	Input *flow.Port

	// out is swappable for tests.
	out io.Writer
}

func NewStdoutNode() *StdoutNode {
	n := flow.NewNode(TypeStdout)
	s := &StdoutNode{node: n, out: os.Stdout}
	s.Input = n.AddStreamPort("input", flow.RoleInput)
	n.OnRun(s.run)
	return s
}

func (s *StdoutNode) Def() *flow.Node { return s.node }

// SetWriter overrides the output sink.
func (s *StdoutNode) SetWriter(w io.Writer) { s.out = w }

func (s *StdoutNode) run(_ context.Context) error {
	r, err := s.Input.Stream().Open()
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(s.out, r)
	return err
}
