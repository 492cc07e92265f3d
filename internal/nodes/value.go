package nodes

import (
	"context"

	"github.com/portflow/portflow/internal/core/flow"
)

// TypeValue publishes a literal value.
const TypeValue = "value"

// ValueInputNode publishes a manually-entered value. The payload is
// exposed twice: as a scalar for value consumers and rendered as a byte
// stream for stream consumers (file writers, process stdin), since
// connectors never cross payload kinds.
type ValueInputNode struct {
	node   *flow.Node
	Input  *flow.Port
	Out    *flow.Port
	Stream *flow.Port
}

func NewValueInputNode() *ValueInputNode {
	n := flow.NewNode(TypeValue)
	v := &ValueInputNode{node: n}
	v.Input = n.AddValuePort("value", flow.RoleParameter).WithLiteral("")
	v.Out = n.AddValuePort("out", flow.RoleOutput)
	v.Stream = n.AddStreamPort("stream", flow.RoleOutput)
	n.OnRun(v.run)
	return v
}

func (v *ValueInputNode) Def() *flow.Node { return v.node }

func (v *ValueInputNode) run(_ context.Context) error {
	val := v.Input.Value()
	v.Out.SetValue(val)
	_, err := v.Stream.Stream().Write([]byte(asString(val)))
	return err
}
