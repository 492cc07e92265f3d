// Package serialization converts flows to and from their persisted forms:
// an XML document for files and a codec/compression pipeline for binary
// snapshots stored in repositories.
package serialization

import (
	"encoding/xml"
	"fmt"

	"github.com/portflow/portflow/internal/core/flow"
	"github.com/portflow/portflow/pkg/validation"
)

// NodeFactory instantiates nodes by persisted type tag. Satisfied by
// nodes.Registry.
type NodeFactory interface {
	New(typeTag string) (*flow.Node, error)
}

// Document is the root of the persisted flow format.
type Document struct {
	XMLName xml.Name     `xml:"flow" json:"-" msgpack:"-"`
	Nodes   []NodeRecord `xml:"node" validate:"dive"`
}

// NodeRecord persists one node: identity, type tag, editor properties,
// and per-port records.
type NodeRecord struct {
	ID    string           `xml:"id,attr" validate:"required,node_id"`
	Type  string           `xml:"type,attr" validate:"required,type_tag"`
	Props []PropertyRecord `xml:"property" validate:"dive"`
	Ports []PortRecord     `xml:"interface" validate:"dive"`
}

// PropertyRecord persists one editor/layout key-value pair.
type PropertyRecord struct {
	Name  string `xml:"name,attr" validate:"required"`
	Value string `xml:"value,attr"`
}

// PortRecord persists one port. Slot and Value are present only for
// input-like value ports; Value only when the port is literal-fed.
type PortRecord struct {
	Name       string            `xml:"name,attr" validate:"required,port_name"`
	Slot       *bool             `xml:"slot,attr,omitempty"`
	Value      *string           `xml:"value,attr,omitempty"`
	Successors []SuccessorRecord `xml:"successor" validate:"dive"`
}

// SuccessorRecord persists one connector endpoint by node id and port name.
type SuccessorRecord struct {
	Node string `xml:"node,attr" validate:"required,node_id"`
	Port string `xml:"interface,attr" validate:"required,port_name"`
}

// BuildDocument projects a flow into its persisted document form. Empty
// property and successor collections are omitted.
func BuildDocument(f *flow.Flow) *Document {
	doc := &Document{}
	for _, n := range f.Nodes() {
		rec := NodeRecord{ID: n.ID(), Type: n.Type()}
		for name, value := range n.Props() {
			rec.Props = append(rec.Props, PropertyRecord{Name: name, Value: value})
		}
		sortProps(rec.Props)
		for _, p := range n.Ports() {
			pr := PortRecord{Name: p.Name()}
			if p.IsInput() && p.Kind() == flow.KindValue {
				slot := p.Slot()
				pr.Slot = &slot
				if !slot {
					val := literalString(p.Value())
					pr.Value = &val
				}
			}
			for _, succ := range p.Successors() {
				pr.Successors = append(pr.Successors, SuccessorRecord{
					Node: succ.Node().ID(),
					Port: succ.Name(),
				})
			}
			rec.Ports = append(rec.Ports, pr)
		}
		doc.Nodes = append(doc.Nodes, rec)
	}
	return doc
}

// InstantiateDocument rebuilds a flow from its document form. Loading is
// two-pass: all nodes are instantiated before any connector is resolved,
// so successor references can never point at a missing node.
func InstantiateDocument(doc *Document, factory NodeFactory) (*flow.Flow, error) {
	if err := validation.ValidateStruct(doc); err != nil {
		return nil, fmt.Errorf("invalid flow document: %w", err)
	}

	f := flow.New()

	// Pass 1: instantiate nodes, restore properties and literals.
	for _, rec := range doc.Nodes {
		n, err := factory.New(rec.Type)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", rec.ID, err)
		}
		n.SetID(rec.ID)
		for _, prop := range rec.Props {
			n.Props()[prop.Name] = prop.Value
		}
		for _, pr := range rec.Ports {
			p, err := n.FindPort(pr.Name)
			if err != nil {
				return nil, err
			}
			if p.IsInput() && p.Kind() == flow.KindValue && pr.Slot != nil {
				p.SetSlot(*pr.Slot)
				if !*pr.Slot && pr.Value != nil {
					p.SetValue(*pr.Value)
				}
			}
		}
		if err := f.AddNode(n); err != nil {
			return nil, err
		}
	}

	// Pass 2: re-establish connectors by name lookup.
	for _, rec := range doc.Nodes {
		src, err := f.FindNode(rec.ID)
		if err != nil {
			return nil, err
		}
		for _, pr := range rec.Ports {
			srcPort, err := src.FindPort(pr.Name)
			if err != nil {
				return nil, err
			}
			for _, succ := range pr.Successors {
				dst, err := f.FindNode(succ.Node)
				if err != nil {
					return nil, err
				}
				dstPort, err := dst.FindPort(succ.Port)
				if err != nil {
					return nil, err
				}
				if err := f.AddConnector(srcPort, dstPort); err != nil {
					return nil, err
				}
			}
		}
	}

	f.SetModified(false)
	return f, nil
}

// EncodeFlow serializes a flow to its XML document form.
func EncodeFlow(f *flow.Flow) ([]byte, error) {
	data, err := xml.MarshalIndent(BuildDocument(f), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode flow: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

// DecodeFlow rebuilds a flow from its XML document form.
func DecodeFlow(data []byte, factory NodeFactory) (*flow.Flow, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode flow: %w", err)
	}
	return InstantiateDocument(&doc, factory)
}

func literalString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func sortProps(props []PropertyRecord) {
	for i := 1; i < len(props); i++ {
		for j := i; j > 0 && props[j].Name < props[j-1].Name; j-- {
			props[j], props[j-1] = props[j-1], props[j]
		}
	}
}
