// Package structkind declares the structural-kind tag shared by object
// types (metamodel) and object snapshots (snapshot) and read by the
// constraint engine, kept as its own leaf package so none of those three
// need to depend on one another just to agree on the tag.
package structkind

// Kind is the structural shape an object type or snapshot takes.
type Kind int

const (
	Unstructured Kind = iota
	Node
	Edge
)

func (k Kind) String() string {
	switch k {
	case Unstructured:
		return "unstructured"
	case Node:
		return "node"
	case Edge:
		return "edge"
	default:
		return "unknown"
	}
}
