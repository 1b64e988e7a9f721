// Package sdmetamodel sketches the external collaborator §1 places out of
// scope: a concrete object-type/constraint set for a Stock-and-Flow
// systems-dynamics editor, built entirely on pkg/metamodel's consumed
// interface. It declares shapes and graph shape rules only — no arithmetic
// expression parser, evaluator, simulation clock, or graphical-function
// interpolation, all of which §1 explicitly excludes.
package sdmetamodel

import (
	"github.com/blang/semver"

	"github.com/openpoiesis/graphframe/pkg/constraint"
	"github.com/openpoiesis/graphframe/pkg/metamodel"
	"github.com/openpoiesis/graphframe/pkg/structkind"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

const (
	TypeStock     = "Stock"
	TypeFlow      = "Flow"
	TypeAuxiliary = "Auxiliary"
	TypeCloud     = "Cloud"
	TypeLink      = "Link"
	TypeFlowEdge  = "FlowEdge"
)

// Version is the metamodel's own semver, independent of the store's
// version — bump it when the declared type/constraint set changes shape.
var Version = semver.MustParse("0.1.0")

// New builds the Stock-and-Flow Registry: Stock, Flow and Auxiliary as
// nodes carrying a name, a formula string and a position (Stock also an
// initial_value; the formula text itself is opaque to the core — evaluating
// it is the out-of-scope "expression parser/evaluator" collaborator), Cloud
// as a node carrying only a position, FlowEdge as the material-flow edge
// whose ends must each be a Stock or a Cloud, and Link as an influence edge
// whose target must be a Flow or Auxiliary and whose origin must not be a
// Link (one constraint each for FlowEdge and Link).
func New() *metamodel.Registry {
	r := metamodel.NewRegistry("stock-and-flow", Version)

	nameAttr := metamodel.AttributeDescriptor{Name: "name", Type: variant.Atom(variant.KindString)}
	formulaAttr := metamodel.AttributeDescriptor{Name: "formula", Type: variant.Atom(variant.KindString)}
	positionAttr := metamodel.AttributeDescriptor{Name: "position", Type: variant.Atom(variant.KindPoint)}

	r.AddType(metamodel.NewObjectType(TypeStock, structkind.Node, []metamodel.AttributeDescriptor{
		nameAttr, formulaAttr, positionAttr,
		{Name: "initial_value", Type: variant.Atom(variant.KindDouble)},
	}))
	r.AddType(metamodel.NewObjectType(TypeFlow, structkind.Node, []metamodel.AttributeDescriptor{
		nameAttr, formulaAttr, positionAttr,
	}))
	r.AddType(metamodel.NewObjectType(TypeAuxiliary, structkind.Node, []metamodel.AttributeDescriptor{
		nameAttr, formulaAttr, positionAttr,
	}))
	r.AddType(metamodel.NewObjectType(TypeCloud, structkind.Node, []metamodel.AttributeDescriptor{
		positionAttr,
	}))
	r.AddType(metamodel.NewObjectType(TypeLink, structkind.Edge, nil))
	r.AddType(metamodel.NewObjectType(TypeFlowEdge, structkind.Edge, nil))

	isStockOrCloud := constraint.Or(constraint.IsType(TypeStock), constraint.IsType(TypeCloud))
	r.AddConstraint(constraint.Constraint{
		Name:        "flow_edge_shape",
		Match:       constraint.IsType(TypeFlowEdge),
		Requirement: constraint.EdgePredicate(isStockOrCloud, isStockOrCloud),
	})

	isFormulaBearing := constraint.Or(constraint.IsType(TypeFlow), constraint.IsType(TypeAuxiliary))
	r.AddConstraint(constraint.Constraint{
		Name:        "link_targets_formula_bearing_node",
		Match:       constraint.IsType(TypeLink),
		Requirement: constraint.EdgePredicate(constraint.Not(constraint.IsType(TypeLink)), isFormulaBearing),
	})

	return r
}
