// Package constraint implements the predicate-based graph/object constraint
// engine and referential-integrity checker (§4.3). It depends only on
// identity and structkind — never on snapshot or frame directly — so that
// any type exposing the small ObjectView/GraphView surface below can be
// checked, and so metamodel (which carries a Metamodel's constraint list)
// can depend on this package without creating an import cycle back through
// snapshot.
package constraint

import (
	"fmt"
	"sort"

	"github.com/openpoiesis/graphframe/pkg/identity"
	"github.com/openpoiesis/graphframe/pkg/structkind"
)

// ObjectView is the read-only surface of a single object snapshot that the
// constraint engine needs. *snapshot.Snapshot satisfies this interface
// structurally.
type ObjectView interface {
	ObjectID() identity.ID
	TypeName() string
	Structure() structkind.Kind
	HasAttribute(name string) bool
	Origin() (identity.ID, bool)
	Target() (identity.ID, bool)
	Parent() (identity.ID, bool)
	Children() []identity.ID
}

// GraphView is the read-only surface of a frame that the constraint engine
// needs. *frame.StableFrame and *frame.TransientFrame satisfy this
// interface structurally.
type GraphView interface {
	Objects() []ObjectView
	Object(id identity.ID) (ObjectView, bool)
}

// Predicate is a boolean test over a graph view and, where applicable, a
// single object within it. Global predicates (AllSatisfy, AnySatisfy) ignore
// their ObjectView argument; per-object predicates (IsType, HasAttribute,
// EdgePredicate) use it and ignore nothing.
type Predicate func(GraphView, ObjectView) bool

// Constraint pairs a match predicate with a requirement predicate: every
// object for which Match holds must also satisfy Requirement.
type Constraint struct {
	Name        string
	Match       Predicate
	Requirement Predicate
}

// Violation reports a single object that matched a constraint but failed its
// requirement.
type Violation struct {
	Constraint string
	Object     identity.ID
}

func (v Violation) Error() string {
	return fmt.Sprintf("constraint: %q violated by object %d", v.Constraint, v.Object)
}

// ConstraintViolation is the typed error accept() returns when one or more
// constraints fail: every offending object, grouped by constraint name.
type ConstraintViolation struct {
	Violations []Violation
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint: %d violation(s)", len(e.Violations))
}

// Check evaluates every constraint against every matching object in g and
// returns a ConstraintViolation error if any requirement fails, or nil if
// the graph satisfies every constraint. Results are stable: objects are
// visited in ascending ObjectID order.
func Check(g GraphView, constraints []Constraint) error {
	objs := append([]ObjectView(nil), g.Objects()...)
	sort.Slice(objs, func(i, j int) bool { return objs[i].ObjectID() < objs[j].ObjectID() })

	var violations []Violation
	for _, c := range constraints {
		for _, o := range objs {
			if !c.Match(g, o) {
				continue
			}
			if !c.Requirement(g, o) {
				violations = append(violations, Violation{Constraint: c.Name, Object: o.ObjectID()})
			}
		}
	}
	if len(violations) > 0 {
		return &ConstraintViolation{Violations: violations}
	}
	return nil
}

// CheckAll evaluates constraints against every graph view in views,
// collecting violations from all of them rather than stopping at the first
// failing view — used by Design.AddConstraint, which must report every
// stable frame a new constraint would break, not just the first.
func CheckAll(views []GraphView, constraints []Constraint) error {
	var all []Violation
	for _, g := range views {
		if err := Check(g, constraints); err != nil {
			var cv *ConstraintViolation
			if AsConstraintViolation(err, &cv) {
				all = append(all, cv.Violations...)
			}
		}
	}
	if len(all) > 0 {
		return &ConstraintViolation{Violations: all}
	}
	return nil
}

// AsConstraintViolation is a small errors.As helper kept local to avoid an
// import of the stdlib errors package purely for this one assertion.
func AsConstraintViolation(err error, target **ConstraintViolation) bool {
	cv, ok := err.(*ConstraintViolation)
	if !ok {
		return false
	}
	*target = cv
	return true
}
