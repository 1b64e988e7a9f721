package constraint

import (
	"github.com/openpoiesis/graphframe/pkg/graphframeerr"
	"github.com/openpoiesis/graphframe/pkg/identity"
)

// CheckReferentialIntegrity verifies that every structural dependency (edge
// origin/target, parent) of every object in g resolves to an object present
// in g. A failure here is a programmer error (§4.3 item 1): the frame API is
// supposed to make this unreachable, so it is reported as a *graphframeerr.Fault
// rather than a recoverable ConstraintViolation.
func CheckReferentialIntegrity(g GraphView) error {
	for _, o := range g.Objects() {
		for _, dep := range structuralDependencies(o) {
			if _, ok := g.Object(dep); !ok {
				return graphframeerr.NewFault(
					"referential integrity: object %d depends on missing object %d", o.ObjectID(), dep)
			}
		}
	}
	return nil
}

func structuralDependencies(o ObjectView) []identity.ID {
	var deps []identity.ID
	if origin, ok := o.Origin(); ok {
		deps = append(deps, origin)
	}
	if target, ok := o.Target(); ok {
		deps = append(deps, target)
	}
	if parent, ok := o.Parent(); ok {
		deps = append(deps, parent)
	}
	return deps
}

// CheckParentChildCoherence verifies, in both directions, that a child's
// parent pointer and a parent's children list agree (§4.3 item 2): a
// programmer error if they do not, since frame mutation always keeps both in
// sync from a single source of truth.
func CheckParentChildCoherence(g GraphView) error {
	for _, o := range g.Objects() {
		if parentID, ok := o.Parent(); ok {
			parent, ok := g.Object(parentID)
			if !ok {
				return graphframeerr.NewFault("parent/child: object %d has missing parent %d", o.ObjectID(), parentID)
			}
			if !containsID(parent.Children(), o.ObjectID()) {
				return graphframeerr.NewFault(
					"parent/child: object %d's parent %d does not list it as a child", o.ObjectID(), parentID)
			}
		}
		for _, childID := range o.Children() {
			child, ok := g.Object(childID)
			if !ok {
				return graphframeerr.NewFault("parent/child: object %d lists missing child %d", o.ObjectID(), childID)
			}
			if p, ok := child.Parent(); !ok || p != o.ObjectID() {
				return graphframeerr.NewFault(
					"parent/child: object %d's child %d does not point back to it", o.ObjectID(), childID)
			}
		}
	}
	return nil
}

func containsID(ids []identity.ID, id identity.ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// CheckAcyclic verifies that the parent relation over every object in g
// forms a forest (§4.3 item 3). A cycle is a programmer error.
func CheckAcyclic(g GraphView) error {
	state := make(map[identity.ID]int) // 0 unvisited, 1 in-progress, 2 done
	var walk func(identity.ID) error
	walk = func(id identity.ID) error {
		switch state[id] {
		case 2:
			return nil
		case 1:
			return graphframeerr.NewFault("parent/child: cycle detected involving object %d", id)
		}
		state[id] = 1
		if o, ok := g.Object(id); ok {
			if p, ok := o.Parent(); ok {
				if err := walk(p); err != nil {
					return err
				}
			}
		}
		state[id] = 2
		return nil
	}
	for _, o := range g.Objects() {
		if err := walk(o.ObjectID()); err != nil {
			return err
		}
	}
	return nil
}

// CheckStructure runs every §4.3 fatal-class check (referential integrity,
// parent/child coherence, acyclicity) in order, returning the first failure.
func CheckStructure(g GraphView) error {
	if err := CheckReferentialIntegrity(g); err != nil {
		return err
	}
	if err := CheckParentChildCoherence(g); err != nil {
		return err
	}
	if err := CheckAcyclic(g); err != nil {
		return err
	}
	return nil
}
