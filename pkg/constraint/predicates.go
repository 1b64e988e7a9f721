package constraint

// And is satisfied when every predicate in ps holds.
func And(ps ...Predicate) Predicate {
	return func(g GraphView, o ObjectView) bool {
		for _, p := range ps {
			if !p(g, o) {
				return false
			}
		}
		return true
	}
}

// Or is satisfied when at least one predicate in ps holds.
func Or(ps ...Predicate) Predicate {
	return func(g GraphView, o ObjectView) bool {
		for _, p := range ps {
			if p(g, o) {
				return true
			}
		}
		return false
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(g GraphView, o ObjectView) bool { return !p(g, o) }
}

// IsType is satisfied when the object's type name equals name.
func IsType(name string) Predicate {
	return func(_ GraphView, o ObjectView) bool { return o.TypeName() == name }
}

// HasAttribute is satisfied when the object declares a value for key (an
// attribute resolved to its type default still counts — HasAttribute tests
// "is this key meaningful for this object", which snapshot.HasAttribute
// already accounts for).
func HasAttribute(key string) Predicate {
	return func(_ GraphView, o ObjectView) bool { return o.HasAttribute(key) }
}

// EdgePredicate is satisfied when the object is an edge whose origin
// satisfies originOK and whose target satisfies targetOK. A non-edge object
// never satisfies it.
func EdgePredicate(originOK, targetOK Predicate) Predicate {
	return func(g GraphView, o ObjectView) bool {
		originID, ok := o.Origin()
		if !ok {
			return false
		}
		targetID, ok := o.Target()
		if !ok {
			return false
		}
		origin, ok := g.Object(originID)
		if !ok {
			return false
		}
		target, ok := g.Object(targetID)
		if !ok {
			return false
		}
		return originOK(g, origin) && targetOK(g, target)
	}
}

// AllSatisfy is a global predicate: it holds when every object in the graph
// matching selector also satisfies requirement. It ignores the ObjectView it
// is invoked with, so it is meant for the Requirement side of a Constraint
// whose Match is a global "always true" trigger (or as a building block
// inside And/Or with another global predicate).
func AllSatisfy(selector, requirement Predicate) Predicate {
	return func(g GraphView, _ ObjectView) bool {
		for _, o := range g.Objects() {
			if selector(g, o) && !requirement(g, o) {
				return false
			}
		}
		return true
	}
}

// AnySatisfy is the existential counterpart of AllSatisfy: it holds when at
// least one object matching selector also satisfies requirement.
func AnySatisfy(selector, requirement Predicate) Predicate {
	return func(g GraphView, _ ObjectView) bool {
		for _, o := range g.Objects() {
			if selector(g, o) && requirement(g, o) {
				return true
			}
		}
		return false
	}
}

// neighboursOf returns every object connected to o by a structural
// dependency in either direction: o's parent, o's children, edges whose
// origin or target is o, and (if o is itself an edge) its origin and target.
func neighboursOf(g GraphView, o ObjectView) []ObjectView {
	var out []ObjectView
	if p, ok := o.Parent(); ok {
		if po, ok := g.Object(p); ok {
			out = append(out, po)
		}
	}
	for _, c := range o.Children() {
		if co, ok := g.Object(c); ok {
			out = append(out, co)
		}
	}
	if origin, ok := o.Origin(); ok {
		if oo, ok := g.Object(origin); ok {
			out = append(out, oo)
		}
	}
	if target, ok := o.Target(); ok {
		if to, ok := g.Object(target); ok {
			out = append(out, to)
		}
	}
	for _, other := range g.Objects() {
		if oid, ok := other.Origin(); ok && oid == o.ObjectID() {
			out = append(out, other)
		}
		if tid, ok := other.Target(); ok && tid == o.ObjectID() {
			out = append(out, other)
		}
	}
	return out
}

// UniqueNeighbour is satisfied when exactly one of the object's neighbours
// (parent, children, and edges touching it) matches selector and satisfies
// required.
func UniqueNeighbour(selector, required Predicate) Predicate {
	return func(g GraphView, o ObjectView) bool {
		count := 0
		for _, n := range neighboursOf(g, o) {
			if selector(g, n) && required(g, n) {
				count++
			}
		}
		return count == 1
	}
}

// HasChildOfType is satisfied when at least one of the object's children has
// the given type name.
func HasChildOfType(typeName string) Predicate {
	return func(g GraphView, o ObjectView) bool {
		for _, c := range o.Children() {
			co, ok := g.Object(c)
			if ok && co.TypeName() == typeName {
				return true
			}
		}
		return false
	}
}
