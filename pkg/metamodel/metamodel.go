// Package metamodel declares the external Metamodel interface consumed by
// Frame, Design, and Loader (§6) and a straightforward in-memory reference
// implementation, ObjectType registry. The domain-specific metamodel
// content itself (e.g. a Stock-and-Flow type set) lives outside this
// package, in pkg/sdmetamodel, per §1's explicit scope boundary.
package metamodel

import (
	"fmt"

	"github.com/blang/semver"

	"github.com/openpoiesis/graphframe/pkg/constraint"
	"github.com/openpoiesis/graphframe/pkg/structkind"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

// AttributeDescriptor describes one attribute an object type declares: its
// name, value type, and optional default.
type AttributeDescriptor struct {
	Name    string
	Type    variant.ValueType
	Default *variant.Variant // nil means variant.Default(Type)
}

// DefaultValue returns the attribute's declared default, or the zero value
// for its type if none was given.
func (a AttributeDescriptor) DefaultValue() variant.Variant {
	if a.Default != nil {
		return *a.Default
	}
	return variant.Default(a.Type)
}

// ObjectType describes one kind of object the metamodel allows: its
// structural kind, attribute schema, and metadata flags.
type ObjectType struct {
	TypeName   string
	Kind       structkind.Kind
	Attrs      []AttributeDescriptor
	Metadata   map[string]bool
	attrByName map[string]AttributeDescriptor
}

// NewObjectType builds an ObjectType and indexes its attributes by name.
// Edge types must declare exactly two structural references implicitly
// (origin, target) via their Kind == structkind.Edge; node and unstructured
// types require none, enforced by snapshot construction rather than here.
func NewObjectType(name string, kind structkind.Kind, attrs []AttributeDescriptor) *ObjectType {
	t := &ObjectType{TypeName: name, Kind: kind, Attrs: attrs, Metadata: map[string]bool{}}
	t.index()
	return t
}

func (t *ObjectType) index() {
	t.attrByName = make(map[string]AttributeDescriptor, len(t.Attrs))
	for _, a := range t.Attrs {
		t.attrByName[a.Name] = a
	}
}

// Attribute looks up a declared attribute by name.
func (t *ObjectType) Attribute(name string) (AttributeDescriptor, bool) {
	if t.attrByName == nil {
		t.index()
	}
	a, ok := t.attrByName[name]
	return a, ok
}

// Name returns the type's name (satisfies rawdesign/loader lookups uniformly).
func (t *ObjectType) Name() string { return t.TypeName }

// StructuralKind returns the type's required structural shape.
func (t *ObjectType) StructuralKind() structkind.Kind { return t.Kind }

// Metamodel is the consumed interface (§6): a name, a semver version, object
// type lookup, and the constraint list enforced at accept time.
type Metamodel interface {
	Name() string
	Version() semver.Version
	LookupType(name string) (*ObjectType, bool)
	Constraints() []constraint.Constraint
}

// Registry is a straightforward in-memory Metamodel implementation: a
// fixed name/version plus a map of object types and a constraint list,
// exactly the shape a caller assembling a concrete metamodel (such as
// pkg/sdmetamodel) would build once at startup.
type Registry struct {
	name        string
	version     semver.Version
	types       map[string]*ObjectType
	constraints []constraint.Constraint
}

// NewRegistry builds an empty Registry with the given name and version.
func NewRegistry(name string, version semver.Version) *Registry {
	return &Registry{name: name, version: version, types: make(map[string]*ObjectType)}
}

func (r *Registry) Name() string            { return r.name }
func (r *Registry) Version() semver.Version { return r.version }

// AddType registers an object type. It panics on a duplicate name: building
// a metamodel with a name collision is a programmer error caught at startup,
// not a runtime condition callers recover from.
func (r *Registry) AddType(t *ObjectType) {
	if _, exists := r.types[t.TypeName]; exists {
		panic(fmt.Sprintf("metamodel: duplicate object type %q", t.TypeName))
	}
	r.types[t.TypeName] = t
}

// LookupType returns the registered type by name.
func (r *Registry) LookupType(name string) (*ObjectType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// AddConstraint appends a constraint to the metamodel's list.
func (r *Registry) AddConstraint(c constraint.Constraint) {
	r.constraints = append(r.constraints, c)
}

// Constraints returns the metamodel's full constraint list.
func (r *Registry) Constraints() []constraint.Constraint {
	return append([]constraint.Constraint(nil), r.constraints...)
}

// Types returns every registered type name, for diagnostics and test setup.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}
