package silo

// ComponentID is the stable integer identity of a component type, assigned
// at registration time and never reused.
type ComponentID uint32

// Component is the handle side of a component type: anything that can
// report its own stable id. ComponentType[T] is the only exported
// implementation; it is also what Query, Without, Remove, and Get accept.
type Component interface {
	ID() ComponentID
}

// Instance is an opaque component value attached to one entity. It carries
// a back-reference to its own type so the core can recover the component id
// without a global reflective registry. The unexported newColumn method
// means Instance can only be produced by ComponentType[T].New, which is the
// point: the core never has to validate that an Instance came from
// somewhere it didn't construct.
type Instance interface {
	ComponentID() ComponentID

	newColumn() column
}

// instance is the concrete, type-erased carrier behind Instance. Columnar
// storage recovers T by asserting back to instance[T] at read time, rather
// than going through a global pool keyed by reflect.Type.
type instance[T any] struct {
	id    ComponentID
	value T
}

func (i instance[T]) ComponentID() ComponentID { return i.id }

func (i instance[T]) newColumn() column {
	return &typedColumn[T]{id: i.id}
}

// ComponentType is the stable, typed descriptor for a kind of component
// data. It is the only way to construct component Instances and the only
// way to read or write typed values on archetypes, cursors, and rows.
type ComponentType[T any] struct {
	id   ComponentID
	name string
}

// ID returns this component type's stable identity.
func (c ComponentType[T]) ID() ComponentID { return c.id }

// Name returns the display name this component type was registered with.
func (c ComponentType[T]) Name() string { return c.name }

// New constructs a component instance of this type carrying v.
func (c ComponentType[T]) New(v T) Instance {
	return instance[T]{id: c.id, value: v}
}

// NewComponentType registers a new component type and returns its
// descriptor. Registration assigns the next id from a monotonically
// increasing, package-wide counter backed by componentRegistry; it is not
// safe to call concurrently with other silo operations, matching the
// single-threaded, cooperative model the rest of the package assumes.
func NewComponentType[T any](name string) ComponentType[T] {
	idx, err := componentRegistry.Register(name, name)
	if err != nil {
		panic(err)
	}
	return ComponentType[T]{id: ComponentID(idx + 1), name: name}
}

// ComponentName returns the display name a component id was registered
// with, or the empty string for the invalid id 0.
func ComponentName(id ComponentID) string {
	if id == 0 {
		return ""
	}
	return *componentRegistry.GetItem(int(id) - 1)
}
