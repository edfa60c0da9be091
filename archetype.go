package silo

import (
	"sort"
	"strconv"
	"strings"

	"github.com/TheBitDrifter/mask"
)

// column is one archetype's storage for a single component type, erased to
// a common interface so an Archetype can hold columns of different
// concrete types side by side. The single implementation, typedColumn,
// recovers its element type by asserting an Instance back to instance[T]
// at read/write time.
type column interface {
	componentID() ComponentID
	length() int
	get(row int) Instance
	set(row int, inst Instance)
	appendInstance(inst Instance)
	swapRemove(row int)
	newEmpty() column
}

// typedColumn is the only column implementation: a dense slice of T plus
// the component id it belongs to.
type typedColumn[T any] struct {
	id   ComponentID
	data []T
}

func (c *typedColumn[T]) componentID() ComponentID { return c.id }
func (c *typedColumn[T]) length() int              { return len(c.data) }

func (c *typedColumn[T]) get(row int) Instance {
	return instance[T]{id: c.id, value: c.data[row]}
}

func (c *typedColumn[T]) set(row int, inst Instance) {
	c.data[row] = inst.(instance[T]).value
}

func (c *typedColumn[T]) appendInstance(inst Instance) {
	c.data = append(c.data, inst.(instance[T]).value)
}

// swapRemove overwrites row with the last element (unless row is already
// last) and shrinks by one, giving O(1) removal regardless of row
// position.
func (c *typedColumn[T]) swapRemove(row int) {
	last := len(c.data) - 1
	if row != last {
		c.data[row] = c.data[last]
	}
	var zero T
	c.data[last] = zero
	c.data = c.data[:last]
}

func (c *typedColumn[T]) newEmpty() column {
	return &typedColumn[T]{id: c.id}
}

// Archetype is the canonical columnar storage for every entity whose
// component set is exactly componentIDs. At most one Archetype exists per
// distinct set within a World; see archetypeIndex.ensureArchetype.
type Archetype struct {
	id           uint32
	componentIDs []ComponentID
	entities     []EntityID
	columns      []column
	idToCol      map[ComponentID]int
	archMask     mask.Mask
}

// ID returns this archetype's assignment-order identifier. It carries no
// meaning beyond uniqueness within a World; archetypes are otherwise
// identified by their canonical component-set key.
func (a *Archetype) ID() uint32 { return a.id }

func (a *Archetype) length() int { return len(a.entities) }

// Has reports whether this archetype carries component id.
func (a *Archetype) Has(id ComponentID) bool {
	_, ok := a.idToCol[id]
	return ok
}

// ComponentIDs returns the archetype's component set in canonical
// (ascending) order. Callers must not mutate the returned slice.
func (a *Archetype) ComponentIDs() []ComponentID {
	return a.componentIDs
}

// String renders the archetype's component set as sorted display names,
// e.g. "[Position, Velocity]".
func (a *Archetype) String() string {
	if len(a.componentIDs) == 0 {
		return "[]"
	}
	names := make([]string, len(a.componentIDs))
	for i, id := range a.componentIDs {
		names[i] = ComponentName(id)
	}
	sort.Strings(names)
	return "[" + strings.Join(names, ", ") + "]"
}

// archetypeKey computes the canonical hash for a sorted component-id set:
// the sorted, underscore-joined decimal encoding. The root archetype
// (empty set) hashes to the empty string.
func archetypeKey(sortedIDs []ComponentID) string {
	if len(sortedIDs) == 0 {
		return ""
	}
	parts := make([]string, len(sortedIDs))
	for i, id := range sortedIDs {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, "_")
}

func maskFor(ids []ComponentID) mask.Mask {
	var m mask.Mask
	for _, id := range ids {
		m.Mark(uint32(id))
	}
	return m
}
