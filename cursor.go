package silo

import (
	"iter"

	"github.com/TheBitDrifter/mask"
)

// Cursor iterates the entities matching a query built from World.Query.
// It holds the World's command buffer in deferring mode for its entire
// lifetime (from the first call to Next/Entities until Reset), so any
// mutation performed while iterating is queued rather than applied
// immediately and cannot invalidate the archetypes being walked.
//
// A Cursor's own StartDeferring/StopDeferring bracket nests inside
// CommandBuffer's depth counter: if a caller already holds an outer
// deferring scope open (its own StartDeferring call), the Cursor ending
// does not flush the caller's queue early. A Cursor runs CommitCommands
// when it ends only if no other scope is still open; a caller's own scope
// is flushed by the caller's own CommitCommands call.
type Cursor struct {
	world   *World
	with    []ComponentID
	without mask.Mask

	initialized bool
	matched     []*Archetype
	archIndex   int
	row         int
	remaining   int
}

func newCursor(w *World, with []ComponentID) *Cursor {
	return &Cursor{world: w, with: with}
}

// Without excludes any archetype carrying one or more of the given
// components from the match set. Calling it while an iteration is in
// progress (after Next or Entities has started and before the cursor is
// exhausted or Reset) panics, since the candidate set has already been
// pinned. A completed TotalMatched call does not leave an iteration open.
func (c *Cursor) Without(components ...Component) *Cursor {
	if c.initialized {
		panic(bugf("Cursor.Without called after iteration began"))
	}
	for _, comp := range components {
		c.without.Mark(uint32(comp.ID()))
	}
	return c
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.world.commands.StartDeferring()

	engine := queryEngine{archetypes: c.world.archetypes}
	c.matched = engine.plan(c.with, c.without)
	c.initialized = true
	c.row = -1
	if len(c.matched) > 0 {
		c.remaining = c.matched[0].length()
	}
}

// Next advances the cursor to the next matching entity, returning false
// once every match across every candidate archetype has been visited. A
// false return also releases the cursor's deferred-command hold; callers
// that break out of a manual Next loop early must call Reset themselves.
func (c *Cursor) Next() bool {
	c.initialize()
	for {
		c.row++
		if c.row < c.remaining {
			return true
		}
		c.archIndex++
		if c.archIndex >= len(c.matched) {
			c.Reset()
			return false
		}
		c.remaining = c.matched[c.archIndex].length()
		c.row = -1
	}
}

// Reset ends iteration early, discarding cursor position and leaving the
// Cursor's deferring scope. If no outer scope is still held open, this
// also flushes whatever commands were queued while the cursor was
// deferring. It is safe to call more than once.
func (c *Cursor) Reset() {
	if !c.initialized {
		return
	}
	c.initialized = false
	c.matched = nil
	c.archIndex = 0
	c.row = 0
	c.remaining = 0

	c.world.commands.StopDeferring()
	if !c.world.commands.Deferring() {
		_ = c.world.commands.CommitCommands()
	}
}

func (c *Cursor) currentArchetype() *Archetype {
	return c.matched[c.archIndex]
}

// CurrentEntity returns the entity id at the cursor's current position.
func (c *Cursor) CurrentEntity() EntityID {
	return c.currentArchetype().entities[c.row]
}

// TotalMatched returns how many entities match the query, without
// disturbing an iteration already in progress via Next. Calling it before
// any call to Next computes and then releases the match set.
func (c *Cursor) TotalMatched() int {
	alreadyRunning := c.initialized
	c.initialize()

	total := 0
	for _, a := range c.matched {
		total += a.length()
	}

	if !alreadyRunning {
		c.Reset()
	}
	return total
}

// Entities yields (entity, row-index) pairs for every matching entity.
func (c *Cursor) Entities() iter.Seq2[EntityID, int] {
	return func(yield func(EntityID, int) bool) {
		for c.Next() {
			if !yield(c.CurrentEntity(), c.row) {
				c.Reset()
				return
			}
		}
	}
}

// currentRowValue reads the current row's instance of id, used by
// ComponentType[T] accessor methods. It panics if the current archetype
// does not carry id; callers are expected to have already named id in
// the Query, matching the invariant that accessors are only ever
// called against rows known to carry the component.
func (c *Cursor) currentRowValue(id ComponentID) Instance {
	arch := c.currentArchetype()
	col, ok := arch.idToCol[id]
	if !ok {
		panic(bugf("component %s not present on current row", ComponentName(id)))
	}
	return arch.columns[col].get(c.row)
}

// Snapshot materializes the current row into a type-erased Row value,
// safe to keep after the cursor has moved on.
func (c *Cursor) Snapshot() Row {
	arch := c.currentArchetype()
	values := make(map[ComponentID]Instance, len(arch.columns))
	for _, id := range arch.componentIDs {
		values[id] = arch.columns[arch.idToCol[id]].get(c.row)
	}
	return Row{Entity: c.CurrentEntity(), values: values}
}
