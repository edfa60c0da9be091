package silo

import "iter"

// World owns every entity, archetype, and the deferred command buffer
// that mediates structural changes during iteration. It is the only type
// most callers construct directly; everything else (Cursor, Archetype,
// ComponentType accessors) is reached through it.
type World struct {
	entities   *entityTable
	archetypes *archetypeIndex
	commands   *CommandBuffer
	tracker    *changeTracker
}

func newWorld() *World {
	w := &World{
		entities: newEntityTable(),
		tracker:  newChangeTracker(),
	}
	w.archetypes = newArchetypeIndex()
	w.commands = newCommandBuffer(w)
	return w
}

// EntityCount returns how many entities are currently live.
func (w *World) EntityCount() int {
	return w.entities.size()
}

// Exists reports whether entity is currently live.
func (w *World) Exists(entity EntityID) bool {
	return w.entities.contains(entity)
}

// Spawn creates a new entity carrying the given component instances and
// returns its id. Spawn is never itself deferred: the id is registered
// at the root archetype synchronously, so Exists(id) is true the instant
// Spawn returns, and only the insertion of components is subject to the
// command buffer's deferring state.
func (w *World) Spawn(components ...Instance) (EntityID, error) {
	id := w.entities.allocate()
	w.registerAtRoot(id)
	if err := w.AddComponent(id, components...); err != nil {
		return 0, err
	}
	return id, nil
}

// SpawnAt creates an entity at a specific, caller-chosen id, failing with
// EntityAlreadyExistsError if that id is already live. An id whose
// Despawn is still queued counts as live, so SpawnAt cannot reclaim it
// until that despawn has been committed. Otherwise any command or
// deletion mark already queued against id (for example a deferred
// Despawn of an id that was never live) is dropped first. Like Spawn,
// registration at the root archetype happens synchronously.
func (w *World) SpawnAt(id EntityID, components ...Instance) error {
	if w.entities.contains(id) {
		return EntityAlreadyExistsError{Entity: id}
	}
	w.entities.reserve(id)
	w.commands.clearForSpawnAt(id)
	w.registerAtRoot(id)
	return w.AddComponent(id, components...)
}

// registerAtRoot gives id a live record in the component-less root
// archetype, ahead of whatever Insert carries it into its first real
// archetype.
func (w *World) registerAtRoot(id EntityID) {
	root := w.archetypes.root
	row := root.length()
	root.entities = append(root.entities, id)
	w.entities.register(id, entityRecord{archetype: root, row: row})
}

// Despawn removes entity. Despawning an entity that does not exist is a
// no-op, matching the rest of the package's tolerance for operating on
// ids that have already been cleaned up.
func (w *World) Despawn(entity EntityID) error {
	return w.commands.enqueueOrApply(command{kind: cmdDespawn, entity: entity})
}

// AddComponent enqueues an Insert of components onto entity, applied one
// instance at a time. If entity already carries a given component, its
// value is overwritten in place (the entity stays in its current
// archetype); otherwise the entity transitions into the archetype for
// its component set plus the new component. Either way a ChangeRecord is
// emitted for every component named, except for an overwrite with an
// equal value. Returns NoEntityError if entity does not exist.
func (w *World) AddComponent(entity EntityID, components ...Instance) error {
	return w.commands.enqueueOrApply(command{kind: cmdInsert, entity: entity, instances: components})
}

// RemoveComponent reads and returns entity's current values for the
// given components synchronously, with a nil entry for any component
// entity does not carry, then enqueues their removal. This is the one
// mutator that returns values ahead of its own deferred application.
// Requesting removal of a component entity does not have is not an
// error: the removal set is simply narrowed to whatever currently
// exists. Returns NoEntityError if entity does not exist.
func (w *World) RemoveComponent(entity EntityID, components ...Component) ([]Instance, error) {
	rec, ok := w.entities.get(entity)
	if !ok {
		return nil, NoEntityError{Entity: entity}
	}

	values := make([]Instance, len(components))
	existing := make([]ComponentID, 0, len(components))
	for i, c := range components {
		col, ok := rec.archetype.idToCol[c.ID()]
		if !ok {
			continue
		}
		values[i] = rec.archetype.columns[col].get(rec.row)
		existing = append(existing, c.ID())
	}

	if err := w.commands.enqueueOrApply(command{kind: cmdRemove, entity: entity, removeIDs: existing}); err != nil {
		return nil, err
	}
	return values, nil
}

// Replace enqueues a transition of entity to carry exactly the given
// components: anything entity currently carries that is not named here
// is dropped. A ChangeRecord is emitted for every addition, overwrite,
// and drop, except for an overwrite with an equal value. Returns
// NoEntityError if entity does not exist at apply time.
func (w *World) Replace(entity EntityID, components ...Instance) error {
	return w.commands.enqueueOrApply(command{kind: cmdReplace, entity: entity, instances: components})
}

// StartDeferring, StopDeferring, and CommitCommands expose manual control
// over the command buffer for callers running their own iteration outside
// of Query/Cursor, e.g. a system driving a third-party iterator over
// entity ids it collected earlier.
func (w *World) StartDeferring()       { w.commands.StartDeferring() }
func (w *World) StopDeferring()        { w.commands.StopDeferring() }
func (w *World) CommitCommands() error { return w.commands.CommitCommands() }
func (w *World) Deferring() bool       { return w.commands.Deferring() }

// Query builds a Cursor over every entity carrying all of the given
// components. Chain Without on the result to exclude archetypes before
// iterating.
func (w *World) Query(components ...Component) *Cursor {
	ids := make([]ComponentID, len(components))
	for i, c := range components {
		ids[i] = c.ID()
	}
	return newCursor(w, ids)
}

// View materializes Query(components...) into a point-in-time snapshot.
func (w *World) View(components ...Component) View {
	return collectView(w.Query(components...))
}

// Entities yields every live entity's full component set as a Row,
// independent of any component filter, for callers that need to walk the
// whole World rather than a query's match set.
func (w *World) Entities() iter.Seq2[EntityID, Row] {
	return func(yield func(EntityID, Row) bool) {
		for _, arch := range w.archetypes.all {
			for row := 0; row < arch.length(); row++ {
				entity := arch.entities[row]
				values := make(map[ComponentID]Instance, len(arch.columns))
				for _, id := range arch.componentIDs {
					values[id] = arch.columns[arch.idToCol[id]].get(row)
				}
				if !yield(entity, Row{Entity: entity, values: values}) {
					return
				}
			}
		}
	}
}

// QueryChanged iterates the ChangeRecords accumulated for component
// since the last call made with the same hs and key, draining the
// accumulated set as it goes. A fresh (hs, key) pair seeds on its first
// call: it yields one {Previous: nil, Current: value} record per entity
// that currently carries component, representing every change a new
// observer would otherwise have missed.
func (w *World) QueryChanged(component Component, hs HookState, key any) iter.Seq2[EntityID, ChangeRecord] {
	cid := component.ID()
	tracker := w.tracker

	cell := hs.UseHookState(observerCellKey{key: key, component: cid}, func(v any) {
		if st, ok := v.(*observerStorage); ok {
			tracker.unregister(cid, st)
		}
	})

	st, ok := cell.Get().(*observerStorage)
	if !ok {
		st = tracker.register(cid)
		cell.Set(st)
		cursor := w.Query(component)
		for cursor.Next() {
			entity := cursor.CurrentEntity()
			current := cursor.currentRowValue(cid)
			st.seed(entity, current)
		}
	}

	return st.drain()
}

// QueryChangedArgs is QueryChanged's variadic entry point, validating
// that exactly one component was supplied before delegating. It exists
// for callers building components dynamically; most callers should
// prefer QueryChanged's single-component signature, which cannot
// mis-supply the wrong number of components.
func (w *World) QueryChangedArgs(hs HookState, key any, components ...Component) (iter.Seq2[EntityID, ChangeRecord], error) {
	if len(components) != 1 {
		return nil, ExtraArgumentsError{Want: 1, Got: len(components)}
	}
	return w.QueryChanged(components[0], hs, key), nil
}

// Clear resets the world to empty: every entity, archetype, queued
// command, and change-tracking observer is discarded and a fresh root
// archetype is installed. It does not fire change-tracking notifications
// for the entities it removes.
func (w *World) Clear() {
	w.entities.reset()
	w.archetypes.reset()
	w.commands = newCommandBuffer(w)
	w.tracker = newChangeTracker()
}

func (w *World) applyInsert(id EntityID, instances []Instance) error {
	for _, inst := range instances {
		if err := w.insertOne(id, inst); err != nil {
			return err
		}
	}
	return nil
}

// insertOne implements one step of Insert: overwrite in place if entity
// already carries this component, otherwise transition into the
// archetype for the enlarged component set. Instances are applied one at
// a time rather than as a single batched transition, so intermediate
// archetypes materialize as each component is added.
func (w *World) insertOne(id EntityID, inst Instance) error {
	rec, ok := w.entities.get(id)
	if !ok {
		return NoEntityError{Entity: id}
	}
	cid := inst.ComponentID()

	if col, ok := rec.archetype.idToCol[cid]; ok {
		old := rec.archetype.columns[col].get(rec.row)
		rec.archetype.columns[col].set(rec.row, inst)
		w.tracker.emit(cid, id, old, inst)
		return nil
	}

	to, newRow, displaced, moved := transition(w.archetypes, rec.archetype, rec.row, []Instance{inst}, nil)
	w.relocate(id, rec, to, newRow, displaced, moved)
	w.tracker.emit(cid, id, nil, inst)
	return nil
}

func (w *World) applyRemove(id EntityID, ids []ComponentID) error {
	rec, ok := w.entities.get(id)
	if !ok || len(ids) == 0 {
		return nil
	}

	for _, cid := range ids {
		old := rec.archetype.columns[rec.archetype.idToCol[cid]].get(rec.row)
		w.tracker.emit(cid, id, old, nil)
	}

	to, newRow, displaced, moved := transition(w.archetypes, rec.archetype, rec.row, nil, ids)
	w.relocate(id, rec, to, newRow, displaced, moved)
	return nil
}

func (w *World) applyReplace(id EntityID, instances []Instance) error {
	rec, ok := w.entities.get(id)
	if !ok {
		return NoEntityError{Entity: id}
	}

	kept := make(map[ComponentID]bool, len(instances))
	for _, inst := range instances {
		cid := inst.ComponentID()
		kept[cid] = true
		var old Instance
		if col, ok := rec.archetype.idToCol[cid]; ok {
			old = rec.archetype.columns[col].get(rec.row)
		}
		w.tracker.emit(cid, id, old, inst)
	}

	dropped := make([]ComponentID, 0, len(rec.archetype.componentIDs))
	for _, cid := range rec.archetype.componentIDs {
		if kept[cid] {
			continue
		}
		old := rec.archetype.columns[rec.archetype.idToCol[cid]].get(rec.row)
		w.tracker.emit(cid, id, old, nil)
		dropped = append(dropped, cid)
	}

	// A direct transition to the target archetype is equivalent to, and
	// cheaper than, bouncing through the root archetype first.
	to, newRow, displaced, moved := transition(w.archetypes, rec.archetype, rec.row, instances, dropped)
	w.relocate(id, rec, to, newRow, displaced, moved)
	return nil
}

func (w *World) applyDespawn(id EntityID) error {
	rec, ok := w.entities.get(id)
	if !ok {
		return nil
	}
	for _, cid := range rec.archetype.componentIDs {
		old := rec.archetype.columns[rec.archetype.idToCol[cid]].get(rec.row)
		w.tracker.emit(cid, id, old, nil)
	}

	displaced, moved := swapRemoveRow(rec.archetype, rec.row)
	w.entities.delete(id)
	if moved {
		w.entities.updateRecord(displaced, entityRecord{archetype: rec.archetype, row: rec.row})
	}
	return nil
}

// relocate finalizes a transition: it repoints id's own record to its new
// archetype/row, and repoints whichever entity got swapped into id's
// vacated row within its old archetype.
func (w *World) relocate(id EntityID, oldRec entityRecord, to *Archetype, newRow int, displaced EntityID, moved bool) {
	w.entities.updateRecord(id, entityRecord{archetype: to, row: newRow})
	if moved {
		w.entities.updateRecord(displaced, entityRecord{archetype: oldRec.archetype, row: oldRec.row})
	}
}
