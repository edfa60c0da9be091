package silo

// transition moves the entity at (from, row) into the archetype that
// matches from's component set plus adds minus removes, copying every
// carried-over column value and discarding anything the entity no longer
// carries. It is the only place rows move between archetypes; spawn,
// AddComponent, and RemoveComponent all funnel through it.
//
// adds must not overlap removes. The callers guarantee this by
// construction: insertOne passes only adds, applyRemove only removes, and
// applyReplace removes exactly the ids it is not adding.
//
// The final two return values report the entity (if any) that got
// swapped into from's vacated row, so the caller can repoint its
// entityTable record; moved is false when row was already the last row in
// from, or when to == from (nothing was removed from from).
func transition(idx *archetypeIndex, from *Archetype, row int, adds []Instance, removes []ComponentID) (to *Archetype, newRow int, displaced EntityID, moved bool) {
	removed := make(map[ComponentID]bool, len(removes))
	for _, id := range removes {
		removed[id] = true
	}
	added := make(map[ComponentID]Instance, len(adds))
	for _, inst := range adds {
		added[inst.ComponentID()] = inst
	}

	representatives := make([]Instance, 0, len(from.componentIDs)+len(adds))
	carried := make([]Instance, 0, len(from.componentIDs))
	for _, id := range from.componentIDs {
		if removed[id] {
			continue
		}
		if replacement, ok := added[id]; ok {
			carried = append(carried, replacement)
			delete(added, id)
			continue
		}
		val := from.columns[from.idToCol[id]].get(row)
		carried = append(carried, val)
	}
	representatives = append(representatives, carried...)
	for _, inst := range added {
		representatives = append(representatives, inst)
	}

	to = idx.ensureArchetype(representatives)
	if to == from {
		for _, inst := range representatives {
			from.columns[from.idToCol[inst.ComponentID()]].set(row, inst)
		}
		return from, row, 0, false
	}

	newRow = to.length()
	for _, inst := range representatives {
		to.columns[to.idToCol[inst.ComponentID()]].appendInstance(inst)
	}
	entity := from.entities[row]
	to.entities = append(to.entities, entity)

	displaced, moved = swapRemoveRow(from, row)
	if hook := Config.changeTrackerEvents.OnEntityMoved; hook != nil {
		hook(entity, from, to)
	}
	return to, newRow, displaced, moved
}

// swapRemoveRow removes row from an archetype by swapping in the last row
// and shrinking, mirroring typedColumn.swapRemove so entity ids and column
// data stay aligned. Returns the entity id that was moved into row, if
// any, so the caller can update its record.
func swapRemoveRow(a *Archetype, row int) (movedEntity EntityID, moved bool) {
	last := len(a.entities) - 1
	if row != last {
		movedEntity = a.entities[last]
		moved = true
		a.entities[row] = a.entities[last]
	}
	a.entities = a.entities[:last]
	for _, col := range a.columns {
		col.swapRemove(row)
	}
	return movedEntity, moved
}
