package silo

// Row is a type-erased snapshot of every component one entity carries
// (not only the queried ones), produced by Cursor.Snapshot, World.View,
// or World.Entities. Unlike reading through a
// live Cursor, a Row remains valid after the archetype it was taken from
// has changed shape.
type Row struct {
	Entity EntityID
	values map[ComponentID]Instance
}

// Has reports whether the row carries a value for id.
func (r Row) Has(id ComponentID) bool {
	_, ok := r.values[id]
	return ok
}

// FromRow extracts this component type's value from row, matching
// ComponentType[T]'s other accessor methods. The second return is false
// if row did not carry this component.
func (c ComponentType[T]) FromRow(r Row) (T, bool) {
	inst, ok := r.values[c.id]
	if !ok {
		var zero T
		return zero, false
	}
	return inst.(instance[T]).value, true
}

// View is a materialized set of Rows matching a query, keyed by entity.
// It is a point-in-time copy: mutating the World after View is built does
// not change the rows already collected.
type View struct {
	rows map[EntityID]Row
}

// Len returns how many entities the view holds.
func (v View) Len() int { return len(v.rows) }

// Row returns the row for entity, if the view holds one.
func (v View) Row(entity EntityID) (Row, bool) {
	r, ok := v.rows[entity]
	return r, ok
}

// All returns an iterator over every row in the view. Iteration order is
// unspecified.
func (v View) All() func(yield func(EntityID, Row) bool) {
	return func(yield func(EntityID, Row) bool) {
		for id, row := range v.rows {
			if !yield(id, row) {
				return
			}
		}
	}
}

// collectView drains cursor into a materialized View, taking a Snapshot
// of every matching row.
func collectView(cursor *Cursor) View {
	rows := make(map[EntityID]Row)
	for cursor.Next() {
		rows[cursor.CurrentEntity()] = cursor.Snapshot()
	}
	return View{rows: rows}
}
