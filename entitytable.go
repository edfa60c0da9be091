package silo

import "github.com/kamstrup/intmap"

// entityTable maps every live entity id to its current archetype/row and
// owns the next-id allocator. Entity ids are small, dense integers, which is
// exactly the case github.com/kamstrup/intmap targets (plus3/ooftn's own
// Archetype.refs uses the same map for the identical id-keyed lookup
// problem), so records are kept in an intmap.Map rather than a built-in Go
// map.
type entityTable struct {
	records *intmap.Map[EntityID, entityRecord]
	nextID  EntityID
	count   int
}

func newEntityTable() *entityTable {
	return &entityTable{
		records: intmap.New[EntityID, entityRecord](256),
		nextID:  1,
	}
}

// allocate reserves the next entity id without registering a record for
// it. World.Spawn uses this to hand back an id immediately even while the
// command buffer is deferring the actual row placement.
func (t *entityTable) allocate() EntityID {
	id := t.nextID
	t.nextID++
	return id
}

// reserve advances nextID past id if id is not already behind it,
// matching World.SpawnAt's ability to materialize an id that was never
// handed out by allocate.
func (t *entityTable) reserve(id EntityID) {
	if id >= t.nextID {
		t.nextID = id + 1
	}
}

func (t *entityTable) get(id EntityID) (entityRecord, bool) {
	return t.records.Get(id)
}

func (t *entityTable) contains(id EntityID) bool {
	_, ok := t.records.Get(id)
	return ok
}

// register creates a brand-new entry for id, counting it toward size().
func (t *entityTable) register(id EntityID, rec entityRecord) {
	t.records.Put(id, rec)
	t.count++
}

// updateRecord rewrites an existing entity's record without affecting
// size(); used by transition to retarget archetype/row.
func (t *entityTable) updateRecord(id EntityID, rec entityRecord) {
	t.records.Put(id, rec)
}

func (t *entityTable) delete(id EntityID) {
	if _, ok := t.records.Get(id); ok {
		t.records.Del(id)
		t.count--
	}
}

func (t *entityTable) size() int {
	return t.count
}

func (t *entityTable) reset() {
	t.records.Clear()
	t.nextID = 1
	t.count = 0
}
