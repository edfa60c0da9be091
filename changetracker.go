package silo

import (
	"iter"
	"reflect"
)

// ChangeRecord is an immutable snapshot of one observed component change,
// accumulated by push emission from Insert/Remove/Replace/Despawn and
// drained by World.QueryChanged. Current is nil when the component was
// removed or the entity was despawned; Previous is nil when the
// component did not exist beforehand, whether because this is its first
// insert or because it is the first observation of a pre-existing entity
// at seed time.
type ChangeRecord struct {
	Entity    EntityID
	Component ComponentID
	Previous  Instance
	Current   Instance
}

// instanceEqual compares two non-nil component instances of the same id
// for value equality. Component payloads are arbitrary user types, some
// of which are not comparable with ==, so reflect.DeepEqual is the only
// equality check that works for all of them.
func instanceEqual(a, b Instance) bool {
	if a.ComponentID() != b.ComponentID() {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// observerCellKey identifies the one HookState cell changeTracker
// registers an observerStorage under, per caller key and component.
type observerCellKey struct {
	key       any
	component ComponentID
}

// observerStorage accumulates ChangeRecords for one caller's observation
// of one component between drains. Recording the same entity twice
// before a drain merges the two: Previous keeps the earliest value seen
// since the last drain, Current takes the latest, so a caller that
// hasn't drained in a while still sees one before-to-after pair relative
// to its last drain. Values written in between are not reported.
type observerStorage struct {
	component ComponentID
	entries   map[EntityID]ChangeRecord
}

func (s *observerStorage) seed(entity EntityID, current Instance) {
	s.entries[entity] = ChangeRecord{Entity: entity, Component: s.component, Previous: nil, Current: current}
}

func (s *observerStorage) record(entity EntityID, old, new Instance) {
	if existing, ok := s.entries[entity]; ok {
		s.entries[entity] = ChangeRecord{Entity: entity, Component: s.component, Previous: existing.Previous, Current: new}
		return
	}
	s.entries[entity] = ChangeRecord{Entity: entity, Component: s.component, Previous: old, Current: new}
}

// drain yields and removes every entry accumulated since the last drain.
func (s *observerStorage) drain() iter.Seq2[EntityID, ChangeRecord] {
	return func(yield func(EntityID, ChangeRecord) bool) {
		for id, rec := range s.entries {
			delete(s.entries, id)
			if !yield(id, rec) {
				return
			}
		}
	}
}

// changeTracker owns every observerStorage registered across every
// component, keyed by the component it observes. register/unregister
// back World.QueryChanged's per-(caller key, component) HookState cell
// lifecycle; emit is the push side, called from every World mutation
// that adds, overwrites, or removes a component's value.
type changeTracker struct {
	storages map[ComponentID][]*observerStorage
}

func newChangeTracker() *changeTracker {
	return &changeTracker{storages: make(map[ComponentID][]*observerStorage)}
}

func (ct *changeTracker) register(cid ComponentID) *observerStorage {
	st := &observerStorage{component: cid, entries: make(map[EntityID]ChangeRecord)}
	ct.storages[cid] = append(ct.storages[cid], st)
	return st
}

// unregister drops st from cid's observer list, called from the
// caller's HookState cleanup firing. The component's entry is dropped
// entirely once its observer list is empty.
func (ct *changeTracker) unregister(cid ComponentID, st *observerStorage) {
	list := ct.storages[cid]
	for i, s := range list {
		if s == st {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(ct.storages, cid)
	} else {
		ct.storages[cid] = list
	}
}

// emit pushes one component change to every registered observer of cid.
// A no-op value change (old equal to new) is never emitted; either side
// may be nil, representing an insert's first value or a remove/despawn's
// dropped one.
func (ct *changeTracker) emit(cid ComponentID, entity EntityID, old, new Instance) {
	if old == nil && new == nil {
		return
	}
	if old != nil && new != nil && instanceEqual(old, new) {
		return
	}
	for _, st := range ct.storages[cid] {
		st.record(entity, old, new)
	}
}
