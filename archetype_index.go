package silo

import "sort"

// archetypeIndex owns every Archetype in a World and the lookups needed to
// find or create one for a given component set. byKey is the canonical
// lookup: archetypeKey(sortedIDs) -> *Archetype. byComponent is the reverse
// index query planning narrows from: a component id maps to every
// archetype that carries it, so QueryEngine can start from the smallest
// candidate list instead of scanning every archetype in the World.
type archetypeIndex struct {
	byKey       map[string]*Archetype
	byComponent map[ComponentID][]*Archetype
	all         []*Archetype
	nextID      uint32
	root        *Archetype
}

func newArchetypeIndex() *archetypeIndex {
	idx := &archetypeIndex{
		byKey:       make(map[string]*Archetype),
		byComponent: make(map[ComponentID][]*Archetype),
	}
	idx.root = idx.newArchetype(nil)
	return idx
}

func (idx *archetypeIndex) newArchetype(sortedIDs []ComponentID) *Archetype {
	a := &Archetype{
		id:           idx.nextID,
		componentIDs: sortedIDs,
		idToCol:      make(map[ComponentID]int, len(sortedIDs)),
		archMask:     maskFor(sortedIDs),
	}
	idx.nextID++
	for i, id := range sortedIDs {
		a.idToCol[id] = i
	}
	key := archetypeKey(sortedIDs)
	idx.byKey[key] = a
	idx.all = append(idx.all, a)
	for _, id := range sortedIDs {
		idx.byComponent[id] = append(idx.byComponent[id], a)
	}
	if hook := Config.changeTrackerEvents.OnArchetypeCreated; hook != nil {
		hook(a)
	}
	return a
}

// ensureArchetype returns the archetype whose component set is exactly the
// ids of the given representative instances, creating it if it does not
// yet exist. Each representative's newColumn builds the empty column for
// its id; the representative's value is discarded, only its type is used.
// Callers may pass representatives in any order.
func (idx *archetypeIndex) ensureArchetype(representatives []Instance) *Archetype {
	sorted := append([]Instance(nil), representatives...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ComponentID() < sorted[j].ComponentID() })

	ids := make([]ComponentID, len(sorted))
	for i, inst := range sorted {
		ids[i] = inst.ComponentID()
	}

	key := archetypeKey(ids)
	if a, ok := idx.byKey[key]; ok {
		return a
	}

	a := idx.newArchetype(ids)
	for _, inst := range sorted {
		a.columns = append(a.columns, inst.newColumn())
	}
	return a
}

// candidateArchetypes returns the smallest by-component bucket among with,
// which QueryEngine then narrows further by containment. Returns the root
// bucket (every archetype) when with is empty.
func (idx *archetypeIndex) candidateArchetypes(with []ComponentID) []*Archetype {
	if len(with) == 0 {
		return idx.all
	}
	best := with[0]
	for _, id := range with[1:] {
		if len(idx.byComponent[id]) < len(idx.byComponent[best]) {
			best = id
		}
	}
	return idx.byComponent[best]
}

func (idx *archetypeIndex) reset() {
	idx.byKey = make(map[string]*Archetype)
	idx.byComponent = make(map[ComponentID][]*Archetype)
	idx.all = nil
	idx.nextID = 0
	idx.root = idx.newArchetype(nil)
}
