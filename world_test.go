package silo

import "testing"

// TestArchetypeReuse confirms archetype identity depends only on the
// component set, not insertion order, and that subset/superset component
// sets land in distinct archetypes.
func TestArchetypeReuse(t *testing.T) {
	tests := []struct {
		name         string
		first        []Instance
		second       []Instance
		sameArchName string
	}{
		{
			name:   "identical components",
			first:  []Instance{positionType.New(Position{}), velocityType.New(Velocity{})},
			second: []Instance{positionType.New(Position{}), velocityType.New(Velocity{})},
		},
		{
			name:   "different insertion order",
			first:  []Instance{positionType.New(Position{}), velocityType.New(Velocity{})},
			second: []Instance{velocityType.New(Velocity{}), positionType.New(Position{})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			a, _ := w.Spawn(tt.first...)
			b, _ := w.Spawn(tt.second...)

			recA, _ := w.entities.get(a)
			recB, _ := w.entities.get(b)
			if recA.archetype != recB.archetype {
				t.Errorf("expected both entities in the same archetype, got %s and %s", recA.archetype, recB.archetype)
			}
		})
	}

	t.Run("subset lands in a different archetype", func(t *testing.T) {
		w := newWorld()
		a, _ := w.Spawn(positionType.New(Position{}), velocityType.New(Velocity{}))
		b, _ := w.Spawn(positionType.New(Position{}))

		recA, _ := w.entities.get(a)
		recB, _ := w.entities.get(b)
		if recA.archetype == recB.archetype {
			t.Errorf("expected distinct archetypes for {Position,Velocity} and {Position}")
		}
	})
}

// TestCommandBufferDespawnElision exercises the rule that despawning an
// entity drops every command queued after it for the same entity.
func TestCommandBufferDespawnElision(t *testing.T) {
	w := newWorld()
	id, _ := w.Spawn(positionType.New(Position{}))

	w.StartDeferring()
	if err := w.Despawn(id); err != nil {
		t.Fatalf("Despawn() error = %v", err)
	}
	if err := w.AddComponent(id, velocityType.New(Velocity{})); err != nil {
		t.Fatalf("AddComponent() (post-despawn, should be silently dropped) error = %v", err)
	}
	w.StopDeferring()
	if err := w.CommitCommands(); err != nil {
		t.Fatalf("CommitCommands() error = %v", err)
	}

	if w.Exists(id) {
		t.Errorf("entity %d should be gone after commit", id)
	}
}

// TestCommandBufferOrderingBeforeDespawn confirms a command queued before
// the despawn does not block it: both commit in order without error and
// the entity ends up gone.
func TestCommandBufferOrderingBeforeDespawn(t *testing.T) {
	w := newWorld()
	id, _ := w.Spawn(positionType.New(Position{}))

	w.StartDeferring()
	if err := w.AddComponent(id, velocityType.New(Velocity{X: 5})); err != nil {
		t.Fatalf("AddComponent() error = %v", err)
	}
	if err := w.Despawn(id); err != nil {
		t.Fatalf("Despawn() error = %v", err)
	}
	w.StopDeferring()
	if err := w.CommitCommands(); err != nil {
		t.Fatalf("CommitCommands() error = %v", err)
	}

	if w.Exists(id) {
		t.Errorf("entity %d should still be despawned", id)
	}
}

// TestQueryChangedSeedsThenReports exercises first-observation seeding:
// a fresh caller's first QueryChanged pass reports one {Previous: nil}
// record per entity the component is already carried by, draining it;
// the very next pass (nothing changed since) reports nothing; and a
// later, genuinely different value produces a proper before/after pair.
func TestQueryChangedSeedsThenReports(t *testing.T) {
	w := newWorld()
	id, _ := w.Spawn(positionType.New(Position{X: 1, Y: 1}))
	hs := NewMapHookState()

	seen := 0
	var seedRecord ChangeRecord
	for entity, record := range w.QueryChanged(positionType, hs, "system-a") {
		seen++
		seedRecord = record
		if entity != id {
			t.Errorf("seeded entity = %d, want %d", entity, id)
		}
	}
	if seen != 1 {
		t.Fatalf("first observation should seed one record per live entity, got %d", seen)
	}
	if seedRecord.Previous != nil {
		t.Errorf("seed record Previous = %v, want nil", seedRecord.Previous)
	}
	if seedRecord.Current.(instance[Position]).value.X != 1 {
		t.Errorf("seed record Current.X = %v, want 1", seedRecord.Current.(instance[Position]).value.X)
	}

	seen = 0
	for range w.QueryChanged(positionType, hs, "system-a") {
		seen++
	}
	if seen != 0 {
		t.Errorf("unchanged value should not report a change, got %d", seen)
	}

	if err := SetComponent(w, id, positionType, Position{X: 2, Y: 1}); err != nil {
		t.Fatalf("SetComponent() error = %v", err)
	}

	var got ChangeRecord
	seen = 0
	for entity, record := range w.QueryChanged(positionType, hs, "system-a") {
		seen++
		got = record
		if entity != id {
			t.Errorf("changed entity = %d, want %d", entity, id)
		}
	}
	if seen != 1 {
		t.Fatalf("expected exactly 1 change after the mutation, got %d", seen)
	}
	if got.Previous.(instance[Position]).value.X != 1 {
		t.Errorf("Previous.X = %v, want 1", got.Previous.(instance[Position]).value.X)
	}
	if got.Current.(instance[Position]).value.X != 2 {
		t.Errorf("Current.X = %v, want 2", got.Current.(instance[Position]).value.X)
	}
}

// TestQueryChangedReportsRemovalAndDespawn confirms the push/drain model
// can report a component going away, whether by RemoveComponent or by
// the whole entity being despawned — something a poll-the-live-query
// design could never see, since the entity no longer matches.
func TestQueryChangedReportsRemovalAndDespawn(t *testing.T) {
	w := newWorld()
	removed, _ := w.Spawn(positionType.New(Position{X: 1}))
	despawned, _ := w.Spawn(positionType.New(Position{X: 2}))
	hs := NewMapHookState()

	// Drain the initial seed for both entities first.
	for range w.QueryChanged(positionType, hs, "watch") {
	}

	if _, err := w.RemoveComponent(removed, positionType); err != nil {
		t.Fatalf("RemoveComponent() error = %v", err)
	}
	if err := w.Despawn(despawned); err != nil {
		t.Fatalf("Despawn() error = %v", err)
	}

	records := make(map[EntityID]ChangeRecord)
	for entity, record := range w.QueryChanged(positionType, hs, "watch") {
		records[entity] = record
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 change records (remove + despawn), got %d", len(records))
	}
	for _, id := range []EntityID{removed, despawned} {
		rec, ok := records[id]
		if !ok {
			t.Fatalf("missing change record for entity %d", id)
		}
		if rec.Current != nil {
			t.Errorf("entity %d Current = %v, want nil", id, rec.Current)
		}
		if rec.Previous == nil {
			t.Errorf("entity %d Previous = nil, want the pre-removal value", id)
		}
	}
}

// TestQueryChangedDistinctKeysIndependent confirms two callers using
// distinct keys maintain independent change history against the same
// HookState instance.
func TestQueryChangedDistinctKeysIndependent(t *testing.T) {
	w := newWorld()
	w.Spawn(positionType.New(Position{X: 1}))
	hs := NewMapHookState()

	alphaSeen := 0
	for range w.QueryChanged(positionType, hs, "alpha") {
		alphaSeen++
	}
	betaSeen := 0
	for range w.QueryChanged(positionType, hs, "beta") {
		betaSeen++
	}
	if alphaSeen != 1 || betaSeen != 1 {
		t.Errorf("each fresh key should independently seed one record on its first observation, got alpha=%d beta=%d", alphaSeen, betaSeen)
	}
}

func TestQueryChangedArgsValidatesArity(t *testing.T) {
	w := newWorld()
	hs := NewMapHookState()

	if _, err := w.QueryChangedArgs(hs, "k", positionType, velocityType); err == nil {
		t.Errorf("expected ExtraArgumentsError for 2 components")
	} else if _, ok := err.(ExtraArgumentsError); !ok {
		t.Errorf("error type = %T, want ExtraArgumentsError", err)
	}

	if _, err := w.QueryChangedArgs(hs, "k", positionType); err != nil {
		t.Errorf("unexpected error for exactly 1 component: %v", err)
	}
}

func TestViewSnapshot(t *testing.T) {
	w := newWorld()
	id, _ := w.Spawn(positionType.New(Position{X: 1, Y: 2}), velocityType.New(Velocity{X: 3, Y: 4}))
	w.Spawn(positionType.New(Position{X: 5, Y: 6}))

	view := w.View(positionType, velocityType)
	if view.Len() != 1 {
		t.Fatalf("View.Len() = %d, want 1", view.Len())
	}

	row, ok := view.Row(id)
	if !ok {
		t.Fatalf("View missing row for entity %d", id)
	}
	pos, ok := positionType.FromRow(row)
	if !ok || pos.X != 1 || pos.Y != 2 {
		t.Errorf("FromRow position = %+v, ok=%v, want {1 2} true", pos, ok)
	}

	// Mutating the world afterward must not retroactively change an
	// already-materialized View.
	SetComponent(w, id, positionType, Position{X: 99, Y: 99})
	pos, _ = positionType.FromRow(row)
	if pos.X != 1 {
		t.Errorf("View row changed after the source mutated; View.X = %v, want 1", pos.X)
	}
}

func TestWorldClear(t *testing.T) {
	w := newWorld()
	w.Spawn(positionType.New(Position{}))
	w.Spawn(positionType.New(Position{}), velocityType.New(Velocity{}))

	w.Clear()

	if w.EntityCount() != 0 {
		t.Errorf("EntityCount() after Clear = %d, want 0", w.EntityCount())
	}
	if n := w.Query(positionType).TotalMatched(); n != 0 {
		t.Errorf("TotalMatched() after Clear = %d, want 0", n)
	}

	id, err := w.Spawn(positionType.New(Position{X: 42}))
	if err != nil {
		t.Fatalf("Spawn() after Clear error = %v", err)
	}
	pos, ok := GetComponent(w, id, positionType)
	if !ok || pos.X != 42 {
		t.Errorf("Spawn() after Clear produced %+v, ok=%v, want {42 0} true", pos, ok)
	}
}

// TestCommandBufferMarkedForDeletionPersists confirms markedForDeletion
// is not reset by CommitCommands: a despawned id stays inert against
// commands queued in a later, unrelated deferred batch.
func TestCommandBufferMarkedForDeletionPersists(t *testing.T) {
	w := newWorld()
	id, _ := w.Spawn(positionType.New(Position{}))

	w.StartDeferring()
	if err := w.Despawn(id); err != nil {
		t.Fatalf("Despawn() error = %v", err)
	}
	w.StopDeferring()
	if err := w.CommitCommands(); err != nil {
		t.Fatalf("CommitCommands() error = %v", err)
	}
	if w.Exists(id) {
		t.Fatalf("entity %d should be despawned after the first commit", id)
	}

	// A later, independent deferred batch referencing the same stale id
	// must still be dropped, even though it runs after an intervening
	// commit.
	w.StartDeferring()
	if err := w.AddComponent(id, velocityType.New(Velocity{})); err != nil {
		t.Fatalf("AddComponent() error = %v", err)
	}
	w.StopDeferring()
	if err := w.CommitCommands(); err != nil {
		t.Fatalf("CommitCommands() error = %v", err)
	}
	if w.Exists(id) {
		t.Errorf("stale despawned id %d should not be revived by a later batch", id)
	}
}

// TestCursorNestedDeferringDoesNotFlushOuterBatch confirms a Cursor's own
// deferring scope nests inside a caller-held outer one: a query that
// finishes entirely inside an outer StartDeferring bracket must not
// apply anything until the caller's own CommitCommands runs.
func TestCursorNestedDeferringDoesNotFlushOuterBatch(t *testing.T) {
	w := newWorld()
	id, _ := w.Spawn(positionType.New(Position{}))
	other, _ := w.Spawn(positionType.New(Position{}))

	w.StartDeferring()
	if err := w.AddComponent(id, velocityType.New(Velocity{X: 1})); err != nil {
		t.Fatalf("AddComponent() error = %v", err)
	}

	cursor := w.Query(positionType)
	for cursor.Next() {
		_ = cursor.CurrentEntity()
	}

	if err := w.AddComponent(other, velocityType.New(Velocity{X: 2})); err != nil {
		t.Fatalf("AddComponent() error = %v", err)
	}
	if _, ok := GetComponent(w, id, velocityType); ok {
		t.Fatalf("Velocity should not be applied yet: outer deferring scope is still open")
	}

	w.StopDeferring()
	if err := w.CommitCommands(); err != nil {
		t.Fatalf("CommitCommands() error = %v", err)
	}
	if _, ok := GetComponent(w, id, velocityType); !ok {
		t.Errorf("Velocity should be applied once the outer scope closes")
	}
	if _, ok := GetComponent(w, other, velocityType); !ok {
		t.Errorf("Velocity on the other entity should also be applied")
	}
}

func TestWorldEntitiesIteration(t *testing.T) {
	w := newWorld()
	a, _ := w.Spawn(positionType.New(Position{X: 1}))
	b, _ := w.Spawn(positionType.New(Position{X: 2}), velocityType.New(Velocity{X: 3}))

	seen := make(map[EntityID]Row)
	for id, row := range w.Entities() {
		seen[id] = row
	}
	if len(seen) != 2 {
		t.Fatalf("Entities() yielded %d entities, want 2", len(seen))
	}

	posA, ok := positionType.FromRow(seen[a])
	if !ok || posA.X != 1 {
		t.Errorf("entity %d position = %+v, ok=%v, want {1 0} true", a, posA, ok)
	}
	posB, ok := positionType.FromRow(seen[b])
	if !ok || posB.X != 2 {
		t.Errorf("entity %d position = %+v, ok=%v, want {2 0} true", b, posB, ok)
	}
	velB, ok := velocityType.FromRow(seen[b])
	if !ok || velB.X != 3 {
		t.Errorf("entity %d velocity = %+v, ok=%v, want {3 0} true", b, velB, ok)
	}
	if _, ok := velocityType.FromRow(seen[a]); ok {
		t.Errorf("entity %d should not carry Velocity", a)
	}
}

func TestHookStateForget(t *testing.T) {
	hs := NewMapHookState()
	cleaned := false
	cell := hs.UseHookState("k", func(any) { cleaned = true })
	cell.Set(5)

	hs.Forget("k")
	if !cleaned {
		t.Errorf("Forget() did not invoke cleanup")
	}

	fresh := hs.UseHookState("k", nil)
	if fresh.Get() != nil {
		t.Errorf("cell for a forgotten key should start empty, got %v", fresh.Get())
	}
}
