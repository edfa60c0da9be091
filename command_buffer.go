package silo

// CommandBuffer defers World mutations issued while iterating a query so
// archetypes never move rows out from under a live Cursor. Deferring
// nests: StartDeferring/StopDeferring track a depth counter instead of a
// single flag, so a Cursor opening its own deferred scope inside a
// caller's own StartDeferring...CommitCommands bracket cannot flush the
// caller's queue early.
//
// Despawning an entity marks it for deletion: every further command
// addressing that id (insert, remove, replace, or another despawn) is
// dropped rather than applied, since there is nothing left to mutate.
// A command queued before the despawn still runs. markedForDeletion is
// not cleared by CommitCommands: it persists until a SpawnAt reclaims
// the id, or the World is cleared, so a despawned id stays inert against
// commands queued in a later, unrelated deferred batch.
type CommandBuffer struct {
	world             *World
	deferDepth        int
	queue             []command
	markedForDeletion map[EntityID]bool
}

func newCommandBuffer(w *World) *CommandBuffer {
	return &CommandBuffer{
		world:             w,
		markedForDeletion: make(map[EntityID]bool),
	}
}

// StartDeferring enters a deferring scope. Calls nest: the buffer only
// returns to immediate-apply mode once StopDeferring has been called once
// per StartDeferring.
func (cb *CommandBuffer) StartDeferring() {
	cb.deferDepth++
}

// StopDeferring leaves one deferring scope without discarding or
// committing anything still queued. A caller holding an outer scope open
// keeps the buffer deferring.
func (cb *CommandBuffer) StopDeferring() {
	if cb.deferDepth > 0 {
		cb.deferDepth--
	}
}

// Deferring reports whether the buffer is currently queuing instead of
// applying immediately.
func (cb *CommandBuffer) Deferring() bool {
	return cb.deferDepth > 0
}

// enqueueOrApply queues cmd if deferring, applying the despawn-elision
// rule, or applies it immediately against the world otherwise.
func (cb *CommandBuffer) enqueueOrApply(cmd command) error {
	if !cb.Deferring() {
		return cb.apply(cmd)
	}

	if cb.markedForDeletion[cmd.entity] {
		return nil
	}
	if cmd.kind == cmdDespawn {
		cb.markedForDeletion[cmd.entity] = true
	}
	cb.queue = append(cb.queue, cmd)
	return nil
}

// CommitCommands replays every queued command against the world in order,
// then clears the queue. markedForDeletion is left untouched; deferring
// mode is also left as-is, since callers typically call StopDeferring
// separately once iteration has fully ended.
func (cb *CommandBuffer) CommitCommands() error {
	queue := cb.queue
	cb.queue = nil

	for _, cmd := range queue {
		if err := cb.apply(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (cb *CommandBuffer) apply(cmd command) error {
	switch cmd.kind {
	case cmdInsert:
		return cb.world.applyInsert(cmd.entity, cmd.instances)
	case cmdRemove:
		return cb.world.applyRemove(cmd.entity, cmd.removeIDs)
	case cmdReplace:
		return cb.world.applyReplace(cmd.entity, cmd.instances)
	case cmdDespawn:
		return cb.world.applyDespawn(cmd.entity)
	}
	panic(bugf("unknown command kind %d", cmd.kind))
}

// clearForSpawnAt drops any queued command and deletion mark for id,
// matching World.SpawnAt's "force a fresh slot" semantics when id is
// currently mid-queue.
func (cb *CommandBuffer) clearForSpawnAt(id EntityID) {
	delete(cb.markedForDeletion, id)
	kept := cb.queue[:0]
	for _, cmd := range cb.queue {
		if cmd.entity == id {
			continue
		}
		kept = append(kept, cmd)
	}
	cb.queue = kept
}

func (cb *CommandBuffer) clear() {
	cb.deferDepth = 0
	cb.queue = nil
	cb.markedForDeletion = make(map[EntityID]bool)
}
