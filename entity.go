package silo

// EntityID uniquely identifies an entity within a World. Ids start at 1; a
// freed id is never reused unless a caller explicitly re-spawns it via
// World.SpawnAt.
type EntityID uint64

// entityRecord locates one entity's row within its current archetype.
// Owned by the World, mutated only by transition and despawn.
type entityRecord struct {
	archetype *Archetype
	row       int
}
