package silo

// Config holds package-wide configuration as a single global value rather
// than threading options through every constructor.
var Config config = config{}

type config struct {
	changeTrackerEvents ChangeTrackerEvents
}

// ChangeTrackerEvents are optional callbacks fired as the archetype graph
// changes shape, independent of any particular World's own change
// tracking via QueryChanged. Useful for diagnostics and tests that want to
// observe archetype churn without instrumenting every call site.
type ChangeTrackerEvents struct {
	// OnArchetypeCreated fires once, right after a new Archetype is
	// allocated for a component set never seen before.
	OnArchetypeCreated func(*Archetype)

	// OnEntityMoved fires whenever transition relocates an entity into a
	// different archetype than the one it started in. It does not fire
	// for in-place column updates (same archetype).
	OnEntityMoved func(entity EntityID, from, to *Archetype)
}

// SetChangeTrackerEvents configures the archetype-churn event callbacks.
func (c *config) SetChangeTrackerEvents(events ChangeTrackerEvents) {
	c.changeTrackerEvents = events
}
