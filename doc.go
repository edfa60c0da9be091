/*
Package silo provides an archetype-based Entity-Component-System (ECS)
store for games and simulations.

Silo keeps entities with identical component sets packed together in
columnar storage, so systems that iterate many entities of the same shape
stay cache-friendly. Component sets are canonicalized by sorted component
id, so there is at most one archetype per distinct set in a World.

Core Concepts:

  - Entity: a small integer id representing one object.
  - Component: a typed value attached to an entity, declared once via
    NewComponentType and constructed through the resulting ComponentType.
  - Archetype: the columnar storage for every entity sharing one exact
    component set.
  - World: owns every entity and archetype, and is the entry point for
    spawning, querying, and mutating.
  - CommandBuffer: defers structural changes issued while a Cursor is
    iterating, so archetypes never move rows out from under it.

Basic Usage:

	type Position struct{ X, Y float64 }
	type Velocity struct{ X, Y float64 }

	var PositionType = silo.NewComponentType[Position]("Position")
	var VelocityType = silo.NewComponentType[Velocity]("Velocity")

	world := silo.Factory.NewWorld()
	world.Spawn(PositionType.New(Position{}), VelocityType.New(Velocity{X: 1}))

	cursor := world.Query(PositionType, VelocityType)
	for cursor.Next() {
		pos := PositionType.GetFromCursor(cursor)
		vel := VelocityType.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}
*/
package silo
