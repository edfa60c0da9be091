package silo

// Shared component fixtures for this package's test files. Declared once
// here since NewComponentType panics on a duplicate name and every
// _test.go file in this package compiles into the same test binary.

type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }
type Health struct{ Current, Max int }
type Name struct{ Value string }

var (
	positionType = NewComponentType[Position]("Position")
	velocityType = NewComponentType[Velocity]("Velocity")
	healthType   = NewComponentType[Health]("Health")
	nameType     = NewComponentType[Name]("Name")
)
