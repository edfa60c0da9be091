package silo

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// NoEntityError reports an operation against an entity id the World has
// no record of, whether because it was never spawned or has since been
// despawned.
type NoEntityError struct {
	Entity EntityID
}

func (e NoEntityError) Error() string {
	return fmt.Sprintf("silo: no entity %d", e.Entity)
}

// EntityAlreadyExistsError reports World.SpawnAt being asked to spawn an
// entity id that is already live.
type EntityAlreadyExistsError struct {
	Entity EntityID
}

func (e EntityAlreadyExistsError) Error() string {
	return fmt.Sprintf("silo: entity %d already exists", e.Entity)
}

// InvalidComponentError reports an operation referencing a component id
// that was never registered via NewComponentType, or that the target
// archetype does not carry.
type InvalidComponentError struct {
	ComponentID ComponentID
	Name        string
}

func (e InvalidComponentError) Error() string {
	return fmt.Sprintf("silo: invalid component %s", e.Name)
}

// ExtraArgumentsError reports a variadic-component call site receiving
// a different number of components than the operation supports, e.g.
// QueryChangedArgs being given anything other than exactly one component.
type ExtraArgumentsError struct {
	Want int
	Got  int
}

func (e ExtraArgumentsError) Error() string {
	return fmt.Sprintf("silo: expected %d component argument(s), got %d", e.Want, e.Got)
}

// bugf builds a stack-trace-wrapped panic value for invariants the public
// API should never let a caller violate (a corrupt internal index, a row
// computed out of range). It is not used for caller-facing validation
// errors, which are returned as the typed errors above instead.
func bugf(format string, args ...any) error {
	return bark.AddTrace(fmt.Errorf(format, args...))
}
