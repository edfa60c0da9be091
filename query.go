package silo

import "github.com/TheBitDrifter/mask"

// queryEngine plans which archetypes a query touches. It narrows from the
// reverse component->archetypes index rather than scanning every
// archetype in the World: candidateArchetypes picks the smallest bucket
// among the required components, and plan filters that bucket down by
// mask containment.
type queryEngine struct {
	archetypes *archetypeIndex
}

// plan returns every non-empty archetype carrying all of with and none of
// without.
func (qe queryEngine) plan(with []ComponentID, without mask.Mask) []*Archetype {
	withMask := maskFor(with)
	candidates := qe.archetypes.candidateArchetypes(with)

	matched := make([]*Archetype, 0, len(candidates))
	for _, a := range candidates {
		if a.length() == 0 {
			continue
		}
		if !a.archMask.ContainsAll(withMask) {
			continue
		}
		if !a.archMask.ContainsNone(without) {
			continue
		}
		matched = append(matched, a)
	}
	return matched
}
