package input

import "github.com/riverrun/htmlcore/dom"

// Radio group bookkeeping. Radios with the same name attribute under
// the same scoping element (the form, or the document when unowned)
// form a group; checking one unchecks the rest.

// groupKey identifies a radio group: the scoping element's key plus the
// group name.
type groupKey struct {
	scope dom.Key
	name  string
}

// RadioGroups indexes radios into mutually-exclusive groups. Build one
// per document while seeding control state from the DOM; it stays valid
// until the next navigation clears the Store.
type RadioGroups struct {
	groupByRadio map[dom.Key]int
	members      map[int][]dom.Key
	groupIDs     map[groupKey]int
	next         int
}

// NewRadioGroups returns an empty index.
func NewRadioGroups() *RadioGroups {
	return &RadioGroups{
		groupByRadio: make(map[dom.Key]int),
		members:      make(map[int][]dom.Key),
		groupIDs:     make(map[groupKey]int),
	}
}

// Register adds radio to the group (scope, name). Re-registering the
// same radio is a no-op for membership; the last registration's group
// wins.
func (g *RadioGroups) Register(scope dom.Key, name string, radio dom.Key) {
	key := groupKey{scope: scope, name: name}
	id, ok := g.groupIDs[key]
	if !ok {
		g.next++
		id = g.next
		g.groupIDs[key] = id
	}
	if prev, seen := g.groupByRadio[radio]; !seen || prev != id {
		if seen {
			old := g.members[prev]
			for i, m := range old {
				if m == radio {
					g.members[prev] = append(old[:i:i], old[i+1:]...)
					break
				}
			}
		}
		g.groupByRadio[radio] = id
		g.members[id] = append(g.members[id], radio)
	}
}

// Click checks radio and unchecks every other member of its group,
// reporting whether any state changed. An unregistered radio simply
// becomes checked.
func (g *RadioGroups) Click(store *Store, radio dom.Key) bool {
	id, ok := g.groupByRadio[radio]
	if !ok {
		return store.SetChecked(radio, true)
	}
	members := g.members[id]
	if len(members) == 0 {
		return store.SetChecked(radio, true)
	}
	changed := false
	for _, m := range members {
		if store.SetChecked(m, m == radio) {
			changed = true
		}
	}
	return changed
}
