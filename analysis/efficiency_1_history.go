package analysis

// History holds the availability events of each ability in stream order.
type History map[int][]Event

// BuildHistory groups the spell-usable events of the stream by ability.
// Nothing is reordered or dropped; the cutoff is applied by the tracker.
func BuildHistory(events []Event) History {
	h := make(History)
	for _, event := range events {
		if event.Type != EventSpellUsable {
			continue
		}
		h[event.AbilityID] = append(h[event.AbilityID], event)
	}
	return h
}

// For returns the history of an ability; nil when it has none.
func (h History) For(abilityID int) []Event {
	return h[abilityID]
}
