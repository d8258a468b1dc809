package analysis

// CastCount counts cast events per ability.
type CastCount map[int]int

func CountCasts(events []Event) CastCount {
	c := make(CastCount)
	for _, event := range events {
		if event.Type == EventCast {
			c[event.AbilityID]++
		}
	}
	return c
}

func (c CastCount) Casts(abilityID int) int {
	return c[abilityID]
}
