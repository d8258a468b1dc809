package combatant

import (
	"sort"

	"cast_check/analysis"
)

type HasteSample struct {
	Timestamp int64   `json:"timestamp"`
	Haste     float64 `json:"haste"`
}

type buffWindow struct {
	start int64
	end   int64 // -1 while still active
}

// State is a time-indexed view of one participant built from the fight's
// haste samples, buff events and talents.
type State struct {
	talents map[int]bool
	haste   []HasteSample
	buffs   map[int][]buffWindow
}

func New(talents []int, haste []HasteSample, events []analysis.Event) *State {
	s := &State{
		talents: make(map[int]bool, len(talents)),
		haste:   make([]HasteSample, len(haste)),
		buffs:   make(map[int][]buffWindow),
	}

	for _, id := range talents {
		s.talents[id] = true
	}

	copy(s.haste, haste)
	sort.SliceStable(
		s.haste,
		func(i, k int) bool {
			return s.haste[i].Timestamp < s.haste[k].Timestamp
		},
	)

	for _, event := range events {
		switch event.Type {
		case analysis.EventApplyBuff:
			windows := s.buffs[event.AbilityID]
			if n := len(windows); n > 0 && windows[n-1].end == -1 {
				// refresh of a running buff
				continue
			}
			s.buffs[event.AbilityID] = append(windows, buffWindow{start: event.Timestamp, end: -1})

		case analysis.EventRemoveBuff:
			windows := s.buffs[event.AbilityID]
			if n := len(windows); n > 0 && windows[n-1].end == -1 {
				windows[n-1].end = event.Timestamp
				continue
			}
			// removed without an apply: it was up since before the log started
			s.buffs[event.AbilityID] = append(windows, buffWindow{start: -1 << 62, end: event.Timestamp})
		}
	}

	return s
}

// HasteAt returns the last haste sample at or before the timestamp. Before
// the first sample the first value is used.
func (s *State) HasteAt(timestamp int64) float64 {
	if len(s.haste) == 0 {
		return 0
	}

	idx := sort.Search(len(s.haste), func(i int) bool { return s.haste[i].Timestamp > timestamp })
	if idx == 0 {
		return s.haste[0].Haste
	}
	return s.haste[idx-1].Haste
}

func (s *State) HasBuff(id int, timestamp int64) bool {
	for _, w := range s.buffs[id] {
		if timestamp < w.start {
			continue
		}
		if w.end == -1 || timestamp < w.end {
			return true
		}
	}
	return false
}

func (s *State) HasTalent(id int) bool {
	return s.talents[id]
}
