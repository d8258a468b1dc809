package analysis

type cooldownState int

const (
	stateIdle cooldownState = iota
	stateOnCooldown
)

type cooldownTracker struct {
	state cooldownState
	start int64

	onCooldown int64
	recharging int64
	cycles     int
}

func (t *cooldownTracker) elapsed(timestamp int64) int64 {
	// out of order history never subtracts time
	if d := timestamp - t.start; d > 0 {
		return d
	}
	return 0
}

func (t *cooldownTracker) feed(event Event) {
	switch t.state {
	case stateIdle:
		if event.Trigger == TriggerBeginCooldown {
			t.state = stateOnCooldown
			t.start = event.Timestamp
		}
		// end and restore without an open window are dropped

	case stateOnCooldown:
		switch event.Trigger {
		case TriggerBeginCooldown:
			t.start = event.Timestamp

		case TriggerEndCooldown:
			d := t.elapsed(event.Timestamp)
			t.onCooldown += d
			t.recharging += d
			t.cycles++
			t.state = stateIdle

		case TriggerRestoreCharge:
			// a charge came back but the ability is still recharging
			d := t.elapsed(event.Timestamp)
			t.onCooldown += d
			t.recharging += d
			t.cycles++
			t.start = event.Timestamp
		}
	}
}

func (t *cooldownTracker) finish(cutoff int64) CooldownStats {
	stats := CooldownStats{
		OnCooldownMs:   t.onCooldown,
		RechargeCycles: t.cycles,
	}

	// the open window has not recharged yet, so it stays out of the average
	if t.state == stateOnCooldown {
		stats.OnCooldownMs += t.elapsed(cutoff)
	}

	if t.cycles > 0 {
		avg := float64(t.recharging) / float64(t.cycles)
		stats.AverageRechargeMs = &avg
	}

	return stats
}

// TrackCooldown replays the availability history of one ability up to the
// cutoff.
//
// The average recharge is measured, not derived: when haste changes during
// the fight it is only an approximation of the real cooldown.
func TrackCooldown(history []Event, cutoff int64) CooldownStats {
	var t cooldownTracker
	for _, event := range history {
		if event.Timestamp > cutoff {
			break
		}
		if event.Type != EventSpellUsable {
			continue
		}
		t.feed(event)
	}
	return t.finish(cutoff)
}
