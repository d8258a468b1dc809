package analysis

import "strings"

type EventType string

const (
	EventSpellUsable EventType = "updatespellusable"
	EventCast        EventType = "cast"
	EventApplyBuff   EventType = "applybuff"
	EventRemoveBuff  EventType = "removebuff"
)

type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerBeginCooldown
	TriggerEndCooldown
	TriggerRestoreCharge
)

var triggerNames = map[string]Trigger{
	"begincooldown":  TriggerBeginCooldown,
	"endcooldown":    TriggerEndCooldown,
	"restorecharge":  TriggerRestoreCharge,
	"begin-cooldown": TriggerBeginCooldown,
	"end-cooldown":   TriggerEndCooldown,
	"restore-charge": TriggerRestoreCharge,
}

// ParseTrigger accepts both the log spelling ("begincooldown") and the
// hyphenated one ("begin-cooldown"). Unknown values map to TriggerNone.
func ParseTrigger(s string) Trigger {
	return triggerNames[strings.ToLower(strings.TrimSpace(s))]
}

func (t Trigger) String() string {
	switch t {
	case TriggerBeginCooldown:
		return "begincooldown"
	case TriggerEndCooldown:
		return "endcooldown"
	case TriggerRestoreCharge:
		return "restorecharge"
	}
	return ""
}

// Event is one entry of the fight's event stream. Timestamps are in
// milliseconds on the same clock as the Window.
type Event struct {
	Type      EventType
	Timestamp int64
	AbilityID int
	Trigger   Trigger
	Amount    float64
}
