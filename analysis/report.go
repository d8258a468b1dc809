package analysis

import "github.com/pkg/errors"

var (
	ErrInvalidWindow = errors.New("analysis: window ends before it starts")
	ErrNoCombatant   = errors.New("analysis: combatant state is missing")
)

// Window is the analyzed span. End is the processing cutoff, which may be
// earlier than the fight's nominal end when analyzing mid-fight.
type Window struct {
	Start int64 `json:"start_time"`
	End   int64 `json:"end_time"`
}

func (w Window) DurationMs() int64 {
	return w.End - w.Start
}

func (w Window) minutes() float64 {
	return float64(w.DurationMs()) / 1000 / 60
}

func (w Window) validate() error {
	if w.End < w.Start {
		return errors.Wrapf(ErrInvalidWindow, "start %d, end %d", w.Start, w.End)
	}
	return nil
}

type CooldownStats struct {
	OnCooldownMs      int64    `json:"on_cooldown_ms"`
	AverageRechargeMs *float64 `json:"average_recharge_ms"`
	RechargeCycles    int      `json:"recharge_cycles"`
}

type Result struct {
	AbilityID int    `json:"ability_id"`
	Name      string `json:"name"`

	Casts             int      `json:"casts"`
	MaxCasts          int      `json:"max_casts"`
	CastsPerMinute    float64  `json:"cpm"`
	MaxCastsPerMinute *float64 `json:"max_cpm"`

	Efficiency    *float64 `json:"efficiency"`
	CanBeImproved bool     `json:"can_be_improved"`

	Thresholds Thresholds    `json:"thresholds"`
	Cooldown   CooldownStats `json:"cooldown"`
}

// Failure is the diagnostic left for an ability whose computation failed.
type Failure struct {
	AbilityID int    `json:"ability_id"`
	Name      string `json:"name"`
	Err       error  `json:"-"`
	Message   string `json:"error"`
}

type Report struct {
	Window   Window    `json:"window"`
	Results  []Result  `json:"results"`
	Failures []Failure `json:"failures,omitempty"`
}

// Result returns the result of an ability, if it was reported.
func (r *Report) Result(abilityID int) (Result, bool) {
	for _, v := range r.Results {
		if v.AbilityID == abilityID {
			return v, true
		}
	}
	return Result{}, false
}
