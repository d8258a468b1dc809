package analysis

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Input is everything needed to score one fight.
type Input struct {
	Window    Window
	Events    []Event
	Specs     []Spec
	Combatant Combatant

	// Casts defaults to counting the cast events of Events.
	Casts CastCounter
}

// Compute scores every active ability of the input. Abilities whose
// computation fails are left out of the results and listed in Failures;
// only an invalid window fails the whole call.
//
// The nominal cooldown is read once at the window start, so haste changes
// during the fight are not reflected in it.
func Compute(in *Input) (*Report, error) {
	if err := in.Window.validate(); err != nil {
		return nil, err
	}

	counter := in.Casts
	if counter == nil {
		counter = CountCasts(in.Events)
	}

	history := BuildHistory(in.Events)

	report := &Report{
		Window:  in.Window,
		Results: make([]Result, 0, len(in.Specs)),
	}

	for i := range in.Specs {
		spec := &in.Specs[i]

		r, ok, err := computeAbility(in, spec, counter, history)
		if err != nil {
			logrus.Warnf("ability %d (%s) skipped: %v", spec.AbilityID, spec.Name, err)
			report.Failures = append(report.Failures, Failure{
				AbilityID: spec.AbilityID,
				Name:      spec.Name,
				Err:       err,
				Message:   err.Error(),
			})
			continue
		}
		if ok {
			report.Results = append(report.Results, r)
		}
	}

	return report, nil
}

func computeAbility(in *Input, spec *Spec, counter CastCounter, history History) (r Result, ok bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			r, ok = Result{}, false
			err = errors.Errorf("ability %d: panic: %v", spec.AbilityID, v)
		}
	}()

	if spec.IsActive != nil && !spec.IsActive(in.Combatant) {
		return r, false, nil
	}

	casts := 0
	if spec.Casts != nil {
		casts, err = spec.Casts(counter, in.Window)
		if err != nil {
			return r, false, errors.Wrapf(err, "ability %d: casts", spec.AbilityID)
		}
	} else {
		casts = counter.Casts(spec.AbilityID)
	}

	// presence is only confirmed by a cast
	if spec.Undetectable && casts == 0 {
		return r, false, nil
	}

	if spec.Cooldown == nil {
		return r, false, errors.Errorf("ability %d: no cooldown function", spec.AbilityID)
	}
	cooldown, err := spec.Cooldown(in.Combatant, in.Window.Start)
	if err != nil {
		return r, false, errors.Wrapf(err, "ability %d: cooldown", spec.AbilityID)
	}

	r = Result{
		AbilityID:  spec.AbilityID,
		Name:       spec.Name,
		Casts:      casts,
		Thresholds: spec.Thresholds.withDefaults(),
		Cooldown:   TrackCooldown(history.For(spec.AbilityID), in.Window.End),
	}

	minutes := in.Window.minutes()
	if minutes > 0 {
		r.CastsPerMinute = float64(casts) / minutes
	}

	if cooldown == nil {
		r.MaxCasts = casts
		return r, true, nil
	}
	if math.IsNaN(*cooldown) || math.IsInf(*cooldown, 0) || *cooldown < 0 {
		return Result{}, false, errors.Errorf("ability %d: invalid cooldown %v", spec.AbilityID, *cooldown)
	}

	raw, err := rawMaxCasts(in, spec, *cooldown, r.Cooldown, counter)
	if err != nil {
		return Result{}, false, err
	}

	r.MaxCasts = maxCasts(raw)

	var maxCpm float64
	if minutes > 0 {
		maxCpm = float64(r.MaxCasts) / minutes
	}
	r.MaxCastsPerMinute = &maxCpm

	r.Efficiency = efficiency(casts, raw)
	r.CanBeImproved = r.Efficiency != nil && *r.Efficiency < r.Thresholds.Recommended

	return r, true, nil
}

// rawMaxCasts picks the recharge duration by precedence: legacy override,
// then the measured average recharge, then the nominal cooldown.
func rawMaxCasts(in *Input, spec *Spec, cooldown float64, stats CooldownStats, counter CastCounter) (float64, error) {
	if spec.MaxCasts != nil {
		raw, err := spec.MaxCasts(cooldown, in.Window, counter, in.Combatant)
		if err != nil {
			return 0, errors.Wrapf(err, "ability %d: max casts", spec.AbilityID)
		}
		return raw, nil
	}

	// measured recharges already include haste and cooldown reductions
	chosen := cooldown * 1000
	if stats.AverageRechargeMs != nil && *stats.AverageRechargeMs > 0 {
		chosen = *stats.AverageRechargeMs
	}

	// every charge beyond the first is available before any recharge
	return float64(in.Window.DurationMs())/chosen + float64(spec.charges()) - 1, nil
}

func maxCasts(raw float64) int {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
		return 0
	}
	return int(math.Ceil(raw))
}

// efficiency is casts/raw clamped into [0, 1]. An unusable estimate (zero
// cooldown, empty window, bad legacy value) still scores, as 0 or 1.
func efficiency(casts int, raw float64) *float64 {
	v := float64(casts) / raw
	switch {
	case math.IsNaN(v), v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	return &v
}
