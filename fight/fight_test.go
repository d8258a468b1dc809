package fight

import (
	"strings"
	"testing"

	"cast_check/analysis"
	"cast_check/registry"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	f, err := Open("testdata/fight.json")
	require.NoError(t, err)

	assert.Equal(t, analysis.Window{Start: 1000, End: 301000}, f.Window())
	assert.Equal(t, []int{246287}, f.Talents)

	events := f.AnalysisEvents()
	require.Len(t, events, len(f.Events))
	assert.Equal(t, analysis.Event{
		Type:      analysis.EventSpellUsable,
		Timestamp: 18000,
		AbilityID: 194509,
		Trigger:   analysis.TriggerRestoreCharge,
	}, events[3])
}

func TestDecodeRejectsInvalidInput(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"start_time": 10, "end_time": 5, "events": []}`))
	assert.True(t, errors.Is(err, ErrInvalidFight))

	_, err = Decode(strings.NewReader(`{"start_time": 10, "end_time": 50, "current_timestamp": 5}`))
	assert.True(t, errors.Is(err, ErrInvalidFight))

	_, err = Decode(strings.NewReader(`{"start_time": 0, "end_time": 50, "events": {"type": "cast"}}`))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`[`))
	assert.Error(t, err)
}

func TestWindowCutoff(t *testing.T) {
	now := int64(151000)
	f := &Fight{StartTime: 1000, EndTime: 301000, CurrentTimestamp: &now}
	assert.Equal(t, analysis.Window{Start: 1000, End: 151000}, f.Window())

	later := int64(400000)
	f.CurrentTimestamp = &later
	assert.Equal(t, analysis.Window{Start: 1000, End: 301000}, f.Window())
}

func TestComputeFromFiles(t *testing.T) {
	reg, err := registry.Open("../registry/testdata/abilities.csv")
	require.NoError(t, err)
	f, err := Open("testdata/fight.json")
	require.NoError(t, err)

	r, err := analysis.Compute(f.Input(reg.Specs()))
	require.NoError(t, err)
	require.Empty(t, r.Failures)
	require.Len(t, r.Results, 7)

	_, ok := r.Result(59752)
	assert.False(t, ok, "undetectable racial without casts")

	penance, _ := r.Result(47540)
	assert.Equal(t, 42, penance.MaxCasts) // 9s at 25 % haste
	assert.Equal(t, 0.0, *penance.Efficiency)
	assert.True(t, penance.CanBeImproved)
	assert.Equal(t, 0.9, penance.Thresholds.Recommended)

	fiend, _ := r.Result(34433)
	assert.Equal(t, 2, fiend.Casts)
	assert.Equal(t, 2, fiend.MaxCasts)
	assert.Equal(t, 1.0, *fiend.Efficiency)
	assert.EqualValues(t, 180000+111000, fiend.Cooldown.OnCooldownMs)
	assert.Equal(t, 1, fiend.Cooldown.RechargeCycles)

	radiance, _ := r.Result(194509)
	assert.Equal(t, 2, radiance.Cooldown.RechargeCycles)
	assert.Equal(t, 16000.0, *radiance.Cooldown.AverageRechargeMs)
	assert.Equal(t, 20, radiance.MaxCasts)
	assert.InDelta(t, 2/19.75, *radiance.Efficiency, 1e-9)

	pom, _ := r.Result(33076)
	assert.Equal(t, 63, pom.MaxCasts) // 12s, hasted, halved by the buff

	shield, _ := r.Result(17)
	assert.Equal(t, 3, shield.Casts)
	assert.Equal(t, 3, shield.MaxCasts)
	assert.Nil(t, shield.Efficiency)
	assert.False(t, shield.CanBeImproved)

	evangelism, ok := r.Result(246287)
	require.True(t, ok)
	assert.Equal(t, 4, evangelism.MaxCasts)
}
