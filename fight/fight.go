package fight

import (
	"io"
	"os"

	"cast_check/analysis"
	"cast_check/combatant"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var ErrInvalidFight = errors.New("fight: invalid fight")

type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Ability   struct {
		GUID int    `json:"guid"`
		Name string `json:"name,omitempty"`
	} `json:"ability"`
	Trigger string  `json:"trigger,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
}

// Fight is an already parsed fight of one participant.
type Fight struct {
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`

	// CurrentTimestamp cuts the analysis short of EndTime when set.
	CurrentTimestamp *int64 `json:"current_timestamp,omitempty"`

	Talents []int                   `json:"talents"`
	Haste   []combatant.HasteSample `json:"haste"`
	Events  []Event                 `json:"events"`
}

func Decode(r io.Reader) (*Fight, error) {
	var f Fight
	if err := jsoniter.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "fight: decode")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func Open(path string) (*Fight, error) {
	fs, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer fs.Close()

	return Decode(fs)
}

func (f *Fight) Validate() error {
	switch {
	case f.EndTime < f.StartTime:
		return errors.Wrapf(ErrInvalidFight, "end_time %d before start_time %d", f.EndTime, f.StartTime)
	case f.CurrentTimestamp != nil && *f.CurrentTimestamp < f.StartTime:
		return errors.Wrapf(ErrInvalidFight, "current_timestamp %d before start_time %d", *f.CurrentTimestamp, f.StartTime)
	}
	return nil
}

func (f *Fight) Window() analysis.Window {
	w := analysis.Window{
		Start: f.StartTime,
		End:   f.EndTime,
	}
	if f.CurrentTimestamp != nil && *f.CurrentTimestamp < w.End {
		w.End = *f.CurrentTimestamp
	}
	return w
}

func (f *Fight) AnalysisEvents() []analysis.Event {
	events := make([]analysis.Event, len(f.Events))
	for i, e := range f.Events {
		events[i] = analysis.Event{
			Type:      analysis.EventType(e.Type),
			Timestamp: e.Timestamp,
			AbilityID: e.Ability.GUID,
			Trigger:   analysis.ParseTrigger(e.Trigger),
			Amount:    e.Amount,
		}
	}
	return events
}

// Input builds the engine input for the given ability specifications.
func (f *Fight) Input(specs []analysis.Spec) *analysis.Input {
	events := f.AnalysisEvents()

	return &analysis.Input{
		Window:    f.Window(),
		Events:    events,
		Specs:     specs,
		Combatant: combatant.New(f.Talents, f.Haste, events),
		Casts:     analysis.CountCasts(events),
	}
}
