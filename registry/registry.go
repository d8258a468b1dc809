package registry

import (
	"os"
	"path/filepath"
	"strings"

	"cast_check/analysis"

	"github.com/pkg/errors"
)

var ErrInvalidEntry = errors.New("registry: invalid entry")

// Entry is the declarative description of one ability.
type Entry struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	// Cooldown in seconds. nil means the ability has no cooldown to score.
	Cooldown    *float64 `yaml:"cooldown" json:"cooldown"`
	Charges     int      `yaml:"charges" json:"charges"`
	HasteScaled bool     `yaml:"haste_scaled" json:"haste_scaled"`

	// Talent required for the ability to be tracked. 0 = none.
	Talent int `yaml:"talent" json:"talent,omitempty"`

	// Cooldown is multiplied by BuffMultiplier when Buff is up at the start
	// of the window.
	Buff           int     `yaml:"buff" json:"buff,omitempty"`
	BuffMultiplier float64 `yaml:"buff_multiplier" json:"buff_multiplier,omitempty"`

	Undetectable bool `yaml:"undetectable" json:"undetectable"`

	Recommended  float64 `yaml:"recommended" json:"recommended,omitempty"`
	AverageIssue float64 `yaml:"average_issue" json:"average_issue,omitempty"`
	MajorIssue   float64 `yaml:"major_issue" json:"major_issue,omitempty"`
}

func (e *Entry) validate() error {
	switch {
	case e.ID <= 0:
		return errors.Wrapf(ErrInvalidEntry, "id %d", e.ID)
	case e.Charges < 0:
		return errors.Wrapf(ErrInvalidEntry, "ability %d: charges %d", e.ID, e.Charges)
	case e.Cooldown != nil && *e.Cooldown < 0:
		return errors.Wrapf(ErrInvalidEntry, "ability %d: cooldown %v", e.ID, *e.Cooldown)
	case e.Buff != 0 && e.BuffMultiplier <= 0:
		return errors.Wrapf(ErrInvalidEntry, "ability %d: buff %d without multiplier", e.ID, e.Buff)
	}
	return nil
}

// Spec turns the entry into the engine's ability specification.
func (e Entry) Spec() analysis.Spec {
	spec := analysis.Spec{
		AbilityID:    e.ID,
		Name:         e.Name,
		Charges:      e.Charges,
		Undetectable: e.Undetectable,
		Cooldown:     e.cooldown,
		Thresholds: analysis.Thresholds{
			Recommended:  e.Recommended,
			AverageIssue: e.AverageIssue,
			MajorIssue:   e.MajorIssue,
		},
	}

	if e.Talent != 0 {
		talent := e.Talent
		spec.IsActive = func(c analysis.Combatant) bool {
			return c != nil && c.HasTalent(talent)
		}
	}

	return spec
}

func (e Entry) cooldown(c analysis.Combatant, at int64) (*float64, error) {
	if e.Cooldown == nil {
		return nil, nil
	}

	cd := *e.Cooldown
	if !e.HasteScaled && e.Buff == 0 {
		return &cd, nil
	}

	if c == nil {
		return nil, errors.WithStack(analysis.ErrNoCombatant)
	}

	if e.HasteScaled {
		cd /= 1 + c.HasteAt(at)
	}
	if e.Buff != 0 && c.HasBuff(e.Buff, at) {
		cd *= e.BuffMultiplier
	}

	return &cd, nil
}

type Registry struct {
	Entries []Entry `yaml:"abilities" json:"abilities"`

	byID map[int]int
}

func newRegistry(entries []Entry) (*Registry, error) {
	r := &Registry{
		Entries: entries,
		byID:    make(map[int]int, len(entries)),
	}

	for i := range r.Entries {
		e := &r.Entries[i]
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, ok := r.byID[e.ID]; ok {
			return nil, errors.Wrapf(ErrInvalidEntry, "duplicated id %d", e.ID)
		}
		r.byID[e.ID] = i
	}

	return r, nil
}

func (r *Registry) Entry(id int) (Entry, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Entry{}, false
	}
	return r.Entries[idx], true
}

// Specs returns the specifications in registry order.
func (r *Registry) Specs() []analysis.Spec {
	specs := make([]analysis.Spec, len(r.Entries))
	for i, e := range r.Entries {
		specs[i] = e.Spec()
	}
	return specs
}

// Open loads a registry file, picking the format by its extension.
func Open(path string) (*Registry, error) {
	fs, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer fs.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(fs)
	case ".yaml", ".yml":
		return LoadYAML(fs)
	}

	return nil, errors.Errorf("registry: unknown format %q", path)
}
