package analysis

const (
	DefaultRecommended  = 0.80
	DefaultAverageIssue = 0.75
	DefaultMajorIssue   = 0.65
)

// Combatant is the time-indexed view of the analyzed participant.
type Combatant interface {
	// HasteAt returns haste as a fraction (0.2 = 20 %) at the timestamp.
	HasteAt(timestamp int64) float64
	HasBuff(id int, timestamp int64) bool
	HasTalent(id int) bool
}

// CastCounter reports how many times an ability was cast in the fight.
type CastCounter interface {
	Casts(abilityID int) int
}

// CooldownFunc returns the nominal cooldown in seconds as seen at the given
// timestamp. A nil cooldown means the ability is not scored.
type CooldownFunc func(c Combatant, at int64) (*float64, error)

// MaxCastsFunc is the legacy override for the raw max cast estimate.
// cooldown is the nominal cooldown in seconds.
type MaxCastsFunc func(cooldown float64, window Window, casts CastCounter, c Combatant) (float64, error)

// CastsFunc replaces the plain cast count for abilities whose casts need
// custom attribution.
type CastsFunc func(casts CastCounter, window Window) (int, error)

type Thresholds struct {
	Recommended  float64 `json:"recommended"`
	AverageIssue float64 `json:"average_issue"`
	MajorIssue   float64 `json:"major_issue"`
}

func (t Thresholds) withDefaults() Thresholds {
	if t.Recommended == 0 {
		t.Recommended = DefaultRecommended
	}
	if t.AverageIssue == 0 {
		t.AverageIssue = DefaultAverageIssue
	}
	if t.MajorIssue == 0 {
		t.MajorIssue = DefaultMajorIssue
	}
	return t
}

// Spec describes one trackable ability.
type Spec struct {
	AbilityID int
	Name      string

	Cooldown CooldownFunc
	Charges  int

	// IsActive reports whether the ability applies to the combatant at all,
	// e.g. a talent is selected. nil means always.
	IsActive func(c Combatant) bool

	// Undetectable abilities are only known to be present once cast.
	Undetectable bool

	MaxCasts MaxCastsFunc
	Casts    CastsFunc

	Thresholds Thresholds
}

func (s *Spec) charges() int {
	if s.Charges < 1 {
		return 1
	}
	return s.Charges
}

// FixedCooldown returns a CooldownFunc that always yields the given seconds.
func FixedCooldown(seconds float64) CooldownFunc {
	return func(Combatant, int64) (*float64, error) {
		v := seconds
		return &v, nil
	}
}

// NoCooldown marks an ability without cooldown to score against.
func NoCooldown(Combatant, int64) (*float64, error) {
	return nil, nil
}
