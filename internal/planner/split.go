package planner

import (
	"fmt"
	"math"
	"strings"

	"alcyxob/fitness-coach/internal/domain"
)

// SplitDay is one named day of a split template.
type SplitDay struct {
	Name      string   `json:"name"`
	BodyParts []string `json:"bodyParts"`
}

// SplitTemplate is a repeating pattern of training days.
type SplitTemplate struct {
	Name        string     `json:"name"`
	DaysPerWeek int        `json:"daysPerWeek"`
	Days        []SplitDay `json:"days"`
}

// WeeklySession is one slot of the repeating 7-day cycle. DayOfWeek is 0..6 from the start of the week.
type WeeklySession struct {
	DayOfWeek int      `json:"dayOfWeek"`
	Label     string   `json:"label"`
	BodyParts []string `json:"bodyParts"`
	Intensity LoadTier `json:"intensity"`
}

const (
	maxSessionsPerWeek = 7
	secondaryLabel     = "Secondary support"
)

var builtinTemplates = map[string]SplitTemplate{
	"push_pull_legs": {
		Name: "push_pull_legs", DaysPerWeek: 6,
		Days: []SplitDay{
			{Name: "Push", BodyParts: []string{"chest", "shoulders", "triceps"}},
			{Name: "Pull", BodyParts: []string{"back", "biceps"}},
			{Name: "Legs", BodyParts: []string{"quads", "hamstrings", "glutes", "calves"}},
		},
	},
	"upper_lower": {
		Name: "upper_lower", DaysPerWeek: 4,
		Days: []SplitDay{
			{Name: "Upper", BodyParts: []string{"chest", "back", "shoulders", "biceps", "triceps"}},
			{Name: "Lower", BodyParts: []string{"quads", "hamstrings", "glutes", "calves"}},
		},
	},
	"full_body": {
		Name: "full_body", DaysPerWeek: 3,
		Days: []SplitDay{
			{Name: "Full Body", BodyParts: []string{"chest", "back", "quads", "hamstrings", "shoulders"}},
		},
	},
	"bro_split": {
		Name: "bro_split", DaysPerWeek: 5,
		Days: []SplitDay{
			{Name: "Chest", BodyParts: []string{"chest"}},
			{Name: "Back", BodyParts: []string{"back"}},
			{Name: "Shoulders", BodyParts: []string{"shoulders"}},
			{Name: "Legs", BodyParts: []string{"quads", "hamstrings", "glutes"}},
			{Name: "Arms", BodyParts: []string{"biceps", "triceps"}},
		},
	},
}

// BuiltinTemplate looks up a stock split by name.
func BuiltinTemplate(name string) (SplitTemplate, bool) {
	t, ok := builtinTemplates[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return SplitTemplate{}, false
	}
	days := make([]SplitDay, len(t.Days))
	copy(days, t.Days)
	t.Days = days
	return t, true
}

// DistributionForStrategy returns the heavy/moderate/light shares of a strategy.
func DistributionForStrategy(strategy string) domain.IntensityDistribution {
	switch strategy {
	case "aggressive":
		return domain.IntensityDistribution{Heavy: 0.5, Moderate: 0.3, Light: 0.2}
	case "conservative":
		return domain.IntensityDistribution{Heavy: 0.2, Moderate: 0.4, Light: 0.4}
	default:
		return domain.IntensityDistribution{Heavy: 0.34, Moderate: 0.33, Light: 0.33}
	}
}

// DayIndex spreads session i of total evenly across a 7-day week.
func DayIndex(i, total int) int {
	if total <= 0 {
		return 0
	}
	return i * 7 / total
}

// BuildWeeklySplit cycles the template to fill its days-per-week and assigns
// intensity by proportional index: the first round(n*heavy) sessions are heavy,
// the next round(n*moderate) moderate, the rest light.
func BuildWeeklySplit(t SplitTemplate, dist domain.IntensityDistribution) []WeeklySession {
	if len(t.Days) == 0 {
		return nil
	}
	total := t.DaysPerWeek
	if total <= 0 {
		total = len(t.Days)
	}
	if total > maxSessionsPerWeek {
		total = maxSessionsPerWeek
	}

	tiers := assignTiers(total, dist)
	sessions := make([]WeeklySession, total)
	for i := 0; i < total; i++ {
		day := t.Days[i%len(t.Days)]
		label := day.Name
		if pass := i / len(t.Days); pass > 0 {
			label = fmt.Sprintf("%s #%d", day.Name, pass+1)
		}
		sessions[i] = WeeklySession{
			DayOfWeek: DayIndex(i, total),
			Label:     label,
			BodyParts: append([]string(nil), day.BodyParts...),
			Intensity: tiers[i],
		}
	}
	return sessions
}

// BuildFrequencySplit derives sessions without a template. Each body part gets
// one slot per requested weekly frequency, in priority order. The first
// daysPerWeek slots become focus sessions; excess slots are paired into
// "Secondary support" sessions while the week has room, and anything left
// after that is folded into the focus sessions round-robin.
func BuildFrequencySplit(priorities []domain.PriorityFrequency, daysPerWeek int, dist domain.IntensityDistribution) []WeeklySession {
	var slots []string
	for _, p := range priorities {
		part := strings.ToLower(strings.TrimSpace(p.BodyPart))
		if part == "" {
			continue
		}
		for k := 0; k < p.Frequency; k++ {
			slots = append(slots, part)
		}
	}
	if len(slots) == 0 {
		return nil
	}
	if daysPerWeek <= 0 || daysPerWeek > maxSessionsPerWeek {
		daysPerWeek = min(len(slots), maxSessionsPerWeek)
	}

	primaryCount := min(len(slots), daysPerWeek)
	type draft struct {
		label string
		parts []string
	}
	drafts := make([]draft, 0, maxSessionsPerWeek)
	for _, part := range slots[:primaryCount] {
		drafts = append(drafts, draft{label: titleCase(part) + " focus", parts: []string{part}})
	}

	excess := slots[primaryCount:]
	for len(excess) > 0 && len(drafts) < maxSessionsPerWeek {
		n := min(2, len(excess))
		drafts = append(drafts, draft{label: secondaryLabel, parts: uniqueParts(excess[:n])})
		excess = excess[n:]
	}
	for i, part := range excess {
		d := &drafts[i%primaryCount]
		d.parts = uniqueParts(append(d.parts, part))
	}

	total := len(drafts)
	tiers := assignTiers(total, dist)
	sessions := make([]WeeklySession, total)
	for i, d := range drafts {
		sessions[i] = WeeklySession{
			DayOfWeek: DayIndex(i, total),
			Label:     d.label,
			BodyParts: d.parts,
			Intensity: tiers[i],
		}
	}
	return sessions
}

func assignTiers(total int, dist domain.IntensityDistribution) []LoadTier {
	sum := dist.Heavy + dist.Moderate + dist.Light
	if sum <= 0 {
		dist = DistributionForStrategy("balanced")
		sum = dist.Heavy + dist.Moderate + dist.Light
	}
	heavy := int(math.Round(float64(total) * dist.Heavy / sum))
	moderate := int(math.Round(float64(total) * dist.Moderate / sum))
	if heavy > total {
		heavy = total
	}
	if heavy+moderate > total {
		moderate = total - heavy
	}

	tiers := make([]LoadTier, total)
	for i := range tiers {
		switch {
		case i < heavy:
			tiers[i] = TierHeavy
		case i < heavy+moderate:
			tiers[i] = TierModerate
		default:
			tiers[i] = TierLight
		}
	}
	return tiers
}

func uniqueParts(parts []string) []string {
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
