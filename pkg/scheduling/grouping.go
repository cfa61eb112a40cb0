package scheduling

import "sort"

// GroupType identifies one of the three compatibility passes.
type GroupType string

const (
	SameDrugSameDensity GroupType = "same-drug-same-density"
	SameDrugDiffDensity GroupType = "same-drug-diff-density"
	DiffDrugDiffDensity GroupType = "diff-drug-diff-density"
)

// Cleaning is the changeover cleaning a group needs.
type Cleaning string

const (
	CleaningNone    Cleaning = "none"
	CleaningPartial Cleaning = "partial"
	CleaningFull    Cleaning = "full"
)

// fullCleaningMinutes is the changeover cost when nothing is grouped.
const fullCleaningMinutes = 45

// Group is one emitted compatibility group.
type Group struct {
	ID                  string       `json:"id"`
	Type                GroupType    `json:"type"`
	Label               string       `json:"label"`
	Batches             []BatchOrder `json:"batches"`
	CleaningRequired    Cleaning     `json:"cleaning_required"`
	CleaningTimeMinutes int          `json:"cleaning_time_minutes"`
	EstimatedSavings    int          `json:"estimated_savings"`
	SequenceOrder       int          `json:"sequence_order"`
	Color               string       `json:"color"`
}

type groupSpec struct {
	typ             GroupType
	label           string
	cleaning        Cleaning
	cleaningMinutes int
	savingsPerBatch int
	color           string
	minSize         int
	joins           func(seed, b BatchOrder) bool
}

// groupSpecs is evaluated in sequence order.
var groupSpecs = []groupSpec{
	{
		typ:             SameDrugSameDensity,
		label:           "Same Drug + Same Density",
		cleaning:        CleaningNone,
		cleaningMinutes: 0,
		savingsPerBatch: 15,
		color:           "emerald",
		minSize:         2,
		joins: func(seed, b BatchOrder) bool {
			return seed.Drug == b.Drug && seed.Density == b.Density
		},
	},
	{
		typ:             SameDrugDiffDensity,
		label:           "Same Drug + Different Density",
		cleaning:        CleaningPartial,
		cleaningMinutes: 15,
		savingsPerBatch: 8,
		color:           "amber",
		minSize:         2,
		joins: func(seed, b BatchOrder) bool {
			return seed.Drug == b.Drug && seed.Density != b.Density
		},
	},
	{
		typ:             DiffDrugDiffDensity,
		label:           "Different Drug + Different Density",
		cleaning:        CleaningFull,
		cleaningMinutes: fullCleaningMinutes,
		savingsPerBatch: 5,
		color:           "rose",
		minSize:         1,
		joins: func(seed, b BatchOrder) bool {
			return seed.Drug != b.Drug
		},
	},
}

// GroupBatches sorts the queue by (drug, density) and runs each
// compatibility pass over the full sorted queue. A pass emits a group when
// it collects at least its minimum size.
func (e *Engine) GroupBatches(batches []BatchOrder) []Group {
	sorted := append([]BatchOrder(nil), batches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Drug != sorted[j].Drug {
			return sorted[i].Drug < sorted[j].Drug
		}
		return sorted[i].Density < sorted[j].Density
	})

	var groups []Group
	for i, spec := range groupSpecs {
		members := clusterPass(sorted, spec.joins)
		if len(members) < spec.minSize {
			continue
		}
		groups = append(groups, Group{
			ID:                  e.ids.NewID(),
			Type:                spec.typ,
			Label:               spec.label,
			Batches:             members,
			CleaningRequired:    spec.cleaning,
			CleaningTimeMinutes: spec.cleaningMinutes,
			EstimatedSavings:    len(members) * spec.savingsPerBatch,
			SequenceOrder:       i + 1,
			Color:               spec.color,
		})
	}
	return groups
}

// clusterPass walks the queue once. Each batch not yet taken seeds a cluster
// that absorbs every later untaken batch joins accepts; clusters are
// concatenated in seed order. A batch id is taken at most once per pass.
func clusterPass(sorted []BatchOrder, joins func(seed, b BatchOrder) bool) []BatchOrder {
	taken := make(map[string]bool, len(sorted))
	out := make([]BatchOrder, 0, len(sorted))
	for i, seed := range sorted {
		if taken[seed.ID] {
			continue
		}
		taken[seed.ID] = true
		out = append(out, seed)
		for _, b := range sorted[i+1:] {
			if taken[b.ID] || !joins(seed, b) {
				continue
			}
			taken[b.ID] = true
			out = append(out, b)
		}
	}
	return out
}
