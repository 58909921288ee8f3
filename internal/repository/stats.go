package repository

import (
	"sort"
	"time"

	"petition-service/internal/model"
)

type counter map[string]int64

func (c counter) entries() []model.CountEntry {
	out := make([]model.CountEntry, 0, len(c))
	for k, v := range c {
		out = append(out, model.CountEntry{Key: k, Count: v})
	}
	sortCounts(out)
	return out
}

// sortCounts orders by count descending, then key, so responses are stable.
func sortCounts(entries []model.CountEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
}

func sortByKey(entries []model.CountEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
}

// BuildStats aggregates analytics counters over an in-memory petition set.
func BuildStats(petitions []model.Petition, now time.Time) *model.PetitionStats {
	byStatus, byType, byZone, byDecision, byTimeBound, byMonth := counter{}, counter{}, counter{}, counter{}, counter{}, counter{}
	for _, p := range petitions {
		byStatus[string(p.Status)]++
		byType[p.Type]++
		byZone[model.ZoneRoot(p.Zone)]++
		byTimeBound[string(p.TimeBound)]++
		byMonth[p.CreatedAt.Format("2006-01")]++
		if p.DecisionStatus != nil {
			byDecision[string(*p.DecisionStatus)]++
		}
	}
	months := byMonth.entries()
	sortByKey(months)
	return &model.PetitionStats{
		Total:       int64(len(petitions)),
		ByStatus:    byStatus.entries(),
		ByType:      byType.entries(),
		ByZone:      byZone.entries(),
		ByDecision:  byDecision.entries(),
		ByTimeBound: byTimeBound.entries(),
		ByMonth:     months,
		GeneratedAt: now,
	}
}
