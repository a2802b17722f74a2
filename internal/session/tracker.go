package session

import (
	"slices"

	"glog/workout-server/internal/domain"
)

// Progress summarizes set completion of a session.
type Progress struct {
	Completed  int
	Total      int
	Percentage float64
}

// Toggle returns a copy of m with setIndex flipped for exerciseID. The input
// is not modified. An exercise left with no completed sets is removed so
// that toggling twice restores the original mapping.
func Toggle(m domain.CompletedSets, exerciseID string, setIndex int) domain.CompletedSets {
	out := m.Clone()
	sets := out[exerciseID]

	if i := slices.Index(sets, setIndex); i >= 0 {
		sets = slices.Delete(sets, i, i+1)
	} else {
		sets = append(sets, setIndex)
	}

	if len(sets) == 0 {
		delete(out, exerciseID)
	} else {
		out[exerciseID] = sets
	}
	return out
}

// IsCompleted reports whether setIndex of exerciseID is marked done.
func IsCompleted(m domain.CompletedSets, exerciseID string, setIndex int) bool {
	return slices.Contains(m[exerciseID], setIndex)
}

// ComputeProgress counts completed sets against the plan's target sets.
func ComputeProgress(m domain.CompletedSets, plan domain.WorkoutPlan) Progress {
	p := Progress{Completed: m.Count()}
	for i := range plan.Exercises {
		p.Total += plan.Exercises[i].TargetSets()
	}
	if p.Total > 0 {
		p.Percentage = 100 * float64(p.Completed) / float64(p.Total)
	}
	return p
}
