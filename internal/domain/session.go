package domain

import (
	"errors"
	"fmt"
	"time"
)

// CompletedSets maps an exercise id (hex) to the completed set indices of
// that exercise. Indices need not be contiguous or ordered.
type CompletedSets map[string][]int

// Count returns the total number of completed sets.
func (c CompletedSets) Count() int {
	n := 0
	for _, sets := range c {
		n += len(sets)
	}
	return n
}

// Clone returns a deep copy.
func (c CompletedSets) Clone() CompletedSets {
	out := make(CompletedSets, len(c))
	for id, sets := range c {
		out[id] = append([]int(nil), sets...)
	}
	return out
}

// ActiveSession is one in-progress execution of a plan. Plan is a snapshot
// taken at start; StartedAt never changes after creation.
type ActiveSession struct {
	Plan          WorkoutPlan   `json:"plan"`
	StartedAt     time.Time     `json:"startedAt"`
	CompletedSets CompletedSets `json:"completedSets"`
}

var errInvalidSession = errors.New("active session is missing its plan or start time")

// Validate reports whether a decoded session is usable: it needs a plan and
// a start instant, and every completed index must address a set of an
// exercise in the snapshot, at most once.
func (s *ActiveSession) Validate() error {
	if s.StartedAt.IsZero() || s.Plan.ID.IsZero() {
		return errInvalidSession
	}
	for id, sets := range s.CompletedSets {
		ex, ok := s.Exercise(id)
		if !ok {
			return fmt.Errorf("completed sets reference unknown exercise %q", id)
		}
		seen := make(map[int]bool, len(sets))
		for _, idx := range sets {
			if idx < 0 || idx >= ex.TargetSets() || seen[idx] {
				return fmt.Errorf("invalid set index %d for exercise %q", idx, id)
			}
			seen[idx] = true
		}
	}
	return nil
}

// Exercise looks up an exercise of the snapshot by hex id.
func (s *ActiveSession) Exercise(exerciseID string) (*Exercise, bool) {
	for i := range s.Plan.Exercises {
		if s.Plan.Exercises[i].ID.Hex() == exerciseID {
			return &s.Plan.Exercises[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so callers cannot alias the live session.
func (s *ActiveSession) Clone() *ActiveSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Plan = ClonePlan(s.Plan)
	out.CompletedSets = s.CompletedSets.Clone()
	return &out
}

// ClonePlan deep-copies a plan including the optional target pointers of
// its exercises.
func ClonePlan(p WorkoutPlan) WorkoutPlan {
	out := p
	if p.Exercises != nil {
		out.Exercises = make([]Exercise, len(p.Exercises))
		for i, ex := range p.Exercises {
			cp := ex
			if ex.Sets != nil {
				v := *ex.Sets
				cp.Sets = &v
			}
			if ex.Reps != nil {
				v := *ex.Reps
				cp.Reps = &v
			}
			if ex.Weight != nil {
				v := *ex.Weight
				cp.Weight = &v
			}
			out.Exercises[i] = cp
		}
	}
	return out
}
