package session

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"glog/workout-server/internal/domain"
)

// CompletedAtLayout is the ISO-8601 form of finish timestamps (UTC, millisecond precision).
const CompletedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// HistoryService creates history records. It is the only network-fallible
// collaborator of the controller.
type HistoryService interface {
	CreateHistoryRecord(
		ctx context.Context,
		userID, planID primitive.ObjectID,
		exercises []domain.ExerciseProgress,
		completedAt string,
		durationSeconds int64,
	) (*domain.WorkoutHistory, error)
}

// FinishPayload is the history creation request computed from a session.
type FinishPayload struct {
	PlanID          primitive.ObjectID
	Exercises       []domain.ExerciseProgress
	CompletedAt     string
	DurationSeconds int64
}

// BuildPayload turns a session into a history request. Exercises keep plan
// order; those without a completed set are left out and Sets is the number
// of completed sets. A session with nothing completed yields ErrNoCompletedSets.
func BuildPayload(s *domain.ActiveSession, completedAt time.Time, durationSeconds int64) (FinishPayload, error) {
	var exercises []domain.ExerciseProgress
	for _, ex := range s.Plan.Exercises {
		done := len(s.CompletedSets[ex.ID.Hex()])
		if done == 0 {
			continue
		}
		p := domain.ExerciseProgress{Name: ex.Name, Sets: done}
		if ex.Reps != nil {
			reps := *ex.Reps
			p.Reps = &reps
		}
		if ex.Weight != nil {
			weight := *ex.Weight
			p.Weight = &weight
		}
		exercises = append(exercises, p)
	}
	if len(exercises) == 0 {
		return FinishPayload{}, ErrNoCompletedSets
	}

	return FinishPayload{
		PlanID:          s.Plan.ID,
		Exercises:       exercises,
		CompletedAt:     completedAt.UTC().Format(CompletedAtLayout),
		DurationSeconds: durationSeconds,
	}, nil
}

// Result is the outcome of a history submission.
type Result struct {
	Record *domain.WorkoutHistory
	Err    error
}

// HistoryAdapter submits finish payloads for one user. It never retries.
type HistoryAdapter struct {
	svc    HistoryService
	userID primitive.ObjectID
}

// NewHistoryAdapter binds svc to userID.
func NewHistoryAdapter(svc HistoryService, userID primitive.ObjectID) *HistoryAdapter {
	return &HistoryAdapter{svc: svc, userID: userID}
}

// Submit runs the history call as its own task. The returned channel
// delivers exactly one Result and is buffered, so abandoning it leaks nothing.
func (a *HistoryAdapter) Submit(ctx context.Context, p FinishPayload) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		record, err := a.svc.CreateHistoryRecord(ctx, a.userID, p.PlanID, p.Exercises, p.CompletedAt, p.DurationSeconds)
		out <- Result{Record: record, Err: err}
	}()
	return out
}
