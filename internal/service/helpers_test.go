package service

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"glog/workout-server/internal/domain"
	"glog/workout-server/internal/repository/memory"
)

type fixture struct {
	db       *memory.DB
	plans    PlanService
	history  HistoryService
	workouts WorkoutService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	planRepo := memory.NewWorkoutPlanRepository(db)
	plans := NewPlanService(planRepo, memory.NewExerciseRepository(db))
	history := NewHistoryService(memory.NewHistoryRepository(db), planRepo)
	logger := log.New(io.Discard)
	return &fixture{
		db:       db,
		plans:    plans,
		history:  history,
		workouts: NewWorkoutService(plans, history, MemoryStores(logger), nil, 0, logger),
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// seedPushDay creates a Monday plan with Bench (3x8 @ 60) and Fly (2x12).
func (f *fixture) seedPushDay(t *testing.T, userID primitive.ObjectID) *domain.WorkoutPlan {
	t.Helper()
	ctx := context.Background()
	plan, err := f.plans.CreatePlan(ctx, userID, 0, "Push Day")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	inputs := []ExerciseInput{
		{Name: "Bench", Sets: intPtr(3), Reps: intPtr(8), Weight: floatPtr(60)},
		{Name: "Fly", Sets: intPtr(2), Reps: intPtr(12)},
	}
	for _, in := range inputs {
		if _, err := f.plans.AddExercise(ctx, userID, plan.ID, in); err != nil {
			t.Fatalf("AddExercise: %v", err)
		}
	}
	full, err := f.plans.GetPlan(ctx, userID, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	return full
}
