package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"glog/workout-server/internal/domain"
)

func exerciseNames(plan *domain.WorkoutPlan) []string {
	names := []string{}
	for _, ex := range plan.Exercises {
		names = append(names, ex.Name)
	}
	return names
}

func TestPlanServiceCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := primitive.NewObjectID()

	plan, err := f.plans.CreatePlan(ctx, userID, 2, "  Legs  ")
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if plan.Name != "Legs" || plan.DayOfWeek != 2 {
		t.Fatalf("unexpected plan %+v", plan)
	}

	tests := []struct {
		name string
		day  int
		plan string
		want error
	}{
		{"day taken", 2, "Other", ErrPlanDayTaken},
		{"day too large", 7, "Sunday+1", ErrValidationFailed},
		{"negative day", -1, "Before Monday", ErrValidationFailed},
		{"blank name", 3, "   ", ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.plans.CreatePlan(ctx, userID, tt.day, tt.plan); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("same day for another user", func(t *testing.T) {
		if _, err := f.plans.CreatePlan(ctx, primitive.NewObjectID(), 2, "Legs"); err != nil {
			t.Fatalf("expected days to be per user: %v", err)
		}
	})
}

func TestPlanServiceList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := primitive.NewObjectID()

	for _, day := range []int{4, 0, 2} {
		if _, err := f.plans.CreatePlan(ctx, userID, day, "Day"); err != nil {
			t.Fatalf("CreatePlan: %v", err)
		}
	}
	plans, err := f.plans.ListPlans(ctx, userID)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	var days []int
	for _, p := range plans {
		days = append(days, p.DayOfWeek)
	}
	if diff := cmp.Diff([]int{0, 2, 4}, days); diff != "" {
		t.Fatalf("day order mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanServiceExercises(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := primitive.NewObjectID()
	plan := f.seedPushDay(t, userID)

	if diff := cmp.Diff([]string{"Bench", "Fly"}, exerciseNames(plan)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	for i, ex := range plan.Exercises {
		if ex.OrderIndex != i {
			t.Fatalf("expected order index %d for %s, got %d", i, ex.Name, ex.OrderIndex)
		}
	}

	t.Run("invalid targets", func(t *testing.T) {
		inputs := []ExerciseInput{
			{Name: ""},
			{Name: "Dips", Sets: intPtr(0)},
			{Name: "Dips", Reps: intPtr(-1)},
			{Name: "Dips", Weight: floatPtr(-5)},
		}
		for _, in := range inputs {
			if _, err := f.plans.AddExercise(ctx, userID, plan.ID, in); !errors.Is(err, ErrValidationFailed) {
				t.Errorf("AddExercise(%+v): expected ErrValidationFailed, got %v", in, err)
			}
		}
	})

	t.Run("update", func(t *testing.T) {
		fly := plan.Exercises[1]
		updated, err := f.plans.UpdateExercise(ctx, userID, fly.ID, ExerciseInput{Name: "Cable Fly", Sets: intPtr(4)})
		if err != nil {
			t.Fatalf("UpdateExercise: %v", err)
		}
		if updated.Name != "Cable Fly" || *updated.Sets != 4 || updated.Reps != nil {
			t.Fatalf("unexpected update result %+v", updated)
		}
		if updated.OrderIndex != fly.OrderIndex {
			t.Fatal("update must not move the exercise")
		}
	})

	t.Run("reorder", func(t *testing.T) {
		current, _ := f.plans.GetPlan(ctx, userID, plan.ID)
		a, b := current.Exercises[0].ID, current.Exercises[1].ID

		if err := f.plans.ReorderExercises(ctx, userID, plan.ID, []primitive.ObjectID{b, a}); err != nil {
			t.Fatalf("ReorderExercises: %v", err)
		}
		reordered, _ := f.plans.GetPlan(ctx, userID, plan.ID)
		if diff := cmp.Diff([]string{"Cable Fly", "Bench"}, exerciseNames(reordered)); diff != "" {
			t.Fatalf("mismatch (-want +got):\n%s", diff)
		}

		bad := [][]primitive.ObjectID{
			{a},
			{a, a},
			{a, primitive.NewObjectID()},
		}
		for _, ids := range bad {
			if err := f.plans.ReorderExercises(ctx, userID, plan.ID, ids); !errors.Is(err, ErrReorderMismatch) {
				t.Errorf("expected ErrReorderMismatch for %v, got %v", ids, err)
			}
		}
	})

	t.Run("other users see nothing", func(t *testing.T) {
		stranger := primitive.NewObjectID()
		if _, err := f.plans.GetPlan(ctx, stranger, plan.ID); !errors.Is(err, ErrPlanNotFound) {
			t.Errorf("GetPlan: expected ErrPlanNotFound, got %v", err)
		}
		if _, err := f.plans.AddExercise(ctx, stranger, plan.ID, ExerciseInput{Name: "Dips"}); !errors.Is(err, ErrPlanNotFound) {
			t.Errorf("AddExercise: expected ErrPlanNotFound, got %v", err)
		}
		if _, err := f.plans.UpdateExercise(ctx, stranger, plan.Exercises[0].ID, ExerciseInput{Name: "Mine"}); !errors.Is(err, ErrExerciseNotFound) {
			t.Errorf("UpdateExercise: expected ErrExerciseNotFound, got %v", err)
		}
		if err := f.plans.DeleteExercise(ctx, stranger, plan.Exercises[0].ID); !errors.Is(err, ErrExerciseNotFound) {
			t.Errorf("DeleteExercise: expected ErrExerciseNotFound, got %v", err)
		}
		if err := f.plans.RenamePlan(ctx, stranger, plan.ID, "Mine"); !errors.Is(err, ErrPlanNotFound) {
			t.Errorf("RenamePlan: expected ErrPlanNotFound, got %v", err)
		}
		if err := f.plans.DeletePlan(ctx, stranger, plan.ID); !errors.Is(err, ErrPlanNotFound) {
			t.Errorf("DeletePlan: expected ErrPlanNotFound, got %v", err)
		}
	})

	t.Run("delete exercise then plan", func(t *testing.T) {
		if err := f.plans.DeleteExercise(ctx, userID, plan.Exercises[0].ID); err != nil {
			t.Fatalf("DeleteExercise: %v", err)
		}
		if err := f.plans.DeletePlan(ctx, userID, plan.ID); err != nil {
			t.Fatalf("DeletePlan: %v", err)
		}
		if _, err := f.plans.GetPlan(ctx, userID, plan.ID); !errors.Is(err, ErrPlanNotFound) {
			t.Fatalf("expected ErrPlanNotFound, got %v", err)
		}
		if _, err := f.plans.UpdateExercise(ctx, userID, plan.Exercises[1].ID, ExerciseInput{Name: "x"}); !errors.Is(err, ErrExerciseNotFound) {
			t.Fatalf("expected the plan's exercises to be deleted, got %v", err)
		}
		if _, err := f.plans.CreatePlan(ctx, userID, 0, "New Monday"); err != nil {
			t.Fatalf("expected the day to be free again: %v", err)
		}
	})
}
