package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"glog/workout-server/internal/domain"
)

func TestHistoryServiceCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := primitive.NewObjectID()
	plan := f.seedPushDay(t, userID)
	progress := []domain.ExerciseProgress{{Name: "Bench", Sets: 2, Reps: intPtr(8), Weight: floatPtr(60)}}

	record, err := f.history.CreateHistoryRecord(ctx, userID, plan.ID, progress, "2026-10-14T09:10:00.000Z", 600)
	if err != nil {
		t.Fatalf("CreateHistoryRecord: %v", err)
	}
	if record.ID.IsZero() {
		t.Fatal("expected an id")
	}
	if record.WorkoutName != "Push Day" || record.DayOfWeek == nil || *record.DayOfWeek != 0 {
		t.Fatalf("expected plan name and day to be stamped, got %+v", record)
	}
	if record.WorkoutPlanID == nil || *record.WorkoutPlanID != plan.ID {
		t.Fatalf("expected plan id %s, got %v", plan.ID.Hex(), record.WorkoutPlanID)
	}
	want := time.Date(2026, 10, 14, 9, 10, 0, 0, time.UTC)
	if !record.CompletedAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, record.CompletedAt)
	}

	t.Run("deleted plan", func(t *testing.T) {
		gone := primitive.NewObjectID()
		record, err := f.history.CreateHistoryRecord(ctx, userID, gone, progress, "2026-10-14T09:10:00Z", 1)
		if err != nil {
			t.Fatalf("CreateHistoryRecord: %v", err)
		}
		if record.WorkoutName != "" || *record.WorkoutPlanID != gone {
			t.Fatalf("expected a dangling plan reference without a name, got %+v", record)
		}
	})

	tests := []struct {
		name        string
		exercises   []domain.ExerciseProgress
		completedAt string
		duration    int64
	}{
		{"no exercises", nil, "2026-10-14T09:10:00.000Z", 1},
		{"negative duration", progress, "2026-10-14T09:10:00.000Z", -1},
		{"bad timestamp", progress, "yesterday", 1},
		{"zero sets", []domain.ExerciseProgress{{Name: "Bench", Sets: 0}}, "2026-10-14T09:10:00.000Z", 1},
		{"unnamed exercise", []domain.ExerciseProgress{{Sets: 1}}, "2026-10-14T09:10:00.000Z", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.history.CreateHistoryRecord(ctx, userID, plan.ID, tt.exercises, tt.completedAt, tt.duration)
			if !errors.Is(err, ErrHistoryValidation) {
				t.Fatalf("expected ErrHistoryValidation, got %v", err)
			}
		})
	}
}

func TestHistoryServiceList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := primitive.NewObjectID()
	progress := []domain.ExerciseProgress{{Name: "Bench", Sets: 1}}

	for _, at := range []string{"2026-10-12T09:00:00Z", "2026-10-14T09:00:00Z", "2026-10-13T09:00:00Z"} {
		if _, err := f.history.CreateHistoryRecord(ctx, userID, primitive.NilObjectID, progress, at, 60); err != nil {
			t.Fatalf("CreateHistoryRecord: %v", err)
		}
	}
	if _, err := f.history.CreateHistoryRecord(ctx, primitive.NewObjectID(), primitive.NilObjectID, progress, "2026-10-15T09:00:00Z", 60); err != nil {
		t.Fatalf("CreateHistoryRecord: %v", err)
	}

	records, err := f.history.ListHistory(ctx, userID, 0, 0)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected the user's 3 records, got %d", len(records))
	}
	for i, day := range []int{14, 13, 12} {
		if records[i].CompletedAt.Day() != day {
			t.Fatalf("expected newest first, got day %d at %d", records[i].CompletedAt.Day(), i)
		}
	}
	if records[0].WorkoutPlanID != nil {
		t.Fatal("expected no plan reference for a record created without a plan")
	}

	page, _ := f.history.ListHistory(ctx, userID, 1, 1)
	if len(page) != 1 || page[0].CompletedAt.Day() != 13 {
		t.Fatalf("expected the second newest record, got %+v", page)
	}
	if rest, _ := f.history.ListHistory(ctx, userID, MaxHistoryLimit+100, 3); len(rest) != 0 {
		t.Fatalf("expected an empty page past the end, got %d", len(rest))
	}
}
