package session

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"glog/workout-server/internal/domain"
)

var testStart = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type historyCall struct {
	UserID          primitive.ObjectID
	PlanID          primitive.ObjectID
	Exercises       []domain.ExerciseProgress
	CompletedAt     string
	DurationSeconds int64
}

// fakeHistory records calls. When release is set, each call blocks until a
// value is received from it; started is signalled on entry.
type fakeHistory struct {
	mu      sync.Mutex
	calls   []historyCall
	err     error
	started chan struct{}
	release chan struct{}
}

func (h *fakeHistory) CreateHistoryRecord(_ context.Context, userID, planID primitive.ObjectID, exercises []domain.ExerciseProgress, completedAt string, durationSeconds int64) (*domain.WorkoutHistory, error) {
	h.mu.Lock()
	h.calls = append(h.calls, historyCall{userID, planID, exercises, completedAt, durationSeconds})
	err := h.err
	h.mu.Unlock()

	if h.started != nil {
		h.started <- struct{}{}
	}
	if h.release != nil {
		<-h.release
	}
	if err != nil {
		return nil, err
	}
	id := planID
	return &domain.WorkoutHistory{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		WorkoutPlanID:   &id,
		DurationSeconds: durationSeconds,
		Exercises:       exercises,
	}, nil
}

func (h *fakeHistory) Calls() []historyCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]historyCall(nil), h.calls...)
}

type note struct {
	Level   Level
	Message string
}

type noteRecorder struct {
	mu    sync.Mutex
	notes []note
}

func (r *noteRecorder) Notify(level Level, message string) {
	r.mu.Lock()
	r.notes = append(r.notes, note{level, message})
	r.mu.Unlock()
}

func (r *noteRecorder) Notes() []note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]note(nil), r.notes...)
}

func (r *noteRecorder) Last() note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return note{}
	}
	return r.notes[len(r.notes)-1]
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// pushDay is a plan with three exercises stored out of order.
func pushDay() domain.WorkoutPlan {
	planID := primitive.NewObjectID()
	return domain.WorkoutPlan{
		ID:        planID,
		UserID:    primitive.NewObjectID(),
		DayOfWeek: 0,
		Name:      "Push Day",
		Exercises: []domain.Exercise{
			{ID: primitive.NewObjectID(), WorkoutPlanID: planID, Name: "Fly", Sets: intPtr(2), Reps: intPtr(12), OrderIndex: 1},
			{ID: primitive.NewObjectID(), WorkoutPlanID: planID, Name: "Bench", Sets: intPtr(3), Reps: intPtr(8), Weight: floatPtr(60), OrderIndex: 0},
			{ID: primitive.NewObjectID(), WorkoutPlanID: planID, Name: "Dips", OrderIndex: 2},
		},
	}
}

// exerciseID returns the hex id of the named exercise of plan.
func exerciseID(t *testing.T, plan domain.WorkoutPlan, name string) string {
	t.Helper()
	for _, ex := range plan.Exercises {
		if ex.Name == name {
			return ex.ID.Hex()
		}
	}
	t.Fatalf("plan has no exercise %q", name)
	return ""
}

type testController struct {
	*Controller
	store   *MemoryStore
	history *fakeHistory
	notes   *noteRecorder
	clock   *fakeClock
	confirm bool
}

func newTestController(t *testing.T) *testController {
	t.Helper()
	return newTestControllerWith(t, NewMemoryStore(quietLogger()), &fakeHistory{})
}

func newTestControllerWith(t *testing.T, store *MemoryStore, history *fakeHistory) *testController {
	t.Helper()
	tc := &testController{
		store:   store,
		history: history,
		notes:   &noteRecorder{},
		clock:   newFakeClock(testStart),
	}
	confirmer := ConfirmerFunc(func(context.Context, Prompt) bool {
		return tc.confirm
	})
	c, err := New(context.Background(), Deps{
		Store:        store,
		History:      history,
		UserID:       primitive.NewObjectID(),
		Confirmer:    confirmer,
		Notifier:     tc.notes,
		Clock:        tc.clock,
		Logger:       quietLogger(),
		TickInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tc.Controller = c
	return tc
}
