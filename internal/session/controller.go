// Package session runs the active workout: a durable single-slot store, the
// elapsed-time timer, set completion bookkeeping, and the lifecycle
// controller that turns a finished session into a history record.
package session

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"glog/workout-server/internal/domain"
)

// State is the lifecycle state of a controller.
type State int

const (
	StateIdle State = iota
	StateActiveHidden
	StateActiveVisible
)

func (s State) String() string {
	switch s {
	case StateActiveHidden:
		return "active_hidden"
	case StateActiveVisible:
		return "active_visible"
	default:
		return "idle"
	}
}

var cancelPrompt = Prompt{
	Title:       "Cancel Workout",
	Message:     "Are you sure you want to cancel this workout? All progress will be lost.",
	ConfirmText: "Yes, Cancel",
	CancelText:  "No, Keep Going",
}

// Deps are the collaborators of a Controller. Store and History are
// required; the rest have defaults.
type Deps struct {
	Store        Store
	History      HistoryService
	UserID       primitive.ObjectID
	Confirmer    Confirmer // declines everything when nil
	Notifier     Notifier  // logs when nil
	Clock        Clock
	Logger       *log.Logger
	TickInterval time.Duration
}

// View is a point-in-time copy of the controller state.
type View struct {
	State          State
	Session        *domain.ActiveSession // nil when idle
	ElapsedSeconds int64
	Progress       Progress
	Finishing      bool
}

// Controller owns one active session and serializes every mutation of it.
// The session survives restarts through its Store.
type Controller struct {
	store     Store
	history   *HistoryAdapter
	confirmer Confirmer
	notifier  Notifier
	clock     Clock
	logger    *log.Logger
	tick      time.Duration

	mu        sync.Mutex
	session   *domain.ActiveSession
	visible   bool
	finishing bool
}

// New builds a controller and restores a stored session, if any, in the
// hidden state. A store that fails to load is logged and treated as empty.
func New(ctx context.Context, deps Deps) (*Controller, error) {
	if deps.Store == nil || deps.History == nil {
		return nil, errors.New("session controller requires a store and a history service")
	}
	c := &Controller{
		store:     deps.Store,
		history:   NewHistoryAdapter(deps.History, deps.UserID),
		confirmer: deps.Confirmer,
		notifier:  deps.Notifier,
		clock:     deps.Clock,
		logger:    deps.Logger,
		tick:      deps.TickInterval,
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.confirmer == nil {
		c.confirmer = ConfirmerFunc(func(context.Context, Prompt) bool { return false })
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Logger: c.logger}
	}
	if c.clock == nil {
		c.clock = SystemClock()
	}
	if c.tick <= 0 {
		c.tick = DefaultTickInterval
	}

	restored, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Error("failed to load active workout", "err", err)
	} else if restored != nil {
		c.session = restored
		c.logger.Info("restored active workout", "plan", restored.Plan.Name, "startedAt", restored.StartedAt)
	}
	return c, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case c.session == nil:
		return StateIdle
	case c.visible:
		return StateActiveVisible
	default:
		return StateActiveHidden
	}
}

// Snapshot returns a copy of the current state with derived values.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{State: c.stateLocked(), Finishing: c.finishing}
	if c.session != nil {
		v.Session = c.session.Clone()
		v.ElapsedSeconds = Elapsed(c.session.StartedAt, c.clock.Now())
		v.Progress = ComputeProgress(c.session.CompletedSets, c.session.Plan)
	}
	return v
}

// Start begins a workout from a snapshot of plan and shows it. A workout
// already in progress is never replaced: the call fails with ErrSessionActive.
func (c *Controller) Start(ctx context.Context, plan domain.WorkoutPlan) (*domain.ActiveSession, error) {
	if plan.ID.IsZero() {
		return nil, ErrInvalidPlan
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finishing {
		return nil, ErrFinishInProgress
	}
	if c.session != nil {
		return nil, ErrSessionActive
	}

	snapshot := domain.ClonePlan(plan)
	slices.SortStableFunc(snapshot.Exercises, func(a, b domain.Exercise) int {
		return cmp.Compare(a.OrderIndex, b.OrderIndex)
	})

	c.session = &domain.ActiveSession{
		Plan:          snapshot,
		StartedAt:     c.clock.Now().UTC(),
		CompletedSets: domain.CompletedSets{},
	}
	c.visible = true
	c.persistLocked(ctx)

	c.notifier.Notify(LevelSuccess, fmt.Sprintf("Started %s", plan.Name))
	return c.session.Clone(), nil
}

// ToggleSet flips completion of one set. The exercise must belong to the
// session's plan and the index must be below its target set count.
func (c *Controller) ToggleSet(ctx context.Context, exerciseID string, setIndex int) (domain.CompletedSets, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil, ErrNoActiveSession
	}
	ex, ok := c.session.Exercise(exerciseID)
	if !ok {
		return nil, ErrUnknownExercise
	}
	if setIndex < 0 || setIndex >= ex.TargetSets() {
		return nil, ErrInvalidSetIndex
	}

	c.session.CompletedSets = Toggle(c.session.CompletedSets, exerciseID, setIndex)
	c.persistLocked(ctx)
	return c.session.CompletedSets.Clone(), nil
}

// ToggleVisibility flips the detail view, or sets it when explicit is given.
// It returns the new visibility.
func (c *Controller) ToggleVisibility(explicit *bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return false, ErrNoActiveSession
	}
	if explicit != nil {
		c.visible = *explicit
	} else {
		c.visible = !c.visible
	}
	return c.visible, nil
}

// Cancel discards the workout after the user confirms. It reports whether
// the workout was discarded; declining changes nothing.
func (c *Controller) Cancel(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return false, ErrNoActiveSession
	}
	if c.finishing {
		c.mu.Unlock()
		return false, ErrFinishInProgress
	}
	asked := c.session
	c.mu.Unlock()

	// The answer may take a while; toggles stay possible meanwhile.
	if !c.confirmer.Confirm(ctx, cancelPrompt) {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != asked {
		return false, ErrNoActiveSession
	}
	if c.finishing {
		return false, ErrFinishInProgress
	}
	c.discardLocked(ctx)
	c.notifier.Notify(LevelInfo, "Workout canceled")
	return true, nil
}

// Finish records the workout in history and ends it. Exercises without a
// completed set are not recorded; with none at all the call fails with
// ErrNoCompletedSets. If the history call fails the session is kept and the
// error wraps ErrFinishFailed.
func (c *Controller) Finish(ctx context.Context) (*domain.WorkoutHistory, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	if c.finishing {
		c.mu.Unlock()
		return nil, ErrFinishInProgress
	}

	now := c.clock.Now()
	payload, err := BuildPayload(c.session, now, Elapsed(c.session.StartedAt, now))
	if err != nil {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarning, "Complete at least one set to finish")
		return nil, err
	}
	c.finishing = true
	finishing := c.session
	c.mu.Unlock()

	// The payload is fixed; toggles arriving during the call do not change it.
	res := <-c.history.Submit(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishing = false

	if res.Err != nil {
		c.logger.Error("failed to save workout", "plan", finishing.Plan.Name, "err", res.Err)
		c.notifier.Notify(LevelError, "Failed to save workout")
		return nil, fmt.Errorf("%w: %w", ErrFinishFailed, res.Err)
	}

	if c.session == finishing {
		c.discardLocked(ctx)
	}
	c.notifier.Notify(LevelSuccess, "Workout finished! Great job!")
	return res.Record, nil
}

// Watch streams the elapsed seconds of the current session on the tick
// cadence. The channel closes when ctx is done or the session ends.
func (c *Controller) Watch(ctx context.Context) (<-chan int64, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	watched := c.session
	c.mu.Unlock()

	out := make(chan int64, 1)
	ended := make(chan struct{}, 1)
	timer := NewTimer(c.clock, c.tick)

	timer.Start(watched.StartedAt, func(elapsed int64) {
		c.mu.Lock()
		current := c.session
		c.mu.Unlock()
		if current != watched {
			select {
			case ended <- struct{}{}:
			default:
			}
			return
		}
		// Drop stale ticks rather than block the timer.
		select {
		case <-out:
		default:
		}
		out <- elapsed
	})

	go func() {
		defer close(out)
		select {
		case <-ctx.Done():
		case <-ended:
		}
		timer.Stop()
	}()
	return out, nil
}

func (c *Controller) persistLocked(ctx context.Context) {
	if err := c.store.Save(ctx, c.session); err != nil {
		c.logger.Error("failed to persist active workout", "err", err)
		c.notifier.Notify(LevelError, "Failed to save workout progress locally")
	}
}

func (c *Controller) discardLocked(ctx context.Context) {
	c.session = nil
	c.visible = false
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("failed to clear active workout", "err", err)
	}
}
