package service

import (
	"context"
	"glog/workout-server/internal/domain"
	"glog/workout-server/internal/session"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	bolt "go.etcd.io/bbolt"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoreFactory returns the session store slot of one user.
type StoreFactory func(userID primitive.ObjectID) session.Store

// MemoryStores returns a factory handing each user an in-memory slot.
func MemoryStores(logger *log.Logger) StoreFactory {
	var mu sync.Mutex
	stores := map[primitive.ObjectID]session.Store{}
	return func(userID primitive.ObjectID) session.Store {
		mu.Lock()
		defer mu.Unlock()
		st, ok := stores[userID]
		if !ok {
			st = session.NewMemoryStore(logger)
			stores[userID] = st
		}
		return st
	}
}

// BoltStores returns a factory handing each user its own key in db.
func BoltStores(db *bolt.DB, logger *log.Logger) StoreFactory {
	return func(userID primitive.ObjectID) session.Store {
		return session.NewBoltStore(db, session.UserSlot(userID.Hex()), logger)
	}
}

type WorkoutService interface {
	// Controller returns the user's session controller, restoring a stored
	// session on first use.
	Controller(ctx context.Context, userID primitive.ObjectID) (*session.Controller, error)
	// StartWorkout starts a session from the user's current version of a plan.
	StartWorkout(ctx context.Context, userID, planID primitive.ObjectID) (*domain.ActiveSession, error)
}

// workoutService keeps one controller per user.
type workoutService struct {
	planService    PlanService
	historyService HistoryService
	stores         StoreFactory
	clock          session.Clock
	tickInterval   time.Duration
	logger         *log.Logger

	mu          sync.Mutex
	controllers map[primitive.ObjectID]*session.Controller
}

// NewWorkoutService creates a new instance of workoutService. A nil clock
// means the wall clock.
func NewWorkoutService(
	planService PlanService,
	historyService HistoryService,
	stores StoreFactory,
	clock session.Clock,
	tickInterval time.Duration,
	logger *log.Logger,
) WorkoutService {
	return &workoutService{
		planService:    planService,
		historyService: historyService,
		stores:         stores,
		clock:          clock,
		tickInterval:   tickInterval,
		logger:         logger,
		controllers:    map[primitive.ObjectID]*session.Controller{},
	}
}

func (s *workoutService) Controller(ctx context.Context, userID primitive.ObjectID) (*session.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.controllers[userID]; ok {
		return c, nil
	}

	logger := s.logger.With("user", userID.Hex())
	c, err := session.New(ctx, session.Deps{
		Store:        s.stores(userID),
		History:      s.historyService,
		UserID:       userID,
		Confirmer:    session.ContextConfirmer{},
		Notifier:     session.LogNotifier{Logger: logger},
		Clock:        s.clock,
		Logger:       logger,
		TickInterval: s.tickInterval,
	})
	if err != nil {
		return nil, err
	}
	s.controllers[userID] = c
	return c, nil
}

func (s *workoutService) StartWorkout(ctx context.Context, userID, planID primitive.ObjectID) (*domain.ActiveSession, error) {
	plan, err := s.planService.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	c, err := s.Controller(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.Start(ctx, *plan)
}
