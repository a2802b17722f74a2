// Package memory implements the repositories in process memory. Records are
// copied in and out so callers never share state with the store.
package memory

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"glog/workout-server/internal/domain"
	"glog/workout-server/internal/repository"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB holds every collection. The zero value is not usable; call New.
type DB struct {
	mu        sync.RWMutex
	users     map[primitive.ObjectID]domain.User
	plans     map[primitive.ObjectID]domain.WorkoutPlan
	exercises map[primitive.ObjectID]domain.Exercise
	history   map[primitive.ObjectID]domain.WorkoutHistory
	now       func() time.Time
}

// New returns an empty database.
func New() *DB {
	return &DB{
		users:     map[primitive.ObjectID]domain.User{},
		plans:     map[primitive.ObjectID]domain.WorkoutPlan{},
		exercises: map[primitive.ObjectID]domain.Exercise{},
		history:   map[primitive.ObjectID]domain.WorkoutHistory{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func copyExercise(ex domain.Exercise) domain.Exercise {
	p := domain.ClonePlan(domain.WorkoutPlan{Exercises: []domain.Exercise{ex}})
	return p.Exercises[0]
}

func copyHistory(h domain.WorkoutHistory) domain.WorkoutHistory {
	out := h
	if h.WorkoutPlanID != nil {
		id := *h.WorkoutPlanID
		out.WorkoutPlanID = &id
	}
	if h.DayOfWeek != nil {
		day := *h.DayOfWeek
		out.DayOfWeek = &day
	}
	out.Exercises = make([]domain.ExerciseProgress, len(h.Exercises))
	for i, ex := range h.Exercises {
		cp := ex
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
	return out
}

type userRepository struct{ db *DB }

// NewUserRepository returns the users collection of db.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user email and password hash are required")
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, u := range r.db.users {
		if u.Email == email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.Email = email
	user.CreatedAt = r.db.now()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type workoutPlanRepository struct{ db *DB }

// NewWorkoutPlanRepository returns the plans collection of db.
func NewWorkoutPlanRepository(db *DB) repository.WorkoutPlanRepository {
	return &workoutPlanRepository{db: db}
}

// Create enforces one plan per user and day like the unique index does.
func (r *workoutPlanRepository) Create(_ context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("workout plan requires userId and name")
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, p := range r.db.plans {
		if p.UserID == plan.UserID && p.DayOfWeek == plan.DayOfWeek {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = r.db.now()
	plan.UpdatedAt = plan.CreatedAt

	stored := *plan
	stored.Exercises = nil
	r.db.plans[plan.ID] = stored
	return plan.ID, nil
}

func (r *workoutPlanRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutPlan, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *workoutPlanRepository) GetByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var plans []domain.WorkoutPlan
	for _, p := range r.db.plans {
		if p.UserID == userID {
			plans = append(plans, p)
		}
	}
	slices.SortFunc(plans, func(a, b domain.WorkoutPlan) int {
		return cmp.Compare(a.DayOfWeek, b.DayOfWeek)
	})
	return plans, nil
}

func (r *workoutPlanRepository) Rename(_ context.Context, id, userID primitive.ObjectID, name string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.plans[id]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	p.Name = name
	p.UpdatedAt = r.db.now()
	r.db.plans[id] = p
	return nil
}

func (r *workoutPlanRepository) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.plans[id]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.db.plans, id)
	return nil
}

type exerciseRepository struct{ db *DB }

// NewExerciseRepository returns the exercises collection of db.
func NewExerciseRepository(db *DB) repository.ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.WorkoutPlanID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and workout plan ID are required")
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	exercise.ID = primitive.NewObjectID()
	exercise.CreatedAt = r.db.now()
	exercise.UpdatedAt = exercise.CreatedAt
	r.db.exercises[exercise.ID] = copyExercise(*exercise)
	return exercise.ID, nil
}

func (r *exerciseRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	ex, ok := r.db.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ex = copyExercise(ex)
	return &ex, nil
}

func (r *exerciseRepository) GetByPlanID(_ context.Context, planID primitive.ObjectID) ([]domain.Exercise, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var exercises []domain.Exercise
	for _, ex := range r.db.exercises {
		if ex.WorkoutPlanID == planID {
			exercises = append(exercises, copyExercise(ex))
		}
	}
	slices.SortFunc(exercises, func(a, b domain.Exercise) int {
		return cmp.Or(cmp.Compare(a.OrderIndex, b.OrderIndex), a.CreatedAt.Compare(b.CreatedAt))
	})
	return exercises, nil
}

func (r *exerciseRepository) Update(_ context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ex, ok := r.db.exercises[exercise.ID]
	if !ok || ex.UserID != exercise.UserID {
		return repository.ErrNotFound
	}
	updated := copyExercise(*exercise)
	ex.Name = updated.Name
	ex.Sets = updated.Sets
	ex.Reps = updated.Reps
	ex.Weight = updated.Weight
	ex.UpdatedAt = r.db.now()
	r.db.exercises[ex.ID] = ex
	return nil
}

func (r *exerciseRepository) SetOrder(_ context.Context, planID primitive.ObjectID, orderedIDs []primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, id := range orderedIDs {
		if ex, ok := r.db.exercises[id]; !ok || ex.WorkoutPlanID != planID {
			return repository.ErrNotFound
		}
	}
	for i, id := range orderedIDs {
		ex := r.db.exercises[id]
		ex.OrderIndex = i
		r.db.exercises[id] = ex
	}
	return nil
}

func (r *exerciseRepository) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ex, ok := r.db.exercises[id]
	if !ok || ex.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.db.exercises, id)
	return nil
}

func (r *exerciseRepository) DeleteByPlanID(_ context.Context, planID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for id, ex := range r.db.exercises {
		if ex.WorkoutPlanID == planID {
			delete(r.db.exercises, id)
		}
	}
	return nil
}

type historyRepository struct{ db *DB }

// NewHistoryRepository returns the workout history collection of db.
func NewHistoryRepository(db *DB) repository.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(_ context.Context, record *domain.WorkoutHistory) (primitive.ObjectID, error) {
	if record.UserID == primitive.NilObjectID || len(record.Exercises) == 0 {
		return primitive.NilObjectID, errors.New("history record requires userId and exercises")
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	record.ID = primitive.NewObjectID()
	record.CreatedAt = r.db.now()
	r.db.history[record.ID] = copyHistory(*record)
	return record.ID, nil
}

func (r *historyRepository) GetByUserID(_ context.Context, userID primitive.ObjectID, limit, offset int64) ([]domain.WorkoutHistory, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var records []domain.WorkoutHistory
	for _, h := range r.db.history {
		if h.UserID == userID {
			records = append(records, copyHistory(h))
		}
	}
	slices.SortFunc(records, func(a, b domain.WorkoutHistory) int {
		return cmp.Or(b.CompletedAt.Compare(a.CompletedAt), bytes.Compare(b.ID[:], a.ID[:]))
	})

	if offset >= int64(len(records)) {
		return nil, nil
	}
	records = records[offset:]
	if limit > 0 && limit < int64(len(records)) {
		records = records[:limit]
	}
	return records, nil
}
