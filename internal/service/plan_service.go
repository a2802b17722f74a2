package service

import (
	"context"
	"errors"
	"fmt"
	"glog/workout-server/internal/domain"
	"glog/workout-server/internal/repository"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound     = errors.New("workout plan not found")
	ErrPlanDayTaken     = errors.New("a workout plan already exists for this day")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrReorderMismatch  = errors.New("exercise ids must list every exercise of the plan exactly once")
)

// ExerciseInput carries the editable fields of an exercise.
type ExerciseInput struct {
	Name   string
	Sets   *int
	Reps   *int
	Weight *float64
}

func (in ExerciseInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: exercise name is required", ErrValidationFailed)
	}
	if in.Sets != nil && *in.Sets < 1 {
		return fmt.Errorf("%w: sets must be at least 1", ErrValidationFailed)
	}
	if in.Reps != nil && *in.Reps < 0 {
		return fmt.Errorf("%w: reps cannot be negative", ErrValidationFailed)
	}
	if in.Weight != nil && *in.Weight < 0 {
		return fmt.Errorf("%w: weight cannot be negative", ErrValidationFailed)
	}
	return nil
}

type PlanService interface {
	ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutPlan, error)
	GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.WorkoutPlan, error)
	CreatePlan(ctx context.Context, userID primitive.ObjectID, dayOfWeek int, name string) (*domain.WorkoutPlan, error)
	RenamePlan(ctx context.Context, userID, planID primitive.ObjectID, name string) error
	DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error

	AddExercise(ctx context.Context, userID, planID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error
	ReorderExercises(ctx context.Context, userID, planID primitive.ObjectID, orderedIDs []primitive.ObjectID) error
}

// planService implements the PlanService interface.
type planService struct {
	planRepo     repository.WorkoutPlanRepository
	exerciseRepo repository.ExerciseRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.WorkoutPlanRepository, exerciseRepo repository.ExerciseRepository) PlanService {
	return &planService{
		planRepo:     planRepo,
		exerciseRepo: exerciseRepo,
	}
}

// ListPlans returns the user's plans by day of week, exercises attached.
func (s *planService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	plans, err := s.planRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		exercises, err := s.exerciseRepo.GetByPlanID(ctx, plans[i].ID)
		if err != nil {
			return nil, err
		}
		plans[i].Exercises = exercises
	}
	return plans, nil
}

// GetPlan returns one plan of the user with its exercises.
func (s *planService) GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	plan, err := s.ownedPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.exerciseRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	plan.Exercises = exercises
	return plan, nil
}

// CreatePlan adds a plan for a free day of the week.
func (s *planService) CreatePlan(ctx context.Context, userID primitive.ObjectID, dayOfWeek int, name string) (*domain.WorkoutPlan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: plan name is required", ErrValidationFailed)
	}
	if dayOfWeek < 0 || dayOfWeek >= domain.DaysPerWeek {
		return nil, fmt.Errorf("%w: day of week must be between 0 and %d", ErrValidationFailed, domain.DaysPerWeek-1)
	}

	plan := &domain.WorkoutPlan{UserID: userID, DayOfWeek: dayOfWeek, Name: name}
	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPlanDayTaken
		}
		return nil, err
	}
	plan.ID = id
	plan.Exercises = []domain.Exercise{}
	return plan, nil
}

// RenamePlan changes the display name of a plan.
func (s *planService) RenamePlan(ctx context.Context, userID, planID primitive.ObjectID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: plan name is required", ErrValidationFailed)
	}
	if err := s.planRepo.Rename(ctx, planID, userID, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return nil
}

// DeletePlan removes a plan and its exercises. History records keep their
// own copy of the exercise data.
func (s *planService) DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	if err := s.planRepo.Delete(ctx, planID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return s.exerciseRepo.DeleteByPlanID(ctx, planID)
}

// AddExercise appends an exercise at the end of the plan.
func (s *planService) AddExercise(ctx context.Context, userID, planID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	existing, err := s.exerciseRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}

	order := 0
	for _, ex := range existing {
		if ex.OrderIndex >= order {
			order = ex.OrderIndex + 1
		}
	}

	exercise := &domain.Exercise{
		WorkoutPlanID: planID,
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		Sets:          in.Sets,
		Reps:          in.Reps,
		Weight:        in.Weight,
		OrderIndex:    order,
	}
	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	return exercise, nil
}

// UpdateExercise replaces name and targets. Sessions already running keep
// their snapshot.
func (s *planService) UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	exercise, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	exercise.Name = strings.TrimSpace(in.Name)
	exercise.Sets = in.Sets
	exercise.Reps = in.Reps
	exercise.Weight = in.Weight

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// DeleteExercise removes an exercise of the user.
func (s *planService) DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	if err := s.exerciseRepo.Delete(ctx, exerciseID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

// ReorderExercises assigns order index i to orderedIDs[i]. The list must be
// a permutation of the plan's exercises.
func (s *planService) ReorderExercises(ctx context.Context, userID, planID primitive.ObjectID, orderedIDs []primitive.ObjectID) error {
	if _, err := s.ownedPlan(ctx, userID, planID); err != nil {
		return err
	}
	existing, err := s.exerciseRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return err
	}
	if len(existing) != len(orderedIDs) {
		return ErrReorderMismatch
	}
	known := make(map[primitive.ObjectID]bool, len(existing))
	for _, ex := range existing {
		known[ex.ID] = true
	}
	for _, id := range orderedIDs {
		if !known[id] {
			return ErrReorderMismatch
		}
		delete(known, id) // Rejects duplicates
	}

	return s.exerciseRepo.SetOrder(ctx, planID, orderedIDs)
}

func (s *planService) ownedPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	// Someone else's plan looks the same as a missing one.
	if plan.UserID != userID {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (s *planService) ownedExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.UserID != userID {
		return nil, ErrExerciseNotFound
	}
	return exercise, nil
}
