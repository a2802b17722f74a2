package service

import (
	"context"
	"errors"
	"fmt"
	"glog/workout-server/internal/domain"
	"glog/workout-server/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

var ErrHistoryValidation = errors.New("invalid workout history")

type HistoryService interface {
	// CreateHistoryRecord stores a finished workout. completedAt is ISO-8601.
	CreateHistoryRecord(ctx context.Context, userID, planID primitive.ObjectID, exercises []domain.ExerciseProgress, completedAt string, durationSeconds int64) (*domain.WorkoutHistory, error)
	ListHistory(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]domain.WorkoutHistory, error)
}

// historyService implements the HistoryService interface.
type historyService struct {
	historyRepo repository.HistoryRepository
	planRepo    repository.WorkoutPlanRepository
}

// NewHistoryService creates a new instance of historyService.
func NewHistoryService(historyRepo repository.HistoryRepository, planRepo repository.WorkoutPlanRepository) HistoryService {
	return &historyService{
		historyRepo: historyRepo,
		planRepo:    planRepo,
	}
}

// CreateHistoryRecord validates and stores a record. The plan's current name
// and day are copied in when the plan still exists.
func (s *historyService) CreateHistoryRecord(ctx context.Context, userID, planID primitive.ObjectID, exercises []domain.ExerciseProgress, completedAt string, durationSeconds int64) (*domain.WorkoutHistory, error) {
	if userID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: user id is required", ErrHistoryValidation)
	}
	if len(exercises) == 0 {
		return nil, fmt.Errorf("%w: at least one exercise is required", ErrHistoryValidation)
	}
	if durationSeconds < 0 {
		return nil, fmt.Errorf("%w: duration cannot be negative", ErrHistoryValidation)
	}
	for _, ex := range exercises {
		if ex.Name == "" || ex.Sets < 1 {
			return nil, fmt.Errorf("%w: exercise %q needs a name and at least one set", ErrHistoryValidation, ex.Name)
		}
	}
	at, err := time.Parse(time.RFC3339, completedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: completedAt: %v", ErrHistoryValidation, err)
	}

	record := &domain.WorkoutHistory{
		UserID:          userID,
		CompletedAt:     at.UTC(),
		DurationSeconds: durationSeconds,
		Exercises:       exercises,
	}
	if planID != primitive.NilObjectID {
		id := planID
		record.WorkoutPlanID = &id

		plan, err := s.planRepo.GetByID(ctx, planID)
		switch {
		case err == nil && plan.UserID == userID:
			day := plan.DayOfWeek
			record.WorkoutName = plan.Name
			record.DayOfWeek = &day
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	id, err := s.historyRepo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = id
	return record, nil
}

// ListHistory pages through the user's history, newest first.
func (s *historyService) ListHistory(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]domain.WorkoutHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.historyRepo.GetByUserID(ctx, userID, int64(limit), int64(offset))
}
