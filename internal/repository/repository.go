package repository

import (
	"context"
	"glog/workout-server/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// WorkoutPlanRepository stores plans without their exercises.
type WorkoutPlanRepository interface {
	Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutPlan, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutPlan, error) // Sorted by day of week
	Rename(ctx context.Context, id, userID primitive.ObjectID, name string) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// ExerciseRepository stores the exercises of a plan.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.Exercise, error) // Sorted by order index
	Update(ctx context.Context, exercise *domain.Exercise) error
	SetOrder(ctx context.Context, planID primitive.ObjectID, orderedIDs []primitive.ObjectID) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error
}

// HistoryRepository stores finished workout summaries.
type HistoryRepository interface {
	Create(ctx context.Context, record *domain.WorkoutHistory) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]domain.WorkoutHistory, error) // Newest first
}
