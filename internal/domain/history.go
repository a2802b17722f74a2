package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseProgress is the per-exercise entry of a history record. Sets is the
// number of sets actually completed, not the planned target.
type ExerciseProgress struct {
	Name   string   `bson:"name" json:"name"`
	Sets   int      `bson:"sets" json:"sets"`
	Reps   *int     `bson:"reps,omitempty" json:"reps"`
	Weight *float64 `bson:"weight,omitempty" json:"weight"`
}

// WorkoutHistory is an immutable summary of a finished session. It copies the
// exercise data so it stays valid after the source plan is edited or deleted;
// WorkoutPlanID may point to a plan that no longer exists.
type WorkoutHistory struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	WorkoutPlanID   *primitive.ObjectID `bson:"workoutPlanId,omitempty" json:"workoutPlanId"`
	WorkoutName     string              `bson:"workoutName,omitempty" json:"workoutName,omitempty"`
	DayOfWeek       *int                `bson:"dayOfWeek,omitempty" json:"dayOfWeek,omitempty"`
	CompletedAt     time.Time           `bson:"completedAt" json:"completedAt"`
	DurationSeconds int64               `bson:"durationSeconds" json:"durationSeconds"`
	Exercises       []ExerciseProgress  `bson:"exercises" json:"exercises"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
}
