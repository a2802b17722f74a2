// internal/domain/workout_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DaysPerWeek bounds DayOfWeek: 0 (Monday) through 6 (Sunday).
const DaysPerWeek = 7

// WorkoutPlan is a user's plan for one day of the week.
type WorkoutPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	DayOfWeek int                `bson:"dayOfWeek" json:"dayOfWeek"` // Unique per user
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Exercises are stored in their own collection and attached by the service layer.
	Exercises []Exercise `bson:"-" json:"exercises"`
}

// Exercise is a single movement inside a plan. Sets, Reps and Weight are
// optional targets; nil means "not specified".
type Exercise struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutPlanID primitive.ObjectID `bson:"workoutPlanId" json:"workoutPlanId"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"` // Denormalized for ownership checks
	Name          string             `bson:"name" json:"name"`
	Sets          *int               `bson:"sets,omitempty" json:"sets"`
	Reps          *int               `bson:"reps,omitempty" json:"reps"`
	Weight        *float64           `bson:"weight,omitempty" json:"weight"` // kg
	OrderIndex    int                `bson:"orderIndex" json:"orderIndex"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TargetSets is the number of sets to iterate for this exercise. An absent
// or non-positive target counts as a single set.
func (e *Exercise) TargetSets() int {
	if e.Sets == nil || *e.Sets < 1 {
		return 1
	}
	return *e.Sets
}
