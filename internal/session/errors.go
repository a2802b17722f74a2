package session

import "errors"

var (
	// ErrNoActiveSession is returned by operations that need a session when
	// none exists. Nothing is changed.
	ErrNoActiveSession = errors.New("no active workout")
	// ErrSessionActive rejects starting a second workout.
	ErrSessionActive = errors.New("a workout is already in progress; finish or cancel it first")
	// ErrFinishInProgress rejects operations that would race an in-flight finish.
	ErrFinishInProgress = errors.New("workout is being saved")
	// ErrNoCompletedSets rejects finishing a workout with nothing done.
	ErrNoCompletedSets = errors.New("complete at least one set to finish")
	// ErrFinishFailed wraps a failed history record creation. The session is kept.
	ErrFinishFailed = errors.New("failed to save workout")

	ErrInvalidPlan     = errors.New("plan has no id")
	ErrUnknownExercise = errors.New("exercise is not part of the active workout")
	ErrInvalidSetIndex = errors.New("set index out of range")
)
