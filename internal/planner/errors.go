package planner

import (
	"errors"
	"strings"
)

var (
	ErrInvalidPreferences = errors.New("invalid preferences")
	ErrNoExperiences      = errors.New("no experiences found")
	ErrInvalidDraft       = errors.New("invalid draft")
)

// ValidationError lists every problem found in a request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return ErrInvalidPreferences.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidPreferences
}

// NoCandidatesError is returned when every experience was filtered out.
type NoCandidatesError struct {
	Breakdown Breakdown
}

func (e *NoCandidatesError) Error() string {
	if e.Breakdown.Suggestion == "" {
		return ErrNoExperiences.Error()
	}
	return ErrNoExperiences.Error() + ": " + e.Breakdown.Suggestion
}

func (e *NoCandidatesError) Is(target error) bool {
	return target == ErrNoExperiences
}
