package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been opened.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrUnknownEvent marks a reducer fault: an event the reducer cannot handle.
	ErrUnknownEvent = errors.New("unknown quiz event")
	// ErrEventNotAllowed is returned when a player event does not apply to the current status.
	ErrEventNotAllowed = errors.New("event not allowed in current quiz status")
	// ErrInvalidQuestionBank indicates a question record failed validation.
	ErrInvalidQuestionBank = errors.New("invalid question bank")
	// ErrEmptyQuestionBank indicates the bank contains no questions.
	ErrEmptyQuestionBank = errors.New("question bank is empty")
)
