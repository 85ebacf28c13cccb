package app

import (
	"fmt"

	"ieee-quiz/internal/domain"
)

// DefaultSecondsPerQuestion is the countdown budget for every question.
const DefaultSecondsPerQuestion = 50

// Reducer computes quiz state transitions. It holds no mutable state and
// performs no I/O, so equal inputs always produce equal outputs.
type Reducer struct {
	secondsPerQuestion int
}

// NewReducer returns a reducer using the given per-question budget.
// Non-positive budgets fall back to DefaultSecondsPerQuestion.
func NewReducer(secondsPerQuestion int) Reducer {
	if secondsPerQuestion <= 0 {
		secondsPerQuestion = DefaultSecondsPerQuestion
	}
	return Reducer{secondsPerQuestion: secondsPerQuestion}
}

// SecondsPerQuestion returns the configured budget.
func (r Reducer) SecondsPerQuestion() int {
	return r.secondsPerQuestion
}

// InitialState is the state a session starts in.
func (r Reducer) InitialState() domain.State {
	return domain.State{
		Status:           domain.StatusLoading,
		SecondsRemaining: r.secondsPerQuestion,
	}
}

// Reduce applies ev to state. It panics with an error wrapping
// domain.ErrUnknownEvent when ev is not a known event.
func (r Reducer) Reduce(state domain.State, ev domain.Event) domain.State {
	switch e := ev.(type) {
	case domain.DataReceived:
		state.Questions = e.Questions
		state.Status = domain.StatusReady
		state.Err = ""
		return state

	case domain.DataFailed:
		state.Status = domain.StatusError
		if e.Err != nil {
			state.Err = e.Err.Error()
		}
		return state

	case domain.Start:
		state.Status = domain.StatusActive
		state.SecondsRemaining = r.secondsPerQuestion
		state.Answered = false
		return state

	case domain.NewAnswer:
		if state.Answered || state.SecondsRemaining <= 0 {
			return state
		}
		question, ok := state.CurrentQuestion()
		if !ok {
			return state
		}
		option := e.Option
		state.Answer = &option
		if option == question.Correct {
			state.Points += question.Points
		}
		state.Answered = true
		return state

	case domain.NextQuestion:
		if state.Index < len(state.Questions) {
			state.Index++
		}
		state.Answer = nil
		state.Answered = false
		state.SecondsRemaining = r.secondsPerQuestion
		return state

	case domain.Finish:
		state.Status = domain.StatusFinished
		if state.Points > state.HighScore {
			state.HighScore = state.Points
		}
		return state

	case domain.Restart:
		next := r.InitialState()
		next.Questions = state.Questions
		next.HighScore = state.HighScore
		next.Status = domain.StatusReady
		return next

	case domain.Tick:
		if state.SecondsRemaining > 0 {
			state.SecondsRemaining--
		} else {
			state.SecondsRemaining = 0
		}
		return state

	default:
		panic(fmt.Errorf("%w: %T", domain.ErrUnknownEvent, ev))
	}
}
