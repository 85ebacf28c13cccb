package app

import (
	"fmt"
	"math"

	"ieee-quiz/internal/domain"
)

// View is the render model handed to presentation layers. It is derived
// from a State and carries no behaviour of its own.
type View struct {
	Status            domain.Status    `json:"status"`
	NumQuestions      int              `json:"numQuestions"`
	MaxPossiblePoints int              `json:"maxPossiblePoints"`
	QuestionNumber    int              `json:"questionNumber"`
	Question          *domain.Question `json:"question,omitempty"`
	Answer            *int             `json:"answer"`
	Points            int              `json:"points"`
	HighScore         int              `json:"highscore"`
	SecondsRemaining  int              `json:"secondsRemaining"`
	Clock             string           `json:"clock"`
	Locked            bool             `json:"locked"`
	IsLast            bool             `json:"isLast"`
	CanAdvance        bool             `json:"canAdvance"`
	Percentage        int              `json:"percentage"`
	Error             string           `json:"error,omitempty"`
}

// NewView derives the render model for state.
func NewView(state domain.State) View {
	maxPoints := 0
	for _, q := range state.Questions {
		maxPoints += q.Points
	}

	v := View{
		Status:            state.Status,
		NumQuestions:      len(state.Questions),
		MaxPossiblePoints: maxPoints,
		QuestionNumber:    state.Index + 1,
		Answer:            state.Answer,
		Points:            state.Points,
		HighScore:         state.HighScore,
		SecondsRemaining:  state.SecondsRemaining,
		Clock:             FormatClock(state.SecondsRemaining),
		Locked:            state.Answered || state.SecondsRemaining == 0,
		IsLast:            state.IsLastQuestion(),
		CanAdvance:        state.Answered,
		Error:             state.Err,
	}
	if q, ok := state.CurrentQuestion(); ok {
		v.Question = &q
	}
	if maxPoints > 0 {
		v.Percentage = int(math.Ceil(float64(state.Points) / float64(maxPoints) * 100))
	}
	return v
}

// FormatClock renders seconds as mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
