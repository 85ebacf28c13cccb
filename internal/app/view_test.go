package app_test

import (
	"testing"

	"ieee-quiz/internal/app"
	"ieee-quiz/internal/domain"
)

func TestNewViewActiveQuestion(t *testing.T) {
	r := app.NewReducer(75)
	s := activeState(r)

	v := app.NewView(s)
	if v.NumQuestions != 3 || v.MaxPossiblePoints != 30 {
		t.Fatalf("unexpected totals %+v", v)
	}
	if v.Question == nil || v.Question.Text != "Q1" || v.QuestionNumber != 1 {
		t.Fatalf("expected first question, got %+v", v.Question)
	}
	if v.Locked || v.CanAdvance || v.IsLast {
		t.Fatalf("expected an open first question, got %+v", v)
	}
	if v.Clock != "01:15" {
		t.Fatalf("expected 01:15, got %s", v.Clock)
	}

	s = r.Reduce(s, domain.NewAnswer{Option: 0})
	v = app.NewView(s)
	if !v.Locked || !v.CanAdvance {
		t.Fatalf("expected locked answered question, got %+v", v)
	}
}

func TestNewViewLocksWhenTimeRunsOut(t *testing.T) {
	r := app.NewReducer(1)
	s := r.Reduce(activeState(r), domain.Tick{})
	v := app.NewView(s)
	if !v.Locked || v.CanAdvance {
		t.Fatalf("expected locked but not advanceable view, got %+v", v)
	}
}

func TestNewViewPercentage(t *testing.T) {
	s := domain.State{Questions: threeQuestions(), Points: 10, Status: domain.StatusFinished}
	if got := app.NewView(s).Percentage; got != 34 {
		t.Fatalf("expected 34%%, got %d", got)
	}
	if got := app.NewView(domain.State{}).Percentage; got != 0 {
		t.Fatalf("expected 0%% without questions, got %d", got)
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[int]string{0: "00:00", 9: "00:09", 50: "00:50", 61: "01:01", -3: "00:00"}
	for in, want := range cases {
		if got := app.FormatClock(in); got != want {
			t.Fatalf("FormatClock(%d) = %s, want %s", in, got, want)
		}
	}
}
