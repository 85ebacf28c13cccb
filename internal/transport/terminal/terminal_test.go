package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"ieee-quiz/internal/app"
	"ieee-quiz/internal/domain"
	"ieee-quiz/internal/infra/memory"
)

func TestTerminalPlaysFullQuiz(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	if _, err := service.Open(ctx, "s-1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	// start, answer Q1 right, try to change it, next, answer Q2 wrong, finish
	in := strings.NewReader("\n2\n3\nn\n4\nf\n")
	var out bytes.Buffer
	if err := New(service, in, &out).Run(ctx, "s-1"); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Welcome to The IEEE QUIZ!",
		"Question 1 / 2",
		"Question 2 / 2",
		"You scored 10 out of 20 (50%)",
		"(Highscore: 10 points)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}

	state, _ := service.State(ctx, "s-1")
	if state.Status != domain.StatusFinished || state.HighScore != 10 {
		t.Fatalf("unexpected final state %+v", state)
	}
}

func TestTerminalGuardsCommands(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	if _, err := service.Open(ctx, "s-1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	in := strings.NewReader("x\ns\nn\n7\nf\nq\n2\n")
	var out bytes.Buffer
	if err := New(service, in, &out).Run(ctx, "s-1"); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Press Enter to start",
		"Answer the question first.",
		"Choose an option between 1 and 4.",
		"You can finish after answering the last question.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}

	state, _ := service.State(ctx, "s-1")
	if state.Answered {
		t.Fatalf("expected input after q to be ignored")
	}
}

func TestTerminalRestart(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	if _, err := service.Open(ctx, "s-1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	in := strings.NewReader("\n2\nn\n1\nf\nr\n")
	var out bytes.Buffer
	if err := New(service, in, &out).Run(ctx, "s-1"); err != nil {
		t.Fatalf("run: %v", err)
	}

	state, _ := service.State(ctx, "s-1")
	if state.Status != domain.StatusReady || state.Points != 0 || state.HighScore != 20 {
		t.Fatalf("unexpected state after restart %+v", state)
	}
	if strings.Count(out.String(), "Welcome to The IEEE QUIZ!") != 2 {
		t.Fatalf("expected start screen twice:\n%s", out.String())
	}
}

func TestCommandEventIgnoresUnknownStatus(t *testing.T) {
	if ev, hint := commandEvent(domain.State{Status: domain.StatusLoading}, "s"); ev != nil || hint != "" {
		t.Fatalf("expected nothing while loading, got %v %q", ev, hint)
	}
}

func newTestService() *app.QuizService {
	bank := memory.NewQuestionBank([]byte(`
- question: What is 2 + 2?
  options: ["3", "4", "5", "6"]
  correct_option: 1
  points: 10
- question: What is 3 + 3?
  options: ["6", "7", "8", "9"]
  correct_option: 0
  points: 10
`))
	return app.NewQuizService(memory.NewSessionStore(), bank, app.Settings{
		SecondsPerQuestion: 1000,
		TickInterval:       time.Hour,
	})
}
