// Package terminal renders a quiz session on a text terminal and turns typed
// commands into quiz events.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ieee-quiz/internal/app"
	"ieee-quiz/internal/domain"
)

// Terminal plays one session over a line-oriented reader and writer.
type Terminal struct {
	service *app.QuizService
	in      io.Reader
	out     io.Writer

	last screenKey
}

// screenKey identifies what is on screen. Ticks alone do not change it, so
// the terminal is not redrawn every second.
type screenKey struct {
	status   domain.Status
	index    int
	answered bool
	expired  bool
}

func New(service *app.QuizService, in io.Reader, out io.Writer) *Terminal {
	return &Terminal{service: service, in: in, out: out, last: screenKey{index: -1}}
}

// Run renders sessionID until the input ends, the player quits or ctx is done.
func (t *Terminal) Run(ctx context.Context, sessionID string) error {
	updates, unsubscribe, err := t.service.Subscribe(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unsubscribe()

	if err := t.refresh(ctx, sessionID); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-updates:
			if !ok {
				return nil
			}
			// Snapshots may be stale; always draw the latest state.
			if err := t.refresh(ctx, sessionID); err != nil {
				return err
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := t.handle(ctx, sessionID, line)
			if err != nil || quit {
				return err
			}
		}
	}
}

func (t *Terminal) refresh(ctx context.Context, sessionID string) error {
	state, err := t.service.State(ctx, sessionID)
	if err != nil {
		return err
	}
	t.render(state)
	return nil
}

// handle maps one input line to an event for the current screen.
func (t *Terminal) handle(ctx context.Context, sessionID, line string) (bool, error) {
	cmd := strings.ToLower(line)
	if cmd == "q" {
		return true, nil
	}

	state, err := t.service.State(ctx, sessionID)
	if err != nil {
		return false, err
	}

	ev, hint := commandEvent(state, cmd)
	if ev == nil {
		if hint != "" {
			fmt.Fprintln(t.out, hint)
		}
		return false, nil
	}

	state, err = t.service.Dispatch(ctx, sessionID, ev)
	if errors.Is(err, domain.ErrEventNotAllowed) {
		// The timer moved the quiz on between reading and dispatching.
		return false, t.refresh(ctx, sessionID)
	}
	if err != nil {
		return false, err
	}
	t.render(state)
	return false, nil
}

func commandEvent(state domain.State, cmd string) (domain.Event, string) {
	switch state.Status {
	case domain.StatusReady:
		if cmd == "" || cmd == "s" {
			return domain.Start{}, ""
		}
		return nil, "Press Enter to start, q to quit."
	case domain.StatusActive:
		if n, err := strconv.Atoi(cmd); err == nil {
			if n < 1 || n > domain.OptionsPerQuestion {
				return nil, fmt.Sprintf("Choose an option between 1 and %d.", domain.OptionsPerQuestion)
			}
			return domain.NewAnswer{Option: n - 1}, ""
		}
		switch cmd {
		case "n":
			if !state.Answered {
				return nil, "Answer the question first."
			}
			if state.IsLastQuestion() {
				return nil, "This was the last question, type f to finish."
			}
			return domain.NextQuestion{}, ""
		case "f":
			if !state.Answered || !state.IsLastQuestion() {
				return nil, "You can finish after answering the last question."
			}
			return domain.Finish{}, ""
		}
		return nil, "Type 1-4 to answer, n for next, f to finish, q to quit."
	case domain.StatusFinished:
		if cmd == "r" {
			return domain.Restart{}, ""
		}
		return nil, "Type r to restart, q to quit."
	}
	return nil, ""
}

func (t *Terminal) render(state domain.State) {
	key := screenKey{
		status:   state.Status,
		index:    state.Index,
		answered: state.Answered,
		expired:  state.SecondsRemaining == 0,
	}
	if key == t.last {
		return
	}
	t.last = key

	v := app.NewView(state)
	w := t.out
	switch v.Status {
	case domain.StatusLoading:
		fmt.Fprintln(w, "Loading questions...")
	case domain.StatusError:
		fmt.Fprintf(w, "There was an error fetching questions: %s\n", v.Error)
	case domain.StatusReady:
		fmt.Fprintln(w, "Welcome to The IEEE QUIZ!")
		fmt.Fprintln(w, "Advancing Technology for Humanity")
		fmt.Fprintf(w, "%d questions to test your IEEE mastery. Press Enter to start.\n", v.NumQuestions)
	case domain.StatusActive:
		renderQuestion(w, v)
	case domain.StatusFinished:
		fmt.Fprintf(w, "You scored %d out of %d (%d%%)\n", v.Points, v.MaxPossiblePoints, v.Percentage)
		fmt.Fprintf(w, "(Highscore: %d points)\n", v.HighScore)
		fmt.Fprintln(w, "Type r to restart, q to quit.")
	}
}

func renderQuestion(w io.Writer, v app.View) {
	fmt.Fprintf(w, "\nQuestion %d / %d    %d / %d points    %s\n", v.QuestionNumber, v.NumQuestions, v.Points, v.MaxPossiblePoints, v.Clock)
	if v.Question == nil {
		return
	}
	fmt.Fprintln(w, v.Question.Text)
	for i, opt := range v.Question.Options {
		mark := " "
		if v.Answer != nil {
			switch {
			case i == v.Question.Correct:
				mark = "+"
			case i == *v.Answer:
				mark = "x"
			}
		}
		fmt.Fprintf(w, " %s %d) %s\n", mark, i+1, opt)
	}
	switch {
	case v.CanAdvance && v.IsLast:
		fmt.Fprintln(w, "Type f to finish.")
	case v.CanAdvance:
		fmt.Fprintln(w, "Type n for the next question.")
	case v.Locked:
		fmt.Fprintln(w, "Time's up!")
	}
}
