package domain

// Status is the quiz lifecycle phase.
type Status string

const (
	StatusLoading  Status = "loading"
	StatusError    Status = "error"
	StatusReady    Status = "ready"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// OptionsPerQuestion is the number of answer options every question carries.
const OptionsPerQuestion = 4

// Question models an MCQ question with exactly four options and one correct index.
type Question struct {
	Text    string   `json:"question" yaml:"question" validate:"required"`
	Options []string `json:"options" yaml:"options" validate:"len=4,dive,required"`
	Correct int      `json:"correctOption" yaml:"correct_option" validate:"gte=0,lte=3"`
	Points  int      `json:"points" yaml:"points" validate:"gte=0"`
}

// State is the whole quiz state tree for one session.
type State struct {
	Questions        []Question `json:"questions"`
	Status           Status     `json:"status"`
	Index            int        `json:"index"`
	Answer           *int       `json:"answer"`
	Points           int        `json:"points"`
	HighScore        int        `json:"highscore"`
	SecondsRemaining int        `json:"secondsRemaining"`
	Answered         bool       `json:"answered"`
	Err              string     `json:"error,omitempty"`
}

// CurrentQuestion returns the question at Index, if any.
func (s State) CurrentQuestion() (Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

// IsLastQuestion reports whether Index points at the final question.
func (s State) IsLastQuestion() bool {
	return len(s.Questions) > 0 && s.Index == len(s.Questions)-1
}
