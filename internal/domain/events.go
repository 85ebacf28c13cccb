package domain

// EventType is the wire/log name of an event.
type EventType string

const (
	EventDataReceived EventType = "dataReceived"
	EventDataFailed   EventType = "dataFailed"
	EventStart        EventType = "start"
	EventNewAnswer    EventType = "newAnswer"
	EventNextQuestion EventType = "nextQuestion"
	EventFinish       EventType = "finish"
	EventRestart      EventType = "restart"
	EventTick         EventType = "tick"
)

// Event is the closed set of inputs accepted by the reducer.
// Only types declared in this package can implement it.
type Event interface {
	Type() EventType
	event()
}

// DataReceived delivers the loaded question bank.
type DataReceived struct {
	Questions []Question
}

// DataFailed reports that the question bank could not be loaded.
type DataFailed struct {
	Err error
}

// Start begins the quiz.
type Start struct{}

// NewAnswer selects an option for the current question.
type NewAnswer struct {
	Option int
}

// NextQuestion moves to the following question.
type NextQuestion struct{}

// Finish ends the quiz and records the high score.
type Finish struct{}

// Restart returns to the start screen keeping the loaded questions.
type Restart struct{}

// Tick is one timer decrement.
type Tick struct{}

func (DataReceived) Type() EventType { return EventDataReceived }
func (DataFailed) Type() EventType   { return EventDataFailed }
func (Start) Type() EventType        { return EventStart }
func (NewAnswer) Type() EventType    { return EventNewAnswer }
func (NextQuestion) Type() EventType { return EventNextQuestion }
func (Finish) Type() EventType       { return EventFinish }
func (Restart) Type() EventType      { return EventRestart }
func (Tick) Type() EventType         { return EventTick }

func (DataReceived) event() {}
func (DataFailed) event()   {}
func (Start) event()        {}
func (NewAnswer) event()    {}
func (NextQuestion) event() {}
func (Finish) event()       {}
func (Restart) event()      {}
func (Tick) event()         {}
