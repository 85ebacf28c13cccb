package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ieee-quiz/internal/app"
	"ieee-quiz/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

var (
	errUnsupportedType = errors.New("unsupported message type")
	errInvalidAnswer   = errors.New("invalid answer payload")
)

// ServeWS upgrades the request, opens a fresh quiz session for the
// connection and streams its state until the client goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	log := h.logger.With(zap.String("session_id", sessionID))

	if _, err := h.service.Open(r.Context(), sessionID); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Close(context.Background(), sessionID)

	updates, unsubscribe, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer unsubscribe()

	if err := conn.WriteJSON(outboundMessage[sessionPayload]{Type: "session", Payload: sessionPayload{SessionID: sessionID}}); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	timerDone := make(chan struct{})
	go func() {
		defer close(timerDone)
		if err := h.service.RunTimer(ctx, sessionID); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("timer stopped", zap.Error(err))
		}
	}()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches the connection for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case state, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: app.NewView(state)}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	log.Info("quiz session connected")
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		ev, err := decodeEvent(inbound)
		if err == nil {
			_, err = h.service.Dispatch(r.Context(), sessionID, ev)
		}
		if err != nil && !queueError(send, writerDone, err) {
			break
		}
	}
	log.Info("quiz session disconnected")

	cancel()
	<-timerDone
	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// queueError hands an error reply to the writer. It reports false without
// blocking once the writer has stopped.
func queueError(send chan<- outboundMessage[any], writerDone <-chan struct{}, err error) bool {
	select {
	case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}:
		return true
	case <-writerDone:
		return false
	}
}

// decodeEvent maps a client message to a reducer event. Timer and loader
// events are internal and never accepted from clients.
func decodeEvent(msg inboundMessage) (domain.Event, error) {
	switch domain.EventType(msg.Type) {
	case domain.EventStart:
		return domain.Start{}, nil
	case domain.EventNewAnswer:
		var option int
		if err := json.Unmarshal(msg.Payload, &option); err != nil {
			return nil, errInvalidAnswer
		}
		if option < 0 || option >= domain.OptionsPerQuestion {
			return nil, errInvalidAnswer
		}
		return domain.NewAnswer{Option: option}, nil
	case domain.EventNextQuestion:
		return domain.NextQuestion{}, nil
	case domain.EventFinish:
		return domain.Finish{}, nil
	case domain.EventRestart:
		return domain.Restart{}, nil
	default:
		return nil, errUnsupportedType
	}
}
