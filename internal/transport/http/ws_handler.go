package http

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// ControllerFactory builds a fresh controller for a new session ID.
type ControllerFactory func(id string) *app.Controller

type WSHandler struct {
	registry      app.SessionRegistry
	newController ControllerFactory
	recorder      app.EventRecorder
	upgrader      websocket.Upgrader
}

// NewWSHandler serves sessions built by factory; a nil recorder records nothing.
func NewWSHandler(registry app.SessionRegistry, factory ControllerFactory, recorder app.EventRecorder) *WSHandler {
	if recorder == nil {
		recorder = app.NopRecorder{}
	}
	return &WSHandler{
		registry:      registry,
		newController: factory,
		recorder:      recorder,
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

type startPayload struct {
	Difficulty string `json:"difficulty"`
}

type answerPayload struct {
	Choice *int `json:"choice"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type tickPayload struct {
	Remaining int `json:"remaining"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs one quiz session over the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	controller := h.newController(id)
	h.registry.Add(controller)
	defer h.registry.Remove(id)
	defer controller.Close()

	logger := slog.With("session", id)
	logger.Info("session opened")
	defer logger.Info("session closed")

	recordCtx, stopRecording := context.WithCancel(context.Background())
	defer stopRecording()
	recorded, cancelRecorded := controller.Subscribe()
	defer cancelRecorded()
	go app.RecordEvents(recordCtx, id, recorded, h.recorder)

	updates, cancel := controller.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Warn("ws write error", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case event, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- eventMessage(event):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "session", Payload: sessionPayload{SessionID: id}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.registry.Touch(id)
		if err := h.dispatch(r.Context(), controller, inbound); err != nil {
			send <- errorMessage(err.Error())
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch applies one client command. Fetch failures are already reported by the
// controller's error event and are not returned again.
func (h *WSHandler) dispatch(ctx context.Context, c *app.Controller, inbound inboundMessage) error {
	switch inbound.Type {
	case "start":
		var payload startPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return errors.New("invalid start payload")
			}
		}
		difficulty, err := domain.ParseDifficulty(payload.Difficulty)
		if err != nil {
			return err
		}
		err = c.Start(ctx, difficulty)
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			slog.Warn("question fetch failed", "session", c.ID(), "kind", fetchErr.Kind.String(), "error", err)
			return nil
		}
		return err
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Choice == nil {
			return errors.New("invalid answer payload")
		}
		_, err := c.Answer(*payload.Choice)
		return err
	case "next":
		return c.Advance()
	case "restart":
		return c.Restart()
	default:
		return errors.New("unsupported message type")
	}
}

func eventMessage(event domain.Event) outboundMessage[any] {
	msg := outboundMessage[any]{Type: string(event.Type)}
	switch event.Type {
	case domain.EventQuestion:
		msg.Payload = displayView(event.Question)
	case domain.EventTick:
		msg.Payload = tickPayload{Remaining: event.Remaining}
	case domain.EventOutcome:
		msg.Payload = event.Outcome
	case domain.EventSummary:
		msg.Payload = event.Summary
	case domain.EventError:
		msg.Payload = errorPayload{Message: event.Message}
	default:
		msg.Payload = struct{}{}
	}
	return msg
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}

// displayView decodes the HTML entities the question service sends.
func displayView(view *domain.QuestionView) *domain.QuestionView {
	if view == nil {
		return nil
	}
	out := *view
	out.Text = html.UnescapeString(view.Text)
	out.Choices = make([]string, len(view.Choices))
	for i, choice := range view.Choices {
		out.Choices[i] = html.UnescapeString(choice)
	}
	return &out
}
