package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"viral-game-service/internal/app"
)

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
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

type startMinigamePayload struct {
	IntroSequenceID string `json:"introSequenceId"`
}

type requestDialoguePayload struct {
	SequenceID string `json:"sequenceId"`
}

type selectOptionPayload struct {
	Index int `json:"index"`
}

type pairingPayload struct {
	ItemID     string `json:"itemId"`
	CategoryID string `json:"categoryId"`
}

type placementPayload struct {
	ItemID string `json:"itemId"`
	InZone bool   `json:"inZone"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into a game
// session: inbound messages are the discrete signals the core consumes
// (advance, selectOption, recordPairing, submit, ...), outbound messages are
// the session's event stream (line, question, feedback, ...).
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	gameID := r.URL.Query().Get("gameId")
	if sessionID == "" || gameID == "" {
		http.Error(w, "missing sessionId or gameId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.Start(r.Context(), sessionID, gameID)
	if err != nil {
		_ = conn.WriteJSON(app.Event{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.End(sessionID)

	updates, cancel := session.Subscribe()
	defer cancel()

	send := make(chan app.Event, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- update:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- app.Event{Type: "ready", Payload: map[string]string{"sessionId": sessionID, "gameId": gameID}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(session, inbound); err != nil {
			send <- app.Event{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(session *app.Session, inbound inboundMessage) error {
	switch inbound.Type {
	case "startMinigame":
		var payload startMinigamePayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return errInvalidPayload(inbound.Type)
			}
		}
		session.StartMinigame(payload.IntroSequenceID)
	case "requestDialogue":
		var payload requestDialoguePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload(inbound.Type)
		}
		session.RequestDialogue(payload.SequenceID)
	case "advance":
		session.Advance()
	case "revealDone":
		session.MarkRevealed()
	case "selectOption":
		var payload selectOptionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload(inbound.Type)
		}
		session.SelectOption(payload.Index)
	case "recordPairing":
		var payload pairingPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload(inbound.Type)
		}
		session.RecordPairing(payload.ItemID, payload.CategoryID)
	case "recordPlacement":
		var payload placementPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload(inbound.Type)
		}
		session.RecordPlacement(payload.ItemID, payload.InZone)
	case "submit":
		session.Submit()
	case "next":
		session.NextQuestion()
	case "restart":
		session.RestartQuiz()
	default:
		return errUnsupported(inbound.Type)
	}
	return nil
}

type wsError string

func (e wsError) Error() string { return string(e) }

func errInvalidPayload(msgType string) error {
	return wsError("invalid " + msgType + " payload")
}

func errUnsupported(msgType string) error {
	return wsError("unsupported message type " + msgType)
}
