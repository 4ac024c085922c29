package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"engineBack/internal/models"
)

// workflowEvent is the wire shape pushed to dashboard clients when a pack's
// approval state changes.
type workflowEvent struct {
	Type     string                  `json:"type"`
	Workflow models.ApprovalWorkflow `json:"workflow"`
}

type wsClient struct {
	orgID  string
	socket *websocket.Conn
	send   chan workflowEvent
}

// EventHub fans workflow state changes out to connected dashboard clients,
// scoped by organization. It implements services.ApprovalEvents.
type EventHub struct {
	register   chan *wsClient
	unregister chan *wsClient
	events     chan workflowEvent
	clients    map[*wsClient]struct{}
	errorLog   *log.Logger
}

func NewEventHub(errorLog *log.Logger) *EventHub {
	return &EventHub{
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		events:     make(chan workflowEvent, 64),
		clients:    make(map[*wsClient]struct{}),
		errorLog:   errorLog,
	}
}

func (h *EventHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.events:
			for client := range h.clients {
				if client.orgID != event.Workflow.OrganizationID {
					continue
				}
				select {
				case client.send <- event:
				default:
					// Slow client; drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// WorkflowStateChanged queues the event without blocking the caller. If the
// hub's buffer is full the event is dropped; clients resync over HTTP.
func (h *EventHub) WorkflowStateChanged(_ context.Context, workflow models.ApprovalWorkflow) {
	select {
	case h.events <- workflowEvent{Type: "workflow_state_changed", Workflow: workflow}:
	default:
		h.errorLog.Print("event hub buffer full, dropping workflow event")
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WorkflowSocket upgrades the connection and streams workflow events for the
// caller's organization.
func (app *application) WorkflowSocket(w http.ResponseWriter, r *http.Request) {
	claims := models.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.errorLog.Printf("websocket upgrade: %v", err)
		return
	}

	client := &wsClient{
		orgID:  claims.OrganizationID,
		socket: conn,
		send:   make(chan workflowEvent, 16),
	}
	app.hub.register <- client

	go app.writePump(client)
	go app.readPump(client)
}

func (app *application) writePump(client *wsClient) {
	for event := range client.send {
		if err := client.socket.WriteJSON(event); err != nil {
			break
		}
	}
	client.socket.Close()
}

// readPump discards inbound frames; the socket is one-way. Its real job is
// detecting disconnects.
func (app *application) readPump(client *wsClient) {
	defer func() {
		app.hub.unregister <- client
		client.socket.Close()
	}()
	for {
		if _, _, err := client.socket.ReadMessage(); err != nil {
			return
		}
	}
}
