// Package socket pushes wizard updates to a user's open tabs. Each user gets
// a room; commits made through the API are broadcast to every connected tab
// so a second tab re-renders without polling. Delivery is best effort: the
// store is the source of truth and makes no cross-tab guarantee.
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"conceptcraft/internal/concept/model"
	"conceptcraft/pkg/logger"
)

// ConceptLoader reads the stored concept so a freshly connected tab can be
// brought up to date.
type ConceptLoader interface {
	LoadConcept(userID string) (*model.BusinessConcept, error)
}

const (
	ConceptUpdateType  = "CONCEPT_UPDATE"  // The active concept changed
	StepUpdateType     = "STEP_UPDATE"     // The current-step pointer moved
	PresenceUpdateType = "PRESENCE_UPDATE" // A tab connected or disconnected
)

type WSMessage struct {
	Type    string          `json:"type"`
	UserID  string          `json:"user_id"`
	Payload json.RawMessage `json:"payload"`
}

type TabStatus struct {
	TabID    string    `json:"tab_id"`
	LastSeen time.Time `json:"last_seen"`
}

type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client

	repo     ConceptLoader
	mu       sync.Mutex
	Presence map[string]map[string]TabStatus // userID -> tabID -> status
}

func NewHub(repo ConceptLoader) *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		repo:       repo,
		Presence:   make(map[string]map[string]TabStatus),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.UserID] == nil {
				h.Rooms[client.UserID] = make(map[*Client]bool)
				h.Presence[client.UserID] = make(map[string]TabStatus)
			}
			h.Rooms[client.UserID][client] = true
			h.Presence[client.UserID][client.TabID] = TabStatus{TabID: client.TabID, LastSeen: time.Now()}
			h.mu.Unlock()

			// A freshly connected tab gets the current concept so it can
			// render without a separate API round trip.
			if concept, err := h.repo.LoadConcept(client.UserID); err == nil && concept != nil {
				if payload, err := json.Marshal(concept); err == nil {
					msg, _ := json.Marshal(WSMessage{Type: ConceptUpdateType, UserID: client.UserID, Payload: payload})
					client.Send <- msg
				}
			}

			h.broadcastPresenceUpdate(client.UserID)

		case client := <-h.Unregister:
			h.mu.Lock()
			userID := client.UserID
			if _, ok := h.Rooms[userID][client]; ok {
				delete(h.Rooms[userID], client)
				delete(h.Presence[userID], client.TabID)
				close(client.Send)

				if len(h.Rooms[userID]) == 0 {
					delete(h.Rooms, userID)
					delete(h.Presence, userID)
					logger.Sugar.Infof("Closed empty room for user %s", userID)
				}
			}
			h.mu.Unlock()

			if h.Rooms[userID] != nil {
				h.broadcastPresenceUpdate(userID)
			}

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[msg.UserID]))
			for client := range h.Rooms[msg.UserID] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// A full send buffer means the tab stopped reading.
					logger.Sugar.Warnf("Tab %s of user %s is lagging, unregistering", client.TabID, client.UserID)
					h.Unregister <- client
				}
			}
		}
	}
}

// NotifyConceptUpdate fans the committed concept out to the user's tabs.
func (h *Hub) NotifyConceptUpdate(userID string, concept interface{}) {
	payload, err := json.Marshal(concept)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling concept update: %v", err)
		return
	}
	h.Broadcast <- WSMessage{Type: ConceptUpdateType, UserID: userID, Payload: payload}
}

// NotifyStepUpdate announces a moved step pointer to the user's tabs.
func (h *Hub) NotifyStepUpdate(userID string, step int) {
	payload, _ := json.Marshal(map[string]int{"currentStep": step})
	h.Broadcast <- WSMessage{Type: StepUpdateType, UserID: userID, Payload: payload}
}

func (h *Hub) broadcastPresenceUpdate(userID string) {
	var statuses []TabStatus
	var clientsToSend []*Client

	h.mu.Lock()
	if _, ok := h.Presence[userID]; ok {
		statuses = make([]TabStatus, 0, len(h.Presence[userID]))
		for _, status := range h.Presence[userID] {
			statuses = append(statuses, status)
		}
		clientsToSend = make([]*Client, 0, len(h.Rooms[userID]))
		for client := range h.Rooms[userID] {
			clientsToSend = append(clientsToSend, client)
		}
	}
	h.mu.Unlock()

	if len(clientsToSend) == 0 {
		return
	}

	payload, err := json.Marshal(statuses)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling presence broadcast: %v", err)
		return
	}
	msg, _ := json.Marshal(WSMessage{Type: PresenceUpdateType, UserID: userID, Payload: payload})

	for _, client := range clientsToSend {
		select {
		case client.Send <- msg:
		default:
			logger.Sugar.Warnf("Tab %s send buffer was full during presence update", client.TabID)
		}
	}
}
