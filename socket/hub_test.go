package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"conceptcraft/internal/concept/model"
	"conceptcraft/internal/concept/repository"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readMessage reads one hub message with a deadline so tests never hang.
func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	var msg WSMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "failed to read websocket message")
	require.NoError(t, json.Unmarshal(p, &msg))
	return msg
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "expected no message")
}

func TestHubIntegration(t *testing.T) {
	store := repository.NewMemoryStore()
	concept := model.NewBusinessConcept("user1")
	concept.ProblemStatement = "stored problem"
	require.NoError(t, store.SaveConcept("user1", concept))

	hub := NewHub(store)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, r.URL.Query().Get("user_id"))
	}))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	// Tab 1 joins and is handed the stored concept right away.
	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=user1", nil)
	require.NoError(t, err, "tab 1 failed to connect")
	defer conn1.Close()

	initial := readMessage(t, conn1)
	assert.Equal(t, ConceptUpdateType, initial.Type)
	assert.Equal(t, "user1", initial.UserID)
	var received model.BusinessConcept
	require.NoError(t, json.Unmarshal(initial.Payload, &received))
	assert.Equal(t, "stored problem", received.ProblemStatement)

	presence := readMessage(t, conn1)
	assert.Equal(t, PresenceUpdateType, presence.Type)

	// Tab 2 of the same user joins its room.
	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=user1", nil)
	require.NoError(t, err, "tab 2 failed to connect")
	defer conn2.Close()

	tab2Initial := readMessage(t, conn2)
	assert.Equal(t, ConceptUpdateType, tab2Initial.Type)
	tab2Presence := readMessage(t, conn2)
	assert.Equal(t, PresenceUpdateType, tab2Presence.Type)

	// Tab 1 hears about tab 2 joining.
	presence = readMessage(t, conn1)
	assert.Equal(t, PresenceUpdateType, presence.Type)
	var statuses []TabStatus
	require.NoError(t, json.Unmarshal(presence.Payload, &statuses))
	assert.Len(t, statuses, 2)

	// A commit fans out to every tab of the user.
	concept.ProblemStatement = "updated problem"
	hub.NotifyConceptUpdate("user1", concept)

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg := readMessage(t, conn)
		assert.Equal(t, ConceptUpdateType, msg.Type)
		var c model.BusinessConcept
		require.NoError(t, json.Unmarshal(msg.Payload, &c))
		assert.Equal(t, "updated problem", c.ProblemStatement)
	}

	// Step pointer moves are broadcast too.
	hub.NotifyStepUpdate("user1", 2)
	msg := readMessage(t, conn1)
	assert.Equal(t, StepUpdateType, msg.Type)
	assert.JSONEq(t, `{"currentStep":2}`, string(msg.Payload))
	_ = readMessage(t, conn2)
}

func TestHubRoomsAreIsolatedPerUser(t *testing.T) {
	store := repository.NewMemoryStore()
	hub := NewHub(store)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, r.URL.Query().Get("user_id"))
	}))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=alice", nil)
	require.NoError(t, err)
	defer conn1.Close()
	// No stored concept for alice, so the first message is presence.
	presence := readMessage(t, conn1)
	assert.Equal(t, PresenceUpdateType, presence.Type)

	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=bob", nil)
	require.NoError(t, err)
	defer conn2.Close()
	_ = readMessage(t, conn2)

	hub.NotifyStepUpdate("bob", 1)
	msg := readMessage(t, conn2)
	assert.Equal(t, StepUpdateType, msg.Type)

	// Alice's tab hears nothing about bob's wizard.
	expectSilence(t, conn1)
}
