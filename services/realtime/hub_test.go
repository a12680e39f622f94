package realtime_test

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorly/tutorly/core"
	logsvc "github.com/tutorly/tutorly/services/logger"
	"github.com/tutorly/tutorly/services/realtime"
)

func newHub() *realtime.Hub {
	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return realtime.NewHub(logger)
}

func receive(t *testing.T, sub *realtime.Subscription) (core.Event, bool) {
	t.Helper()
	select {
	case evt, ok := <-sub.Events():
		return evt, ok
	case <-time.After(time.Second):
		return core.Event{}, false
	}
}

func TestHub_Publish(t *testing.T) {
	hub := newHub()
	ctx := context.Background()

	alice1 := hub.Subscribe("alice")
	alice2 := hub.Subscribe("alice")
	bob := hub.Subscribe("bob")
	defer bob.Close()
	assert.Equal(t, 2, hub.Subscribers("alice"))

	hub.Publish(ctx, core.NewEvent("messages", core.EventInsert, "hi", "alice", ""))

	for _, sub := range []*realtime.Subscription{alice1, alice2} {
		evt, ok := receive(t, sub)
		require.True(t, ok)
		assert.Equal(t, "messages", evt.Table)
		assert.Equal(t, core.EventInsert, evt.Type)
		assert.Equal(t, []string{"alice"}, evt.Audience)
	}
	select {
	case evt := <-bob.Events():
		t.Errorf("bob received %v", evt)
	default:
	}

	alice1.Close()
	alice1.Close() // closing twice is harmless
	_, ok := <-alice1.Events()
	assert.False(t, ok)
	assert.Equal(t, 1, hub.Subscribers("alice"))

	alice2.Close()
	assert.Equal(t, 0, hub.Subscribers("alice"))
	hub.Publish(ctx, core.NewEvent("messages", core.EventInsert, "hi", "alice")) // no subscribers left
}

func TestHub_Publish_fullBuffer(t *testing.T) {
	hub := newHub()
	sub := hub.Subscribe("alice")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(context.Background(), core.NewEvent("jobs", core.EventUpdate, i, "alice"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish() blocked on a full subscription")
	}
	assert.Len(t, sub.Events(), cap(sub.Events()))
}

func TestHub_ServeWS(t *testing.T) {
	hub := newHub()
	realtime.SetAllowedOrigins([]string{"http://localhost:3000"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, "alice")
	}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	// disallowed origin
	_, res, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://evil.test"}})
	require.Error(t, err)
	if res != nil {
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://localhost:3000"}})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Subscribers("alice") == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(context.Background(), core.NewEvent("contracts", core.EventInsert, map[string]string{"id": "c1"}, "alice"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Table    string            `json:"table"`
		Type     string            `json:"type"`
		Record   map[string]string `json:"record"`
		Audience []string          `json:"audience"`
	}
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "contracts", got.Table)
	assert.Equal(t, core.EventInsert, got.Type)
	assert.Equal(t, "c1", got.Record["id"])
	assert.Nil(t, got.Audience, "the audience is not sent to clients")

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers("alice") == 0 }, time.Second, 10*time.Millisecond)
}
