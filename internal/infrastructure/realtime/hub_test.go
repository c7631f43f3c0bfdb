package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amire/crewboard/internal/infrastructure/logger"
)

func startHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(logger.NewNop())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, "tester")
		hub.Register(client)
		go client.WritePump()
		client.ReadPump()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// A pong means the subscriber is registered.
	require.NoError(t, conn.WriteJSON(Event{Type: "ping"}))
	require.Equal(t, "pong", readEvent(t, conn).Type)

	return hub, conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHubBroadcastsPublishedEvents(t *testing.T) {
	hub, conn := startHub(t)

	hub.Publish("job.deleted", map[string]int64{"id": 7})

	ev := readEvent(t, conn)
	assert.Equal(t, "job.deleted", ev.Type)
	assert.False(t, ev.At.IsZero())

	var data map[string]int64
	require.NoError(t, json.Unmarshal(ev.Data, &data))
	assert.Equal(t, int64(7), data["id"])
}

func TestHubPublishSkipsUnencodableData(t *testing.T) {
	hub, conn := startHub(t)

	hub.Publish("job.updated", make(chan int))
	hub.Publish("member.created", map[string]string{"name": "Ada"})

	assert.Equal(t, "member.created", readEvent(t, conn).Type)
}

func TestHubPublishWithoutRunDoesNotBlock(t *testing.T) {
	hub := NewHub(logger.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer+10; i++ {
			hub.Publish("job.created", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}

func TestPingAfterHubStopsDoesNotPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger.NewNop())
	go hub.Run(ctx)

	registered := make(chan struct{})
	finished := make(chan error, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			finished <- err
			return
		}
		defer func() {
			if p := recover(); p != nil {
				finished <- fmt.Errorf("panic: %v", p)
				return
			}
			finished <- nil
		}()
		client := NewClient(hub, conn, "tester")
		hub.Register(client)
		close(registered)
		client.ReadPump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)

	<-registered
	cancel()
	<-hub.done

	require.NoError(t, conn.WriteJSON(Event{Type: "ping"}))
	require.NoError(t, conn.WriteJSON(Event{Type: "ping"}))
	conn.Close()

	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("read loop did not return")
	}
}
