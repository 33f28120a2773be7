package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go-catalog-ws/internal/events"
)

type fakeConn struct {
	mu      sync.Mutex
	msgs    [][]byte
	failing bool
	closed  bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("broken pipe")
	}
	c.msgs = append(c.msgs, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsAndDropsBrokenClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub()
	go h.Run(ctx)

	good := &fakeConn{}
	bad := &fakeConn{failing: true}
	h.Register <- good
	h.Register <- bad

	if err := h.Publish(ctx, events.New(events.ProductAdded, "p1", map[string]string{"code": "A1"})); err != nil {
		t.Fatalf("publish: %v", err)
	}

	waitFor(t, func() bool { return good.received() == 1 })
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	var evt map[string]any
	if err := json.Unmarshal(good.msgs[0], &evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if evt["event"] != events.ProductAdded {
		t.Fatalf("unexpected event: %v", evt)
	}
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	c := &fakeConn{}
	h.Register <- c
	cancel()
	<-done
	if !c.closed || h.ClientCount() != 0 {
		t.Fatalf("expected clients closed on shutdown")
	}
}

func TestSendHonoursContext(t *testing.T) {
	h := &Hub{Broadcast: make(chan []byte)} // nobody reads
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.Send(ctx, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestJoinAndLeaveReturnAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := &fakeConn{}
	if !h.Join(ctx, c) {
		t.Fatalf("join on a running hub should succeed")
	}
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	cancel()
	<-stopped

	// Nothing reads the channels any more; both calls must still return.
	done := make(chan bool)
	go func() {
		h.Leave(ctx, c)
		done <- h.Join(ctx, &fakeConn{})
	}()
	select {
	case joined := <-done:
		if joined {
			t.Fatalf("join after shutdown should report false")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("leave or join blocked after the hub stopped")
	}
}

func TestLeaveUnregistersClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub()
	go h.Run(ctx)

	c := &fakeConn{}
	h.Join(ctx, c)
	waitFor(t, func() bool { return h.ClientCount() == 1 })
	h.Leave(ctx, c)
	waitFor(t, func() bool { return h.ClientCount() == 0 })
	if !c.closed {
		t.Fatalf("left client should be closed")
	}
}
