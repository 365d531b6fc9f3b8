package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/smartforge/landing/internal/config"
	"github.com/smartforge/landing/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	err      error
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeConn) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func TestWSHub_DeliversToOwnSession(t *testing.T) {
	bus := events.NewMemoryBus()
	hub := NewWSHub(&config.Config{}, bus, zap.NewNop())
	require.NoError(t, hub.Start(context.Background()))

	alice, bob := uuid.New(), uuid.New()
	aliceTab1, aliceTab2, bobTab := &fakeConn{}, &fakeConn{}, &fakeConn{}
	hub.register(alice, aliceTab1)
	hub.register(alice, aliceTab2)
	hub.register(bob, bobTab)

	ev := events.Event{
		Type:      events.EventWalletConnected,
		SessionID: alice.String(),
		Payload:   map[string]any{"kind": "solana"},
	}
	require.NoError(t, bus.Publish(context.Background(), events.StreamWallet, ev))

	assert.Equal(t, 1, aliceTab1.received())
	assert.Equal(t, 1, aliceTab2.received())
	assert.Equal(t, 0, bobTab.received())

	var got events.Event
	require.NoError(t, json.Unmarshal(aliceTab1.messages[0], &got))
	assert.Equal(t, ev.Type, got.Type)
	assert.Equal(t, alice.String(), got.SessionID)
}

func TestWSHub_UnregisterAndBrokenConn(t *testing.T) {
	hub := NewWSHub(&config.Config{}, events.NewMemoryBus(), zap.NewNop())
	session := uuid.New()

	broken := &fakeConn{err: errors.New("closed")}
	healthy := &fakeConn{}
	brokenClient := hub.register(session, broken)
	hub.register(session, healthy)

	hub.dispatch(events.Event{Type: events.EventWalletDisconnected, SessionID: session.String()})
	assert.Equal(t, 1, healthy.received())

	hub.unregister(session, brokenClient)
	hub.mu.RLock()
	assert.Len(t, hub.connections[session], 1)
	hub.mu.RUnlock()

	hub.dispatch(events.Event{Type: events.EventWalletDisconnected, SessionID: "not-a-uuid"})
	assert.Equal(t, 1, healthy.received())
}
