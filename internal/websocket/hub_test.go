package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sales-assistant-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(h *Hub, userID string) *Client {
	return &Client{Hub: h, UserID: userID, Send: make(chan []byte, 4)}
}

func register(t *testing.T, h *Hub, clients ...*Client) {
	t.Helper()
	for _, c := range clients {
		h.register <- c
	}
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		n := 0
		for _, cs := range h.clients {
			n += len(cs)
		}
		return n == len(clients)
	}, time.Second, 5*time.Millisecond)
}

func readFrame(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case raw := <-c.Send:
		var f Frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("no frame")
	}
	return Frame{}
}

func TestHubFansOutcomeToAllDevices(t *testing.T) {
	var gotUser, gotText string
	h := NewHub(nil, func(ctx context.Context, userID string, msg dto.WsChatMessage) (*dto.Outcome, error) {
		gotUser, gotText = userID, msg.Text
		return &dto.Outcome{UserID: userID, Kind: "NO_MATCH"}, nil
	}, nil)
	go h.Run()

	phone, laptop, other := newClient(h, "u1"), newClient(h, "u1"), newClient(h, "u2")
	register(t, h, phone, laptop, other)

	h.handleIncoming(context.Background(), phone, []byte(`{"text":"NJ9238"}`))

	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, "NJ9238", gotText)
	for _, c := range []*Client{phone, laptop} {
		f := readFrame(t, c)
		assert.Equal(t, "outcome", f.Type)
		require.NotNil(t, f.Data)
		assert.Equal(t, "NO_MATCH", f.Data.Kind)
	}
	assert.Empty(t, other.Send)
}

func TestHubRepliesErrorsToSenderOnly(t *testing.T) {
	h := NewHub(nil, func(ctx context.Context, userID string, msg dto.WsChatMessage) (*dto.Outcome, error) {
		return nil, errors.New("boom")
	}, nil)
	go h.Run()

	sender, sibling := newClient(h, "u1"), newClient(h, "u1")
	register(t, h, sender, sibling)

	h.handleIncoming(context.Background(), sender, []byte(`not json`))
	assert.Equal(t, "invalid message", readFrame(t, sender).Message)

	h.handleIncoming(context.Background(), sender, []byte(`{"text":""}`))
	assert.Equal(t, "error", readFrame(t, sender).Type)

	h.handleIncoming(context.Background(), sender, []byte(`{"text":"hallo"}`))
	assert.Equal(t, "boom", readFrame(t, sender).Message)

	assert.Empty(t, sibling.Send)
}
