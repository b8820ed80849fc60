package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	raw, err := Encode(OutcomeEvent{UserID: "u1", Outcome: "NO_MATCH", Query: "tecumseh ae 4440", Candidates: 3, OccurredAt: at})
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeConversationOutcome, got.EventType())
	assert.True(t, at.Equal(got.Timestamp()))

	out := OutcomeFromPayload(got)
	assert.Equal(t, "u1", out.UserID)
	assert.Equal(t, "NO_MATCH", out.Outcome)
	assert.Equal(t, 3, out.Candidates)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"data":{}}`))
	assert.Error(t, err)
}

func TestChannelBusDelivers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewChannelBus(nil)
	defer bus.Close()

	received := make(chan OutcomeEvent, 1)
	require.NoError(t, bus.Subscribe(ctx, TypeConversationOutcome, func(ctx context.Context, e Event) error {
		received <- OutcomeFromPayload(e)
		return nil
	}))

	require.NoError(t, bus.Publish(ctx, OutcomeEvent{UserID: "u7", Outcome: "UNIQUE_MATCH", Match: "Embraco NJ 9238", OccurredAt: time.Now()}))

	select {
	case got := <-received:
		assert.Equal(t, "u7", got.UserID)
		assert.Equal(t, "Embraco NJ 9238", got.Match)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}
