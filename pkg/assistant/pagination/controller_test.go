package pagination

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sales-assistant-be/internal/repository/memory"
	"sales-assistant-be/pkg/assistant/session"
	"sales-assistant-be/pkg/catalog"
	"sales-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func products(n int) []catalog.ProductRecord {
	out := make([]catalog.ProductRecord, n)
	for i := range out {
		out[i] = catalog.ProductRecord{Name: fmt.Sprintf("Kompressor %02d", i+1)}
	}
	return out
}

func newController(t *testing.T) (*Controller, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(memory.NewSessionRepository(time.Hour), session.DefaultConfig(), nil)
	return NewController(sessions, 0), sessions
}

func TestPagesThroughResultSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t)

	first, err := c.Store(ctx, "u1", "category:Kompressoren", products(12))
	require.NoError(t, err)
	assert.Equal(t, 0, first.Start)
	assert.Equal(t, 5, first.End)
	assert.Equal(t, 12, first.Total)
	assert.Equal(t, 7, first.Remaining)
	assert.Equal(t, "Kompressor 01", first.Items[0].Name)

	second, err := c.Page(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, second.Start)
	assert.Equal(t, 10, second.End)
	assert.Equal(t, 2, second.Remaining)
	assert.Equal(t, "Kompressor 06", second.Items[0].Name)

	third, err := c.Page(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Len(t, third.Items, 2)
	assert.Equal(t, 0, third.Remaining)
	assert.True(t, third.Exhausted())

	empty, err := c.Page(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 12, empty.Start)
	assert.Equal(t, 0, empty.Remaining)
}

func TestPageWithoutResultSet(t *testing.T) {
	c, _ := newController(t)
	page, err := c.Page(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
}

func TestNewSignatureReplacesAndRewinds(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t)

	_, err := c.Store(ctx, "u1", "category:Kompressoren", products(12))
	require.NoError(t, err)
	_, err = c.Page(ctx, "u1", 5)
	require.NoError(t, err)

	page, err := c.Store(ctx, "u1", "price:0-500", products(3))
	require.NoError(t, err)
	assert.Equal(t, "price:0-500", page.Signature)
	assert.Equal(t, 0, page.Start)
	assert.Equal(t, 3, page.Total)
}

func TestTopicChangeRewinds(t *testing.T) {
	ctx := context.Background()
	c, sessions := newController(t)

	require.NoError(t, sessions.SetTopic(ctx, "u1", store.TopicProductInfo))
	_, err := c.Store(ctx, "u1", "category:Kompressoren", products(12))
	require.NoError(t, err)

	require.NoError(t, sessions.SetTopic(ctx, "u1", store.TopicOrderStatus))
	page, err := c.Page(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Start)

	// The rewind happens once; the next page continues.
	page, err = c.Page(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Start)
}
