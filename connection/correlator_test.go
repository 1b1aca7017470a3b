package connection

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isekream/WindsurfUnityMCP/protocol"
)

func TestCorrelator_NewCallUniqueIDs(t *testing.T) {
	c := NewCorrelator(zerolog.New(io.Discard))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, _ := c.NewCall()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate correlation id %q", id)
		seen[id] = true
	}
	assert.Equal(t, 100, c.Pending())
}

func TestCorrelator_ResolveDelivers(t *testing.T) {
	c := NewCorrelator(zerolog.New(io.Discard))

	id, outcomeCh := c.NewCall()
	resolved := c.Resolve(id, Outcome{Response: protocol.NewSuccess(id, "ok", nil)})
	require.True(t, resolved)

	select {
	case out := <-outcomeCh:
		require.NoError(t, out.Err)
		assert.Equal(t, id, out.Response.ID)
	case <-time.After(time.Second):
		t.Fatal("outcome never delivered")
	}
	assert.Equal(t, 0, c.Pending())
}

func TestCorrelator_ResolveUnknownIgnored(t *testing.T) {
	c := NewCorrelator(zerolog.New(io.Discard))

	assert.False(t, c.Resolve("never-issued", Outcome{}))
}

func TestCorrelator_ResolveAfterForgetIsStale(t *testing.T) {
	c := NewCorrelator(zerolog.New(io.Discard))

	id, _ := c.NewCall()
	c.Forget(id)

	assert.False(t, c.Resolve(id, Outcome{}))
	assert.Equal(t, 0, c.Pending())
}

func TestCorrelator_CancelAllResolvesEveryCall(t *testing.T) {
	c := NewCorrelator(zerolog.New(io.Discard))

	const n = 5
	channels := make([]<-chan Outcome, n)
	for i := range channels {
		_, channels[i] = c.NewCall()
	}

	cancelled := c.CancelAll(ErrConnectionLost)
	assert.Equal(t, n, cancelled)
	assert.Equal(t, 0, c.Pending())

	for i, ch := range channels {
		select {
		case out := <-ch:
			assert.ErrorIs(t, out.Err, ErrConnectionLost, "call %d", i)
		case <-time.After(time.Second):
			t.Fatalf("call %d left pending after CancelAll", i)
		}
	}
}

func TestCorrelator_CancelAllEmpty(t *testing.T) {
	c := NewCorrelator(zerolog.New(io.Discard))
	assert.Equal(t, 0, c.CancelAll(ErrConnectionLost))
}
