package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/events"
)

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, events.JobsIngested)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := events.NewRedisPublisher(rdb)
	require.NoError(t, pub.Publish(ctx, events.JobsIngested, map[string]any{"sourceId": "s1", "saved": 2}))

	select {
	case msg := <-sub.Channel():
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, events.JobsIngested, got["type"])
		assert.Equal(t, "s1", got["sourceId"])
		assert.InDelta(t, 2, got["saved"], 0)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, string, map[string]any) error {
	f.calls++
	return errors.New("redis down")
}

func TestEmit_SwallowsErrors(t *testing.T) {
	p := &failingPublisher{}
	assert.NotPanics(t, func() {
		events.Emit(context.Background(), p, zap.NewNop(), events.CardMoved, nil)
		events.Emit(context.Background(), nil, zap.NewNop(), events.CardMoved, nil)
	})
	assert.Equal(t, 1, p.calls)
}
