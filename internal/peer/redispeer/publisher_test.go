package redispeer_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dmengine/internal/broadcast"
	"github.com/cory-johannsen/dmengine/internal/peer/redispeer"
)

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestPublisher_SendPublishesJSON(t *testing.T) {
	_, client := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "table:whisper")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := redispeer.NewPublisher(client, "table")
	payload := broadcast.WhisperPayload{TargetPeerID: "peer-2", Message: "You hear scratching."}
	require.NoError(t, pub.Send(ctx, broadcast.ChannelWhisper, payload))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "table:whisper", msg.Channel)

	var got broadcast.WhisperPayload
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, payload, got)
}

func TestPublisher_DefaultPrefix(t *testing.T) {
	_, client := setup(t)
	pub := redispeer.NewPublisher(client, "")
	assert.Equal(t, "dm:time-sync", pub.Topic(broadcast.ChannelTime))
}

func TestPublisher_UnencodablePayload(t *testing.T) {
	_, client := setup(t)
	pub := redispeer.NewPublisher(client, "")
	err := pub.Send(context.Background(), "x", func() {})
	assert.ErrorContains(t, err, "encoding x payload")
}

func TestPublisher_ServerDown(t *testing.T) {
	mr, client := setup(t)
	mr.Close()
	pub := redispeer.NewPublisher(client, "")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, pub.Send(ctx, broadcast.ChannelChat, broadcast.ChatPayload{Content: "hi"}))
}

func TestNewClient_RequiresAddr(t *testing.T) {
	_, err := redispeer.NewClient("")
	assert.Error(t, err)
}
