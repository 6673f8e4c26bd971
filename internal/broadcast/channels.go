// Package broadcast carries state changes to connected peers.
//
// Handlers never talk to the network. They append Messages to an Outbox;
// once a directive succeeds the executor hands its outbox to a Dispatcher,
// whose single goroutine forwards each message to the peer Sender.
package broadcast

import "context"

// Channel names shared with peers. These strings are part of the peer
// protocol and must not change.
const (
	ChannelInitiative = "initiative-update"
	ChannelTokenMove  = "token-move"
	ChannelCondition  = "condition-update"
	ChannelTime       = "time-sync"
	ChannelMap        = "map-change"
	ChannelShop       = "shop-update"
	ChannelFog        = "fog-reveal"
	ChannelWhisper    = "whisper"
	ChannelTimerStart = "timer-start"
	ChannelTimerStop  = "timer-stop"
	ChannelChat       = "chat-message"
)

// Sender is the peer-messaging transport.
type Sender interface {
	Send(ctx context.Context, channel string, payload any) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, channel string, payload any) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, channel string, payload any) error {
	return f(ctx, channel, payload)
}

// Message is one outbound push.
type Message struct {
	Channel string
	Payload any
}

// Outbox collects the messages produced while one directive runs.
// It is not safe for concurrent use.
type Outbox struct {
	msgs []Message
}

// Push appends a message.
func (o *Outbox) Push(channel string, payload any) {
	o.msgs = append(o.msgs, Message{Channel: channel, Payload: payload})
}

// Messages returns the buffered messages in push order.
func (o *Outbox) Messages() []Message { return o.msgs }

// Len returns the number of buffered messages.
func (o *Outbox) Len() int { return len(o.msgs) }

// Reset discards every buffered message.
func (o *Outbox) Reset() { o.msgs = o.msgs[:0] }
