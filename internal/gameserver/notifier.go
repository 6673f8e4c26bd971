package gameserver

import (
	"github.com/cory-johannsen/dmengine/internal/broadcast"
	"github.com/cory-johannsen/dmengine/internal/executor"
)

// SoundPayload is pushed on ChannelSound when a plugin plays a sound cue.
type SoundPayload struct {
	PluginID string `json:"pluginId"`
	Sound    string `json:"sound"`
}

// ChannelSound carries plugin sound cues to peers.
const ChannelSound = "play-sound"

// TableNotifier delivers plugin notifications to the DM chat log and to
// peers. It satisfies plugin.Notifier.
type TableNotifier struct {
	chat  executor.ChatSink
	queue executor.Enqueuer
}

// NewTableNotifier creates a TableNotifier.
//
// Precondition: chat and queue must be non-nil.
func NewTableNotifier(chat executor.ChatSink, queue executor.Enqueuer) *TableNotifier {
	return &TableNotifier{chat: chat, queue: queue}
}

// Notify posts message as a system chat line from pluginID.
func (n *TableNotifier) Notify(pluginID, message string) {
	n.chat.AddMessage(pluginID, message)
	n.queue.Enqueue(broadcast.Message{
		Channel: broadcast.ChannelChat,
		Payload: broadcast.ChatPayload{Sender: pluginID, Content: message, System: true},
	})
}

// PlaySound pushes a sound cue to peers.
func (n *TableNotifier) PlaySound(pluginID, sound string) {
	n.queue.Enqueue(broadcast.Message{
		Channel: ChannelSound,
		Payload: SoundPayload{PluginID: pluginID, Sound: sound},
	})
}
