package gameserver

import (
	"sync"
	"time"
)

// DefaultChatHistory is the number of chat lines a ChatLog keeps.
const DefaultChatHistory = 200

// ChatMessage is one line of DM chat.
type ChatMessage struct {
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ChatLog is a bounded chat history. It satisfies executor.ChatSink.
// All methods are safe for concurrent use.
type ChatLog struct {
	mu    sync.Mutex
	limit int
	lines []ChatMessage
	now   func() time.Time
}

// NewChatLog creates a ChatLog that keeps the latest limit lines.
// A limit below 1 uses DefaultChatHistory.
func NewChatLog(limit int) *ChatLog {
	if limit < 1 {
		limit = DefaultChatHistory
	}
	return &ChatLog{limit: limit, now: time.Now}
}

// AddMessage appends a line, evicting the oldest once the log is full.
func (l *ChatLog) AddMessage(sender, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, ChatMessage{Sender: sender, Content: content, At: l.now()})
	if over := len(l.lines) - l.limit; over > 0 {
		l.lines = append(l.lines[:0:0], l.lines[over:]...)
	}
}

// Recent returns up to n of the newest lines, oldest first. n <= 0
// returns the whole log.
func (l *ChatLog) Recent(n int) []ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.lines) {
		n = len(l.lines)
	}
	return append([]ChatMessage(nil), l.lines[len(l.lines)-n:]...)
}
