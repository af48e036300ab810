package core

import "sync"

// MessageLog is the append-only list of received messages.
type MessageLog struct {
	mu       sync.Mutex
	messages []string
}

// Append adds messages in order.
func (l *MessageLog) Append(messages ...string) {
	if len(messages) == 0 {
		return
	}
	l.mu.Lock()
	l.messages = append(l.messages, messages...)
	l.mu.Unlock()
}

// Snapshot returns a copy of the messages.
func (l *MessageLog) Snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

// Len returns the number of messages.
func (l *MessageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// StatusCell holds the human-readable connection status.
type StatusCell struct {
	mu    sync.Mutex
	value string
}

// Set overwrites the status.
func (s *StatusCell) Set(value string) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
}

// Get returns the status.
func (s *StatusCell) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}
