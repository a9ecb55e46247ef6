package authflow

import "sync"

// NoOpNotifier discards every notification.
type NoOpNotifier struct{}

func (NoOpNotifier) Success(string) {}
func (NoOpNotifier) Error(string)   {}

// Notice is one captured notification.
type Notice struct {
	Text  string
	IsErr bool
}

// RecordingNotifier keeps every notification in order. Intended for
// tests and the demo; production hosts bridge to their toast layer.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *RecordingNotifier) Success(text string) { n.append(Notice{Text: text}) }

func (n *RecordingNotifier) Error(text string) { n.append(Notice{Text: text, IsErr: true}) }

func (n *RecordingNotifier) append(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

// Notices returns a copy of everything captured so far.
func (n *RecordingNotifier) Notices() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, len(n.notices))
	copy(out, n.notices)
	return out
}
