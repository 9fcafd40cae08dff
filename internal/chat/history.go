package chat

import (
	"sync"

	"github.com/Shivanand-hulikatti/lucybot/internal/llm"
)

// DefaultExchanges is how many user/model exchanges a session remembers.
const DefaultExchanges = 10

// History is the bounded conversation log of one session. Once it holds
// more than the configured number of exchanges the oldest exchange is
// dropped.
type History struct {
	mu        sync.Mutex
	exchanges int
	messages  []llm.Message
}

// NewHistory creates a History remembering up to exchanges exchanges.
func NewHistory(exchanges int) *History {
	if exchanges <= 0 {
		exchanges = DefaultExchanges
	}
	return &History{exchanges: exchanges}
}

// Messages returns a copy of the log, oldest first.
func (h *History) Messages() []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]llm.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Append records one exchange.
func (h *History) Append(user, model string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages,
		llm.Message{Role: llm.RoleUser, Text: user},
		llm.Message{Role: llm.RoleModel, Text: model},
	)
	for len(h.messages) > 2*h.exchanges {
		h.messages = h.messages[2:]
	}
}

// Reset forgets everything.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

// Len returns the number of messages held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}
