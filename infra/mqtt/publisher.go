package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Publisher sends JSON payloads to a topic.
type Publisher interface {
	Publish(topic string, payload any) error
	Close()
}

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	mu       sync.Mutex
	Messages map[string][]byte
	Fail     bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Messages: make(map[string][]byte)}
}

// Publish records the marshaled payload or fails if configured to.
func (m *MockPublisher) Publish(topic string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.Messages[topic] = data
	return nil
}

// Close is a no-op.
func (m *MockPublisher) Close() {}
