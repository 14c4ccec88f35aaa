package mqtt

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/msxvi/strategy/infra/logger"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type fakeClient struct {
	failures int
	calls    int
	topics   []string
	payloads [][]byte
}

func (c *fakeClient) IsConnected() bool      { return true }
func (c *fakeClient) Connect() paho.Token    { return fakeToken{} }
func (c *fakeClient) Disconnect(uint)        {}
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.calls++
	if c.calls <= c.failures {
		return fakeToken{err: fmt.Errorf("broker unavailable")}
	}
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	return fakeToken{}
}

func newTestPublisher(cli pahoClient) *PahoPublisher {
	return &PahoPublisher{cli: cli, maxRetries: 3, backoff: time.Millisecond, logger: logger.NopLogger{}}
}

func TestPublishMarshalsJSON(t *testing.T) {
	cli := &fakeClient{}
	p := newTestPublisher(cli)

	msg := map[string]any{"run_id": "r1", "objective": "asc"}
	if err := p.Publish("strategy/plan", msg); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(cli.topics) != 1 || cli.topics[0] != "strategy/plan" {
		t.Fatalf("unexpected topics %v", cli.topics)
	}
	var got map[string]any
	if err := json.Unmarshal(cli.payloads[0], &got); err != nil {
		t.Fatalf("payload not json: %v", err)
	}
	if got["run_id"] != "r1" {
		t.Fatalf("payload = %v", got)
	}
}

func TestPublishRetriesOnFailure(t *testing.T) {
	cli := &fakeClient{failures: 2}
	p := newTestPublisher(cli)

	if err := p.Publish("strategy/plan", "payload"); err != nil {
		t.Fatalf("publish should succeed after retries: %v", err)
	}
	if cli.calls != 3 {
		t.Fatalf("calls = %d, want 3", cli.calls)
	}
}

func TestPublishExhaustsRetries(t *testing.T) {
	cli := &fakeClient{failures: 10}
	p := newTestPublisher(cli)

	if err := p.Publish("strategy/plan", "payload"); err == nil {
		t.Fatal("expected publish to fail")
	}
	if cli.calls != 4 {
		t.Fatalf("calls = %d, want 4", cli.calls)
	}
}

func TestLoadTLSConfigRequiresFiles(t *testing.T) {
	cfg := Config{UseTLS: true}
	if _, err := cfg.LoadTLSConfig(); err == nil {
		t.Fatal("expected missing file error")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "c1", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("credentials not applied")
	}
}

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	if err := m.Publish("t", map[string]int{"a": 1}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(m.Messages["t"]) == 0 {
		t.Fatal("message not recorded")
	}
	m.Fail = true
	if err := m.Publish("t", nil); err == nil {
		t.Fatal("expected failure")
	}
}
