package igm401

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/arloliu/go-igm401/internal/simulator"
	"github.com/arloliu/go-igm401/transport"
)

const versionReply = "*01 1104-07 \r"

// scriptedLink is an Exchanger replaying canned replies.
type scriptedLink struct {
	sent    []string
	replies []scriptedReply
}

type scriptedReply struct {
	data string
	err  error
}

func newScriptedLink(replies ...string) *scriptedLink {
	l := &scriptedLink{}
	for _, r := range replies {
		l.replies = append(l.replies, scriptedReply{data: r})
	}

	return l
}

func (l *scriptedLink) push(data string) *scriptedLink {
	l.replies = append(l.replies, scriptedReply{data: data})
	return l
}

func (l *scriptedLink) pushErr(err error) *scriptedLink {
	l.replies = append(l.replies, scriptedReply{err: err})
	return l
}

func (l *scriptedLink) Send(data []byte) error {
	l.sent = append(l.sent, string(data))
	return nil
}

func (l *scriptedLink) Receive(_ int, _ byte, timeout time.Duration) ([]byte, error) {
	if len(l.replies) == 0 {
		return nil, fmt.Errorf("%w after %v", transport.ErrTimeout, timeout)
	}

	r := l.replies[0]
	l.replies = l.replies[1:]
	if r.err != nil {
		return nil, r.err
	}

	return []byte(r.data), nil
}

// newScriptedGauge creates a Gauge whose version handshake is already scripted.
func newScriptedGauge(t *testing.T, opts ...Option) (*Gauge, *scriptedLink) {
	t.Helper()

	link := newScriptedLink(versionReply)
	g, err := New(link, opts...)
	if err != nil {
		t.Fatalf("newScriptedGauge: %v", err)
	}
	link.sent = nil

	return g, link
}

// newSimulatedGauge connects a Gauge through a real Transport to a simulated
// module over net.Pipe().
func newSimulatedGauge(t *testing.T, dev *simulator.Device, opts ...Option) (*Gauge, *transport.Transport, error) {
	t.Helper()

	local, remote := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = local.Close()
		_ = remote.Close()
	})

	go func() {
		_ = dev.Serve(ctx, remote)
	}()

	cfg, err := transport.NewConfig(transport.WithReadTimeout(200 * time.Millisecond))
	if err != nil {
		t.Fatalf("newSimulatedGauge: %v", err)
	}
	tr := transport.New(transport.NewConnPort(local), cfg)

	opts = append([]Option{WithResponseTimeout(200 * time.Millisecond)}, opts...)
	g, err := New(tr, opts...)

	return g, tr, err
}
