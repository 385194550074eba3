package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type fakePicker struct {
	transport Transport
	err       error
	opens     atomic.Int32
}

func (p *fakePicker) Open(ctx context.Context) (Transport, error) {
	p.opens.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.transport, nil
}

type fakeTransport struct {
	name     string
	capable  bool
	protocol *fakeProtocol
	// establish overrides the default handshake when set.
	establish func(ctx context.Context, onAwaiting func()) error
	banner    string
	closed    atomic.Bool
	closeErr  error
}

func (t *fakeTransport) Name() string            { return t.name }
func (t *fakeTransport) IsProtocolCapable() bool { return t.capable }

func (t *fakeTransport) Establish(ctx context.Context, banner string, onAwaiting func()) (Protocol, error) {
	t.banner = banner
	if t.establish != nil {
		if err := t.establish(ctx, onAwaiting); err != nil {
			return nil, err
		}
	}
	return t.protocol, nil
}

func (t *fakeTransport) Close() error {
	t.closed.Store(true)
	return t.closeErr
}

type fakeProtocol struct {
	mu       sync.Mutex
	commands []string
	outputs  map[string]string
	openErr  error
	recvErr  error
	// block, when non-nil, holds every ReceiveAll until it is closed.
	block  chan struct{}
	opens  atomic.Int32
	closes atomic.Int32
}

func newFakeProtocol(outputs map[string]string) *fakeProtocol {
	if outputs == nil {
		outputs = map[string]string{}
	}
	return &fakeProtocol{outputs: outputs}
}

func (p *fakeProtocol) OpenChannel(ctx context.Context, command string) (Channel, error) {
	p.opens.Add(1)
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.mu.Lock()
	p.commands = append(p.commands, command)
	p.mu.Unlock()
	return &fakeChannel{p: p, command: command}, nil
}

func (p *fakeProtocol) sent() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.commands...)
}

type fakeChannel struct {
	p       *fakeProtocol
	command string
}

func (c *fakeChannel) ReceiveAll(ctx context.Context) ([]byte, error) {
	if c.p.block != nil {
		select {
		case <-c.p.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.p.recvErr != nil {
		return nil, c.p.recvErr
	}
	out, ok := c.p.outputs[c.command]
	if !ok {
		return nil, nil
	}
	return []byte(out), nil
}

func (c *fakeChannel) Close() error {
	c.p.closes.Add(1)
	return nil
}

var errDenied = errors.New("device denied authorization")
