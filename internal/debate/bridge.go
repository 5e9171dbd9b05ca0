package debate

import (
	"context"
	"strings"
	"sync"
)

// DefaultBridgeBuffer is the hand-off channel capacity for one turn.
const DefaultBridgeBuffer = 64

// Bridge moves a blocking FragmentStream onto a worker goroutine so the
// orchestrator can consume it with select. Fragment order is preserved and
// every fragment produced is delivered, empty ones included, unless the
// consumer stops early. End of stream is signalled by closing the channel;
// the producer's error is reported by Wait.
type Bridge struct {
	buffer int
}

// NewBridge creates a bridge whose hand-off channel holds buffer fragments.
func NewBridge(buffer int) *Bridge {
	if buffer <= 0 {
		buffer = DefaultBridgeBuffer
	}
	return &Bridge{buffer: buffer}
}

// Pump is one running bridge: a worker draining a stream into a channel.
type Pump struct {
	fragments chan string
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	err       error
}

// Start launches the worker for stream. The caller must eventually call
// Wait (directly or through Drain) to join it.
func (b *Bridge) Start(stream FragmentStream) *Pump {
	p := &Pump{
		fragments: make(chan string, b.buffer),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go p.produce(stream)
	return p
}

func (p *Pump) produce(stream FragmentStream) {
	defer close(p.done)
	defer close(p.fragments)
	defer stream.Close()

	for stream.Next() {
		select {
		case p.fragments <- stream.Fragment():
		case <-p.stop:
			debugLog("[bridge] consumer stopped, abandoning stream")
			return
		}
	}
	p.err = stream.Err()
}

// Fragments returns the hand-off channel. It is closed when the producer
// finishes, fails, or is stopped.
func (p *Pump) Fragments() <-chan string {
	return p.fragments
}

// Stop tells the producer that nobody is reading any more. The producer
// finishes the fragment it is blocked on, then exits.
func (p *Pump) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// Wait joins the producer and returns the error that ended the stream.
func (p *Pump) Wait() error {
	<-p.done
	return p.err
}

// Drain consumes every fragment, calling onFragment for each in order, and
// returns their concatenation. If ctx is cancelled or onFragment fails, the
// producer is stopped and joined before Drain returns.
func (p *Pump) Drain(ctx context.Context, onFragment func(string) error) (string, error) {
	var content strings.Builder
	for {
		select {
		case frag, ok := <-p.fragments:
			if !ok {
				if err := p.Wait(); err != nil {
					return content.String(), err
				}
				return content.String(), nil
			}
			content.WriteString(frag)
			if onFragment != nil {
				if err := onFragment(frag); err != nil {
					p.Stop()
					p.Wait()
					return content.String(), err
				}
			}
		case <-ctx.Done():
			p.Stop()
			p.Wait()
			return content.String(), ctx.Err()
		}
	}
}

// Collect runs stream through a bridge and returns the full content. It is
// used where fragments are not surfaced individually.
func (b *Bridge) Collect(ctx context.Context, stream FragmentStream) (string, error) {
	return b.Start(stream).Drain(ctx, nil)
}
