package core

import (
	"context"
	"sync"

	"pkt.systems/tchat/schema"
)

// Link joins the UI role and the network role of one chat session. The UI
// role submits payloads and drains inbound text into Log; the network role
// consumes payloads and produces inbound text.
type Link struct {
	Log    *MessageLog
	Status *StatusCell

	outbound chan []byte
	inbound  chan string
	done     chan struct{}
	doneOnce sync.Once
}

// NewLink returns a link whose queues hold depth items each.
func NewLink(depth int) *Link {
	if depth <= 0 {
		depth = schema.DefaultQueueDepth
	}
	return &Link{
		Log:      &MessageLog{},
		Status:   &StatusCell{},
		outbound: make(chan []byte, depth),
		inbound:  make(chan string, depth),
		done:     make(chan struct{}),
	}
}

// Submit queues an outbound payload without blocking. Failures are recorded
// in Status and returned.
func (l *Link) Submit(payload []byte) error {
	var err error
	select {
	case <-l.done:
		err = schema.ErrQueueClosed
	default:
		select {
		case l.outbound <- payload:
			return nil
		default:
			err = schema.ErrQueueFull
		}
	}
	linkErr := &schema.LinkError{Kind: schema.SendQueueFailure, Err: err}
	l.Status.Set(linkErr.Error())
	return linkErr
}

// DrainInbound moves every pending inbound message into Log and returns how
// many were moved.
func (l *Link) DrainInbound() int {
	var batch []string
	for {
		select {
		case msg := <-l.inbound:
			batch = append(batch, msg)
		default:
			l.Log.Append(batch...)
			return len(batch)
		}
	}
}

// Done is closed once the network role has returned.
func (l *Link) Done() <-chan struct{} {
	return l.done
}

func (l *Link) nextOutbound() ([]byte, bool) {
	select {
	case payload := <-l.outbound:
		return payload, true
	default:
		return nil, false
	}
}

func (l *Link) deliver(ctx context.Context, msg string) error {
	select {
	case l.inbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Link) finish() {
	l.doneOnce.Do(func() { close(l.done) })
}
