package chunker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrSendFailure marks an outbound chunk the transport refused. The
// rest of the reply is abandoned; there is no automatic resend.
var ErrSendFailure = errors.New("send failure")

// DefaultDelay is the pause between consecutive chunks of one reply.
// Ordering over the mesh is a best-effort property of this pacing, not
// something the transport guarantees.
const DefaultDelay = 1200 * time.Millisecond

// Sender is the outbound direct-message primitive of the transport.
type Sender interface {
	SendDirectMessage(ctx context.Context, userID, text string) error
}

// Pacer chunks a reply and emits the pieces strictly in order with a
// fixed delay between them.
type Pacer struct {
	sender Sender
	limit  int
	delay  time.Duration
	log    *slog.Logger

	// Optional hooks for metrics.
	OnChunkSent   func()
	OnSendFailure func()
}

// NewPacer builds a pacer emitting chunks of at most limit bytes with
// the given delay between them. Zero values fall back to the defaults.
func NewPacer(sender Sender, limit int, delay time.Duration) *Pacer {
	if limit <= 0 {
		limit = DefaultChunkBytes
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Pacer{
		sender: sender,
		limit:  limit,
		delay:  delay,
		log:    slog.With("component", "pacer"),
	}
}

// Send splits text and delivers the chunks in order. On the first
// transport failure the remaining chunks are dropped and the partial
// delivery is logged; the error wraps ErrSendFailure.
func (p *Pacer) Send(ctx context.Context, userID, text string) error {
	chunks := Split(text, p.limit)
	total := len(chunks)

	for i, chunk := range chunks {
		if i > 0 {
			if err := p.pause(ctx); err != nil {
				return err
			}
		}
		if err := p.sender.SendDirectMessage(ctx, userID, chunk); err != nil {
			if p.OnSendFailure != nil {
				p.OnSendFailure()
			}
			p.log.Error("chunk send failed, dropping rest of reply",
				"user", userID, "chunk", i+1, "total", total, "error", err)
			return fmt.Errorf("%w: chunk %d/%d to %s: %v", ErrSendFailure, i+1, total, userID, err)
		}
		if p.OnChunkSent != nil {
			p.OnChunkSent()
		}
	}
	return nil
}

func (p *Pacer) pause(ctx context.Context) error {
	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
