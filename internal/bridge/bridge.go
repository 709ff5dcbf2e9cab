// Package bridge wires the DM transport to the command router: inbound
// messages are dispatched to a per-user worker so one user's commands
// run strictly in order while different users proceed in parallel.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"meshgopher/internal/chunker"
	"meshgopher/internal/router"
	"meshgopher/internal/session"
	"meshgopher/internal/transport"
)

// DefaultQueueSize bounds how many commands one user may have waiting.
const DefaultQueueSize = 16

// Bridge is the inbound dispatch layer.
type Bridge struct {
	transport transport.Transport
	router    *router.Router
	store     *session.Store
	pacer     *chunker.Pacer
	log       *slog.Logger

	queueSize int
	mu        sync.Mutex
	queues    map[string]chan transport.Message
	wg        sync.WaitGroup

	// OnMessage is called for every inbound DM (metrics hook).
	OnMessage func()
}

// New assembles a bridge.
func New(t transport.Transport, r *router.Router, store *session.Store, pacer *chunker.Pacer, queueSize int) *Bridge {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	return &Bridge{
		transport: t,
		router:    r,
		store:     store,
		pacer:     pacer,
		log:       slog.With("component", "bridge"),
		queueSize: queueSize,
		queues:    make(map[string]chan transport.Message),
	}
}

// Run subscribes to the transport and processes messages until the
// context ends.
func (b *Bridge) Run(ctx context.Context) error {
	b.transport.Subscribe(func(msg transport.Message) {
		b.enqueue(ctx, msg)
	})
	err := b.transport.Run(ctx)
	b.wg.Wait()
	return err
}

// enqueue hands the message to the sender's worker, spawning it on
// first contact. A full queue drops the command rather than stalling
// the transport's event loop.
func (b *Bridge) enqueue(ctx context.Context, msg transport.Message) {
	if msg.UserID == "" {
		return
	}
	if b.OnMessage != nil {
		b.OnMessage()
	}

	b.mu.Lock()
	q, ok := b.queues[msg.UserID]
	if !ok {
		q = make(chan transport.Message, b.queueSize)
		b.queues[msg.UserID] = q
		b.wg.Add(1)
		go b.worker(ctx, q)
	}
	b.mu.Unlock()

	select {
	case q <- msg:
	default:
		b.log.Warn("command queue full, dropping message", "user", msg.UserID)
	}
}

func (b *Bridge) worker(ctx context.Context, q <-chan transport.Message) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-q:
			b.handle(ctx, msg)
		}
	}
}

// handle runs one command under the user's session lock and delivers
// the reply. The paced send happens after the lock is released; the
// per-user worker still keeps replies in command order.
func (b *Bridge) handle(ctx context.Context, msg transport.Message) {
	var reply string
	b.store.With(msg.UserID, func(s *session.Session) {
		reply = b.router.Handle(ctx, s, msg.Text)
	})
	if reply == "" {
		return
	}

	if err := b.pacer.Send(ctx, msg.UserID, reply); err != nil && !errors.Is(err, context.Canceled) {
		b.log.Error("reply delivery incomplete", "user", msg.UserID, "error", err)
	}
}
