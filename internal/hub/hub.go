package hub

import (
	"context"

	"github.com/DoyleJ11/bgg-shelf-mapper/internal/metrics"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/session"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

// CreateSession starts a page session under a fresh id.
type CreateSession struct {
	Reply chan *session.Session
}

type GetSession struct {
	ID    string
	Reply chan *session.Session // nil if unknown or evicted
}

type RemoveSession struct {
	ID string
}

type ShutdownHub struct{}

func (CreateSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (RemoveSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

type Hub struct {
	inbox    chan HubMsg
	sessions *lru.Cache[string, *session.Session]
	api      session.API
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewHub keeps at most size sessions; the least recently used one is shut
// down when a new page needs room.
func NewHub(parent context.Context, api session.API, size int, log *zap.Logger) (*Hub, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		api:    api,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}

	cache, err := lru.NewWithEvict(size, func(id string, s *session.Session) {
		s.Close()
		metrics.SessionsActive.Dec()
		h.log.Debug("session closed", zap.String("session_id", id))
	})
	if err != nil {
		cancel()
		return nil, err
	}
	h.sessions = cache

	go h.loop()
	return h, nil
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Close stops the loop; every held session is shut down on the way out.
func (h *Hub) Close() { h.cancel() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.sessions.Purge()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession:
				id := uuid.NewString()
				s := session.New(h.ctx, id, h.api,
					session.WithLogger(h.log),
					session.WithOnEmpty(h.remove),
				)
				h.sessions.Add(id, s)
				metrics.SessionsActive.Inc()
				msg.Reply <- s

			case GetSession:
				s, _ := h.sessions.Get(msg.ID)
				msg.Reply <- s

			case RemoveSession:
				h.sessions.Remove(msg.ID)

			case ShutdownHub:
				h.sessions.Purge()
				h.cancel()
				return
			}
		}
	}
}

// Create asks the hub loop for a new session.
func (h *Hub) Create(ctx context.Context) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	return h.ask(ctx, CreateSession{Reply: reply}, reply)
}

// Get returns nil without error when id is unknown.
func (h *Hub) Get(ctx context.Context, id string) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	return h.ask(ctx, GetSession{ID: id, Reply: reply}, reply)
}

func (h *Hub) ask(ctx context.Context, msg HubMsg, reply chan *session.Session) (*session.Session, error) {
	select {
	case h.inbox <- msg:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, context.Canceled
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, context.Canceled
	}
}

func (h *Hub) remove(id string) {
	select {
	case h.inbox <- RemoveSession{ID: id}:
	case <-h.ctx.Done():
	}
}
