package session

import (
	"context"
	"errors"

	"github.com/DoyleJ11/bgg-shelf-mapper/internal/engine"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/metrics"
	"github.com/DoyleJ11/bgg-shelf-mapper/pkg/types"
	"go.uber.org/zap"
)

// API is the slice of the shelf backend a page session talks to.
type API interface {
	ListFixtures(ctx context.Context) ([]types.Fixture, error)
	GetFixtureGrid(ctx context.Context, fixtureID int) (*types.FixtureGrid, error)
	ListGames(ctx context.Context, q string) ([]types.GameWithPlacement, error)
	UpsertPlacement(ctx context.Context, p types.PlacementUpsert) error
	ClearPlacement(ctx context.Context, fixtureID int, slot string) error
}

var ErrClosed = errors.New("session closed")

type Msg interface{ isSessionMsg() }

// FromClient carries a browser intent. Reply, when set, receives the
// engine's verdict (nil on success).
type FromClient struct {
	Cmd   engine.Command
	Reply chan<- error
}

func (FromClient) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

// result is an effect's outcome coming back to the loop.
type result struct {
	cmd engine.Command
}

func (result) isSessionMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type Session struct {
	id      string
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan Snapshot
	joined  bool

	api     API
	log     *zap.Logger
	onEmpty func(id string)

	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithOnEmpty registers a callback run once the last socket has left.
func WithOnEmpty(fn func(id string)) Option {
	return func(s *Session) { s.onEmpty = fn }
}

// New starts the session loop and kicks off the initial fixture load.
func New(parent context.Context, id string, api API, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		id:      id,
		inbox:   make(chan Msg, 64),
		state:   engine.NewState(),
		clients: make(map[string]chan Snapshot),
		api:     api,
		log:     zap.NewNop(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("session_id", id))

	go s.loop()
	return s
}

func (s *Session) ID() string { return s.id }

// Inbox exposes the inbox so the ws layer and tests can send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed when the session starts shutting down.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Send delivers msg unless ctx ends or the session is gone first. A true
// result only means the message was queued: callers waiting on a reply must
// also watch Done.
func (s *Session) Send(ctx context.Context, msg Msg) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.inbox <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-s.ctx.Done():
		return false
	}
}

// Close stops the session without going through the inbox.
func (s *Session) Close() { s.cancel() }

// State asks the loop for the current view.
func (s *Session) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if !s.Send(ctx, GetState{Reply: reply}) {
		if err := ctx.Err(); err != nil {
			return View{}, err
		}
		return View{}, ErrClosed
	}
	select {
	case v := <-reply:
		return v, nil
	case <-s.ctx.Done():
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

func (s *Session) loop() {
	s.apply(engine.Command{Type: engine.CmdInit})

	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.clients[msg.ClientID] = msg.Outbox
				s.joined = true
				msg.Outbox <- Snapshot{Version: s.version, State: s.state}

			case Leave:
				delete(s.clients, msg.ClientID)
				if s.joined && len(s.clients) == 0 && s.onEmpty != nil {
					go s.onEmpty(s.id)
				}

			case FromClient:
				err := s.apply(msg.Cmd)
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case result:
				if err := s.apply(msg.cmd); err != nil && !errors.Is(err, engine.ErrStaleResult) {
					s.log.Warn("effect result rejected", zap.String("cmd", string(msg.cmd.Type)), zap.Error(err))
				}

			case GetState:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// apply runs one command through the engine; on success it bumps the version,
// broadcasts and starts the emitted effects.
func (s *Session) apply(cmd engine.Command) error {
	effects, newState, err := engine.Apply(s.state, cmd)
	if err != nil {
		if errors.Is(err, engine.ErrStaleResult) {
			s.log.Debug("dropped stale result", zap.String("cmd", string(cmd.Type)), zap.Uint64("seq", cmd.Seq))
		}
		return err
	}
	s.state = newState
	s.version++
	s.broadcast(Snapshot{Version: s.version, State: s.state})

	for _, eff := range effects {
		go s.run(eff)
	}
	return nil
}

func (s *Session) run(eff engine.Effect) {
	var cmd engine.Command

	switch eff.Type {
	case engine.EffFetchFixtures:
		fixtures, err := s.api.ListFixtures(s.ctx)
		cmd = engine.Command{Type: engine.CmdFixturesLoaded, Fixtures: fixtures, Err: err}

	case engine.EffFetchGrid:
		grid, err := s.api.GetFixtureGrid(s.ctx, eff.FixtureID)
		cmd = engine.Command{Type: engine.CmdGridLoaded, Seq: eff.Seq, Grid: grid, Err: err}

	case engine.EffSearchGames:
		games, err := s.api.ListGames(s.ctx, eff.Query)
		cmd = engine.Command{Type: engine.CmdSearchDone, Seq: eff.Seq, Notify: eff.Notify, Games: games, Err: err}

	case engine.EffUpsertPlacement:
		err := s.api.UpsertPlacement(s.ctx, types.PlacementUpsert{FixtureID: eff.FixtureID, Slot: eff.Slot, GameID: eff.GameID})
		cmd = engine.Command{Type: engine.CmdPlacementDone, Err: err}

	case engine.EffClearPlacement:
		err := s.api.ClearPlacement(s.ctx, eff.FixtureID, eff.Slot)
		cmd = engine.Command{Type: engine.CmdPlacementDone, Err: err}

	default:
		s.log.Error("unknown effect", zap.String("effect", string(eff.Type)))
		return
	}

	if cmd.Err != nil {
		s.log.Info("backend call failed", zap.String("effect", string(eff.Type)), zap.Error(cmd.Err))
	}

	select {
	case s.inbox <- result{cmd: cmd}:
	case <-s.ctx.Done():
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		select {
		case ch <- snap:
		default:
			// slow client
			close(ch)
			delete(s.clients, id)
			metrics.SocketsDropped.Inc()
			s.log.Info("dropped slow socket", zap.String("client_id", id))
		}
	}
}
