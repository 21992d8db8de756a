package net

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"BrushBoard/internal/logging"
)

// Path is where a Hub accepts websocket connections.
const Path = "/ws"

const (
	writeWait = 5 * time.Second
	closeWait = time.Second
	// sendQueue is the number of messages waiting for a peer before it is
	// considered stalled and dropped.
	sendQueue = 256
)

var errStalled = errors.New("send queue full")

// conn owns a websocket. Messages are queued and written by a single
// writer goroutine, so senders never wait on the network.
type conn struct {
	ws   *websocket.Conn
	out  chan Message
	done chan struct{}
	once sync.Once
}

func newConn(ws *websocket.Conn) *conn {
	c := &conn{
		ws:   ws,
		out:  make(chan Message, sendQueue),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *conn) writeLoop() {
	for {
		select {
		case m := <-c.out:
			err := c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err == nil {
				err = c.ws.WriteJSON(m)
			}
			if err != nil {
				logging.Logger().Warn("write to peer failed", "remote", c.ws.RemoteAddr().String(), "err", err)
				c.abort()
				return
			}
		case <-c.done:
			return
		}
	}
}

// send queues m. It fails when the connection is closed or the queue is
// full.
func (c *conn) send(m Message) error {
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	default:
	}
	select {
	case c.out <- m:
		return nil
	default:
		return errStalled
	}
}

// close sends a close frame and closes the connection. Queued messages
// are dropped.
func (c *conn) close() error {
	err := websocket.ErrCloseSent
	c.once.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
		err = c.ws.Close()
	})
	return err
}

// abort closes the connection without a close frame.
func (c *conn) abort() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// Hub is run by the host. Every message a peer sends is delivered locally
// and relayed to the other peers.
type Hub struct {
	upgrader websocket.Upgrader
	deliver  func(Message)

	mu    sync.RWMutex
	conns map[*conn]struct{}
}

// NewHub returns a hub calling deliver for each message received. deliver
// runs on the connection's goroutine.
func NewHub(deliver func(Message)) *Hub {
	return &Hub{
		deliver: deliver,
		conns:   make(map[*conn]struct{}),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := newConn(ws)
	h.add(c)
	defer func() {
		h.remove(c)
		c.abort()
	}()
	logging.Logger().Info("peer joined", "remote", r.RemoteAddr, "peers", h.Len())

	for {
		var m Message
		if err := ws.ReadJSON(&m); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Logger().Warn("peer read failed", "remote", r.RemoteAddr, "err", err)
			}
			logging.Logger().Info("peer left", "remote", r.RemoteAddr)
			return
		}
		logging.Logger().Debug("message received", "type", m.Type, "origin", m.Origin)
		if h.deliver != nil {
			h.deliver(m)
		}
		h.relay(m, c)
	}
}

func (h *Hub) add(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
}

// Len returns the number of connected peers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends m to every peer.
func (h *Hub) Broadcast(m Message) {
	h.relay(m, nil)
}

func (h *Hub) relay(m Message, except *conn) {
	h.mu.RLock()
	targets := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(m); errors.Is(err, errStalled) {
			logging.Logger().Warn("dropping stalled peer", "remote", c.ws.RemoteAddr().String())
			c.abort()
		}
	}
}

// Outbox returns an observer broadcasting locally authored elements.
func (h *Hub) Outbox() *Outbox {
	return NewOutbox(h.Broadcast)
}

// Close disconnects every peer.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[*conn]struct{})
	h.mu.Unlock()
	for c := range conns {
		c.close()
	}
}

// ListenAndServe serves the hub on addr until ctx is done.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logging.Logger().Info("board shared", "addr", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}
	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Peer is a connection from a joining board to a host.
type Peer struct {
	c       *conn
	done    chan struct{}
	err     error
	closing atomic.Bool
}

// Dial connects to the hub at addr ("host:port"). deliver is called from
// the peer's read goroutine for every message the host relays.
func Dial(ctx context.Context, addr string, deliver func(Message)) (*Peer, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: Path}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	p := &Peer{c: newConn(ws), done: make(chan struct{})}
	go p.read(deliver)
	logging.Logger().Info("joined board", "addr", addr)
	return p, nil
}

func (p *Peer) read(deliver func(Message)) {
	defer close(p.done)
	defer p.c.abort()
	for {
		var m Message
		if err := p.c.ws.ReadJSON(&m); err != nil {
			if !p.closing.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				p.err = err
			}
			return
		}
		if deliver != nil {
			deliver(m)
		}
	}
}

// Send queues m for the host.
func (p *Peer) Send(m Message) error {
	return p.c.send(m)
}

// Outbox returns an observer sending locally authored elements to the
// host.
func (p *Peer) Outbox() *Outbox {
	return NewOutbox(func(m Message) {
		if err := p.Send(m); err != nil {
			logging.Logger().Warn("send to host failed", "type", m.Type, "err", err)
		}
	})
}

// Done is closed when the connection ends.
func (p *Peer) Done() <-chan struct{} { return p.done }

// Err waits for the connection to end and returns why. It is nil for a
// normal close.
func (p *Peer) Err() error {
	<-p.done
	return p.err
}

// Close ends the connection and waits for the read goroutine.
func (p *Peer) Close() error {
	p.closing.Store(true)
	err := p.c.close()
	<-p.done
	return err
}
