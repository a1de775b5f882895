package wsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"binflip/internal/application/port"
	"binflip/internal/domain/model"
)

// Broadcaster pushes flip events as JSON frames to every connected websocket
// client. It satisfies port.Notifier so the dispatcher treats it like any
// other delivery channel.
type Broadcaster struct {
	upgrader websocket.Upgrader
	srv      *http.Server

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewBroadcaster(addr string) *Broadcaster {
	b := &Broadcaster{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/flips", b.handleWS)
	b.srv = &http.Server{Addr: addr, Handler: mux}
	return b
}

// Start serves the websocket endpoint in the background.
func (b *Broadcaster) Start() {
	go func() {
		if err := b.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("wsfeed server stopped")
		}
	}()
	log.Info().Str("addr", b.srv.Addr).Msg("wsfeed listening")
}

func (b *Broadcaster) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("wsfeed upgrade failed")
		return
	}

	b.mu.Lock()
	b.conns[conn] = struct{}{}
	clients := len(b.conns)
	b.mu.Unlock()
	log.Info().Str("remote", conn.RemoteAddr().String()).Int("clients", clients).Msg("wsfeed client connected")

	// clients never send anything useful; the read loop only notices closes
	go func() {
		defer b.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (b *Broadcaster) drop(conn *websocket.Conn) {
	b.mu.Lock()
	delete(b.conns, conn)
	b.mu.Unlock()
	_ = conn.Close()
}

func (b *Broadcaster) Name() string { return "wsfeed" }

func (b *Broadcaster) Notify(ctx context.Context, ev model.FlipEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for conn := range b.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(b.conns, conn)
			_ = conn.Close()
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (b *Broadcaster) Close() error {
	b.mu.Lock()
	for conn := range b.conns {
		_ = conn.Close()
	}
	b.conns = make(map[*websocket.Conn]struct{})
	b.mu.Unlock()
	return b.srv.Close()
}

var _ port.Notifier = (*Broadcaster)(nil)
