// internal/httpserver/ws.go
//
// Websocket push channel: GET /game/{id}/ws.
// A subscriber receives the board right away and then one "state" event
// after every change made through the HTTP routes, plus a "won" event with
// the result when the deal is completed. Input still goes through HTTP;
// anything the client sends on the socket is discarded.

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solitaire/internal/game"
)

type eventType string

const (
	eventState eventType = "state"
	eventWon   eventType = "won"
)

// event is what goes over the socket.
type event struct {
	Type   eventType    `json:"type"`
	Game   *gameView    `json:"game,omitempty"`
	Result *game.Result `json:"result,omitempty"`
}

const subscriberBuffer = 16

type subscriber struct {
	msgs      chan event
	closeSlow func()
}

// hub fans events out to the sockets watching each game.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[*subscriber]struct{})}
}

func (h *hub) subscribe(gameID string, closeSlow func()) *subscriber {
	sub := &subscriber{msgs: make(chan event, subscriberBuffer), closeSlow: closeSlow}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*subscriber]struct{})
	}
	h.subs[gameID][sub] = struct{}{}
	return sub
}

func (h *hub) unsubscribe(gameID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[gameID], sub)
	if len(h.subs[gameID]) == 0 {
		delete(h.subs, gameID)
	}
}

// publish never blocks: a subscriber whose buffer is full is disconnected.
func (h *hub) publish(gameID string, ev event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[gameID] {
		select {
		case sub.msgs <- ev:
		default:
			go sub.closeSlow()
		}
	}
}

func (h *hub) count(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameID])
}

// closeAll disconnects every subscriber, used on shutdown.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.subs {
		for sub := range subs {
			go sub.closeSlow()
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	g := s.lookupGame(w, r)
	if g == nil {
		return
	}
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{originHost(s.cfg.ClientOrigin)},
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("websocket accept")
		return
	}
	defer c.CloseNow()

	sub := s.hub.subscribe(g.ID, func() {
		c.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
	})
	defer s.hub.unsubscribe(g.ID, sub)

	ctx := c.CloseRead(r.Context())
	v := viewGame(g.Info())
	if err := writeTimeout(ctx, c, event{Type: eventState, Game: &v}); err != nil {
		return
	}
	for {
		select {
		case ev := <-sub.msgs:
			if err := writeTimeout(ctx, c, ev); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeTimeout(ctx context.Context, c *websocket.Conn, ev event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return wsjson.Write(ctx, c, ev)
}

// originHost strips the scheme from CLIENT_ORIGIN for websocket origin checks.
func originHost(origin string) string {
	if i := strings.Index(origin, "://"); i >= 0 {
		return origin[i+3:]
	}
	return origin
}
