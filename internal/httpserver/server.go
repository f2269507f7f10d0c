// internal/httpserver/server.go
//
// HTTP server wiring for the solitaire backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, JSON, CORS, timeouts,
//     panic recovery).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): /game/new and /game/{id}/...
//   - Daily deal endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//   - Websocket push of board updates: /game/{id}/ws.
//
// Notes:
//   - Live games stay in the session store; SQLite only sees accounts,
//     won games and daily results.
//   - The websocket route is mounted outside the request timeout.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solitaire/internal/config"
	"github.com/robalobadob/solitaire/internal/daily"
	"github.com/robalobadob/solitaire/internal/game"
	"github.com/robalobadob/solitaire/internal/store"
)

// Server bundles router, session store, DB handle and the websocket hub.
type Server struct {
	r     *chi.Mux
	cfg   config.Config
	store store.Store
	db    *sql.DB
	daily *daily.Store
	hub   *hub

	dailyMu    sync.Mutex
	dailyGames map[string]string // owner|date -> live game id

	winsMu sync.Mutex
	wins   map[string]game.Result // game id -> result waiting to be pushed

	now func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, db *sql.DB) *Server {
	s := &Server{
		r:          chi.NewRouter(),
		cfg:        cfg,
		store:      st,
		db:         db,
		daily:      daily.NewStore(db),
		hub:        newHub(),
		dailyGames: make(map[string]string),
		wins:       make(map[string]game.Result),
		now:        time.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)        // add X-Request-ID
	s.r.Use(chimw.RealIP)           // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)          // zerolog access log
	s.r.Use(chimw.Recoverer)        // recover from panics
	s.r.Use(jsonContentType)        // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin)) // credentials-friendly CORS

	// Push channel, long-lived: no request timeout.
	s.r.Get("/game/{id}/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service": "solitaire-go",
				"endpoints": []string{
					"/health", "POST /game/new", "GET /game/{id}", "POST /game/{id}/move",
					"/daily/*", "/auth/*",
				},
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
		r.Get("/debug/validate/{id}", s.handleValidate)

		// Game endpoints: OPTIONAL AUTH (guests can play)
		r.Group(func(r chi.Router) {
			r.Use(s.withOptionalAuth())
			s.mountGame(r)
			s.mountDaily(r)
		})

		// Auth + profile/stats
		s.mountAuthRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		s.hub.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// newGame deals a session for owner and registers it with the store.
// seed 0 deals at random; day is set only for the daily deal.
func (s *Server) newGame(ctx context.Context, owner string, seed uint64, day string) (*game.Game, error) {
	g := game.New(game.Options{
		Seed:         seed,
		Daily:        day,
		OwnerID:      owner,
		HistoryLimit: s.cfg.HistoryLimit,
		OnWin:        s.recordWin,
		Clock:        s.now,
	})
	if err := s.store.Save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError sends {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
