// internal/httpserver/routes_game.go
//
// Routes for a single Klondike session.
//   - POST /game/new             → deal a game (random or {"seed":"123"})
//   - GET  /game/{id}            → current board
//   - POST /game/{id}/draw       → turn a stock card / recycle the waste
//   - POST /game/{id}/move       → {"from":{kind,index},"to":{...},"cardId"}
//   - POST /game/{id}/auto       → {"from":{...},"cardId"}, best target wins
//   - POST /game/{id}/undo       → step back once
//   - POST /game/{id}/restart    → original deal again
//   - POST /game/{id}/deal       → fresh deal in the same session
//   - GET  /game/{id}/hint       → one suggested move, or none
//
// Boards are sent as views: face-down cards carry no identity and the stock
// is only a count. Move errors keep that masking: naming a hidden card
// always reads as an illegal move.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solitaire/internal/cards"
	"github.com/robalobadob/solitaire/internal/game"
	"github.com/robalobadob/solitaire/internal/hint"
	"github.com/robalobadob/solitaire/internal/klondike"
	"github.com/robalobadob/solitaire/internal/store"
)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.handleGetGame)
	r.Post("/game/{id}/draw", s.handleDraw)
	r.Post("/game/{id}/move", s.handleMove)
	r.Post("/game/{id}/auto", s.handleAuto)
	r.Post("/game/{id}/undo", s.handleUndo)
	r.Post("/game/{id}/restart", s.handleRestart)
	r.Post("/game/{id}/deal", s.handleDeal)
	r.Get("/game/{id}/hint", s.handleHint)
}

// ------------------------------- views -------------------------------------

type cardView struct {
	ID     string `json:"id,omitempty"`
	Suit   string `json:"suit,omitempty"`
	Rank   string `json:"rank,omitempty"`
	Label  string `json:"label,omitempty"`
	FaceUp bool   `json:"faceUp"`
}

type gameView struct {
	ID          string                              `json:"id"`
	Seed        uint64                              `json:"seed,string,omitempty"` // hidden for the daily deal
	Daily       string                              `json:"daily,omitempty"`
	Won         bool                                `json:"won"`
	Wins        int                                 `json:"wins"`
	Score       int                                 `json:"score"`
	Moves       int                                 `json:"moves"`
	ElapsedMs   int64                               `json:"elapsedMs"`
	UndoDepth   int                                 `json:"undoDepth"`
	StockCount  int                                 `json:"stockCount"`
	Waste       []cardView                          `json:"waste"`
	Foundations [klondike.NumFoundations][]cardView `json:"foundations"`
	Tableau     [klondike.NumTableau][]cardView     `json:"tableau"`
}

func viewCard(c cards.Card) cardView {
	if !c.FaceUp {
		return cardView{}
	}
	return cardView{
		ID:     c.ID,
		Suit:   c.Suit.String(),
		Rank:   c.Rank.String(),
		Label:  c.String(),
		FaceUp: true,
	}
}

func viewPile(p []cards.Card) []cardView {
	out := make([]cardView, len(p))
	for i, c := range p {
		out[i] = viewCard(c)
	}
	return out
}

func viewGame(info game.Info) gameView {
	st := info.State
	v := gameView{
		ID:         info.ID,
		Daily:      info.Daily,
		Won:        info.Won,
		Wins:       info.Wins,
		Score:      st.Score,
		Moves:      st.Moves,
		ElapsedMs:  info.Elapsed.Milliseconds(),
		UndoDepth:  info.UndoDepth,
		StockCount: len(st.Stock),
		Waste:      viewPile(st.Waste),
	}
	if info.Daily == "" {
		v.Seed = info.Seed
	}
	for i := range st.Foundations {
		v.Foundations[i] = viewPile(st.Foundations[i])
	}
	for i := range st.Tableau {
		v.Tableau[i] = viewPile(st.Tableau[i])
	}
	return v
}

// ------------------------------ helpers ------------------------------------

// lookupGame resolves {id} or writes a 404.
func (s *Server) lookupGame(w http.ResponseWriter, r *http.Request) *game.Game {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game_not_found")
		} else {
			log.Error().Err(err).Msg("load game")
			writeError(w, http.StatusInternalServerError, "load_failed")
		}
		return nil
	}
	return g
}

// ownerID is the signed-in user, else the anonymous cookie id.
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) string {
	if me := currentUser(r); me != nil {
		return me.ID
	}
	return s.ensureAnonID(w, r)
}

// publish pushes the current board to websocket subscribers, followed by
// the "won" event if this change completed the deal, and returns the same
// view for the HTTP response.
func (s *Server) publish(g *game.Game) gameView {
	v := viewGame(g.Info())
	s.hub.publish(g.ID, event{Type: eventState, Game: &v})
	if res, ok := s.takeWin(g.ID); ok {
		s.hub.publish(g.ID, event{Type: eventWon, Result: &res})
	}
	return v
}

// decodeOptional reads a JSON body that may be absent.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ------------------------------ handlers -----------------------------------

type newGameReq struct {
	Seed uint64 `json:"seed,string,omitempty"` // optional fixed deal
}

// handleNewGame deals a game for the caller. Signed-in players get their
// games_played counter bumped; the board itself is kept in memory only.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	owner := s.ownerID(w, r)
	g, err := s.newGame(r.Context(), owner, req.Seed, "")
	if err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	if me := currentUser(r); me != nil {
		s.countNewDeal(r.Context(), me.ID)
	}
	log.Info().Str("gameId", g.ID).Str("owner", owner).Msg("new game")
	writeJSON(w, http.StatusOK, viewGame(g.Info()))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g := s.lookupGame(w, r)
	if g == nil {
		return
	}
	writeJSON(w, http.StatusOK, viewGame(g.Info()))
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	g := s.lookupGame(w, r)
	if g == nil {
		return
	}
	drawn := g.Draw()
	writeJSON(w, http.StatusOK, map[string]any{"drawn": drawn, "game": s.publish(g)})
}

type moveReq struct {
	From   klondike.PileRef `json:"from"`
	To     klondike.PileRef `json:"to"`
	CardID string           `json:"cardId"`
}

// hidden reports whether err names a card the caller cannot see. Such a
// request gets the same answer as a face-down card that is in the named
// pile, so the status never tells where a hidden card lies; "desync" is
// kept for face-up cards the client has placed wrongly.
func hidden(g *game.Game, cardID string, err error) bool {
	return errors.Is(err, klondike.ErrCardNotInPile) && !g.FaceUp(cardID)
}

// moveError maps a move outcome onto an HTTP error. It reports false when
// the move went through.
func moveError(w http.ResponseWriter, ok bool, err error) bool {
	switch {
	case errors.Is(err, klondike.ErrCardNotInPile):
		writeError(w, http.StatusConflict, "desync")
	case errors.Is(err, klondike.ErrBadPile):
		writeError(w, http.StatusBadRequest, "bad_pile")
	case err != nil:
		log.Error().Err(err).Msg("move")
		writeError(w, http.StatusInternalServerError, "move_failed")
	case !ok:
		writeError(w, http.StatusUnprocessableEntity, "illegal_move")
	default:
		return false
	}
	return true
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	g := s.lookupGame(w, r)
	if g == nil {
		return
	}
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.CardID) == "" {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	ok, err := g.Move(req.From, req.To, req.CardID)
	if hidden(g, req.CardID, err) {
		ok, err = false, nil
	}
	if moveError(w, ok, err) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": true, "game": s.publish(g)})
}

type autoReq struct {
	From   klondike.PileRef `json:"from"`
	CardID string           `json:"cardId"`
}

// handleAuto is the double-click move. No target is not an error: the board
// is returned unchanged with "moved": false. A hidden card never has a
// target, wherever it lies.
func (s *Server) handleAuto(w http.ResponseWriter, r *http.Request) {
	g := s.lookupGame(w, r)
	if g == nil {
		return
	}
	var req autoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.CardID) == "" {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	to, ok, err := g.AutoMove(req.From, req.CardID)
	if hidden(g, req.CardID, err) {
		ok, err = false, nil
	}
	if err != nil {
		moveError(w, ok, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"moved": false, "game": viewGame(g.Info())})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": true, "to": to, "game": s.publish(g)})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	g := s.lookupGame(w, r)
	if g == nil {
		return
	}
	if !g.Undo() {
		writeJSON(w, http.StatusOK, map[string]any{"undone": false, "game": viewGame(g.Info())})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"undone": true, "game": s.publish(g)})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	g := s.lookupGame(w, r)
	if g == nil {
		return
	}
	g.Restart()
	writeJSON(w, http.StatusOK, s.publish(g))
}

// handleDeal swaps in a new deal while keeping the session (and its
// websocket subscribers).
func (s *Server) handleDeal(w http.ResponseWriter, r *http.Request) {
	g := s.lookupGame(w, r)
	if g == nil {
		return
	}
	var req newGameReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	g.NewDeal(req.Seed)
	if me := currentUser(r); me != nil && me.ID == g.OwnerID {
		s.countNewDeal(r.Context(), me.ID)
	}
	writeJSON(w, http.StatusOK, s.publish(g))
}

type hintRes struct {
	Hint    *hint.Hint `json:"hint"`
	Message string     `json:"message"`
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	g := s.lookupGame(w, r)
	if g == nil {
		return
	}
	h, ok := g.Hint()
	if !ok {
		writeJSON(w, http.StatusOK, hintRes{Message: hint.NoHintMessage})
		return
	}
	writeJSON(w, http.StatusOK, hintRes{Hint: &h, Message: h.Message})
}

// handleValidate checks the live board against the deck invariants.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	g := s.lookupGame(w, r)
	if g == nil {
		return
	}
	if err := g.Snapshot().Validate(); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "errors": strings.Split(err.Error(), "\n")})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
