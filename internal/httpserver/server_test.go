package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/solitaire/assets"
	"github.com/robalobadob/solitaire/internal/cards"
	"github.com/robalobadob/solitaire/internal/config"
	"github.com/robalobadob/solitaire/internal/daily"
	"github.com/robalobadob/solitaire/internal/database"
	"github.com/robalobadob/solitaire/internal/game"
	"github.com/robalobadob/solitaire/internal/klondike"
	"github.com/robalobadob/solitaire/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := database.OpenAndMigrate(context.Background(), filepath.Join(t.TempDir(), "test.db"), assets.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		ClientOrigin:   "http://localhost:5173",
		JWTSecret:      "test_secret",
		JWTExpiresDays: 1,
		CookieName:     "solitaire_token",
		DailySalt:      "test_salt",
		SessionTTL:     time.Hour,
	}
	return New(cfg, store.NewMemoryStore(cfg.SessionTTL), db)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

type moveRes struct {
	Moved  bool             `json:"moved"`
	Undone bool             `json:"undone"`
	Drawn  bool             `json:"drawn"`
	To     klondike.PileRef `json:"to"`
	Game   gameView         `json:"game"`
}

func newGameView(t *testing.T, s *Server, seed string) gameView {
	t.Helper()
	body := ""
	if seed != "" {
		body = `{"seed":"` + seed + `"}`
	}
	rec := do(t, s.Router(), http.MethodPost, "/game/new", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[gameView](t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Router(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewGameView(t *testing.T) {
	s := newTestServer(t)
	v := newGameView(t, s, "42")

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, uint64(42), v.Seed)
	assert.Equal(t, klondike.StockAfterDeal, v.StockCount)
	assert.Empty(t, v.Waste)
	for i, col := range v.Tableau {
		require.Len(t, col, i+1)
		for _, c := range col[:i] {
			assert.Equal(t, cardView{}, c, "face-down cards are masked")
		}
		top := col[i]
		assert.True(t, top.FaceUp)
		_, err := cards.Parse(top.ID)
		assert.NoError(t, err)
	}

	again := newGameView(t, s, "42")
	assert.Equal(t, v.Tableau, again.Tableau, "same seed, same deal")

	rec := do(t, s.Router(), http.MethodGet, "/game/"+v.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, v.Tableau, decode[gameView](t, rec).Tableau)
}

func TestNewGameRejectsBadJSON(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Router(), http.MethodPost, "/game/new", `{"seed":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownGame(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/game/nope", "/game/nope/hint", "/debug/validate/nope"} {
		rec := do(t, s.Router(), http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := do(t, s.Router(), http.MethodPost, "/game/nope/draw", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDrawUndoRestart(t *testing.T) {
	s := newTestServer(t)
	v := newGameView(t, s, "7")

	rec := do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/undo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[moveRes](t, rec).Undone, "nothing to undo is not an error")

	rec = do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/draw", "")
	require.Equal(t, http.StatusOK, rec.Code)
	drawn := decode[moveRes](t, rec)
	assert.True(t, drawn.Drawn)
	assert.Equal(t, klondike.StockAfterDeal-1, drawn.Game.StockCount)
	require.Len(t, drawn.Game.Waste, 1)
	assert.True(t, drawn.Game.Waste[0].FaceUp)
	assert.Equal(t, 1, drawn.Game.UndoDepth)

	rec = do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/undo", "")
	undone := decode[moveRes](t, rec)
	assert.True(t, undone.Undone)
	assert.Equal(t, v.StockCount, undone.Game.StockCount)
	assert.Empty(t, undone.Game.Waste)

	do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/draw", "")
	do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/draw", "")
	rec = do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/restart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	restarted := decode[gameView](t, rec)
	assert.Equal(t, v.Tableau, restarted.Tableau)
	assert.Equal(t, v.StockCount, restarted.StockCount)
	assert.Zero(t, restarted.UndoDepth)
}

// hintedGame deals seeds until the board has a hint.
func hintedGame(t *testing.T, s *Server) (*game.Game, gameView) {
	t.Helper()
	for seed := 1; seed < 200; seed++ {
		v := newGameView(t, s, strconv.Itoa(seed))
		g, err := s.store.Get(context.Background(), v.ID)
		require.NoError(t, err)
		if _, ok := g.Hint(); ok {
			return g, v
		}
	}
	t.Fatal("no deal with a hint")
	return nil, gameView{}
}

func TestHintAndMove(t *testing.T) {
	s := newTestServer(t)
	g, v := hintedGame(t, s)

	rec := do(t, s.Router(), http.MethodGet, "/game/"+v.ID+"/hint", "")
	require.Equal(t, http.StatusOK, rec.Code)
	hr := decode[struct {
		Hint *struct {
			CardIDs []string         `json:"cardIds"`
			CardID  string           `json:"cardId"`
			From    klondike.PileRef `json:"from"`
			To      klondike.PileRef `json:"to"`
		} `json:"hint"`
		Message string `json:"message"`
	}](t, rec)
	require.NotNil(t, hr.Hint)
	assert.NotEmpty(t, hr.Message)
	assert.Contains(t, hr.Hint.CardIDs, hr.Hint.CardID)

	body, _ := json.Marshal(moveReq{From: hr.Hint.From, To: hr.Hint.To, CardID: hr.Hint.CardID})
	rec = do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/move", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[moveRes](t, rec)
	assert.True(t, moved.Moved)
	assert.Equal(t, 1, moved.Game.Moves)
	assert.Positive(t, moved.Game.Score)

	loc, ok := g.Locate(hr.Hint.CardID)
	require.True(t, ok)
	assert.Equal(t, hr.Hint.To, loc.Pile)

	// Replaying the same move now names a card that is no longer there.
	rec = do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/move", string(body))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"desync"}`, rec.Body.String())

	rec = do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/undo", "")
	undone := decode[moveRes](t, rec)
	assert.True(t, undone.Undone)
	assert.Equal(t, v.Tableau, undone.Game.Tableau)
	assert.Zero(t, undone.Game.Score)
}

func TestMoveErrorMapping(t *testing.T) {
	s := newTestServer(t)
	v := newGameView(t, s, "11")
	g, err := s.store.Get(context.Background(), v.ID)
	require.NoError(t, err)
	before := g.Snapshot()

	// A non-Ace tableau top onto an empty foundation.
	var card string
	var col int
	for i, c := range before.Tableau {
		if top := klondike.Top(c); top.Rank != cards.Ace {
			card, col = top.ID, i
			break
		}
	}
	require.NotEmpty(t, card)

	tests := []struct {
		name string
		body moveReq
		code int
		err  string
	}{
		{"illegal", moveReq{From: klondike.TableauPile(col), To: klondike.FoundationPile(0), CardID: card}, http.StatusUnprocessableEntity, "illegal_move"},
		{"same pile", moveReq{From: klondike.TableauPile(col), To: klondike.TableauPile(col), CardID: card}, http.StatusUnprocessableEntity, "illegal_move"},
		{"wrong source", moveReq{From: klondike.WastePile(), To: klondike.FoundationPile(0), CardID: card}, http.StatusConflict, "desync"},
		{"bad pile", moveReq{From: klondike.TableauPile(col), To: klondike.PileRef{Kind: "nowhere"}, CardID: card}, http.StatusBadRequest, "bad_pile"},
		{"bad index", moveReq{From: klondike.TableauPile(col), To: klondike.TableauPile(9), CardID: card}, http.StatusBadRequest, "bad_pile"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.body)
			rec := do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/move", string(body))
			assert.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, `{"error":"`+tc.err+`"}`, rec.Body.String())
		})
	}
	assert.Equal(t, before, g.Snapshot(), "rejected moves leave the board alone")
	assert.Zero(t, g.Info().UndoDepth)

	rec := do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/move", `{"from":{"kind":"waste"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "cardId is required")

	body, _ := json.Marshal(autoReq{From: klondike.PileRef{Kind: "nowhere"}, CardID: card})
	rec = do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/auto", string(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"bad_pile"}`, rec.Body.String())
}

// Asking to move a card the view hides must not reveal where it is: a
// face-down card in the named pile and one lying elsewhere read the same.
func TestHiddenCardsAnswerAlike(t *testing.T) {
	s := newTestServer(t)
	v := newGameView(t, s, "11")
	g, err := s.store.Get(context.Background(), v.ID)
	require.NoError(t, err)
	before := g.Snapshot()
	require.Len(t, before.Tableau[6], 7)

	visible := map[string]bool{}
	for _, col := range v.Tableau {
		for _, c := range col {
			if c.FaceUp {
				visible[c.ID] = true
			}
		}
	}
	require.Len(t, visible, klondike.NumTableau)

	for _, from := range []klondike.PileRef{klondike.TableauPile(6), klondike.StockPile()} {
		for _, c := range cards.NewDeck() {
			if visible[c.ID] {
				continue
			}
			body, _ := json.Marshal(moveReq{From: from, To: klondike.FoundationPile(0), CardID: c.ID})
			rec := do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/move", string(body))
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "move %s from %s", c.ID, from)
			assert.JSONEq(t, `{"error":"illegal_move"}`, rec.Body.String())

			body, _ = json.Marshal(autoReq{From: from, CardID: c.ID})
			rec = do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/auto", string(body))
			require.Equal(t, http.StatusOK, rec.Code, "auto %s from %s", c.ID, from)
			assert.False(t, decode[moveRes](t, rec).Moved)
		}
	}
	assert.Equal(t, before, g.Snapshot())
	assert.Zero(t, g.Info().UndoDepth)
}

func TestAutoMove(t *testing.T) {
	s := newTestServer(t)
	g, v := hintedGame(t, s)
	h, _ := g.Hint()

	body, _ := json.Marshal(autoReq{From: h.From, CardID: h.CardID})
	rec := do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/auto", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[moveRes](t, rec)
	assert.True(t, res.Moved)
	loc, ok := g.Locate(h.CardID)
	require.True(t, ok)
	assert.Equal(t, res.To, loc.Pile)

	rec = do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/auto", string(body))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNewDealKeepsSession(t *testing.T) {
	s := newTestServer(t)
	v := newGameView(t, s, "5")
	rec := do(t, s.Router(), http.MethodPost, "/game/"+v.ID+"/deal", `{"seed":"6"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	dealt := decode[gameView](t, rec)
	assert.Equal(t, v.ID, dealt.ID)
	assert.Equal(t, uint64(6), dealt.Seed)
	assert.Equal(t, newGameView(t, s, "6").Tableau, dealt.Tableau)
}

func TestValidateEndpoint(t *testing.T) {
	s := newTestServer(t)
	v := newGameView(t, s, "")
	rec := do(t, s.Router(), http.MethodGet, "/debug/validate/"+v.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

// ------------------------------- auth --------------------------------------

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func post(t *testing.T, c *http.Client, url, body string) *http.Response {
	t.Helper()
	res, err := c.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func get(t *testing.T, c *http.Client, url string) *http.Response {
	t.Helper()
	res, err := c.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func readJSON[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

type statsRes struct {
	ID          string `json:"id"`
	GamesPlayed int    `json:"gamesPlayed"`
	Wins        int    `json:"wins"`
	Streak      int    `json:"streak"`
	BestScore   int    `json:"bestScore"`
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	c := newClient(t)

	res := get(t, c, ts.URL+"/auth/me")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = post(t, c, ts.URL+"/auth/signup", `{"username":"ada","password":"hunter22!"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	me := readJSON[authUser](t, res)
	assert.Equal(t, "ada", me.Username)

	res = get(t, c, ts.URL+"/auth/me")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, me.ID, readJSON[authUser](t, res).ID)

	res = post(t, newClient(t), ts.URL+"/auth/signup", `{"username":"ADA","password":"hunter22!"}`)
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res = post(t, newClient(t), ts.URL+"/auth/signup", `{"username":"a","password":"hunter22!"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = post(t, newClient(t), ts.URL+"/auth/login", `{"username":"ada","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	other := newClient(t)
	res = post(t, other, ts.URL+"/auth/login", `{"username":"ada","password":"hunter22!"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res = get(t, other, ts.URL+"/auth/me")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = post(t, c, ts.URL+"/auth/logout", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	res = get(t, c, ts.URL+"/auth/me")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestBearerToken(t *testing.T) {
	s := newTestServer(t)
	u, err := s.createUser(context.Background(), "bob_1", "password123")
	require.NoError(t, err)
	tok, _, err := s.signJWT(u.ID, u.Username)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok+"x")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupNameRace(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	u, err := s.createUser(ctx, "dora", "password123")
	require.NoError(t, err)

	// A second signup that passed the name check before the first committed.
	dup := *u
	dup.ID = "other-id"
	dup.Username = "DORA"
	assert.ErrorIs(t, s.insertUser(ctx, &dup), ErrUsernameTaken)

	_, err = s.createUser(ctx, "Dora", "password123")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestSignupStorageErrorIsNotEchoed(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.db.Close())

	rec := do(t, s.Router(), http.MethodPost, "/auth/signup", `{"username":"erin","password":"password123"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"signup_failed"}`, rec.Body.String())

	rec = do(t, s.Router(), http.MethodPost, "/auth/signup", `{"username":"e","password":"password123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"username must be 3-24 chars"}`, rec.Body.String())
}

func TestStatsAndWinRecording(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	c := newClient(t)

	res := post(t, c, ts.URL+"/auth/signup", `{"username":"carol","password":"password123"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	me := readJSON[authUser](t, res)

	res = post(t, c, ts.URL+"/game/new", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	v := readJSON[gameView](t, res)

	st := readJSON[statsRes](t, get(t, c, ts.URL+"/stats/me"))
	assert.Equal(t, 1, st.GamesPlayed)
	assert.Zero(t, st.Wins)

	s.recordWin(game.Result{GameID: v.ID, OwnerID: me.ID, Seed: 1<<63 + 1, Score: 640, Moves: 110, Elapsed: 3 * time.Minute})

	st = readJSON[statsRes](t, get(t, c, ts.URL+"/stats/me"))
	assert.Equal(t, 1, st.Wins)
	assert.Equal(t, 1, st.Streak)
	assert.Equal(t, 640, st.BestScore)

	mine := readJSON[[]gameRow](t, get(t, c, ts.URL+"/games/mine"))
	require.Len(t, mine, 1)
	assert.Equal(t, v.ID, mine[0].ID)
	assert.Equal(t, int64(180_000), mine[0].ElapsedMs)

	// Two deals without a win in between break the streak.
	post(t, c, ts.URL+"/game/new", "")
	post(t, c, ts.URL+"/game/new", "")
	st = readJSON[statsRes](t, get(t, c, ts.URL+"/stats/me"))
	assert.Equal(t, 3, st.GamesPlayed)
	assert.Zero(t, st.Streak)
	assert.Equal(t, 1, st.Wins)
}

func TestGuestHistoryIsClaimed(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	c := newClient(t)

	res := post(t, c, ts.URL+"/game/new", "")
	v := readJSON[gameView](t, res)
	var anon string
	for _, ck := range res.Cookies() {
		if ck.Name == anonCookieName {
			anon = ck.Value
		}
	}
	require.NotEmpty(t, anon)
	g, err := s.store.Get(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, anon, g.OwnerID)

	s.recordWin(game.Result{GameID: v.ID, OwnerID: anon, Seed: 3, Score: 100, Moves: 90})

	res = post(t, c, ts.URL+"/auth/signup", `{"username":"dave","password":"password123"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	mine := readJSON[[]gameRow](t, get(t, c, ts.URL+"/games/mine"))
	require.Len(t, mine, 1)
	assert.Equal(t, v.ID, mine[0].ID)
}

// ------------------------------- daily -------------------------------------

func TestDailyDeal(t *testing.T) {
	s := newTestServer(t)
	fixed := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	c := newClient(t)

	first := readJSON[dailyRes](t, post(t, c, ts.URL+"/daily/new", ""))
	require.NotNil(t, first.Game)
	assert.Equal(t, "2026-10-19", first.Date)
	assert.False(t, first.Played)
	assert.Equal(t, "2026-10-19", first.Game.Daily)
	assert.Zero(t, first.Game.Seed, "daily seed is not revealed")

	again := readJSON[dailyRes](t, post(t, c, ts.URL+"/daily/new", ""))
	require.NotNil(t, again.Game)
	assert.Equal(t, first.Game.ID, again.Game.ID, "session is reused")

	other := readJSON[dailyRes](t, post(t, newClient(t), ts.URL+"/daily/new", ""))
	require.NotNil(t, other.Game)
	assert.NotEqual(t, first.Game.ID, other.Game.ID)
	assert.Equal(t, first.Game.Tableau, other.Game.Tableau, "everyone gets the same deal")

	g, err := s.store.Get(context.Background(), first.Game.ID)
	require.NoError(t, err)
	s.recordWin(game.Result{
		GameID: g.ID, OwnerID: g.OwnerID, Seed: daily.Seed(fixed, "test_salt"),
		Daily: "2026-10-19", Score: 500, Moves: 95, Elapsed: time.Minute,
	})

	done := readJSON[dailyRes](t, post(t, c, ts.URL+"/daily/new", ""))
	assert.True(t, done.Played)
	assert.Nil(t, done.Game)

	lb := readJSON[lbRes](t, get(t, c, ts.URL+"/daily/leaderboard"))
	assert.Equal(t, "2026-10-19", lb.Date)
	require.Len(t, lb.Top, 1)
	assert.Equal(t, 95, lb.Top[0].Moves)
	assert.Equal(t, g.OwnerID, lb.Top[0].UserID)

	lb = readJSON[lbRes](t, get(t, c, ts.URL+"/daily/leaderboard?date=2026-10-18"))
	assert.Empty(t, lb.Top)
}

// ----------------------------- websocket -----------------------------------

func TestWebsocketPushesUpdates(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	v := newGameView(t, s, "13")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/game/"+v.ID+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var ev event
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	assert.Equal(t, eventState, ev.Type)
	require.NotNil(t, ev.Game)
	assert.Equal(t, v.StockCount, ev.Game.StockCount)

	require.Eventually(t, func() bool { return s.hub.count(v.ID) == 1 }, time.Second, 10*time.Millisecond)
	res, err := http.Post(ts.URL+"/game/"+v.ID+"/draw", "application/json", nil)
	require.NoError(t, err)
	_ = res.Body.Close()

	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	assert.Equal(t, eventState, ev.Type)
	assert.Equal(t, v.StockCount-1, ev.Game.StockCount)

	conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool { return s.hub.count(v.ID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestWebsocketUnknownGame(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s.Router(), http.MethodGet, "/game/missing/ws", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	h := newHub()
	closed := make(chan struct{})
	h.subscribe("g", func() { close(closed) })
	for i := 0; i <= subscriberBuffer; i++ {
		h.publish("g", event{Type: eventState})
	}
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("slow subscriber was not closed")
	}
}

func TestWonFollowsFinalBoard(t *testing.T) {
	s := newTestServer(t)
	v := newGameView(t, s, "8")
	g, err := s.store.Get(context.Background(), v.ID)
	require.NoError(t, err)
	sub := s.hub.subscribe(v.ID, func() {})
	defer s.hub.unsubscribe(v.ID, sub)

	// The win hook fires inside the move, before the handler pushes the board.
	s.recordWin(game.Result{GameID: v.ID, OwnerID: "anon-test", Score: 320, Moves: 90})
	assert.Empty(t, sub.msgs)

	s.publish(g)
	require.Len(t, sub.msgs, 2)
	first, second := <-sub.msgs, <-sub.msgs
	assert.Equal(t, eventState, first.Type)
	require.Equal(t, eventWon, second.Type)
	require.NotNil(t, second.Result)
	assert.Equal(t, 320, second.Result.Score)

	s.publish(g)
	require.Len(t, sub.msgs, 1, "the result is pushed once")
	assert.Equal(t, eventState, (<-sub.msgs).Type)
}

func TestOriginHost(t *testing.T) {
	assert.Equal(t, "localhost:5173", originHost("http://localhost:5173"))
	assert.Equal(t, "example.com", originHost("https://example.com"))
	assert.Equal(t, "example.com", originHost("example.com"))
}
