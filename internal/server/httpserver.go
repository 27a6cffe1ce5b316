// Package server exposes one hotseat match over a JSON API. Both seats are
// served by the same process; the endpoints enforce the protocol ordering
// the state machine defines.
package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"zkship/internal/app"
	"zkship/internal/codec"
	"zkship/internal/commit"
	"zkship/internal/game"
	"zkship/internal/logger"
)

type Server struct {
	svc *app.Service

	// In-memory state, one match at a time
	mu    sync.RWMutex
	match *game.Match

	// Milliseconds since epoch when this server booted
	startAt int64
}

func New(svc *app.Service) *Server {
	return &Server{
		svc:     svc,
		startAt: time.Now().UnixMilli(),
	}
}

func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/match", s.handleMatch)
	mux.HandleFunc("/v1/place", s.handlePlace)
	mux.HandleFunc("/v1/setup", s.handleSetup)
	mux.HandleFunc("/v1/fire", s.handleFire)

	// Consolidated READ
	mux.HandleFunc("/v1/status", s.handleStatus)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func allowPost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return false
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) currentMatch() (*game.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.match == nil {
		return nil, errors.New("no match created yet")
	}
	return s.match, nil
}

// === Match creation ===

type matchReq struct {
	Ships uint8  `json:"ships"`
	Size  uint8  `json:"size"`
	NameA string `json:"nameA,omitempty"`
	NameB string `json:"nameB,omitempty"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	var req matchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, 400, map[string]string{"error": "bad json"})
		return
	}
	if req.NameA == "" {
		req.NameA = "player A"
	}
	if req.NameB == "" {
		req.NameB = "player B"
	}
	m, err := game.NewMatch(game.PublicParams{Ships: req.Ships, Size: req.Size}, req.NameA, req.NameB)
	if err != nil {
		writeError(w, 400, err)
		return
	}

	// Creating a match replaces any previous one
	s.mu.Lock()
	s.match = m
	s.mu.Unlock()

	logger.Logger().Info().Uint8("ships", req.Ships).Uint8("size", req.Size).Msg("match created")
	writeJSON(w, 200, s.statusPayload())
}

// === Placement ===

type placeReq struct {
	Player int     `json:"player"`
	Cells  []uint8 `json:"cells,omitempty"` // omitted => random placement
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	var req placeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, 400, map[string]string{"error": "bad json"})
		return
	}
	if req.Player != 0 && req.Player != 1 {
		writeJSON(w, 400, map[string]string{"error": "player must be 0 or 1"})
		return
	}
	m, err := s.currentMatch()
	if err != nil {
		writeError(w, 409, err)
		return
	}

	board := game.Board(req.Cells)
	if board == nil {
		board = game.RandomBoard(m.Params)
	}

	s.mu.Lock()
	err = m.Place(req.Player, board)
	s.mu.Unlock()
	if err != nil {
		writeError(w, 400, err)
		return
	}
	writeJSON(w, 200, s.statusPayload())
}

// === Setup handshake ===

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	m, err := s.currentMatch()
	if err != nil {
		writeError(w, 409, err)
		return
	}

	// Commit, prove, cross-verify, start. Holding the lock keeps shots out
	// until the handshake is decided.
	s.mu.Lock()
	err = s.svc.SetupMatch(m)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, game.ErrBoardNotVerified) {
			// a rejected board is an outcome, not a server fault
			writeError(w, 409, err)
			return
		}
		writeError(w, 400, err)
		return
	}

	commits := make([]codec.CommitMsg, 2)
	proofs := make([]codec.ProofMsg, 2)
	for i := 0; i < 2; i++ {
		commits[i] = codec.NewCommitMsg(m.Params, m.Player(i).Table())
		proofs[i] = codec.ProofMsg{Proof: m.Player(i).Proof()}
	}
	writeJSON(w, 200, map[string]any{
		"commits": commits,
		"proofs":  proofs,
		"status":  s.statusPayload(),
	})
}

// === Play ===

type fireReq struct {
	Player int `json:"player"`
	Tile   int `json:"tile"`
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	var req fireReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, 400, map[string]string{"error": "bad json"})
		return
	}
	m, err := s.currentMatch()
	if err != nil {
		writeError(w, 409, err)
		return
	}

	s.mu.Lock()
	if m.Phase() == game.PhasePlaying && req.Player != m.Turn() {
		turn := m.Turn()
		s.mu.Unlock()
		writeJSON(w, 409, map[string]any{
			"error": "not your turn",
			"turn":  turn,
		})
		return
	}
	res, err := m.Fire(req.Tile)
	s.mu.Unlock()

	if err != nil {
		switch {
		case errors.Is(err, game.ErrMatchOver):
			writeError(w, 409, err)
		case errors.Is(err, game.ErrAlreadyAttacked), errors.Is(err, game.ErrTileOutOfRange), errors.Is(err, game.ErrWrongPhase):
			writeError(w, 409, err)
		default:
			writeError(w, 400, err)
		}
		return
	}

	if res.Cheated {
		logger.Logger().Warn().Int("tile", res.Tile).Msg("commitment mismatch: cheating detected")
	}
	writeJSON(w, 200, map[string]any{
		"result":  res,
		"opening": codec.NewOpeningMsg(res.Tile, res.Opening),
		"status":  s.statusPayload(),
	})
}

// === Consolidated STATUS ===

// statusPayload snapshots the whole match under the read lock; /v1/fire
// mutates phase, turn, views and counts under the same mutex, so nothing
// may be read after release. The view slices are copied for the same
// reason.
func (s *Server) statusPayload() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]any{
		"startedAt": s.startAt,
	}
	m := s.match
	if m == nil {
		out["phase"] = "no match"
		return out
	}

	players := make([]map[string]any, 2)
	for i := 0; i < 2; i++ {
		pl := m.Player(i)
		p := map[string]any{
			"name":      pl.Name,
			"remaining": pl.Remaining(),
			"verified":  pl.Verified(),
			"view":      append(game.ViewBoard(nil), pl.View()...),
		}
		if table := pl.Table(); table != nil {
			fp := commit.Fingerprint(table)
			p["fingerprint"] = hex.EncodeToString(fp[:])
		}
		players[i] = p
	}

	out["phase"] = m.Phase().String()
	out["turn"] = m.Turn()
	out["params"] = m.Params
	out["players"] = players
	if winner, over := m.Winner(); over {
		out["winner"] = winner
	}
	return out
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, 200, s.statusPayload())
}

// === CORS ===

func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
