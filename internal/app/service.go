// Package app wires proof sessions to matches and runs the setup
// handshake shared by the CLI and the HTTP server.
package app

import (
	"fmt"
	"sync"
	"time"

	"zkship/internal/game"
	"zkship/internal/logger"
	"zkship/internal/zk"
)

// Service caches one proof session per board size. Sessions are expensive
// to create and shape-bound, so they are shared across matches.
type Service struct {
	keysDir string

	mu       sync.Mutex
	sessions map[int]*zk.Session
}

func NewService(keysDir string) *Service {
	return &Service{keysDir: keysDir, sessions: make(map[int]*zk.Session)}
}

// Session returns the proof session for a board size, loading cached keys
// or generating them on first use.
func (s *Service) Session(size int) (*zk.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[size]; ok {
		return sess, nil
	}
	sess, err := zk.LoadSession(s.keysDir, size)
	if err != nil {
		return nil, err
	}
	s.sessions[size] = sess
	return sess, nil
}

// SetupMatch runs the whole setup handshake on a match with both boards
// placed: commit, prove, cross-verify, start. Either side's proof failing
// verification blocks play.
func (s *Service) SetupMatch(m *game.Match) error {
	sess, err := s.Session(int(m.Params.Size))
	if err != nil {
		return err
	}

	if err := m.CommitBoards(); err != nil {
		return err
	}

	start := time.Now()
	if err := m.ProveBoards(sess); err != nil {
		return err
	}
	logger.Logger().Info().Dur("took", time.Since(start)).Msg("board proofs generated")

	ok, err := m.VerifyBoards(sess)
	if err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		if !ok[i] {
			return fmt.Errorf("%w: %s", game.ErrBoardNotVerified, m.Player(i).Name)
		}
	}
	return m.Start()
}
