package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"zkship/internal/app"
	"zkship/internal/codec"
	"zkship/internal/game"
)

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestServerMatchFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping groth16 setup in short mode")
	}
	req := require.New(t)

	srv := New(app.NewService(t.TempDir()))
	mux := http.NewServeMux()
	srv.Routes(mux)
	ts := httptest.NewServer(WithCORS(mux))
	defer ts.Close()

	// no match yet
	resp, _ := postJSON(t, ts, "/v1/fire", map[string]any{"player": 0, "tile": 0})
	req.Equal(409, resp.StatusCode)

	resp, _ = postJSON(t, ts, "/v1/match", map[string]any{"ships": 1, "size": 4})
	req.Equal(200, resp.StatusCode)

	resp, _ = postJSON(t, ts, "/v1/place", map[string]any{"player": 0, "cells": []uint8{1, 0, 0, 0}})
	req.Equal(200, resp.StatusCode)
	resp, _ = postJSON(t, ts, "/v1/place", map[string]any{"player": 1, "cells": []uint8{0, 0, 1, 0}})
	req.Equal(200, resp.StatusCode)

	// setup may not be skipped
	resp, body := postJSON(t, ts, "/v1/setup", nil)
	req.Equal(200, resp.StatusCode)
	raw, err := json.Marshal(body["commits"])
	req.NoError(err)
	var commits []codec.CommitMsg
	req.NoError(json.Unmarshal(raw, &commits))
	req.Len(commits, 2)
	raw, err = json.Marshal(body["proofs"])
	req.NoError(err)
	var proofs []codec.ProofMsg
	req.NoError(json.Unmarshal(raw, &proofs))
	req.Len(proofs, 2)
	req.NotEmpty(proofs[0].Proof)
	req.NotEmpty(proofs[1].Proof)

	httpResp, err := http.Get(ts.URL + "/v1/status")
	req.NoError(err)
	var status map[string]any
	req.NoError(json.NewDecoder(httpResp.Body).Decode(&status))
	httpResp.Body.Close()
	req.Equal("playing", status["phase"])

	// wrong seat is turned away
	resp, _ = postJSON(t, ts, "/v1/fire", map[string]any{"player": 1, "tile": 0})
	req.Equal(409, resp.StatusCode)

	// miss by player 0
	resp, body = postJSON(t, ts, "/v1/fire", map[string]any{"player": 0, "tile": 1})
	req.Equal(200, resp.StatusCode)
	result := body["result"].(map[string]any)
	req.False(result["hit"].(bool))

	// miss by player 1
	resp, _ = postJSON(t, ts, "/v1/fire", map[string]any{"player": 1, "tile": 1})
	req.Equal(200, resp.StatusCode)

	// duplicate tile by player 0 is rejected
	resp, _ = postJSON(t, ts, "/v1/fire", map[string]any{"player": 0, "tile": 1})
	req.Equal(409, resp.StatusCode)

	// killing hit by player 0, with a reveal that checks out against
	// the defender's published table
	resp, body = postJSON(t, ts, "/v1/fire", map[string]any{"player": 0, "tile": 2})
	req.Equal(200, resp.StatusCode)
	result = body["result"].(map[string]any)
	req.True(result["hit"].(bool))
	req.True(result["over"].(bool))
	req.Equal(float64(0), result["winner"].(float64))

	raw, err = json.Marshal(body["opening"])
	req.NoError(err)
	var reveal codec.OpeningMsg
	req.NoError(json.Unmarshal(raw, &reveal))
	req.Equal(2, reveal.Tile)
	opening, err := reveal.Opening()
	req.NoError(err)
	table, err := commits[1].Table()
	req.NoError(err)
	req.True(game.VerifyOpening(opening, table[2]))

	// no shots after the match is decided
	resp, _ = postJSON(t, ts, "/v1/fire", map[string]any{"player": 1, "tile": 3})
	req.Equal(409, resp.StatusCode)
}

// Status reads race against fire mutations unless the payload is built
// under the lock. Run with -race to catch a regression.
func TestServerStatusDuringShots(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping groth16 setup in short mode")
	}
	req := require.New(t)

	srv := New(app.NewService(t.TempDir()))
	mux := http.NewServeMux()
	srv.Routes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, _ := postJSON(t, ts, "/v1/match", map[string]any{"ships": 1, "size": 9})
	req.Equal(200, resp.StatusCode)
	resp, _ = postJSON(t, ts, "/v1/place", map[string]any{"player": 0, "cells": []uint8{1, 0, 0, 0, 0, 0, 0, 0, 0}})
	req.Equal(200, resp.StatusCode)
	resp, _ = postJSON(t, ts, "/v1/place", map[string]any{"player": 1, "cells": []uint8{0, 0, 0, 0, 0, 0, 0, 0, 1}})
	req.Equal(200, resp.StatusCode)
	resp, _ = postJSON(t, ts, "/v1/setup", nil)
	req.Equal(200, resp.StatusCode)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			statusResp, err := http.Get(ts.URL + "/v1/status")
			if err != nil {
				t.Error(err)
				return
			}
			var status map[string]any
			err = json.NewDecoder(statusResp.Body).Decode(&status)
			statusResp.Body.Close()
			if err != nil {
				t.Error(err)
				return
			}
		}
	}()

	for tile := 1; tile < 8; tile++ {
		resp, _ = postJSON(t, ts, "/v1/fire", map[string]any{"player": 0, "tile": tile})
		req.Equal(200, resp.StatusCode)
		resp, _ = postJSON(t, ts, "/v1/fire", map[string]any{"player": 1, "tile": tile})
		req.Equal(200, resp.StatusCode)
	}
	<-done
}

func TestServerRejectsBadRequests(t *testing.T) {
	req := require.New(t)

	srv := New(app.NewService(t.TempDir()))
	mux := http.NewServeMux()
	srv.Routes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, _ := postJSON(t, ts, "/v1/match", map[string]any{"ships": 10, "size": 4})
	req.Equal(400, resp.StatusCode)

	resp, _ = postJSON(t, ts, "/v1/match", map[string]any{"ships": 1, "size": 4})
	req.Equal(200, resp.StatusCode)

	resp, _ = postJSON(t, ts, "/v1/place", map[string]any{"player": 2})
	req.Equal(400, resp.StatusCode)

	resp, _ = postJSON(t, ts, "/v1/place", map[string]any{"player": 0, "cells": []uint8{1, 1, 0, 0}})
	req.Equal(400, resp.StatusCode)

	// GET on an action endpoint
	getResp, err := http.Get(ts.URL + "/v1/fire")
	req.NoError(err)
	getResp.Body.Close()
	req.Equal(405, getResp.StatusCode)
}
