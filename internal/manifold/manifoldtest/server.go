// Package manifoldtest provides an in-memory Manifold API for tests.
package manifoldtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"gpt-manifold/pkg/types"
)

// Server fakes the subset of the Manifold API the assistant uses. Fields may
// be set before the first request; recorded writes are read with Bets and
// Comments.
type Server struct {
	URL string

	mu           sync.Mutex
	Markets      []types.Market            // served by /markets, /market/{id}, /slug/{slug}
	Groups       []types.Group             // served by /groups
	GroupMarkets map[string][]types.Market // served by /group/by-id/{id}/markets
	User         types.User                // served by /me
	Fail         map[string]int            // path prefix -> forced status code

	bets        []types.BetRequest
	comments    []types.CommentRequest
	marketPages []string // before values seen on /markets
}

// NewServer starts a fake and stops it when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		GroupMarkets: map[string][]types.Market{},
		Fail:         map[string]int{},
		User:         types.User{ID: "u1", Username: "tester", Balance: 1000},
	}
	srv := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

// Bets returns the bet requests received so far.
func (s *Server) Bets() []types.BetRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.BetRequest(nil), s.bets...)
}

// Comments returns the comment requests received so far.
func (s *Server) Comments() []types.CommentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.CommentRequest(nil), s.comments...)
}

// MarketPages returns the before cursor of every /markets request.
func (s *Server) MarketPages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.marketPages...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	for prefix, code := range s.Fail {
		if strings.HasPrefix(path, prefix) {
			writeJSON(w, code, map[string]string{"message": "forced failure"})
			return
		}
	}

	switch {
	case path == "/markets":
		before := r.URL.Query().Get("before")
		s.marketPages = append(s.marketPages, before)
		page := s.pageLocked(before)
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit < len(page) {
			page = page[:limit]
		}
		writeJSON(w, http.StatusOK, page)
	case path == "/groups":
		writeJSON(w, http.StatusOK, s.Groups)
	case strings.HasPrefix(path, "/group/by-id/") && strings.HasSuffix(path, "/markets"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/group/by-id/"), "/markets")
		writeJSON(w, http.StatusOK, s.GroupMarkets[id])
	case strings.HasPrefix(path, "/market/"):
		s.findLocked(w, func(m types.Market) bool { return m.ID == strings.TrimPrefix(path, "/market/") })
	case strings.HasPrefix(path, "/slug/"):
		s.findLocked(w, func(m types.Market) bool { return m.Slug == strings.TrimPrefix(path, "/slug/") })
	case path == "/me":
		writeJSON(w, http.StatusOK, s.User)
	case path == "/bet" && r.Method == http.MethodPost:
		var req types.BetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		s.bets = append(s.bets, req)
		writeJSON(w, http.StatusOK, types.Bet{BetID: "b1", Amount: float64(req.Amount), Outcome: string(req.Outcome)})
	case path == "/comment" && r.Method == http.MethodPost:
		var req types.CommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		s.comments = append(s.comments, req)
		writeJSON(w, http.StatusOK, types.Comment{ID: "c1", ContractID: req.ContractID})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

// pageLocked returns the markets after the one with id before.
func (s *Server) pageLocked(before string) []types.Market {
	if before == "" {
		return s.Markets
	}
	for i, m := range s.Markets {
		if m.ID == before {
			return s.Markets[i+1:]
		}
	}
	return []types.Market{}
}

func (s *Server) findLocked(w http.ResponseWriter, match func(types.Market) bool) {
	for _, m := range s.Markets {
		if match(m) {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	for _, ms := range s.GroupMarkets {
		for _, m := range ms {
			if match(m) {
				writeJSON(w, http.StatusOK, m)
				return
			}
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "market not found"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
