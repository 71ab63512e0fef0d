package manifold

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"gpt-manifold/internal/config"
	"gpt-manifold/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Config{Manifold: config.ManifoldConfig{BaseURL: srv.URL, APIKey: "secret"}}
	return NewClient(cfg, testLogger())
}

func TestListMarketsPagination(t *testing.T) {
	t.Parallel()

	var gotQuery atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("path = %q, want /markets", r.URL.Path)
		}
		gotQuery.Store(r.URL.Query())
		_, _ = w.Write([]byte(`[{"id":"m1","question":"Q1","creatorName":"alice","probability":0.5}]`))
	})

	markets, err := c.ListMarkets(context.Background(), 100, "last-id")
	if err != nil {
		t.Fatalf("ListMarkets: %v", err)
	}
	if len(markets) != 1 || markets[0].ID != "m1" || markets[0].Prob() != 0.5 {
		t.Fatalf("unexpected markets: %+v", markets)
	}

	q := gotQuery.Load().(url.Values)
	if q.Get("limit") != "100" {
		t.Errorf("limit = %v, want 100", q["limit"])
	}
	if q.Get("before") != "last-id" {
		t.Errorf("before = %v, want last-id", q["before"])
	}
}

func TestListMarketsFirstPageOmitsBefore(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["before"]; ok {
			t.Errorf("first page should not send before, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := c.ListMarkets(context.Background(), 10, ""); err != nil {
		t.Fatalf("ListMarkets: %v", err)
	}
}

func TestNon200ReturnsAPIError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Contract not found"}`))
	})

	calls := map[string]func() error{
		"groups":        func() error { _, err := c.ListGroups(context.Background()); return err },
		"group markets": func() error { _, err := c.GroupMarkets(context.Background(), "g1"); return err },
		"markets":       func() error { _, err := c.ListMarkets(context.Background(), 1, ""); return err },
		"market":        func() error { _, err := c.Market(context.Background(), "m1"); return err },
		"slug":          func() error { _, err := c.MarketBySlug(context.Background(), "s"); return err },
		"me":            func() error { _, err := c.Me(context.Background()); return err },
		"bet": func() error {
			_, err := c.PlaceBet(context.Background(), types.BetRequest{ContractID: "m1", Amount: 5, Outcome: types.YES})
			return err
		},
		"comment": func() error {
			_, err := c.PostComment(context.Background(), types.CommentRequest{ContractID: "m1", Markdown: "hi"})
			return err
		},
	}

	for name, call := range calls {
		err := call()
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Errorf("%s: expected *APIError, got %v", name, err)
			continue
		}
		if apiErr.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", name, apiErr.StatusCode)
		}
		if !strings.Contains(err.Error(), "404") {
			t.Errorf("%s: error %q should embed the status code", name, err)
		}
		if apiErr.Message != "Contract not found" {
			t.Errorf("%s: message = %q", name, apiErr.Message)
		}
	}
}

func TestAPIErrorWithoutJSONBody(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := c.ListGroups(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status 502: upstream down") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthenticatedCallsSendKeyHeader(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Key secret" {
			t.Errorf("Authorization = %q, want %q", got, "Key secret")
		}
		_, _ = w.Write([]byte(`{"id":"u1","username":"bob","balance":1234.7}`))
	})

	user, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if user.Balance != 1234.7 {
		t.Errorf("Balance = %v, want 1234.7", user.Balance)
	}
}

func TestPlaceBetBody(t *testing.T) {
	t.Parallel()

	var got types.BetRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bet" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"betId":"b1","amount":20,"outcome":"NO"}`))
	})

	bet, err := c.PlaceBet(context.Background(), types.BetRequest{ContractID: "m1", Amount: 20, Outcome: types.NO})
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if bet.BetID != "b1" {
		t.Errorf("BetID = %q, want b1", bet.BetID)
	}
	if got.ContractID != "m1" || got.Amount != 20 || got.Outcome != types.NO {
		t.Errorf("unexpected body: %+v", got)
	}
}

func TestPlaceBetRejectsZeroAmount(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a zero bet")
	})

	if _, err := c.PlaceBet(context.Background(), types.BetRequest{ContractID: "m1", Outcome: types.YES}); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestGroupMarketsPath(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/group/by-id/g-42/markets" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":"m1","isResolved":true}]`))
	})

	markets, err := c.GroupMarkets(context.Background(), "g-42")
	if err != nil {
		t.Fatalf("GroupMarkets: %v", err)
	}
	if len(markets) != 1 || !markets[0].IsResolved || markets[0].HasProbability() {
		t.Errorf("unexpected markets: %+v", markets)
	}
}

func TestMarketByURL(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/slug/will-it-rain" {
			t.Errorf("path = %q, want /slug/will-it-rain", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"m9","slug":"will-it-rain","question":"Will it rain?"}`))
	})

	m, err := c.MarketByURL(context.Background(), "https://manifold.markets/alice/will-it-rain")
	if err != nil {
		t.Fatalf("MarketByURL: %v", err)
	}
	if m.ID != "m9" {
		t.Errorf("ID = %q, want m9", m.ID)
	}
}

func TestSlugFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://manifold.markets/alice/will-it-rain", "will-it-rain", false},
		{"  https://manifold.markets/bob/q-1?r=abc  ", "q-1", false},
		{"will-it-rain", "will-it-rain", false},
		{"https://manifold.markets/alice/", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := SlugFromURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("SlugFromURL(%q) err = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SlugFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func newDryRunClient() *Client {
	return &Client{
		dryRun: true,
		rl:     NewRateLimiter(),
		logger: testLogger(),
	}
}

func TestDryRunPlaceBet(t *testing.T) {
	t.Parallel()
	c := newDryRunClient()

	bet, err := c.PlaceBet(context.Background(), types.BetRequest{ContractID: "m1", Amount: 10, Outcome: types.YES})
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if bet.BetID != "dry-run" || bet.Amount != 10 {
		t.Errorf("unexpected dry-run bet: %+v", bet)
	}
}

func TestDryRunPostComment(t *testing.T) {
	t.Parallel()
	c := newDryRunClient()

	comment, err := c.PostComment(context.Background(), types.CommentRequest{ContractID: "m1", Markdown: "x"})
	if err != nil {
		t.Fatalf("PostComment: %v", err)
	}
	if comment.ContractID != "m1" {
		t.Errorf("ContractID = %q, want m1", comment.ContractID)
	}
}

func TestNewClientDryRunFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Config{DryRun: true, Manifold: config.ManifoldConfig{BaseURL: "http://localhost"}}
	c := NewClient(cfg, testLogger())
	if !c.dryRun {
		t.Error("client.dryRun should be true when config.DryRun is true")
	}
}
