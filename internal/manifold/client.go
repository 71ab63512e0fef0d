// Package manifold implements the Manifold Markets REST client.
//
// The client (Client) covers the read and write endpoints the assistant uses:
//   - ListGroups:    GET  /groups
//   - GroupMarkets:  GET  /group/by-id/{id}/markets
//   - ListMarkets:   GET  /markets?limit=&before=
//   - MarketBySlug:  GET  /slug/{slug}
//   - Market:        GET  /market/{id}
//   - Me:            GET  /me       (authenticated)
//   - PlaceBet:      POST /bet      (authenticated)
//   - PostComment:   POST /comment  (authenticated)
//
// Every request is rate-limited via per-category TokenBuckets. There is no
// retry: a non-200 response becomes an *APIError and the caller decides.
package manifold

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"gpt-manifold/internal/config"
	"gpt-manifold/pkg/types"
)

// APIError is returned for any non-200 response.
type APIError struct {
	Op         string // e.g. "get market"
	StatusCode int
	Message    string // "message" field of the JSON error body, if any
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

// Client is the Manifold REST API client.
// It wraps a resty HTTP client with rate limiting and API-key auth.
type Client struct {
	http   *resty.Client // HTTP client with base URL, no retry
	apiKey string        // sent as "Authorization: Key <apiKey>"
	rl     *RateLimiter
	dryRun bool // when true, PlaceBet and PostComment skip the HTTP call
	logger *slog.Logger
}

// NewClient creates a REST client for the configured base URL.
func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	timeout := cfg.Manifold.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Manifold.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		apiKey: cfg.Manifold.APIKey,
		rl:     NewRateLimiter(),
		dryRun: cfg.DryRun,
		logger: logger.With("component", "manifold"),
	}
}

func (c *Client) authHeader() string {
	return "Key " + c.apiKey
}

// check converts a non-200 response into an *APIError.
func check(op string, resp *resty.Response) error {
	if resp.StatusCode() == http.StatusOK {
		return nil
	}
	apiErr := &APIError{
		Op:         op,
		StatusCode: resp.StatusCode(),
		Body:       strings.TrimSpace(resp.String()),
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		apiErr.Message = body.Message
	}
	return apiErr
}

// ListGroups fetches every group.
func (c *Client) ListGroups(ctx context.Context) ([]types.Group, error) {
	if err := c.rl.Read.Wait(ctx); err != nil {
		return nil, err
	}

	var groups []types.Group
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&groups).
		Get("/groups")
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if err := check("list groups", resp); err != nil {
		return nil, err
	}
	return groups, nil
}

// GroupMarkets fetches the markets of a single group.
func (c *Client) GroupMarkets(ctx context.Context, groupID string) ([]types.Market, error) {
	if err := c.rl.Read.Wait(ctx); err != nil {
		return nil, err
	}

	var markets []types.Market
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", groupID).
		SetResult(&markets).
		Get("/group/by-id/{id}/markets")
	if err != nil {
		return nil, fmt.Errorf("list group markets: %w", err)
	}
	if err := check("list group markets", resp); err != nil {
		return nil, err
	}
	return markets, nil
}

// ListMarkets fetches one page of markets, newest first. before is the id of
// the last market of the previous page; empty for the first page.
func (c *Client) ListMarkets(ctx context.Context, limit int, before string) ([]types.Market, error) {
	if err := c.rl.Read.Wait(ctx); err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit))
	if before != "" {
		req.SetQueryParam("before", before)
	}

	var markets []types.Market
	resp, err := req.SetResult(&markets).Get("/markets")
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	if err := check("list markets", resp); err != nil {
		return nil, err
	}
	return markets, nil
}

// Market fetches a single market by id.
func (c *Client) Market(ctx context.Context, marketID string) (*types.Market, error) {
	if err := c.rl.Read.Wait(ctx); err != nil {
		return nil, err
	}

	var market types.Market
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", marketID).
		SetResult(&market).
		Get("/market/{id}")
	if err != nil {
		return nil, fmt.Errorf("get market: %w", err)
	}
	if err := check("get market", resp); err != nil {
		return nil, err
	}
	return &market, nil
}

// MarketBySlug fetches a single market by its URL slug.
func (c *Client) MarketBySlug(ctx context.Context, slug string) (*types.Market, error) {
	if err := c.rl.Read.Wait(ctx); err != nil {
		return nil, err
	}

	var market types.Market
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("slug", slug).
		SetResult(&market).
		Get("/slug/{slug}")
	if err != nil {
		return nil, fmt.Errorf("get market by slug: %w", err)
	}
	if err := check("get market by slug", resp); err != nil {
		return nil, err
	}
	return &market, nil
}

var trailingSegment = regexp.MustCompile(`([^/]+)$`)

// SlugFromURL returns the last path segment of a market URL, e.g.
// https://manifold.markets/alice/will-it-rain -> will-it-rain.
func SlugFromURL(marketURL string) (string, error) {
	u := strings.TrimSpace(marketURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	m := trailingSegment.FindStringSubmatch(u)
	if m == nil {
		return "", fmt.Errorf("invalid market URL: %q", marketURL)
	}
	return m[1], nil
}

// MarketByURL resolves a market page URL to its market.
func (c *Client) MarketByURL(ctx context.Context, marketURL string) (*types.Market, error) {
	slug, err := SlugFromURL(marketURL)
	if err != nil {
		return nil, err
	}
	return c.MarketBySlug(ctx, slug)
}

// Me fetches the authenticated user's profile (balance).
func (c *Client) Me(ctx context.Context) (*types.User, error) {
	if err := c.rl.Read.Wait(ctx); err != nil {
		return nil, err
	}

	var user types.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", c.authHeader()).
		SetResult(&user).
		Get("/me")
	if err != nil {
		return nil, fmt.Errorf("get own profile: %w", err)
	}
	if err := check("get own profile", resp); err != nil {
		return nil, err
	}
	return &user, nil
}

// PlaceBet places a market order on a binary market.
func (c *Client) PlaceBet(ctx context.Context, bet types.BetRequest) (*types.Bet, error) {
	if bet.Amount <= 0 {
		return nil, fmt.Errorf("place bet: amount must be > 0, got %d", bet.Amount)
	}
	if c.dryRun {
		c.logger.Info("DRY-RUN: would place bet",
			"market", bet.ContractID, "outcome", bet.Outcome, "amount", bet.Amount)
		return &types.Bet{BetID: "dry-run", Amount: float64(bet.Amount), Outcome: string(bet.Outcome)}, nil
	}
	if err := c.rl.Write.Wait(ctx); err != nil {
		return nil, err
	}

	var result types.Bet
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", c.authHeader()).
		SetBody(bet).
		SetResult(&result).
		Post("/bet")
	if err != nil {
		return nil, fmt.Errorf("place bet: %w", err)
	}
	if err := check("place bet", resp); err != nil {
		return nil, err
	}

	c.logger.Info("bet placed",
		"market", bet.ContractID, "outcome", bet.Outcome, "amount", bet.Amount, "bet_id", result.BetID)
	return &result, nil
}

// PostComment posts a markdown comment on a market.
func (c *Client) PostComment(ctx context.Context, comment types.CommentRequest) (*types.Comment, error) {
	if c.dryRun {
		c.logger.Info("DRY-RUN: would post comment",
			"market", comment.ContractID, "length", len(comment.Markdown))
		return &types.Comment{ID: "dry-run", ContractID: comment.ContractID}, nil
	}
	if err := c.rl.Write.Wait(ctx); err != nil {
		return nil, err
	}

	var result types.Comment
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", c.authHeader()).
		SetBody(comment).
		SetResult(&result).
		Post("/comment")
	if err != nil {
		return nil, fmt.Errorf("post comment: %w", err)
	}
	if err := check("post comment", resp); err != nil {
		return nil, err
	}

	c.logger.Info("comment posted", "market", comment.ContractID)
	return &result, nil
}
