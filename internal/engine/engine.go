// Package engine runs the prediction pipeline on top of the Manifold client
// and the language model:
//
//  1. Predict refetches a market, builds the prompts and asks the model.
//  2. The reply's last action tag is parsed and checked by the risk guard.
//  3. Execute places the bet, Comment posts the reasoning.
//
// PickGroup and PickMarket let the model choose what to look at in
// autonomous mode. Every step is written to the session's audit log.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"gpt-manifold/internal/audit"
	"gpt-manifold/internal/config"
	"gpt-manifold/internal/llm"
	"gpt-manifold/internal/manifold"
	"gpt-manifold/internal/market"
	"gpt-manifold/internal/prompts"
	"gpt-manifold/internal/risk"
	"gpt-manifold/internal/tags"
	"gpt-manifold/pkg/types"
)

const (
	BetPlaced   = "Bet successfully placed! "
	NoBetPlaced = "No bet placed. "
)

// Session is the state of one interactive run: chosen model and ceiling, the
// last known balance, and the audit log (nil outside autonomous mode).
type Session struct {
	Model   string
	MaxBet  int
	Balance float64
	Audit   *audit.Session
}

// Prediction is one model evaluation of a market.
type Prediction struct {
	Market  types.Market
	System  string
	User    string
	Answer  string
	Action  types.Action // as parsed from the reply
	Verdict risk.Verdict // what Execute will do
}

// Engine ties the platform client, the model and the risk guard together.
type Engine struct {
	cfg    config.Config
	client *manifold.Client
	llm    llm.Completer
	guard  *risk.Guard
	rng    *rand.Rand
	now    func() time.Time
	logger *slog.Logger
}

// New creates an engine.
func New(cfg config.Config, client *manifold.Client, completer llm.Completer, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		client: client,
		llm:    completer,
		guard:  risk.NewGuard(cfg.Risk, logger),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:    time.Now,
		logger: logger.With("component", "engine"),
	}
}

// Client exposes the platform client for browsing.
func (e *Engine) Client() *manifold.Client {
	return e.client
}

// RefreshBalance reloads the session balance from /me.
func (e *Engine) RefreshBalance(ctx context.Context, s *Session) error {
	me, err := e.client.Me(ctx)
	if err != nil {
		return fmt.Errorf("refresh balance: %w", err)
	}
	s.Balance = me.Balance
	e.logger.Debug("balance refreshed", "user", me.Username, "balance", me.Balance)
	return nil
}

// Predict asks the model to evaluate marketID. The market is refetched so the
// prompt carries the current probability.
func (e *Engine) Predict(ctx context.Context, s *Session, marketID string) (*Prediction, error) {
	m, err := e.client.Market(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if !m.HasProbability() {
		return nil, fmt.Errorf("predict: market %s has no probability (%s)", m.ID, m.OutcomeType)
	}

	system := prompts.BetSystemPrompt(prompts.Character(s.Model), e.now(), s.MaxBet)
	user := prompts.BetUserPrompt(m.Question, m.TextDescription,
		prompts.FormatProbability(m.Prob()), int(s.Balance))
	e.audit(s, audit.TagBetPrompt, system)
	e.audit(s, audit.TagBetInfo, user)

	answer, err := e.llm.Complete(ctx, s.Model, system, user)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	e.audit(s, audit.TagPrediction, answer)

	action := tags.ParseAction(answer)
	p := &Prediction{
		Market:  *m,
		System:  system,
		User:    user,
		Answer:  answer,
		Action:  action,
		Verdict: e.guard.Check(action, s.Balance, s.MaxBet),
	}
	e.logger.Info("prediction",
		"market", m.ID,
		"model", s.Model,
		"action", action.Kind,
		"amount", action.Amount,
	)
	return p, nil
}

// Execute places the bet the prediction calls for, if any, and returns the
// line shown to the operator.
func (e *Engine) Execute(ctx context.Context, s *Session, p *Prediction) (string, error) {
	action := p.Verdict.Action
	if !action.IsBet() {
		return NoBetPlaced, nil
	}

	bet, err := e.client.PlaceBet(ctx, types.BetRequest{
		ContractID: p.Market.ID,
		Amount:     action.Amount,
		Outcome:    action.Outcome(),
	})
	if err != nil {
		return "", fmt.Errorf("execute: %w", err)
	}
	s.Balance -= float64(action.Amount)
	e.audit(s, audit.TagBet, fmt.Sprintf("Bet placed: %s\n\n%s - %d", p.Market.ID, action.Outcome(), action.Amount))
	e.logger.Debug("bet executed", "market", p.Market.ID, "bet_id", bet.BetID)
	return BetPlaced, nil
}

// Comment posts the model's reasoning on the market with a disclaimer.
func (e *Engine) Comment(ctx context.Context, s *Session, p *Prediction) error {
	body := prompts.Disclaimer(s.Model, p.Answer)
	if _, err := e.client.PostComment(ctx, types.CommentRequest{
		ContractID: p.Market.ID,
		Markdown:   body,
	}); err != nil {
		return fmt.Errorf("comment: %w", err)
	}
	e.audit(s, audit.TagComment, fmt.Sprintf("Comment posted: %s\n\n%s", p.Market.ID, p.Answer))
	return nil
}

// PickGroup shows the model a random sample of sizeable groups and returns
// the one it names.
func (e *Engine) PickGroup(ctx context.Context, s *Session) (types.Group, error) {
	groups, err := e.client.ListGroups(ctx)
	if err != nil {
		return types.Group{}, fmt.Errorf("pick group: %w", err)
	}
	sampled := market.SampleGroups(groups, e.cfg.Session.GroupPoolSize, e.rng)
	eligible := market.EligibleGroups(sampled, e.cfg.Session.MinGroupMarkets)
	list := market.GroupList(eligible)

	system := prompts.GroupSystemPrompt(prompts.Character(s.Model), e.now())
	e.audit(s, audit.TagGroupPrompt, system)
	e.audit(s, audit.TagGroupList, list)

	answer, err := e.llm.Complete(ctx, s.Model, system, list)
	if err != nil {
		return types.Group{}, fmt.Errorf("pick group: %w", err)
	}
	e.audit(s, audit.TagSelectedGroup, answer)

	g, err := market.MatchGroup(answer, eligible)
	if err != nil {
		return types.Group{}, fmt.Errorf("%s was unable to pick a valid group: %w", s.Model, err)
	}
	e.logger.Info("group picked", "group", g.Name, "candidates", len(eligible))
	return g, nil
}

// PickMarket shows the model open markets of group and returns the one it
// names.
func (e *Engine) PickMarket(ctx context.Context, s *Session, group types.Group) (types.Market, error) {
	markets, err := e.client.GroupMarkets(ctx, group.ID)
	if err != nil {
		return types.Market{}, fmt.Errorf("pick market: %w", err)
	}
	sampled := market.SampleMarkets(markets, e.cfg.Session.MarketPoolSize, e.rng)
	open := market.OpenMarkets(sampled)
	list := market.QuestionList(open)

	system := prompts.MarketSystemPrompt(prompts.Character(s.Model), e.now())
	e.audit(s, audit.TagMarketPrompt, system)
	e.audit(s, audit.TagMarketList, list)

	answer, err := e.llm.Complete(ctx, s.Model, system, list)
	if err != nil {
		return types.Market{}, fmt.Errorf("pick market: %w", err)
	}
	e.audit(s, audit.TagSelectedMarket, answer)

	m, err := market.MatchMarket(answer, open)
	if err != nil {
		return types.Market{}, fmt.Errorf("%s was unable to pick a valid market: %w", s.Model, err)
	}
	e.logger.Info("market picked", "market", m.ID, "candidates", len(open))
	return m, nil
}

// audit writes to the session log. A failed write is logged, not returned.
func (e *Engine) audit(s *Session, tag, message string) {
	if err := s.Audit.Write(tag, message); err != nil {
		e.logger.Warn("audit write failed", "tag", tag, "error", err)
	}
}
