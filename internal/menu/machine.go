// Package menu is the interactive navigation loop: model and ceiling choice,
// market browsing, prediction confirmation and the autonomous modes.
//
// Each screen is a State with a handler returning the next State. Run checks
// every hop against the transition table, so going back never nests calls.
package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gpt-manifold/internal/audit"
	"gpt-manifold/internal/config"
	"gpt-manifold/internal/engine"
	"gpt-manifold/internal/market"
	"gpt-manifold/internal/prompts"
	"gpt-manifold/pkg/types"
)

const (
	backToModes  = "Return to mode selection <-"
	backToGroups = "Return to Groups <-"
	nextPage     = "Next page ->"
	yes          = "Yes"
	no           = "No"
)

var (
	modeItems = []string{"Recent Markets", "Market Groups", "Market URL", "Autonomous Bet", "Exit"}
	autoItems = []string{
		"Yes, but ask me for confirmation before betting.",
		"Yes, bet automatically but don't post a comment.",
		"Yes, bet automatically and post a comment, too!",
		"No, take me back.",
	}
	yesNo = []string{yes, no}
)

// Machine holds the session and the navigation context between screens.
type Machine struct {
	cfg    config.Config
	engine *engine.Engine
	ui     Prompter
	logger *slog.Logger

	session engine.Session

	page       market.Page
	markets    []types.Market // current list screen
	groups     []types.Group
	group      types.Group
	marketID   string
	prediction *engine.Prediction
	auto       AutoMode
	betResult  string
	commentMsg string
}

// New creates a machine. Nothing happens until Run.
func New(cfg config.Config, eng *engine.Engine, ui Prompter, logger *slog.Logger) *Machine {
	return &Machine{
		cfg:    cfg,
		engine: eng,
		ui:     ui,
		logger: logger.With("component", "menu"),
	}
}

// Session returns the current session state.
func (m *Machine) Session() engine.Session {
	return m.session
}

// Run drives the loop from model selection until Exit. An operator abort ends
// it without error; any other failure ends it with one.
func (m *Machine) Run(ctx context.Context) error {
	defer m.closeAudit()

	state := SelectModel
	for state != Exit {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := m.handle(ctx, state)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		if !Allowed(state, next) {
			return fmt.Errorf("menu: transition %s -> %s not allowed", state, next)
		}
		m.logger.Debug("transition", "from", state, "to", next)
		state = next
	}
	return nil
}

func (m *Machine) handle(ctx context.Context, s State) (State, error) {
	switch s {
	case SelectModel:
		return m.selectModel()
	case SelectMaxBet:
		return m.selectMaxBet()
	case SelectMode:
		return m.selectMode()
	case RecentMarkets:
		return m.recentMarkets(ctx)
	case Groups:
		return m.listGroups(ctx)
	case GroupMarkets:
		return m.groupMarkets(ctx)
	case MarketURL:
		return m.marketURL(ctx)
	case MarketDetail:
		return m.marketDetail(ctx)
	case Predict:
		return m.predict(ctx)
	case ConfirmAction:
		return m.confirmAction(ctx)
	case OfferComment:
		return m.offerComment(ctx)
	case OfferContinue:
		return m.offerContinue()
	case AutoMenu:
		return m.autoMenu()
	case AutoRun:
		return m.autoRun(ctx)
	default:
		return Exit, fmt.Errorf("menu: no handler for %s", s)
	}
}

func (m *Machine) selectModel() (State, error) {
	models := m.cfg.OpenAI.Models
	i, err := m.ui.Select("Select model to use:", models)
	if err != nil {
		return Exit, err
	}
	m.session.Model = models[i]
	return SelectMaxBet, nil
}

func (m *Machine) selectMaxBet() (State, error) {
	options := m.cfg.Session.MaxBetOptions
	items := make([]string, len(options))
	for i, v := range options {
		items[i] = strconv.Itoa(v)
	}
	i, err := m.ui.Select("Select maximum bet amount:", items)
	if err != nil {
		return Exit, err
	}
	m.session.MaxBet = options[i]
	return SelectMode, nil
}

func (m *Machine) selectMode() (State, error) {
	m.closeAudit()
	m.auto = AutoOff

	i, err := m.ui.Select("Select navigation mode:", modeItems)
	if err != nil {
		return Exit, err
	}
	switch i {
	case 0:
		m.page = market.Page{}
		return RecentMarkets, nil
	case 1:
		return Groups, nil
	case 2:
		return MarketURL, nil
	case 3:
		return AutoMenu, nil
	default:
		return Exit, nil
	}
}

func (m *Machine) recentMarkets(ctx context.Context) (State, error) {
	if m.page.First() {
		if err := m.refreshBalance(ctx); err != nil {
			return Exit, err
		}
	}
	m.ui.Status("Retrieving markets...")
	markets, err := m.engine.Client().ListMarkets(ctx, m.cfg.Session.PageLimit, m.page.Before)
	if err != nil {
		return Exit, err
	}
	m.markets = markets

	items := make([]string, 0, len(markets)+2)
	items = append(items, backToModes)
	for i, mk := range markets {
		items = append(items, market.MarketLabel(m.page.BaseIndex+i, mk))
	}
	if len(markets) > 0 {
		items = append(items, nextPage)
	}

	i, err := m.ui.Select("Select market you wish to view", items)
	if err != nil {
		return Exit, err
	}
	switch {
	case i == 0:
		return SelectMode, nil
	case i == len(markets)+1:
		m.page = m.page.Next(markets)
		return RecentMarkets, nil
	default:
		m.marketID = markets[i-1].ID
		return MarketDetail, nil
	}
}

func (m *Machine) listGroups(ctx context.Context) (State, error) {
	if err := m.refreshBalance(ctx); err != nil {
		return Exit, err
	}
	m.ui.Status("Retrieving groups...")
	groups, err := m.engine.Client().ListGroups(ctx)
	if err != nil {
		return Exit, err
	}
	m.groups = groups

	items := make([]string, 0, len(groups)+1)
	items = append(items, backToModes)
	for i, g := range groups {
		items = append(items, market.GroupLabel(i, g))
	}

	i, err := m.ui.Select("Select group you wish to view", items)
	if err != nil {
		return Exit, err
	}
	if i == 0 {
		return SelectMode, nil
	}
	m.group = groups[i-1]
	return GroupMarkets, nil
}

func (m *Machine) groupMarkets(ctx context.Context) (State, error) {
	m.ui.Status("Retrieving markets for group...")
	markets, err := m.engine.Client().GroupMarkets(ctx, m.group.ID)
	if err != nil {
		return Exit, err
	}
	m.markets = markets

	items := make([]string, 0, len(markets)+1)
	items = append(items, backToGroups)
	for i, mk := range markets {
		items = append(items, market.MarketLabel(i, mk))
	}

	i, err := m.ui.Select("Select market you wish to view", items)
	if err != nil {
		return Exit, err
	}
	if i == 0 {
		return Groups, nil
	}
	m.marketID = markets[i-1].ID
	return MarketDetail, nil
}

func (m *Machine) marketURL(ctx context.Context) (State, error) {
	url, err := m.ui.Input("Enter the URL of the market you wish to view")
	if err != nil {
		return Exit, err
	}
	m.ui.Status("Retrieving market data...")
	mk, err := m.engine.Client().MarketByURL(ctx, url)
	if err != nil {
		return Exit, err
	}
	m.marketID = mk.ID
	return MarketDetail, nil
}

func (m *Machine) marketDetail(ctx context.Context) (State, error) {
	m.ui.Status("Retrieving market data...")
	mk, err := m.engine.Client().Market(ctx, m.marketID)
	if err != nil {
		return Exit, err
	}

	probability := "n/a"
	if mk.HasProbability() {
		probability = prompts.FormatProbability(mk.Prob())
	}
	label := prompts.Wrap(fmt.Sprintf(
		"Question: %s\n\nDescription: %s\n\nCurrent probability: %s\n\n - Do you want GPT-Manifold to make a prediction?",
		mk.Question, mk.TextDescription, probability))

	i, err := m.ui.Select(label, yesNo)
	if err != nil {
		return Exit, err
	}
	if i == 0 {
		return Predict, nil
	}
	return SelectMode, nil
}

func (m *Machine) predict(ctx context.Context) (State, error) {
	m.ui.Status(fmt.Sprintf("Getting answer from %s...", m.session.Model))
	p, err := m.engine.Predict(ctx, &m.session, m.marketID)
	if err != nil {
		return Exit, err
	}
	m.prediction = p

	if !m.auto.betsAutomatically() {
		return ConfirmAction, nil
	}

	m.ui.Status("Posting bet...")
	if _, err := m.engine.Execute(ctx, &m.session, p); err != nil {
		return Exit, err
	}
	if m.auto == AutoBetComment {
		m.ui.Status("Posting comment...")
		if err := m.engine.Comment(ctx, &m.session, p); err != nil {
			return Exit, err
		}
	}
	return Exit, nil
}

func (m *Machine) confirmAction(ctx context.Context) (State, error) {
	p := m.prediction
	action := p.Verdict.Action

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\nThe chosen action is %s with a value of %d\n",
		p.Market.Question, p.Answer, action.Kind, action.Amount)
	for _, w := range p.Verdict.Warnings {
		b.WriteString(w)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Your current balance is %d.\nDo you want to execute that action?", int(m.session.Balance))

	i, err := m.ui.Select(prompts.Wrap(b.String()), yesNo)
	if err != nil {
		return Exit, err
	}
	if i != 0 {
		return SelectMode, nil
	}

	if action.IsBet() {
		m.ui.Status("Posting bet...")
	}
	result, err := m.engine.Execute(ctx, &m.session, p)
	if err != nil {
		return Exit, err
	}
	m.betResult = result
	return OfferComment, nil
}

func (m *Machine) offerComment(ctx context.Context) (State, error) {
	label := prompts.Wrap(m.betResult +
		"Would you like to post GPT-Manifold's reasoning as a comment? Please don't spam the markets!")
	i, err := m.ui.Select(label, yesNo)
	if err != nil {
		return Exit, err
	}

	m.commentMsg = ""
	if i == 0 {
		m.ui.Status("Posting comment...")
		if err := m.engine.Comment(ctx, &m.session, m.prediction); err != nil {
			return Exit, err
		}
		m.commentMsg = "Comment successfully posted!"
	}
	return OfferContinue, nil
}

func (m *Machine) offerContinue() (State, error) {
	i, err := m.ui.Select(prompts.Wrap(m.commentMsg+" Would you like to view other markets?"), yesNo)
	if err != nil {
		return Exit, err
	}
	if i == 0 {
		return SelectMode, nil
	}
	return Exit, nil
}

func (m *Machine) autoMenu() (State, error) {
	info := prompts.Wrap(prompts.AutoBetInfo(m.session.Model, m.cfg.Session.GroupPoolSize))
	i, err := m.ui.Select(info, autoItems)
	if err != nil {
		return Exit, err
	}
	switch i {
	case 0:
		m.auto = AutoConfirm
	case 1:
		m.auto = AutoBet
	case 2:
		m.auto = AutoBetComment
	default:
		return SelectMode, nil
	}
	return AutoRun, nil
}

func (m *Machine) autoRun(ctx context.Context) (State, error) {
	log, err := audit.NewSession(m.cfg.Session.LogDir, nil)
	if err != nil {
		return Exit, err
	}
	m.session.Audit = log
	m.logger.Info("autonomous run started", "session", log.ID, "log", log.Path, "mode", m.auto)

	if err := m.refreshBalance(ctx); err != nil {
		return Exit, err
	}
	m.ui.Status(fmt.Sprintf("Getting answer from %s...", m.session.Model))
	g, err := m.engine.PickGroup(ctx, &m.session)
	if err != nil {
		return Exit, err
	}
	m.ui.Status(fmt.Sprintf("Getting answer from %s...", m.session.Model))
	mk, err := m.engine.PickMarket(ctx, &m.session, g)
	if err != nil {
		return Exit, err
	}
	m.marketID = mk.ID
	return Predict, nil
}

func (m *Machine) refreshBalance(ctx context.Context) error {
	m.ui.Status("Updating current balance...")
	return m.engine.RefreshBalance(ctx, &m.session)
}

func (m *Machine) closeAudit() {
	if m.session.Audit == nil {
		return
	}
	if err := m.session.Audit.Close(); err != nil {
		m.logger.Warn("closing audit log", "error", err)
	}
	m.session.Audit = nil
}
