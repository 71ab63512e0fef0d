// Package types defines shared data structures used across all packages.
//
// This package is the common vocabulary for the assistant: Manifold markets,
// groups, bets and comments, plus the action parsed out of a model reply. It has
// no dependencies on internal packages, so it can be imported by any layer.
package types

import "strings"

// ————————————————————————————————————————————————————————————————————————
// Core enums
// ————————————————————————————————————————————————————————————————————————

// Outcome is the side of a binary market a bet is placed on.
type Outcome string

const (
	YES Outcome = "YES"
	NO  Outcome = "NO"
)

// ActionKind is the recommendation a model reply resolves to.
type ActionKind string

const (
	ActionYes     ActionKind = "YES"
	ActionNo      ActionKind = "NO"
	ActionAbstain ActionKind = "ABSTAIN"
)

// ParseActionKind maps a tag name to an ActionKind. Anything that is not
// YES or NO (case-insensitive) is treated as an abstention.
func ParseActionKind(name string) ActionKind {
	switch ActionKind(strings.ToUpper(strings.TrimSpace(name))) {
	case ActionYes:
		return ActionYes
	case ActionNo:
		return ActionNo
	default:
		return ActionAbstain
	}
}

// ————————————————————————————————————————————————————————————————————————
// Platform data
// ————————————————————————————————————————————————————————————————————————

// Market is a Manifold contract as returned by /markets, /market/{id} and
// /slug/{slug}. Values are display data only; they are never mutated locally.
type Market struct {
	ID              string   `json:"id"`
	Slug            string   `json:"slug"`
	URL             string   `json:"url"`
	Question        string   `json:"question"`
	TextDescription string   `json:"textDescription"`
	CreatorName     string   `json:"creatorName"`
	OutcomeType     string   `json:"outcomeType"`
	Probability     *float64 `json:"probability,omitempty"` // absent for non-binary markets
	IsResolved      bool     `json:"isResolved"`
}

// HasProbability reports whether the platform sent a probability.
func (m Market) HasProbability() bool {
	return m.Probability != nil
}

// Prob returns the market probability, 0 when absent.
func (m Market) Prob() float64 {
	if m.Probability == nil {
		return 0
	}
	return *m.Probability
}

// Group is a named collection of markets.
type Group struct {
	ID             string `json:"id"`
	Slug           string `json:"slug"`
	Name           string `json:"name"`
	TotalContracts int    `json:"totalContracts"`
}

// User is the authenticated account returned by /me.
type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"` // play-money balance (mana)
}

// ————————————————————————————————————————————————————————————————————————
// Writes
// ————————————————————————————————————————————————————————————————————————

// BetRequest is the body for POST /bet.
type BetRequest struct {
	ContractID string  `json:"contractId"`
	Amount     int     `json:"amount"`
	Outcome    Outcome `json:"outcome"`
}

// Bet is the response of POST /bet.
type Bet struct {
	BetID      string  `json:"betId"`
	Amount     float64 `json:"amount"`
	Shares     float64 `json:"shares"`
	Outcome    string  `json:"outcome"`
	ProbBefore float64 `json:"probBefore"`
	ProbAfter  float64 `json:"probAfter"`
}

// CommentRequest is the body for POST /comment.
type CommentRequest struct {
	ContractID string `json:"contractId"`
	Markdown   string `json:"markdown"`
}

// Comment is the response of POST /comment.
type Comment struct {
	ID         string `json:"id"`
	ContractID string `json:"contractId"`
}

// ————————————————————————————————————————————————————————————————————————
// Model output
// ————————————————————————————————————————————————————————————————————————

// Action is the (kind, amount) pair extracted from a model reply. Amount is
// bounded by the max-bet ceiling only through the prompt.
type Action struct {
	Kind   ActionKind
	Amount int
}

// IsBet reports whether executing the action places a bet.
func (a Action) IsBet() bool {
	return (a.Kind == ActionYes || a.Kind == ActionNo) && a.Amount > 0
}

// Outcome returns the bet outcome for a YES/NO action.
func (a Action) Outcome() Outcome {
	if a.Kind == ActionNo {
		return NO
	}
	return YES
}
