// Package risk checks a model-chosen action against the session's max-bet
// ceiling and balance before any mana is spent.
//
// The ceiling is normally only stated in the prompt. With enforce_max_bet the
// guard clamps oversized bets down to it; otherwise it only warns.
package risk

import (
	"fmt"
	"log/slog"

	"gpt-manifold/internal/config"
	"gpt-manifold/pkg/types"
)

// Verdict is the outcome of a check. Action is what should be executed and
// Warnings lists anything the operator should see before confirming.
type Verdict struct {
	Action   types.Action
	Clamped  bool
	Warnings []string
}

// Guard applies the configured bet limits.
type Guard struct {
	cfg    config.RiskConfig
	logger *slog.Logger
}

// NewGuard creates a guard.
func NewGuard(cfg config.RiskConfig, logger *slog.Logger) *Guard {
	return &Guard{
		cfg:    cfg,
		logger: logger.With("component", "risk"),
	}
}

// Check validates action against maxBet and balance. Non-bets pass through
// unchanged.
func (g *Guard) Check(action types.Action, balance float64, maxBet int) Verdict {
	v := Verdict{Action: action}
	if !action.IsBet() {
		return v
	}

	if maxBet > 0 && action.Amount > maxBet {
		if g.cfg.EnforceMaxBet {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("Requested M$%d exceeds the max bet of M$%d; clamped.", action.Amount, maxBet))
			v.Action.Amount = maxBet
			v.Clamped = true
		} else {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("Requested M$%d exceeds the max bet of M$%d.", action.Amount, maxBet))
		}
		g.logger.Warn("bet above ceiling",
			"amount", action.Amount,
			"max_bet", maxBet,
			"clamped", v.Clamped,
		)
	}

	if g.cfg.WarnOverBalance && float64(v.Action.Amount) > balance {
		v.Warnings = append(v.Warnings,
			fmt.Sprintf("Bet of M$%d exceeds your balance of M$%.0f.", v.Action.Amount, balance))
		g.logger.Warn("bet above balance", "amount", v.Action.Amount, "balance", balance)
	}

	return v
}
