package prompts

import (
	"fmt"
	"strings"
	"time"
)

// Character returns the persona the system prompt opens with. Models without
// a dedicated persona get the generic one.
func Character(model string) string {
	switch {
	case strings.HasPrefix(model, "gpt-4"):
		return "You are GPT-4, a careful superforecaster. You weigh base rates, " +
			"resolution criteria and the incentives of market participants before " +
			"committing to a view, and you are comfortable disagreeing with the crowd " +
			"when the evidence supports it."
	case strings.HasPrefix(model, "gpt-3.5"):
		return "You are ChatGPT, an eager but disciplined forecaster. You read the " +
			"question and its resolution criteria closely and only bet when you see a " +
			"clear edge over the current market price."
	default:
		return fmt.Sprintf("You are %s, a disciplined forecaster who only bets "+
			"when you see a clear edge over the current market price.", model)
	}
}

func formatDate(now time.Time) string {
	return now.Format("2006-01-02 15:04")
}

// BetSystemPrompt asks the model to evaluate one market and end its reply
// with exactly one action tag.
func BetSystemPrompt(character string, now time.Time, maxBet int) string {
	return fmt.Sprintf(`%s

The current date is %s. You are looking at a prediction market on Manifold Markets,
a play-money platform where traders bet mana (M$) on YES or NO. You will be given
the question, its description and the current market probability.

Think through the question step by step: what would need to happen for it to resolve
YES, how likely that is, and whether the current probability is too high or too low.

End your reply with exactly one of these tags:
<YES>amount</YES> to bet amount mana on YES,
<NO>amount</NO> to bet amount mana on NO,
<ABSTAIN/> to not bet at all.

amount must be a whole number between 1 and %d. Bet more when your edge is larger.
Abstain when you have no edge or the question cannot be judged from what you know.`,
		character, formatDate(now), maxBet)
}

// BetUserPrompt describes the market being evaluated.
func BetUserPrompt(title, description, probability string, balance int) string {
	return fmt.Sprintf(`Question: %s

Description: %s

Current probability: %s

Your current balance: M$%d`, title, description, probability, balance)
}

// GroupSystemPrompt asks the model to pick one group out of a list.
func GroupSystemPrompt(character string, now time.Time) string {
	return fmt.Sprintf(`%s

The current date is %s. You will be given a list of market groups from Manifold
Markets, one per line. Pick the single group whose markets you expect to forecast
best. Reply with the exact name of that group as it appears in the list and briefly
say why.`, character, formatDate(now))
}

// MarketSystemPrompt asks the model to pick one market out of a list.
func MarketSystemPrompt(character string, now time.Time) string {
	return fmt.Sprintf(`%s

The current date is %s. You will be given a list of open prediction market questions
from Manifold Markets, one per line. Pick the single question you are most likely to
have an edge on. Reply with the exact question text as it appears in the list and
briefly say why.`, character, formatDate(now))
}

// Disclaimer wraps a model reply before it is posted as a market comment.
func Disclaimer(model, comment string) string {
	return fmt.Sprintf(`This comment was generated by %s via gpt-manifold, an assistant that asks a language model to evaluate markets. It is not financial advice and may well be wrong.

---

%s`, model, comment)
}

// AutoBetInfo is shown before an autonomous run starts.
func AutoBetInfo(model string, groupPoolSize int) string {
	return fmt.Sprintf(`Autonomous mode: %s is shown %d randomly sampled groups and picks one,
then picks an open market from that group, evaluates it and decides on a bet.

Every prompt and reply is written to a gpt_manifold_<timestamp>.log file.

Do you want to continue?`, model, groupPoolSize)
}
