// Package market holds the pure helpers the browser and the autonomous mode
// use to page, filter, sample and label Manifold markets and groups.
package market

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"gpt-manifold/pkg/types"
)

// Page is the cursor for the recent-markets list. Before is the id of the
// last market on the previous page (empty for the first page) and BaseIndex
// is the display number of the first market on this page.
type Page struct {
	Before    string
	BaseIndex int
}

// First reports whether this is the first page.
func (p Page) First() bool {
	return p.Before == ""
}

// Next returns the cursor for the page after one showing markets. The running
// display index continues where this page stopped.
func (p Page) Next(markets []types.Market) Page {
	if len(markets) == 0 {
		return p
	}
	return Page{
		Before:    markets[len(markets)-1].ID,
		BaseIndex: p.BaseIndex + len(markets),
	}
}

// MarketLabel is the menu line for the i-th market of a list.
func MarketLabel(i int, m types.Market) string {
	return fmt.Sprintf("%d - %s: %s", i, m.CreatorName, m.Question)
}

// GroupLabel is the menu line for the i-th group of a list.
func GroupLabel(i int, g types.Group) string {
	return fmt.Sprintf("%d - %s: %d markets", i, g.Name, g.TotalContracts)
}

// EligibleGroups keeps groups with at least minMarkets markets.
func EligibleGroups(groups []types.Group, minMarkets int) []types.Group {
	var result []types.Group
	for _, g := range groups {
		if g.TotalContracts >= minMarkets {
			result = append(result, g)
		}
	}
	return result
}

// OpenMarkets keeps unresolved markets that carry a probability.
func OpenMarkets(markets []types.Market) []types.Market {
	var result []types.Market
	for _, m := range markets {
		if m.IsResolved || !m.HasProbability() {
			continue
		}
		result = append(result, m)
	}
	return result
}

// sample returns up to n elements of items in random order.
func sample[T any](items []T, n int, rng *rand.Rand) []T {
	if n > len(items) {
		n = len(items)
	}
	perm := rng.Perm(len(items))
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = items[perm[i]]
	}
	return out
}

// SampleGroups returns up to n randomly chosen groups.
func SampleGroups(groups []types.Group, n int, rng *rand.Rand) []types.Group {
	return sample(groups, n, rng)
}

// SampleMarkets returns up to n randomly chosen markets.
func SampleMarkets(markets []types.Market, n int, rng *rand.Rand) []types.Market {
	return sample(markets, n, rng)
}

// GroupList renders group names one per line, as sent to the model.
func GroupList(groups []types.Group) string {
	var b strings.Builder
	for _, g := range groups {
		b.WriteString(g.Name)
		b.WriteByte('\n')
	}
	return b.String()
}

// QuestionList renders market questions one per line, as sent to the model.
func QuestionList(markets []types.Market) string {
	var b strings.Builder
	for _, m := range markets {
		b.WriteString(m.Question)
		b.WriteByte('\n')
	}
	return b.String()
}

// MatchGroup returns the first candidate whose name appears in the reply.
func MatchGroup(answer string, groups []types.Group) (types.Group, error) {
	for _, g := range groups {
		if g.Name != "" && strings.Contains(answer, g.Name) {
			return g, nil
		}
	}
	return types.Group{}, fmt.Errorf("no listed group found in reply: %q", answer)
}

// MatchMarket returns the first candidate whose question appears in the reply.
func MatchMarket(answer string, markets []types.Market) (types.Market, error) {
	for _, m := range markets {
		if m.Question != "" && strings.Contains(answer, m.Question) {
			return m, nil
		}
	}
	return types.Market{}, fmt.Errorf("no listed market found in reply: %q", answer)
}
