// Package tags extracts the action markers a model is asked to put in its
// reply: <YES>amount</YES>, <NO>amount</NO> or <ABSTAIN/>.
package tags

import (
	"regexp"
	"strconv"
	"strings"

	"gpt-manifold/pkg/types"
)

// Tag is one marker found in a reply. Self-closing tags carry content "0".
type Tag struct {
	Name    string
	Content string
}

var (
	openTag     = regexp.MustCompile(`^<(\w+)[^>]*>`)
	selfClosing = regexp.MustCompile(`^<(\w+)/>`)
	nonDigits   = regexp.MustCompile(`[^0-9]`)
)

// Find returns every tag in text, left to right and non-overlapping. A paired
// tag closes at the first matching </NAME> on the same line. When nothing is
// found the result is a single ABSTAIN/"0" tag, so callers can always take
// the last element.
func Find(text string) []Tag {
	var found []Tag
	for i := 0; i < len(text); {
		if text[i] != '<' {
			i++
			continue
		}
		rest := text[i:]

		if m := openTag.FindStringSubmatchIndex(rest); m != nil {
			name := rest[m[2]:m[3]]
			body := rest[m[1]:]
			if nl := strings.IndexByte(body, '\n'); nl >= 0 {
				body = body[:nl]
			}
			closing := "</" + name + ">"
			if end := strings.Index(body, closing); end >= 0 {
				found = append(found, Tag{Name: name, Content: body[:end]})
				i += m[1] + end + len(closing)
				continue
			}
		}

		if m := selfClosing.FindStringSubmatch(rest); m != nil {
			found = append(found, Tag{Name: m[1], Content: "0"})
			i += len(m[0])
			continue
		}
		i++
	}

	if len(found) == 0 {
		found = append(found, Tag{Name: string(types.ActionAbstain), Content: "0"})
	}
	return found
}

// Amount strips every non-digit from content. An empty result is 0.
func Amount(content string) int {
	digits := nonDigits.ReplaceAllString(content, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// more digits than an int holds
		return 0
	}
	return n
}

// ParseAction resolves a reply to the action named by its last tag.
func ParseAction(text string) types.Action {
	all := Find(text)
	last := all[len(all)-1]
	return types.Action{
		Kind:   types.ParseActionKind(last.Name),
		Amount: Amount(last.Content),
	}
}
